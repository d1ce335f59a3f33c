package transport

import (
	"errors"
	"net/http"

	"boutique-pos/internal/middleware"
	"boutique-pos/internal/service"
	"boutique-pos/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication and staff accounts
type AuthHandler struct {
	users     service.UserService
	jwtSecret string
	logger    *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(users service.UserService, jwtSecret string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, jwtSecret: jwtSecret, logger: logger}
}

// RegisterRoutes registers the auth routes. Login is public; the rest sit
// behind the JWT middleware, and registration additionally requires a
// management role.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(h.jwtSecret, h.logger))
			r.Get("/me", h.Me)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManagement(h.logger))
				r.Post("/register", h.Register)
			})
		})
	})
}

// LoginRequest is the credentials payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the access token and the authenticated account.
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        interface{} `json:"user"`
}

// Login authenticates a staff member and issues an access token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			middleware.RespondWithError(w, http.StatusUnauthorized, "incorrect email or password")
		case errors.Is(err, service.ErrAccountDisabled):
			middleware.RespondWithError(w, http.StatusUnauthorized, "user account is disabled")
		default:
			h.logger.Error("Login failed", zap.String("email", req.Email), zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to log in")
		}
		return
	}

	h.logger.Info("User logged in",
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)),
	)
	middleware.RespondWithJSON(w, http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	})
}

// Me returns the account of the authenticated caller.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.GetUserEmail(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			middleware.RespondWithError(w, http.StatusUnauthorized, "user no longer exists")
			return
		}
		h.logger.Error("Failed to load current user", zap.String("email", email), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load current user")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Current user retrieved successfully",
		Data:    user,
	})
}

// Register creates a new staff account. Management only.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.UserCreate
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Registration validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			middleware.RespondWithError(w, http.StatusConflict, "user with this email already exists")
			return
		}
		h.logger.Error("Failed to register user", zap.String("email", req.Email), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	h.logger.Info("Staff account registered",
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "User registered successfully",
		Data:    user,
	})
}
