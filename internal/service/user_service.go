package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"boutique-pos/internal/domain"
	"boutique-pos/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost factor for bcrypt hashing
const BcryptCost = 10

// defaultDevPassword seeds the bootstrap accounts. Development only; change
// every account's password before any real deployment.
const defaultDevPassword = "password123"

var (
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrAccountDisabled    = errors.New("user account is disabled")
	ErrInvalidToken       = errors.New("invalid token")
)

// Claims represents the JWT claims carried by an access token.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// UserCreate is the input for registering a staff account.
type UserCreate struct {
	Name        string      `json:"name" validate:"required,max=200"`
	Email       string      `json:"email" validate:"required,email"`
	Password    string      `json:"password" validate:"required,min=6,max=100"`
	Role        domain.Role `json:"role" validate:"required,oneof=cashier manager owner"`
	Permissions []string    `json:"permissions"`
	IsActive    *bool       `json:"is_active"`
}

// UserService defines authentication and staff-account business logic.
type UserService interface {
	Authenticate(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	ValidateToken(tokenString string) (*Claims, error)
	Register(ctx context.Context, req UserCreate) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	EnsureDefaultUsers(ctx context.Context) error
}

type userService struct {
	users        *store.UserStore
	jwtSecret    string
	accessExpiry time.Duration
	now          func() time.Time
}

// NewUserService creates a new instance of UserService
func NewUserService(users *store.UserStore, jwtSecret string, accessExpiryMinutes int) UserService {
	return &userService{
		users:        users,
		jwtSecret:    jwtSecret,
		accessExpiry: time.Duration(accessExpiryMinutes) * time.Minute,
		now:          time.Now,
	}
}

// Authenticate verifies an email/password pair and returns a signed access
// token for the account.
func (s *userService) Authenticate(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, ErrAccountDisabled
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return token, user, nil
}

// ValidateToken parses a JWT and returns its claims when the signature and
// expiry check out.
func (s *userService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Register creates a new staff account with a hashed password.
func (s *userService) Register(ctx context.Context, req UserCreate) (*domain.User, error) {
	existing, err := s.users.FindByEmail(req.Email)
	if err != nil && !errors.Is(err, store.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, store.ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	user := domain.User{
		Name:           req.Name,
		Email:          req.Email,
		Role:           req.Role,
		Permissions:    req.Permissions,
		IsActive:       active,
		HashedPassword: string(hashed),
	}
	created, err := s.users.Insert(user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &created, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.FindByEmail(email)
}

// EnsureDefaultUsers seeds the owner/manager/cashier accounts when the user
// table is empty. Idempotent; invoked once at process start.
func (s *userService) EnsureDefaultUsers(ctx context.Context) error {
	all, err := s.users.Load()
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}
	if len(all) > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(defaultDevPassword), BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash default password: %w", err)
	}

	defaults := []domain.User{
		{
			Name:  "Default Owner",
			Email: "owner@boutique.com",
			Role:  domain.RoleOwner,
			Permissions: []string{
				"pos", "inventory", "reports", "customer_management",
				"staff_management", "admin", "analytics",
			},
			IsActive:       true,
			HashedPassword: string(hashed),
		},
		{
			Name:  "Default Manager",
			Email: "manager@boutique.com",
			Role:  domain.RoleManager,
			Permissions: []string{
				"pos", "inventory", "reports", "customer_management", "staff_management",
			},
			IsActive:       true,
			HashedPassword: string(hashed),
		},
		{
			Name:           "Default Cashier",
			Email:          "cashier@boutique.com",
			Role:           domain.RoleCashier,
			Permissions:    []string{"pos", "customer_lookup"},
			IsActive:       true,
			HashedPassword: string(hashed),
		},
	}
	for _, user := range defaults {
		if _, err := s.users.Insert(user); err != nil {
			return fmt.Errorf("failed to create default user %s: %w", user.Email, err)
		}
	}
	return nil
}

// generateAccessToken signs an HS256 JWT carrying the user's email and role.
func (s *userService) generateAccessToken(user *domain.User) (string, error) {
	now := s.now()
	claims := &Claims{
		Email: user.Email,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
