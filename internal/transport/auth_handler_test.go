package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"

	"boutique-pos/internal/service"
	"boutique-pos/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthRouter(t *testing.T) (service.UserService, chi.Router) {
	t.Helper()
	users := store.NewUserStore(filepath.Join(t.TempDir(), "users.csv"))
	userService := service.NewUserService(users, "test-secret", 30)
	require.NoError(t, userService.EnsureDefaultUsers(context.Background()))

	handler := NewAuthHandler(userService, "test-secret", zap.NewNop())
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return userService, router
}

func login(t *testing.T, router chi.Router, email, password string) (int, LoginResponse) {
	t.Helper()
	w := doJSON(t, router, "POST", "/api/auth/login", map[string]any{
		"email": email, "password": password,
	})
	var resp LoginResponse
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w.Code, resp
}

func TestLogin(t *testing.T) {
	_, router := newAuthRouter(t)

	code, resp := login(t, router, "owner@boutique.com", "password123")
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)

	code, _ = login(t, router, "owner@boutique.com", "wrong")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = login(t, router, "ghost@boutique.com", "password123")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestLoginResponseHidesPasswordHash(t *testing.T) {
	_, router := newAuthRouter(t)

	w := doJSON(t, router, "POST", "/api/auth/login", map[string]any{
		"email": "cashier@boutique.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "hashed_password")
	assert.NotContains(t, w.Body.String(), "$2a$")
}

func TestMeRequiresToken(t *testing.T) {
	_, router := newAuthRouter(t)

	w := doJSON(t, router, "GET", "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, resp := login(t, router, "manager@boutique.com", "password123")
	w = doAuthedJSON(t, router, "GET", "/api/auth/me", nil, resp.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "manager@boutique.com")
}

func TestRegisterRequiresManagement(t *testing.T) {
	_, router := newAuthRouter(t)

	newStaff := map[string]any{
		"name": "New Cashier", "email": "new@boutique.com",
		"password": "s3cret99", "role": "cashier",
	}

	// Cashiers cannot register accounts.
	_, cashier := login(t, router, "cashier@boutique.com", "password123")
	w := doAuthedJSON(t, router, "POST", "/api/auth/register", newStaff, cashier.AccessToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Managers can.
	_, manager := login(t, router, "manager@boutique.com", "password123")
	w = doAuthedJSON(t, router, "POST", "/api/auth/register", newStaff, manager.AccessToken)
	require.Equal(t, http.StatusCreated, w.Code)

	// Duplicate email is a conflict.
	w = doAuthedJSON(t, router, "POST", "/api/auth/register", newStaff, manager.AccessToken)
	assert.Equal(t, http.StatusConflict, w.Code)

	// The new account can log in.
	code, _ := login(t, router, "new@boutique.com", "s3cret99")
	assert.Equal(t, http.StatusOK, code)
}
