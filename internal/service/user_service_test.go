package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"boutique-pos/internal/domain"
	"boutique-pos/internal/store"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserFixture(t *testing.T) (*store.UserStore, UserService) {
	t.Helper()
	users := store.NewUserStore(filepath.Join(t.TempDir(), "users.csv"))
	return users, NewUserService(users, "test-secret", 30)
}

func seedUser(t *testing.T, users *store.UserStore, email, password string, active bool) domain.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u, err := users.Insert(domain.User{
		Name:           "Test User",
		Email:          email,
		Role:           domain.RoleCashier,
		IsActive:       active,
		HashedPassword: string(hashed),
	})
	require.NoError(t, err)
	return u
}

func TestAuthenticateSuccess(t *testing.T) {
	users, svc := newUserFixture(t)
	seedUser(t, users, "ada@boutique.com", "s3cret", true)

	token, user, err := svc.Authenticate(context.Background(), "ada@boutique.com", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "ada@boutique.com", user.Email)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ada@boutique.com", claims.Email)
	assert.Equal(t, "cashier", claims.Role)
}

func TestAuthenticateFailures(t *testing.T) {
	users, svc := newUserFixture(t)
	seedUser(t, users, "ada@boutique.com", "s3cret", true)
	seedUser(t, users, "off@boutique.com", "s3cret", false)

	_, _, err := svc.Authenticate(context.Background(), "ada@boutique.com", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, _, err = svc.Authenticate(context.Background(), "ghost@boutique.com", "s3cret")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, _, err = svc.Authenticate(context.Background(), "off@boutique.com", "s3cret")
	assert.True(t, errors.Is(err, ErrAccountDisabled))
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	users, _ := newUserFixture(t)
	seedUser(t, users, "ada@boutique.com", "s3cret", true)

	issuer := NewUserService(users, "other-secret", 30)
	token, _, err := issuer.Authenticate(context.Background(), "ada@boutique.com", "s3cret")
	require.NoError(t, err)

	verifier := NewUserService(users, "test-secret", 30)
	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	_, svc := newUserFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, UserCreate{
		Name: "Ada", Email: "ada@boutique.com", Password: "s3cret1", Role: domain.RoleCashier,
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, UserCreate{
		Name: "Other Ada", Email: "ada@boutique.com", Password: "s3cret2", Role: domain.RoleManager,
	})
	assert.True(t, errors.Is(err, store.ErrEmailExists))
}

func TestEnsureDefaultUsersSeedsOnceOnly(t *testing.T) {
	users, svc := newUserFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureDefaultUsers(ctx))

	all, err := users.Load()
	require.NoError(t, err)
	require.Len(t, all, 3)

	emails := make(map[string]domain.Role)
	for _, u := range all {
		emails[u.Email] = u.Role
		assert.True(t, u.IsActive)
		assert.NotEmpty(t, u.HashedPassword)
	}
	assert.Equal(t, domain.RoleOwner, emails["owner@boutique.com"])
	assert.Equal(t, domain.RoleManager, emails["manager@boutique.com"])
	assert.Equal(t, domain.RoleCashier, emails["cashier@boutique.com"])

	// A non-empty table is left alone, even after deletions.
	owner, err := users.FindByEmail("owner@boutique.com")
	require.NoError(t, err)
	_, err = users.Delete(owner.ID)
	require.NoError(t, err)

	require.NoError(t, svc.EnsureDefaultUsers(ctx))
	all, err = users.Load()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDefaultUsersCanLogIn(t *testing.T) {
	_, svc := newUserFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureDefaultUsers(ctx))

	token, user, err := svc.Authenticate(ctx, "cashier@boutique.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, domain.RoleCashier, user.Role)
	assert.Contains(t, user.Permissions, "pos")
}

func TestProperty_RegistrationHashesPasswords(t *testing.T) {
	properties := gopter.NewProperties(nil)

	users := store.NewUserStore(filepath.Join(t.TempDir(), "users.csv"))
	svc := NewUserService(users, "test-secret", 30)
	counter := 0

	properties.Property("passwords are stored as bcrypt hashes, never plaintext", prop.ForAll(
		func(password string) bool {
			counter++
			email := fmt.Sprintf("user%d@boutique.com", counter)
			user, err := svc.Register(context.Background(), UserCreate{
				Name:     "Prop User",
				Email:    email,
				Password: password,
				Role:     domain.RoleCashier,
			})
			if errors.Is(err, store.ErrEmailExists) {
				return true
			}
			if err != nil {
				t.Logf("FAIL: register: %v", err)
				return false
			}

			if user.HashedPassword == password {
				t.Logf("FAIL: password stored as plaintext")
				return false
			}
			if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
				t.Logf("FAIL: stored hash does not verify: %v", err)
				return false
			}
			return true
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) >= 6 && len(s) <= 60 }),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
