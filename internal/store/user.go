package store

import (
	"errors"

	"boutique-pos/internal/domain"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("user with this email already exists")
)

type userCodec struct{}

func (userCodec) Columns() []string {
	return []string{"id", "name", "email", "role", "permissions", "is_active", "hashed_password"}
}

func (userCodec) Key(u domain.User) string { return u.ID }

func (userCodec) WithKey(u domain.User, key string) domain.User {
	u.ID = key
	return u
}

func (userCodec) Decode(row map[string]string) domain.User {
	return domain.User{
		ID:             cleanCell(row["id"]),
		Name:           cleanCell(row["name"]),
		Email:          cleanCell(row["email"]),
		Role:           domain.Role(cleanCell(row["role"])),
		Permissions:    decodeList[string](row["permissions"]),
		IsActive:       toBool(row["is_active"], true),
		HashedPassword: cleanCell(row["hashed_password"]),
	}
}

func (userCodec) Encode(u domain.User) map[string]string {
	perms := u.Permissions
	if perms == nil {
		perms = []string{}
	}
	active := "false"
	if u.IsActive {
		active = "true"
	}
	return map[string]string{
		"id":              u.ID,
		"name":            u.Name,
		"email":           u.Email,
		"role":            string(u.Role),
		"permissions":     encodeJSON(perms, "[]"),
		"is_active":       active,
		"hashed_password": u.HashedPassword,
	}
}

// UserStore persists staff accounts in one CSV table.
type UserStore struct {
	*Table[domain.User]
}

// NewUserStore creates a user store over the CSV file at path.
func NewUserStore(path string) *UserStore {
	return &UserStore{NewTable(path, userCodec{})}
}

// FindByID retrieves a user by key.
func (s *UserStore) FindByID(id string) (*domain.User, error) {
	u, ok, err := s.FindByKey(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// FindByEmail retrieves the user whose email matches exactly. Email is the
// login identity.
func (s *UserStore) FindByEmail(email string) (*domain.User, error) {
	recs, err := s.Load()
	if err != nil {
		return nil, err
	}
	for _, u := range recs {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}
