package store

import (
	"encoding/json"
	"errors"

	"boutique-pos/internal/domain"
)

var ErrCustomerNotFound = errors.New("customer not found")

type customerCodec struct{}

func (customerCodec) Columns() []string {
	return []string{
		"id", "first_name", "last_name", "email", "phone", "address", "gender",
		"alternate_phone", "loyalty_points", "total_spent", "visits", "last_visit", "preferences",
	}
}

func (customerCodec) Key(c domain.Customer) string { return c.ID }

func (customerCodec) WithKey(c domain.Customer, key string) domain.Customer {
	c.ID = key
	return c
}

func (customerCodec) Decode(row map[string]string) domain.Customer {
	return domain.Customer{
		ID:             cleanCell(row["id"]),
		FirstName:      cleanCell(row["first_name"]),
		LastName:       cleanCell(row["last_name"]),
		Email:          cleanCell(row["email"]),
		Phone:          cleanCell(row["phone"]),
		Address:        cleanCell(row["address"]),
		Gender:         cleanCell(row["gender"]),
		AlternatePhone: cleanCell(row["alternate_phone"]),
		LoyaltyPoints:  toInt(row["loyalty_points"]),
		TotalSpent:     toFloat(row["total_spent"]),
		Visits:         toInt(row["visits"]),
		LastVisit:      cleanCell(row["last_visit"]),
		Preferences:    decodePreferences(row["preferences"]),
	}
}

func (customerCodec) Encode(c domain.Customer) map[string]string {
	prefs := ""
	if c.Preferences != nil {
		prefs = encodeJSON(c.Preferences, "{}")
	}
	return map[string]string{
		"id":              c.ID,
		"first_name":      c.FirstName,
		"last_name":       c.LastName,
		"email":           c.Email,
		"phone":           c.Phone,
		"address":         c.Address,
		"gender":          c.Gender,
		"alternate_phone": c.AlternatePhone,
		"loyalty_points":  formatInt(c.LoyaltyPoints),
		"total_spent":     formatFloat(c.TotalSpent),
		"visits":          formatInt(c.Visits),
		"last_visit":      c.LastVisit,
		"preferences":     prefs,
	}
}

// decodePreferences parses the embedded preferences cell. A blank cell means
// no preferences were recorded; malformed content degrades to the empty
// structure.
func decodePreferences(cell string) *domain.Preferences {
	cell = cleanCell(cell)
	if cell == "" {
		return nil
	}
	prefs := &domain.Preferences{}
	if err := json.Unmarshal([]byte(cell), prefs); err != nil {
		return &domain.Preferences{}
	}
	return prefs
}

// CustomerStore persists CRM records in one CSV table.
type CustomerStore struct {
	*Table[domain.Customer]
}

// NewCustomerStore creates a customer store over the CSV file at path.
func NewCustomerStore(path string) *CustomerStore {
	return &CustomerStore{NewTable(path, customerCodec{})}
}

// FindByID retrieves a customer by key.
func (s *CustomerStore) FindByID(id string) (*domain.Customer, error) {
	c, ok, err := s.FindByKey(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCustomerNotFound
	}
	return &c, nil
}
