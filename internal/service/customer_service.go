package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"boutique-pos/internal/domain"
	"boutique-pos/internal/store"
)

// CustomerCreate is the input for creating a CRM record.
type CustomerCreate struct {
	FirstName      string              `json:"first_name" validate:"required,max=100"`
	LastName       string              `json:"last_name" validate:"required,max=100"`
	Email          string              `json:"email" validate:"omitempty,email"`
	Phone          string              `json:"phone" validate:"omitempty,max=20"`
	Address        string              `json:"address" validate:"omitempty,max=500"`
	Gender         string              `json:"gender" validate:"omitempty,oneof=male female other prefer_not_to_say"`
	AlternatePhone string              `json:"alternate_phone" validate:"omitempty,max=20"`
	LoyaltyPoints  int                 `json:"loyalty_points" validate:"gte=0"`
	TotalSpent     float64             `json:"total_spent" validate:"gte=0"`
	Visits         int                 `json:"visits" validate:"gte=0"`
	LastVisit      string              `json:"last_visit"`
	Preferences    *domain.Preferences `json:"preferences"`
}

// CustomerUpdate is a partial update: only non-nil fields are applied.
type CustomerUpdate struct {
	FirstName      *string             `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName       *string             `json:"last_name" validate:"omitempty,min=1,max=100"`
	Email          *string             `json:"email" validate:"omitempty,email"`
	Phone          *string             `json:"phone" validate:"omitempty,max=20"`
	Address        *string             `json:"address" validate:"omitempty,max=500"`
	Gender         *string             `json:"gender" validate:"omitempty,oneof=male female other prefer_not_to_say"`
	AlternatePhone *string             `json:"alternate_phone" validate:"omitempty,max=20"`
	LoyaltyPoints  *int                `json:"loyalty_points" validate:"omitempty,gte=0"`
	TotalSpent     *float64            `json:"total_spent" validate:"omitempty,gte=0"`
	Visits         *int                `json:"visits" validate:"omitempty,gte=0"`
	LastVisit      *string             `json:"last_visit"`
	Preferences    *domain.Preferences `json:"preferences"`
}

// CustomerFilter narrows and paginates customer listings.
type CustomerFilter struct {
	Search string
	Skip   int
	Limit  int
}

// CustomerService defines CRM business logic.
type CustomerService interface {
	Create(ctx context.Context, req CustomerCreate) (*domain.Customer, error)
	Get(ctx context.Context, id string) (*domain.Customer, error)
	Update(ctx context.Context, id string, req CustomerUpdate) (*domain.Customer, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter CustomerFilter) ([]domain.Customer, int, error)
	TopByLoyalty(ctx context.Context, limit int) ([]domain.Customer, error)
	SetLoyaltyPoints(ctx context.Context, id string, points int) (*domain.Customer, error)
}

type customerService struct {
	customers *store.CustomerStore
}

// NewCustomerService creates a new instance of CustomerService
func NewCustomerService(customers *store.CustomerStore) CustomerService {
	return &customerService{customers: customers}
}

func (s *customerService) Create(ctx context.Context, req CustomerCreate) (*domain.Customer, error) {
	customer := domain.Customer{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		Gender:         req.Gender,
		AlternatePhone: req.AlternatePhone,
		LoyaltyPoints:  req.LoyaltyPoints,
		TotalSpent:     req.TotalSpent,
		Visits:         req.Visits,
		LastVisit:      req.LastVisit,
		Preferences:    req.Preferences,
	}
	created, err := s.customers.Insert(customer)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return &created, nil
}

func (s *customerService) Get(ctx context.Context, id string) (*domain.Customer, error) {
	return s.customers.FindByID(id)
}

func (s *customerService) Update(ctx context.Context, id string, req CustomerUpdate) (*domain.Customer, error) {
	updated, found, err := s.customers.Table.Update(id, func(c *domain.Customer) {
		if req.FirstName != nil {
			c.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			c.LastName = *req.LastName
		}
		if req.Email != nil {
			c.Email = *req.Email
		}
		if req.Phone != nil {
			c.Phone = *req.Phone
		}
		if req.Address != nil {
			c.Address = *req.Address
		}
		if req.Gender != nil {
			c.Gender = *req.Gender
		}
		if req.AlternatePhone != nil {
			c.AlternatePhone = *req.AlternatePhone
		}
		if req.LoyaltyPoints != nil {
			c.LoyaltyPoints = *req.LoyaltyPoints
		}
		if req.TotalSpent != nil {
			c.TotalSpent = *req.TotalSpent
		}
		if req.Visits != nil {
			c.Visits = *req.Visits
		}
		if req.LastVisit != nil {
			c.LastVisit = *req.LastVisit
		}
		if req.Preferences != nil {
			c.Preferences = req.Preferences
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	if !found {
		return nil, store.ErrCustomerNotFound
	}
	return &updated, nil
}

func (s *customerService) Delete(ctx context.Context, id string) error {
	found, err := s.customers.Delete(id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if !found {
		return store.ErrCustomerNotFound
	}
	return nil
}

// List returns one page of customers matching the search term, which is
// checked against name, email and phone.
func (s *customerService) List(ctx context.Context, filter CustomerFilter) ([]domain.Customer, int, error) {
	all, err := s.customers.Load()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}

	matched := make([]domain.Customer, 0, len(all))
	search := strings.ToLower(filter.Search)
	for _, c := range all {
		if search != "" &&
			!strings.Contains(strings.ToLower(c.FullName()), search) &&
			!strings.Contains(strings.ToLower(c.Email), search) &&
			!strings.Contains(strings.ToLower(c.Phone), search) {
			continue
		}
		matched = append(matched, c)
	}

	total := len(matched)
	return paginate(matched, filter.Skip, filter.Limit), total, nil
}

// TopByLoyalty returns the limit highest customers ranked by loyalty points,
// descending.
func (s *customerService) TopByLoyalty(ctx context.Context, limit int) ([]domain.Customer, error) {
	all, err := s.customers.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].LoyaltyPoints > all[j].LoyaltyPoints
	})
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// SetLoyaltyPoints overwrites a customer's loyalty balance. Negative input is
// clamped to zero.
func (s *customerService) SetLoyaltyPoints(ctx context.Context, id string, points int) (*domain.Customer, error) {
	if points < 0 {
		points = 0
	}
	updated, found, err := s.customers.Table.Update(id, func(c *domain.Customer) {
		c.LoyaltyPoints = points
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update customer loyalty: %w", err)
	}
	if !found {
		return nil, store.ErrCustomerNotFound
	}
	return &updated, nil
}
