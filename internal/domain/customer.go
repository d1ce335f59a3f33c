package domain

// Preferences holds optional sizing and style data captured at the counter.
type Preferences struct {
	Size  string   `json:"size,omitempty"`
	Style []string `json:"style,omitempty"`
}

// Customer represents a CRM record with loyalty aggregates
type Customer struct {
	ID             string       `json:"id"`
	FirstName      string       `json:"first_name"`
	LastName       string       `json:"last_name"`
	Email          string       `json:"email,omitempty"`
	Phone          string       `json:"phone,omitempty"`
	Address        string       `json:"address,omitempty"`
	Gender         string       `json:"gender,omitempty"`
	AlternatePhone string       `json:"alternate_phone,omitempty"`
	LoyaltyPoints  int          `json:"loyalty_points"`
	TotalSpent     float64      `json:"total_spent"`
	Visits         int          `json:"visits"`
	LastVisit      string       `json:"last_visit,omitempty"`
	Preferences    *Preferences `json:"preferences,omitempty"`
}

// FullName returns the display name for receipts and search.
func (c Customer) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
