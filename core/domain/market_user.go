package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserRole distinguishes marketplace account types.
type UserRole string

const (
	RoleRetailer    UserRole = "retailer"
	RoleDistributor UserRole = "distributor"
	RoleAdmin       UserRole = "admin"
)

type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  UserRole  `json:"role"`

	// Business info
	CompanyName string   `json:"company_name,omitempty"`
	GSTNumber   string   `json:"gst_number,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Categories  []string `json:"categories,omitempty"`

	IsActive bool `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserFilter struct {
	Role     *UserRole
	IsActive *bool
	Search   string
	Limit    int
	Offset   int
}
