package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entity is the persisted user row.
type Entity struct {
	ID          uuid.UUID `db:"id"`
	Username    string    `db:"username"`
	Email       string    `db:"email"`
	Password    string    `db:"password"`
	FirstName   string    `db:"first_name"`
	LastName    string    `db:"last_name"`
	PhoneNumber string    `db:"phone_number"`
	Active      bool      `db:"active"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// User is the external representation handed to and returned from the Service.
// Password is input only: nil means "not supplied".
type User struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Password    *string   `json:"password,omitempty"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	PhoneNumber string    `json:"phone_number"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateUserRequest captures incoming create payloads.
type CreateUserRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=64"`
	Email       string `json:"email" binding:"required,email,max=254"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	FirstName   string `json:"first_name" binding:"omitempty,max=100"`
	LastName    string `json:"last_name" binding:"omitempty,max=100"`
	PhoneNumber string `json:"phone_number" binding:"omitempty,max=32"`
}

// UpdateUserRequest replaces every field of a user except the password,
// which is kept when omitted or empty.
type UpdateUserRequest struct {
	Username    string  `json:"username" binding:"required,min=3,max=64"`
	Email       string  `json:"email" binding:"required,email,max=254"`
	Password    *string `json:"password" binding:"omitempty,max=72"`
	FirstName   string  `json:"first_name" binding:"omitempty,max=100"`
	LastName    string  `json:"last_name" binding:"omitempty,max=100"`
	PhoneNumber string  `json:"phone_number" binding:"omitempty,max=32"`
	Active      bool    `json:"active"`
}

// normalize trims the identifying fields so validation sees stored values.
func (r *CreateUserRequest) normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
}

func (r *UpdateUserRequest) normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
}

// SearchFilter holds optional search criteria. Blank strings and a nil
// Active impose no constraint.
type SearchFilter struct {
	Username    string
	Email       string
	FirstName   string
	LastName    string
	PhoneNumber string
	Active      *bool
}
