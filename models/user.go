package models

import (
	"strings"
	"time"
)

// User represents a user in the system.
// Password is stored hashed (bcrypt) and never serialized, neither are the
// session tokens nor the avatar bytes.
type User struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" validate:"required"`
	Email     string    `json:"email" db:"email" validate:"required,email"`
	Password  string    `json:"-" db:"password" validate:"required,min=7,max=72,nopassword"`
	Age       int       `json:"age" db:"age" validate:"gte=0"`
	Avatar    []byte    `json:"-" db:"avatar"`
	Tokens    []string  `json:"-" db:"-"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Normalize trims the free-text fields and lower-cases the email
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Password = strings.TrimSpace(u.Password)
}

// CreateUserRequest is the signup payload
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"` // Plaintext; hashed by the store
	Age      int    `json:"age"`
}

// UpdateUserRequest is the profile patch payload. Nil fields are left alone.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Age      *int    `json:"age"`
}

// AllowedUserUpdates lists the keys a profile patch may carry
var AllowedUserUpdates = []string{"name", "email", "password", "age"}

// Apply copies the set fields onto u
func (req UpdateUserRequest) Apply(u *User) {
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Password != nil {
		u.Password = *req.Password
	}
	if req.Age != nil {
		u.Age = *req.Age
	}
}

// LoginRequest for POST /users/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by signup and login
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
