package dto

import "time"

// RegisterRequest input for user registration.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	NIP      string `json:"nip,omitempty"`
	Position string `json:"position,omitempty"`
	Role     string `json:"role,omitempty"` // defaults to staff
}

// LoginRequest input for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse user read model (never carries the password hash).
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	NIP       string    `json:"nip,omitempty"`
	Position  string    `json:"position,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginResponse token plus the authenticated user.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
