package models

import "time"

// Account is a registered user. Verified flips to true exactly once, by a
// successful code verification.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterRequest is bound from JSON or form bodies.
type RegisterRequest struct {
	Email       string `json:"email" form:"email" binding:"required,email"`
	Password    string `json:"password" form:"password" binding:"required,min=6"`
	DisplayName string `json:"display_name" form:"display_name"`
	FirstName   string `json:"firstName" form:"firstName"`
	LastName    string `json:"lastName" form:"lastName"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type EmailRequest struct {
	Email string `json:"email" form:"email" binding:"required,email"`
}

// VerifyRequest with an empty Code asks for a new code.
type VerifyRequest struct {
	Email string `json:"email" form:"email" binding:"required,email"`
	Code  string `json:"code" form:"code"`
}
