package auth

import "github.com/google/uuid"

// RegisterRequest carries the credentials for a new account.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// RegisterResponse identifies the created account. No token is issued at registration.
type RegisterResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the identity token and the identity it asserts.
type LoginResponse struct {
	Message     string    `json:"message"`
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	AccessToken string    `json:"accessToken"`
}
