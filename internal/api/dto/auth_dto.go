package dto

import "time"

// TokenRequest exchanges the reporter key for a token.
type TokenRequest struct {
	Subject string `json:"subject"`
	Key     string `json:"key"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
