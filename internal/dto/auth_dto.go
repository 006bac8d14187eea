package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type PinLoginRequest struct {
	Pin string `json:"pin" validate:"required,min=1,max=64"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // seconds
}
