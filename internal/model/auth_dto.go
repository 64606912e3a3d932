package model

// LoginRequest exchanges the admin API key for a token pair.
type LoginRequest struct {
	AdminID string `json:"admin_id" binding:"required"`
	APIKey  string `json:"api_key" binding:"required"`
}

// RefreshRequest trades a refresh token for a new token pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
