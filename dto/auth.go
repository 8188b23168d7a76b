package dto

// SignUpRequest defines the payload for registering a local account.
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"` // Raw password, to be hashed by the service
	Username string `json:"username"`
}

// SignInRequest defines the payload for password login.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshTokenRequest carries the refresh token being exchanged.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// MessageResponse is a plain human-readable confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}
