package dto

// LoginRequest describes admin credentials payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued admin session token.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}
