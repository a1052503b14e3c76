package model

// AdminLoginRequest is the payload for admin login.
type AdminLoginRequest struct {
	Password string `json:"password" binding:"required,max=256"`
}
