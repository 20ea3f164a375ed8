package handler

import (
	"time"

	appidentity "github.com/thamonwanpho67-art/PMJinventory-sub001/internal/application/identity"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=1,max=128"`
}

// RefreshTokenRequest represents a refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse represents token information in response
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	Token TokenResponse       `json:"token"`
	User  appidentity.UserDTO `json:"user"`
}

// CreateUserRequest represents a request to create a user
type CreateUserRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=100"`
	Password    string `json:"password" binding:"required,max=128"`
	Email       string `json:"email" binding:"omitempty,email,max=200"`
	DisplayName string `json:"display_name" binding:"max=200"`
	Role        string `json:"role" binding:"omitempty,oneof=ADMIN USER admin user"`
}
