package api

import (
	"time"

	"taskflow/internal/model"
)

// ErrorResponse 全域錯誤響應模型
// swagger:model api.ErrorResponse
type ErrorResponse struct {
	Message string `json:"message" example:"task not found"`
}

// swagger:model api.MessageResponse
type MessageResponse struct {
	Message string `json:"message" example:"task deleted"`
}

// swagger:model api.TokenResponse
type TokenResponse struct {
	AccessToken string     `json:"access_token" example:"eyJhbGciOi..."`
	TokenType   string     `json:"token_type" example:"Bearer"`
	ExpiresAt   time.Time  `json:"expires_at" example:"2025-05-09T15:04:05Z"`
	User        model.User `json:"user"`
}

// swagger:model api.UserCreatedResponse
type UserCreatedResponse struct {
	Message string     `json:"message" example:"user created"`
	User    model.User `json:"user"`
}
