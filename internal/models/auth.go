package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole distinguishes the administrator from read-only visitors.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleVisitor UserRole = "VISITOR"
)

// JWTClaims is the access token payload.
type JWTClaims struct {
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
	jwt.RegisteredClaims
}

// LoginRequest holds admin credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued access token.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	Role        UserRole  `json:"role"`
	IssuedAt    time.Time `json:"issued_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
