package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserClaims are JWT claims for an authenticated or guest learner
type UserClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
	Guest  bool   `json:"guest"`
	jwt.RegisteredClaims
}

// User is a registered learner (passwordless email login)
type User struct {
	ID         string    `json:"_id" bson:"_id,omitempty"`
	Email      string    `json:"email" bson:"email"`
	Name       string    `json:"name" bson:"name"`
	AuthMethod string    `json:"authMethod" bson:"authMethod"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}

// LoginRequest is the request body for email login
type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"omitempty,max=120"`
}

// LoginResponse is returned after successful login or guest sign-in
type LoginResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Guest     bool      `json:"guest"`
	ExpiresAt time.Time `json:"expiresAt"`
}
