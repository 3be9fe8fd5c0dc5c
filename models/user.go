// Package models defines the records exchanged with the Apex Global Defense
// REST backend. Field names follow the backend's snake_case JSON.
package models

import "time"

// UserRole is the access role assigned to an account.
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleAnalyst   UserRole = "analyst"
	RoleReviewer  UserRole = "reviewer"
	RoleCommander UserRole = "commander"
	RoleViewer    UserRole = "viewer"
)

// User is an authenticated account as returned by GET /auth/me.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Organization string    `json:"organization,omitempty"`
	Role         UserRole  `json:"role"`
	IsActive     bool      `json:"is_active"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserCreate is the JSON body for POST /auth/register.
type UserCreate struct {
	Email        string   `json:"email"`
	FullName     string   `json:"full_name"`
	Password     string   `json:"password"`
	Organization string   `json:"organization,omitempty"`
	Role         UserRole `json:"role,omitempty"`
}

// Token is the bearer credential returned by POST /auth/login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ErrorBody is the backend's error payload.
type ErrorBody struct {
	Detail string `json:"detail"`
}
