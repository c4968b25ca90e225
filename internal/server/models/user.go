// Package models defines server-side data models persisted in the database.
package models

import "time"

// UserRole is the account-wide role carried in session claims.
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// User is an account record. UserName and DisplayName stay empty until the
// first profile update.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	UserName     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile is the public projection of a user; it is what the profile cache
// stores and what other users get to see.
type Profile struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	UserName    string   `json:"username"`
	DisplayName string   `json:"display_name"`
	Role        UserRole `json:"role"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		Email:       u.Email,
		UserName:    u.UserName,
		DisplayName: u.DisplayName,
		Role:        u.Role,
	}
}

// ProfileUpdate carries the mutable profile fields.
type ProfileUpdate struct {
	Email       string `json:"email"`
	UserName    string `json:"username"`
	DisplayName string `json:"display_name"`
}
