package models

import "time"

// Session is the verified claim set of an access token.
type Session struct {
	ID        string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Role      UserRole  `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}
