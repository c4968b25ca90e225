package models

import "time"

// InvitedBoard is the board snapshot stored with an invitation.
type InvitedBoard struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	InvitedBy string `json:"invited_by"`
}

// Invitation is a pending offer of membership on Board for UserID.
type Invitation struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	Board     InvitedBoard `json:"board"`
	Role      BoardRole    `json:"role"`
	InvitedBy string       `json:"invited_by"`
	CreatedAt time.Time    `json:"created_at"`
}

// ExpiresAt is the moment the invitation stops being outstanding.
func (i Invitation) ExpiresAt(retention time.Duration) time.Time {
	return i.CreatedAt.Add(retention)
}
