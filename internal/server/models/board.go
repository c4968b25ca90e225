package models

import "time"

// BoardRole is a member's role on one board.
type BoardRole string

const (
	BoardRoleOwner     BoardRole = "owner"
	BoardRoleModerator BoardRole = "moderator"
	BoardRoleEditor    BoardRole = "editor"
	BoardRoleViewer    BoardRole = "viewer"
)

// Member is one entry of a board's membership list. Email, UserName and
// DisplayName are filled in when members are loaded with user details.
type Member struct {
	UserID      string    `json:"user_id"`
	Role        BoardRole `json:"role"`
	InvitedBy   string    `json:"invited_by,omitempty"`
	JoinedAt    time.Time `json:"joined_at"`
	Email       string    `json:"email,omitempty"`
	UserName    string    `json:"username,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
}

// Board is a shared workspace. Members are ordered by join order.
type Board struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Members        []Member   `json:"members"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`
}

// BoardDetails is a board together with its lists and cards.
type BoardDetails struct {
	Board
	Lists []List `json:"lists"`
	Cards []Card `json:"cards"`
}
