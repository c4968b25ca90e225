package models

import "time"

type ActivityType string

const (
	ActivityDesc    ActivityType = "desc"
	ActivityAssign  ActivityType = "assign"
	ActivityMove    ActivityType = "move"
	ActivityComment ActivityType = "comment"
)

// Activity is one entry of a card's append-only log.
type Activity struct {
	ID        int64        `json:"id"`
	CardID    string       `json:"card_id"`
	UserID    string       `json:"user_id"`
	Type      ActivityType `json:"type"`
	Comment   string       `json:"comment,omitempty"`
	Assignee  string       `json:"assignee,omitempty"`
	MoveFrom  string       `json:"move_from,omitempty"`
	MoveTo    string       `json:"move_to,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Card is a task inside a list. Pos orders cards within ListID.
type Card struct {
	ID          string     `json:"id"`
	BoardID     string     `json:"board_id"`
	ListID      string     `json:"list_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Pos         float64    `json:"pos"`
	AssignedTo  []string   `json:"assigned_to"`
	Activities  []Activity `json:"activities,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
