package models

// List is a column of cards. Pos orders lists within their board.
type List struct {
	ID      string  `json:"id"`
	BoardID string  `json:"board_id"`
	Title   string  `json:"title"`
	Pos     float64 `json:"pos"`
}
