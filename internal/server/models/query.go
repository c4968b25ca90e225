package models

// SortField is one "field_asc" / "field_desc" sort key.
type SortField struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc"`
}

// ListQuery narrows board and user listings. Search applies a
// case-insensitive substring match over Filters; both must be given together.
type ListQuery struct {
	Search  string      `json:"q,omitempty"`
	Filters []string    `json:"filter,omitempty"`
	Sort    []SortField `json:"sort,omitempty"`
}
