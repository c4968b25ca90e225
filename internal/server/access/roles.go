// Package access decides what a user may do on a board.
//
// Decisions are plain values computed from the board's membership list;
// nothing here writes, and every unknown input is denied.
package access

import "github.com/dmitrijs2005/taskboard/internal/server/models"

var roleRank = map[models.BoardRole]int{
	models.BoardRoleViewer:    1,
	models.BoardRoleEditor:    2,
	models.BoardRoleModerator: 3,
	models.BoardRoleOwner:     4,
}

// Rank returns the role's level, or 0 for an unknown role.
func Rank(r models.BoardRole) int {
	return roleRank[r]
}

// Satisfies reports whether role meets min.
func Satisfies(role, min models.BoardRole) bool {
	have, want := Rank(role), Rank(min)
	return have > 0 && want > 0 && have >= want
}

// CanWrite reports whether role may change lists and cards.
func CanWrite(role models.BoardRole) bool {
	return Satisfies(role, models.BoardRoleEditor)
}

// Invitable reports whether role may be granted through an invitation.
// Ownership is never transferable that way.
func Invitable(role models.BoardRole) bool {
	return Rank(role) > 0 && role != models.BoardRoleOwner
}
