package access

import "github.com/dmitrijs2005/taskboard/internal/server/models"

// RoleOf returns userID's role on board. ok is false for a nil board or a
// non-member.
func RoleOf(board *models.Board, userID string) (role models.BoardRole, ok bool) {
	if board == nil || userID == "" {
		return "", false
	}
	for _, m := range board.Members {
		if m.UserID == userID {
			return m.Role, true
		}
	}
	return "", false
}

// Authorize reports whether userID holds at least min on board.
func Authorize(board *models.Board, userID string, min models.BoardRole) bool {
	role, ok := RoleOf(board, userID)
	return ok && Satisfies(role, min)
}

// Owner returns the board's owner id.
func Owner(board *models.Board) (string, bool) {
	if board == nil {
		return "", false
	}
	for _, m := range board.Members {
		if m.Role == models.BoardRoleOwner {
			return m.UserID, true
		}
	}
	return "", false
}
