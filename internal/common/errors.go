// Package common defines the sentinel errors shared by the task board server
// layers. Specific errors wrap a category so callers can match either one
// with errors.Is.
package common

import (
	"errors"
	"fmt"
)

var (
	// Categories.
	ErrorNotFound     = errors.New("not found")
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("already exists")
	ErrValidation     = errors.New("validation error")

	// Session lifecycle.
	ErrInvalidSession = errors.New("invalid session")
	ErrSessionRevoked = errors.New("session revoked")

	// Invitation resolution could not commit; nothing was applied.
	ErrTransactionAborted = errors.New("transaction aborted")

	ErrBoardNotFound      = fmt.Errorf("board %w", ErrorNotFound)
	ErrListNotFound       = fmt.Errorf("list %w", ErrorNotFound)
	ErrCardNotFound       = fmt.Errorf("card %w", ErrorNotFound)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrorNotFound)
	ErrInvitationNotFound = fmt.Errorf("invitation %w", ErrorNotFound)

	ErrDuplicateInvitation = fmt.Errorf("invitation %w", ErrConflict)
	ErrAlreadyMember       = fmt.Errorf("board member %w", ErrConflict)
	ErrIdentityTaken       = fmt.Errorf("email or username %w", ErrConflict)
	ErrOwnsBoards          = fmt.Errorf("%w: account still owns boards", ErrConflict)

	ErrInvalidRole     = fmt.Errorf("%w: invalid role", ErrValidation)
	ErrInvalidPosition = fmt.Errorf("%w: position must be a positive number", ErrValidation)
	ErrInvalidQuery    = fmt.Errorf("%w: unsupported filter or sort field", ErrValidation)
)
