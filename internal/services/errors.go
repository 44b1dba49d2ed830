package services

import (
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/database"
)

// Error kinds. Handlers branch on these with errors.Is; every specific error
// below wraps exactly one of them.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("not authorized")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnavailable     = errors.New("not currently available")
	ErrInvalidInput    = errors.New("invalid input")
)

var (
	ErrProfileNotFound       = kindError(ErrNotFound, "profile not found")
	ErrTeamNotFound          = kindError(ErrNotFound, "team not found")
	ErrRiddleNotFound        = kindError(ErrNotFound, "riddle not found")
	ErrResponseNotFound      = kindError(ErrNotFound, "response not found")
	ErrJoinRequestNotFound   = kindError(ErrNotFound, "join request not found")
	ErrRiddleRequestNotFound = kindError(ErrNotFound, "riddle request not found")
	ErrNotificationNotFound  = kindError(ErrNotFound, "notification not found")
	ErrMembershipNotFound    = kindError(ErrNotFound, "membership not found")

	ErrNotTeamOwner   = kindError(ErrForbidden, "only the team owner can do this")
	ErrNotPro         = kindError(ErrForbidden, "pro membership required")
	ErrCannotEdit     = kindError(ErrForbidden, "only the creator or a pro member can modify this riddle")
	ErrNotResponder   = kindError(ErrForbidden, "you can only update your own response")
	ErrNotTeamMember  = kindError(ErrForbidden, "this riddle is only available to team members")
	ErrNotRequester   = kindError(ErrForbidden, "you can only cancel your own request")
	ErrOwnerRemoval   = kindError(ErrForbidden, "the team owner cannot be removed")
	ErrNotCreatorTeam = kindError(ErrForbidden, "only pro members or the team owner can create riddles directly")
	ErrPrivateTeam    = kindError(ErrForbidden, "this team is private")

	ErrSlugTaken          = kindError(ErrConflict, "a riddle or team with this name already exists")
	ErrAlreadyResponded   = kindError(ErrConflict, "you have already responded to this riddle")
	ErrAlreadyMember      = kindError(ErrConflict, "already a member of this team")
	ErrJoinRequestPending = kindError(ErrConflict, "a join request is already pending")
	ErrTeamFull           = kindError(ErrConflict, "team is full")
	ErrRequestResolved    = kindError(ErrConflict, "request has already been reviewed")
	ErrMemberRequest      = kindError(ErrConflict, "team members add riddles directly instead of requesting them")

	ErrRiddleUnavailable = kindError(ErrUnavailable, "riddle is not currently available")
	ErrInvalidTransition = kindError(ErrUnavailable, "riddle cannot move to that status")
)

type kindErr struct {
	kind error
	msg  string
}

func (e *kindErr) Error() string { return e.msg }
func (e *kindErr) Unwrap() error { return e.kind }

func kindError(kind error, msg string) error {
	return &kindErr{kind: kind, msg: msg}
}

// invalidf builds an ErrInvalidInput with a caller-facing message.
func invalidf(format string, args ...interface{}) error {
	return kindError(ErrInvalidInput, fmt.Sprintf(format, args...))
}

// isKnown reports whether err carries one of the error kinds above.
func isKnown(err error) bool {
	for _, kind := range []error{ErrUnauthenticated, ErrForbidden, ErrNotFound, ErrConflict, ErrUnavailable, ErrInvalidInput} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

func isUniqueViolation(err error) bool {
	return database.IsUniqueViolation(err)
}
