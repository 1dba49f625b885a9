package service

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/travellinq/backend/internal/realtime"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidVote       = errors.New("vote must be +1 or -1")
	ErrConflict          = errors.New("already exists")
	ErrNotBuddies        = errors.New("only accepted buddies can do this")
	ErrNotInConversation = errors.New("you are not a participant in this conversation")
)

// Publisher pushes realtime events to connected clients.
type Publisher interface {
	PublishToPost(postID uuid.UUID, event realtime.Event)
	SendToUsers(userIDs []uuid.UUID, event realtime.Event)
	IsUserOnline(userID uuid.UUID) bool
}

// Text fields are stored as plain text; any markup is stripped.
var textPolicy = bluemonday.StrictPolicy()

func cleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

// notFound maps gorm's missing-row error onto ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func runAsync(f func()) { go f() }

func strPtr(s string) *string {
	return &s
}
