package memes

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrMemeNotFound indicates the referenced meme does not exist (or is not
	// visible to the caller).
	ErrMemeNotFound = errors.New("memes: meme not found")
	// ErrCommentNotFound indicates the referenced parent comment is absent.
	ErrCommentNotFound = errors.New("memes: comment not found")
	// ErrAlreadyVoted indicates an upvote for a (meme, user) pair that
	// already holds a vote.
	ErrAlreadyVoted = errors.New("memes: already voted")
	// ErrNotYetVoted indicates a downvote without a prior vote.
	ErrNotYetVoted = errors.New("memes: not yet voted")
	// ErrAlreadyFavorited indicates a duplicate favorite.
	ErrAlreadyFavorited = errors.New("memes: already favorited")
	// ErrNotFavorited indicates a favorite removal without a favorite.
	ErrNotFavorited = errors.New("memes: not favorited")
	// ErrReplyTooDeep rejects replies whose parent already has a parent.
	ErrReplyTooDeep = errors.New("memes: replies to replies are not supported")
	// ErrParentMemeMismatch rejects replies whose parent belongs to another meme.
	ErrParentMemeMismatch = errors.New("memes: parent comment belongs to a different meme")
)

// ValidationError reports a rejected field-level input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("memes: invalid %s: %s", e.Field, e.Reason)
}

func newValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// isUniqueViolation recognizes a storage-layer unique constraint failure.
// GORM translates these to ErrDuplicatedKey on dialects that support it; the
// raw SQLite message is matched as a fallback.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
