// Package provider defines the relationship-list provider boundary: the one
// external dependency the extraction stage talks to, and the error taxonomy
// it is expected to signal with.
package provider

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"flocks/internal/model"
)

// Raw is one unfiltered (source, target, target-profile) tuple.
type Raw struct {
	SourceID string
	Target   model.Profile
}

// Page is one page of raw relationships. NextCursor is empty on the last page.
type Page struct {
	Items      []Raw
	NextCursor string
}

// RelationshipLister yields the accounts a source follows, paginated, subject
// to the provider's rate window.
type RelationshipLister interface {
	ListFollowing(ctx context.Context, sourceID string, cursor string) (Page, error)
}

var (
	// ErrPermissionDenied means the capability needs elevated access the run
	// does not have. Permanent for that capability; report once and move on.
	ErrPermissionDenied = errors.New("provider: permission denied")
	// ErrNotFound means the referenced account no longer exists.
	ErrNotFound = errors.New("provider: not found")
	// ErrMalformed means a single record failed validation.
	ErrMalformed = errors.New("provider: malformed record")
)

// RateLimitError signals an exhausted rate window. Not a true failure: the
// caller waits RetryAfter and tries again.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return "provider: rate limited, retry after " + e.RetryAfter.String()
}

// IsRateLimited reports whether err is a rate-limit condition, returning the
// wait the provider asked for.
func IsRateLimited(err error) (time.Duration, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.RetryAfter, true
	}
	return 0, false
}

func IsPermissionDenied(err error) bool { return errors.Is(err, ErrPermissionDenied) }

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
