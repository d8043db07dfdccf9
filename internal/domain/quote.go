package domain

import (
	"strings"
	"time"
)

// Quote is a quotation as stored in the tree. The same shape is used for the
// canonical record, the like relation, and the custom-quote mirror; only the
// meaning of Liked and Timestamp differs between them.
type Quote struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Author    string `json:"author"`
	Category  string `json:"category"`
	Liked     bool   `json:"liked"`
	Timestamp int64  `json:"timestamp"`
	UserID    string `json:"userId,omitempty"`
}

// Canonical returns the quote as it is written under quotes/{id}. The liked
// flag is never meaningful there.
func (q Quote) Canonical() Quote {
	q.Liked = false
	return q
}

// AsLike returns the like relation record for this quote liked at the given time.
func (q Quote) AsLike(at time.Time) Quote {
	q.Liked = true
	q.Timestamp = at.UnixMilli()
	return q
}

// CopyText formats the quote for the clipboard.
func (q Quote) CopyText() string {
	return q.Text + " - " + q.Author
}

// Validate checks the authoring rules for a new or edited quote.
func (q Quote) Validate() error {
	switch {
	case strings.TrimSpace(q.Text) == "":
		return NewValidationError("text", "must not be empty")
	case strings.TrimSpace(q.Author) == "":
		return NewValidationError("author", "must not be empty")
	case strings.TrimSpace(q.Category) == "":
		return NewValidationError("category", "must not be empty")
	}

	return nil
}

// ActivityLogEntry is one append-only record in a user's activity log.
type ActivityLogEntry struct {
	ID          string `json:"id"`
	Action      string `json:"action"`
	Description string `json:"description"`
	Timestamp   int64  `json:"timestamp"`
	QuoteID     string `json:"quoteId,omitempty"`
}

// Activity actions written by the engine.
const (
	ActionQuoteCreated = "Quote Created"
	ActionQuoteUpdated = "Quote Updated"
	ActionQuoteDeleted = "Quote Deleted"
	ActionQuoteLiked   = "Quote Liked"
	ActionQuoteUnliked = "Quote Unliked"
)

// User is the profile record stored at users/{uid}.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt int64  `json:"createdAt"`
	LastLogin int64  `json:"lastLogin"`
}

// CategoryCount maps a category to the number of liked quotes in it.
type CategoryCount map[string]int

// Total returns the sum of all counts.
func (c CategoryCount) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}

	return total
}

// Millis returns t as epoch milliseconds, the timestamp unit of the tree.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts an epoch-millisecond timestamp to time.Time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}
