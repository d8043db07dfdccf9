package dto

import (
	"time"

	"github.com/jsamuelsen/quotehub-sync/internal/domain"
)

// QuoteRequest is the body of POST /quotes and PUT /quotes/:id.
type QuoteRequest struct {
	Text     string `json:"text"     validate:"required,notblank,max=2000"`
	Author   string `json:"author"   validate:"required,notblank,max=200"`
	Category string `json:"category" validate:"required,notblank,max=64"`
}

// CategoryQuery is the query of GET /quotes.
type CategoryQuery struct {
	Category string `form:"category" validate:"required,notblank"`
}

// ActivityQuery is the query of GET /me/activity.
type ActivityQuery struct {
	Limit int `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// SessionRequest is the optional body of POST /session.
type SessionRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
}

// QuoteResponse is a quote as returned to clients. Liked is relative to
// the caller.
type QuoteResponse struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	Category  string    `json:"category"`
	Liked     bool      `json:"liked"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"userId,omitempty"`
}

// NewQuoteResponse converts a domain quote.
func NewQuoteResponse(q domain.Quote) QuoteResponse {
	return QuoteResponse{
		ID:        q.ID,
		Text:      q.Text,
		Author:    q.Author,
		Category:  q.Category,
		Liked:     q.Liked,
		Timestamp: domain.FromMillis(q.Timestamp).UTC(),
		UserID:    q.UserID,
	}
}

// NewQuoteResponses converts a slice of domain quotes. The result is never nil.
func NewQuoteResponses(quotes []domain.Quote) []QuoteResponse {
	out := make([]QuoteResponse, len(quotes))
	for i, q := range quotes {
		out[i] = NewQuoteResponse(q)
	}

	return out
}

// QuoteListResponse wraps a category listing.
type QuoteListResponse struct {
	Category string          `json:"category"`
	Quotes   []QuoteResponse `json:"quotes"`
}

// CreatedResponse is returned by POST /quotes.
type CreatedResponse struct {
	ID string `json:"id"`
}

// LikeStateResponse reports one quote's like state for the caller.
type LikeStateResponse struct {
	QuoteID string `json:"quoteId"`
	State   string `json:"state"`
	Liked   bool   `json:"liked"`
}

// NewLikeStateResponse converts a like state.
func NewLikeStateResponse(quoteID string, s domain.LikeState) LikeStateResponse {
	return LikeStateResponse{QuoteID: quoteID, State: s.String(), Liked: s.Displayed()}
}

// LikesResponse is the caller's like-set with per-category counts.
type LikesResponse struct {
	Quotes  []QuoteResponse      `json:"quotes"`
	Counts  domain.CategoryCount `json:"categoryCounts"`
	Total   int                  `json:"total"`
	Version uint64               `json:"version"`
}

// ActivityEntryResponse is one activity log entry.
type ActivityEntryResponse struct {
	ID          string    `json:"id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	QuoteID     string    `json:"quoteId,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewActivityEntryResponse converts a domain entry.
func NewActivityEntryResponse(e domain.ActivityLogEntry) ActivityEntryResponse {
	return ActivityEntryResponse{
		ID:          e.ID,
		Action:      e.Action,
		Description: e.Description,
		QuoteID:     e.QuoteID,
		Timestamp:   domain.FromMillis(e.Timestamp).UTC(),
	}
}

// NewActivityEntryResponses converts a slice of entries. The result is never nil.
func NewActivityEntryResponses(entries []domain.ActivityLogEntry) []ActivityEntryResponse {
	out := make([]ActivityEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = NewActivityEntryResponse(e)
	}

	return out
}

// ClearedResponse is returned by DELETE /me/custom-quotes.
type ClearedResponse struct {
	Removed int `json:"removed"`
}
