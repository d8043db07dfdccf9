package dto

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
)

// Page sizes for the activity log.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ErrInvalidCursor is returned for cursors this server did not issue.
var ErrInvalidCursor = errors.New("invalid cursor")

// PageQuery is the query of a cursor-paged listing.
type PageQuery struct {
	Cursor string `form:"cursor"`
	Limit  int    `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// PageSize returns the requested limit, or fallback when none was given,
// capped at MaxLimit.
func (q *PageQuery) PageSize(fallback int) int {
	n := q.Limit
	if n <= 0 {
		n = fallback
	}

	if n <= 0 {
		n = DefaultLimit
	}

	return min(n, MaxLimit)
}

// After returns the position to continue from, or nil for the first page.
func (q *PageQuery) After() (*Cursor, error) {
	if q.Cursor == "" {
		return nil, nil //nolint:nilnil // no cursor means the first page
	}

	c, err := ParseCursor(q.Cursor)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// Cursor is the (timestamp, id) of the last entry of a page. Entries are
// ordered newest first with ties broken by id.
type Cursor struct {
	Timestamp int64
	ID        string
}

// String encodes c as an opaque URL-safe token.
func (c Cursor) String() string {
	raw := strconv.FormatInt(c.Timestamp, 36) + "." + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// ParseCursor decodes a token produced by Cursor.String.
func ParseCursor(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}

	ts, id, ok := strings.Cut(string(raw), ".")
	if !ok || id == "" {
		return Cursor{}, ErrInvalidCursor
	}

	n, err := strconv.ParseInt(ts, 36, 64)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}

	return Cursor{Timestamp: n, ID: id}, nil
}

// Page is one page of a cursor-paged listing.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
}

// NewPage builds a page from up to limit+1 items; the extra item only
// signals that another page exists.
func NewPage[T any](items []T, limit int, position func(T) Cursor) *Page[T] {
	p := &Page[T]{Items: items, HasMore: len(items) > limit}

	if p.HasMore {
		p.Items = items[:limit]
	}

	if p.Items == nil {
		p.Items = []T{}
	}

	if p.HasMore && len(p.Items) > 0 {
		p.NextCursor = position(p.Items[len(p.Items)-1]).String()
	}

	return p
}
