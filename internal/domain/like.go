package domain

import "sort"

// LikeState is the per (user, quote) like state.
type LikeState int

// Like states. Liking and Unliking are optimistic: the displayed flag already
// shows the target value while the remote write is in flight.
const (
	Unliked LikeState = iota
	Liking
	Liked
	Unliking
)

// String returns the state name.
func (s LikeState) String() string {
	switch s {
	case Unliked:
		return "unliked"
	case Liking:
		return "liking"
	case Liked:
		return "liked"
	case Unliking:
		return "unliking"
	default:
		return "unknown"
	}
}

// Displayed reports the liked flag a reader should show for this state.
func (s LikeState) Displayed() bool {
	return s == Liking || s == Liked
}

// Settled reports whether no write is in flight.
func (s LikeState) Settled() bool {
	return s == Liked || s == Unliked
}

// LikeSet is an immutable snapshot of one user's like relations, keyed by
// quote id. A new LikeSet replaces the previous one on every delivery.
type LikeSet struct {
	quotes map[string]Quote
}

// NewLikeSet builds a like set from like relation records.
func NewLikeSet(quotes []Quote) LikeSet {
	m := make(map[string]Quote, len(quotes))
	for _, q := range quotes {
		q.Liked = true
		m[q.ID] = q
	}

	return LikeSet{quotes: m}
}

// Contains reports whether the quote id is liked.
func (s LikeSet) Contains(id string) bool {
	_, ok := s.quotes[id]
	return ok
}

// Len returns the number of liked quotes.
func (s LikeSet) Len() int {
	return len(s.quotes)
}

// Get returns the like relation for id.
func (s LikeSet) Get(id string) (Quote, bool) {
	q, ok := s.quotes[id]
	return q, ok
}

// IDs returns the liked quote ids in sorted order.
func (s LikeSet) IDs() []string {
	ids := make([]string, 0, len(s.quotes))
	for id := range s.quotes {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// Quotes returns the like relations ordered by like time, oldest first.
func (s LikeSet) Quotes() []Quote {
	out := make([]Quote, 0, len(s.quotes))
	for _, q := range s.quotes {
		out = append(out, q)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp == out[j].Timestamp {
			return out[i].ID < out[j].ID
		}

		return out[i].Timestamp < out[j].Timestamp
	})

	return out
}

// Stamp returns copies of quotes with Liked set from set membership.
func (s LikeSet) Stamp(quotes []Quote) []Quote {
	out := make([]Quote, len(quotes))
	for i, q := range quotes {
		q.Liked = s.Contains(q.ID)
		out[i] = q
	}

	return out
}
