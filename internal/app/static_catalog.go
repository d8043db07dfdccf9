package app

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/jsamuelsen/quotehub-sync/internal/domain"
)

// StaticQuote is a curated quote shown on a category page. It has no
// canonical record in the tree.
type StaticQuote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// HandlerSlot names an action a static quote card exposes.
type HandlerSlot string

const (
	SlotFavorite HandlerSlot = "favorite"
	SlotCopy     HandlerSlot = "copy"
)

// ParseHandlerSlot returns the slot named s.
func ParseHandlerSlot(s string) (HandlerSlot, error) {
	switch HandlerSlot(s) {
	case SlotFavorite, SlotCopy:
		return HandlerSlot(s), nil
	default:
		return "", domain.NewValidationErrorWithValue("slot", "must be favorite or copy", s)
	}
}

// Binding ties one static quote on a page to one handler slot.
type Binding struct {
	Category string
	Index    int
	Quote    StaticQuote
	Slot     HandlerSlot
}

// InvokeResult is what a handler slot produced.
type InvokeResult struct {
	Slot HandlerSlot `json:"slot"`

	// Liked is set by the favorite slot.
	Liked *domain.Quote `json:"liked,omitempty"`

	// Text is set by the copy slot.
	Text string `json:"text,omitempty"`
}

var staticPages = map[string][]StaticQuote{
	"Wisdom": {
		{"Honesty is the first chapter in the book of wisdom.", "Thomas Jefferson"},
		{"The art of being wise is the art of knowing what to overlook.", "William James"},
		{"Look for the answer inside your question.", "Rumi"},
		{"The years teach much which the days never know.", "Ralph Waldo Emerson"},
	},
	"Art": {
		{"Reason is powerless in the expression of Love.", "Rumi"},
		{"The secret of life is in art.", "Oscar Wilde"},
		{"Look for the answer inside your question.", "Rumi"},
		{"To create one's world in any of the arts take courage.", "Georgia O'Keeffe"},
	},
	"Success": {
		{"When it looks impossible and you are ready to quit, victory is near.", "Tony Robbins"},
		{"Your time is limited, so don't waste it living someone else's life.", "Steve Jobs"},
		{"If you can dream it, you can do it.", "Walt Disney"},
		{"There is no elevator to success, you have to take stairs.", "Zig Ziglar"},
	},
	"Friendship": {
		{"Friendship needs no words.", "Dag Hammarskjold"},
		{"We do not remember days, we remember moments.", "Cesare Pavese"},
		{"No friendship is an accident.", "O. Henry"},
		{"Once you pledge, don't hedge.", "Nikita Khrushchev"},
	},
	"Positive": {
		{"Liberty means responsibility. That is why most people dread it.", "George Bernard Shaw"},
		{"Death is not the greatest loss in life. The greatest loss is what dies inside us while we live.", "Norman Cousins"},
		{"Life's most persistent and urgent question is, 'What are you doing for others?'", "Martin Luther King, Jr."},
		{"You cannot do kindness too soon, for you never know how soon it will be too late.", "Ralph Waldo Emerson"},
	},
	"Life": {
		{"Life is divided into the horrible and the miserable.", "Woody Allen"},
		{"A stumble may prevent a fall.", "Thomas Fuller"},
		{"Nothing is an obstacles unless you say it is.", "Wally Amos"},
		{"We are what we repeatedly do. Excellence, then, is not an act, but a habit.", "Aristotle"},
	},
}

// StaticCatalog serves the curated category pages. Every (quote, slot)
// binding is built once at construction.
type StaticCatalog struct {
	likes    *LikeStateManager
	pages    map[string][]StaticQuote
	bindings []Binding
	index    map[bindingKey]int
}

type bindingKey struct {
	category string
	index    int
	slot     HandlerSlot
}

// NewStaticCatalog builds the catalog. likes may be nil, in which case the
// favorite slot is unavailable.
func NewStaticCatalog(likes *LikeStateManager) *StaticCatalog {
	c := &StaticCatalog{
		likes: likes,
		pages: staticPages,
		index: make(map[bindingKey]int),
	}

	categories := make([]string, 0, len(c.pages))
	for cat := range c.pages {
		categories = append(categories, cat)
	}

	slices.Sort(categories)

	for _, cat := range categories {
		for i, q := range c.pages[cat] {
			for _, slot := range []HandlerSlot{SlotFavorite, SlotCopy} {
				c.index[bindingKey{cat, i, slot}] = len(c.bindings)
				c.bindings = append(c.bindings, Binding{Category: cat, Index: i, Quote: q, Slot: slot})
			}
		}
	}

	return c
}

// Bindings returns a copy of every binding.
func (c *StaticCatalog) Bindings() []Binding {
	return slices.Clone(c.bindings)
}

// Page returns the quotes on category's page.
func (c *StaticCatalog) Page(category string) ([]StaticQuote, error) {
	page, ok := c.pages[category]
	if !ok {
		return nil, domain.NewNotFoundError("static page", category)
	}

	return slices.Clone(page), nil
}

// Invoke runs the handler bound to (category, index, slot). Favorite needs
// a signed-in session; copy does not.
func (c *StaticCatalog) Invoke(ctx context.Context, category string, index int, slot HandlerSlot) (InvokeResult, error) {
	i, ok := c.index[bindingKey{category, index, slot}]
	if !ok {
		if _, known := c.pages[category]; !known {
			return InvokeResult{}, domain.NewNotFoundError("static page", category)
		}

		return InvokeResult{}, domain.NewNotFoundError("static binding",
			fmt.Sprintf("%s/%s/%s", category, strconv.Itoa(index), slot))
	}

	b := c.bindings[i]

	switch b.Slot {
	case SlotFavorite:
		if c.likes == nil {
			return InvokeResult{}, domain.NewUnavailableError("likes", "not configured")
		}

		liked, err := c.likes.LikeStatic(ctx, b.Category, b.Quote)
		if err != nil {
			return InvokeResult{}, err
		}

		return InvokeResult{Slot: b.Slot, Liked: &liked}, nil
	default:
		return InvokeResult{Slot: b.Slot, Text: b.Quote.Text + " - " + b.Quote.Author}, nil
	}
}
