package app

import (
	"sort"

	"github.com/jsamuelsen/quotehub-sync/internal/domain"
	"github.com/jsamuelsen/quotehub-sync/internal/ports"
)

// CategoryAggregator derives per-category counts from a like-set. It holds
// no state; every delivery is folded from scratch.
type CategoryAggregator struct{}

// NewCategoryAggregator creates an aggregator.
func NewCategoryAggregator() *CategoryAggregator {
	return &CategoryAggregator{}
}

// Aggregate counts liked quotes per category.
func (CategoryAggregator) Aggregate(likes []domain.Quote) domain.CategoryCount {
	counts := make(domain.CategoryCount)
	for _, q := range likes {
		counts[q.Category]++
	}

	return counts
}

// Fold decodes a likedQuotes snapshot into a like-set and its counts.
// Children whose record carries no id are keyed by their path segment.
func (a CategoryAggregator) Fold(snap ports.Snapshot) (domain.LikeSet, domain.CategoryCount, error) {
	quotes, err := ports.DecodeChildren[domain.Quote](snap)
	if err != nil {
		return domain.LikeSet{}, nil, err
	}

	for i, c := range snap.Children {
		if quotes[i].ID == "" {
			quotes[i].ID = c.Key
		}
	}

	return domain.NewLikeSet(quotes), a.Aggregate(quotes), nil
}

// Categories returns the categories with at least one like, busiest first.
func (CategoryAggregator) Categories(counts domain.CategoryCount) []string {
	out := make([]string, 0, len(counts))
	for c, n := range counts {
		if n > 0 {
			out = append(out, c)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if counts[out[i]] != counts[out[j]] {
			return counts[out[i]] > counts[out[j]]
		}

		return out[i] < out[j]
	})

	return out
}
