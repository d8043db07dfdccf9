package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotehub-sync/internal/ports"
)

func keys(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Key
	}

	return out
}

func TestApply(t *testing.T) {
	entries := []Entry{
		{Key: "a", Value: []byte(`{"category":"Art","timestamp":300}`)},
		{Key: "b", Value: []byte(`{"category":"Life","timestamp":100}`)},
		{Key: "c", Value: []byte(`{"category":"Art","timestamp":200}`)},
		{Key: "d", Value: []byte(`{"category":"Art"}`)},
	}

	tests := []struct {
		name  string
		query ports.Query
		want  []string
	}{
		{
			name:  "no ordering keeps key order",
			query: ports.At("quotes"),
			want:  []string{"a", "b", "c", "d"},
		},
		{
			name:  "order by timestamp puts missing first",
			query: ports.At("quotes").OrderBy("timestamp"),
			want:  []string{"d", "b", "c", "a"},
		},
		{
			name:  "equal to filters",
			query: ports.At("quotes").OrderBy("category").Equal("Art"),
			want:  []string{"a", "c", "d"},
		},
		{
			name:  "limit to last keeps the tail",
			query: ports.At("quotes").OrderBy("timestamp").Last(2),
			want:  []string{"c", "a"},
		},
		{
			name:  "numeric equality across int and float",
			query: ports.At("quotes").OrderBy("timestamp").Equal(200),
			want:  []string{"c"},
		},
		{
			name:  "limit larger than result",
			query: ports.At("quotes").Last(10),
			want:  []string{"a", "b", "c", "d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(entries, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, keys(got))
		})
	}
}

func TestApply_InvalidRecord(t *testing.T) {
	_, err := Apply([]Entry{{Key: "x", Value: []byte(`not json`)}}, ports.At("quotes").OrderBy("timestamp"))
	assert.Error(t, err)
}

func TestApply_NonObjectChildrenSortFirst(t *testing.T) {
	entries := []Entry{
		{Key: "a", Value: []byte(`{"timestamp":200}`)},
		{Key: "b", Value: []byte(`"just text"`)},
		{Key: "c", Value: []byte(`{"timestamp":100}`)},
		{Key: "d", Value: []byte(`42`)},
		{Key: "e", Value: []byte(`[1,2]`)},
		{Key: "f", Value: nil},
	}

	got, err := Apply(entries, ports.At("users/u1/likedQuotes").OrderBy("timestamp"))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "d", "e", "f", "c", "a"}, keys(got))

	got, err = Apply(entries, ports.At("users/u1/likedQuotes").OrderBy("timestamp").Last(2))
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, keys(got))

	got, err = Apply(entries, ports.At("users/u1/likedQuotes").OrderBy("timestamp").Equal(100))
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, keys(got))
}

func TestCompareValues_TypeRank(t *testing.T) {
	ordered := []any{nil, false, true, float64(-1), float64(2), "a", "b"}

	for i := 1; i < len(ordered); i++ {
		assert.Negative(t, compareValues(ordered[i-1], ordered[i]), "%v < %v", ordered[i-1], ordered[i])
	}
}
