package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jsamuelsen/quotehub-sync/internal/ports"
)

// Apply evaluates q over the direct children of q.Path. Children missing
// the ordered field, including scalar children, sort first; ties break on
// key.
func Apply(entries []Entry, q ports.Query) ([]Entry, error) {
	out := entries

	if q.OrderByChild != "" {
		keyed := make([]orderedEntry, 0, len(entries))

		for _, e := range entries {
			v, err := childField(e.Value, q.OrderByChild)
			if err != nil {
				return nil, fmt.Errorf("evaluating %s on %s/%s: %w", q.OrderByChild, q.Path, e.Key, err)
			}

			if q.EqualTo != nil && !equalValues(v, q.EqualTo) {
				continue
			}

			keyed = append(keyed, orderedEntry{entry: e, sortVal: v})
		}

		sort.SliceStable(keyed, func(i, j int) bool {
			if c := compareValues(keyed[i].sortVal, keyed[j].sortVal); c != 0 {
				return c < 0
			}

			return keyed[i].entry.Key < keyed[j].entry.Key
		})

		out = make([]Entry, len(keyed))
		for i, k := range keyed {
			out[i] = k.entry
		}
	}

	if q.LimitToLast > 0 && len(out) > q.LimitToLast {
		out = out[len(out)-q.LimitToLast:]
	}

	return out, nil
}

type orderedEntry struct {
	entry   Entry
	sortVal any
}

// childField reads field from a child record. Children that hold no record
// or a non-object value have no fields and yield nil; malformed JSON is an
// error.
func childField(raw []byte, field string) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	m, ok := v.(map[string]any)
	if !ok {
		return nil, nil
	}

	return normalize(m[field]), nil
}

// normalize maps JSON values onto nil, bool, float64, or string.
func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}

		return f
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	case nil, bool, float64, string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func equalValues(a, b any) bool {
	return compareValues(normalize(a), normalize(b)) == 0
}

// typeRank orders values by kind: null, false, true, numbers, strings.
func typeRank(v any) int {
	switch t := v.(type) {
	case nil:
		return 0
	case bool:
		if t {
			return 2
		}

		return 1
	case float64:
		return 3
	default:
		return 4
	}
}

func compareValues(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return ra - rb
	}

	switch x := a.(type) {
	case float64:
		y, _ := b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}

		return 0
	case string:
		y, _ := b.(string)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}

		return 0
	}

	return 0
}
