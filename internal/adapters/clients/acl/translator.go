package acl

import (
	"encoding/json"
	"fmt"

	"github.com/jsamuelsen/quotehub-sync/internal/adapters/tree"
	"github.com/jsamuelsen/quotehub-sync/internal/domain"
	"github.com/jsamuelsen/quotehub-sync/internal/ports"
)

// EncodeRecord turns a value into the JSON stored at a path. Raw JSON
// passes through after a validity check.
func EncodeRecord(value any) ([]byte, error) {
	var raw []byte

	switch v := value.(type) {
	case nil:
		return nil, domain.NewValidationError("value", "nil record")
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, domain.NewValidationError("value", err.Error())
		}

		return b, nil
	}

	if !json.Valid(raw) {
		return nil, domain.NewValidationError("value", "not valid JSON")
	}

	return raw, nil
}

// toSnapshot assembles a port snapshot from backend records.
func toSnapshot(path string, value []byte, entries []tree.Entry) ports.Snapshot {
	snap := ports.Snapshot{Path: path}

	if value != nil {
		snap.Value = json.RawMessage(value)
	}

	if len(entries) > 0 {
		snap.Children = make([]ports.Child, len(entries))
		for i, e := range entries {
			snap.Children[i] = ports.Child{Key: e.Key, Value: json.RawMessage(e.Value)}
		}
	}

	return snap
}

// cleanPath validates a caller path, returning a domain validation error.
func cleanPath(path string) (string, error) {
	p, err := tree.CleanPath(path)
	if err != nil {
		return "", domain.NewValidationErrorWithValue("path", fmt.Sprint(err), path)
	}

	return p, nil
}
