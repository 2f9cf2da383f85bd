package services

import (
	"encoding/json"
	"fmt"
)

// decodeItems unmarshals each accumulated pagination item into T. kind names
// the payload in error messages.
func decodeItems[T any](items []json.RawMessage, kind string) ([]T, error) {
	decoded := make([]T, 0, len(items))
	for i, raw := range items {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("failed to decode %s item %d: %w", kind, i, err)
		}
		decoded = append(decoded, v)
	}
	return decoded, nil
}
