package integrations

import (
	"encoding/json"
	"fmt"
)

func decodeParams(raw json.RawMessage, dst any) error {
	return json.Unmarshal(raw, dst)
}

// DecodeParams decodes approved proposal params into T.
func DecodeParams[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := decodeParams(raw, &v); err != nil {
		return v, fmt.Errorf("decode params: %w", err)
	}
	return v, nil
}
