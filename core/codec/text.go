package codec

import (
	"fmt"

	"github.com/goccy/go-json"
)

// TextCodec encodes bodies as JSON.
type TextCodec struct{}

// Encode marshals v to JSON.
func (TextCodec) Encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode body as json: %w", err)
	}
	return b, nil
}

// Decode parses JSON into maps, slices, strings, float64, bool or nil.
func (TextCodec) Decode(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode json body: %w", err)
	}
	return v, nil
}

// Mode returns Text.
func (TextCodec) Mode() Mode { return Text }
