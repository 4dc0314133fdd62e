package codec

import (
	"fmt"
	"strings"
)

// Mode selects a body encoding.
type Mode string

const (
	// Text encodes bodies as JSON.
	Text Mode = "text"
	// Binary encodes bodies as a BSON envelope.
	Binary Mode = "binary"
)

// Codec encodes values before upload and decodes downloaded bodies.
type Codec interface {
	// Encode serializes v.
	Encode(v any) ([]byte, error)
	// Decode deserializes data produced by Encode.
	Decode(data []byte) (any, error)
	// Mode reports which encoding the codec implements.
	Mode() Mode
}

// ParseMode maps a configuration value to a Mode. An empty value selects Text.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "textual", "json":
		return Text, nil
	case "binary", "bson":
		return Binary, nil
	default:
		return "", fmt.Errorf("unknown encoding mode %q", s)
	}
}

// New returns the codec for mode.
func New(mode Mode) (Codec, error) {
	switch mode {
	case Text:
		return TextCodec{}, nil
	case Binary:
		return BinaryCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown encoding mode %q", mode)
	}
}
