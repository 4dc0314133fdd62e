package codec

import (
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// envelope wraps every value so scalars and arrays can be stored as a
// top-level BSON document.
type envelope struct {
	Data any `bson:"data"`
}

// BinaryCodec encodes bodies as a BSON envelope.
type BinaryCodec struct{}

// Encode marshals {"data": v}. The output buffer is allocated at 110% of
// the estimated document size so the encoder does not have to grow it.
func (BinaryCodec) Encode(v any) ([]byte, error) {
	size := EnvelopeSize(v)
	buf := make([]byte, 0, size+size/10)

	b, err := bson.MarshalAppend(buf, envelope{Data: v})
	if err != nil {
		return nil, fmt.Errorf("failed to encode body as bson: %w", err)
	}
	return b, nil
}

// Decode reads the envelope back. Binary values come back as []byte,
// documents as map[string]any, arrays as []any, int32 as int64 and
// datetimes as time.Time.
func (BinaryCodec) Decode(data []byte) (any, error) {
	dec, err := bson.NewDecoder(bsonrw.NewBSONDocumentReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create bson decoder: %w", err)
	}
	dec.BinaryAsSlice()
	dec.DefaultDocumentM()

	var env envelope
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode bson body: %w", err)
	}
	return promote(env.Data), nil
}

// Mode returns Binary.
func (BinaryCodec) Mode() Mode { return Binary }

func promote(v any) any {
	switch t := v.(type) {
	case primitive.M:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = promote(e)
		}
		return m
	case map[string]any:
		for k, e := range t {
			t[k] = promote(e)
		}
		return t
	case primitive.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = promote(e.Value)
		}
		return m
	case primitive.A:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = promote(e)
		}
		return s
	case []any:
		for i, e := range t {
			t[i] = promote(e)
		}
		return t
	case primitive.Binary:
		return t.Data
	case primitive.DateTime:
		return t.Time().UTC()
	case int32:
		return int64(t)
	default:
		return v
	}
}

// EnvelopeSize estimates the serialized size of {"data": v} in bytes.
// Types it cannot size count as zero.
func EnvelopeSize(v any) int {
	// int32 length + element header for "data" + terminating byte
	return 4 + 1 + len("data") + 1 + valueSize(v) + 1
}

func valueSize(v any) int {
	switch t := v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case int8, int16, int32, uint8, uint16:
		return 4
	case int:
		if int64(t) >= -1<<31 && int64(t) <= 1<<31-1 {
			return 4
		}
		return 8
	case int64, uint32, uint64, uint, float32, float64, time.Time, primitive.DateTime:
		return 8
	case string:
		return 4 + len(t) + 1
	case []byte:
		return 4 + 1 + len(t)
	case map[string]any:
		size := 4 + 1
		for k, e := range t {
			size += 1 + len(k) + 1 + valueSize(e)
		}
		return size
	case []any:
		size := 4 + 1
		for i, e := range t {
			size += 1 + len(strconv.Itoa(i)) + 1 + valueSize(e)
		}
		return size
	case []string:
		size := 4 + 1
		for i, e := range t {
			size += 1 + len(strconv.Itoa(i)) + 1 + 4 + len(e) + 1
		}
		return size
	default:
		return 0
	}
}
