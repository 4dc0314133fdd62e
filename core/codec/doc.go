// Package codec provides the body encodings used for object payloads.
//
// A Codec is chosen once, when the objectstore client is built, and used for
// every Put and Get on that client. Objects written with one codec cannot be
// read back with the other.
//
//   - Text: JSON via goccy/go-json. Byte slices come back as base64 strings.
//   - Binary: a BSON document {"data": value}. Byte slices, integers and
//     nested documents survive the round trip with their native types.
//
// # Usage
//
//	c, err := codec.New(codec.Binary)
//	b, _ := c.Encode(map[string]any{"data": "x"})
//	v, _ := c.Decode(b)
package codec
