// Package codec declares the encoding contract shared by the transport engines
// and the fake authority. The concrete CBOR implementation lives in pkg/models.
package codec

import "io"

type Encoder interface {
	Encode(v any) error
}

type Decoder interface {
	Decode(v any) error
}

type Marshaler interface {
	Marshal(v any) ([]byte, error)
	NewEncoder(w io.Writer) Encoder
}

type Unmarshaler interface {
	Unmarshal(data []byte, dst any) error
	NewDecoder(r io.Reader) Decoder
}

// Codec is implemented by types that can both encode and decode wire payloads.
type Codec interface {
	Marshaler
	Unmarshaler
}
