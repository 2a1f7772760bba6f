package models

import (
	"io"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/ontoserver/collabclient/internal/codec"
)

type CustomCBORTag uint64

var (
	TagNone     CustomCBORTag = 6
	TagDateTime CustomCBORTag = 12
)

var (
	encModeOnce sync.Once
	encMode     cbor.EncMode
	decModeOnce sync.Once
	decMode     cbor.DecMode
)

// CborMarshaler is the default wire encoder used by every transport engine.
type CborMarshaler struct {
}

func (c CborMarshaler) Marshal(v any) ([]byte, error) {
	return getCborEncoder().Marshal(v)
}

func (c CborMarshaler) NewEncoder(w io.Writer) codec.Encoder {
	return getCborEncoder().NewEncoder(w)
}

type CborUnmarshaler struct {
}

func (c CborUnmarshaler) Unmarshal(data []byte, dst any) error {
	return getCborDecoder().Unmarshal(data, dst)
}

func (c CborUnmarshaler) NewDecoder(r io.Reader) codec.Decoder {
	return getCborDecoder().NewDecoder(r)
}

// Cbor bundles both halves so it can be handed to code expecting a codec.Codec.
type Cbor struct {
	CborMarshaler
	CborUnmarshaler
}

var _ codec.Codec = Cbor{}

func getCborEncoder() cbor.EncMode {
	encModeOnce.Do(func() {
		em, err := cbor.EncOptions{
			Time:    cbor.TimeRFC3339Nano,
			TimeTag: cbor.EncTagRequired,
			Sort:    cbor.SortCanonical,
		}.EncMode()
		if err != nil {
			panic(err)
		}
		encMode = em
	})

	return encMode
}

func getCborDecoder() cbor.DecMode {
	decModeOnce.Do(func() {
		dm, err := cbor.DecOptions{
			TimeTagToAny: cbor.TimeTagToTime,
			DupMapKey:    cbor.DupMapKeyEnforcedAPF,
		}.DecMode()
		if err != nil {
			panic(err)
		}
		decMode = dm
	})

	return decMode
}
