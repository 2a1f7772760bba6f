package models

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/ontoserver/collabclient/pkg/constants"
)

// DateTime embeds time.Time and travels as a tagged [seconds, nanoseconds] pair.
// The zero value is sent as the NONE tag.
type DateTime struct {
	time.Time
}

func NewDateTime(t time.Time) DateTime {
	return DateTime{t.UTC()}
}

func (d DateTime) MarshalCBOR() ([]byte, error) {
	if d.Time.IsZero() {
		return cbor.Marshal(cbor.Tag{Number: uint64(TagNone)})
	}

	totalNS := d.UnixNano()

	s := totalNS / constants.OneSecondToNanoSecond
	ns := totalNS % constants.OneSecondToNanoSecond

	return cbor.Marshal(cbor.Tag{
		Number:  uint64(TagDateTime),
		Content: [2]int64{s, ns},
	})
}

func (d *DateTime) UnmarshalCBOR(data []byte) error {
	var tag cbor.RawTag
	if err := cbor.Unmarshal(data, &tag); err != nil {
		return err
	}

	switch CustomCBORTag(tag.Number) {
	case TagNone:
		*d = DateTime{}
		return nil
	case TagDateTime:
	default:
		return fmt.Errorf("unexpected tag number: got %d, want %d", tag.Number, TagDateTime)
	}

	var temp [2]int64
	if err := cbor.Unmarshal(tag.Content, &temp); err != nil {
		return err
	}

	*d = DateTime{time.Unix(temp[0], temp[1]).UTC()}

	return nil
}

func (d DateTime) String() string {
	if d.Time.IsZero() {
		return ""
	}
	return d.Format(time.RFC3339)
}
