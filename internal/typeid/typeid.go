package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixUser        = "user"
	PrefixCanvas      = "cnv"
	PrefixSnapshot    = "snap"
	PrefixLayer       = "layer"
	PrefixArtwork     = "art"
	PrefixReservation = "rsv"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewUserID() string        { return New(PrefixUser) }
func NewCanvasID() string      { return New(PrefixCanvas) }
func NewSnapshotID() string    { return New(PrefixSnapshot) }
func NewLayerID() string       { return New(PrefixLayer) }
func NewArtworkID() string     { return New(PrefixArtwork) }
func NewReservationID() string { return New(PrefixReservation) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
