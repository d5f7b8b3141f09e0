package layout

import (
	"errors"
	"fmt"

	"github.com/printloom/printloom/backend-go/internal/geometry"
)

var (
	ErrInvalidSheet     = errors.New("sheet dimensions must be positive")
	ErrInvalidLayer     = errors.New("layer dimensions must be positive")
	ErrEmptyLayerID     = errors.New("layer id must not be empty")
	ErrDuplicateLayerID = errors.New("duplicate layer id")
	ErrNegativePadding  = errors.New("padding must not be negative")
)

// Validate rejects malformed geometry before either engine runs. The engines
// themselves do not validate defensively; every boundary that accepts layout
// requests must call this first.
func Validate(sheet geometry.Sheet, layers []geometry.Layer, padding float64) error {
	if sheet.Width <= 0 || sheet.Height <= 0 {
		return ErrInvalidSheet
	}
	if padding < 0 {
		return ErrNegativePadding
	}

	seen := make(map[string]struct{}, len(layers))
	for _, l := range layers {
		if l.ID == "" {
			return ErrEmptyLayerID
		}
		if _, dup := seen[l.ID]; dup {
			return fmt.Errorf("layer %q: %w", l.ID, ErrDuplicateLayerID)
		}
		seen[l.ID] = struct{}{}
		if l.Width <= 0 || l.Height <= 0 {
			return fmt.Errorf("layer %q: %w", l.ID, ErrInvalidLayer)
		}
	}
	return nil
}
