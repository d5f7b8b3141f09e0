package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/printloom/printloom/backend-go/internal/geometry"
)

func TestValidate(t *testing.T) {
	sheet := geometry.Sheet{Width: 10, Height: 10}
	good := []geometry.Layer{{ID: "a", Width: 2, Height: 2}}

	tests := []struct {
		name    string
		sheet   geometry.Sheet
		layers  []geometry.Layer
		padding float64
		wantErr error
	}{
		{"valid", sheet, good, 0.125, nil},
		{"valid empty layers", sheet, nil, 0, nil},
		{"zero sheet width", geometry.Sheet{Width: 0, Height: 10}, good, 0, ErrInvalidSheet},
		{"negative sheet height", geometry.Sheet{Width: 10, Height: -1}, good, 0, ErrInvalidSheet},
		{"negative padding", sheet, good, -0.1, ErrNegativePadding},
		{"empty layer id", sheet, []geometry.Layer{{ID: "", Width: 1, Height: 1}}, 0, ErrEmptyLayerID},
		{"duplicate layer id", sheet, []geometry.Layer{
			{ID: "a", Width: 1, Height: 1},
			{ID: "a", Width: 2, Height: 2},
		}, 0, ErrDuplicateLayerID},
		{"zero layer width", sheet, []geometry.Layer{{ID: "a", Width: 0, Height: 1}}, 0, ErrInvalidLayer},
		{"negative layer height", sheet, []geometry.Layer{{ID: "a", Width: 1, Height: -2}}, 0, ErrInvalidLayer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.sheet, tt.layers, tt.padding)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
