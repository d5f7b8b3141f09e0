package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printloom/printloom/backend-go/internal/geometry"
)

func TestApplyPlacements(t *testing.T) {
	doc := NewEmptyDocument("cnv_1", "test", 22.5, 48, 0.125)
	doc.Layers = []PlacedLayer{
		{ID: "a", Width: 4, Height: 6},
		{ID: "b", Width: 3, Height: 3},
		{ID: "untouched", Width: 1, Height: 1, X: 5, Y: 5},
	}

	doc.ApplyPlacements([]geometry.Placement{
		{ID: "a", X: 0.125, Y: 0.125, Rotation: geometry.Rotation90},
		{ID: "b", X: 6.25, Y: 0.125, Rotation: geometry.Rotation0},
	})

	a := doc.FindLayer("a")
	require.NotNil(t, a)
	assert.Equal(t, 0.125, a.X)
	assert.Equal(t, geometry.Rotation90, a.Rotation)
	assert.Equal(t, 4.0, a.Width, "placement never rewrites layer dimensions")

	untouched := doc.FindLayer("untouched")
	require.NotNil(t, untouched)
	assert.Equal(t, 5.0, untouched.X)
	assert.Equal(t, 5.0, untouched.Y)
}

func TestEngineLayers(t *testing.T) {
	doc := NewEmptyDocument("cnv_1", "test", 10, 10, 0)
	doc.Layers = []PlacedLayer{
		{ID: "a", Width: 2, Height: 3, Rotation: geometry.Rotation90},
	}

	layers := doc.EngineLayers()

	require.Len(t, layers, 1)
	assert.Equal(t, geometry.Layer{ID: "a", Width: 2, Height: 3, Rotation: geometry.Rotation90}, layers[0])
}

func TestNewEmptyDocument(t *testing.T) {
	doc := NewEmptyDocument("cnv_1", "stickers", 22.5, 48, 0.125)

	assert.Equal(t, "in", doc.Canvas.Unit)
	assert.Equal(t, geometry.Sheet{Width: 22.5, Height: 48}, doc.Sheet())
	assert.Empty(t, doc.Layers)
}
