package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printloom/printloom/backend-go/internal/canvas"
	"github.com/printloom/printloom/backend-go/internal/geometry"
)

func TestResolveGeometry_DefaultsFromDocument(t *testing.T) {
	doc := canvas.NewEmptyDocument("cnv_1", "test", 22.5, 48, 0.125)
	doc.Layers = []canvas.PlacedLayer{{ID: "a", Width: 4, Height: 6}}

	sheet, layers, padding := resolveGeometry(doc, &layoutRequest{})

	assert.Equal(t, geometry.Sheet{Width: 22.5, Height: 48}, sheet)
	require.Len(t, layers, 1)
	assert.Equal(t, "a", layers[0].ID)
	assert.Equal(t, 0.125, padding)
}

func TestResolveGeometry_RequestOverrides(t *testing.T) {
	doc := canvas.NewEmptyDocument("cnv_1", "test", 22.5, 48, 0.125)
	doc.Layers = []canvas.PlacedLayer{{ID: "a", Width: 4, Height: 6}}

	override := 0.25
	sheet, layers, padding := resolveGeometry(doc, &layoutRequest{
		SheetWidth:  10,
		SheetHeight: 12,
		Layers:      []layerInput{{ID: "x", Width: 1, Height: 2}},
		Padding:     &override,
	})

	assert.Equal(t, geometry.Sheet{Width: 10, Height: 12}, sheet)
	require.Len(t, layers, 1)
	assert.Equal(t, geometry.Layer{ID: "x", Width: 1, Height: 2}, layers[0])
	assert.Equal(t, 0.25, padding)
}

func TestAppendDuplicates(t *testing.T) {
	doc := canvas.NewEmptyDocument("cnv_1", "test", 10, 10, 0.125)
	doc.Layers = []canvas.PlacedLayer{
		{ID: "t", Name: "badge", Width: 2, Height: 2, ArtworkURL: "/artwork/art_1.png"},
	}

	appendDuplicates(doc, []Duplicate{
		{SourceID: "t", X: 2.375, Y: 0.125},
		{SourceID: "missing", X: 4.625, Y: 0.125},
	})

	require.Len(t, doc.Layers, 2, "duplicates of unknown sources are dropped")
	dup := doc.Layers[1]
	assert.NotEqual(t, "t", dup.ID)
	assert.Equal(t, "t", dup.SourceID)
	assert.Equal(t, "badge", dup.Name)
	assert.Equal(t, 2.0, dup.Width)
	assert.Equal(t, 2.375, dup.X)
	assert.Equal(t, "/artwork/art_1.png", dup.ArtworkURL, "artwork follows the clone")
}
