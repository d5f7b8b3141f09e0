package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printloom/printloom/backend-go/internal/geometry"
)

func TestAutoNest_SingleLayer(t *testing.T) {
	sheet := geometry.Sheet{Width: 22.5, Height: 48}
	layers := []geometry.Layer{{ID: "a", Width: 10, Height: 10}}

	result := AutoNest(sheet, layers, 0.125)

	require.Len(t, result.Placements, 1)
	assert.Equal(t, geometry.Placement{ID: "a", X: 0.125, Y: 0.125, Rotation: geometry.Rotation0}, result.Placements[0])
	assert.Equal(t, 9, result.EfficiencyPercent)
	assert.Empty(t, result.Diagnostics)
}

func TestAutoNest_OnePlacementPerInputID(t *testing.T) {
	sheet := geometry.Sheet{Width: 20, Height: 20}
	layers := []geometry.Layer{
		{ID: "small", Width: 2, Height: 3},
		{ID: "large", Width: 8, Height: 8},
		{ID: "medium", Width: 5, Height: 4},
	}

	result := AutoNest(sheet, layers, 0.125)

	require.Len(t, result.Placements, len(layers))
	for i, l := range layers {
		assert.Equal(t, l.ID, result.Placements[i].ID, "placements keep input order")
	}
}

func TestAutoNest_LargestFirstSharesShelf(t *testing.T) {
	// Three equal squares, zero padding: two fit on the first shelf, the
	// third opens a new shelf directly below.
	sheet := geometry.Sheet{Width: 10, Height: 10}
	layers := []geometry.Layer{
		{ID: "a", Width: 4, Height: 4},
		{ID: "b", Width: 4, Height: 4},
		{ID: "c", Width: 4, Height: 4},
	}

	result := AutoNest(sheet, layers, 0)

	require.Len(t, result.Placements, 3)
	assert.Equal(t, geometry.Placement{ID: "a", X: 0, Y: 0, Rotation: geometry.Rotation0}, result.Placements[0])
	assert.Equal(t, geometry.Placement{ID: "b", X: 4, Y: 0, Rotation: geometry.Rotation0}, result.Placements[1])
	assert.Equal(t, geometry.Placement{ID: "c", X: 0, Y: 4, Rotation: geometry.Rotation0}, result.Placements[2])
	assert.Empty(t, result.Diagnostics)
}

func TestAutoNest_RotatesWhenOnlyRotatedFits(t *testing.T) {
	sheet := geometry.Sheet{Width: 10, Height: 4}
	layers := []geometry.Layer{{ID: "tall", Width: 3, Height: 6}}

	result := AutoNest(sheet, layers, 0)

	require.Len(t, result.Placements, 1)
	p := result.Placements[0]
	assert.Equal(t, geometry.Rotation90, p.Rotation)
	assert.Equal(t, 0.0, p.X)
	assert.Equal(t, 0.0, p.Y)
	assert.Empty(t, result.Diagnostics)
}

func TestAutoNest_PrefersUnrotatedWhenBothFit(t *testing.T) {
	sheet := geometry.Sheet{Width: 20, Height: 20}
	layers := []geometry.Layer{{ID: "a", Width: 3, Height: 6}}

	result := AutoNest(sheet, layers, 0)

	require.Len(t, result.Placements, 1)
	assert.Equal(t, geometry.Rotation0, result.Placements[0].Rotation)
}

func TestAutoNest_OversizedFallback(t *testing.T) {
	// A layer too large for the sheet in either orientation still gets a
	// placement at the padding-inset origin, flagged with a diagnostic.
	sheet := geometry.Sheet{Width: 10, Height: 10}
	layers := []geometry.Layer{{ID: "big", Width: 20, Height: 20}}

	result := AutoNest(sheet, layers, 0.125)

	require.Len(t, result.Placements, 1)
	assert.Equal(t, geometry.Placement{ID: "big", X: 0.125, Y: 0.125, Rotation: geometry.Rotation0}, result.Placements[0])
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, Diagnostic{ID: "big", Reason: ReasonTooLargeForSheet}, result.Diagnostics[0])
}

func TestAutoNest_EfficiencyIsPureAreaRatio(t *testing.T) {
	// Efficiency and wasted area come straight from input areas even when the
	// layers cannot physically fit: they measure utilization, not packing.
	sheet := geometry.Sheet{Width: 10, Height: 10}
	layers := []geometry.Layer{{ID: "big", Width: 20, Height: 20}}

	result := AutoNest(sheet, layers, 0.125)

	assert.Equal(t, 400, result.EfficiencyPercent)
	assert.Equal(t, -300.0, result.WastedArea)
}

func TestAutoNest_Deterministic(t *testing.T) {
	sheet := geometry.Sheet{Width: 22.5, Height: 48}
	layers := []geometry.Layer{
		{ID: "a", Width: 4, Height: 6},
		{ID: "b", Width: 6, Height: 4},
		{ID: "c", Width: 4, Height: 6},
		{ID: "d", Width: 2, Height: 2},
	}

	first := AutoNest(sheet, layers, 0.125)
	second := AutoNest(sheet, layers, 0.125)

	assert.Equal(t, first, second)
}

func TestAutoNest_DoesNotMutateInput(t *testing.T) {
	layers := []geometry.Layer{
		{ID: "b", Width: 1, Height: 1},
		{ID: "a", Width: 9, Height: 9},
	}

	AutoNest(geometry.Sheet{Width: 20, Height: 20}, layers, 0.125)

	assert.Equal(t, "b", layers[0].ID, "input order untouched by the internal sort")
	assert.Equal(t, "a", layers[1].ID)
}
