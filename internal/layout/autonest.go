package layout

import (
	"math"
	"sort"

	"github.com/printloom/printloom/backend-go/internal/geometry"
)

// ReasonTooLargeForSheet marks a layer that cannot fit the sheet in either
// orientation, even alone. The layer still receives a placement at the
// padding-inset origin so that every input id is represented in the output;
// it will visibly overlap other content.
const ReasonTooLargeForSheet = "TooLargeForSheet"

// Diagnostic flags a placement that was produced by a degraded policy
// rather than the packing heuristic.
type Diagnostic struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// AutoNestResult is the output of one AutoNest call. Placements are in input
// order, one per input layer. EfficiencyPercent and WastedArea are computed
// purely from input areas; they measure theoretical area utilization, not
// realized packing quality, and WastedArea goes negative when the layers
// out-measure the sheet.
type AutoNestResult struct {
	Placements        []geometry.Placement `json:"placements"`
	EfficiencyPercent int                  `json:"efficiencyPercent"`
	WastedArea        float64              `json:"wastedArea"`
	Diagnostics       []Diagnostic         `json:"diagnostics,omitempty"`
}

// shelf is a horizontal packing lane. It lives only for the duration of a
// single AutoNest call.
type shelf struct {
	y       float64 // top edge
	height  float64 // tallest item placed so far
	cursorX float64 // next free x
}

// AutoNest arranges every layer on the sheet using a greedy shelf packer
// with optional quarter-turn rotation. Larger layers are placed first, which
// empirically reduces fragmentation; ties keep input order so the output is
// deterministic. The function is pure: identical inputs produce identical
// results, and no state survives the call.
//
// Callers are expected to validate inputs first (see Validate); AutoNest
// itself never fails for structurally valid input and always returns one
// placement per layer.
func AutoNest(sheet geometry.Sheet, layers []geometry.Layer, padding float64) AutoNestResult {
	ordered := make([]geometry.Layer, len(layers))
	copy(ordered, layers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Area() > ordered[j].Area()
	})

	shelves := []*shelf{{y: padding, height: 0, cursorX: padding}}
	byID := make(map[string]geometry.Placement, len(layers))
	var diags []Diagnostic

	for _, layer := range ordered {
		placed := false

		// First existing shelf that accepts either orientation wins;
		// unrotated is preferred over rotated on the same shelf.
		for _, sh := range shelves {
			if rot, ok := fitOnShelf(sheet, sh, layer, padding); ok {
				byID[layer.ID] = placeOnShelf(sh, layer, rot, padding)
				placed = true
				break
			}
		}

		if !placed {
			last := shelves[len(shelves)-1]
			fresh := &shelf{
				y:       last.y + last.height + padding,
				cursorX: padding,
			}
			if rot, ok := fitOnShelf(sheet, fresh, layer, padding); ok {
				byID[layer.ID] = placeOnShelf(fresh, layer, rot, padding)
				shelves = append(shelves, fresh)
				placed = true
			}
		}

		if !placed {
			// Too large for the sheet in either orientation. Place it anyway
			// so downstream code can rely on one placement per input id.
			byID[layer.ID] = geometry.Placement{
				ID:       layer.ID,
				X:        padding,
				Y:        padding,
				Rotation: geometry.Rotation0,
			}
			diags = append(diags, Diagnostic{ID: layer.ID, Reason: ReasonTooLargeForSheet})
		}
	}

	placements := make([]geometry.Placement, len(layers))
	totalArea := 0.0
	for i, layer := range layers {
		placements[i] = byID[layer.ID]
		totalArea += layer.Area()
	}

	return AutoNestResult{
		Placements:        placements,
		EfficiencyPercent: int(math.Round(totalArea / sheet.Area() * 100)),
		WastedArea:        sheet.Area() - totalArea,
		Diagnostics:       diags,
	}
}

// fitOnShelf tests both orientations against a shelf and reports the first
// that fits. The item must clear the right sheet edge from the shelf cursor
// and the bottom sheet edge from the shelf top, where the shelf height grows
// to the taller of its current height and the item.
func fitOnShelf(sheet geometry.Sheet, sh *shelf, layer geometry.Layer, padding float64) (geometry.Rotation, bool) {
	if shelfAccepts(sheet, sh, layer.Width, layer.Height, padding) {
		return geometry.Rotation0, true
	}
	if shelfAccepts(sheet, sh, layer.Height, layer.Width, padding) {
		return geometry.Rotation90, true
	}
	return geometry.Rotation0, false
}

func shelfAccepts(sheet geometry.Sheet, sh *shelf, w, h, padding float64) bool {
	return sh.cursorX+w+padding <= sheet.Width &&
		sh.y+math.Max(sh.height, h)+padding <= sheet.Height
}

func placeOnShelf(sh *shelf, layer geometry.Layer, rot geometry.Rotation, padding float64) geometry.Placement {
	w, h := geometry.Footprint(layer, rot)
	p := geometry.Placement{
		ID:       layer.ID,
		X:        sh.cursorX,
		Y:        sh.y,
		Rotation: rot,
	}
	sh.cursorX += w + padding
	sh.height = math.Max(sh.height, h)
	return p
}
