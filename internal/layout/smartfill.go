package layout

import (
	"math"

	"github.com/printloom/printloom/backend-go/internal/geometry"
)

// Duplicate is one suggested clone of the template layer. SourceID names the
// layer whose geometry was cloned; duplicates are never rotated.
type Duplicate struct {
	SourceID string            `json:"sourceId"`
	X        float64           `json:"x"`
	Y        float64           `json:"y"`
	Rotation geometry.Rotation `json:"rotation"`
}

// SmartFillResult is the output of one SmartFill call. Duplicates are purely
// additive suggestions; the input layers are never mutated.
type SmartFillResult struct {
	Duplicates      []Duplicate `json:"duplicates"`
	CoveragePercent int         `json:"coveragePercent"`
	TotalAdded      int         `json:"totalAdded"`
}

// SmartFill densifies the empty space of a sheet by tiling duplicates of the
// smallest-area input layer across a uniform grid, skipping grid cells whose
// template-sized box would overlap an existing layer.
//
// The overlap test anchors every existing layer's bounding box at the sheet
// origin: smart-fill requests carry only layer dimensions, not positions,
// and rotation of the existing layers is not accounted for. Tightening
// either would change user-visible output (fewer duplicates placed).
func SmartFill(sheet geometry.Sheet, layers []geometry.Layer, padding float64) SmartFillResult {
	if len(layers) == 0 {
		return SmartFillResult{Duplicates: []Duplicate{}}
	}

	template := layers[0]
	for _, l := range layers[1:] {
		if l.Area() < template.Area() {
			template = l
		}
	}

	cellW := template.Width + 2*padding
	cellH := template.Height + 2*padding
	cols := int(math.Floor(sheet.Width / cellW))
	rows := int(math.Floor(sheet.Height / cellH))
	if cols == 0 || rows == 0 {
		return SmartFillResult{Duplicates: []Duplicate{}}
	}

	duplicates := []Duplicate{}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			candidate := geometry.Rect{
				X:      padding + float64(col)*cellW,
				Y:      padding + float64(row)*cellH,
				Width:  template.Width,
				Height: template.Height,
			}

			blocked := false
			for _, l := range layers {
				occupied := geometry.Rect{X: 0, Y: 0, Width: l.Width, Height: l.Height}
				if candidate.Overlaps(occupied) {
					blocked = true
					break
				}
			}
			if blocked {
				continue
			}

			duplicates = append(duplicates, Duplicate{
				SourceID: template.ID,
				X:        candidate.X,
				Y:        candidate.Y,
				Rotation: geometry.Rotation0,
			})
		}
	}

	covered := float64(len(layers)+len(duplicates)) * template.Area()
	return SmartFillResult{
		Duplicates:      duplicates,
		CoveragePercent: int(math.Round(covered / sheet.Area() * 100)),
		TotalAdded:      len(duplicates),
	}
}
