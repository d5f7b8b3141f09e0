package canvas

import (
	"github.com/printloom/printloom/backend-go/internal/geometry"
)

// Document is the versioned canvas payload stored in canvas_snapshots. It is
// the single source of truth for what sits on a print sheet.
type Document struct {
	Canvas Info          `json:"canvas"`
	Layers []PlacedLayer `json:"layers"`
}

type Info struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Padding float64 `json:"padding"`
	Unit    string  `json:"unit"`
}

// PlacedLayer is one graphic on the canvas: its print dimensions in inches
// plus its current position. SourceID is set on smart-fill duplicates and
// names the layer whose geometry was cloned.
type PlacedLayer struct {
	ID         string            `json:"id"`
	Name       string            `json:"name,omitempty"`
	Width      float64           `json:"width"`
	Height     float64           `json:"height"`
	X          float64           `json:"x"`
	Y          float64           `json:"y"`
	Rotation   geometry.Rotation `json:"rotation"`
	SourceID   string            `json:"sourceId,omitempty"`
	ArtworkURL string            `json:"artworkUrl,omitempty"`
}

// NewEmptyDocument seeds the first snapshot of a new canvas.
func NewEmptyDocument(id, name string, width, height, padding float64) *Document {
	return &Document{
		Canvas: Info{
			ID:      id,
			Name:    name,
			Width:   width,
			Height:  height,
			Padding: padding,
			Unit:    "in",
		},
		Layers: []PlacedLayer{},
	}
}

// Sheet returns the document's printable area as engine geometry.
func (d *Document) Sheet() geometry.Sheet {
	return geometry.Sheet{Width: d.Canvas.Width, Height: d.Canvas.Height}
}

// EngineLayers projects the placed layers into the engine's input type.
func (d *Document) EngineLayers() []geometry.Layer {
	layers := make([]geometry.Layer, len(d.Layers))
	for i, l := range d.Layers {
		layers[i] = geometry.Layer{
			ID:       l.ID,
			Width:    l.Width,
			Height:   l.Height,
			Rotation: l.Rotation,
		}
	}
	return layers
}

// ApplyPlacements moves the document's layers to the engine's chosen
// positions. Layers the engine did not mention keep their position.
func (d *Document) ApplyPlacements(placements []geometry.Placement) {
	byID := make(map[string]geometry.Placement, len(placements))
	for _, p := range placements {
		byID[p.ID] = p
	}
	for i := range d.Layers {
		if p, ok := byID[d.Layers[i].ID]; ok {
			d.Layers[i].X = p.X
			d.Layers[i].Y = p.Y
			d.Layers[i].Rotation = p.Rotation
		}
	}
}

// FindLayer returns the layer with the given id, or nil.
func (d *Document) FindLayer(id string) *PlacedLayer {
	for i := range d.Layers {
		if d.Layers[i].ID == id {
			return &d.Layers[i]
		}
	}
	return nil
}
