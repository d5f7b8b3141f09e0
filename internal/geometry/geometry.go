package geometry

// Rotation is the orientation of a placed layer. Only two orientations are
// valid on a print sheet: the layer as drawn, or turned a quarter turn.
type Rotation int

const (
	Rotation0  Rotation = 0
	Rotation90 Rotation = 90
)

// Sheet is the rectangular printable substrate, in inches.
type Sheet struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the sheet area in square inches.
func (s Sheet) Area() float64 {
	return s.Width * s.Height
}

// Layer is one rectangular graphic to be placed on a sheet. Rotation is a
// caller hint carried through untouched; the engine decides the effective
// orientation per placement.
type Layer struct {
	ID       string   `json:"id"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Rotation Rotation `json:"rotation,omitempty"`
}

// Area returns the layer area in square inches.
func (l Layer) Area() float64 {
	return l.Width * l.Height
}

// Placement is the engine's chosen position for a layer. X and Y are the
// top-left corner in sheet coordinates. A Rotation of Rotation90 means the
// occupied footprint is the layer's height by its width.
type Placement struct {
	ID       string   `json:"id"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Rotation Rotation `json:"rotation"`
}

// Footprint returns the occupied width and height of a layer placed at the
// given rotation.
func Footprint(l Layer, r Rotation) (w, h float64) {
	if r == Rotation90 {
		return l.Height, l.Width
	}
	return l.Width, l.Height
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Overlaps reports whether two rectangles intersect. Rectangles that merely
// share an edge do not overlap.
func (r Rect) Overlaps(other Rect) bool {
	return r.X < other.X+other.Width && r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height && r.Y+r.Height > other.Y
}
