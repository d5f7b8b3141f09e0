package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectOverlaps(t *testing.T) {
	base := Rect{X: 0, Y: 0, Width: 2, Height: 2}

	assert.True(t, base.Overlaps(Rect{X: 1, Y: 1, Width: 2, Height: 2}))
	assert.True(t, base.Overlaps(Rect{X: 0.5, Y: 0.5, Width: 1, Height: 1}), "contained rect overlaps")
	assert.False(t, base.Overlaps(Rect{X: 3, Y: 0, Width: 1, Height: 1}))
	assert.False(t, base.Overlaps(Rect{X: 2, Y: 0, Width: 1, Height: 1}), "touching edges do not overlap")
	assert.False(t, base.Overlaps(Rect{X: 0, Y: 2, Width: 2, Height: 2}), "touching corners do not overlap")
}

func TestFootprint(t *testing.T) {
	l := Layer{ID: "a", Width: 3, Height: 5}

	w, h := Footprint(l, Rotation0)
	assert.Equal(t, 3.0, w)
	assert.Equal(t, 5.0, h)

	w, h = Footprint(l, Rotation90)
	assert.Equal(t, 5.0, w, "rotated footprint swaps dimensions")
	assert.Equal(t, 3.0, h)
}

func TestAreas(t *testing.T) {
	assert.Equal(t, 1080.0, Sheet{Width: 22.5, Height: 48}.Area())
	assert.Equal(t, 15.0, Layer{Width: 3, Height: 5}.Area())
}
