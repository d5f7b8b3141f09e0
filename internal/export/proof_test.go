package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printloom/printloom/backend-go/internal/canvas"
	"github.com/printloom/printloom/backend-go/internal/geometry"
)

func TestRenderProof(t *testing.T) {
	doc := canvas.NewEmptyDocument("cnv_test", "Sticker run", 22.5, 48, 0.125)
	doc.Layers = []canvas.PlacedLayer{
		{ID: "a", Name: "logo", Width: 10, Height: 10, X: 0.125, Y: 0.125},
		{ID: "b", Width: 4, Height: 6, X: 10.375, Y: 0.125, Rotation: geometry.Rotation90},
	}

	var buf bytes.Buffer
	err := RenderProof(&buf, doc, "http://localhost:5173/canvas/cnv_test")

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")), "output is a PDF document")
	assert.Greater(t, buf.Len(), 1000)
}

func TestRenderProof_EmptyCanvas(t *testing.T) {
	doc := canvas.NewEmptyDocument("cnv_empty", "Blank", 10, 10, 0)

	var buf bytes.Buffer
	err := RenderProof(&buf, doc, "http://localhost:5173/canvas/cnv_empty")

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}
