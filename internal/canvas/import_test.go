package canvas

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func manifestXLSX(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestParseLayerManifest(t *testing.T) {
	buf := manifestXLSX(t, [][]interface{}{
		{"Name", "Width", "Height", "Quantity"},
		{"logo", 3.5, 2.0, 2},
		{"badge", 1.25, 1.25, nil},
	})

	layers, err := ParseLayerManifest(buf)

	require.NoError(t, err)
	require.Len(t, layers, 3, "quantity expands into individual layers")
	assert.Equal(t, "logo", layers[0].Name)
	assert.Equal(t, 3.5, layers[0].Width)
	assert.Equal(t, 2.0, layers[0].Height)
	assert.Equal(t, "logo", layers[1].Name)
	assert.NotEqual(t, layers[0].ID, layers[1].ID, "expanded copies get distinct ids")
	assert.Equal(t, "badge", layers[2].Name)
}

func TestParseLayerManifest_HeaderCaseInsensitive(t *testing.T) {
	buf := manifestXLSX(t, [][]interface{}{
		{"WIDTH", "height"},
		{2.0, 4.0},
	})

	layers, err := ParseLayerManifest(buf)

	require.NoError(t, err)
	require.Len(t, layers, 1)
	assert.Equal(t, 2.0, layers[0].Width)
	assert.Equal(t, 4.0, layers[0].Height)
}

func TestParseLayerManifest_Errors(t *testing.T) {
	t.Run("missing dimension columns", func(t *testing.T) {
		buf := manifestXLSX(t, [][]interface{}{
			{"Name", "Qty"},
			{"logo", 1},
		})
		_, err := ParseLayerManifest(buf)
		assert.Error(t, err)
	})

	t.Run("non-positive dimensions", func(t *testing.T) {
		buf := manifestXLSX(t, [][]interface{}{
			{"Width", "Height"},
			{0.0, 4.0},
		})
		_, err := ParseLayerManifest(buf)
		assert.Error(t, err)
	})

	t.Run("header only", func(t *testing.T) {
		buf := manifestXLSX(t, [][]interface{}{
			{"Width", "Height"},
		})
		_, err := ParseLayerManifest(buf)
		assert.ErrorIs(t, err, ErrEmptyManifest)
	})

	t.Run("not a workbook", func(t *testing.T) {
		_, err := ParseLayerManifest(bytes.NewBufferString("not xlsx"))
		assert.Error(t, err)
	})
}
