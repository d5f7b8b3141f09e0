package canvas

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/printloom/printloom/backend-go/internal/typeid"
)

var ErrEmptyManifest = errors.New("manifest contains no layers")

// ImportLayers appends layers from an XLSX manifest to a canvas and saves a
// new snapshot. Imported layers land at the origin; the caller typically
// runs auto-nest right after. Returns the new document and the number of
// layers added.
func (s *Service) ImportLayers(ctx context.Context, canvasID, userID string, r io.Reader) (*Document, int, error) {
	doc, version, err := s.LoadDocument(ctx, canvasID, userID)
	if err != nil {
		return nil, 0, err
	}

	layers, err := ParseLayerManifest(r)
	if err != nil {
		return nil, 0, err
	}

	doc.Layers = append(doc.Layers, layers...)
	if _, err := s.SaveDocument(ctx, canvasID, version, doc); err != nil {
		return nil, 0, err
	}
	return doc, len(layers), nil
}

// ParseLayerManifest reads an XLSX sheet with name, width, height, and an
// optional quantity column. The header row names the columns; matching is
// case-insensitive. Dimensions are inches. A quantity of n produces n layers
// with distinct ids.
func ParseLayerManifest(r io.Reader) ([]PlacedLayer, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read manifest rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptyManifest
	}

	nameCol, widthCol, heightCol, qtyCol := -1, -1, -1, -1
	for i, header := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(header)) {
		case "name":
			nameCol = i
		case "width":
			widthCol = i
		case "height":
			heightCol = i
		case "quantity", "qty":
			qtyCol = i
		}
	}
	if widthCol < 0 || heightCol < 0 {
		return nil, errors.New("manifest needs width and height columns")
	}

	var layers []PlacedLayer
	for rowNum, row := range rows[1:] {
		width, err := cellFloat(row, widthCol)
		if err != nil {
			return nil, fmt.Errorf("row %d: width: %w", rowNum+2, err)
		}
		height, err := cellFloat(row, heightCol)
		if err != nil {
			return nil, fmt.Errorf("row %d: height: %w", rowNum+2, err)
		}
		if width <= 0 || height <= 0 {
			return nil, fmt.Errorf("row %d: dimensions must be positive", rowNum+2)
		}

		name := ""
		if nameCol >= 0 && nameCol < len(row) {
			name = strings.TrimSpace(row[nameCol])
		}

		qty := 1
		if qtyCol >= 0 && qtyCol < len(row) && strings.TrimSpace(row[qtyCol]) != "" {
			qty, err = strconv.Atoi(strings.TrimSpace(row[qtyCol]))
			if err != nil || qty < 1 {
				return nil, fmt.Errorf("row %d: invalid quantity", rowNum+2)
			}
		}

		for i := 0; i < qty; i++ {
			layers = append(layers, PlacedLayer{
				ID:     typeid.NewLayerID(),
				Name:   name,
				Width:  width,
				Height: height,
			})
		}
	}

	if len(layers) == 0 {
		return nil, ErrEmptyManifest
	}
	return layers, nil
}

func cellFloat(row []string, col int) (float64, error) {
	if col >= len(row) {
		return 0, errors.New("missing cell")
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", row[col])
	}
	return v, nil
}
