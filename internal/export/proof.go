// Package export renders print-ready proof documents for canvas layouts.
package export

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/printloom/printloom/backend-go/internal/canvas"
	"github.com/printloom/printloom/backend-go/internal/geometry"
)

type layerColor struct {
	R, G, B int
}

var layerColors = []layerColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
}

// Page layout constants (US Letter portrait, in inches).
const (
	pageWidth    = 8.5
	pageHeight   = 11.0
	margin       = 0.5
	headerHeight = 0.45
	footerHeight = 1.1
	qrSize       = 0.9
)

// RenderProof draws the canvas layout to scale on a single page: the sheet
// outline, one rectangle per placed layer with its rotation-aware footprint,
// and a QR code in the footer linking back to the canvas.
func RenderProof(w io.Writer, doc *canvas.Document, canvasURL string) error {
	pdf := fpdf.New("P", "in", "Letter", "")
	pdf.SetAutoPageBreak(false, margin)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(margin, margin)
	title := fmt.Sprintf("%s (%.3g x %.3g in)", doc.Canvas.Name, doc.Canvas.Width, doc.Canvas.Height)
	pdf.CellFormat(pageWidth-2*margin, headerHeight, title, "", 0, "L", false, 0, "")

	used := 0.0
	for _, l := range doc.Layers {
		used += l.Width * l.Height
	}
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(margin, margin+headerHeight)
	stats := fmt.Sprintf("Layers: %d | Used area: %.2f sq in | Utilization: %.1f%%",
		len(doc.Layers), used, used/doc.Sheet().Area()*100)
	pdf.CellFormat(pageWidth-2*margin, 0.25, stats, "", 0, "L", false, 0, "")

	// Scale the sheet into the remaining page area
	drawTop := margin + headerHeight + 0.35
	drawWidth := pageWidth - 2*margin
	drawHeight := pageHeight - drawTop - margin - footerHeight
	scale := math.Min(drawWidth/doc.Canvas.Width, drawHeight/doc.Canvas.Height)

	sheetW := doc.Canvas.Width * scale
	sheetH := doc.Canvas.Height * scale
	offsetX := margin + (drawWidth-sheetW)/2
	offsetY := drawTop

	pdf.SetFillColor(250, 250, 250)
	pdf.SetDrawColor(60, 60, 60)
	pdf.SetLineWidth(0.02)
	pdf.Rect(offsetX, offsetY, sheetW, sheetH, "FD")

	for i, l := range doc.Layers {
		col := layerColors[i%len(layerColors)]
		w, h := geometry.Footprint(geometry.Layer{Width: l.Width, Height: l.Height}, l.Rotation)

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(40, 40, 40)
		pdf.SetLineWidth(0.01)
		pdf.Rect(offsetX+l.X*scale, offsetY+l.Y*scale, w*scale, h*scale, "FD")

		if name := layerLabel(l); name != "" {
			pdf.SetFont("Helvetica", "", 7)
			pdf.SetTextColor(255, 255, 255)
			pdf.SetXY(offsetX+l.X*scale, offsetY+l.Y*scale+h*scale/2-0.05)
			if pdf.GetStringWidth(name) < w*scale {
				pdf.CellFormat(w*scale, 0.12, name, "", 0, "C", false, 0, "")
			}
		}
	}

	if err := renderFooter(pdf, doc, canvasURL); err != nil {
		return err
	}

	return pdf.Output(w)
}

func renderFooter(pdf *fpdf.Fpdf, doc *canvas.Document, canvasURL string) error {
	footerTop := pageHeight - margin - footerHeight + 0.1

	qrPNG, err := qrcode.Encode(canvasURL, qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("generate proof QR code: %w", err)
	}

	imgName := "qr_" + doc.Canvas.ID
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	pdf.ImageOptions(imgName, pageWidth-margin-qrSize, footerTop, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)
	pdf.SetXY(margin, footerTop+qrSize/2-0.1)
	pdf.CellFormat(pageWidth-2*margin-qrSize, 0.2, "Scan to open this canvas: "+canvasURL, "", 0, "L", false, 0, "")

	return nil
}

func layerLabel(l canvas.PlacedLayer) string {
	if l.Name != "" {
		return l.Name
	}
	return l.ID
}
