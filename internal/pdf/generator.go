package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/swachh-fleet/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// Generate renders the fleet connection overview: one table row per active
// driver assignment with its consistency classification.
func (g *Generator) Generate(summaries []model.ConnectionSummary) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Fleet Connection Report", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s", time.Now().UTC().Format("2006-01-02 15:04 UTC")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	connected, partial, disconnected := countStates(summaries)
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Connections: %d total, %d connected, %d partial, %d disconnected",
		len(summaries), connected, partial, disconnected), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	headers := []string{"Driver", "Contractor", "Vehicle", "Feeder points", "State", "Issues"}
	colWidths := []float64{45, 45, 30, 55, 28, 64}
	drawTableRow(pdf, g.fontName, headers, colWidths, true)

	for _, summary := range summaries {
		row := []string{
			nameOrID(summary.DriverName, summary.DriverID.String()),
			nameOrID(summary.ContractorName, summary.ContractorID.String()),
			dash(summary.VehiclePlate),
			dash(strings.Join(summary.FeederPoints, ", ")),
			string(summary.State),
			dash(strings.Join(summary.Issues, "; ")),
		}
		drawTableRow(pdf, g.fontName, row, colWidths, false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 9)
	for i, col := range cols {
		pdf.CellFormat(widths[i], 7, col, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

func countStates(summaries []model.ConnectionSummary) (connected, partial, disconnected int) {
	for _, summary := range summaries {
		switch summary.State {
		case model.ConnectionConnected:
			connected++
		case model.ConnectionPartial:
			partial++
		case model.ConnectionDisconnected:
			disconnected++
		}
	}
	return connected, partial, disconnected
}

func nameOrID(name, id string) string {
	if strings.TrimSpace(name) == "" {
		return id[:8]
	}
	return name
}

func dash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
