package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"epiwatch/internal/models"
)

// Generator interface (convenient to mock in tests)
type Generator interface {
	GenerateRiskReport(data ReportData) ([]byte, error)
}

// ReportGenerator renders the snapshot into an A4 summary document.
type ReportGenerator struct {
	fontName string
}

type ReportData struct {
	GeneratedAt time.Time
	Snapshot    *models.RiskSnapshot
}

func NewReportGenerator() *ReportGenerator {
	return &ReportGenerator{fontName: "Helvetica"}
}

func (g *ReportGenerator) GenerateRiskReport(data ReportData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Disease Risk Report", false)
	pdf.SetAuthor("EpiWatch", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// ===== Header
	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "DISEASE RISK REPORT", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 12)
	sub := fmt.Sprintf("Generated %s", data.GeneratedAt.Format("02.01.2006 15:04 MST"))
	pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(pdf)
	pdf.Ln(3)

	// ===== Feed metadata
	g.sectionTitle(pdf, "Snapshot")
	g.kvLine(pdf, "Feed updated", data.Snapshot.UpdatedAt)
	g.kvLine(pdf, "States covered", fmt.Sprintf("%d", len(data.Snapshot.States)))
	pdf.Ln(2)
	g.hr(pdf)

	// ===== Per-state table
	g.sectionTitle(pdf, "Per-state risk")
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(55, 7, "State", "B", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, "Risk", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, "Level", "B", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Primary threat", "B", 1, "L", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	for _, st := range data.Snapshot.States {
		risk := models.Clamp01(st.RiskScore)
		pdf.CellFormat(55, 7, st.State, "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.0f%%", risk*100), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, string(st.EffectiveLevel()), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, st.PrimaryThreat, "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	g.hr(pdf)

	// ===== Reading guide
	g.sectionTitle(pdf, "How to read this report")
	pdf.SetFont(g.fontName, "", 11)
	notes := []string{
		"1. Risk is the model's outbreak probability for the state, clamped to 0..100%.",
		"2. Level buckets the score: CRITICAL above 90%, HIGH above 70%, MEDIUM above 50%.",
		"3. Primary threat names the disease driving the score.",
		"4. Alert subscribers receive a message when their state's level meets their threshold.",
	}
	for _, n := range notes {
		pdf.MultiCell(0, 6, n, "", "L", false)
	}

	// ===== Page numbering
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 10,
			fmt.Sprintf("Page %d/{nb}", pdf.PageNo()),
			"", 0, "C", false, 0, "",
		)
	})

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ===== helpers =====

func (g *ReportGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *ReportGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}
