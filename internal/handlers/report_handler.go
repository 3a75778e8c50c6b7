package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"epiwatch/internal/pdf"
	"epiwatch/internal/services"
)

type ReportHandler struct {
	Risk      services.RiskSource
	Generator pdf.Generator
}

func NewReportHandler(risk services.RiskSource, gen pdf.Generator) *ReportHandler {
	return &ReportHandler{Risk: risk, Generator: gen}
}

// @Summary      Risk report PDF
// @Description  Renders the current snapshot as a downloadable PDF
// @Tags         Risk
// @Produce      application/pdf
// @Security     BearerAuth
// @Success      200  {file}    file
// @Failure      502  {object}  map[string]string
// @Router       /api/reports/risk.pdf [get]
func (h *ReportHandler) RiskPDF(c *gin.Context) {
	snap, err := h.Risk.Fetch(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Risk data unavailable."})
		return
	}

	doc, err := h.Generator.GenerateRiskReport(pdf.ReportData{
		GeneratedAt: time.Now(),
		Snapshot:    snap,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render report."})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="risk-report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}
