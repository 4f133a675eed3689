package reports

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"eval360/internal/domain/catalog"
	"eval360/internal/domain/periods"
)

type Report struct {
	UserName string
	Period   periods.Period
	Scores   []CategoryScore
	History  []PeriodScore
}

// WritePDF renders the personal results report. Core fonts are cp1252, so
// text goes through the UTF-8 translator.
func WritePDF(w io.Writer, r Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr("Resultados da avaliação 360"))
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Colaborador: %s", r.UserName)))
	pdf.Ln(7)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Período: %s (%s a %s)", r.Period.Name,
		r.Period.StartDate.Format("2006-01-02"), r.Period.EndDate.Format("2006-01-02"))))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(80, 8, tr("Categoria"), "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, tr("Média"), "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, tr("Média ponderada"), "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, tr("Respostas"), "1", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	if len(r.Scores) == 0 {
		pdf.CellFormat(180, 8, tr("Ainda sem avaliações neste período."), "1", 1, "L", false, 0, "")
	}
	for _, sc := range r.Scores {
		pdf.CellFormat(80, 8, tr(categoryLabel(sc.Category)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", sc.Average), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", sc.WeightedAverage), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%d", sc.Count), "1", 1, "R", false, 0, "")
	}

	if len(r.History) > 0 {
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "B", 14)
		pdf.Cell(0, 10, tr("Evolução"))
		pdf.Ln(10)
		pdf.SetFont("Helvetica", "", 11)
		for _, h := range r.History {
			pdf.Cell(0, 7, tr(fmt.Sprintf("%s  %s  %s: %.2f", h.PeriodStart.Format("2006-01-02"), h.PeriodName, categoryLabel(h.Category), h.Average)))
			pdf.Ln(6)
		}
	}

	return pdf.Output(w)
}

func categoryLabel(category string) string {
	if label, ok := catalog.CategoryLabels[category]; ok {
		return label
	}
	return category
}
