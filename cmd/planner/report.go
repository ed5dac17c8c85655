package main

import (
	"fmt"
	"os"

	"github.com/jung-kurt/gofpdf"

	"timetable-planner/internal/orchestrator"
)

// writeSummaryPDF renders a one-page run summary, grounded on
// noah-isme-sma-adp-api/pkg/export/pdf_exporter.go's header/row table
// layout, adapted from a generic dataset table into the fixed
// run-summary fields an orchestrator.Result carries.
func writeSummaryPDF(path, faculty string, term int, result orchestrator.Result) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, fmt.Sprintf("TIMETABLE PLANNING SUMMARY - %s TERM %d", faculty, term), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	rows := [][2]string{
		{"Sessions scheduled", fmt.Sprintf("%d", result.SessionsCount)},
		{"Elapsed time (ms)", fmt.Sprintf("%d", result.ElapsedMS)},
		{"Final fitness", fmt.Sprintf("%.4f", result.FinalFitness)},
		{"Warnings", fmt.Sprintf("%d", len(result.Warnings))},
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(95, 8, "Metric", "1", 0, "C", false, 0, "")
	pdf.CellFormat(95, 8, "Value", "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		pdf.CellFormat(95, 7, row[0], "1", 0, "", false, 0, "")
		pdf.CellFormat(95, 7, row[1], "1", 1, "", false, 0, "")
	}

	if len(result.Warnings) > 0 {
		pdf.Ln(5)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, "Warnings", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, w := range result.Warnings {
			pdf.MultiCell(0, 6, "- "+w, "", "", false)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return pdf.Output(f)
}
