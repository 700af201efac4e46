package report

import (
	"io"
	"time"

	"github.com/phpdave11/gofpdf"

	"turbojet/cycle"
)

// WritePDF 截面表加汇总表的 A4 报告，核心字体只支持 Latin-1
func WritePDF(w io.Writer, title string, stations []cycle.Station, rows []Row) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, "Date: "+time.Now().Format("2006-01-02"))
	pdf.Ln(10)

	widths := []float64{40, 26, 26, 30, 28, 26}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range stationHeader() {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	for _, s := range stations {
		for i, c := range stationCells(s) {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(8)

	for _, r := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(70, 6, r.Name, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, r.Value, "", 1, "L", false, 0, "")
	}
	return pdf.Output(w)
}

func DesignPDF(w io.Writer, dp *cycle.DesignPoint) error {
	return WritePDF(w, "Turbojet design point", dp.Stations, DesignRows(dp))
}

func OffDesignPDF(w io.Writer, p *cycle.OffDesignPoint) error {
	return WritePDF(w, "Turbojet off-design point", p.Stations, OffDesignRows(p))
}
