package report

import (
	"github.com/xuri/excelize/v2"

	"turbojet/model"
)

const SheetSweep = "sweep"

var sweepHeader = []interface{}{
	"index", "altitude_ft", "mach", "throttle", "t4_r", "converged",
	"nc", "r_line", "net_thrust_lbf", "sfc", "far", "choked", "iterations", "error",
}

// WriteSweepXLSX 扫描或批量计算结果写入工作簿
func WriteSweepXLSX(path string, pts []model.SweepPoint) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), SheetSweep); err != nil {
		return err
	}
	header := sweepHeader
	if err := f.SetSheetRow(SheetSweep, "A1", &header); err != nil {
		return err
	}
	for i, p := range pts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			p.Index, p.AltitudeFt, p.Mach, p.Throttle, p.T4R, p.Converged,
			p.Nc, p.RLine, p.ThrustLbf, p.SFC, p.FAR, p.Choked, p.Iterations, p.Error,
		}
		if err := f.SetSheetRow(SheetSweep, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetPanes(SheetSweep, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	return f.SaveAs(path)
}
