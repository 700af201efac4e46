package perfmap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// 特性图工作簿的工作表名
const (
	SheetPR         = "PR"
	SheetEff        = "EFF"
	SheetWc         = "WC"
	SheetTurbinePR  = "TPR"
	SheetTurbineEff = "TEFF"
)

// LoadXLSX 读取特性图工作簿。每个工作表首行为工作线参数，首列为折合转速
func LoadXLSX(path string) (*CompressorTable, *TurbineTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open map workbook: %w", err)
	}
	defer f.Close()

	grids := make(map[string]*Grid, 5)
	for _, sheet := range []string{SheetPR, SheetEff, SheetWc, SheetTurbinePR, SheetTurbineEff} {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, nil, fmt.Errorf("sheet %s: %w", sheet, err)
		}
		g, err := parseGrid(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("sheet %s: %w", sheet, err)
		}
		grids[sheet] = g
	}
	ct := &CompressorTable{PR: grids[SheetPR], Eff: grids[SheetEff], Wc: grids[SheetWc]}
	tt := &TurbineTable{PR: grids[SheetTurbinePR], Eff: grids[SheetTurbineEff]}
	return ct, tt, nil
}

func parseGrid(rows [][]string) (*Grid, error) {
	if len(rows) < 3 || len(rows[0]) < 3 {
		return nil, fmt.Errorf("need a header row and at least 2 speed rows and 2 lines")
	}
	lines, err := parseFloats(rows[0][1:])
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	speeds := make([]float64, 0, len(rows)-1)
	values := make([][]float64, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		vals, err := parseFloats(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		speeds = append(speeds, vals[0])
		values = append(values, vals[1:])
	}
	return NewGrid(speeds, lines, values)
}

func parseFloats(cells []string) ([]float64, error) {
	out := make([]float64, len(cells))
	for i, c := range cells {
		v, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

// SaveXLSX 把表格特性图写成 LoadXLSX 可读的工作簿
func SaveXLSX(path string, ct *CompressorTable, tt *TurbineTable) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name string
		g    *Grid
	}{
		{SheetPR, ct.PR}, {SheetEff, ct.Eff}, {SheetWc, ct.Wc},
		{SheetTurbinePR, tt.PR}, {SheetTurbineEff, tt.Eff},
	}
	for i, s := range sheets {
		if _, err := f.NewSheet(s.name); err != nil {
			return err
		}
		if i == 0 {
			if err := f.DeleteSheet("Sheet1"); err != nil {
				return err
			}
		}
		header := make([]interface{}, 0, len(s.g.Lines)+1)
		header = append(header, "Nc\\R")
		for _, r := range s.g.Lines {
			header = append(header, r)
		}
		if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
			return err
		}
		for i, nc := range s.g.Speeds {
			row := make([]interface{}, 0, len(s.g.Lines)+1)
			row = append(row, nc)
			for _, v := range s.g.Values[i] {
				row = append(row, v)
			}
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(path)
}
