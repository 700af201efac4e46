package calculator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"turbojet/model"
)

// SheetCases 批量输入工作表，首行为列名 altitude_ft / mach / throttle，列顺序任意
const SheetCases = "cases"

var caseColumns = []string{"altitude_ft", "mach", "throttle"}

// ReadCases 读取批量计算的输入表
func ReadCases(path string) ([]model.Case, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open batch workbook: %w", err)
	}
	defer f.Close()

	sheet := SheetCases
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %s: need a header row and at least one case", sheet)
	}

	col := make(map[string]int, len(caseColumns))
	for i, name := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range caseColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("sheet %s: missing column %q", sheet, name)
		}
	}

	cases := make([]model.Case, 0, len(rows)-1)
	for r, row := range rows[1:] {
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		vals := make([]float64, len(caseColumns))
		for j, name := range caseColumns {
			i := col[name]
			if i >= len(row) {
				return nil, fmt.Errorf("sheet %s row %d: missing %s", sheet, r+2, name)
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
			if err != nil {
				return nil, fmt.Errorf("sheet %s row %d %s: %w", sheet, r+2, name, err)
			}
			vals[j] = v
		}
		cases = append(cases, model.Case{AltitudeFt: vals[0], Mach: vals[1], Throttle: vals[2]})
	}
	return cases, nil
}

// WriteCases 写出批量输入表，便于生成模板
func WriteCases(path string, cases []model.Case) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), SheetCases); err != nil {
		return err
	}
	header := make([]interface{}, len(caseColumns))
	for i, name := range caseColumns {
		header[i] = name
	}
	if err := f.SetSheetRow(SheetCases, "A1", &header); err != nil {
		return err
	}
	for i, c := range cases {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{c.AltitudeFt, c.Mach, c.Throttle}
		if err := f.SetSheetRow(SheetCases, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
