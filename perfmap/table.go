package perfmap

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

// Grid 二维特性表：行为折合转速线，列为工作线参数
type Grid struct {
	Speeds []float64
	Lines  []float64
	Values [][]float64

	rows []interp.PiecewiseLinear
}

// NewGrid 校验表格形状与单调性，并为每条转速线拟合插值
func NewGrid(speeds, lines []float64, values [][]float64) (*Grid, error) {
	if len(speeds) < 2 || len(lines) < 2 {
		return nil, fmt.Errorf("grid: need at least 2 speeds and 2 lines, got %d x %d", len(speeds), len(lines))
	}
	if !increasing(speeds) || !increasing(lines) {
		return nil, fmt.Errorf("grid: speeds and lines must be strictly increasing")
	}
	if len(values) != len(speeds) {
		return nil, fmt.Errorf("grid: %d rows for %d speeds", len(values), len(speeds))
	}
	g := &Grid{
		Speeds: append([]float64(nil), speeds...),
		Lines:  append([]float64(nil), lines...),
		Values: make([][]float64, len(values)),
		rows:   make([]interp.PiecewiseLinear, len(values)),
	}
	for i, row := range values {
		if len(row) != len(lines) {
			return nil, fmt.Errorf("grid: row %d has %d values for %d lines", i, len(row), len(lines))
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("grid: non-finite value at row %d col %d", i, j)
			}
		}
		g.Values[i] = append([]float64(nil), row...)
		if err := g.rows[i].Fit(g.Lines, g.Values[i]); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func increasing(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return false
		}
	}
	return true
}

// Contains 查询点是否在表格范围内
func (g *Grid) Contains(nc, r float64) bool {
	return nc >= g.Speeds[0] && nc <= g.Speeds[len(g.Speeds)-1] &&
		r >= g.Lines[0] && r <= g.Lines[len(g.Lines)-1]
}

// At 双线性插值：先沿每条转速线插值，再沿转速方向插值
func (g *Grid) At(nc, r float64) (float64, bool) {
	if !g.Contains(nc, r) {
		return 0, false
	}
	ys := make([]float64, len(g.rows))
	for i := range g.rows {
		ys[i] = g.rows[i].Predict(r)
	}
	var across interp.PiecewiseLinear
	if err := across.Fit(g.Speeds, ys); err != nil {
		return 0, false
	}
	return across.Predict(nc), true
}

// CompressorTable 表格形式的压气机特性图
type CompressorTable struct {
	PR  *Grid
	Eff *Grid
	Wc  *Grid
}

func (t *CompressorTable) Compressor(nc, r float64) (CompressorPoint, error) {
	pr, ok1 := t.PR.At(nc, r)
	eff, ok2 := t.Eff.At(nc, r)
	wc, ok3 := t.Wc.At(nc, r)
	if !(ok1 && ok2 && ok3) {
		return CompressorPoint{}, &InvalidOperatingPointError{Map: "compressor table", Nc: nc, RLine: r, Reason: "outside table"}
	}
	p := CompressorPoint{PR: pr, Eff: eff, Wc: wc}
	return p, validPoint("compressor table", nc, r, p)
}

// TurbineTable 表格形式的涡轮特性图
type TurbineTable struct {
	PR  *Grid
	Eff *Grid
}

func (t *TurbineTable) Turbine(nc, r float64) (TurbinePoint, error) {
	pr, ok1 := t.PR.At(nc, r)
	eff, ok2 := t.Eff.At(nc, r)
	if !(ok1 && ok2) {
		return TurbinePoint{}, &InvalidOperatingPointError{Map: "turbine table", Nc: nc, RLine: r, Reason: "outside table"}
	}
	p := TurbinePoint{PR: pr, Eff: eff}
	return p, validTurbinePoint("turbine table", nc, r, p)
}

// Tabulate 在给定网格上对任意特性图取样，生成表格特性图
func Tabulate(m Maps, speeds, lines []float64) (*CompressorTable, *TurbineTable, error) {
	n, k := len(speeds), len(lines)
	pr, eff, wc := matrix(n, k), matrix(n, k), matrix(n, k)
	tpr, teff := matrix(n, k), matrix(n, k)
	for i, nc := range speeds {
		for j, r := range lines {
			c, err := m.Compressor.Compressor(nc, r)
			if err != nil {
				return nil, nil, err
			}
			t, err := m.Turbine.Turbine(nc, r)
			if err != nil {
				return nil, nil, err
			}
			pr[i][j], eff[i][j], wc[i][j] = c.PR, c.Eff, c.Wc
			tpr[i][j], teff[i][j] = t.PR, t.Eff
		}
	}
	ct := &CompressorTable{}
	tt := &TurbineTable{}
	var err error
	if ct.PR, err = NewGrid(speeds, lines, pr); err != nil {
		return nil, nil, err
	}
	if ct.Eff, err = NewGrid(speeds, lines, eff); err != nil {
		return nil, nil, err
	}
	if ct.Wc, err = NewGrid(speeds, lines, wc); err != nil {
		return nil, nil, err
	}
	if tt.PR, err = NewGrid(speeds, lines, tpr); err != nil {
		return nil, nil, err
	}
	if tt.Eff, err = NewGrid(speeds, lines, teff); err != nil {
		return nil, nil, err
	}
	return ct, tt, nil
}

func matrix(n, k int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, k)
	}
	return m
}
