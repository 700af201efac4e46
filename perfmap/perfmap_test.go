package perfmap

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func TestPlaceholderDesignPoint(t *testing.T) {
	p := NewPlaceholder()
	c, err := p.Compressor(DesignSpeed, 1)
	if err != nil {
		t.Fatal(err)
	}
	if c.PR != 7 || c.Wc != 44 || c.Eff != 0.87 {
		t.Fatalf("compressor at design = %+v", c)
	}
	tb, err := p.Turbine(DesignSpeed, 1)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(tb.PR-2.663) > 1e-12 || tb.Eff != 0.85 {
		t.Fatalf("turbine at design = %+v", tb)
	}
}

func TestPlaceholderDomain(t *testing.T) {
	p := NewPlaceholder()
	cases := []struct {
		nc, r float64
	}{
		{0.3 * DesignSpeed, 1},
		{1.2 * DesignSpeed, 1},
		{DesignSpeed, 0.1},
		{DesignSpeed, 1.9},
		{math.NaN(), 1},
	}
	for _, c := range cases {
		_, err := p.Compressor(c.nc, c.r)
		if !errors.Is(err, ErrInvalidOperatingPoint) {
			t.Errorf("compressor(%v, %v): err = %v", c.nc, c.r, err)
		}
		_, err = p.Turbine(c.nc, c.r)
		var ie *InvalidOperatingPointError
		if !errors.As(err, &ie) {
			t.Errorf("turbine(%v, %v): err = %v", c.nc, c.r, err)
		}
	}
}

func TestScaledAnchor(t *testing.T) {
	base := NewPlaceholder()
	a := Anchor{
		NDesign: DesignSpeed, RDesign: 1,
		PR: 8.5, Eff: 0.84, Wc: 50,
		TurbinePR: 2.9, TurbineEff: 0.8,
	}
	s, err := NewScaled(Maps{Compressor: base, Turbine: base}, a)
	if err != nil {
		t.Fatal(err)
	}
	c, err := s.Compressor(DesignSpeed, 1)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(c.PR-a.PR) > 1e-12 || math.Abs(c.Eff-a.Eff) > 1e-12 || math.Abs(c.Wc-a.Wc) > 1e-12 {
		t.Fatalf("scaled compressor at anchor = %+v", c)
	}
	tb, err := s.Turbine(DesignSpeed, 1)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(tb.PR-a.TurbinePR) > 1e-12 || math.Abs(tb.Eff-a.TurbineEff) > 1e-12 {
		t.Fatalf("scaled turbine at anchor = %+v", tb)
	}
	// 越界仍然报错
	if _, err := s.Compressor(2*DesignSpeed, 1); !errors.Is(err, ErrInvalidOperatingPoint) {
		t.Fatalf("err = %v", err)
	}
	if _, err := NewScaled(Maps{Compressor: base, Turbine: base}, Anchor{NDesign: 0, RDesign: 1}); err == nil {
		t.Fatal("expected error for anchor outside map")
	}
}

func testTables(t *testing.T) (*CompressorTable, *TurbineTable) {
	base := NewPlaceholder()
	speeds := []float64{0.6 * DesignSpeed, 0.8 * DesignSpeed, DesignSpeed, 1.1 * DesignSpeed}
	lines := []float64{0.8, 0.9, 1.0, 1.1, 1.2}
	ct, tt, err := Tabulate(Maps{Compressor: base, Turbine: base}, speeds, lines)
	if err != nil {
		t.Fatal(err)
	}
	return ct, tt
}

func TestTableInterpolation(t *testing.T) {
	ct, tt := testTables(t)
	base := NewPlaceholder()
	for _, q := range []struct{ nc, r float64 }{
		{DesignSpeed, 1},
		{0.9 * DesignSpeed, 0.95},
		{0.7 * DesignSpeed, 1.15},
	} {
		got, err := ct.Compressor(q.nc, q.r)
		if err != nil {
			t.Fatal(err)
		}
		want, _ := base.Compressor(q.nc, q.r)
		// PR、Wc 对 (n, R) 是双线性的，插值应精确
		if math.Abs(got.PR-want.PR) > 1e-9 || math.Abs(got.Wc-want.Wc) > 1e-9 {
			t.Errorf("at %+v: got %+v want %+v", q, got, want)
		}
		if math.Abs(got.Eff-want.Eff) > 0.02 {
			t.Errorf("eff at %+v: got %v want %v", q, got.Eff, want.Eff)
		}
		tp, err := tt.Turbine(q.nc, q.r)
		if err != nil {
			t.Fatal(err)
		}
		tw, _ := base.Turbine(q.nc, q.r)
		if math.Abs(tp.PR-tw.PR) > 1e-9 {
			t.Errorf("turbine PR at %+v: got %v want %v", q, tp.PR, tw.PR)
		}
	}
	if _, err := ct.Compressor(0.5*DesignSpeed, 1); !errors.Is(err, ErrInvalidOperatingPoint) {
		t.Fatalf("err = %v", err)
	}
}

func TestNewGridValidation(t *testing.T) {
	if _, err := NewGrid([]float64{1, 1}, []float64{1, 2}, [][]float64{{1, 2}, {3, 4}}); err == nil {
		t.Error("expected error for repeated speeds")
	}
	if _, err := NewGrid([]float64{1, 2}, []float64{1, 2}, [][]float64{{1, 2}}); err == nil {
		t.Error("expected error for missing row")
	}
	if _, err := NewGrid([]float64{1, 2}, []float64{1, 2}, [][]float64{{1, 2}, {3}}); err == nil {
		t.Error("expected error for short row")
	}
}

func TestXLSXRoundTrip(t *testing.T) {
	ct, tt := testTables(t)
	path := filepath.Join(t.TempDir(), "maps.xlsx")
	if err := SaveXLSX(path, ct, tt); err != nil {
		t.Fatal(err)
	}
	ct2, tt2, err := LoadXLSX(path)
	if err != nil {
		t.Fatal(err)
	}
	q := [2]float64{0.93 * DesignSpeed, 1.03}
	a, _ := ct.Compressor(q[0], q[1])
	b, err := ct2.Compressor(q[0], q[1])
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(a.PR-b.PR) > 1e-9 || math.Abs(a.Eff-b.Eff) > 1e-9 || math.Abs(a.Wc-b.Wc) > 1e-9 {
		t.Fatalf("loaded table differs: %+v vs %+v", a, b)
	}
	ta, _ := tt.Turbine(q[0], q[1])
	tb, err := tt2.Turbine(q[0], q[1])
	if err != nil || math.Abs(ta.PR-tb.PR) > 1e-9 {
		t.Fatalf("loaded turbine table differs: %+v vs %+v (%v)", ta, tb, err)
	}
}
