package thermo

import (
	"errors"
	"math"
	"testing"
)

func TestAirProperties(t *testing.T) {
	a := Air()
	if r := a.R(); r < 287 || r > 289.5 {
		t.Fatalf("air R = %v", r)
	}
	if cp := a.Cp(300); cp < 995 || cp > 1015 {
		t.Fatalf("air cp(300K) = %v", cp)
	}
	if g := a.Gamma(300); g < 1.39 || g > 1.41 {
		t.Fatalf("air gamma(300K) = %v", g)
	}
	if x := a.MoleFraction("O2"); math.Abs(x-0.21) > 1e-12 {
		t.Fatalf("O2 mole fraction = %v", x)
	}
}

func TestTemperatureFromEnthalpy(t *testing.T) {
	ev := NewIdealGas()
	mixes := map[string]*Mixture{"air": Air()}
	products, err := JetA.Products(Air(), 0.02)
	if err != nil {
		t.Fatal(err)
	}
	mixes["products"] = products

	for name, mix := range mixes {
		for _, T := range []float64{210, 288.15, 530, 999, 1001, 1500, 2500, 3400} {
			for _, guess := range []float64{500, 3000, T} {
				got, err := ev.TemperatureFromEnthalpy(mix, mix.H(T), guess)
				if err != nil {
					t.Fatalf("%s T=%v: %v", name, T, err)
				}
				if math.Abs(got-T) > 1e-6 {
					t.Errorf("%s T=%v guess=%v: got %v", name, T, guess, got)
				}
			}
		}
	}
}

func TestTemperatureFromEntropy(t *testing.T) {
	ev := NewIdealGas()
	mix := Air()
	for _, P := range []float64{30000, 101325, 700000} {
		for _, T := range []float64{230, 600, 1200} {
			got, err := ev.TemperatureFromEntropy(mix, mix.S(T, P), P, 500)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-T) > 1e-6 {
				t.Errorf("P=%v T=%v: got %v", P, T, got)
			}
		}
	}
}

func TestPressureFromEntropy(t *testing.T) {
	ev := NewIdealGas()
	mix := Air()
	s := mix.S(400, 250000)
	P, err := ev.PressureFromEntropy(mix, s, 400)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(P-250000)/250000 > 1e-12 {
		t.Fatalf("P = %v", P)
	}
}

func TestOutOfDomain(t *testing.T) {
	ev := NewIdealGas()
	cases := []struct {
		name string
		fn   func() error
	}{
		{"negative temperature", func() error { _, err := ev.Evaluate(Air(), -5, 101325); return err }},
		{"zero pressure", func() error { _, err := ev.Evaluate(Air(), 300, 0); return err }},
		{"above range", func() error { _, err := ev.Evaluate(Air(), 5000, 101325); return err }},
		{"enthalpy too high", func() error { _, err := ev.TemperatureFromEnthalpy(Air(), 1e9, 500); return err }},
		{"nan enthalpy", func() error { _, err := ev.TemperatureFromEnthalpy(Air(), math.NaN(), 500); return err }},
		{"negative pressure entropy", func() error { _, err := ev.TemperatureFromEntropy(Air(), 7000, -1, 500); return err }},
		{"negative flow", func() error { _, err := NewState(ev, Air(), 300, 101325, -1); return err }},
	}
	for _, c := range cases {
		err := c.fn()
		if !errors.Is(err, ErrOutOfDomain) {
			t.Errorf("%s: err = %v", c.name, err)
		}
		var pe *PropertyEvaluationError
		if !errors.As(err, &pe) {
			t.Errorf("%s: not a PropertyEvaluationError", c.name)
		}
	}
}

func TestNewState(t *testing.T) {
	ev := NewIdealGas()
	s, err := NewState(ev, Air(), 288.15, 101325, 20)
	if err != nil {
		t.Fatal(err)
	}
	if s.H != Air().H(288.15) || s.S != Air().S(288.15, 101325) {
		t.Fatalf("cached properties differ: %+v", s)
	}
	s2 := s.WithFlow(5)
	if s.W != 20 || s2.W != 5 || s2.T != s.T {
		t.Fatalf("WithFlow changed the receiver")
	}
}

func BenchmarkTemperatureFromEnthalpy(b *testing.B) {
	ev := NewIdealGas()
	mix := Air()
	h := mix.H(1234.5)
	for i := 0; i < b.N; i++ {
		_, _ = ev.TemperatureFromEnthalpy(mix, h, 500)
	}
}
