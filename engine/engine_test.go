package engine

import (
	"errors"
	"math"
	"testing"

	"turbojet/model"
	"turbojet/perfmap"
	"turbojet/thermo"
)

func sls(t *testing.T, ev thermo.Evaluator, w float64) thermo.State {
	t.Helper()
	T, P, err := StandardDay(0)
	if err != nil {
		t.Fatal(err)
	}
	s, err := thermo.NewState(ev, thermo.Air(), T, P, w)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestStandardDay(t *testing.T) {
	cases := []struct {
		altM float64
		T, P float64
		tolP float64
	}{
		{0, 288.15, 101325, 1e-6},
		{11000, 216.65, 22632, 2},
		{30000 * model.FtToM, 228.714, 30089, 30},
		{15000, 216.65, 12045, 15},
	}
	for _, c := range cases {
		T, P, err := StandardDay(c.altM)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(T-c.T) > 1e-3 || math.Abs(P-c.P) > c.tolP {
			t.Errorf("alt %v: T=%v P=%v", c.altM, T, P)
		}
	}
	if _, _, err := StandardDay(30000); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("err = %v", err)
	}
}

func TestInlet(t *testing.T) {
	ev := thermo.NewIdealGas()
	in := &Inlet{Eval: ev, Recovery: 1}
	amb := sls(t, ev, 20)
	res, err := in.Evaluate(amb, 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.V0 != 0 || math.Abs(res.Exit.T-amb.T) > 1e-9 || math.Abs(res.Exit.P-amb.P)/amb.P > 1e-12 {
		t.Fatalf("static inlet changed state: %+v", res.Exit)
	}

	T, P, _ := StandardDayFt(30000)
	amb, _ = thermo.NewState(ev, thermo.Air(), T, P, 10)
	res, err = in.Evaluate(amb, 0.8)
	if err != nil {
		t.Fatal(err)
	}
	if r := res.Exit.T / T; math.Abs(r-1.128) > 0.005 {
		t.Errorf("Tt/T = %v", r)
	}
	if r := res.Exit.P / P; math.Abs(r-1.524) > 0.015 {
		t.Errorf("Pt/P = %v", r)
	}
	if math.Abs(res.Exit.S-amb.S) > 1e-9 {
		t.Errorf("ram compression not isentropic: %v vs %v", res.Exit.S, amb.S)
	}

	in.Recovery = 0.95
	lossy, err := in.Evaluate(amb, 0.8)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(lossy.Exit.P/res.Exit.P-0.95) > 1e-12 {
		t.Errorf("recovery not applied: %v", lossy.Exit.P/res.Exit.P)
	}
	if _, err := in.Evaluate(amb, -1); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("err = %v", err)
	}
}

func TestCompressorDesign(t *testing.T) {
	ev := thermo.NewIdealGas()
	c := &Compressor{Eval: ev}
	in := sls(t, ev, 44*model.LbmToKg)
	res, err := c.EvaluateDesign(in, 7, 0.87)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.Exit.T-530.14) > 0.5 {
		t.Errorf("T3 = %v", res.Exit.T)
	}
	if math.Abs(res.Exit.P-7*in.P) > 1e-6 {
		t.Errorf("P3 = %v", res.Exit.P)
	}
	if math.Abs(res.Exit.H-in.H-res.Work) > 1e-6 {
		t.Errorf("work %v vs enthalpy rise %v", res.Work, res.Exit.H-in.H)
	}
	if math.Abs(res.Wc-44) > 1e-3 {
		t.Errorf("corrected flow %v", res.Wc)
	}

	ideal, err := c.EvaluateDesign(in, 7, 1)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(ideal.Exit.S-in.S) > 1e-6 {
		t.Errorf("isentropic exit entropy %v vs %v", ideal.Exit.S, in.S)
	}

	for _, bad := range []struct{ pr, eff float64 }{{0.5, 0.87}, {7, 0}, {7, 1.2}} {
		if _, err := c.EvaluateDesign(in, bad.pr, bad.eff); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("%+v: err = %v", bad, err)
		}
	}
}

func TestCompressorMap(t *testing.T) {
	ev := thermo.NewIdealGas()
	c := &Compressor{Eval: ev, Map: perfmap.NewPlaceholder()}
	in := sls(t, ev, 0)
	res, err := c.EvaluateMap(in, perfmap.DesignSpeed, 1)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.Exit.W-44*model.LbmToKg) > 1e-9 || res.PR != 7 {
		t.Fatalf("map point: W=%v PR=%v", res.Exit.W, res.PR)
	}
	if _, err := c.EvaluateMap(in, 0.1*perfmap.DesignSpeed, 1); !errors.Is(err, perfmap.ErrInvalidOperatingPoint) {
		t.Fatalf("err = %v", err)
	}
	if w := ActualFlow(CorrectedFlow(12.5, 250, 40000), 250, 40000); math.Abs(w-12.5) > 1e-12 {
		t.Fatalf("flow correction round trip %v", w)
	}
}

func compressorExit(t *testing.T, ev thermo.Evaluator) thermo.State {
	t.Helper()
	c := &Compressor{Eval: ev}
	res, err := c.EvaluateDesign(sls(t, ev, 44*model.LbmToKg), 7, 0.87)
	if err != nil {
		t.Fatal(err)
	}
	return res.Exit
}

func TestBurner(t *testing.T) {
	ev := thermo.NewIdealGas()
	b := NewBurner(ev, thermo.JetA, 0.985, 0.05)
	in := compressorExit(t, ev)
	t4 := 2100 * model.RankineToKelvin
	res, err := b.EvaluateTarget(in, t4)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.Exit.T-t4) > 1e-6 {
		t.Errorf("T4 = %v want %v", res.Exit.T, t4)
	}
	if res.FAR < 0.017 || res.FAR > 0.0186 {
		t.Errorf("far = %v", res.FAR)
	}
	if math.Abs(res.Exit.P-0.95*in.P) > 1e-6 || math.Abs(res.Exit.W-in.W*(1+res.FAR)) > 1e-12 {
		t.Errorf("exit P=%v W=%v", res.Exit.P, res.Exit.W)
	}
	fwd, err := b.EvaluateFuelAir(in, res.FAR)
	if err != nil {
		t.Fatal(err)
	}
	if fwd.Exit.T != res.Exit.T {
		t.Errorf("forward T4 %v differs from target mode %v", fwd.Exit.T, res.Exit.T)
	}

	// 能量守恒：燃料放热等于显焓增量
	air, _ := ev.Evaluate(in.Mix, b.TRef, in.P)
	prod, _ := ev.Evaluate(res.Exit.Mix, b.TRef, res.Exit.P)
	lhs := (1 + res.FAR) * (res.Exit.H - prod.H)
	rhs := in.H - air.H + b.Efficiency*res.FAR*b.Fuel.LHV
	if math.Abs(lhs-rhs)/rhs > 1e-9 {
		t.Errorf("energy balance %v vs %v", lhs, rhs)
	}

	if _, err := b.EvaluateTarget(in, in.T-10); !errors.Is(err, ErrInfeasible) {
		t.Errorf("err = %v", err)
	}
	if _, err := b.EvaluateTarget(in, 3400); !errors.Is(err, ErrInfeasible) {
		t.Errorf("err = %v", err)
	}
	b.PressureLoss = 1.5
	if _, err := b.EvaluateTarget(in, t4); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("err = %v", err)
	}
}

func turbineInlet(t *testing.T, ev thermo.Evaluator) thermo.State {
	t.Helper()
	b := NewBurner(ev, thermo.JetA, 0.985, 0.05)
	res, err := b.EvaluateTarget(compressorExit(t, ev), 2100*model.RankineToKelvin)
	if err != nil {
		t.Fatal(err)
	}
	return res.Exit
}

func TestTurbineModesAgree(t *testing.T) {
	ev := thermo.NewIdealGas()
	tb := &Turbine{Eval: ev}
	in := turbineInlet(t, ev)
	power := 4.5e6
	back, err := tb.EvaluateFromWork(in, power, 0.8)
	if err != nil {
		t.Fatal(err)
	}
	got := in.W * (in.H - back.Exit.H)
	if math.Abs(got-power)/power > 1e-10 {
		t.Errorf("turbine power %v want %v", got, power)
	}
	fwd, err := tb.Expand(in, back.PR, 0.8)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(fwd.Exit.T-back.Exit.T) > 1e-6 || math.Abs(fwd.Power-power)/power > 1e-9 {
		t.Errorf("forward %v K / %v W, back-solved %v K / %v W", fwd.Exit.T, fwd.Power, back.Exit.T, power)
	}

	tb.Map = perfmap.NewPlaceholder()
	m, err := tb.EvaluateForward(in, perfmap.DesignSpeed, 1)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(m.PR-2.663) > 1e-9 || m.Eff != 0.85 {
		t.Errorf("map turbine PR=%v eff=%v", m.PR, m.Eff)
	}
	if _, err := tb.EvaluateFromWork(in, power, 1.1); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("err = %v", err)
	}
}

func nozzleInlet(t *testing.T, ev thermo.Evaluator, P float64) thermo.State {
	t.Helper()
	p, err := thermo.JetA.Products(thermo.Air(), 0.0178)
	if err != nil {
		t.Fatal(err)
	}
	s, err := thermo.NewState(ev, p, 963, P, 20.3)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestNozzleChoked(t *testing.T) {
	ev := thermo.NewIdealGas()
	n := &Nozzle{Eval: ev, Cd: 0.99, Cfg: 0.945}
	in := nozzleInlet(t, ev, 242660)
	des, err := n.EvaluateForArea(in, 101325)
	if err != nil {
		t.Fatal(err)
	}
	if !des.Choked || des.PThroat != des.PCritical {
		t.Fatalf("expected choked throat: %+v", des)
	}
	if des.Area < 0.05 || des.Area > 0.09 {
		t.Errorf("area = %v", des.Area)
	}
	// 喉道马赫数为 1
	props, _ := ev.Evaluate(in.Mix, des.TThroat, des.PThroat)
	a := math.Sqrt(props.Gamma * props.R * des.TThroat)
	if math.Abs(des.VThroat/a-1) > 0.01 {
		t.Errorf("throat mach %v", des.VThroat/a)
	}

	off, err := n.EvaluateForFlow(in, des.Area, 101325)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(off.Flow-in.W)/in.W > 1e-12 {
		t.Errorf("flow %v want %v", off.Flow, in.W)
	}
	// 壅塞后流量与背压无关
	low, err := n.EvaluateForFlow(in, des.Area, 50000)
	if err != nil {
		t.Fatal(err)
	}
	if low.Flow != off.Flow {
		t.Errorf("choked flow changed with back pressure: %v vs %v", low.Flow, off.Flow)
	}
	if low.VIdeal <= off.VIdeal {
		t.Errorf("ideal velocity should grow with expansion")
	}
}

func TestNozzleUnchoked(t *testing.T) {
	ev := thermo.NewIdealGas()
	n := &Nozzle{Eval: ev, Cd: 0.99, Cfg: 0.945}
	in := nozzleInlet(t, ev, 150000)
	res, err := n.EvaluateForArea(in, 101325)
	if err != nil {
		t.Fatal(err)
	}
	if res.Choked || res.PThroat != 101325 {
		t.Fatalf("expected unchoked throat: %+v", res)
	}
	if math.Abs(res.VThroat-res.VIdeal) > 1e-9 {
		t.Errorf("unchoked throat velocity %v vs ideal %v", res.VThroat, res.VIdeal)
	}
	off, err := n.EvaluateForFlow(in, res.Area, 90000)
	if err != nil {
		t.Fatal(err)
	}
	if off.Flow <= in.W {
		t.Errorf("unchoked flow should rise as back pressure falls: %v", off.Flow)
	}
	still, err := n.EvaluateForFlow(in, res.Area, 150000)
	if err != nil {
		t.Fatal(err)
	}
	if still.Flow != 0 {
		t.Errorf("no pressure drop should give zero flow, got %v", still.Flow)
	}
	if _, err := n.EvaluateForArea(in, 150000); !errors.Is(err, ErrInfeasible) {
		t.Errorf("err = %v", err)
	}
}

func TestNozzleFixedPolicy(t *testing.T) {
	ev := thermo.NewIdealGas()
	in := nozzleInlet(t, ev, 242660)
	gamma := &Nozzle{Eval: ev, Cd: 0.99, Cfg: 0.945}
	fixed := &Nozzle{Eval: ev, Cd: 0.99, Cfg: 0.945, Policy: ChokePolicy{Mode: ChokeFixedRatio, CriticalRatio: 0.3}}
	a, err := gamma.EvaluateForArea(in, 101325)
	if err != nil {
		t.Fatal(err)
	}
	b, err := fixed.EvaluateForArea(in, 101325)
	if err != nil {
		t.Fatal(err)
	}
	if !a.Choked || b.Choked {
		t.Fatalf("gamma choked=%v fixed choked=%v", a.Choked, b.Choked)
	}
	if math.Abs(b.PCritical-0.3*in.P) > 1e-9 {
		t.Errorf("fixed critical pressure %v", b.PCritical)
	}
	fixed.Policy.CriticalRatio = 1.2
	if _, err := fixed.EvaluateForArea(in, 101325); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("err = %v", err)
	}
	if m, err := ParseChokeMode("fixed"); err != nil || m != ChokeFixedRatio {
		t.Errorf("parse fixed: %v %v", m, err)
	}
	if _, err := ParseChokeMode("sonic"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
