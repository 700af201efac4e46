package thermo

import (
	"math"
)

// Props 某一状态下的物性
type Props struct {
	H     float64 // J/kg
	S     float64 // J/(kg·K)
	S0    float64 // 参考压力下的熵
	Cp    float64 // J/(kg·K)
	R     float64 // J/(kg·K)
	Gamma float64
}

// Evaluator 物性计算接口，各部件只通过它访问气体物性
type Evaluator interface {
	// Evaluate 由温度、压力求焓、熵、比热
	Evaluate(mix *Mixture, T, P float64) (Props, error)
	// TemperatureFromEnthalpy 由焓反算温度
	TemperatureFromEnthalpy(mix *Mixture, h, guess float64) (float64, error)
	// TemperatureFromEntropy 由熵、压力反算温度
	TemperatureFromEntropy(mix *Mixture, s, P, guess float64) (float64, error)
	// PressureFromEntropy 由熵、温度反算压力
	PressureFromEntropy(mix *Mixture, s, T float64) (float64, error)
}

// IdealGas 热完全气体，NASA 多项式
type IdealGas struct {
	TMin    float64
	TMax    float64
	Tol     float64 // 反算温度容差 K
	MaxIter int     // 牛顿迭代上限
}

// NewIdealGas 默认取多项式拟合范围 200~3500 K
func NewIdealGas() *IdealGas {
	return &IdealGas{
		TMin:    200,
		TMax:    3500,
		Tol:     1e-10,
		MaxIter: 50,
	}
}

func (g *IdealGas) checkTP(op string, T, P float64) error {
	if math.IsNaN(T) || T < g.TMin || T > g.TMax {
		return &PropertyEvaluationError{Op: op, T: T, P: P, Reason: "temperature outside polynomial range"}
	}
	if math.IsNaN(P) || math.IsInf(P, 0) || P <= 0 {
		return &PropertyEvaluationError{Op: op, T: T, P: P, Reason: "non-physical pressure"}
	}
	return nil
}

func (g *IdealGas) Evaluate(mix *Mixture, T, P float64) (Props, error) {
	if err := g.checkTP("evaluate", T, P); err != nil {
		return Props{}, err
	}
	cp := mix.Cp(T)
	s0 := mix.S0(T)
	return Props{
		H:     mix.H(T),
		S:     s0 - mix.R()*math.Log(P/RefPressure),
		S0:    s0,
		Cp:    cp,
		R:     mix.R(),
		Gamma: cp / (cp - mix.R()),
	}, nil
}

func (g *IdealGas) TemperatureFromEnthalpy(mix *Mixture, h, guess float64) (float64, error) {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0, &PropertyEvaluationError{Op: "T(h)", T: guess, Value: h, Reason: "non-finite enthalpy"}
	}
	return g.invert("T(h)", h, guess, 0, mix.H, mix.Cp)
}

func (g *IdealGas) TemperatureFromEntropy(mix *Mixture, s, P, guess float64) (float64, error) {
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0, &PropertyEvaluationError{Op: "T(s,P)", T: guess, P: P, Value: s, Reason: "non-finite entropy"}
	}
	if math.IsNaN(P) || math.IsInf(P, 0) || P <= 0 {
		return 0, &PropertyEvaluationError{Op: "T(s,P)", T: guess, P: P, Value: s, Reason: "non-physical pressure"}
	}
	f := func(T float64) float64 { return mix.S(T, P) }
	df := func(T float64) float64 { return mix.Cp(T) / T }
	return g.invert("T(s,P)", s, guess, P, f, df)
}

func (g *IdealGas) PressureFromEntropy(mix *Mixture, s, T float64) (float64, error) {
	if math.IsNaN(T) || T < g.TMin || T > g.TMax {
		return 0, &PropertyEvaluationError{Op: "P(s,T)", T: T, Value: s, Reason: "temperature outside polynomial range"}
	}
	P := RefPressure * math.Exp((mix.S0(T)-s)/mix.R())
	if math.IsNaN(P) || math.IsInf(P, 0) || P <= 0 {
		return 0, &PropertyEvaluationError{Op: "P(s,T)", T: T, P: P, Value: s, Reason: "non-physical pressure"}
	}
	return P, nil
}

// invert 在 [TMin, TMax] 上求 f(T) = target，f 单调递增。
// 先牛顿迭代，跳出区间或未收敛时改用二分。
func (g *IdealGas) invert(op string, target, guess, P float64, f, df func(float64) float64) (float64, error) {
	lo, hi := g.TMin, g.TMax
	fLo, fHi := f(lo)-target, f(hi)-target
	if fLo > 0 || fHi < 0 {
		return 0, &PropertyEvaluationError{Op: op, T: guess, P: P, Value: target, Reason: "target outside polynomial range"}
	}
	if fLo == 0 {
		return lo, nil
	}
	if fHi == 0 {
		return hi, nil
	}

	T := guess
	if math.IsNaN(T) || T <= lo || T >= hi {
		T = (lo + hi) / 2
	}
	for i := 0; i < g.MaxIter; i++ {
		r := f(T) - target
		if r > 0 {
			hi = T
		} else {
			lo = T
		}
		dT := r / df(T)
		next := T - dT
		if math.Abs(dT) < g.Tol {
			return next, nil
		}
		if math.IsNaN(next) || next <= lo || next >= hi {
			break
		}
		T = next
	}

	// 二分兜底，区间已被牛顿步收窄
	for i := 0; i < 200 && hi-lo > g.Tol; i++ {
		mid := (lo + hi) / 2
		if f(mid) < target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, nil
}
