package engine

import (
	"fmt"
	"math"

	"turbojet/perfmap"
	"turbojet/thermo"
)

// Turbine 涡轮。设计点由所需轴功反算出口状态，非设计点由特性图正算
type Turbine struct {
	Eval thermo.Evaluator
	Map  perfmap.TurbineMap
}

type TurbineResult struct {
	Exit  thermo.State
	PR    float64 // Pt4/Pt5
	Eff   float64
	Work  float64 // 单位燃气质量输出功 J/kg
	Power float64 // W
}

// EvaluateFromWork 设计点：涡轮功率等于 shaftPower，先由功与效率求等熵出口焓，
// 再由焓反算温度、由熵反算出口总压
func (t *Turbine) EvaluateFromWork(in thermo.State, shaftPower, eff float64) (TurbineResult, error) {
	if !validEff(eff) {
		return TurbineResult{}, fmt.Errorf("%w: turbine efficiency %v", ErrInvalidParameter, eff)
	}
	if !(in.W > 0) {
		return TurbineResult{}, fmt.Errorf("%w: turbine flow %v", ErrInvalidParameter, in.W)
	}
	if math.IsNaN(shaftPower) || shaftPower < 0 {
		return TurbineResult{}, fmt.Errorf("%w: turbine shaft power %v", ErrInvalidParameter, shaftPower)
	}
	mix := in.Mix
	dh := shaftPower / in.W
	t5is, err := t.Eval.TemperatureFromEnthalpy(mix, in.H-dh/eff, in.T)
	if err != nil {
		return TurbineResult{}, err
	}
	p5, err := t.Eval.PressureFromEntropy(mix, in.S, t5is)
	if err != nil {
		return TurbineResult{}, err
	}
	t5, err := t.Eval.TemperatureFromEnthalpy(mix, in.H-dh, t5is)
	if err != nil {
		return TurbineResult{}, err
	}
	exit, err := thermo.NewState(t.Eval, mix, t5, p5, in.W)
	if err != nil {
		return TurbineResult{}, err
	}
	return TurbineResult{
		Exit:  exit,
		PR:    in.P / p5,
		Eff:   eff,
		Work:  dh,
		Power: shaftPower,
	}, nil
}

// EvaluateForward 非设计点：特性图给出膨胀比与效率
func (t *Turbine) EvaluateForward(in thermo.State, nc, rLine float64) (TurbineResult, error) {
	if t.Map == nil {
		return TurbineResult{}, fmt.Errorf("%w: turbine has no map", ErrInvalidParameter)
	}
	p, err := t.Map.Turbine(nc, rLine)
	if err != nil {
		return TurbineResult{}, err
	}
	return t.Expand(in, p.PR, p.Eff)
}

// Expand 给定膨胀比与效率正算出口状态
func (t *Turbine) Expand(in thermo.State, pr, eff float64) (TurbineResult, error) {
	if math.IsNaN(pr) || pr < 1 {
		return TurbineResult{}, fmt.Errorf("%w: turbine pressure ratio %v", ErrInvalidParameter, pr)
	}
	if !validEff(eff) {
		return TurbineResult{}, fmt.Errorf("%w: turbine efficiency %v", ErrInvalidParameter, eff)
	}
	mix := in.Mix
	p5 := in.P / pr
	t5is, err := t.Eval.TemperatureFromEntropy(mix, in.S, p5, in.T)
	if err != nil {
		return TurbineResult{}, err
	}
	ideal, err := t.Eval.Evaluate(mix, t5is, p5)
	if err != nil {
		return TurbineResult{}, err
	}
	dh := (in.H - ideal.H) * eff
	t5, err := t.Eval.TemperatureFromEnthalpy(mix, in.H-dh, t5is)
	if err != nil {
		return TurbineResult{}, err
	}
	exit, err := thermo.NewState(t.Eval, mix, t5, p5, in.W)
	if err != nil {
		return TurbineResult{}, err
	}
	return TurbineResult{
		Exit:  exit,
		PR:    pr,
		Eff:   eff,
		Work:  dh,
		Power: dh * in.W,
	}, nil
}
