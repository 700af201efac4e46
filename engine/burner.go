package engine

import (
	"fmt"
	"math"

	"turbojet/solver"
	"turbojet/thermo"
)

// Burner 燃烧室。能量平衡按显焓：
// (1+f)·h_p(T4) = h_a(T3) - h_a(Tref) + η·f·LHV + (1+f)·h_p(Tref)
type Burner struct {
	Eval         thermo.Evaluator
	Fuel         thermo.Fuel
	Efficiency   float64
	PressureLoss float64 // 总压损失比例 dP/P
	TRef         float64 // 低热值的参考温度
	MaxFAR       float64 // 反算油气比的上限
}

type BurnerResult struct {
	Exit     thermo.State
	FAR      float64
	FuelFlow float64 // kg/s
}

func NewBurner(ev thermo.Evaluator, fuel thermo.Fuel, eff, dP float64) *Burner {
	return &Burner{
		Eval:         ev,
		Fuel:         fuel,
		Efficiency:   eff,
		PressureLoss: dP,
		TRef:         298.15,
		MaxFAR:       0.08,
	}
}

func (b *Burner) check() error {
	if !validEff(b.Efficiency) {
		return fmt.Errorf("%w: combustion efficiency %v", ErrInvalidParameter, b.Efficiency)
	}
	if math.IsNaN(b.PressureLoss) || b.PressureLoss < 0 || b.PressureLoss >= 1 {
		return fmt.Errorf("%w: burner pressure loss %v", ErrInvalidParameter, b.PressureLoss)
	}
	if !(b.Fuel.LHV > 0) {
		return fmt.Errorf("%w: fuel heating value %v", ErrInvalidParameter, b.Fuel.LHV)
	}
	return nil
}

// EvaluateFuelAir 给定油气比正算出口状态
func (b *Burner) EvaluateFuelAir(in thermo.State, far float64) (BurnerResult, error) {
	if err := b.check(); err != nil {
		return BurnerResult{}, err
	}
	products, t4, err := b.exitTemperature(in, far)
	if err != nil {
		return BurnerResult{}, err
	}
	exit, err := thermo.NewState(b.Eval, products, t4, in.P*(1-b.PressureLoss), in.W*(1+far))
	if err != nil {
		return BurnerResult{}, err
	}
	return BurnerResult{Exit: exit, FAR: far, FuelFlow: in.W * far}, nil
}

// EvaluateTarget 给定涡轮前温度，二分反算油气比
func (b *Burner) EvaluateTarget(in thermo.State, t4 float64) (BurnerResult, error) {
	if err := b.check(); err != nil {
		return BurnerResult{}, err
	}
	if math.IsNaN(t4) || t4 <= in.T {
		return BurnerResult{}, fmt.Errorf("%w: target T4 %.2f K not above burner inlet %.2f K", ErrInfeasible, t4, in.T)
	}
	lo, hi := 0.0, math.Min(b.MaxFAR, b.Fuel.Stoichiometric(in.Mix)*(1-1e-9))
	_, tHi, err := b.exitTemperature(in, hi)
	if err != nil {
		return BurnerResult{}, err
	}
	if tHi < t4 {
		return BurnerResult{}, fmt.Errorf("%w: target T4 %.2f K above %.2f K reachable at f=%.4f", ErrInfeasible, t4, tHi, hi)
	}
	far, err := solver.Bisect(func(f float64) (float64, error) {
		_, t, err := b.exitTemperature(in, f)
		return t - t4, err
	}, lo, hi, 1e-16, 200)
	if err != nil {
		return BurnerResult{}, err
	}
	return b.EvaluateFuelAir(in, far)
}

func (b *Burner) exitTemperature(in thermo.State, far float64) (*thermo.Mixture, float64, error) {
	if math.IsNaN(far) || far < 0 {
		return nil, 0, fmt.Errorf("%w: fuel-air ratio %v", ErrInvalidParameter, far)
	}
	products, err := b.Fuel.Products(in.Mix, far)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInfeasible, err)
	}
	airRef, err := b.Eval.Evaluate(in.Mix, b.TRef, in.P)
	if err != nil {
		return nil, 0, err
	}
	prodRef, err := b.Eval.Evaluate(products, b.TRef, in.P)
	if err != nil {
		return nil, 0, err
	}
	hs := (in.H-airRef.H+b.Efficiency*far*b.Fuel.LHV)/(1+far) + prodRef.H
	t4, err := b.Eval.TemperatureFromEnthalpy(products, hs, math.Max(in.T, 1000))
	if err != nil {
		return nil, 0, err
	}
	return products, t4, nil
}
