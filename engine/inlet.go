package engine

import (
	"fmt"
	"math"

	"turbojet/thermo"
)

// Inlet 进气道：冲压滞止，等熵增压后乘总压恢复系数
type Inlet struct {
	Eval     thermo.Evaluator
	Recovery float64
}

type InletResult struct {
	Exit thermo.State
	V0   float64 // 飞行速度 m/s
}

// Evaluate ambient 为来流静参数
func (in *Inlet) Evaluate(ambient thermo.State, mach float64) (InletResult, error) {
	if math.IsNaN(mach) || mach < 0 {
		return InletResult{}, fmt.Errorf("%w: inlet mach %v", ErrInvalidParameter, mach)
	}
	if !(in.Recovery > 0 && in.Recovery <= 1) {
		return InletResult{}, fmt.Errorf("%w: inlet recovery %v", ErrInvalidParameter, in.Recovery)
	}
	mix := ambient.Mix
	v0 := mach * math.Sqrt(ambient.Gamma()*mix.R()*ambient.T)

	tt, err := in.Eval.TemperatureFromEnthalpy(mix, ambient.H+v0*v0/2, ambient.T)
	if err != nil {
		return InletResult{}, err
	}
	pt, err := in.Eval.PressureFromEntropy(mix, ambient.S, tt)
	if err != nil {
		return InletResult{}, err
	}
	exit, err := thermo.NewState(in.Eval, mix, tt, pt*in.Recovery, ambient.W)
	if err != nil {
		return InletResult{}, err
	}
	return InletResult{Exit: exit, V0: v0}, nil
}
