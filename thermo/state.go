package thermo

import (
	"math"
)

// State 截面总参数，组件只产生新的 State，不修改输入
type State struct {
	Mix *Mixture
	T   float64 // 总温 K
	P   float64 // 总压 Pa
	W   float64 // 质量流量 kg/s
	H   float64 // J/kg
	S   float64 // J/(kg·K)
	Cp  float64 // J/(kg·K)
}

// NewState 由温度、压力建立状态并缓存焓熵
func NewState(ev Evaluator, mix *Mixture, T, P, W float64) (State, error) {
	if math.IsNaN(W) || W < 0 {
		return State{}, &PropertyEvaluationError{Op: "state", T: T, P: P, Value: W, Reason: "negative mass flow"}
	}
	props, err := ev.Evaluate(mix, T, P)
	if err != nil {
		return State{}, err
	}
	return State{
		Mix: mix,
		T:   T,
		P:   P,
		W:   W,
		H:   props.H,
		S:   props.S,
		Cp:  props.Cp,
	}, nil
}

// WithFlow 同一热力状态换一个流量
func (s State) WithFlow(W float64) State {
	s.W = W
	return s
}

// Gamma 比热比
func (s State) Gamma() float64 {
	r := s.Mix.R()
	return s.Cp / (s.Cp - r)
}
