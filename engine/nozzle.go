package engine

import (
	"fmt"
	"math"

	"turbojet/thermo"
)

// ChokeMode 临界压比的确定方式
type ChokeMode int

const (
	// ChokeGamma 按进口温度下的比热比计算 (2/(γ+1))^(γ/(γ-1))
	ChokeGamma ChokeMode = iota
	// ChokeFixedRatio 使用给定的临界压比 P*/Pt
	ChokeFixedRatio
)

func (m ChokeMode) String() string {
	switch m {
	case ChokeGamma:
		return "gamma"
	case ChokeFixedRatio:
		return "fixed"
	}
	return fmt.Sprintf("ChokeMode(%d)", int(m))
}

// ParseChokeMode 配置文件中的写法
func ParseChokeMode(s string) (ChokeMode, error) {
	switch s {
	case "", "gamma":
		return ChokeGamma, nil
	case "fixed":
		return ChokeFixedRatio, nil
	}
	return 0, fmt.Errorf("%w: unknown choke mode %q", ErrInvalidParameter, s)
}

// ChokePolicy 壅塞判定策略，每次调用都重新判定
type ChokePolicy struct {
	Mode          ChokeMode
	CriticalRatio float64 // 仅 ChokeFixedRatio 使用
}

// Nozzle 收敛喷管
type Nozzle struct {
	Eval   thermo.Evaluator
	Cd     float64 // 流量系数
	Cfg    float64 // 推力系数
	Policy ChokePolicy
}

type NozzleResult struct {
	Area        float64 // 喉道面积 m²
	Flow        float64 // 喉道可通过流量 kg/s
	Choked      bool
	PCritical   float64
	PThroat     float64
	TThroat     float64
	VThroat     float64
	VIdeal      float64 // 完全膨胀到环境压力的速度
	GrossThrust float64 // N，按进口流量计
}

type throat struct {
	choked bool
	pCrit  float64
	p      float64
	t      float64
	rho    float64
	v      float64
	vIdeal float64
}

func (n *Nozzle) check() error {
	if !(n.Cd > 0 && n.Cd <= 1) {
		return fmt.Errorf("%w: nozzle discharge coefficient %v", ErrInvalidParameter, n.Cd)
	}
	if !(n.Cfg > 0 && n.Cfg <= 1) {
		return fmt.Errorf("%w: nozzle thrust coefficient %v", ErrInvalidParameter, n.Cfg)
	}
	if n.Policy.Mode == ChokeFixedRatio && !(n.Policy.CriticalRatio > 0 && n.Policy.CriticalRatio < 1) {
		return fmt.Errorf("%w: critical pressure ratio %v", ErrInvalidParameter, n.Policy.CriticalRatio)
	}
	return nil
}

// CriticalPressure 当前进口状态下的临界静压
func (n *Nozzle) CriticalPressure(in thermo.State) float64 {
	if n.Policy.Mode == ChokeFixedRatio {
		return in.P * n.Policy.CriticalRatio
	}
	g := in.Gamma()
	return in.P * math.Pow(2/(g+1), g/(g-1))
}

func (n *Nozzle) throat(in thermo.State, pAmb float64) (throat, error) {
	if math.IsNaN(pAmb) || pAmb <= 0 {
		return throat{}, fmt.Errorf("%w: ambient pressure %v", ErrInvalidParameter, pAmb)
	}
	th := throat{pCrit: n.CriticalPressure(in)}
	th.choked = th.pCrit > pAmb
	th.p = pAmb
	if th.choked {
		th.p = th.pCrit
	}
	mix := in.Mix
	if th.p >= in.P {
		// 无压降，没有流动
		th.t = in.T
		th.rho = th.p / (mix.R() * th.t)
		return th, nil
	}
	var err error
	th.t, err = n.Eval.TemperatureFromEntropy(mix, in.S, th.p, in.T)
	if err != nil {
		return throat{}, err
	}
	props, err := n.Eval.Evaluate(mix, th.t, th.p)
	if err != nil {
		return throat{}, err
	}
	th.rho = th.p / (mix.R() * th.t)
	th.v = math.Sqrt(math.Max(0, 2*(in.H-props.H)))

	te, err := n.Eval.TemperatureFromEntropy(mix, in.S, pAmb, th.t)
	if err != nil {
		return throat{}, err
	}
	exit, err := n.Eval.Evaluate(mix, te, pAmb)
	if err != nil {
		return throat{}, err
	}
	th.vIdeal = math.Sqrt(math.Max(0, 2*(in.H-exit.H)))
	return th, nil
}

func (n *Nozzle) result(in thermo.State, th throat, area, flow float64) NozzleResult {
	return NozzleResult{
		Area:        area,
		Flow:        flow,
		Choked:      th.choked,
		PCritical:   th.pCrit,
		PThroat:     th.p,
		TThroat:     th.t,
		VThroat:     th.v,
		VIdeal:      th.vIdeal,
		GrossThrust: in.W * th.vIdeal * n.Cfg,
	}
}

// EvaluateForArea 设计点：求通过进口流量所需的喉道面积
func (n *Nozzle) EvaluateForArea(in thermo.State, pAmb float64) (NozzleResult, error) {
	if err := n.check(); err != nil {
		return NozzleResult{}, err
	}
	th, err := n.throat(in, pAmb)
	if err != nil {
		return NozzleResult{}, err
	}
	if th.v <= 0 {
		return NozzleResult{}, fmt.Errorf("%w: nozzle pressure ratio %.4f gives no flow", ErrInfeasible, in.P/pAmb)
	}
	area := in.W / (th.rho * th.v * n.Cd)
	return n.result(in, th, area, in.W), nil
}

// EvaluateForFlow 非设计点：固定喉道面积下可通过的流量
func (n *Nozzle) EvaluateForFlow(in thermo.State, area, pAmb float64) (NozzleResult, error) {
	if err := n.check(); err != nil {
		return NozzleResult{}, err
	}
	if math.IsNaN(area) || area <= 0 {
		return NozzleResult{}, fmt.Errorf("%w: nozzle area %v", ErrInvalidParameter, area)
	}
	th, err := n.throat(in, pAmb)
	if err != nil {
		return NozzleResult{}, err
	}
	return n.result(in, th, area, th.rho*th.v*area*n.Cd), nil
}
