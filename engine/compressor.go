package engine

import (
	"fmt"
	"math"

	"turbojet/model"
	"turbojet/perfmap"
	"turbojet/thermo"
)

// Compressor 压气机。设计点给定压比与效率，非设计点由特性图给出
type Compressor struct {
	Eval thermo.Evaluator
	Map  perfmap.CompressorMap
}

type CompressorResult struct {
	Exit  thermo.State
	PR    float64
	Eff   float64
	Work  float64 // 单位质量耗功 J/kg
	Power float64 // 轴功率 W
	Wc    float64 // 折合流量 lbm/s
}

// EvaluateDesign 设计点：流量取进口状态的流量
func (c *Compressor) EvaluateDesign(in thermo.State, pr, eff float64) (CompressorResult, error) {
	return c.compress(in, pr, eff)
}

// EvaluateMap 非设计点：由 (Nc, R) 查特性图，折合流量还原成实际流量
func (c *Compressor) EvaluateMap(in thermo.State, nc, rLine float64) (CompressorResult, error) {
	if c.Map == nil {
		return CompressorResult{}, fmt.Errorf("%w: compressor has no map", ErrInvalidParameter)
	}
	p, err := c.Map.Compressor(nc, rLine)
	if err != nil {
		return CompressorResult{}, err
	}
	w := ActualFlow(p.Wc, in.T, in.P)
	res, err := c.compress(in.WithFlow(w), p.PR, p.Eff)
	if err != nil {
		return CompressorResult{}, err
	}
	res.Wc = p.Wc
	return res, nil
}

func (c *Compressor) compress(in thermo.State, pr, eff float64) (CompressorResult, error) {
	if math.IsNaN(pr) || pr < 1 {
		return CompressorResult{}, fmt.Errorf("%w: compressor pressure ratio %v", ErrInvalidParameter, pr)
	}
	if !validEff(eff) {
		return CompressorResult{}, fmt.Errorf("%w: compressor efficiency %v", ErrInvalidParameter, eff)
	}
	mix := in.Mix
	p3 := in.P * pr
	t3is, err := c.Eval.TemperatureFromEntropy(mix, in.S, p3, in.T)
	if err != nil {
		return CompressorResult{}, err
	}
	ideal, err := c.Eval.Evaluate(mix, t3is, p3)
	if err != nil {
		return CompressorResult{}, err
	}
	work := (ideal.H - in.H) / eff
	t3, err := c.Eval.TemperatureFromEnthalpy(mix, in.H+work, t3is)
	if err != nil {
		return CompressorResult{}, err
	}
	exit, err := thermo.NewState(c.Eval, mix, t3, p3, in.W)
	if err != nil {
		return CompressorResult{}, err
	}
	return CompressorResult{
		Exit:  exit,
		PR:    pr,
		Eff:   eff,
		Work:  work,
		Power: work * in.W,
		Wc:    CorrectedFlow(in.W, in.T, in.P),
	}, nil
}

// CorrectedFlow 实际流量 kg/s 换算为折合流量 lbm/s
func CorrectedFlow(w, tt, pt float64) float64 {
	return w / model.LbmToKg * math.Sqrt(model.Theta(tt)) / model.Delta(pt)
}

// ActualFlow 折合流量 lbm/s 还原为实际流量 kg/s
func ActualFlow(wc, tt, pt float64) float64 {
	return wc * model.LbmToKg * model.Delta(pt) / math.Sqrt(model.Theta(tt))
}

// CorrectedSpeed 物理转速换算为折合转速
func CorrectedSpeed(n, tt float64) float64 {
	return n / math.Sqrt(model.Theta(tt))
}
