package perfmap

import (
	"fmt"
)

// Anchor 设计点参数，用来把通用特性图缩放到具体发动机
type Anchor struct {
	NDesign    float64 `json:"n_design_rpm"`
	RDesign    float64 `json:"r_design"`
	PR         float64 `json:"compressor_pr"`
	Eff        float64 `json:"compressor_eff"`
	Wc         float64 `json:"compressor_wc_pps"`
	TurbinePR  float64 `json:"turbine_pr"`
	TurbineEff float64 `json:"turbine_eff"`
}

// Scaled 经设计点缩放的特性图：
// 压比按 (PR-1) 缩放，流量与效率按比例缩放，设计点处与设计计算完全一致
type Scaled struct {
	base Maps

	kPR  float64
	kWc  float64
	kEff float64

	kTurbinePR  float64
	kTurbineEff float64
}

func NewScaled(base Maps, a Anchor) (*Scaled, error) {
	c, err := base.Compressor.Compressor(a.NDesign, a.RDesign)
	if err != nil {
		return nil, fmt.Errorf("scale compressor map: %w", err)
	}
	t, err := base.Turbine.Turbine(a.NDesign, a.RDesign)
	if err != nil {
		return nil, fmt.Errorf("scale turbine map: %w", err)
	}
	if c.PR <= 1 || c.Wc <= 0 || c.Eff <= 0 || t.PR <= 1 || t.Eff <= 0 {
		return nil, fmt.Errorf("scale maps: degenerate anchor point %+v %+v", c, t)
	}
	if a.PR <= 1 || a.TurbinePR <= 1 {
		return nil, fmt.Errorf("scale maps: design pressure ratios must exceed 1")
	}
	return &Scaled{
		base:        base,
		kPR:         (a.PR - 1) / (c.PR - 1),
		kWc:         a.Wc / c.Wc,
		kEff:        a.Eff / c.Eff,
		kTurbinePR:  (a.TurbinePR - 1) / (t.PR - 1),
		kTurbineEff: a.TurbineEff / t.Eff,
	}, nil
}

func (s *Scaled) Compressor(nc, r float64) (CompressorPoint, error) {
	p, err := s.base.Compressor.Compressor(nc, r)
	if err != nil {
		return CompressorPoint{}, err
	}
	out := CompressorPoint{
		PR:  1 + (p.PR-1)*s.kPR,
		Wc:  p.Wc * s.kWc,
		Eff: p.Eff * s.kEff,
	}
	return out, validPoint("scaled compressor", nc, r, out)
}

func (s *Scaled) Turbine(nc, r float64) (TurbinePoint, error) {
	p, err := s.base.Turbine.Turbine(nc, r)
	if err != nil {
		return TurbinePoint{}, err
	}
	out := TurbinePoint{
		PR:  1 + (p.PR-1)*s.kTurbinePR,
		Eff: p.Eff * s.kTurbineEff,
	}
	return out, validTurbinePoint("scaled turbine", nc, r, out)
}

// Maps 以自身作为压气机与涡轮特性图
func (s *Scaled) Maps() Maps {
	return Maps{Compressor: s, Turbine: s}
}
