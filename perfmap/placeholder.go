package perfmap

import (
	"math"
)

// DesignSpeed 占位特性图的设计转速 rpm
const DesignSpeed = 16540.0

// Placeholder 解析形式的占位特性图，(1,1) 附近给出设计点量级，
// 待实测特性图数据到位后替换
type Placeholder struct {
	NDesign float64
	NMin    float64 // 相对转速下限
	NMax    float64
	RMin    float64
	RMax    float64
}

func NewPlaceholder() *Placeholder {
	return &Placeholder{
		NDesign: DesignSpeed,
		NMin:    0.4,
		NMax:    1.15,
		RMin:    0.2,
		RMax:    1.8,
	}
}

func (p *Placeholder) check(name string, nc, r float64) (float64, error) {
	n := nc / p.NDesign
	if math.IsNaN(n) || n < p.NMin || n > p.NMax {
		return n, &InvalidOperatingPointError{Map: name, Nc: nc, RLine: r, Reason: "corrected speed outside map"}
	}
	if math.IsNaN(r) || r < p.RMin || r > p.RMax {
		return n, &InvalidOperatingPointError{Map: name, Nc: nc, RLine: r, Reason: "operating line outside map"}
	}
	return n, nil
}

func (p *Placeholder) Compressor(nc, r float64) (CompressorPoint, error) {
	n, err := p.check("compressor", nc, r)
	if err != nil {
		return CompressorPoint{}, err
	}
	return CompressorPoint{
		PR:  math.Max((3+4*n)*r, 1),
		Wc:  math.Max((15+29*n)*(2-r), 1),
		Eff: math.Max(0.87-(1-n)*(1-n)-(1-r)*(1-r), 0.5),
	}, nil
}

func (p *Placeholder) Turbine(nc, r float64) (TurbinePoint, error) {
	n, err := p.check("turbine", nc, r)
	if err != nil {
		return TurbinePoint{}, err
	}
	return TurbinePoint{
		PR:  (1.5 + 1.163*n) * (0.8 + 0.2*r),
		Eff: 0.85 - (1-n)*(1-n),
	}, nil
}
