package cycle

import (
	"turbojet/engine"
	"turbojet/thermo"
)

// 标准大气表的高度范围，ft
const (
	MinAltitudeFt = -1640.0
	MaxAltitudeFt = 65616.0
	MaxMach       = 3.0
)

// DesignInput 设计点输入，全部为必填的物理量
type DesignInput struct {
	AltitudeFt    float64 `json:"altitude_ft"`
	Mach          float64 `json:"mach"`
	CompressorPR  float64 `json:"compressor_pr"`
	CompressorEff float64 `json:"compressor_eff"`
	AirflowPps    float64 `json:"airflow_pps"` // 压气机进口折合流量 lbm/s
	T4R           float64 `json:"t4_r"`        // 涡轮前总温 °R
	DesignSpeed   float64 `json:"design_speed_rpm"`
}

func (in DesignInput) Validate() error {
	v := newValidator("design input")
	v.between("altitude_ft", in.AltitudeFt, MinAltitudeFt, MaxAltitudeFt)
	v.between("mach", in.Mach, 0, MaxMach)
	if v.finite("compressor_pr", in.CompressorPR) && in.CompressorPR <= 1 {
		v.add("compressor_pr", in.CompressorPR, "must be greater than 1")
	}
	v.fraction("compressor_eff", in.CompressorEff)
	v.positive("airflow_pps", in.AirflowPps)
	v.positive("t4_r", in.T4R)
	v.positive("design_speed_rpm", in.DesignSpeed)
	return v.result()
}

// Components 部件参数
type Components struct {
	InletRecovery      float64            `json:"inlet_recovery"`
	BurnerEff          float64            `json:"burner_eff"`
	BurnerPressureLoss float64            `json:"burner_pressure_loss"`
	TurbineEff         float64            `json:"turbine_eff"` // 设计点涡轮效率
	NozzleCd           float64            `json:"nozzle_cd"`
	NozzleCfg          float64            `json:"nozzle_cfg"`
	Fuel               thermo.Fuel        `json:"fuel"`
	Choke              engine.ChokePolicy `json:"choke"`
}

func (c Components) Validate() error {
	v := newValidator("components")
	v.fraction("inlet_recovery", c.InletRecovery)
	v.fraction("burner_eff", c.BurnerEff)
	if v.finite("burner_pressure_loss", c.BurnerPressureLoss) && (c.BurnerPressureLoss < 0 || c.BurnerPressureLoss >= 1) {
		v.add("burner_pressure_loss", c.BurnerPressureLoss, "must be in [0, 1)")
	}
	v.fraction("turbine_eff", c.TurbineEff)
	v.fraction("nozzle_cd", c.NozzleCd)
	v.fraction("nozzle_cfg", c.NozzleCfg)
	v.positive("fuel_lhv", c.Fuel.LHV)
	v.positive("fuel_c", c.Fuel.C)
	if v.finite("fuel_h", c.Fuel.H) && c.Fuel.H < 0 {
		v.add("fuel_h", c.Fuel.H, "must not be negative")
	}
	if c.Choke.Mode == engine.ChokeFixedRatio && v.finite("critical_ratio", c.Choke.CriticalRatio) &&
		!(c.Choke.CriticalRatio > 0 && c.Choke.CriticalRatio < 1) {
		v.add("critical_ratio", c.Choke.CriticalRatio, "must be in (0, 1)")
	}
	return v.result()
}

// Unknowns 非设计点未知量 [Nc, R_line]
type Unknowns struct {
	Nc    float64 `json:"nc"`
	RLine float64 `json:"r_line"`
}

func (u Unknowns) Vector() []float64 {
	return []float64{u.Nc, u.RLine}
}

func unknownsOf(x []float64) Unknowns {
	return Unknowns{Nc: x[0], RLine: x[1]}
}

// Residuals 非设计点残差，均为相对量
type Residuals struct {
	Work float64 `json:"err_work"` // (P_turb - P_comp) / P_comp
	Flow float64 `json:"err_flow"` // (W_core - W_nozzle) / W_core
}

func (r Residuals) Vector() []float64 {
	return []float64{r.Work, r.Flow}
}

// OffDesignInput 非设计点输入，几何参数来自设计点计算的产物
type OffDesignInput struct {
	AltitudeFt float64         `json:"altitude_ft"`
	Mach       float64         `json:"mach"`
	T4R        float64         `json:"t4_r"` // 油门：涡轮前总温目标
	Geometry   DerivedGeometry `json:"geometry"`
	// 初值，为空时取设计点 (N_design, R_design)
	Guess *Unknowns `json:"guess,omitempty"`
}

func (in OffDesignInput) Validate() error {
	v := newValidator("off-design input")
	v.between("altitude_ft", in.AltitudeFt, MinAltitudeFt, MaxAltitudeFt)
	v.between("mach", in.Mach, 0, MaxMach)
	v.positive("t4_r", in.T4R)
	in.Geometry.validate(v)
	if in.Guess != nil {
		v.positive("guess.nc", in.Guess.Nc)
		v.positive("guess.r_line", in.Guess.RLine)
	}
	return v.result()
}

// Throttle 按设计点 T4 的比例给出油门
func Throttle(geom DerivedGeometry, altitudeFt, mach, fraction float64) OffDesignInput {
	return OffDesignInput{
		AltitudeFt: altitudeFt,
		Mach:       mach,
		T4R:        geom.DesignT4R * fraction,
		Geometry:   geom,
	}
}
