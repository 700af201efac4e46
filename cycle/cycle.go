// Package cycle 单轴涡喷发动机热力循环：设计点计算、非设计点残差与求解
package cycle

import (
	"turbojet/engine"
	"turbojet/model"
	"turbojet/thermo"
)

// Cycle 一组部件参数下的发动机模型，不保存跨次计算的状态，可并发使用
type Cycle struct {
	eval  thermo.Evaluator
	comps Components

	inlet      *engine.Inlet
	compressor *engine.Compressor
	burner     *engine.Burner
	turbine    *engine.Turbine
	nozzle     *engine.Nozzle
}

func New(ev thermo.Evaluator, comps Components) (*Cycle, error) {
	if err := comps.Validate(); err != nil {
		return nil, err
	}
	return &Cycle{
		eval:       ev,
		comps:      comps,
		inlet:      &engine.Inlet{Eval: ev, Recovery: comps.InletRecovery},
		compressor: &engine.Compressor{Eval: ev},
		burner:     engine.NewBurner(ev, comps.Fuel, comps.BurnerEff, comps.BurnerPressureLoss),
		turbine:    &engine.Turbine{Eval: ev},
		nozzle: &engine.Nozzle{
			Eval:   ev,
			Cd:     comps.NozzleCd,
			Cfg:    comps.NozzleCfg,
			Policy: comps.Choke,
		},
	}, nil
}

func (c *Cycle) Components() Components {
	return c.comps
}

// Station 截面参数，英制单位便于和试验数据对照
type Station struct {
	Name       string  `json:"name"`
	TK         float64 `json:"t_k"`
	PPa        float64 `json:"p_pa"`
	TR         float64 `json:"t_r"`
	PPsia      float64 `json:"p_psia"`
	HBtuPerLbm float64 `json:"h_btu_lbm"`
	SJPerKgK   float64 `json:"s_j_kgk"`
	WPps       float64 `json:"w_pps"`
}

func station(name string, s thermo.State) Station {
	return Station{
		Name:       name,
		TK:         s.T,
		PPa:        s.P,
		TR:         s.T * model.KelvinToRankine,
		PPsia:      s.P / model.PsiToPa,
		HBtuPerLbm: s.H * model.JPerKgToBtuPerLbm,
		SJPerKgK:   s.S,
		WPps:       s.W / model.LbmToKg,
	}
}

// Performance 推力与耗油率
type Performance struct {
	GrossThrustLbf float64 `json:"gross_thrust_lbf"`
	RamDragLbf     float64 `json:"ram_drag_lbf"`
	NetThrustLbf   float64 `json:"net_thrust_lbf"`
	NetThrustN     float64 `json:"net_thrust_n"`
	AirflowPps     float64 `json:"airflow_pps"`
	FuelFlowPps    float64 `json:"fuel_flow_pps"`
	FAR            float64 `json:"far"`
	SFC            float64 `json:"sfc"` // lbm/(h·lbf)，推力非正时为 0
	Choked         bool    `json:"choked"`
}

func performance(airflow, v0 float64, burner engine.BurnerResult, nozzle engine.NozzleResult) Performance {
	ramDrag := airflow * v0
	net := nozzle.GrossThrust - ramDrag
	p := Performance{
		GrossThrustLbf: nozzle.GrossThrust / model.LbfToN,
		RamDragLbf:     ramDrag / model.LbfToN,
		NetThrustLbf:   net / model.LbfToN,
		NetThrustN:     net,
		AirflowPps:     airflow / model.LbmToKg,
		FuelFlowPps:    burner.FuelFlow / model.LbmToKg,
		FAR:            burner.FAR,
		Choked:         nozzle.Choked,
	}
	if p.NetThrustLbf > 0 {
		p.SFC = p.FuelFlowPps * 3600 / p.NetThrustLbf
	}
	return p
}

func (c *Cycle) ambient(altitudeFt float64) (thermo.State, error) {
	T, P, err := engine.StandardDayFt(altitudeFt)
	if err != nil {
		return thermo.State{}, err
	}
	return thermo.NewState(c.eval, thermo.Air(), T, P, 0)
}
