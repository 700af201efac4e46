package cycle

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"turbojet/engine"
	"turbojet/model"
	"turbojet/perfmap"
	"turbojet/thermo"
)

// DesignPoint 设计点计算结果
type DesignPoint struct {
	RunID    string          `json:"run_id"`
	Input    DesignInput     `json:"input"`
	Stations []Station       `json:"stations"`
	Geometry DerivedGeometry `json:"geometry"`

	V0              float64 `json:"v0_ms"`
	CompressorWork  float64 `json:"compressor_work_j_kg"`
	CompressorPower float64 `json:"compressor_power_w"`
	TurbinePower    float64 `json:"turbine_power_w"`
	TurbinePR       float64 `json:"turbine_pr"`
	NozzleArea      float64 `json:"nozzle_area_m2"`
	Performance

	Ambient    thermo.State `json:"-"`
	Inlet      thermo.State `json:"-"`
	Compressor thermo.State `json:"-"`
	Burner     thermo.State `json:"-"`
	Turbine    thermo.State `json:"-"`
}

// Design 设计点：部件参数全部已知，涡轮功由压气机功反算，最后求喷管喉道面积
func (c *Cycle) Design(in DesignInput) (*DesignPoint, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	amb, err := c.ambient(in.AltitudeFt)
	if err != nil {
		return nil, fmt.Errorf("ambient: %w", err)
	}
	inlet, err := c.inlet.Evaluate(amb, in.Mach)
	if err != nil {
		return nil, fmt.Errorf("inlet: %w", err)
	}
	w := engine.ActualFlow(in.AirflowPps, inlet.Exit.T, inlet.Exit.P)
	face := inlet.Exit.WithFlow(w)

	comp, err := c.compressor.EvaluateDesign(face, in.CompressorPR, in.CompressorEff)
	if err != nil {
		return nil, fmt.Errorf("compressor: %w", err)
	}
	burner, err := c.burner.EvaluateTarget(comp.Exit, in.T4R*model.RankineToKelvin)
	if err != nil {
		return nil, fmt.Errorf("burner: %w", err)
	}
	turb, err := c.turbine.EvaluateFromWork(burner.Exit, comp.Power, c.comps.TurbineEff)
	if err != nil {
		return nil, fmt.Errorf("turbine: %w", err)
	}
	nozzle, err := c.nozzle.EvaluateForArea(turb.Exit, amb.P)
	if err != nil {
		return nil, fmt.Errorf("nozzle: %w", err)
	}
	perf := performance(w, inlet.V0, burner, nozzle)
	if perf.NetThrustLbf <= 0 {
		return nil, fmt.Errorf("%w: design point net thrust %.1f lbf is not positive", engine.ErrInfeasible, perf.NetThrustLbf)
	}

	amb = amb.WithFlow(w)
	dp := &DesignPoint{
		RunID: runID("design", in, c.comps),
		Input: in,
		Stations: []Station{
			station("0 ambient", amb),
			station("2 inlet face", face),
			station("3 compressor exit", comp.Exit),
			station("4 turbine inlet", burner.Exit),
			station("5 turbine exit", turb.Exit),
		},
		V0:              inlet.V0,
		CompressorWork:  comp.Work,
		CompressorPower: comp.Power,
		TurbinePower:    turb.Power,
		TurbinePR:       turb.PR,
		NozzleArea:      nozzle.Area,
		Performance:     perf,
		Ambient:         amb,
		Inlet:           face,
		Compressor:      comp.Exit,
		Burner:          burner.Exit,
		Turbine:         turb.Exit,
	}
	dp.Geometry = DerivedGeometry{
		RunID:      dp.RunID,
		NozzleArea: nozzle.Area,
		DesignT4R:  in.T4R,
		Anchor: perfmap.Anchor{
			NDesign:    in.DesignSpeed,
			RDesign:    1,
			PR:         in.CompressorPR,
			Eff:        in.CompressorEff,
			Wc:         in.AirflowPps,
			TurbinePR:  turb.PR,
			TurbineEff: c.comps.TurbineEff,
		},
	}

	log.WithFields(log.Fields{
		"run":    dp.RunID,
		"thrust": perf.NetThrustLbf,
		"sfc":    perf.SFC,
		"area":   nozzle.Area,
		"choked": nozzle.Choked,
	}).Info("设计点计算完成")
	return dp, nil
}
