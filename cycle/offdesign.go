package cycle

import (
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"turbojet/engine"
	"turbojet/model"
	"turbojet/perfmap"
	"turbojet/solver"
	"turbojet/thermo"
)

// OffDesignPoint 非设计点一次完整循环计算的结果
type OffDesignPoint struct {
	RunID     string         `json:"run_id"`
	Input     OffDesignInput `json:"input"`
	Unknowns  Unknowns       `json:"unknowns"`
	Residuals Residuals      `json:"residuals"`
	Converged bool           `json:"converged"`
	Stations  []Station      `json:"stations"`

	PhysicalSpeed   float64 `json:"physical_speed_rpm"`
	CompressorPR    float64 `json:"compressor_pr"`
	CompressorEff   float64 `json:"compressor_eff"`
	CompressorWc    float64 `json:"compressor_wc_pps"`
	CompressorPower float64 `json:"compressor_power_w"`
	TurbinePR       float64 `json:"turbine_pr"`
	TurbineEff      float64 `json:"turbine_eff"`
	TurbinePower    float64 `json:"turbine_power_w"`
	NozzleFlowPps   float64 `json:"nozzle_flow_pps"`
	Performance

	Iterations  int              `json:"iterations"`
	Evaluations int              `json:"evaluations"`
	History     []solver.Iterate `json:"history,omitempty"`
}

// offDesignRun 一次非设计点求解的固定条件
type offDesignRun struct {
	c       *Cycle
	in      OffDesignInput
	maps    perfmap.Maps
	ambient thermo.State
	inlet   engine.InletResult
	t4      float64
}

func (c *Cycle) prepare(in OffDesignInput, maps perfmap.Maps) (*offDesignRun, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if maps.Compressor == nil || maps.Turbine == nil {
		return nil, fmt.Errorf("%w: off-design run needs both compressor and turbine maps", ErrInvalidInput)
	}
	amb, err := c.ambient(in.AltitudeFt)
	if err != nil {
		return nil, fmt.Errorf("ambient: %w", err)
	}
	inlet, err := c.inlet.Evaluate(amb, in.Mach)
	if err != nil {
		return nil, fmt.Errorf("inlet: %w", err)
	}
	return &offDesignRun{
		c:       c,
		in:      in,
		maps:    maps,
		ambient: amb,
		inlet:   inlet,
		t4:      in.T4R * model.RankineToKelvin,
	}, nil
}

// evaluate 给定未知量跑一遍完整循环
func (r *offDesignRun) evaluate(x Unknowns) (*OffDesignPoint, error) {
	c := r.c
	comp := &engine.Compressor{Eval: c.eval, Map: r.maps.Compressor}
	turb := &engine.Turbine{Eval: c.eval, Map: r.maps.Turbine}

	cr, err := comp.EvaluateMap(r.inlet.Exit, x.Nc, x.RLine)
	if err != nil {
		return nil, fmt.Errorf("compressor: %w", err)
	}
	if !(cr.Power > 0) {
		return nil, fmt.Errorf("compressor: %w", &perfmap.InvalidOperatingPointError{
			Map: "compressor", Nc: x.Nc, RLine: x.RLine, Reason: "compressor absorbs no power"})
	}
	br, err := c.burner.EvaluateTarget(cr.Exit, r.t4)
	if err != nil {
		return nil, fmt.Errorf("burner: %w", err)
	}
	tr, err := turb.EvaluateForward(br.Exit, x.Nc, x.RLine)
	if err != nil {
		return nil, fmt.Errorf("turbine: %w", err)
	}
	nr, err := c.nozzle.EvaluateForFlow(tr.Exit, r.in.Geometry.NozzleArea, r.ambient.P)
	if err != nil {
		return nil, fmt.Errorf("nozzle: %w", err)
	}

	wAir := cr.Exit.W
	wCore := br.Exit.W
	face := r.inlet.Exit.WithFlow(wAir)
	return &OffDesignPoint{
		Input:    r.in,
		Unknowns: x,
		Residuals: Residuals{
			Work: (tr.Power - cr.Power) / cr.Power,
			Flow: (wCore - nr.Flow) / wCore,
		},
		Stations: []Station{
			station("0 ambient", r.ambient.WithFlow(wAir)),
			station("2 inlet face", face),
			station("3 compressor exit", cr.Exit),
			station("4 turbine inlet", br.Exit),
			station("5 turbine exit", tr.Exit),
		},
		PhysicalSpeed:   x.Nc * math.Sqrt(model.Theta(face.T)),
		CompressorPR:    cr.PR,
		CompressorEff:   cr.Eff,
		CompressorWc:    cr.Wc,
		CompressorPower: cr.Power,
		TurbinePR:       tr.PR,
		TurbineEff:      tr.Eff,
		TurbinePower:    tr.Power,
		NozzleFlowPps:   nr.Flow / model.LbmToKg,
		Performance:     performance(wAir, r.inlet.V0, br, nr),
	}, nil
}

// Evaluate 在给定未知量处计算完整循环与残差，不做求解
func (c *Cycle) Evaluate(in OffDesignInput, maps perfmap.Maps, x Unknowns) (*OffDesignPoint, error) {
	r, err := c.prepare(in, maps)
	if err != nil {
		return nil, err
	}
	return r.evaluate(x)
}

// Residual 返回供求解器调用的残差函数 [err_work, err_flow]
func (c *Cycle) Residual(in OffDesignInput, maps perfmap.Maps) (solver.Func, error) {
	r, err := c.prepare(in, maps)
	if err != nil {
		return nil, err
	}
	return r.residual, nil
}

func (r *offDesignRun) residual(x []float64) ([]float64, error) {
	p, err := r.evaluate(unknownsOf(x))
	if err != nil {
		return nil, err
	}
	return p.Residuals.Vector(), nil
}

// Infeasible 求解过程中可以通过减小步长绕开的错误
func Infeasible(err error) bool {
	return errors.Is(err, perfmap.ErrInvalidOperatingPoint) || errors.Is(err, engine.ErrInfeasible)
}

// OffDesign 求解功平衡与流量连续，收敛时返回工作点；
// 不收敛时返回 *solver.NonConvergenceError，附带最后的迭代点与残差
func (c *Cycle) OffDesign(in OffDesignInput, maps perfmap.Maps, nt *solver.Newton) (*OffDesignPoint, error) {
	r, err := c.prepare(in, maps)
	if err != nil {
		return nil, err
	}
	if nt == nil {
		nt = solver.NewNewton()
	}
	ns := *nt
	ns.Infeasible = Infeasible

	guess := Unknowns{Nc: in.Geometry.Anchor.NDesign, RLine: in.Geometry.Anchor.RDesign}
	if in.Guess != nil {
		guess = *in.Guess
	}
	id := runID("offdesign", in, c.comps)

	res, err := ns.Solve(r.residual, guess.Vector())
	if err != nil {
		var nc *solver.NonConvergenceError
		if errors.As(err, &nc) {
			log.WithFields(log.Fields{
				"run":      id,
				"altitude": in.AltitudeFt,
				"mach":     in.Mach,
				"t4":       in.T4R,
			}).Warn("非设计点未收敛")
		}
		return nil, err
	}

	p, err := r.evaluate(unknownsOf(res.X))
	if err != nil {
		return nil, err
	}
	p.RunID = id
	p.Converged = true
	p.Iterations = res.Iterations
	p.Evaluations = res.Evaluations
	p.History = res.History

	log.WithFields(log.Fields{
		"run":    id,
		"nc":     p.Unknowns.Nc,
		"r":      p.Unknowns.RLine,
		"iter":   p.Iterations,
		"thrust": p.NetThrustLbf,
		"sfc":    p.SFC,
	}).Info("非设计点求解完成")
	return p, nil
}
