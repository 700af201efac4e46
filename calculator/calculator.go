// Package calculator 组织设计点、非设计点、节流扫描与批量计算，供命令行和服务端调用
package calculator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"turbojet/cycle"
	"turbojet/metrics"
	"turbojet/model"
	"turbojet/perfmap"
	"turbojet/solver"
	"turbojet/thermo"
)

// 指标里的计算模式
const (
	ModeDesign    = "design"
	ModeOffDesign = "offdesign"
	ModeSweep     = "sweep"
	ModeBatch     = "batch"
)

type Calculator struct {
	cfg   *Config
	cycle *cycle.Cycle

	mu     sync.Mutex
	design *cycle.DesignPoint
	table  *perfmap.Maps // 从 xlsx 读入的特性图
}

func NewCalculator(cfg *Config) (*Calculator, error) {
	c, err := cycle.New(thermo.NewIdealGas(), cfg.Components)
	if err != nil {
		return nil, err
	}
	return &Calculator{cfg: cfg, cycle: c}, nil
}

func (c *Calculator) Config() *Config {
	return c.cfg
}

func (c *Calculator) Cycle() *cycle.Cycle {
	return c.cycle
}

func result(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, solver.ErrNonConvergence):
		return metrics.ResultNotConverged
	case errors.Is(err, cycle.ErrInvalidInput):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}

// Design 设计点计算，与配置文件中的设计点相同时缓存结果
func (c *Calculator) Design(in cycle.DesignInput) (*cycle.DesignPoint, error) {
	start := time.Now()
	dp, err := c.cycle.Design(in)
	metrics.ObserveRun(ModeDesign, result(err), start)
	if err != nil {
		return nil, err
	}
	metrics.SetThrust(ModeDesign, dp.NetThrustLbf)
	if in == c.cfg.Design {
		c.mu.Lock()
		c.design = dp
		c.mu.Unlock()
	}
	return dp, nil
}

// DesignPoint 配置文件中的设计点，只计算一次
func (c *Calculator) DesignPoint() (*cycle.DesignPoint, error) {
	c.mu.Lock()
	dp := c.design
	c.mu.Unlock()
	if dp != nil {
		return dp, nil
	}
	return c.Design(c.cfg.Design)
}

// Geometry 非设计点使用的几何参数：设计点产物，配置了喉道面积时覆盖
func (c *Calculator) Geometry() (cycle.DerivedGeometry, error) {
	dp, err := c.DesignPoint()
	if err != nil {
		return cycle.DerivedGeometry{}, fmt.Errorf("design point: %w", err)
	}
	g := dp.Geometry
	if c.cfg.OffDesign.NozzleArea > 0 {
		g.NozzleArea = c.cfg.OffDesign.NozzleArea
	}
	return g, nil
}

// Maps 配置了特性图文件时使用表格，否则使用以设计点缩放的占位特性图
func (c *Calculator) Maps(g cycle.DerivedGeometry) (perfmap.Maps, error) {
	if c.cfg.OffDesign.MapFile == "" {
		return cycle.DefaultMaps(g)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.table == nil {
		ct, tt, err := perfmap.LoadXLSX(c.cfg.OffDesign.MapFile)
		if err != nil {
			return perfmap.Maps{}, err
		}
		c.table = &perfmap.Maps{Compressor: ct, Turbine: tt}
		log.WithField("file", c.cfg.OffDesign.MapFile).Info("特性图读取完成")
	}
	return *c.table, nil
}

// DefaultOffDesign 配置文件中的非设计点工况
func (c *Calculator) DefaultOffDesign() (cycle.OffDesignInput, error) {
	g, err := c.Geometry()
	if err != nil {
		return cycle.OffDesignInput{}, err
	}
	o := c.cfg.OffDesign
	return cycle.Throttle(g, o.AltitudeFt, o.Mach, o.Throttle), nil
}

// OffDesign 非设计点求解
func (c *Calculator) OffDesign(in cycle.OffDesignInput) (*cycle.OffDesignPoint, error) {
	start := time.Now()
	p, err := c.offDesign(in)
	metrics.ObserveRun(ModeOffDesign, result(err), start)
	if err != nil {
		return nil, err
	}
	metrics.SetThrust(ModeOffDesign, p.NetThrustLbf)
	return p, nil
}

func (c *Calculator) offDesign(in cycle.OffDesignInput) (*cycle.OffDesignPoint, error) {
	maps, err := c.Maps(in.Geometry)
	if err != nil {
		return nil, err
	}
	p, err := c.cycle.OffDesign(in, maps, c.cfg.Solver.Newton())
	if err != nil {
		return nil, err
	}
	metrics.ObserveIterations(p.Iterations)
	return p, nil
}

// Sweep 同一飞行条件下按油门列表扫描
func (c *Calculator) Sweep(ctx context.Context, g cycle.DerivedGeometry, req model.SweepReq, push func(model.SweepPoint)) ([]model.SweepPoint, error) {
	if len(req.Throttles) == 0 {
		return nil, fmt.Errorf("%w: sweep has no throttle settings", cycle.ErrInvalidInput)
	}
	cases := make([]model.Case, len(req.Throttles))
	for i, th := range req.Throttles {
		cases[i] = model.Case{AltitudeFt: req.AltitudeFt, Mach: req.Mach, Throttle: th}
	}
	return c.run(ctx, ModeSweep, g, cases, req.Workers, push)
}

// Batch 逐行计算，每行单独给出收敛或不收敛
func (c *Calculator) Batch(ctx context.Context, g cycle.DerivedGeometry, cases []model.Case, push func(model.SweepPoint)) ([]model.SweepPoint, error) {
	if len(cases) == 0 {
		return nil, fmt.Errorf("%w: batch has no cases", cycle.ErrInvalidInput)
	}
	return c.run(ctx, ModeBatch, g, cases, 0, push)
}

func (c *Calculator) run(ctx context.Context, mode string, g cycle.DerivedGeometry, cases []model.Case, workers int, push func(model.SweepPoint)) ([]model.SweepPoint, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	for i, cs := range cases {
		if math.IsNaN(cs.Throttle) || math.IsInf(cs.Throttle, 0) || cs.Throttle <= 0 {
			return nil, fmt.Errorf("%w: case %d throttle %v must be positive", cycle.ErrInvalidInput, i, cs.Throttle)
		}
	}
	maps, err := c.Maps(g)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = c.cfg.Workers
	}
	defer metrics.SweepStarted()()

	start := time.Now()
	out := make([]model.SweepPoint, len(cases))
	var pushMu sync.Mutex
	e := newExecutor(workers)
	elapsed := e.dispatchTask(ctx, len(cases), func(ctx context.Context, t task) {
		for i := t.start; i < t.end; i++ {
			if ctx.Err() != nil {
				return
			}
			// 每点都从设计点锚出发，结果与分块方式和 worker 数无关
			cs := cases[i]
			in := cycle.Throttle(g, cs.AltitudeFt, cs.Mach, cs.Throttle)
			pStart := time.Now()
			p, err := c.cycle.OffDesign(in, maps, c.cfg.Solver.Newton())
			metrics.ObserveRun(mode, result(err), pStart)
			pt := sweepPoint(i, cs, in, p, err)
			if err == nil {
				metrics.ObserveIterations(p.Iterations)
			}
			out[i] = pt
			if push != nil {
				pushMu.Lock()
				push(pt)
				pushMu.Unlock()
			}
		}
	})

	converged := 0
	for _, p := range out {
		if p.Converged {
			converged++
		}
	}
	log.WithFields(log.Fields{
		"mode":      mode,
		"points":    len(cases),
		"converged": converged,
		"workers":   workers,
		"elapsed":   elapsed,
		"total":     time.Since(start),
	}).Info("批量计算完成")
	if err := ctx.Err(); err != nil {
		return out, err
	}
	return out, nil
}

func sweepPoint(i int, cs model.Case, in cycle.OffDesignInput, p *cycle.OffDesignPoint, err error) model.SweepPoint {
	pt := model.SweepPoint{
		Index:      i,
		AltitudeFt: cs.AltitudeFt,
		Mach:       cs.Mach,
		Throttle:   cs.Throttle,
		T4R:        in.T4R,
	}
	if err != nil {
		pt.Error = err.Error()
		var nc *solver.NonConvergenceError
		if errors.As(err, &nc) && len(nc.X) == 2 {
			pt.Nc, pt.RLine, pt.Iterations = nc.X[0], nc.X[1], nc.Iterations
		}
		return pt
	}
	pt.Converged = true
	pt.Nc = p.Unknowns.Nc
	pt.RLine = p.Unknowns.RLine
	pt.ThrustLbf = p.NetThrustLbf
	pt.SFC = p.SFC
	pt.FAR = p.FAR
	pt.Choked = p.Choked
	pt.Iterations = p.Iterations
	return pt
}

// Throttles 从 from 到 to 按步长生成油门列表，包含两端
func Throttles(from, to, step float64) ([]float64, error) {
	if !(step > 0) || math.IsNaN(from) || math.IsNaN(to) {
		return nil, fmt.Errorf("%w: throttle range %v..%v step %v", cycle.ErrInvalidInput, from, to, step)
	}
	dir := 1.0
	if to < from {
		dir = -1
	}
	n := int(math.Floor(math.Abs(to-from)/step+1e-9)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = from + dir*float64(i)*step
	}
	return out, nil
}
