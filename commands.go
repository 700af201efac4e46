package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"turbojet/calculator"
	"turbojet/cycle"
	"turbojet/model"
	"turbojet/perfmap"
	"turbojet/report"
	"turbojet/server"
	"turbojet/solver"
)

// setup 读取配置并创建计算器
func setup(c *cli.Context) (*calculator.Calculator, error) {
	cfg, err := calculator.LoadConfig(calculator.ConfPath(c.String("conf")))
	if err != nil {
		return nil, err
	}
	log.SetLevel(cfg.LogLevel)
	if lv := c.String("log-level"); lv != "" {
		level, err := log.ParseLevel(lv)
		if err != nil {
			return nil, err
		}
		log.SetLevel(level)
	}
	return calculator.NewCalculator(cfg)
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func designCommand() *cli.Command {
	return &cli.Command{
		Name:  "design",
		Usage: "evaluate the design point and derive the nozzle throat area",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "geometry", Aliases: []string{"g"}, Usage: "write the derived geometry to this JSON file"},
			&cli.StringFlag{Name: "pdf", Usage: "write a PDF report"},
			&cli.BoolFlag{Name: "json", Usage: "print JSON instead of tables"},
		},
		Action: func(c *cli.Context) error {
			calc, err := setup(c)
			if err != nil {
				return err
			}
			dp, err := calc.Design(calc.Config().Design)
			if err != nil {
				return err
			}
			if path := c.String("geometry"); path != "" {
				if err := cycle.WriteGeometry(path, dp.Geometry); err != nil {
					return err
				}
				log.WithField("file", path).Info("几何参数已保存")
			}
			if path := c.String("pdf"); path != "" {
				if err := writeFile(path, func(w io.Writer) error { return report.DesignPDF(w, dp) }); err != nil {
					return err
				}
			}
			if c.Bool("json") {
				return printJSON(dp)
			}
			return report.WriteDesign(os.Stdout, dp)
		},
	}
}

// geometry 优先读文件，否则由配置的设计点计算
func geometry(c *cli.Context, calc *calculator.Calculator) (cycle.DerivedGeometry, error) {
	var (
		g   cycle.DerivedGeometry
		err error
	)
	if path := c.String("geometry"); path != "" {
		g, err = cycle.ReadGeometry(path)
	} else {
		g, err = calc.Geometry()
	}
	if err != nil {
		return g, err
	}
	if c.IsSet("area") {
		g.NozzleArea = c.Float64("area")
	}
	return g, nil
}

func flightFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "geometry", Aliases: []string{"g"}, Usage: "derived geometry JSON from a design run"},
		&cli.Float64Flag{Name: "altitude", Usage: "altitude, ft (default from configuration)"},
		&cli.Float64Flag{Name: "mach", Usage: "flight Mach number (default from configuration)"},
		&cli.Float64Flag{Name: "area", Usage: "override the nozzle throat area, m2"},
	}
}

func flight(c *cli.Context, calc *calculator.Calculator) (float64, float64) {
	o := calc.Config().OffDesign
	alt, mach := o.AltitudeFt, o.Mach
	if c.IsSet("altitude") {
		alt = c.Float64("altitude")
	}
	if c.IsSet("mach") {
		mach = c.Float64("mach")
	}
	return alt, mach
}

func offDesignCommand() *cli.Command {
	flags := append(flightFlags(),
		&cli.Float64Flag{Name: "throttle", Usage: "T4 as a fraction of the design value (default from configuration)"},
		&cli.StringFlag{Name: "html", Usage: "write the solver convergence chart"},
		&cli.StringFlag{Name: "pdf", Usage: "write a PDF report"},
		&cli.BoolFlag{Name: "json", Usage: "print JSON instead of tables"},
	)
	return &cli.Command{
		Name:  "offdesign",
		Usage: "solve the off-design operating point for a fixed nozzle area",
		Flags: flags,
		Action: func(c *cli.Context) error {
			calc, err := setup(c)
			if err != nil {
				return err
			}
			g, err := geometry(c, calc)
			if err != nil {
				return err
			}
			alt, mach := flight(c, calc)
			throttle := calc.Config().OffDesign.Throttle
			if c.IsSet("throttle") {
				throttle = c.Float64("throttle")
			}

			p, err := calc.OffDesign(cycle.Throttle(g, alt, mach, throttle))
			var nc *solver.NonConvergenceError
			if errors.As(err, &nc) {
				if path := c.String("html"); path != "" && len(nc.History) > 0 {
					if werr := writeFile(path, func(w io.Writer) error {
						return report.WriteConvergenceHTML(w, "Off-design (not converged)", nc.History)
					}); werr != nil {
						log.WithError(werr).Warn("收敛曲线写入失败")
					}
				}
				return cli.Exit(fmt.Sprintf("not converged: %v", err), 2)
			}
			if err != nil {
				return err
			}

			if path := c.String("html"); path != "" {
				if err := writeFile(path, func(w io.Writer) error {
					return report.WriteConvergenceHTML(w, "Off-design convergence", p.History)
				}); err != nil {
					return err
				}
			}
			if path := c.String("pdf"); path != "" {
				if err := writeFile(path, func(w io.Writer) error { return report.OffDesignPDF(w, p) }); err != nil {
					return err
				}
			}
			if c.Bool("json") {
				return printJSON(p)
			}
			return report.WriteOffDesign(os.Stdout, p)
		},
	}
}

// writeSweep 表格输出，以及可选的 xlsx 与 png
func writeSweep(c *cli.Context, pts []model.SweepPoint) error {
	if path := c.String("xlsx"); path != "" {
		if err := report.WriteSweepXLSX(path, pts); err != nil {
			return err
		}
	}
	if path := c.String("png"); path != "" {
		if err := writeFile(path, func(w io.Writer) error { return report.WriteSweepPNG(w, pts, report.AxisThrust) }); err != nil {
			return err
		}
	}
	if path := c.String("sfc-png"); path != "" {
		if err := writeFile(path, func(w io.Writer) error { return report.WriteSweepPNG(w, pts, report.AxisSFC) }); err != nil {
			return err
		}
	}
	return report.WriteSweep(os.Stdout, pts)
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "xlsx", Usage: "write results to an xlsx workbook"},
		&cli.StringFlag{Name: "png", Usage: "plot net thrust against throttle"},
		&cli.StringFlag{Name: "sfc-png", Usage: "plot SFC against throttle"},
	}
}

func sweepCommand() *cli.Command {
	flags := append(flightFlags(),
		&cli.Float64Flag{Name: "from", Value: 1, Usage: "first throttle setting"},
		&cli.Float64Flag{Name: "to", Value: 0.7, Usage: "last throttle setting"},
		&cli.Float64Flag{Name: "step", Value: 0.05, Usage: "throttle step"},
		&cli.IntFlag{Name: "workers", Usage: "worker count (default from configuration)"},
	)
	return &cli.Command{
		Name:  "sweep",
		Usage: "run a throttle sweep at one flight condition",
		Flags: append(flags, outputFlags()...),
		Action: func(c *cli.Context) error {
			calc, err := setup(c)
			if err != nil {
				return err
			}
			g, err := geometry(c, calc)
			if err != nil {
				return err
			}
			throttles, err := calculator.Throttles(c.Float64("from"), c.Float64("to"), c.Float64("step"))
			if err != nil {
				return err
			}
			alt, mach := flight(c, calc)
			req := model.SweepReq{AltitudeFt: alt, Mach: mach, Throttles: throttles, Workers: c.Int("workers")}
			pts, err := calc.Sweep(c.Context, g, req, nil)
			if err != nil && pts == nil {
				return err
			}
			if werr := writeSweep(c, pts); werr != nil {
				return werr
			}
			return err
		},
	}
}

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "solve every row of an xlsx case table",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "in", Usage: "case workbook with altitude_ft, mach, throttle columns"},
			&cli.StringFlag{Name: "template", Usage: "write an example case workbook and exit"},
			&cli.StringFlag{Name: "geometry", Aliases: []string{"g"}, Usage: "derived geometry JSON from a design run"},
			&cli.Float64Flag{Name: "area", Usage: "override the nozzle throat area, m2"},
		}, outputFlags()...),
		Action: func(c *cli.Context) error {
			if path := c.String("template"); path != "" {
				return calculator.WriteCases(path, []model.Case{
					{AltitudeFt: 0, Mach: 0, Throttle: 1},
					{AltitudeFt: 0, Mach: 0, Throttle: 0.95},
					{AltitudeFt: 30000, Mach: 0.8, Throttle: 0.9},
				})
			}
			if c.String("in") == "" {
				return cli.Exit("batch needs --in or --template", 1)
			}
			calc, err := setup(c)
			if err != nil {
				return err
			}
			cases, err := calculator.ReadCases(c.String("in"))
			if err != nil {
				return err
			}
			g, err := geometry(c, calc)
			if err != nil {
				return err
			}
			pts, err := calc.Batch(c.Context, g, cases, nil)
			if err != nil && pts == nil {
				return err
			}
			if werr := writeSweep(c, pts); werr != nil {
				return werr
			}
			return err
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the HTTP API, websocket progress and metrics",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address (default from configuration or " + calculator.EnvAddr + ")"},
		},
		Action: func(c *cli.Context) error {
			calc, err := setup(c)
			if err != nil {
				return err
			}
			if c.IsSet("addr") {
				calc.Config().Server.Addr = c.String("addr")
			}
			upgrader := websocket.Upgrader{
				ReadBufferSize:  1024,
				WriteBufferSize: 1024,
			}
			upgrader.CheckOrigin = func(r *http.Request) bool {
				return true
			}
			return server.NewServer(calc, upgrader).Serve(c.Context)
		},
	}
}

func mapsCommand() *cli.Command {
	return &cli.Command{
		Name:  "maps",
		Usage: "performance map utilities",
		Subcommands: []*cli.Command{
			{
				Name:  "export",
				Usage: "tabulate the design-scaled placeholder maps into an xlsx workbook",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Value: "maps.xlsx", Usage: "output workbook"},
					&cli.StringFlag{Name: "geometry", Aliases: []string{"g"}, Usage: "derived geometry JSON from a design run"},
					&cli.IntFlag{Name: "speeds", Value: 16, Usage: "speed lines"},
					&cli.IntFlag{Name: "lines", Value: 17, Usage: "points per speed line"},
				},
				Action: func(c *cli.Context) error {
					calc, err := setup(c)
					if err != nil {
						return err
					}
					g, err := geometry(c, calc)
					if err != nil {
						return err
					}
					maps, err := cycle.DefaultMaps(g)
					if err != nil {
						return err
					}
					base := perfmap.NewPlaceholder()
					// 端点略向内收，避免舍入落到特性图范围之外
					const inset = 1e-9
					speeds := linspace(base.NMin*(1+inset)*g.Anchor.NDesign, base.NMax*(1-inset)*g.Anchor.NDesign, c.Int("speeds"))
					lines := linspace(base.RMin*(1+inset), base.RMax*(1-inset), c.Int("lines"))
					ct, tt, err := perfmap.Tabulate(maps, speeds, lines)
					if err != nil {
						return err
					}
					return perfmap.SaveXLSX(c.String("out"), ct, tt)
				},
			},
		},
	}
}

func linspace(lo, hi float64, n int) []float64 {
	if n < 2 {
		n = 2
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}
