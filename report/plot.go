package report

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"turbojet/model"
)

// SweepAxis 扫描图的纵坐标
type SweepAxis int

const (
	AxisThrust SweepAxis = iota
	AxisSFC
)

func (a SweepAxis) label() string {
	if a == AxisSFC {
		return "SFC (lbm/h/lbf)"
	}
	return "Net thrust (lbf)"
}

func (a SweepAxis) value(p model.SweepPoint) float64 {
	if a == AxisSFC {
		return p.SFC
	}
	return p.ThrustLbf
}

// WriteSweepPNG 只画收敛的点，横坐标为油门
func WriteSweepPNG(w io.Writer, pts []model.SweepPoint, axis SweepAxis) error {
	xys := make(plotter.XYs, 0, len(pts))
	for _, p := range pts {
		if !p.Converged {
			continue
		}
		xys = append(xys, plotter.XY{X: p.Throttle, Y: axis.value(p)})
	}
	if len(xys) == 0 {
		return fmt.Errorf("report: no converged points to plot")
	}

	p := plot.New()
	p.Title.Text = "Throttle sweep"
	p.X.Label.Text = "T4 / T4 design"
	p.Y.Label.Text = axis.label()
	p.Add(plotter.NewGrid())

	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return err
	}
	line.Color = plotutil.Color(int(axis))
	points.Color = plotutil.Color(int(axis))
	points.Shape = plotutil.Shape(0)
	p.Add(line, points)

	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
