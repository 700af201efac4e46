package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"turbojet/solver"
)

func lineChart(title, subtitle, yName string, logY bool) *charts.Line {
	line := charts.NewLine()
	y := opts.YAxis{Name: yName, Scale: opts.Bool(true)}
	if logY {
		y.Type = "log"
	}
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{
			Type:   "scroll",
			Orient: "vertical",
			Right:  "10",
			Top:    "20",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "iteration"}),
		charts.WithYAxisOpts(y),
	)
	return line
}

// WriteConvergenceHTML 牛顿迭代历史：残差范数（对数坐标）和两个未知量
func WriteConvergenceHTML(w io.Writer, title string, history []solver.Iterate) error {
	if len(history) == 0 {
		return fmt.Errorf("report: empty solver history")
	}
	iters := make([]int, len(history))
	norm := make([]opts.LineData, len(history))
	work := make([]opts.LineData, len(history))
	flow := make([]opts.LineData, len(history))
	nc := make([]opts.LineData, len(history))
	rl := make([]opts.LineData, len(history))
	for i, it := range history {
		iters[i] = it.Iter
		// 对数坐标不能画 0
		norm[i] = opts.LineData{Value: math.Max(it.Norm, 1e-16)}
		if len(it.R) == 2 {
			work[i] = opts.LineData{Value: math.Max(math.Abs(it.R[0]), 1e-16)}
			flow[i] = opts.LineData{Value: math.Max(math.Abs(it.R[1]), 1e-16)}
		}
		if len(it.X) == 2 {
			nc[i] = opts.LineData{Value: it.X[0]}
			rl[i] = opts.LineData{Value: it.X[1]}
		}
	}

	residual := lineChart(title, "残差范数", "|r|", true)
	residual.SetXAxis(iters).
		AddSeries("max norm", norm).
		AddSeries("work", work).
		AddSeries("flow", flow)

	speed := lineChart("折合转速", "Nc", "rpm", false)
	speed.SetXAxis(iters).AddSeries("Nc", nc)

	line := lineChart("工作线参数", "R_line", "R", false)
	line.SetXAxis(iters).AddSeries("R", rl)

	page := components.NewPage()
	page.AddCharts(residual, speed, line)
	return page.Render(w)
}
