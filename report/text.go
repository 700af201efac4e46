// Package report 输出计算结果：终端表格、PDF、xlsx、收敛曲线与扫描图
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"turbojet/cycle"
	"turbojet/model"
)

// Row 报告中的一行键值
type Row struct {
	Name  string
	Value string
}

func stationHeader() []string {
	return []string{"Station", "T (R)", "P (psia)", "h (BTU/lbm)", "s (J/kg-K)", "W (lbm/s)"}
}

func stationCells(s cycle.Station) []string {
	return []string{
		s.Name,
		fmt.Sprintf("%.2f", s.TR),
		fmt.Sprintf("%.3f", s.PPsia),
		fmt.Sprintf("%.3f", s.HBtuPerLbm),
		fmt.Sprintf("%.2f", s.SJPerKgK),
		fmt.Sprintf("%.3f", s.WPps),
	}
}

func performanceRows(p cycle.Performance, area float64) []Row {
	return []Row{
		{"Net thrust (lbf)", fmt.Sprintf("%.1f", p.NetThrustLbf)},
		{"Gross thrust (lbf)", fmt.Sprintf("%.1f", p.GrossThrustLbf)},
		{"Ram drag (lbf)", fmt.Sprintf("%.1f", p.RamDragLbf)},
		{"Fuel flow (lbm/s)", fmt.Sprintf("%.4f", p.FuelFlowPps)},
		{"Fuel-air ratio", fmt.Sprintf("%.5f", p.FAR)},
		{"SFC (lbm/h/lbf)", fmt.Sprintf("%.4f", p.SFC)},
		{"Nozzle throat area (m2)", fmt.Sprintf("%.5f", area)},
		{"Nozzle choked", fmt.Sprintf("%t", p.Choked)},
	}
}

// DesignRows 设计点的汇总项
func DesignRows(dp *cycle.DesignPoint) []Row {
	rows := []Row{
		{"Run", dp.RunID},
		{"Altitude (ft) / Mach", fmt.Sprintf("%.0f / %.3f", dp.Input.AltitudeFt, dp.Input.Mach)},
		{"Compressor PR / eff", fmt.Sprintf("%.3f / %.3f", dp.Input.CompressorPR, dp.Input.CompressorEff)},
		{"Turbine PR", fmt.Sprintf("%.4f", dp.TurbinePR)},
		{"Compressor power (kW)", fmt.Sprintf("%.1f", dp.CompressorPower/1000)},
	}
	return append(rows, performanceRows(dp.Performance, dp.NozzleArea)...)
}

// OffDesignRows 非设计点的汇总项
func OffDesignRows(p *cycle.OffDesignPoint) []Row {
	rows := []Row{
		{"Run", p.RunID},
		{"Altitude (ft) / Mach", fmt.Sprintf("%.0f / %.3f", p.Input.AltitudeFt, p.Input.Mach)},
		{"T4 (R)", fmt.Sprintf("%.1f", p.Input.T4R)},
		{"Corrected speed (rpm)", fmt.Sprintf("%.1f", p.Unknowns.Nc)},
		{"Physical speed (rpm)", fmt.Sprintf("%.1f", p.PhysicalSpeed)},
		{"Operating line R", fmt.Sprintf("%.5f", p.Unknowns.RLine)},
		{"Compressor PR / eff / Wc", fmt.Sprintf("%.3f / %.4f / %.3f", p.CompressorPR, p.CompressorEff, p.CompressorWc)},
		{"Turbine PR / eff", fmt.Sprintf("%.4f / %.4f", p.TurbinePR, p.TurbineEff)},
		{"Residuals work / flow", fmt.Sprintf("%.2e / %.2e", p.Residuals.Work, p.Residuals.Flow)},
		{"Iterations", fmt.Sprintf("%d", p.Iterations)},
	}
	return append(rows, performanceRows(p.Performance, p.Input.Geometry.NozzleArea)...)
}

func writeTable(w io.Writer, stations []cycle.Station, rows []Row) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for i, h := range stationHeader() {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, h)
	}
	fmt.Fprintln(tw, "\t")
	for _, s := range stations {
		for i, c := range stationCells(s) {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, c)
		}
		fmt.Fprintln(tw, "\t")
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r.Name, r.Value)
	}
	return tw.Flush()
}

// WriteDesign 设计点截面参数与性能表
func WriteDesign(w io.Writer, dp *cycle.DesignPoint) error {
	return writeTable(w, dp.Stations, DesignRows(dp))
}

// WriteOffDesign 非设计点截面参数与性能表
func WriteOffDesign(w io.Writer, p *cycle.OffDesignPoint) error {
	return writeTable(w, p.Stations, OffDesignRows(p))
}

// WriteSweep 扫描结果，每行一个点
func WriteSweep(w io.Writer, pts []model.SweepPoint) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tAlt (ft)\tMach\tThrottle\tT4 (R)\tNc\tR\tFn (lbf)\tSFC\tIter\tStatus\t")
	for _, p := range pts {
		status := "ok"
		if !p.Converged {
			status = "not converged"
		}
		fmt.Fprintf(tw, "%d\t%.0f\t%.3f\t%.3f\t%.1f\t%.1f\t%.4f\t%.1f\t%.4f\t%d\t%s\t\n",
			p.Index, p.AltitudeFt, p.Mach, p.Throttle, p.T4R, p.Nc, p.RLine, p.ThrustLbf, p.SFC, p.Iterations, status)
	}
	return tw.Flush()
}
