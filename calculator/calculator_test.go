package calculator

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"turbojet/cycle"
	"turbojet/model"
	"turbojet/perfmap"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadConfig("../conf/engine.ini")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	return cfg
}

func TestLoadConfig(t *testing.T) {
	cfg := testConfig(t)
	if cfg.Design.CompressorPR != 7 || cfg.Design.AirflowPps != 44 || cfg.Design.T4R != 2100 {
		t.Errorf("design section = %+v", cfg.Design)
	}
	if cfg.Design.DesignSpeed != perfmap.DesignSpeed {
		t.Errorf("design speed = %v", cfg.Design.DesignSpeed)
	}
	if cfg.Components.Fuel.Name != "C12H23" || math.Abs(cfg.Components.Fuel.LHV-18400*2326) > 1e-6 {
		t.Errorf("fuel = %+v", cfg.Components.Fuel)
	}
	if cfg.Solver.Tol != 1e-8 || cfg.Solver.MaxIter != 50 {
		t.Errorf("solver = %+v", cfg.Solver)
	}
	if cfg.OffDesign.NozzleArea != 0.0882 || cfg.OffDesign.Throttle != 0.9 {
		t.Errorf("offdesign = %+v", cfg.OffDesign)
	}
}

func writeIni(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.ini")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigMissingPhysicalKey(t *testing.T) {
	path := writeIni(t, `
[design]
altitude_ft = 0
mach = 0
compressor_pr = 7
airflow_pps = 44
t4_r = 2100
design_speed_rpm = 16540
`)
	_, err := LoadConfig(path)
	if !errors.Is(err, cycle.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv(EnvAddr, ":9100")
	t.Setenv(EnvLogLevel, "debug")
	cfg := testConfig(t)
	if cfg.Server.Addr != ":9100" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.LogLevel.String() != "debug" {
		t.Errorf("level = %v", cfg.LogLevel)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	if err := os.WriteFile(env, []byte(EnvConf+"=custom.ini\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConf, "")
	os.Unsetenv(EnvConf)
	if err := LoadEnv(env, filepath.Join(dir, "absent.env")); err != nil {
		t.Fatal(err)
	}
	if got := ConfPath(""); got != "custom.ini" {
		t.Errorf("conf path = %q", got)
	}
	if got := ConfPath("flag.ini"); got != "flag.ini" {
		t.Errorf("flag should win, got %q", got)
	}
}

func TestExecutorSplit(t *testing.T) {
	cases := []struct {
		workers, total int
		want           []task
	}{
		{4, 10, []task{{0, 3}, {3, 6}, {6, 8}, {8, 10}}},
		{4, 2, []task{{0, 1}, {1, 2}}},
		{1, 3, []task{{0, 3}}},
		{3, 0, nil},
	}
	for _, tc := range cases {
		got := newExecutor(tc.workers).split(tc.total)
		if len(got) != len(tc.want) {
			t.Errorf("split(%d, %d) = %v, want %v", tc.workers, tc.total, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("split(%d, %d) = %v, want %v", tc.workers, tc.total, got, tc.want)
				break
			}
		}
	}
}

func TestExecutorCoversAll(t *testing.T) {
	seen := make([]int, 37)
	newExecutor(5).dispatchTask(context.Background(), len(seen), func(_ context.Context, tk task) {
		for i := tk.start; i < tk.end; i++ {
			seen[i]++
		}
	})
	for i, n := range seen {
		if n != 1 {
			t.Errorf("index %d visited %d times", i, n)
		}
	}
}

func TestExecutorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	newExecutor(1).dispatchTask(ctx, 5, func(context.Context, task) { calls++ })
	if calls != 0 {
		t.Errorf("%d tasks ran after cancel", calls)
	}
}

func TestCalcHub(t *testing.T) {
	ch := NewCalcHub()
	ctx, err := ch.StartSignal(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ch.StartSignal(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("second start err = %v, want ErrBusy", err)
	}
	if !ch.StopSignal() {
		t.Error("stop reported nothing running")
	}
	if ctx.Err() == nil {
		t.Error("context not cancelled by stop")
	}
	if ch.StopSignal() {
		t.Error("second stop reported a running sweep")
	}
	ch.PushSignal(ctx, model.SweepPoint{}) // 已取消，不阻塞
	if ch.Running() {
		t.Error("hub still running")
	}
}

func TestThrottles(t *testing.T) {
	got, err := Throttles(1, 0.7, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{1, 0.9, 0.8, 0.7}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("got %v, want %v", got, want)
		}
	}
	if _, err := Throttles(1, 0.5, 0); err == nil {
		t.Error("zero step accepted")
	}
}

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	cfg := testConfig(t)
	cfg.OffDesign.NozzleArea = 0
	c, err := NewCalculator(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestDesignCached(t *testing.T) {
	c := newTestCalculator(t)
	a, err := c.DesignPoint()
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.DesignPoint()
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("design point recomputed")
	}
	g, err := c.Geometry()
	if err != nil {
		t.Fatal(err)
	}
	if g.NozzleArea != a.NozzleArea {
		t.Errorf("geometry area %v, design %v", g.NozzleArea, a.NozzleArea)
	}

	c.cfg.OffDesign.NozzleArea = 0.0882
	g, err = c.Geometry()
	if err != nil {
		t.Fatal(err)
	}
	if g.NozzleArea != 0.0882 {
		t.Errorf("override ignored: %v", g.NozzleArea)
	}
}

func TestSweep(t *testing.T) {
	c := newTestCalculator(t)
	dp, err := c.DesignPoint()
	if err != nil {
		t.Fatal(err)
	}
	var pushed []int
	req := model.SweepReq{Throttles: []float64{1, 0.98, 0.96}, Workers: 2}
	pts, err := c.Sweep(context.Background(), dp.Geometry, req, func(p model.SweepPoint) {
		pushed = append(pushed, p.Index)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 3 || len(pushed) != 3 {
		t.Fatalf("got %d points, %d pushed", len(pts), len(pushed))
	}
	sort.Ints(pushed)
	for i, p := range pts {
		if p.Index != i || pushed[i] != i {
			t.Errorf("point %d has index %d", i, p.Index)
		}
		if math.Abs(p.T4R-2100*req.Throttles[i]) > 1e-9 {
			t.Errorf("point %d T4 = %v", i, p.T4R)
		}
	}
	first := pts[0]
	if !first.Converged {
		t.Fatalf("design throttle did not converge: %s", first.Error)
	}
	if math.Abs(first.ThrustLbf-dp.NetThrustLbf) > 1e-3*dp.NetThrustLbf {
		t.Errorf("full throttle thrust %v, design %v", first.ThrustLbf, dp.NetThrustLbf)
	}
	for _, p := range pts[1:] {
		if p.Converged && p.ThrustLbf >= first.ThrustLbf {
			t.Errorf("throttle %v thrust %v not below full throttle %v", p.Throttle, p.ThrustLbf, first.ThrustLbf)
		}
	}
}

func TestSweepIndependentOfWorkers(t *testing.T) {
	c := newTestCalculator(t)
	dp, err := c.DesignPoint()
	if err != nil {
		t.Fatal(err)
	}
	throttles := []float64{1, 0.98, 0.96, 0.94, 0.92}
	var runs [][]model.SweepPoint
	for _, workers := range []int{1, 2, 5} {
		req := model.SweepReq{Throttles: throttles, Workers: workers}
		pts, err := c.Sweep(context.Background(), dp.Geometry, req, nil)
		if err != nil {
			t.Fatal(err)
		}
		runs = append(runs, pts)
	}
	for _, pts := range runs[1:] {
		for i := range pts {
			if pts[i] != runs[0][i] {
				t.Errorf("point %d depends on worker count: %+v vs %+v", i, pts[i], runs[0][i])
			}
		}
	}
}

func TestSweepRejectsBadInput(t *testing.T) {
	c := newTestCalculator(t)
	g, err := c.Geometry()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Sweep(context.Background(), g, model.SweepReq{}, nil); !errors.Is(err, cycle.ErrInvalidInput) {
		t.Errorf("empty sweep err = %v", err)
	}
	req := model.SweepReq{Throttles: []float64{1, -0.5}}
	if _, err := c.Sweep(context.Background(), g, req, nil); !errors.Is(err, cycle.ErrInvalidInput) {
		t.Errorf("negative throttle err = %v", err)
	}
}

func TestCasesRoundTripAndBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.xlsx")
	in := []model.Case{
		{AltitudeFt: 0, Mach: 0, Throttle: 1},
		{AltitudeFt: 0, Mach: 0, Throttle: 3},
	}
	if err := WriteCases(path, in); err != nil {
		t.Fatal(err)
	}
	cases, err := ReadCases(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cases) != 2 || cases[0] != in[0] || cases[1] != in[1] {
		t.Fatalf("read back %+v", cases)
	}

	c := newTestCalculator(t)
	g, err := c.Geometry()
	if err != nil {
		t.Fatal(err)
	}
	pts, err := c.Batch(context.Background(), g, cases, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !pts[0].Converged {
		t.Errorf("design case did not converge: %s", pts[0].Error)
	}
	// 3 倍设计 T4 超出燃烧室能力，单独报告失败而不影响其它行
	if pts[1].Converged || pts[1].Error == "" {
		t.Errorf("impossible throttle reported %+v", pts[1])
	}
}
