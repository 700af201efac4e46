package calculator

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"turbojet/cycle"
	"turbojet/engine"
	"turbojet/model"
	"turbojet/solver"
	"turbojet/thermo"
)

// 环境变量，可写在 .env 中
const (
	EnvConf     = "TURBOJET_CONF"
	EnvAddr     = "TURBOJET_ADDR"
	EnvLogLevel = "TURBOJET_LOG_LEVEL"

	DefaultConfPath = "conf/engine.ini"
)

type Config struct {
	Design     cycle.DesignInput
	Components cycle.Components
	OffDesign  OffDesignConfig
	Solver     SolverConfig
	Workers    int
	Server     ServerConfig
	LogLevel   log.Level
}

type OffDesignConfig struct {
	AltitudeFt float64
	Mach       float64
	Throttle   float64
	NozzleArea float64 // 0 表示使用设计点面积
	MapFile    string
}

type SolverConfig struct {
	Tol         float64
	MaxIter     int
	RelStep     float64
	MinDamping  float64
	HistorySize int
}

// Newton 按配置生成求解器
func (s SolverConfig) Newton() *solver.Newton {
	n := solver.NewNewton()
	n.Tol = s.Tol
	n.MaxIter = s.MaxIter
	n.RelStep = s.RelStep
	n.MinDamping = s.MinDamping
	n.HistorySize = s.HistorySize
	return n
}

type ServerConfig struct {
	Addr      string
	Rate      float64 // 每个 IP 每秒请求数
	Burst     int
	MaxPoints int // 单次扫描的最大点数
}

// LoadEnv 读取可选的 .env 文件，文件不存在不算错误
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ConfPath 配置文件路径，环境变量优先
func ConfPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if p := os.Getenv(EnvConf); p != "" {
		return p
	}
	return DefaultConfPath
}

// LoadConfig 读取 ini 配置，并应用环境变量覆盖
func LoadConfig(path string) (*Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("配置文件读取错误，请检查文件路径: %w", err)
	}
	cfg, err := loadCfg(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if addr := os.Getenv(EnvAddr); addr != "" {
		cfg.Server.Addr = addr
	}
	if lv := os.Getenv(EnvLogLevel); lv != "" {
		level, err := log.ParseLevel(lv)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
		cfg.LogLevel = level
	}
	return cfg, nil
}

// keys 收集缺失或无法解析的必填项
type keys struct {
	missing []string
}

func (k *keys) float(sec *ini.Section, name string) float64 {
	if !sec.HasKey(name) {
		k.missing = append(k.missing, sec.Name()+"."+name)
		return 0
	}
	v, err := sec.Key(name).Float64()
	if err != nil {
		k.missing = append(k.missing, fmt.Sprintf("%s.%s (%v)", sec.Name(), name, err))
		return 0
	}
	return v
}

func (k *keys) err() error {
	if len(k.missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: missing or invalid keys: %s", cycle.ErrInvalidInput, strings.Join(k.missing, ", "))
}

func loadCfg(file *ini.File) (*Config, error) {
	k := &keys{}

	d := file.Section("design")
	design := cycle.DesignInput{
		AltitudeFt:    k.float(d, "altitude_ft"),
		Mach:          k.float(d, "mach"),
		CompressorPR:  k.float(d, "compressor_pr"),
		CompressorEff: k.float(d, "compressor_eff"),
		AirflowPps:    k.float(d, "airflow_pps"),
		T4R:           k.float(d, "t4_r"),
		DesignSpeed:   k.float(d, "design_speed_rpm"),
	}

	c := file.Section("components")
	n := file.Section("nozzle")
	mode, err := engine.ParseChokeMode(n.Key("choke").String())
	if err != nil {
		return nil, err
	}
	choke := engine.ChokePolicy{Mode: mode}
	if mode == engine.ChokeFixedRatio {
		choke.CriticalRatio = k.float(n, "critical_ratio")
	}
	fuel := thermo.Fuel{
		C:   k.float(c, "fuel_c"),
		H:   k.float(c, "fuel_h"),
		LHV: k.float(c, "fuel_lhv_btu_lbm") * model.BtuPerLbmToJPerKg,
	}
	fuel.Name = fmt.Sprintf("C%gH%g", fuel.C, fuel.H)
	comps := cycle.Components{
		InletRecovery:      k.float(c, "inlet_recovery"),
		BurnerEff:          k.float(c, "burner_eff"),
		BurnerPressureLoss: k.float(c, "burner_pressure_loss"),
		TurbineEff:         k.float(c, "turbine_eff"),
		NozzleCd:           k.float(n, "cd"),
		NozzleCfg:          k.float(n, "cfg"),
		Fuel:               fuel,
		Choke:              choke,
	}

	o := file.Section("offdesign")
	off := OffDesignConfig{
		AltitudeFt: k.float(o, "altitude_ft"),
		Mach:       k.float(o, "mach"),
		Throttle:   k.float(o, "throttle"),
		NozzleArea: o.Key("nozzle_area_m2").MustFloat64(0),
		MapFile:    o.Key("map_file").String(),
	}
	if err := k.err(); err != nil {
		return nil, err
	}

	s := file.Section("solver")
	srv := file.Section("server")
	level, err := log.ParseLevel(file.Section("log").Key("level").MustString("info"))
	if err != nil {
		return nil, err
	}
	return &Config{
		Design:     design,
		Components: comps,
		OffDesign:  off,
		Solver: SolverConfig{
			Tol:         s.Key("tol").MustFloat64(1e-8),
			MaxIter:     s.Key("max_iter").MustInt(50),
			RelStep:     s.Key("rel_step").MustFloat64(1e-6),
			MinDamping:  s.Key("min_damping").MustFloat64(1e-4),
			HistorySize: s.Key("history_size").MustInt(64),
		},
		Workers: file.Section("sweep").Key("workers").MustInt(4),
		Server: ServerConfig{
			Addr:      srv.Key("addr").MustString(":9000"),
			Rate:      srv.Key("rate").MustFloat64(5),
			Burst:     srv.Key("burst").MustInt(10),
			MaxPoints: srv.Key("max_points").MustInt(200),
		},
		LogLevel: level,
	}, nil
}
