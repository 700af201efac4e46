package cycle

import (
	"encoding/json"
	"fmt"
	"os"

	"turbojet/perfmap"
)

// DerivedGeometry 设计点计算的产物，交给非设计点计算使用，取代手工抄录喉道面积
type DerivedGeometry struct {
	RunID      string         `json:"run_id"`
	NozzleArea float64        `json:"nozzle_area_m2"`
	DesignT4R  float64        `json:"design_t4_r"`
	Anchor     perfmap.Anchor `json:"anchor"`
}

func (g DerivedGeometry) validate(v *validator) {
	v.positive("geometry.nozzle_area_m2", g.NozzleArea)
	v.positive("geometry.design_t4_r", g.DesignT4R)
	v.positive("geometry.anchor.n_design_rpm", g.Anchor.NDesign)
	v.positive("geometry.anchor.r_design", g.Anchor.RDesign)
	if v.finite("geometry.anchor.compressor_pr", g.Anchor.PR) && g.Anchor.PR <= 1 {
		v.add("geometry.anchor.compressor_pr", g.Anchor.PR, "must be greater than 1")
	}
	v.fraction("geometry.anchor.compressor_eff", g.Anchor.Eff)
	v.positive("geometry.anchor.compressor_wc_pps", g.Anchor.Wc)
	if v.finite("geometry.anchor.turbine_pr", g.Anchor.TurbinePR) && g.Anchor.TurbinePR <= 1 {
		v.add("geometry.anchor.turbine_pr", g.Anchor.TurbinePR, "must be greater than 1")
	}
	v.fraction("geometry.anchor.turbine_eff", g.Anchor.TurbineEff)
}

func (g DerivedGeometry) Validate() error {
	v := newValidator("derived geometry")
	g.validate(v)
	return v.result()
}

// WriteGeometry 写成 JSON 文件
func WriteGeometry(path string, g DerivedGeometry) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadGeometry 读取并校验
func ReadGeometry(path string) (DerivedGeometry, error) {
	var g DerivedGeometry
	data, err := os.ReadFile(path)
	if err != nil {
		return g, fmt.Errorf("read geometry: %w", err)
	}
	if err := json.Unmarshal(data, &g); err != nil {
		return g, fmt.Errorf("parse geometry %s: %w", path, err)
	}
	if err := g.Validate(); err != nil {
		return g, err
	}
	return g, nil
}

// DefaultMaps 以设计点为锚缩放的占位特性图
func DefaultMaps(g DerivedGeometry) (perfmap.Maps, error) {
	base := perfmap.NewPlaceholder()
	base.NDesign = g.Anchor.NDesign
	s, err := perfmap.NewScaled(perfmap.Maps{Compressor: base, Turbine: base}, g.Anchor)
	if err != nil {
		return perfmap.Maps{}, err
	}
	return s.Maps(), nil
}
