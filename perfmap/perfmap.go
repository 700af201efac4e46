// Package perfmap 压气机、涡轮特性图。求解器只依赖这里的接口，
// 占位解析图、表格插值图都可以替换使用。
package perfmap

import (
	"errors"
	"fmt"
)

// ErrInvalidOperatingPoint 查询点落在特性图定义域之外
var ErrInvalidOperatingPoint = errors.New("perfmap: operating point outside map domain")

// InvalidOperatingPointError 记录越界的查询点
type InvalidOperatingPointError struct {
	Map    string
	Nc     float64
	RLine  float64
	Reason string
}

func (e *InvalidOperatingPointError) Error() string {
	return fmt.Sprintf("perfmap: %s map at Nc=%.2f R=%.5f: %s", e.Map, e.Nc, e.RLine, e.Reason)
}

func (e *InvalidOperatingPointError) Unwrap() error {
	return ErrInvalidOperatingPoint
}

// CompressorPoint 压气机特性点
type CompressorPoint struct {
	PR  float64 // 总压比
	Eff float64 // 等熵效率
	Wc  float64 // 折合流量 lbm/s
}

// TurbinePoint 涡轮特性点
type TurbinePoint struct {
	PR  float64 // 膨胀比 Pt4/Pt5
	Eff float64
}

// CompressorMap 由折合转速 Nc (rpm) 与工作线参数 R 查压气机特性
type CompressorMap interface {
	Compressor(nc, rLine float64) (CompressorPoint, error)
}

// TurbineMap 由折合转速与工作线参数查涡轮特性
type TurbineMap interface {
	Turbine(nc, rLine float64) (TurbinePoint, error)
}

// Maps 一台发动机的一对特性图
type Maps struct {
	Compressor CompressorMap
	Turbine    TurbineMap
}

func validPoint(name string, nc, r float64, p CompressorPoint) error {
	if !(p.PR >= 1) || !(p.Eff > 0 && p.Eff <= 1) || !(p.Wc > 0) {
		return &InvalidOperatingPointError{Map: name, Nc: nc, RLine: r,
			Reason: fmt.Sprintf("non-physical point PR=%g eff=%g Wc=%g", p.PR, p.Eff, p.Wc)}
	}
	return nil
}

func validTurbinePoint(name string, nc, r float64, p TurbinePoint) error {
	if !(p.PR > 1) || !(p.Eff > 0 && p.Eff <= 1) {
		return &InvalidOperatingPointError{Map: name, Nc: nc, RLine: r,
			Reason: fmt.Sprintf("non-physical point PR=%g eff=%g", p.PR, p.Eff)}
	}
	return nil
}
