package engine

import (
	"errors"
)

var (
	// ErrInvalidParameter 部件参数本身不合理，如压比小于 1、效率不在 (0,1]
	ErrInvalidParameter = errors.New("engine: invalid component parameter")
	// ErrInfeasible 参数合理但当前来流下无解，如目标 T4 低于压气机出口温度
	ErrInfeasible = errors.New("engine: infeasible operating condition")
)

func validEff(eff float64) bool {
	return eff > 0 && eff <= 1
}
