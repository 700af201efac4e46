package thermo

import (
	"errors"
	"fmt"
)

// ErrOutOfDomain 物性计算输入超出有效范围
var ErrOutOfDomain = errors.New("thermo: state outside property domain")

// PropertyEvaluationError 物性计算失败，记录调用与输入
type PropertyEvaluationError struct {
	Op     string
	T      float64
	P      float64
	Value  float64 // 反算时的目标焓或熵
	Reason string
}

func (e *PropertyEvaluationError) Error() string {
	return fmt.Sprintf("thermo: %s (T=%g K, P=%g Pa, target=%g): %s", e.Op, e.T, e.P, e.Value, e.Reason)
}

func (e *PropertyEvaluationError) Unwrap() error {
	return ErrOutOfDomain
}
