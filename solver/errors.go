package solver

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrNonConvergence 迭代上限内残差未降到容差以下
var ErrNonConvergence = errors.New("solver: did not converge")

// NonConvergenceError 记录最后一次迭代点与残差，便于诊断特性图或工作包线问题
type NonConvergenceError struct {
	X          []float64
	R          []float64
	Norm       float64
	Iterations int
	Reason     string
	// 导致中止的底层错误，如特性图越界
	Err     error
	History []Iterate
}

func (e *NonConvergenceError) Error() string {
	msg := fmt.Sprintf("solver: did not converge after %d iterations (%s): x=%v residual=%v",
		e.Iterations, e.Reason, e.X, e.R)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NonConvergenceError) Is(target error) bool {
	return target == ErrNonConvergence
}

func (e *NonConvergenceError) Unwrap() error {
	return e.Err
}

type nonConvergenceReport struct {
	X          []float64 `json:"x"`
	R          []float64 `json:"r,omitempty"`
	Norm       *float64  `json:"norm,omitempty"`
	Iterations int       `json:"iterations"`
	Reason     string    `json:"reason"`
	Cause      string    `json:"cause,omitempty"`
	History    []Iterate `json:"history,omitempty"`
}

// MarshalJSON 非有限的残差不能编码成 JSON，这里省略掉
func (e *NonConvergenceError) MarshalJSON() ([]byte, error) {
	rep := nonConvergenceReport{
		X:          e.X,
		Iterations: e.Iterations,
		Reason:     e.Reason,
	}
	if finite(e.X) && finite(e.R) {
		rep.R = e.R
	}
	if !math.IsNaN(e.Norm) && !math.IsInf(e.Norm, 0) {
		n := e.Norm
		rep.Norm = &n
	}
	if e.Err != nil {
		rep.Cause = e.Err.Error()
	}
	for _, it := range e.History {
		if finite(it.X) && finite(it.R) {
			rep.History = append(rep.History, it)
		}
	}
	return json.Marshal(rep)
}
