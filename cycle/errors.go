package cycle

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidInput 输入记录缺项或物理上不合理，在任何物性计算之前报出
var ErrInvalidInput = errors.New("cycle: invalid input")

type FieldError struct {
	Field  string  `json:"field"`
	Value  float64 `json:"value"`
	Reason string  `json:"reason"`
}

// ValidationError 一次校验发现的全部问题
type ValidationError struct {
	Input  string       `json:"input"`
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s=%g: %s", f.Field, f.Value, f.Reason)
	}
	return fmt.Sprintf("cycle: invalid %s: %s", e.Input, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

type validator struct {
	err ValidationError
}

func newValidator(input string) *validator {
	return &validator{err: ValidationError{Input: input}}
}

func (v *validator) add(field string, value float64, reason string) {
	v.err.Fields = append(v.err.Fields, FieldError{Field: field, Value: value, Reason: reason})
}

func (v *validator) finite(field string, value float64) bool {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		v.add(field, value, "must be a finite number")
		return false
	}
	return true
}

func (v *validator) positive(field string, value float64) {
	if v.finite(field, value) && value <= 0 {
		v.add(field, value, "must be positive")
	}
}

// 区间 (0, 1]
func (v *validator) fraction(field string, value float64) {
	if v.finite(field, value) && !(value > 0 && value <= 1) {
		v.add(field, value, "must be in (0, 1]")
	}
}

func (v *validator) between(field string, value, lo, hi float64) {
	if v.finite(field, value) && (value < lo || value > hi) {
		v.add(field, value, fmt.Sprintf("must be within [%g, %g]", lo, hi))
	}
}

func (v *validator) result() error {
	if len(v.err.Fields) == 0 {
		return nil
	}
	e := v.err
	return &e
}
