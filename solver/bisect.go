package solver

import (
	"fmt"
	"math"
)

// Bisect 在 [lo, hi] 上求 f 的根，要求两端异号
func Bisect(f func(x float64) (float64, error), lo, hi, tol float64, maxIter int) (float64, error) {
	fLo, err := f(lo)
	if err != nil {
		return 0, err
	}
	fHi, err := f(hi)
	if err != nil {
		return 0, err
	}
	if fLo == 0 {
		return lo, nil
	}
	if fHi == 0 {
		return hi, nil
	}
	if math.Signbit(fLo) == math.Signbit(fHi) {
		return 0, fmt.Errorf("bisect: f(%g)=%g and f(%g)=%g do not bracket a root", lo, fLo, hi, fHi)
	}
	for i := 0; i < maxIter && hi-lo > tol; i++ {
		mid := lo + (hi-lo)/2
		fMid, err := f(mid)
		if err != nil {
			return 0, err
		}
		if fMid == 0 {
			return mid, nil
		}
		if math.Signbit(fMid) == math.Signbit(fLo) {
			lo, fLo = mid, fMid
		} else {
			hi = mid
		}
	}
	return lo + (hi-lo)/2, nil
}
