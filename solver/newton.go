package solver

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"turbojet/deque"
)

// Func 残差函数
type Func func(x []float64) ([]float64, error)

// Iterate 一次牛顿迭代的记录
type Iterate struct {
	Iter    int       `json:"iter"`
	X       []float64 `json:"x"`
	R       []float64 `json:"r"`
	Norm    float64   `json:"norm"`
	Damping float64   `json:"damping"` // 本步采用的步长因子
}

type Result struct {
	X           []float64
	R           []float64
	Norm        float64
	Iterations  int
	Evaluations int
	History     []Iterate
}

// Newton 带阻尼的牛顿法，雅可比矩阵用前向差分。
// 试探点残差函数返回的错误若被 Infeasible 判定为不可行，则步长减半重试
type Newton struct {
	Tol         float64 // 残差无穷范数容差
	MaxIter     int
	RelStep     float64 // 差分步长 h = RelStep·max(|x|, 1)
	MinDamping  float64 // 步长因子下限
	HistorySize int

	// 变量上下界，可为空
	Lower []float64
	Upper []float64

	Infeasible func(err error) bool
}

func NewNewton() *Newton {
	return &Newton{
		Tol:         1e-8,
		MaxIter:     50,
		RelStep:     1e-6,
		MinDamping:  1e-4,
		HistorySize: 64,
	}
}

type run struct {
	n       *Newton
	f       Func
	evals   int
	history *deque.ArrDeque[Iterate]
}

func (r *run) eval(x []float64) ([]float64, error) {
	r.evals++
	res, err := r.f(x)
	if err == nil && len(res) != len(x) {
		return nil, fmt.Errorf("solver: residual has %d components for %d unknowns", len(res), len(x))
	}
	return res, err
}

func (r *run) infeasible(err error) bool {
	return err != nil && r.n.Infeasible != nil && r.n.Infeasible(err)
}

func (r *run) fail(it int, x, res []float64, reason string, cause error) error {
	e := &NonConvergenceError{
		X:          append([]float64(nil), x...),
		R:          append([]float64(nil), res...),
		Iterations: it,
		Reason:     reason,
		Err:        cause,
		History:    deque.ToSlice[Iterate](r.history),
	}
	if res != nil {
		e.Norm = floats.Norm(res, math.Inf(1))
	} else {
		e.Norm = math.Inf(1)
	}
	log.WithFields(log.Fields{
		"iter":   it,
		"x":      e.X,
		"norm":   e.Norm,
		"reason": reason,
	}).Warn("求解未收敛")
	return e
}

func (n *Newton) clamp(x []float64) {
	for i := range x {
		if i < len(n.Lower) && x[i] < n.Lower[i] {
			x[i] = n.Lower[i]
		}
		if i < len(n.Upper) && x[i] > n.Upper[i] {
			x[i] = n.Upper[i]
		}
	}
}

// Solve 从 x0 出发求 f(x) = 0。非收敛时返回 *NonConvergenceError。
// 初始点上残差函数的其它错误原样返回，迭代中出现时包装为 *NonConvergenceError，
// 保留最后一个可行迭代点
func (n *Newton) Solve(f Func, x0 []float64) (Result, error) {
	dim := len(x0)
	size := n.HistorySize
	if size <= 0 {
		size = 64
	}
	r := &run{n: n, f: f, history: deque.NewArrDeque[Iterate](size)}

	x := append([]float64(nil), x0...)
	n.clamp(x)
	res, err := r.eval(x)
	if err != nil {
		if r.infeasible(err) {
			return Result{}, r.fail(0, x, nil, "initial point infeasible", err)
		}
		return Result{}, err
	}

	damping := 0.0
	for it := 0; ; it++ {
		norm := floats.Norm(res, math.Inf(1))
		deque.PushBounded[Iterate](r.history, Iterate{
			Iter:    it,
			X:       append([]float64(nil), x...),
			R:       append([]float64(nil), res...),
			Norm:    norm,
			Damping: damping,
		})
		log.WithFields(log.Fields{"iter": it, "x": x, "norm": norm}).Debug("牛顿迭代")

		if !math.IsNaN(norm) && norm < n.Tol {
			return Result{
				X:           x,
				R:           res,
				Norm:        norm,
				Iterations:  it,
				Evaluations: r.evals,
				History:     deque.ToSlice[Iterate](r.history),
			}, nil
		}
		if math.IsNaN(norm) || math.IsInf(norm, 0) {
			return Result{}, r.fail(it, x, res, "non-finite residual", nil)
		}
		if it >= n.MaxIter {
			return Result{}, r.fail(it, x, res, "iteration limit reached", nil)
		}

		jac, err := r.jacobian(x, res)
		if err != nil {
			if r.infeasible(err) {
				return Result{}, r.fail(it, x, res, "jacobian probe infeasible", err)
			}
			return Result{}, r.fail(it, x, res, "residual evaluation failed", err)
		}
		rhs := mat.NewVecDense(dim, nil)
		rhs.ScaleVec(-1, mat.NewVecDense(dim, append([]float64(nil), res...)))
		var dx mat.VecDense
		if err := dx.SolveVec(jac, rhs); err != nil {
			cond, ok := err.(mat.Condition)
			if !ok || math.IsInf(float64(cond), 1) || !finite(dx.RawVector().Data) {
				return Result{}, r.fail(it, x, res, "singular jacobian", err)
			}
		}

		var lastErr error
		step := dx.RawVector().Data
		xNext, resNext := []float64(nil), []float64(nil)
		for lambda := 1.0; lambda >= n.MinDamping; lambda /= 2 {
			trial := make([]float64, dim)
			floats.AddScaledTo(trial, x, lambda, step)
			n.clamp(trial)
			rt, err := r.eval(trial)
			if err != nil {
				if !r.infeasible(err) {
					return Result{}, r.fail(it, x, res, "residual evaluation failed", err)
				}
				lastErr = err
				continue
			}
			xNext, resNext, damping = trial, rt, lambda
			if floats.Norm(rt, math.Inf(1)) < norm {
				break
			}
		}
		if xNext == nil {
			return Result{}, r.fail(it, x, res, "no feasible step", lastErr)
		}
		x, res = xNext, resNext
	}
}

func (r *run) jacobian(x, res []float64) (*mat.Dense, error) {
	dim := len(x)
	jac := mat.NewDense(dim, dim, nil)
	for j := 0; j < dim; j++ {
		h := r.n.RelStep * math.Max(math.Abs(x[j]), 1)
		xp := append([]float64(nil), x...)
		xp[j] += h
		if j < len(r.n.Upper) && xp[j] > r.n.Upper[j] {
			h = -h
			xp[j] = x[j] + h
		}
		rp, err := r.eval(xp)
		if err != nil && r.infeasible(err) {
			// 前向越界时改用后向差分
			h = -h
			xp[j] = x[j] + h
			rp, err = r.eval(xp)
		}
		if err != nil {
			return nil, err
		}
		d := xp[j] - x[j]
		for i := 0; i < dim; i++ {
			jac.Set(i, j, (rp[i]-res[i])/d)
		}
	}
	return jac, nil
}

func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
