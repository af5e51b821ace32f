// Package rootsolve implements the Newton-Raphson root finder (C6) the
// year engine uses to pin down exact solar-term and lunar-phase
// crossing times: given an initial guess and a residual function with
// its derivative, it damps and backtracks toward convergence, falling
// back to a bracket-and-bisect search if Newton's method fails to make
// progress.
package rootsolve

import (
	"math"

	"github.com/huangjq/lunisolar/calerr"
)

const (
	maxStepDays     = 3.0
	maxBacktracks   = 20
	bracketScanStep = 0.5
	maxBracketScan  = 3.0
	maxBisectIter   = 40
)

// Evaluator returns the residual value and its derivative with respect
// to the Julian Date at jdTDB. A residual of zero marks the sought
// crossing.
type Evaluator func(jdTDB float64) (value, deriv float64, err error)

// Task describes a single root-finding request: search for a zero of
// f, starting from jdInitial, accepting convergence once the Newton
// step shrinks below epsDays, within maxIter iterations.
type Task struct {
	Kind      string
	Target    float64
	JDInitial float64
	EpsDays   float64
	MaxIter   int
	Eval      Evaluator
}

// Result is the outcome of solving one Task.
type Result struct {
	Value float64
	Err   error
}

// Solve finds a root of t.Eval using damped Newton-Raphson, falling back
// to a bracket-then-bisect search if Newton iteration fails to converge
// or to find a usable bracket.
func Solve(t Task) Result {
	if t.MaxIter <= 0 {
		t.MaxIter = 50
	}
	if t.EpsDays <= 0 {
		t.EpsDays = 1e-8
	}

	jd, ok := newtonSearch(t)
	if ok {
		return Result{Value: jd}
	}

	res, err := bracketSearch(t, jd)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Value: res}
}

// newtonSearch runs damped Newton-Raphson from t.JDInitial. It returns
// (jd, true) on convergence, or (jd, false) if the iteration budget is
// exhausted, the derivative vanishes, or backtracking cannot find an
// improving step — all of which fall through to the bracket fallback,
// seeded from jd, the last iterate Newton actually reached (t.JDInitial
// if no iteration made progress).
func newtonSearch(t Task) (float64, bool) {
	jd := t.JDInitial
	val, deriv, err := t.Eval(jd)
	if err != nil {
		return jd, false
	}

	for iter := 0; iter < t.MaxIter; iter++ {
		if math.Abs(val) < 1e-12 {
			return jd, true
		}
		if deriv == 0 {
			return jd, false
		}

		step := val / deriv
		if step > maxStepDays {
			step = maxStepDays
		} else if step < -maxStepDays {
			step = -maxStepDays
		}

		candidate := jd - step
		candVal, candDeriv, err := t.Eval(candidate)
		if err != nil {
			return jd, false
		}

		backtracks := 0
		for math.Abs(candVal) > math.Abs(val) && backtracks < maxBacktracks {
			step /= 2.0
			candidate = jd - step
			candVal, candDeriv, err = t.Eval(candidate)
			if err != nil {
				return jd, false
			}
			backtracks++
		}
		if backtracks >= maxBacktracks && math.Abs(candVal) > math.Abs(val) {
			return jd, false
		}

		if math.Abs(step) < t.EpsDays {
			return candidate, true
		}

		jd, val, deriv = candidate, candVal, candDeriv
	}
	return jd, false
}

// bracketSearch scans outward from seed in bracketScanStep increments
// (up to maxBracketScan days in each direction) looking for a sign
// change in the residual, then bisects within that bracket. seed is the
// last iterate Newton reached, not necessarily t.JDInitial.
func bracketSearch(t Task, seed float64) (float64, error) {
	base, baseVal, err := evalSafe(t, seed)
	if err != nil {
		return 0, err
	}

	var lo, hi, loVal, hiVal float64
	found := false
	for d := bracketScanStep; d <= maxBracketScan; d += bracketScanStep {
		for _, sign := range [2]float64{1, -1} {
			cand := base + sign*d
			candVal, _, err := t.Eval(cand)
			if err != nil {
				continue
			}
			if (baseVal <= 0 && candVal >= 0) || (baseVal >= 0 && candVal <= 0) {
				lo, hi = base, cand
				loVal, hiVal = baseVal, candVal
				if lo > hi {
					lo, hi = hi, lo
					loVal, hiVal = hiVal, loVal
				}
				found = true
				break
			}
		}
		if found {
			break
		}
	}
	if !found {
		return 0, calerr.New(calerr.DidNotConverge,
			"rootsolve: no sign change found within bracket scan range")
	}

	for i := 0; i < maxBisectIter; i++ {
		mid := (lo + hi) / 2.0
		midVal, _, err := t.Eval(mid)
		if err != nil {
			return 0, calerr.Wrap(calerr.DidNotConverge, err, "rootsolve: bisection evaluation failed")
		}
		if math.Abs(midVal) < 1e-12 || (hi-lo) < t.EpsDays {
			return mid, nil
		}
		if (loVal <= 0 && midVal >= 0) || (loVal >= 0 && midVal <= 0) {
			hi, hiVal = mid, midVal
		} else {
			lo, loVal = mid, midVal
		}
	}
	return (lo + hi) / 2.0, nil
}

func evalSafe(t Task, jd float64) (float64, float64, error) {
	val, _, err := t.Eval(jd)
	if err != nil {
		return 0, 0, calerr.Wrap(calerr.DidNotConverge, err, "rootsolve: initial evaluation failed")
	}
	return jd, val, nil
}

// WrapPi wraps an angle difference (radians) into [-pi, pi), the form a
// longitude-minus-target residual should take so Newton's method sees a
// smooth function across the 0/2*pi branch cut.
func WrapPi(a float64) float64 {
	const pi = math.Pi
	return a - 2*pi*math.Floor((a+pi)/(2*pi))
}
