package dcf

import (
	"errors"
	"math"
)

// ErrIRRUndetermined means the series has no sign change, so no real root
// exists to find. ErrIRRDivergent means the root-finder failed: the
// derivative vanished or iteration did not converge within the cap. Callers
// surface both as an undetermined IRR; NPV and LCOC are unaffected.
var (
	ErrIRRUndetermined = errors.New("irr undetermined: cash flows have no sign change")
	ErrIRRDivergent    = errors.New("irr divergent: root-finder did not converge")
)

// IRRParams configures the Newton-Raphson root finder. Seed and clamp
// bounds are preserved as configuration so runs stay comparable across
// deployments.
type IRRParams struct {
	Seed          float64
	Tolerance     float64
	MaxIterations int
	ClampMin      float64
	ClampMax      float64
}

func DefaultIRRParams() IRRParams {
	return IRRParams{
		Seed:          0.10,
		Tolerance:     1e-5,
		MaxIterations: 50,
		ClampMin:      -0.99,
		ClampMax:      10.0,
	}
}

// Residual bound for a candidate root that converged onto a clamp bound:
// pinning there usually means the real root lies outside the search range,
// so the candidate only counts if the series actually discounts to ~zero.
const clampResidualTolerance = 1e-3

// IRR finds the rate at which the series discounts to zero, via
// Newton-Raphson. The rate is clamped to [ClampMin, ClampMax] after each
// step to keep the iteration out of invalid territory (divisors near zero,
// negative bases). A root outside the clamp range is reported as divergent,
// never as the boundary rate.
func IRR(flows []float64, params IRRParams) (float64, error) {
	if !hasSignChange(flows) {
		return 0, ErrIRRUndetermined
	}

	r := params.Seed
	for i := 0; i < params.MaxIterations; i++ {
		f, df := npvAndDerivative(flows, r)
		if df == 0 {
			return 0, ErrIRRDivergent
		}
		next := clamp(r-f/df, params.ClampMin, params.ClampMax)
		if math.Abs(next-r) < params.Tolerance {
			if next == params.ClampMin || next == params.ClampMax {
				if residual, _ := npvAndDerivative(flows, next); math.Abs(residual) > clampResidualTolerance {
					return 0, ErrIRRDivergent
				}
			}
			return next, nil
		}
		r = next
	}
	return 0, ErrIRRDivergent
}

// npvAndDerivative evaluates f(r) = sum cf_t/(1+r)^t and its derivative
// f'(r) = sum -t*cf_t/(1+r)^(t+1) in one pass.
func npvAndDerivative(flows []float64, r float64) (f, df float64) {
	for t, cf := range flows {
		ft := float64(t)
		f += cf / math.Pow(1+r, ft)
		df -= ft * cf / math.Pow(1+r, ft+1)
	}
	return f, df
}

func hasSignChange(flows []float64) bool {
	var pos, neg bool
	for _, cf := range flows {
		if cf > 0 {
			pos = true
		} else if cf < 0 {
			neg = true
		}
	}
	return pos && neg
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
