package simulation

import (
	"math"
	"sync"
)

// besselZeroCache memoizes zeros across calls. Entries are write-once,
// keyed by (order, index), so concurrent readers need no extra locking.
var besselZeroCache sync.Map

type besselZeroKey struct {
	order int
	index int
}

// BesselZero returns the n-th positive zero of the Bessel function J_m.
// Zeros are computed by bracketing a sign change and bisecting; when no
// bracket is found the McMahon asymptotic estimate is used instead.
func BesselZero(m, n int) float64 {
	if m < 0 {
		m = -m
	}
	if n < 1 {
		n = 1
	}
	key := besselZeroKey{order: m, index: n}
	if v, ok := besselZeroCache.Load(key); ok {
		return v.(float64)
	}
	z, ok := besselZeroExact(m, n)
	if !ok {
		z = BesselZeroApprox(m, n)
	}
	besselZeroCache.Store(key, z)
	return z
}

// BesselZeroApprox is McMahon's asymptotic estimate of the n-th positive
// zero of J_m. It is a pure fallback, exported so tests can pin the
// approximation branch independently of the exact computation.
func BesselZeroApprox(m, n int) float64 {
	return (float64(n) + float64(m)/2.0 - 0.25) * math.Pi
}

// besselZeroExact scans J_m for its first n sign changes on x > 0 and
// refines the n-th by bisection. Reports false if the scan runs out of
// range before finding enough zeros.
func besselZeroExact(m, n int) (float64, bool) {
	const (
		step  = 0.05
		limit = 400.0
		tol   = 1e-12
	)

	// J_m(0) = 0 for m > 0; start past the trivial zero.
	x := 1e-6
	if m > 0 {
		x = 1e-3
	}
	prev := math.Jn(m, x)
	found := 0
	for x < limit {
		next := x + step
		cur := math.Jn(m, next)
		if prev == 0 {
			prev = cur
			x = next
			continue
		}
		if (prev < 0) != (cur < 0) {
			found++
			if found == n {
				lo, hi := x, next
				for hi-lo > tol {
					mid := 0.5 * (lo + hi)
					if (math.Jn(m, lo) < 0) != (math.Jn(m, mid) < 0) {
						hi = mid
					} else {
						lo = mid
					}
				}
				return 0.5 * (lo + hi), true
			}
		}
		prev = cur
		x = next
	}
	return 0, false
}
