package coord

import (
	"math"

	"github.com/huangjq/lunisolar/ephemeris"
	"github.com/huangjq/lunisolar/vecmat"
)

// CAUDay is the speed of light in AU per day, the unit system the
// ephemeris chain and root solver operate in throughout this module.
const CAUDay = 173.144632674

// lightTimeDays returns the light travel time, in days, for a vector of
// the given AU length.
func lightTimeDays(v vecmat.Vec3) float64 {
	return v.Norm() / CAUDay
}

// PropagatedState is the light-time-corrected geocentric state of a
// target body: its position and velocity evaluated at the retarded
// (light-departure) time, with no relativistic stellar-aberration
// correction applied. This is the variant the root solver's longitude
// residual is built on.
type PropagatedState struct {
	Pos, Vel   vecmat.Vec3
	RetardedJD float64
}

// Propagate iterates the light-time equation to a fixed point (at most
// maxIter iterations, converging when the retarded time changes by less
// than 1e-12 days) and returns the target's geocentric position and
// velocity evaluated at that retarded time.
func Propagate(h ephemeris.Handle, target ephemeris.Body, jdTDB float64, maxIter int) (PropagatedState, error) {
	if maxIter <= 0 {
		maxIter = 3
	}
	tr := jdTDB
	for i := 0; i < maxIter; i++ {
		xt, _, err := h.State(target, ephemeris.SSB, tr)
		if err != nil {
			return PropagatedState{}, ephemeris.Unavailable("propagate: target state", err)
		}
		xe, _, err := h.State(ephemeris.Earth, ephemeris.SSB, tr)
		if err != nil {
			return PropagatedState{}, ephemeris.Unavailable("propagate: earth state", err)
		}
		x := xt.Sub(xe)
		lt := lightTimeDays(x)
		trNew := jdTDB - lt
		if math.Abs(trNew-tr) < 1e-12 {
			tr = trNew
			break
		}
		tr = trNew
	}

	xt, vt, err := h.State(target, ephemeris.SSB, tr)
	if err != nil {
		return PropagatedState{}, ephemeris.Unavailable("propagate: final target state", err)
	}
	xe, ve, err := h.State(ephemeris.Earth, ephemeris.SSB, tr)
	if err != nil {
		return PropagatedState{}, ephemeris.Unavailable("propagate: final earth state", err)
	}
	return PropagatedState{Pos: xt.Sub(xe), Vel: vt.Sub(ve), RetardedJD: tr}, nil
}

// Aberrate applies the special-relativistic stellar-aberration
// correction to a propagated line-of-sight vector, given the observer's
// velocity (AU/day) at the time of observation. This is the "fully
// aberrated" alternative; the root solver's residual is built on
// Propagate's unaberrated result instead.
func Aberrate(lineOfSight, observerVel vecmat.Vec3) vecmat.Vec3 {
	dist := lineOfSight.Norm()
	if dist == 0 {
		return lineOfSight
	}
	n := lineOfSight.Scale(1.0 / dist)
	beta := observerVel.Scale(1.0 / CAUDay)
	betaNorm := beta.Norm()
	gammaInv := math.Sqrt(1.0 - betaNorm*betaNorm)
	nb := n.Dot(beta)

	num := n.Scale(gammaInv).Add(beta).Add(beta.Scale(nb / (1.0 + gammaInv)))
	napp := num.Scale(1.0 / (1.0 + nb))
	return napp.Scale(dist)
}

// FullyAberrated computes the target's apparent geocentric position with
// light-time propagation of the target and special-relativistic
// aberration from Earth's instantaneous (non-retarded) velocity at
// jdTDB.
func FullyAberrated(h ephemeris.Handle, target ephemeris.Body, jdTDB float64, maxIter int) (vecmat.Vec3, error) {
	if maxIter <= 0 {
		maxIter = 3
	}
	xe, ve, err := h.State(ephemeris.Earth, ephemeris.SSB, jdTDB)
	if err != nil {
		return vecmat.Vec3{}, ephemeris.Unavailable("fully aberrated: earth state", err)
	}

	tt := jdTDB
	var x vecmat.Vec3
	for i := 0; i < maxIter; i++ {
		xt, _, err := h.State(target, ephemeris.SSB, tt)
		if err != nil {
			return vecmat.Vec3{}, ephemeris.Unavailable("fully aberrated: target state", err)
		}
		x = xt.Sub(xe)
		lt := lightTimeDays(x)
		ttNew := jdTDB - lt
		if math.Abs(ttNew-tt) < 1e-12 {
			tt = ttNew
			break
		}
		tt = ttNew
	}

	return Aberrate(x, ve), nil
}
