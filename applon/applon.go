// Package applon implements the apparent geocentric ecliptic longitude
// engine (C4): the Sun's and Moon's light-time-propagated position is
// rotated through the frame-bias, precession, and nutation chain into
// the true ecliptic of date, from which the apparent longitude and its
// time derivative are extracted. An Engine memoizes the three
// expensive rotation products (precession, the fused obliquity-nutation
// product, and the full composed rotation) by exact Julian Date, so that
// evaluating the Sun and the Moon at the same epoch (as the lunar-phase
// residual does) builds the rotation chain once.
package applon

import (
	"math"

	"github.com/huangjq/lunisolar/coord"
	"github.com/huangjq/lunisolar/ephemeris"
	"github.com/huangjq/lunisolar/vecmat"
)

const twoPi = 2 * math.Pi

// LongitudeState is the apparent ecliptic longitude of a body (radians,
// normalized to [0, 2*pi)) and its time derivative (radians/day).
type LongitudeState struct {
	Lambda    float64
	LambdaDot float64
}

// Engine evaluates apparent geocentric ecliptic longitude against a
// single ephemeris.Handle. It is not safe for concurrent use: its
// rotation caches are a single-holder memo, matching the batch
// orchestrator's one-handle-per-worker model.
type Engine struct {
	handle ephemeris.Handle
	bias   vecmat.Mat3

	precOK    bool
	precJD    float64
	precCache vecmat.Mat3

	r1nOK    bool
	r1nJD    float64
	r1nCache vecmat.Mat3

	rotOK    bool
	rotJD    float64
	rotCache vecmat.Mat3
}

// NewEngine builds an Engine reading raw states from h.
func NewEngine(h ephemeris.Handle) *Engine {
	return &Engine{handle: h, bias: coord.BiasMatrix()}
}

func (e *Engine) precMat(jdTDB float64) vecmat.Mat3 {
	if e.precOK && e.precJD == jdTDB {
		return e.precCache
	}
	e.precCache = coord.PrecessionMatrix(jdTDB)
	e.precJD = jdTDB
	e.precOK = true
	return e.precCache
}

// r1EpsNut returns R1(eps) * N, the obliquity rotation fused with the
// nutation matrix, where eps = epsA + dEps is the true obliquity of
// date. Composing them here (rather than applying R1(eps) and N
// separately downstream) matches the cached granularity the root
// solver's repeated re-evaluations exploit.
func (e *Engine) r1EpsNut(jdTDB float64) vecmat.Mat3 {
	if e.r1nOK && e.r1nJD == jdTDB {
		return e.r1nCache
	}
	epsA := coord.MeanObliquity(jdTDB)
	_, dEps := coord.NutationAngles(jdTDB)
	eps := epsA + dEps
	n := coord.NutationMatrix(jdTDB)
	e.r1nCache = vecmat.R1(eps).Mul(n)
	e.r1nJD = jdTDB
	e.r1nOK = true
	return e.r1nCache
}

// rotMat returns the full ICRS -> true-ecliptic-of-date rotation,
// R1(eps)*N * P * B.
func (e *Engine) rotMat(jdTDB float64) vecmat.Mat3 {
	if e.rotOK && e.rotJD == jdTDB {
		return e.rotCache
	}
	r1n := e.r1EpsNut(jdTDB)
	p := e.precMat(jdTDB)
	e.rotCache = r1n.Mul(p).Mul(e.bias)
	e.rotJD = jdTDB
	e.rotOK = true
	return e.rotCache
}

// longitudeOf computes the apparent ecliptic longitude (and its time
// derivative) of target at jdTDB, using the propagated (light-time only,
// unaberrated) geocentric state.
func (e *Engine) longitudeOf(target ephemeris.Body, jdTDB float64) (LongitudeState, error) {
	st, err := coord.Propagate(e.handle, target, jdTDB, 3)
	if err != nil {
		return LongitudeState{}, err
	}
	r := e.rotMat(jdTDB)
	xec := r.MulVec(st.Pos)
	lam := math.Atan2(xec.Y, xec.X)
	if lam < 0 {
		lam += twoPi
	}
	xecDot := r.MulVec(st.Vel)
	denom := xec.X*xec.X + xec.Y*xec.Y
	var lamDot float64
	if denom != 0 {
		lamDot = (xec.X*xecDot.Y - xec.Y*xecDot.X) / denom
	}
	return LongitudeState{Lambda: lam, LambdaDot: lamDot}, nil
}

// SunLongitude returns the Sun's apparent geocentric ecliptic longitude
// and its rate of change at jdTDB.
func (e *Engine) SunLongitude(jdTDB float64) (LongitudeState, error) {
	return e.longitudeOf(ephemeris.Sun, jdTDB)
}

// MoonLongitude returns the Moon's apparent geocentric ecliptic
// longitude and its rate of change at jdTDB.
func (e *Engine) MoonLongitude(jdTDB float64) (LongitudeState, error) {
	return e.longitudeOf(ephemeris.Moon, jdTDB)
}

// NormAngle wraps an angle in radians into [0, 2*pi).
func NormAngle(rad float64) float64 {
	rad = math.Mod(rad, twoPi)
	if rad < 0 {
		rad += twoPi
	}
	return rad
}
