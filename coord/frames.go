// Package coord implements the frame-transformation chain (C3) that
// carries a geocentric position from the kinematically non-rotating
// ICRS frame of the ephemeris into the true equator and equinox of
// date: frame bias, IAU 2006 precession, and a reduced nutation series
// carrying only its two dominant terms. It also implements the
// light-time and aberration corrections (C5) applied to a raw
// ephemeris state before that rotation.
package coord

import (
	"math"

	"github.com/huangjq/lunisolar/vecmat"
)

const asPerRad = 648000.0 / math.Pi

const j2000JD = 2451545.0

// daysPerCentury is the Julian century used by every IAU 2006 polynomial
// below: T = (jd_tdb - J2000) / daysPerCentury.
const daysPerCentury = 36525.0

// BiasMatrix is the fixed ICRS -> J2000 dynamical mean frame rotation.
// Unlike a small-angle reconstruction from the frame-bias angles, these
// are the matrix elements directly, matching the precision the
// ephemeris chain is evaluated at.
func BiasMatrix() vecmat.Mat3 {
	return vecmat.Mat3{
		{0.9999999999999942, -7.078279744199198e-8, 8.056148940257979e-8},
		{7.078279477857338e-8, 0.9999999999999969, 3.306041454222136e-8},
		{-8.056149173973727e-8, -3.306040883980552e-8, 0.9999999999999962},
	}
}

// PrecessionMatrix returns the IAU 2006 precession matrix carrying a
// J2000 mean-equator vector to the mean equator and equinox of the date
// corresponding to jdTDB.
func PrecessionMatrix(jdTDB float64) vecmat.Mat3 {
	t := (jdTDB - j2000JD) / daysPerCentury

	psiA := polyArcsec(t, 5038.481507, -1.0790069, -0.00114045, 0.000132851, -0.0000000951)
	omegaA := polyArcsec(t, -0.025754, 0.0512623, -0.00772503, -0.000000467, 0.0000000337) + 84381.406
	chiA := polyArcsec(t, 10.556403, -2.3814292, -0.00121197, 0.000170663, -0.0000000560)
	eps0 := 84381.406 / asPerRad

	psiA /= asPerRad
	omegaA /= asPerRad
	chiA /= asPerRad

	return vecmat.R3(chiA).Mul(vecmat.R1(-omegaA)).Mul(vecmat.R3(-psiA)).Mul(vecmat.R1(eps0))
}

// polyArcsec evaluates a polynomial in t whose coefficients (c1..c5, the
// constant term is passed separately by callers that need one) are given
// in arcseconds per power of the Julian century.
func polyArcsec(t, c1, c2, c3, c4, c5 float64) float64 {
	return t * (c1 + t*(c2+t*(c3+t*(c4+t*c5))))
}

// MeanObliquity returns the IAU 2006 mean obliquity of the ecliptic of
// date, in radians.
func MeanObliquity(jdTDB float64) float64 {
	t := (jdTDB - j2000JD) / daysPerCentury
	as := 84381.406 + t*(-46.836769+t*(-0.0001831+t*(0.00200340+t*(-0.000000576+t*-0.0000000434))))
	return as / asPerRad
}

// NutationAngles returns the nutation in longitude (dPsi) and obliquity
// (dEps), in radians, keeping only the two dominant terms of the
// IAU 2000A series (the Om and 2F-2D+2Om arguments). This is the
// documented minimum-accuracy series the downstream root solver needs;
// it omits the remaining ~1365 smaller terms of the full series.
func NutationAngles(jdTDB float64) (dPsi, dEps float64) {
	t := (jdTDB - j2000JD) / daysPerCentury
	const d2r = math.Pi / 180.0

	f := math.Mod(335779.526232+t*(1739527262.8478+t*(-12.7512+t*(-0.001037+t*0.00000417))), 1296000.0) / 3600.0 * d2r
	d := math.Mod(1072260.703692+t*(1602961601.2090+t*(-6.3706+t*(0.006593+t*-0.00003169))), 1296000.0) / 3600.0 * d2r
	om := math.Mod(450160.398036+t*(-6962890.5431+t*(7.4722+t*(0.007702+t*-0.00005939))), 1296000.0) / 3600.0 * d2r

	arg2 := 2*f - 2*d + 2*om

	dPsi = (-17.20642418*math.Sin(om) + 0.003386*math.Cos(om) -
		1.31709122*math.Sin(arg2) - 0.0013696*math.Cos(arg2)) / asPerRad
	dEps = (0.0015377*math.Sin(om) + 9.2052331*math.Cos(om) -
		0.0004587*math.Sin(arg2) + 0.5730336*math.Cos(arg2)) / asPerRad
	return dPsi, dEps
}

// NutationMatrix returns the nutation matrix N = R1(-eps) R3(-dPsi)
// R1(epsA), carrying a mean-of-date vector to the true equator and
// equinox of date.
func NutationMatrix(jdTDB float64) vecmat.Mat3 {
	dPsi, dEps := NutationAngles(jdTDB)
	epsA := MeanObliquity(jdTDB)
	eps := epsA + dEps
	return vecmat.R1(-eps).Mul(vecmat.R3(-dPsi)).Mul(vecmat.R1(epsA))
}
