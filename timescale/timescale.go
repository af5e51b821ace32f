// Package timescale converts between the Julian Date representations of
// the time scales the ephemeris chain uses: civil UTC, Terrestrial Time
// (TT), the UT1 rotational timescale, and Barycentric Dynamical Time
// (TDB). Ephemeris lookups are keyed on TDB; civil calendars and wall
// clocks are UTC; Earth-orientation quantities want UT1.
//
// Leap seconds are resolved from a fixed table valid 1972-01-01 through
// 2017-01-01. Outside that span, and outside the well-determined
// 1970-2026 window generally, TT-UT1 falls back to the Espenak/Morrison
// long-term delta-T polynomial used by NASA's eclipse predictions.
package timescale

import (
	"math"
	"time"
)

// SecPerDay is the number of SI seconds in a day.
const SecPerDay = 86400.0

const j2000JD = 2451545.0

// leapEntry pairs a UTC Julian Date threshold with the TAI-UTC offset (in
// whole seconds) effective from that date onward.
type leapEntry struct {
	jd    float64
	leaps float64
}

// leapTable lists every leap second inserted from 1972-01-01 (the start
// of the current UTC leap-second regime) through 2017-01-01, the last
// leap second as of this table's construction.
var leapTable = []leapEntry{
	{2441317.5, 10},
	{2441499.5, 11},
	{2441683.5, 12},
	{2442048.5, 13},
	{2442413.5, 14},
	{2442778.5, 15},
	{2443144.5, 16},
	{2443509.5, 17},
	{2443874.5, 18},
	{2444239.5, 19},
	{2444786.5, 20},
	{2445151.5, 21},
	{2445516.5, 22},
	{2446247.5, 23},
	{2447161.5, 24},
	{2447892.5, 25},
	{2448257.5, 26},
	{2448804.5, 27},
	{2449169.5, 28},
	{2449534.5, 29},
	{2450083.5, 30},
	{2450630.5, 31},
	{2451179.5, 32},
	{2453736.5, 33},
	{2454832.5, 34},
	{2456109.5, 35},
	{2457204.5, 36},
	{2457754.5, 37},
}

// LeapSecondOffset returns TAI-UTC in seconds for the given UTC Julian
// Date. Dates before the table's first entry clamp to its initial value;
// dates after the last entry hold at the latest known offset.
func LeapSecondOffset(jdUTC float64) float64 {
	leaps := leapTable[0].leaps
	for _, e := range leapTable {
		if jdUTC >= e.jd {
			leaps = e.leaps
		} else {
			break
		}
	}
	return leaps
}

// delta53 is the Espenak/Morrison long-term delta-T polynomial (seconds),
// valid for years well outside the telescopic/atomic-clock record.
func delta53(year float64) float64 {
	t := (year - 1825.0) / 100.0
	base := -150.568 + 31.4115*t*t + 284.8436*math.Cos(2.0*math.Pi*(t+0.75)/14.0)
	corr := 0.1056 * (math.Pow(year/100.0-19.55, 2) - 0.49)
	return base + corr
}

// deltayr is delta53 without the secular correction term, used for the
// 1970-1972 bridge before the leap-second table begins.
func deltayr(year float64) float64 {
	t := (year - 1825.0) / 100.0
	return -150.568 + 31.4115*t*t + 284.8436*math.Cos(2.0*math.Pi*(t+0.75)/14.0)
}

// DeltaT returns an estimate of TT-UT1 in seconds for the given
// (approximate, Besselian-style) year. Inside the 1972-2026 window it is
// derived from the leap-second table (TT-TAI is the fixed 32.184 s
// offset); outside it, the long-term polynomial approximation is used.
func DeltaT(year float64) float64 {
	switch {
	case year < 1970.0 || year > 2026.0:
		return delta53(year)
	case year < 1972.0:
		return deltayr(year)
	default:
		jdApprox := j2000JD + (year-2000.0)*365.25
		return LeapSecondOffset(jdApprox) + 32.184
	}
}

// TimeToJDUTC converts a civil time.Time (any location; converted to UTC
// internally) to a UTC Julian Date.
func TimeToJDUTC(t time.Time) float64 {
	u := t.UTC()
	unixJD := 2440587.5
	secs := float64(u.Unix()) + float64(u.Nanosecond())/1e9
	return unixJD + secs/SecPerDay
}

// UTCToTT converts a UTC Julian Date to Terrestrial Time. Within the
// leap-second era, TT = UTC + (TAI-UTC) + 32.184s; outside it, the
// delta-T polynomial fallback is applied directly to the UTC/UT1
// difference, which is negligible at that level of approximation.
func UTCToTT(jdUTC float64) float64 {
	year := 2000.0 + (jdUTC-2451544.5)/365.2425

	switch {
	case year < 1970.0 || year > 2026.0:
		return jdUTC + delta53(year)/SecPerDay
	case year < 1972.0:
		return jdUTC + deltayr(year)/SecPerDay
	default:
		leaps := LeapSecondOffset(jdUTC)
		return jdUTC + (leaps+32.184)/SecPerDay
	}
}

// TTToUT1 converts Terrestrial Time to the UT1 rotational timescale using
// the DeltaT estimate for the corresponding epoch.
func TTToUT1(jdTT float64) float64 {
	year := 2000.0 + (jdTT-j2000JD)/365.25
	dt := DeltaT(year)
	return jdTT - dt/SecPerDay
}

// TDBMinusTT returns the periodic TDB-TT difference in seconds (Fairhead
// & Bretagnon approximation), never exceeding about 1.7 ms in amplitude.
func TDBMinusTT(jdTT float64) float64 {
	g := (357.53 + 0.9856003*(jdTT-j2000JD)) * math.Pi / 180.0
	return 0.001658 * math.Sin(g+0.0167*math.Sin(g))
}

// TTToUTC converts Terrestrial Time to UTC, inverting UTCToTT. Within
// the leap-second era the exact offset depends on the not-yet-known UTC
// Julian Date (the leap-second table is keyed on it), so the lookup is
// applied twice to converge, mirroring UTCToTT's construction.
func TTToUTC(jdTT float64) float64 {
	year := 2000.0 + (jdTT-2451544.5)/365.2425

	switch {
	case year < 1970.0 || year > 2026.0:
		return jdTT - delta53(year)/SecPerDay
	case year < 1972.0:
		return jdTT - deltayr(year)/SecPerDay
	default:
		jdTAI := jdTT - 32.184/SecPerDay
		jdUTC := jdTAI
		for i := 0; i < 2; i++ {
			leaps := LeapSecondOffset(jdUTC)
			jdUTC = jdTAI - leaps/SecPerDay
		}
		return jdUTC
	}
}

// TDBToUTC converts Barycentric Dynamical Time to UTC.
func TDBToUTC(jdTDB float64) float64 {
	return TTToUTC(TDBToTT(jdTDB))
}

// TDBToTT converts Barycentric Dynamical Time to Terrestrial Time. At the
// precision this module targets the two scales coincide; callers that
// need the sub-millisecond periodic term use TDBMinusTT directly. (The
// ephemeris reader applies its own local TDB-TT series when normalizing
// Chebyshev segment time, not this function.)
func TDBToTT(jdTDB float64) float64 {
	return jdTDB
}

// TTToTDB converts Terrestrial Time to Barycentric Dynamical Time. See
// TDBToTT.
func TTToTDB(jdTT float64) float64 {
	return jdTT
}
