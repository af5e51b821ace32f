package calendar

import (
	"math"
	"testing"

	"github.com/huangjq/lunisolar/ephemeris"
	"github.com/huangjq/lunisolar/localdt"
	"github.com/huangjq/lunisolar/timescale"
	"github.com/huangjq/lunisolar/vecmat"
	"github.com/huangjq/lunisolar/yearengine"
)

// linearSkyHandle mirrors yearengine's test fixture: Sun and Moon at
// constant ecliptic angular rates, calibrated so a synthetic vernal
// equinox and new moon fall near where the root solver's seeds expect
// them.
type linearSkyHandle struct {
	sunOmega, moonOmega   float64
	sunEpochJD, sunPhase0 float64
	moonEpochJD           float64
}

func (h linearSkyHandle) State(target, center ephemeris.Body, jdTDB float64) (vecmat.Vec3, vecmat.Vec3, error) {
	if target == ephemeris.Earth {
		return vecmat.Vec3{}, vecmat.Vec3{}, nil
	}
	var lon, omega, r float64
	switch target {
	case ephemeris.Sun:
		lon = h.sunPhase0 + h.sunOmega*(jdTDB-h.sunEpochJD)
		omega = h.sunOmega
		r = 1.0
	case ephemeris.Moon:
		lon = h.sunPhase0 + h.sunOmega*(h.moonEpochJD-h.sunEpochJD) + h.moonOmega*(jdTDB-h.moonEpochJD)
		omega = h.moonOmega
		r = 0.00257
	default:
		return vecmat.Vec3{}, vecmat.Vec3{}, nil
	}
	pos := vecmat.Vec3{X: r * math.Cos(lon), Y: r * math.Sin(lon), Z: 0}
	vel := vecmat.Vec3{X: -r * omega * math.Sin(lon), Y: r * omega * math.Cos(lon), Z: 0}
	return pos, vel, nil
}

func newCalibratedFixture(year int) linearSkyHandle {
	equinoxSeed := timescale.UTCToTT(localdt.FromLocal(year, 3, 20, 0, 0, 0).ToUTCJD())
	sunOmega := 2 * math.Pi / 365.2422
	moonOmega := sunOmega + 2*math.Pi/yearengine.SynodicMonthDays
	newMoonSeed := timescale.UTCToTT(localdt.FromLocal(year-1, 11, 7, 0, 0, 0).ToUTCJD()) - 45.0 + yearengine.SynodicMonthDays*3
	return linearSkyHandle{
		sunOmega: sunOmega, moonOmega: moonOmega,
		sunEpochJD: equinoxSeed, sunPhase0: 0,
		moonEpochJD: newMoonSeed,
	}
}

func TestYearProducesMonths(t *testing.T) {
	year := 2024
	fixture := newCalibratedFixture(year)
	factory := func() (ephemeris.Handle, error) { return fixture, nil }

	result, months, err := Year(year, factory)
	if err != nil {
		t.Fatalf("Year error: %v", err)
	}
	if result.Year != year {
		t.Errorf("result.Year = %d, want %d", result.Year, year)
	}
	if len(months) != 12 && len(months) != 13 {
		t.Fatalf("got %d months, want 12 or 13", len(months))
	}
	if months[0].Number != 11 {
		t.Errorf("first month number = %d, want 11", months[0].Number)
	}
}

func TestFindSolarTerm(t *testing.T) {
	year := 2024
	fixture := newCalibratedFixture(year)
	factory := func() (ephemeris.Handle, error) { return fixture, nil }

	dt, err := FindSolarTerm(yearengine.TermCode{Kind: yearengine.Zhong, Num: 2}, year, factory)
	if err != nil {
		t.Fatalf("FindSolarTerm error: %v", err)
	}
	if dt.Year != year || dt.Month != 3 {
		t.Errorf("vernal equinox resolved to %04d-%02d-%02d, want March %d", dt.Year, dt.Month, year, year)
	}
}

func TestFindLunarPhaseNewMoon(t *testing.T) {
	year := 2024
	fixture := newCalibratedFixture(year)
	factory := func() (ephemeris.Handle, error) { return fixture, nil }

	near := fixture.moonEpochJD
	dt, err := FindLunarPhase(yearengine.NewMoon, near, factory)
	if err != nil {
		t.Fatalf("FindLunarPhase error: %v", err)
	}
	if math.Abs(dt.ToUTCJD()-timescale.TDBToUTC(near)) > 2.0 {
		t.Errorf("resolved new moon far from seed: got utcJD=%f, seed utcJD=%f", dt.ToUTCJD(), timescale.TDBToUTC(near))
	}
}

func TestCivilYearViewOnlyIncludesMonthsStartingInYear(t *testing.T) {
	year := 2024
	factory := func() (ephemeris.Handle, error) { return newCalibratedFixture(year + 1), nil }

	months, err := CivilYearView(year, factory)
	if err != nil {
		t.Fatalf("CivilYearView error: %v", err)
	}
	if len(months) == 0 {
		t.Fatal("expected at least one month in the civil year view")
	}
	for _, m := range months {
		startYear := localdt.FromUTCJD(timescale.TDBToUTC(m.StartJD)).Year
		if startYear != year {
			t.Errorf("month %+v starts in %d, want %d", m, startYear, year)
		}
	}
	for i := 1; i < len(months); i++ {
		if months[i].StartJD <= months[i-1].StartJD {
			t.Errorf("months not in increasing StartJD order at index %d", i)
		}
	}
}

func TestFindLunarPhaseFullMoon(t *testing.T) {
	year := 2024
	fixture := newCalibratedFixture(year)
	factory := func() (ephemeris.Handle, error) { return fixture, nil }

	near := fixture.moonEpochJD
	dt, err := FindLunarPhase(yearengine.FullMoon, near, factory)
	if err != nil {
		t.Fatalf("FindLunarPhase error: %v", err)
	}
	gotUTCJD := dt.ToUTCJD()
	seedUTCJD := timescale.TDBToUTC(near)
	if gotUTCJD <= seedUTCJD || gotUTCJD-seedUTCJD > yearengine.SynodicMonthDays {
		t.Errorf("full moon %f not within one synodic month after new moon seed %f", gotUTCJD, seedUTCJD)
	}
}
