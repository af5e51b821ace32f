package localdt

import (
	"math"
	"testing"
)

func TestFromLocalRoundTrip(t *testing.T) {
	l := FromLocal(2024, 6, 15, 13, 30, 0)
	back := FromUTCJD(l.UTCJD)
	if back.Year != l.Year || back.Month != l.Month || back.Day != l.Day ||
		back.Hour != l.Hour || back.Minute != l.Minute {
		t.Errorf("round trip mismatch: %+v vs %+v", l, back)
	}
}

func TestUTC8Offset(t *testing.T) {
	l := FromLocal(2024, 1, 1, 8, 0, 0)
	// 2024-01-01 08:00 local (UTC+8) is 2024-01-01 00:00 UTC.
	utcLocal := FromLocal(2024, 1, 1, 0, 0, 0)
	if math.Abs(l.UTCJD-(utcLocal.UTCJD+UTC8Day)) > 1e-9 {
		t.Errorf("UTC8Day offset not applied consistently")
	}
}

func TestGreg2JDKnownEpoch(t *testing.T) {
	l := FromLocal(2000, 1, 1, 12, 0, 0)
	jdLocal := l.UTCJD + UTC8Day
	if math.Abs(jdLocal-2451545.0) > 1e-9 {
		t.Errorf("2000-01-01 12:00 local JD = %.9f, want 2451545.0", jdLocal)
	}
}

func TestShiftDays(t *testing.T) {
	l := FromLocal(2024, 3, 1, 0, 0, 0)
	shifted := l.ShiftDays(31.0)
	if shifted.Month != 4 || shifted.Day != 1 {
		t.Errorf("ShiftDays(31) from 2024-03-01 = %04d-%02d-%02d, want 2024-04-01",
			shifted.Year, shifted.Month, shifted.Day)
	}
}

func TestOrdering(t *testing.T) {
	a := FromLocal(2024, 1, 1, 0, 0, 0)
	b := FromLocal(2024, 1, 2, 0, 0, 0)
	if !a.Before(b) || !b.After(a) {
		t.Error("ordering comparisons failed")
	}
}

func TestCivilDaySameDayDifferentTimes(t *testing.T) {
	a := FromLocal(2024, 5, 10, 0, 30, 0)
	b := FromLocal(2024, 5, 10, 23, 30, 0)
	if a.CivilDay() != b.CivilDay() {
		t.Errorf("expected same civil day, got %d vs %d", a.CivilDay(), b.CivilDay())
	}
	c := FromLocal(2024, 5, 11, 0, 30, 0)
	if a.CivilDay() == c.CivilDay() {
		t.Error("expected different civil day across midnight boundary")
	}
}

func TestRoundingCascade(t *testing.T) {
	// A JD that lands exactly at a day boundary after UTC8 shift should
	// not produce an hour=24 or second=60 artifact.
	l := FromUTCJD(FromLocal(2024, 12, 31, 23, 59, 59.9999).UTCJD)
	if l.Hour == 24 || l.Sec >= 60 {
		t.Errorf("rounding cascade left invalid fields: %+v", l)
	}
}
