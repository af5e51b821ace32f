// Package lunarmonth implements the lunar-month synthesizer (C9): given
// a year's resolved solar terms and lunar phases, it applies the
// classical "no principal term" (无中气置闰) intercalation rule to
// enumerate, number, and name the lunar months spanning one winter
// solstice to the next, inserting a leap month where one is needed.
package lunarmonth

import (
	"sort"

	"golang.org/x/text/unicode/norm"

	"github.com/huangjq/lunisolar/calerr"
	"github.com/huangjq/lunisolar/localdt"
	"github.com/huangjq/lunisolar/timescale"
	"github.com/huangjq/lunisolar/yearengine"
)

// monthNames indexes 1..12 to the traditional month name; index 0 is
// unused.
var monthNames = [13]string{
	"", "正月", "二月", "三月", "四月", "五月", "六月",
	"七月", "八月", "九月", "十月", "冬月", "腊月",
}

// LunarMonth is one numbered (and possibly leap) lunar month: the new
// moon that opens it and the new moon that closes it (which opens the
// next month), together with its traditional number and name.
type LunarMonth struct {
	Number  int
	IsLeap  bool
	Name    string
	StartJD float64 // TDB JD of the opening new moon
	EndJD   float64 // TDB JD of the closing new moon
}

// displayName composes the leap prefix with the month's table name and
// normalizes the result to NFC: the table entries are already in
// composed form, but 闰 is prefixed by byte concatenation and a future
// locale's decomposed CJK input should not silently produce a label
// that looks identical but compares unequal.
func (m LunarMonth) displayName() string {
	if m.IsLeap {
		return norm.NFC.String("闰" + monthNames[m.Number])
	}
	return monthNames[m.Number]
}

// civilDay converts a TDB Julian Date to its UTC+8 civil day number, the
// granularity the same-civil-day intercalation tie-break operates on.
func civilDay(jdTDB float64) int {
	return localdt.FromUTCJD(timescale.TDBToUTC(jdTDB)).CivilDay()
}

// hasMajorTerm reports whether any zhongqi in terms falls within the
// half-open civil-day interval [start, end): a term landing on the same
// civil day as the month's closing new moon is treated as belonging to
// the NEXT month, not this one, per the documented same-civil-day
// tie-break.
func hasMajorTerm(terms []yearengine.SolarTerm, startJD, endJD float64) bool {
	startDay := civilDay(startJD)
	endDay := civilDay(endJD)
	for _, term := range terms {
		if term.Code.Kind != yearengine.Zhong {
			continue
		}
		d := civilDay(term.JD)
		if d >= startDay && d < endDay {
			return true
		}
	}
	return false
}

// Synthesize applies the no-principal-term intercalation rule to a
// year's resolved YearResult, returning the lunar months spanning the
// interval from the new moon opening the month containing year-1's
// winter solstice up to, but excluding, the month containing the current
// year's winter solstice.
func Synthesize(result yearengine.YearResult) ([]LunarMonth, error) {
	newMoons := collectNewMoons(result)
	if len(newMoons) < 2 {
		return nil, calerr.New(calerr.SparseNewMoonList,
			"lunarmonth: fewer than two new moons resolved for the year")
	}

	thisWinterSol, err := findZ11(result.SolarTerms)
	if err != nil {
		return nil, err
	}
	prevWinterSol := result.PriorWinterSol.JD

	i0, err := bracketIndex(newMoons, prevWinterSol)
	if err != nil {
		return nil, calerr.Wrap(calerr.SparseNewMoonList, err,
			"lunarmonth: no new-moon boundary brackets the prior winter solstice")
	}
	// i1 is the index of the new moon that OPENS the month containing
	// this year's winter solstice -- i.e. the new moon that will be
	// numbered month 11 of the *next* cycle. That month itself is not
	// part of this year's output: the synthesized span runs from the
	// new moon opening month 11 of year-1 up to (excluding) it.
	i1, err := bracketIndex(newMoons, thisWinterSol)
	if err != nil {
		return nil, calerr.Wrap(calerr.SparseNewMoonList, err,
			"lunarmonth: no new-moon boundary brackets the current winter solstice")
	}
	if i1 <= i0 {
		return nil, calerr.New(calerr.SparseNewMoonList,
			"lunarmonth: no lunations resolved between the two winter solstices")
	}

	boundaries := newMoons[i0 : i1+1]
	lunationCount := len(boundaries) - 1
	if lunationCount != 12 && lunationCount != 13 {
		return nil, calerr.New(calerr.SparseNewMoonList,
			"lunarmonth: unexpected lunation count between winter solstices")
	}

	terms := append(append([]yearengine.SolarTerm{}, result.SolarTerms...), result.PriorWinterSol)

	leapIdx := -1
	if lunationCount == 13 {
		for i := 0; i < lunationCount; i++ {
			if !hasMajorTerm(terms, boundaries[i], boundaries[i+1]) {
				leapIdx = i
				break
			}
		}
		if leapIdx < 0 {
			return nil, calerr.New(calerr.LeapNotFound,
				"lunarmonth: 13 lunations found but no term-lacking interval to mark as leap")
		}
	}

	months := make([]LunarMonth, 0, lunationCount)
	number := 11
	prevNumber := 11
	for i := 0; i < lunationCount; i++ {
		isLeap := i == leapIdx
		n := number
		if isLeap {
			// A leap month repeats the immediately preceding month's
			// number (闰四月 follows 四月, not 五月); the following
			// month resumes the sequence as if the leap month were
			// not there.
			n = prevNumber
		}
		m := LunarMonth{
			Number:  n,
			IsLeap:  isLeap,
			StartJD: boundaries[i],
			EndJD:   boundaries[i+1],
		}
		m.Name = m.displayName()
		months = append(months, m)
		if !isLeap {
			prevNumber = n
			number = n + 1
			if number > 12 {
				number = 1
			}
		}
	}
	return months, nil
}

func collectNewMoons(result yearengine.YearResult) []float64 {
	var jds []float64
	for _, p := range result.MoonPhases {
		if p.Kind == yearengine.NewMoon {
			jds = append(jds, p.JD)
		}
	}
	sort.Float64s(jds)
	return jds
}

func findZ11(terms []yearengine.SolarTerm) (float64, error) {
	for _, t := range terms {
		if t.Code.Kind == yearengine.Zhong && t.Code.Num == 11 {
			return t.JD, nil
		}
	}
	return 0, calerr.New(calerr.UnknownCode, "lunarmonth: Z11 (winter solstice) not present in year's solar terms")
}

// bracketIndex returns the index i such that newMoons[i] <= target <
// newMoons[i+1].
func bracketIndex(newMoons []float64, target float64) (int, error) {
	for i := 0; i < len(newMoons)-1; i++ {
		if newMoons[i] <= target && target < newMoons[i+1] {
			return i, nil
		}
	}
	return 0, calerr.New(calerr.SparseNewMoonList, "lunarmonth: target time not bracketed by resolved new moons")
}
