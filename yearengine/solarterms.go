// Package yearengine implements the year engine (C8): for a requested
// civil year it plans every solar-term and lunar-phase root-finding
// task the lunar-month synthesizer needs, submits them to the batch
// orchestrator, and collects the results into a YearResult.
package yearengine

import "math"

const deg2rad = math.Pi / 180.0

// TermKind distinguishes the two solar-term families: Jie (sectional,
// the twelve terms marking the start of a solar month) and Zhong
// (principal, the twelve mid-month terms the no-principal-term
// intercalation rule keys on).
type TermKind int

const (
	Jie TermKind = iota
	Zhong
)

// termDef is one of the 24 solar terms: its Chinese name, its target
// apparent solar ecliptic longitude in degrees, and the civil month it
// is conventionally associated with (used only to seed a Newton initial
// guess, never to determine calendar placement).
type termDef struct {
	name      string
	lonDeg    float64
	monthSeed int
}

// zhongqiDefs are the twelve principal terms, indexed so that
// zhongqiDefs[k-1] is Z(k) -- the zhongqi conventionally falling in
// civil month k. Z11 (冬至, the winter solstice) anchors every year
// boundary computation.
var zhongqiDefs = [12]termDef{
	{"雨水", 330, 1},
	{"春分", 0, 2},
	{"谷雨", 30, 3},
	{"小满", 60, 4},
	{"夏至", 90, 5},
	{"大暑", 120, 6},
	{"处暑", 150, 7},
	{"秋分", 180, 8},
	{"霜降", 210, 9},
	{"小雪", 240, 10},
	{"冬至", 270, 11},
	{"大寒", 300, 12},
}

// jieqiDefs are the twelve sectional terms, indexed so that
// jieqiDefs[k-1] is J(k) -- the jieqi conventionally opening civil
// month k.
var jieqiDefs = [12]termDef{
	{"立春", 315, 1},
	{"惊蛰", 345, 2},
	{"清明", 15, 3},
	{"立夏", 45, 4},
	{"芒种", 75, 5},
	{"小暑", 105, 6},
	{"立秋", 135, 7},
	{"白露", 165, 8},
	{"寒露", 195, 9},
	{"立冬", 225, 10},
	{"大雪", 255, 11},
	{"小寒", 285, 12},
}

// TermCode identifies one of the 24 solar terms: Zhong or Jie, paired
// with its 1-based index (1..12).
type TermCode struct {
	Kind TermKind
	Num  int
}

func (c TermCode) def() termDef {
	if c.Kind == Zhong {
		return zhongqiDefs[c.Num-1]
	}
	return jieqiDefs[c.Num-1]
}

// Name returns the term's Chinese name.
func (c TermCode) Name() string { return c.def().name }

// TargetLongitudeRad returns the term's target apparent solar ecliptic
// longitude, in radians, normalized to [0, 2*pi).
func (c TermCode) TargetLongitudeRad() float64 {
	lon := c.def().lonDeg * deg2rad
	if lon < 0 {
		lon += 2 * math.Pi
	}
	return lon
}

// SeedMonth returns the civil month this term is conventionally
// associated with, used only to build a Newton initial guess.
func (c TermCode) SeedMonth() int { return c.def().monthSeed }

// String renders the term code as "Z11" or "J3".
func (c TermCode) String() string {
	prefix := "J"
	if c.Kind == Zhong {
		prefix = "Z"
	}
	return prefix + itoa(c.Num)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := [2]byte{}
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits[i:])
}

// AllTermCodes returns all 24 solar-term codes for one calendar year, in
// the chronological order in which they occur (J1, Z1... no: jieqi and
// zhongqi alternate starting from J1/立春 through Z12/大寒, the
// traditional ordering of the solar year).
func AllTermCodes() []TermCode {
	codes := make([]TermCode, 0, 24)
	for k := 1; k <= 12; k++ {
		codes = append(codes, TermCode{Jie, k}, TermCode{Zhong, k})
	}
	return codes
}
