package yearengine

import (
	"fmt"
	"math"
	"strings"

	"github.com/huangjq/lunisolar/applon"
	"github.com/huangjq/lunisolar/batch"
	"github.com/huangjq/lunisolar/calerr"
	"github.com/huangjq/lunisolar/ephemeris"
	"github.com/huangjq/lunisolar/localdt"
	"github.com/huangjq/lunisolar/rootsolve"
	"github.com/huangjq/lunisolar/timescale"
)

// SynodicMonthDays is the mean synodic month length, used to step
// between lunar-phase task seeds.
const SynodicMonthDays = 29.530588

// synodicSlots is the number of consecutive lunations seeded per year
// computation -- enough to comfortably span a 13-lunation leap year plus
// the bracketing months on either side.
const synodicSlots = 18

// PhaseKind is one of the four principal lunar phases tracked per
// lunation.
type PhaseKind int

const (
	NewMoon PhaseKind = iota
	FirstQuarter
	FullMoon
	LastQuarter
)

func (p PhaseKind) String() string {
	switch p {
	case NewMoon:
		return "new"
	case FirstQuarter:
		return "fstqtr"
	case FullMoon:
		return "full"
	case LastQuarter:
		return "lstqtr"
	default:
		return "?"
	}
}

// PhaseSeedOffsetDays and PhaseTargetElongation give, respectively, the
// initial-guess day offset from a lunation's anchor and the Sun-Moon
// elongation angle (radians) that root-finding targets.
func PhaseSeedOffsetDays(p PhaseKind) float64 {
	switch p {
	case NewMoon:
		return 0
	case FirstQuarter:
		return 7
	case FullMoon:
		return 15
	case LastQuarter:
		return 22
	}
	return 0
}

func PhaseTargetElongation(p PhaseKind) float64 {
	switch p {
	case NewMoon:
		return 0
	case FirstQuarter:
		return math.Pi / 2
	case FullMoon:
		return math.Pi
	case LastQuarter:
		return 3 * math.Pi / 2
	}
	return 0
}

// SolarTerm is one resolved solar-term crossing: the term's code and the
// TDB Julian Date at which the Sun's apparent geocentric ecliptic
// longitude reached its target value.
type SolarTerm struct {
	Code TermCode
	JD   float64
}

// MoonPhase is one resolved lunar-phase crossing within a seeded
// lunation slot.
type MoonPhase struct {
	Slot int
	Kind PhaseKind
	JD   float64
}

// YearResult collects every solar term and lunar phase the lunar-month
// synthesizer needs to enumerate year's months: the 24 terms of year
// plus the prior year's winter solstice anchor, and synodicSlots
// lunations' worth of phases seeded around that anchor.
type YearResult struct {
	Year            int
	SolarTerms      []SolarTerm // 24 terms of Year, chronological
	PriorWinterSol  SolarTerm   // Z11 of Year-1
	MoonPhases      []MoonPhase // synodicSlots*4 phases
}

const solarKindPrefix = "solar"
const lunarKindPrefix = "lunar"

// seedUTCJD builds a UTC-JD initial guess for the 15th of the given
// civil month in year (month may be 1..12; civil-year rollover for
// month==0 or 13 is handled by the caller).
func seedUTCJD(year, month int) float64 {
	return localdt.FromLocal(year, month, 15, 0, 0, 0).ToUTCJD()
}

func SeedTDBJD(year, month int) float64 {
	return timescale.UTCToTT(seedUTCJD(year, month))
}

// planSolarJobs builds the 25 solar-term tasks: the 24 terms of year,
// followed by Z11 (the winter solstice) of year-1, which anchors every
// lunar-month boundary computation.
func planSolarJobs(year int) ([]batch.JobSpec, []TermCode) {
	codes := AllTermCodes()
	jobs := make([]batch.JobSpec, 0, 25)
	labels := make([]TermCode, 0, 25)

	for i, c := range codes {
		jobs = append(jobs, batch.JobSpec{
			Idx:       i,
			Kind:      solarKindPrefix + ":" + c.String(),
			Target:    c.TargetLongitudeRad(),
			JDInitial: SeedTDBJD(year, c.SeedMonth()),
			EpsDays:   1e-8,
			MaxIter:   50,
		})
		labels = append(labels, c)
	}

	z11 := TermCode{Zhong, 11}
	jobs = append(jobs, batch.JobSpec{
		Idx:       len(jobs),
		Kind:      solarKindPrefix + ":" + z11.String() + ":prev",
		Target:    z11.TargetLongitudeRad(),
		JDInitial: SeedTDBJD(year-1, z11.SeedMonth()),
		EpsDays:   1e-8,
		MaxIter:   50,
	})
	labels = append(labels, z11)

	return jobs, labels
}

// planLunarJobs builds synodicSlots*4 lunar-phase tasks seeded from an
// anchor 45 days before year-1's (approximate) winter solstice.
func planLunarJobs(year int, startIdx int) []batch.JobSpec {
	anchorApprox := SeedTDBJD(year-1, 11) - 45.0

	jobs := make([]batch.JobSpec, 0, synodicSlots*4)
	idx := startIdx
	for slot := 0; slot < synodicSlots; slot++ {
		lunationBase := anchorApprox + float64(slot)*SynodicMonthDays
		for _, p := range []PhaseKind{NewMoon, FirstQuarter, FullMoon, LastQuarter} {
			jobs = append(jobs, batch.JobSpec{
				Idx:       idx,
				Kind:      fmt.Sprintf("%s:%d:%s", lunarKindPrefix, slot, p),
				Target:    PhaseTargetElongation(p),
				JDInitial: lunationBase + PhaseSeedOffsetDays(p),
				EpsDays:   1e-8,
				MaxIter:   50,
			})
			idx++
		}
	}
	return jobs
}

// BuildEval constructs the residual/derivative function for a job from
// its Kind tag: a solar-term residual is the Sun's longitude minus the
// term's target; a lunar-phase residual is the Moon-Sun elongation
// minus the phase's target elongation. Both are wrapped to [-pi, pi) so
// Newton's method sees a continuous function across the branch cut.
func BuildEval(h ephemeris.Handle, job batch.JobSpec) rootsolve.Evaluator {
	engine := applon.NewEngine(h)
	isSolar := strings.HasPrefix(job.Kind, solarKindPrefix)
	target := job.Target

	if isSolar {
		return func(jdTDB float64) (float64, float64, error) {
			s, err := engine.SunLongitude(jdTDB)
			if err != nil {
				return 0, 0, err
			}
			return rootsolve.WrapPi(s.Lambda - target), s.LambdaDot, nil
		}
	}
	return func(jdTDB float64) (float64, float64, error) {
		sun, err := engine.SunLongitude(jdTDB)
		if err != nil {
			return 0, 0, err
		}
		moon, err := engine.MoonLongitude(jdTDB)
		if err != nil {
			return 0, 0, err
		}
		elong := moon.Lambda - sun.Lambda
		return rootsolve.WrapPi(elong - target), moon.LambdaDot - sun.LambdaDot, nil
	}
}

// Compute runs the full C8 year engine: plans every solar-term and
// lunar-phase task year's lunar-month synthesis needs, solves them
// against newHandle (one handle opened per worker), and assembles a
// YearResult. An EphemerisUnavailable failure on any task is always
// fatal, since it means nothing downstream can proceed. Among
// DidNotConverge-class failures, only the prior year's Z11 (the winter
// solstice anchor every lunar-month boundary is reckoned from) is
// fatal -- promoted to a MissingRoot error -- because the synthesizer
// cannot bracket a single lunation without it. Every other failing
// solar-term or lunar-phase task is degraded: it is simply omitted from
// the result rather than aborting the year, since lunarmonth's
// consumers (hasMajorTerm, collectNewMoons) already tolerate a sparse
// term or phase list and fail their own way if too much is missing.
func Compute(year int, newHandle batch.HandleFactory) (YearResult, error) {
	solarJobs, codes := planSolarJobs(year)
	lunarJobs := planLunarJobs(year, len(solarJobs))

	all := append(solarJobs, lunarJobs...)
	results := batch.RunAll(all, newHandle, BuildEval)

	return assembleYearResult(year, codes, solarJobs, all, results)
}

// assembleYearResult applies the containment policy to a completed
// batch of solar-term and lunar-phase results, separated from Compute
// so the policy can be tested against crafted results without driving
// an actual root search.
func assembleYearResult(year int, codes []TermCode, solarJobs, all []batch.JobSpec, results []batch.JobResult) (YearResult, error) {
	result := YearResult{Year: year}

	z11Idx := len(codes) - 1
	for i, c := range codes {
		r := results[i]
		if r.Err != nil {
			if calerr.Is(r.Err, calerr.EphemerisUnavailable) {
				return YearResult{}, r.Err
			}
			if i == z11Idx {
				return YearResult{}, calerr.Wrap(calerr.MissingRoot, r.Err,
					"yearengine: prior-year winter solstice anchor did not converge")
			}
			continue
		}
		term := SolarTerm{Code: c, JD: r.Value}
		if i == z11Idx {
			result.PriorWinterSol = term
		} else {
			result.SolarTerms = append(result.SolarTerms, term)
		}
	}

	for i := len(solarJobs); i < len(all); i++ {
		r := results[i]
		if r.Err != nil {
			if calerr.Is(r.Err, calerr.EphemerisUnavailable) {
				return YearResult{}, r.Err
			}
			continue
		}
		slot, kind := parseLunarKind(all[i].Kind)
		result.MoonPhases = append(result.MoonPhases, MoonPhase{Slot: slot, Kind: kind, JD: r.Value})
	}

	return result, nil
}

func parseLunarKind(kind string) (slot int, phase PhaseKind) {
	parts := strings.SplitN(kind, ":", 3)
	if len(parts) != 3 {
		return 0, NewMoon
	}
	for _, c := range parts[1] {
		slot = slot*10 + int(c-'0')
	}
	switch parts[2] {
	case "new":
		phase = NewMoon
	case "fstqtr":
		phase = FirstQuarter
	case "full":
		phase = FullMoon
	case "lstqtr":
		phase = LastQuarter
	}
	return slot, phase
}
