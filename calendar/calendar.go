// Package calendar is the module's public entry point: it wires the
// year engine (C8) and the lunar-month synthesizer (C9) together and
// exposes the handful of operations an external collaborator (a CLI,
// a file-format emitter, a long-running service) actually needs --
// a full year's terms/phases/months, single-event lookups for a solar
// term or lunar phase, and raw batch access to the root solver for
// advanced callers. Output formatting, locale strings, and file I/O
// are deliberately left to those collaborators.
package calendar

import (
	"sort"

	"github.com/huangjq/lunisolar/batch"
	"github.com/huangjq/lunisolar/calerr"
	"github.com/huangjq/lunisolar/localdt"
	"github.com/huangjq/lunisolar/lunarmonth"
	"github.com/huangjq/lunisolar/timescale"
	"github.com/huangjq/lunisolar/yearengine"
)

// Year runs the full C8+C9 pipeline for civil year year: it resolves
// every solar term and lunation phase the lunar-month synthesizer needs
// and returns both the raw YearResult and the resulting numbered,
// leap-aware lunar months.
func Year(year int, newHandle batch.HandleFactory) (yearengine.YearResult, []lunarmonth.LunarMonth, error) {
	result, err := yearengine.Compute(year, newHandle)
	if err != nil {
		return yearengine.YearResult{}, nil, err
	}
	months, err := lunarmonth.Synthesize(result)
	if err != nil {
		return yearengine.YearResult{}, nil, err
	}
	return result, months, nil
}

// FindSolarTerm solves for a single named solar term in civil year year,
// seeded from its conventional civil month, and returns the resolved
// instant as a UTC+8 civil LocalDT.
func FindSolarTerm(code yearengine.TermCode, year int, newHandle batch.HandleFactory) (localdt.LocalDT, error) {
	job := batch.JobSpec{
		Idx:       0,
		Kind:      "solar:" + code.String(),
		Target:    code.TargetLongitudeRad(),
		JDInitial: yearengine.SeedTDBJD(year, code.SeedMonth()),
		EpsDays:   1e-8,
		MaxIter:   50,
	}
	results := batch.RunAll([]batch.JobSpec{job}, newHandle, yearengine.BuildEval)
	r := results[0]
	if r.Err != nil {
		if calerr.Is(r.Err, calerr.EphemerisUnavailable) {
			return localdt.LocalDT{}, r.Err
		}
		return localdt.LocalDT{}, calerr.Wrap(calerr.DidNotConverge, r.Err,
			"calendar: solar term "+code.String()+" did not converge")
	}
	return localdt.FromUTCJD(timescale.TDBToUTC(r.Value)), nil
}

// FindLunarPhase searches for the requested lunar phase in the synodic
// month containing or starting nearest to nearJDTDB: it first locates
// that lunation's new moon, then (unless new moon was requested) solves
// for the target phase from that anchor.
func FindLunarPhase(phase yearengine.PhaseKind, nearJDTDB float64, newHandle batch.HandleFactory) (localdt.LocalDT, error) {
	anchorJob := batch.JobSpec{
		Idx: 0, Kind: "lunar:0:new",
		Target: yearengine.PhaseTargetElongation(yearengine.NewMoon),
		JDInitial: nearJDTDB, EpsDays: 1e-8, MaxIter: 50,
	}
	anchorResults := batch.RunAll([]batch.JobSpec{anchorJob}, newHandle, yearengine.BuildEval)
	if anchorResults[0].Err != nil {
		return localdt.LocalDT{}, annotate(anchorResults[0].Err, "anchor new moon")
	}
	lunationBase := anchorResults[0].Value
	if phase == yearengine.NewMoon {
		return localdt.FromUTCJD(timescale.TDBToUTC(lunationBase)), nil
	}

	job := batch.JobSpec{
		Idx: 0, Kind: "lunar:0:" + phase.String(),
		Target:    yearengine.PhaseTargetElongation(phase),
		JDInitial: lunationBase + yearengine.PhaseSeedOffsetDays(phase),
		EpsDays:   1e-8,
		MaxIter:   50,
	}
	results := batch.RunAll([]batch.JobSpec{job}, newHandle, yearengine.BuildEval)
	if results[0].Err != nil {
		return localdt.LocalDT{}, annotate(results[0].Err, phase.String())
	}
	return localdt.FromUTCJD(timescale.TDBToUTC(results[0].Value)), nil
}

func annotate(err error, label string) error {
	if calerr.Is(err, calerr.EphemerisUnavailable) {
		return err
	}
	return calerr.Wrap(calerr.DidNotConverge, err, "calendar: lunar phase "+label+" did not converge")
}

// SolveRoots exposes the batch root orchestrator directly, for advanced
// callers that want to plan and run their own RootTasks rather than go
// through Year/FindSolarTerm/FindLunarPhase.
func SolveRoots(tasks []batch.JobSpec, newHandle batch.HandleFactory) []batch.JobResult {
	return batch.RunAll(tasks, newHandle, yearengine.BuildEval)
}

// LunarYearView returns the complete lunar year anchored on year's pair of
// winter solstices (the new moon opening month 11 of year-1 through, but
// excluding, the new moon opening month 11 of year): 12 months, or 13 in a
// leap year. This is simply Year's month list; it is named separately
// because CivilYearView below needs to distinguish "the lunar year
// anchored at Y" from "the months whose start falls in civil year Y".
func LunarYearView(year int, newHandle batch.HandleFactory) ([]lunarmonth.LunarMonth, error) {
	_, months, err := Year(year, newHandle)
	return months, err
}

// CivilYearView returns only the lunar months whose opening new moon
// falls within civil year year, by unioning LunarYearView(year) with
// LunarYearView(year+1) and deduplicating by StartJD -- a lunar year
// anchored on year's winter solstices starts in roughly December of
// year-1 and ends in roughly December of year, so the months a civil
// calendar page for year actually displays are spread across two
// adjacent lunar years.
func CivilYearView(year int, newHandle batch.HandleFactory) ([]lunarmonth.LunarMonth, error) {
	a, err := LunarYearView(year, newHandle)
	if err != nil {
		return nil, err
	}
	b, err := LunarYearView(year+1, newHandle)
	if err != nil {
		return nil, err
	}

	seen := make(map[float64]bool, len(a)+len(b))
	var out []lunarmonth.LunarMonth
	for _, m := range append(append([]lunarmonth.LunarMonth{}, a...), b...) {
		if seen[m.StartJD] {
			continue
		}
		seen[m.StartJD] = true
		startYear := localdt.FromUTCJD(timescale.TDBToUTC(m.StartJD)).Year
		if startYear == year {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartJD < out[j].StartJD })
	return out, nil
}
