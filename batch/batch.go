// Package batch implements the batch root-finding orchestrator (C7):
// given a list of root-finding jobs, it fans them out across a bounded
// worker pool (one ephemeris handle per worker, matching the
// ephemeris.Handle single-holder contract), isolates per-task failures
// from the rest of the batch, and returns results in the original job
// order. A single job is short-circuited to run inline. It also
// implements the TSV wire format used when a worker is a separate
// subprocess rather than a goroutine.
package batch

import (
	"bufio"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/huangjq/lunisolar/calerr"
	"github.com/huangjq/lunisolar/ephemeris"
	"github.com/huangjq/lunisolar/rootsolve"
)

// JobSpec is a single root-finding request, carrying enough information
// for a worker to build its own rootsolve.Evaluator once it has opened
// an ephemeris handle.
type JobSpec struct {
	Idx       int
	Kind      string
	Target    float64
	JDInitial float64
	EpsDays   float64
	MaxIter   int
}

// JobResult is the outcome of one JobSpec, indexed the same way.
type JobResult struct {
	Idx   int
	Value float64
	Err   error
}

// EvalBuilder constructs the residual/derivative function for a job,
// given a handle to evaluate ephemeris states against.
type EvalBuilder func(h ephemeris.Handle, job JobSpec) rootsolve.Evaluator

// HandleFactory opens a fresh ephemeris handle for a worker. Each
// worker owns exactly one handle for its lifetime.
type HandleFactory func() (ephemeris.Handle, error)

// RunAll solves every job in jobs, sharding work across up to
// min(runtime.NumCPU(), len(jobs), 8) workers. A single job is solved
// inline without spawning a worker. If opening any worker's ephemeris
// handle fails, RunAll falls back to running the entire batch serially
// on one handle opened in the caller; a failure from that serial
// attempt is returned as a single EphemerisUnavailable error applied to
// every job.
func RunAll(jobs []JobSpec, newHandle HandleFactory, build EvalBuilder) []JobResult {
	results := make([]JobResult, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	if len(jobs) == 1 {
		h, err := newHandle()
		if err != nil {
			results[0] = JobResult{Idx: jobs[0].Idx, Err: ephemeris.Unavailable("batch: open handle", err)}
			return results
		}
		results[0] = solveOne(h, build, jobs[0])
		return results
	}

	workers := runtime.NumCPU()
	if workers > len(jobs) {
		workers = len(jobs)
	}
	if workers > 8 {
		workers = 8
	}
	if workers < 1 {
		workers = 1
	}

	handles := make([]ephemeris.Handle, workers)
	for i := range handles {
		h, err := newHandle()
		if err != nil {
			return runSerialFallback(jobs, newHandle, build)
		}
		handles[i] = h
	}

	var wg sync.WaitGroup
	jobCh := make(chan JobSpec)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(h ephemeris.Handle) {
			defer wg.Done()
			for job := range jobCh {
				results[job.Idx] = solveOneSafe(h, build, job)
			}
		}(handles[w])
	}
	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)
	wg.Wait()

	return results
}

// runSerialFallback solves every job on a single handle opened fresh in
// the caller, used when worker-handle setup fails partway through.
func runSerialFallback(jobs []JobSpec, newHandle HandleFactory, build EvalBuilder) []JobResult {
	results := make([]JobResult, len(jobs))
	h, err := newHandle()
	if err != nil {
		fatal := ephemeris.Unavailable("batch: serial fallback open handle", err)
		for i, j := range jobs {
			results[i] = JobResult{Idx: j.Idx, Err: fatal}
		}
		return results
	}
	for _, j := range jobs {
		results[j.Idx] = solveOneSafe(h, build, j)
	}
	return results
}

func solveOne(h ephemeris.Handle, build EvalBuilder, job JobSpec) JobResult {
	eval := build(h, job)
	res := rootsolve.Solve(rootsolve.Task{
		Kind:      job.Kind,
		Target:    job.Target,
		JDInitial: job.JDInitial,
		EpsDays:   job.EpsDays,
		MaxIter:   job.MaxIter,
		Eval:      eval,
	})
	return JobResult{Idx: job.Idx, Value: res.Value, Err: res.Err}
}

// solveOneSafe recovers from a panic in a single task (an internal
// invariant violation inside one root search) so it cannot take down
// the rest of the batch; it is reported as a DidNotConverge error for
// that task alone.
func solveOneSafe(h ephemeris.Handle, build EvalBuilder, job JobSpec) (result JobResult) {
	defer func() {
		if r := recover(); r != nil {
			result = JobResult{Idx: job.Idx, Err: calerr.New(calerr.DidNotConverge, fmt.Sprintf("task panic: %v", r))}
		}
	}()
	return solveOne(h, build, job)
}

// --- TSV wire format, for subprocess-based workers ---

// EncodeJob writes job as a single TSV line:
// idx\tkind\ttarget\tjd_initial\teps_days\tmax_iter
func EncodeJob(w io.Writer, job JobSpec) error {
	_, err := fmt.Fprintf(w, "%d\t%s\t%.17g\t%.17g\t%.17g\t%d\n",
		job.Idx, job.Kind, job.Target, job.JDInitial, job.EpsDays, job.MaxIter)
	return err
}

// DecodeJob parses a single TSV job line produced by EncodeJob.
func DecodeJob(line string) (JobSpec, error) {
	fields := strings.Split(strings.TrimRight(line, "\n"), "\t")
	if len(fields) != 6 {
		return JobSpec{}, calerr.New(calerr.InvalidInput, "batch: malformed job line: "+line)
	}
	idx, err := strconv.Atoi(fields[0])
	if err != nil {
		return JobSpec{}, calerr.Wrap(calerr.InvalidInput, err, "batch: job idx")
	}
	target, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return JobSpec{}, calerr.Wrap(calerr.InvalidInput, err, "batch: job target")
	}
	jdInitial, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return JobSpec{}, calerr.Wrap(calerr.InvalidInput, err, "batch: job jd_initial")
	}
	epsDays, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return JobSpec{}, calerr.Wrap(calerr.InvalidInput, err, "batch: job eps_days")
	}
	maxIter, err := strconv.Atoi(fields[5])
	if err != nil {
		return JobSpec{}, calerr.Wrap(calerr.InvalidInput, err, "batch: job max_iter")
	}
	return JobSpec{
		Idx: idx, Kind: fields[1], Target: target,
		JDInitial: jdInitial, EpsDays: epsDays, MaxIter: maxIter,
	}, nil
}

// scrubTSV strips tabs and newlines from an error message so it cannot
// corrupt the TSV result line's field boundaries.
func scrubTSV(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

// EncodeResult writes r as a single TSV line:
// idx\t"OK"\tvalue or idx\t"ERR"\tmsg
func EncodeResult(w io.Writer, r JobResult) error {
	if r.Err != nil {
		_, err := fmt.Fprintf(w, "%d\tERR\t%s\n", r.Idx, scrubTSV(r.Err.Error()))
		return err
	}
	_, err := fmt.Fprintf(w, "%d\tOK\t%.17g\n", r.Idx, r.Value)
	return err
}

// DecodeResult parses a single TSV result line produced by EncodeResult.
func DecodeResult(line string) (JobResult, error) {
	fields := strings.SplitN(strings.TrimRight(line, "\n"), "\t", 3)
	if len(fields) != 3 {
		return JobResult{}, calerr.New(calerr.InvalidInput, "batch: malformed result line: "+line)
	}
	idx, err := strconv.Atoi(fields[0])
	if err != nil {
		return JobResult{}, calerr.Wrap(calerr.InvalidInput, err, "batch: result idx")
	}
	switch fields[1] {
	case "OK":
		val, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return JobResult{}, calerr.Wrap(calerr.InvalidInput, err, "batch: result value")
		}
		return JobResult{Idx: idx, Value: val}, nil
	case "ERR":
		return JobResult{Idx: idx, Err: calerr.New(calerr.DidNotConverge, fields[2])}, nil
	default:
		return JobResult{}, calerr.New(calerr.InvalidInput, "batch: unknown result status: "+fields[1])
	}
}

// ReadResults reads newline-delimited TSV result lines from r until EOF.
func ReadResults(r io.Reader) ([]JobResult, error) {
	var out []JobResult
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		res, err := DecodeResult(line)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
