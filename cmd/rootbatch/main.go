// Command rootbatch is the subprocess-based batch worker C7's
// orchestrator can shell out to: it opens one ephemeris kernel, reads
// TSV-encoded RootTasks from stdin, and writes TSV-encoded results to
// stdout, one line per task, buffered and flushed once input ends. It is deliberately
// a separate binary rather than a hidden subcommand of some larger CLI
// -- the core this module implements never defines a CLI grammar (that
// is an external collaborator's job), but the worker process itself is
// squarely C7's concern.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/huangjq/lunisolar/batch"
	"github.com/huangjq/lunisolar/ephemeris"
	"github.com/huangjq/lunisolar/kernel"
	"github.com/huangjq/lunisolar/rootsolve"
	"github.com/huangjq/lunisolar/yearengine"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: rootbatch <kernel-path>  (reads TSV jobs on stdin, writes TSV results on stdout)")
		os.Exit(2)
	}

	h, err := kernel.Open(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "rootbatch:", err)
		os.Exit(1)
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		job, err := batch.DecodeJob(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, "rootbatch: skipping malformed job line:", err)
			continue
		}
		res := solveJob(h, job)
		if err := batch.EncodeResult(out, res); err != nil {
			fmt.Fprintln(os.Stderr, "rootbatch: writing result:", err)
			os.Exit(1)
		}
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "rootbatch: reading jobs:", err)
		os.Exit(1)
	}
}

func solveJob(h ephemeris.Handle, job batch.JobSpec) batch.JobResult {
	eval := yearengine.BuildEval(h, job)
	res := rootsolve.Solve(rootsolve.Task{
		Kind:      job.Kind,
		Target:    job.Target,
		JDInitial: job.JDInitial,
		EpsDays:   job.EpsDays,
		MaxIter:   job.MaxIter,
		Eval:      eval,
	})
	return batch.JobResult{Idx: job.Idx, Value: res.Value, Err: res.Err}
}
