package processor

import (
	"os"
	"runtime"
	"sync"
	"time"

	"clang-format-all/internal/runstate"

	"github.com/samber/lo"
)

var (
	stdout = os.Stdout
	stderr = os.Stderr
)

type Outcome string

const (
	Formatted Outcome = "formatted"
	Failed    Outcome = "failed"
	Skipped   Outcome = "skipped"
)

// Result is what happened to a single file.
type Result struct {
	Path     string
	Outcome  Outcome
	ExitCode int
	Duration time.Duration
}

type Logger interface {
	Errorf(format string, args ...any)
}

type FileJob struct {
	Index int
	Path  string
}

// Dispatcher formats files in parallel. Every file is attempted even after a failure;
// only cancellation stops new formatter processes from being started.
type Dispatcher struct {
	Formatter string
	ExtraArgs []string
	// Workers defaults to the number of CPUs.
	Workers int
	Runner  Runner
	Log     Logger
	State   *runstate.State
}

// Dispatch returns the aggregated status and one result per input file, in input order.
func (d *Dispatcher) Dispatch(files []string) (runstate.Status, []Result) {
	results := make([]Result, len(files))
	var status runstate.StatusCell

	workers := d.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, max(len(files), 1))

	inputs := make(chan FileJob, workers)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := Worker{Inputs: inputs, Dispatcher: d, Status: &status, Results: results}
			w.Work()
		}()
	}

	for i, path := range files {
		inputs <- FileJob{Index: i, Path: path}
	}
	close(inputs)
	wg.Wait()

	return status.Load(), results
}

// Worker drains jobs until the input channel is closed.
type Worker struct {
	Inputs     <-chan FileJob
	Dispatcher *Dispatcher
	Status     *runstate.StatusCell
	Results    []Result
}

func (w *Worker) Work() {
	for job := range w.Inputs {
		res := w.Dispatcher.format(job.Path)
		if res.Outcome == Failed {
			w.Status.Merge(runstate.FormatterFailed)
		}
		w.Results[job.Index] = res
		w.Dispatcher.State.Counters.Completed.Add(1)
	}
}

func (d *Dispatcher) format(path string) Result {
	if d.State.Cancel.Cancelled() {
		return Result{Path: path, Outcome: Skipped}
	}

	runner := d.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	start := time.Now()
	code, err := runner.Run(d.Formatter, FormatArgs(path, d.ExtraArgs)...)
	res := Result{Path: path, ExitCode: code, Duration: time.Since(start), Outcome: Formatted}

	switch {
	case err != nil:
		res.Outcome = Failed
		d.errorf("Unable to run %s on %s: %v", d.Formatter, path, err)
	case code != 0:
		res.Outcome = Failed
		d.errorf("Formatter exited with code %d on %s", code, path)
	}
	return res
}

func (d *Dispatcher) errorf(format string, args ...any) {
	if d.Log != nil {
		d.Log.Errorf(format, args...)
	}
}

// Partition splits results by outcome.
func Partition(results []Result) map[Outcome][]string {
	grouped := lo.GroupBy(results, func(r Result) Outcome { return r.Outcome })
	return lo.MapValues(grouped, func(rs []Result, _ Outcome) []string {
		return lo.Map(rs, func(r Result, _ int) string { return r.Path })
	})
}
