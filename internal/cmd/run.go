package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"clang-format-all/internal/config"
	"clang-format-all/internal/db"
	"clang-format-all/internal/logs"
	"clang-format-all/internal/processor"
	"clang-format-all/internal/report"
	"clang-format-all/internal/runstate"
	"clang-format-all/internal/ui"
	"clang-format-all/pkg/console"
	"clang-format-all/pkg/dirscan"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
)

const historyTimeout = 30 * time.Second

// App carries the dependencies of one invocation.
type App struct {
	Out    io.Writer
	ErrOut io.Writer
	Env    config.Environment
	// Runner defaults to running the formatter as a child process.
	Runner processor.Runner
	// State defaults to a fresh run state.
	State *runstate.State
	// Status is the outcome of the last Run.
	Status runstate.Status
}

// Run discovers files, formats them and returns the aggregated status.
func (a *App) Run(args []string) runstate.Status {
	opts := config.Parse(args)
	if opts.Help {
		config.PrintUsage(a.Out)
		return runstate.OK
	}

	log := logs.New(opts.LogLevel(), a.Out, a.ErrOut)

	cfg, err := config.Resolve(opts, a.Env)
	if err != nil {
		log.Errorf("%v", err)
		return statusFor(err)
	}

	state := a.State
	if state == nil {
		state = runstate.New()
	}
	stop := runstate.Listen(state.Cancel, log)
	defer stop()

	started := time.Now()
	runID := uuid.NewString()

	log.Displayf("Using clang-format: %s", filepath.ToSlash(cfg.Formatter))
	log.Displayf("Formatting directory: %s", filepath.ToSlash(cfg.SourceDir))
	for _, p := range cfg.MissingIgnores {
		log.Errorf("Ignore path does not exist: %s", filepath.ToSlash(p))
	}
	for _, r := range cfg.Rules {
		log.Displayf("Ignoring: %s", r.Path)
	}

	log.Displayf("Looking for formatable files . . .")
	finder := dirscan.FileFinder{
		Root:     cfg.SourceDir,
		Rules:    cfg.Rules,
		Log:      log,
		Progress: &state.Counters.Discovered,
		Cancel:   state.Cancel,
	}
	var files dirscan.FileSet
	a.reporter(log, "Files to format").Track(
		func() (int64, int64) { return state.Counters.Discovered.Load(), -1 },
		func() { files = finder.Find() },
	)

	if log.Enabled(logs.Verbose) {
		for _, f := range files.ToFormat {
			log.Verbosef("To format: %s", filepath.ToSlash(f))
		}
	}

	log.Displayf("Starting formatting . . .")
	dispatcher := processor.Dispatcher{
		Formatter: cfg.Formatter,
		ExtraArgs: cfg.ExtraArgs,
		Runner:    a.Runner,
		Log:       log,
		State:     state,
	}
	total := int64(len(files.ToFormat))
	var status runstate.Status
	var results []processor.Result
	a.reporter(log, "Formatted files").Track(
		func() (int64, int64) { return state.Counters.Completed.Load(), total },
		func() { status, results = dispatcher.Dispatch(files.ToFormat) },
	)

	cancelled := state.Cancel.Cancelled()
	if cancelled {
		log.Displayf("Run cancelled, remaining files were not formatted")
	}

	byOutcome := processor.Partition(results)
	if log.Enabled(logs.Display) {
		t := table.NewWriter()
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Formatted", "Failed", "Skipped", "Ignored"})
		t.AppendRow(table.Row{
			len(byOutcome[processor.Formatted]),
			len(byOutcome[processor.Failed]),
			len(byOutcome[processor.Skipped]),
			len(files.Ignored),
		})
		log.Displayf("%s", t.Render())
	}

	if cfg.ReportPath != "" {
		rep := report.New(runID, started, cfg.SourceDir, cfg.Formatter, cfg.ExtraArgs,
			status, cancelled, results, files.Ignored)
		if err := report.Save(cfg.ReportPath, rep); err != nil {
			log.Errorf("Unable to write report: %v", err)
		} else {
			log.Verbosef("Report written to %s", filepath.ToSlash(cfg.ReportPath))
		}
	}

	if cfg.HistoryDSN != "" {
		run := db.Run{
			ID:        runID,
			StartedAt: started,
			Duration:  time.Since(started),
			SourceDir: cfg.SourceDir,
			Formatter: cfg.Formatter,
			ExitCode:  int(status),
			Cancelled: cancelled,
		}
		if err := recordHistory(cfg.HistoryDSN, run, results); err != nil {
			log.Errorf("Unable to record run history: %v", err)
		}
	}

	log.Displayf("Exit code: %d", status)
	return status
}

func recordHistory(dsn string, run db.Run, results []processor.Result) error {
	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()

	conn, err := db.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close()

	history, err := db.NewHistory(ctx, conn, db.DefaultBatchSize)
	if err != nil {
		return err
	}
	return history.RecordRun(ctx, run, results)
}

// reporter picks how progress is drawn: nothing when logs are off, a go-pretty tracker on a
// terminal, a carriage-return line otherwise.
func (a *App) reporter(log *logs.Logger, label string) *ui.Reporter {
	r := &ui.Reporter{Interval: ui.DefaultInterval}
	switch {
	case !log.Enabled(logs.Display):
		r.Renderer = console.Nop{}
	case isTerminal(a.Out):
		r.Renderer = console.NewTrackerRenderer(log.Out(), label, ui.DefaultInterval)
	default:
		r.Renderer = &console.LineRenderer{Out: log.Out(), Label: label}
	}
	return r
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func statusFor(err error) runstate.Status {
	switch {
	case errors.Is(err, config.ErrSourceNotValid):
		return runstate.SourceNotFound
	case errors.Is(err, config.ErrExecutableNotValid):
		return runstate.ExecutableInvalid
	case errors.Is(err, config.ErrExecutableNotFound):
		return runstate.ExecutableNotFound
	default:
		return runstate.SourceNotFound
	}
}
