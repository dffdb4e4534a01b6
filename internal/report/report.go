// Package report writes a summary of a formatting run to disk.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clang-format-all/internal/processor"
	"clang-format-all/internal/runstate"

	"github.com/gofrs/flock"
	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"
)

const compressedSuffix = ".zst"

type Report struct {
	RunID     string        `yaml:"runId"`
	StartedAt time.Time     `yaml:"startedAt"`
	Duration  time.Duration `yaml:"duration"`
	SourceDir string        `yaml:"sourceDir"`
	Formatter string        `yaml:"formatter"`
	ExtraArgs []string      `yaml:"extraArgs,omitempty"`
	Status    string        `yaml:"status"`
	ExitCode  int           `yaml:"exitCode"`
	Cancelled bool          `yaml:"cancelled"`
	Formatted []string      `yaml:"formatted"`
	Failed    []string      `yaml:"failed"`
	Skipped   []string      `yaml:"skipped"`
	Ignored   []string      `yaml:"ignored"`
}

// New assembles a report from the per-file results of a run.
func New(runID string, started time.Time, sourceDir, formatter string, extraArgs []string,
	status runstate.Status, cancelled bool, results []processor.Result, ignored []string) Report {
	byOutcome := processor.Partition(results)
	return Report{
		RunID:     runID,
		StartedAt: started,
		Duration:  time.Since(started),
		SourceDir: sourceDir,
		Formatter: formatter,
		ExtraArgs: extraArgs,
		Status:    status.String(),
		ExitCode:  int(status),
		Cancelled: cancelled,
		Formatted: byOutcome[processor.Formatted],
		Failed:    byOutcome[processor.Failed],
		Skipped:   byOutcome[processor.Skipped],
		Ignored:   ignored,
	}
}

// Encode writes r as YAML, zstd-compressed when compressed is set.
func Encode(w io.Writer, r Report, compressed bool) error {
	if !compressed {
		return yaml.NewEncoder(w).Encode(r)
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}
	if err := yaml.NewEncoder(zw).Encode(r); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func Decode(rd io.Reader, compressed bool) (Report, error) {
	var r Report
	if compressed {
		decoder, err := zstd.NewReader(rd)
		if err != nil {
			return r, fmt.Errorf("creating zstd reader: %w", err)
		}
		defer decoder.Close()
		rd = decoder
	}
	if err := yaml.NewDecoder(rd).Decode(&r); err != nil {
		return r, fmt.Errorf("decoding report: %w", err)
	}
	return r, nil
}

// Save writes the report to path under an exclusive "<path>.lock" lock, replacing any previous
// report atomically. A ".zst" suffix selects compression.
func Save(path string, r Report) error {
	var buf bytes.Buffer
	if err := Encode(&buf, r, isCompressed(path)); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", path, err)
	}
	defer lock.Unlock()

	return atomicWrite(path, buf.Bytes())
}

func Load(path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, err
	}
	defer f.Close()
	return Decode(f, isCompressed(path))
}

func isCompressed(path string) bool {
	return strings.HasSuffix(path, compressedSuffix)
}

// atomicWrite writes to a temp file in the target directory and renames it over path.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}
	return nil
}
