package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"clang-format-all/internal/processor"
	"clang-format-all/internal/runstate"

	"github.com/stretchr/testify/require"
)

func sampleReport() Report {
	results := []processor.Result{
		{Path: "/src/a.cpp", Outcome: processor.Formatted},
		{Path: "/src/b.cpp", Outcome: processor.Failed, ExitCode: 1},
		{Path: "/src/c.cpp", Outcome: processor.Formatted},
		{Path: "/src/d.cpp", Outcome: processor.Skipped},
	}
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return New("run-1", started, "/src", "/usr/bin/clang-format", []string{"--style=file"},
		runstate.FormatterFailed, false, results, []string{"/src/vendor/x.h"})
}

func TestNew(t *testing.T) {
	req := require.New(t)
	r := sampleReport()

	req.Equal("formatter failed", r.Status)
	req.Equal(4, r.ExitCode)
	req.Equal([]string{"/src/a.cpp", "/src/c.cpp"}, r.Formatted)
	req.Equal([]string{"/src/b.cpp"}, r.Failed)
	req.Equal([]string{"/src/d.cpp"}, r.Skipped)
	req.Equal([]string{"/src/vendor/x.h"}, r.Ignored)
}

func TestSaveLoad(t *testing.T) {
	tests := map[string]string{
		"plain yaml": "report.yaml",
		"zstd":       "report.yaml.zst",
		"nested dir": filepath.Join("out", "runs", "report.yaml"),
	}

	for name, file := range tests {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			path := filepath.Join(t.TempDir(), file)
			want := sampleReport()

			req.NoError(Save(path, want))
			got, err := Load(path)
			req.NoError(err)

			req.Equal(want.RunID, got.RunID)
			req.True(want.StartedAt.Equal(got.StartedAt))
			req.Equal(want.Failed, got.Failed)
			req.Equal(want.Formatted, got.Formatted)
			req.Equal(want.Ignored, got.Ignored)
			req.Equal(want.ExitCode, got.ExitCode)
		})
	}
}

func TestSave_CompressedIsNotPlainYAML(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "report.zst")
	req.NoError(Save(path, sampleReport()))

	raw, err := os.ReadFile(path)
	req.NoError(err)
	req.NotContains(string(raw), "runId")

	entries, err := os.ReadDir(filepath.Dir(path))
	req.NoError(err)
	for _, e := range entries {
		req.NotContains(e.Name(), ".tmp-")
	}
}
