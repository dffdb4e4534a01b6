package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"clang-format-all/internal/logs"
	"clang-format-all/internal/processor"
	"clang-format-all/pkg/dirscan"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Options
	}{
		{
			name: "empty",
			args: nil,
			want: Options{},
		},
		{
			name: "switches",
			args: []string{"--verbose", "--no-logs", "--help"},
			want: Options{Verbose: true, NoLogs: true, Help: true},
		},
		{
			name: "values",
			args: []string{"-S", "src", "-E", "/opt/llvm/bin/clang-format"},
			want: Options{SourceDir: "src", Formatter: "/opt/llvm/bin/clang-format"},
		},
		{
			name: "ignore list is greedy until next flag",
			args: []string{"-I", "third_party", "build", "gen/x.h", "-S", "src"},
			want: Options{IgnorePaths: []string{"third_party", "build", "gen/x.h"}, SourceDir: "src"},
		},
		{
			name: "repeated ignore lists accumulate",
			args: []string{"-I", "a", "-S", "src", "-I", "b"},
			want: Options{IgnorePaths: []string{"a", "b"}, SourceDir: "src"},
		},
		{
			name: "remainder takes every following token",
			args: []string{"-S", "src", "-C", "--style=file", "-I", "--verbose"},
			want: Options{SourceDir: "src", ExtraArgs: []string{"--style=file", "-I", "--verbose"}},
		},
		{
			name: "remainder tokens are split into words",
			args: []string{"-C", "--style=file --Werror", "--assume-filename='my file.cpp'"},
			want: Options{ExtraArgs: []string{"--style=file", "--Werror", "--assume-filename=my file.cpp"}},
		},
		{
			name: "unbalanced quote is kept whole",
			args: []string{"-C", `--style="file`},
			want: Options{ExtraArgs: []string{`--style="file`}},
		},
		{
			name: "stray tokens are ignored",
			args: []string{"stray", "--verbose", "other"},
			want: Options{Verbose: true},
		},
		{
			name: "value flag without value stays unset",
			args: []string{"-S", "-E", "fmt", "-S"},
			want: Options{Formatter: "fmt"},
		},
		{
			name: "report and history",
			args: []string{"--report", "run.yaml.zst", "--history", "postgres://localhost/db"},
			want: Options{ReportPath: "run.yaml.zst", HistoryDSN: "postgres://localhost/db"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Parse(tt.args))
		})
	}
}

func TestParse_ExtraArgsReachFormatter(t *testing.T) {
	o := Parse([]string{"-S", "src", "-C", "--style=file --Werror"})
	require.Equal(t,
		[]string{"-i", "/src/a.cpp", "--style=file", "--Werror"},
		processor.FormatArgs("/src/a.cpp", o.ExtraArgs))
}

func TestOptions_LogLevel(t *testing.T) {
	require.Equal(t, logs.Display, Options{}.LogLevel())
	require.Equal(t, logs.Verbose, Options{Verbose: true}.LogLevel())
	require.Equal(t, logs.Disabled, Options{NoLogs: true}.LogLevel())
	require.Equal(t, logs.Disabled, Options{NoLogs: true, Verbose: true}.LogLevel())
}

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	PrintUsage(&buf)

	out := buf.String()
	for _, f := range flags {
		require.Contains(t, out, "["+f.name+"]")
	}
	require.Contains(t, out, "MIT License")
}

func fakeFormatter(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "bin", executableName())
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0755))
	return path
}

func withLookPath(t *testing.T, fn func(string) (string, error)) {
	t.Helper()
	prev := lookPath
	lookPath = fn
	t.Cleanup(func() { lookPath = prev })
}

func notOnPath(string) (string, error) {
	return "", errors.New("not found")
}

// tempDir returns a temporary directory with symlinks resolved, the form Resolve reports.
func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func TestResolve_Source(t *testing.T) {
	req := require.New(t)
	root := tempDir(t)
	exe := fakeFormatter(t, root)
	file := filepath.Join(root, "file.cpp")
	req.NoError(os.WriteFile(file, nil, 0644))

	cfg, err := Resolve(Options{SourceDir: root, Formatter: exe}, Environment{})
	req.NoError(err)
	req.Equal(root, cfg.SourceDir)

	wd, err := os.Getwd()
	req.NoError(err)
	wd, err = filepath.EvalSymlinks(wd)
	req.NoError(err)
	cfg, err = Resolve(Options{Formatter: exe}, Environment{})
	req.NoError(err)
	req.Equal(wd, cfg.SourceDir)

	_, err = Resolve(Options{SourceDir: file, Formatter: exe}, Environment{})
	req.ErrorIs(err, ErrSourceNotValid)

	_, err = Resolve(Options{SourceDir: filepath.Join(root, "missing"), Formatter: exe}, Environment{})
	req.ErrorIs(err, ErrSourceNotValid)
}

func TestResolve_SymlinkedSource(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	req := require.New(t)
	target := tempDir(t)
	exe := fakeFormatter(t, tempDir(t))
	for _, f := range []string{"a.cpp", "b/c.h", "vendor/d.cpp"} {
		path := filepath.Join(target, filepath.FromSlash(f))
		req.NoError(os.MkdirAll(filepath.Dir(path), 0755))
		req.NoError(os.WriteFile(path, nil, 0644))
	}
	link := filepath.Join(t.TempDir(), "src")
	req.NoError(os.Symlink(target, link))

	cfg, err := Resolve(Options{SourceDir: link, Formatter: exe, IgnorePaths: []string{"vendor"}}, Environment{})
	req.NoError(err)
	req.Equal(target, cfg.SourceDir)
	req.Equal([]dirscan.Rule{dirscan.DirRule(filepath.Join(target, "vendor"))}, cfg.Rules)

	ff := dirscan.FileFinder{Root: cfg.SourceDir, Rules: cfg.Rules}
	set := ff.Find()
	req.ElementsMatch([]string{filepath.Join(target, "a.cpp"), filepath.Join(target, "b", "c.h")}, set.ToFormat)
	req.Equal([]string{filepath.Join(target, "vendor", "d.cpp")}, set.Ignored)
}

func TestResolve_Formatter(t *testing.T) {
	llvm := t.TempDir()
	llvmExe := fakeFormatter(t, llvm)
	other := t.TempDir()
	otherExe := fakeFormatter(t, other)

	tests := []struct {
		name     string
		opts     Options
		env      Environment
		lookPath func(string) (string, error)
		want     string
		wantErr  error
	}{
		{
			name:     "explicit executable",
			opts:     Options{Formatter: otherExe},
			env:      Environment{LLVM: llvm},
			lookPath: notOnPath,
			want:     otherExe,
		},
		{
			name:     "explicit directory is invalid",
			opts:     Options{Formatter: other},
			lookPath: notOnPath,
			wantErr:  ErrExecutableNotValid,
		},
		{
			name:     "explicit missing file is invalid",
			opts:     Options{Formatter: filepath.Join(other, "nope")},
			lookPath: notOnPath,
			wantErr:  ErrExecutableNotValid,
		},
		{
			name:     "probed under LLVM",
			env:      Environment{LLVM: llvm},
			lookPath: notOnPath,
			want:     llvmExe,
		},
		{
			name:     "falls back to search path",
			env:      Environment{LLVM: other + "-missing"},
			lookPath: func(string) (string, error) { return otherExe, nil },
			want:     otherExe,
		},
		{
			name:     "not found anywhere",
			lookPath: notOnPath,
			wantErr:  ErrExecutableNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withLookPath(t, tt.lookPath)
			tt.opts.SourceDir = other

			cfg, err := Resolve(tt.opts, tt.env)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, cfg.Formatter)
		})
	}
}

func TestResolve_IgnoreRules(t *testing.T) {
	req := require.New(t)
	root := tempDir(t)
	exe := fakeFormatter(t, root)
	req.NoError(os.MkdirAll(filepath.Join(root, "src", "vendor"), 0755))
	req.NoError(os.WriteFile(filepath.Join(root, "src", "gen.h"), nil, 0644))

	cfg, err := Resolve(Options{
		SourceDir:   root,
		Formatter:   exe,
		IgnorePaths: []string{"src/vendor", "src/gen.h", "missing"},
	}, Environment{})
	req.NoError(err)

	req.Equal([]dirscan.Rule{
		dirscan.DirRule(filepath.Join(root, "src", "vendor")),
		dirscan.FileRule(filepath.Join(root, "src", "gen.h")),
	}, cfg.Rules)
	req.Equal([]string{filepath.Join(root, "missing")}, cfg.MissingIgnores)
}

func TestReadEnvironment(t *testing.T) {
	t.Setenv("LLVM", "/opt/llvm")
	e, err := ReadEnvironment()
	require.NoError(t, err)
	require.Equal(t, "/opt/llvm", e.LLVM)
}
