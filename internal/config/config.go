package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"clang-format-all/internal/logs"
	"clang-format-all/pkg/dirscan"

	env "github.com/Netflix/go-env"
)

var (
	ErrExecutableNotFound = errors.New("clang-format executable not found")
	ErrSourceNotValid     = errors.New("not a directory")
	ErrExecutableNotValid = errors.New("not a file")
)

// lookPath is swapped in tests.
var lookPath = exec.LookPath

type Environment struct {
	// LLVM is the installation prefix probed for bin/clang-format.
	LLVM string `env:"LLVM"`
}

func ReadEnvironment() (Environment, error) {
	var e Environment
	if _, err := env.UnmarshalFromEnviron(&e); err != nil {
		return Environment{}, fmt.Errorf("reading environment: %w", err)
	}
	return e, nil
}

// Config is the validated input of a run. All paths are absolute.
type Config struct {
	SourceDir string
	Formatter string
	Rules     []dirscan.Rule
	// MissingIgnores are ignore paths that do not exist; they produce no rule.
	MissingIgnores []string
	ExtraArgs      []string
	ReportPath     string
	HistoryDSN     string
}

// LogLevel picks the level from the switches; --no-logs wins over --verbose.
func (o Options) LogLevel() logs.Level {
	switch {
	case o.NoLogs:
		return logs.Disabled
	case o.Verbose:
		return logs.Verbose
	default:
		return logs.Display
	}
}

// Resolve checks the options against the filesystem and builds the run configuration.
func Resolve(o Options, e Environment) (*Config, error) {
	cfg := &Config{
		ExtraArgs:  o.ExtraArgs,
		ReportPath: o.ReportPath,
		HistoryDSN: o.HistoryDSN,
	}

	source, err := resolveSource(o.SourceDir)
	if err != nil {
		return nil, err
	}
	cfg.SourceDir = source

	formatter, err := resolveFormatter(o.Formatter, e)
	if err != nil {
		return nil, err
	}
	cfg.Formatter = formatter

	for _, p := range o.IgnorePaths {
		path := filepath.Join(source, p)
		info, err := os.Stat(path)
		switch {
		case err != nil:
			cfg.MissingIgnores = append(cfg.MissingIgnores, path)
		case info.IsDir():
			cfg.Rules = append(cfg.Rules, dirscan.DirRule(path))
		case info.Mode().IsRegular():
			cfg.Rules = append(cfg.Rules, dirscan.FileRule(path))
		default:
			cfg.MissingIgnores = append(cfg.MissingIgnores, path)
		}
	}

	return cfg, nil
}

// resolveSource returns the source directory with symlinks resolved, since the walk does not
// descend into a symlinked root.
func resolveSource(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("%w: current directory: %v", ErrSourceNotValid, err)
		}
		dir = wd
	}

	abs, err := filepath.Abs(dir)
	if err != nil || !dirscan.IsDir(abs) {
		return "", fmt.Errorf("%w: %s", ErrSourceNotValid, filepath.ToSlash(dir))
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrSourceNotValid, filepath.ToSlash(dir), err)
	}
	return resolved, nil
}

func resolveFormatter(path string, e Environment) (string, error) {
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil || !isRegularFile(abs) {
			return "", fmt.Errorf("%w: %s", ErrExecutableNotValid, filepath.ToSlash(path))
		}
		return abs, nil
	}

	name := executableName()
	if e.LLVM != "" {
		candidate := filepath.Join(e.LLVM, "bin", name)
		if isRegularFile(candidate) {
			return candidate, nil
		}
	}

	found, err := lookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w, could not proceed", ErrExecutableNotFound)
	}
	if abs, err := filepath.Abs(found); err == nil {
		found = abs
	}
	return found, nil
}

func executableName() string {
	if runtime.GOOS == "windows" {
		return "clang-format.exe"
	}
	return "clang-format"
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
