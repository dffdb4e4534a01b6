package processor

import (
	"errors"
	"os/exec"
)

// Runner starts the formatter and waits for it to exit.
type Runner interface {
	// Run returns the exit code of the process. err is set only when the process could not be run at all.
	Run(name string, args ...string) (exitCode int, err error)
}

// ExecRunner runs commands directly, without a shell, inheriting the parent's stdout and stderr.
type ExecRunner struct{}

func (ExecRunner) Run(name string, args ...string) (int, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}
	return 0, nil
}

// FormatArgs builds the argument list for formatting path in place.
func FormatArgs(path string, extra []string) []string {
	args := make([]string, 0, len(extra)+2)
	args = append(args, "-i", path)
	return append(args, extra...)
}
