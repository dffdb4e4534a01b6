// Package logs provides the leveled console logger shared by every stage of a run.
package logs

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

type Level int

const (
	Disabled Level = iota - 1
	Verbose
	Display
	Error
)

func (l Level) String() string {
	switch l {
	case Disabled:
		return "disabled"
	case Verbose:
		return "verbose"
	case Display:
		return "display"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Logger writes Verbose and Display messages to out and Error messages to errOut.
// It is safe for concurrent use.
type Logger struct {
	level  Level
	out    io.Writer
	errOut io.Writer
	color  bool
	mu     sync.Mutex
}

func New(level Level, out, errOut io.Writer) *Logger {
	return &Logger{
		level:  level,
		out:    out,
		errOut: errOut,
		color:  isTerminal(out) && isTerminal(errOut),
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(Disabled, io.Discard, io.Discard)
}

// isTerminal trusts color's own TTY and NO_COLOR detection for the standard streams.
func isTerminal(w io.Writer) bool {
	if w == os.Stdout || w == os.Stderr {
		return !color.NoColor
	}
	return false
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level Level) bool {
	return l.level != Disabled && level >= l.level
}

func (l *Logger) Verbosef(format string, args ...any) {
	l.logf(Verbose, format, args...)
}

func (l *Logger) Displayf(format string, args ...any) {
	l.logf(Display, format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.logf(Error, format, args...)
}

func (l *Logger) logf(level Level, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}

	msg := fmt.Sprintf(format, args...)
	if l.color {
		switch level {
		case Verbose:
			msg = color.New(color.FgHiBlack).Sprint(msg)
		case Error:
			msg = color.New(color.FgRed).Sprint(msg)
		}
	}

	w := l.out
	if level == Error {
		w = l.errOut
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(w, msg)
}

// Out returns a writer to the display stream whose writes are serialized with log messages,
// so a progress line never interleaves with a log line.
func (l *Logger) Out() io.Writer {
	return lockedWriter{l: l}
}

type lockedWriter struct {
	l *Logger
}

func (w lockedWriter) Write(p []byte) (int, error) {
	w.l.mu.Lock()
	defer w.l.mu.Unlock()
	return w.l.out.Write(p)
}
