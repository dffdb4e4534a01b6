package console

import (
	"fmt"
	"io"
)

// Renderer draws a single progress line. A negative total means the total is not known yet.
type Renderer interface {
	Render(current, total int64)
	// Finish draws the final numbers and releases the line.
	Finish(current, total int64)
}

// LineRenderer rewrites one terminal line with carriage returns.
type LineRenderer struct {
	Out   io.Writer
	Label string
}

func (o *LineRenderer) Render(current, total int64) {
	if total < 0 {
		fmt.Fprintf(o.Out, "\r%s: %d", o.Label, current)
		return
	}
	fmt.Fprintf(o.Out, "\r%s: %d / %d", o.Label, current, total)
}

func (o *LineRenderer) Finish(current, total int64) {
	o.Render(current, total)
	fmt.Fprintln(o.Out)
}

// Nop renders nothing.
type Nop struct{}

func (Nop) Render(int64, int64) {}
func (Nop) Finish(int64, int64) {}
