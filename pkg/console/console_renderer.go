package console

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/text"
)

var (
	StyleColors = progress.StyleColors{
		Message: text.Colors{text.FgWhite},
		Error:   text.Colors{text.FgRed},
		Percent: text.Colors{text.FgHiRed},
		Pinned:  text.Colors{text.BgHiBlack, text.FgWhite, text.Bold},
		Stats:   text.Colors{text.FgHiBlack},
		Time:    text.Colors{text.FgGreen},
		Tracker: text.Colors{text.FgYellow},
		Value:   text.Colors{text.FgCyan},
		Speed:   text.Colors{text.FgMagenta},
	}
)

// TrackerRenderer draws the progress line as a go-pretty tracker.
// While the total is unknown the tracker is indeterminate.
type TrackerRenderer struct {
	Pw      progress.Writer
	tracker *progress.Tracker
}

func NewTrackerRenderer(out io.Writer, label string, frequency time.Duration) *TrackerRenderer {
	renderer := progress.NewWriter()
	renderer.SetOutputWriter(out)
	renderer.SetAutoStop(false)
	renderer.SetMessageLength(24)
	renderer.SetTrackerPosition(progress.PositionRight)
	renderer.SetUpdateFrequency(frequency)
	renderer.SetStyle(progress.StyleDefault)
	renderer.Style().Colors = StyleColors
	renderer.Style().Visibility.ETA = true

	tracker := &progress.Tracker{
		Message: label,
		Units:   progress.UnitsDefault,
	}
	renderer.AppendTracker(tracker)
	go renderer.Render()
	// Stop is a no-op until the render loop is running.
	for !renderer.IsRenderInProgress() {
		time.Sleep(time.Millisecond)
	}

	return &TrackerRenderer{Pw: renderer, tracker: tracker}
}

func (o *TrackerRenderer) Render(current, total int64) {
	if total >= 0 {
		o.tracker.UpdateTotal(total)
	}
	o.tracker.SetValue(current)
}

func (o *TrackerRenderer) Finish(current, total int64) {
	o.Render(current, total)
	o.tracker.MarkAsDone()
	o.Pw.Stop()
	for o.Pw.IsRenderInProgress() {
		time.Sleep(5 * time.Millisecond)
	}
}
