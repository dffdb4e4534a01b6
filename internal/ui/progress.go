package ui

import (
	"time"

	"clang-format-all/pkg/console"
)

const DefaultInterval = 50 * time.Millisecond

// Sampler reads the counters of the running stage. A negative total means it is still growing.
type Sampler func() (current, total int64)

// Reporter polls a stage's counters and redraws its progress line until the stage is done.
// It never writes to the counters it reads.
type Reporter struct {
	Interval time.Duration
	Renderer console.Renderer
}

// Watch renders on every tick until done is closed, then renders the final numbers once more.
func (r *Reporter) Watch(done <-chan struct{}, sample Sampler) {
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			r.Renderer.Finish(sample())
			return
		case <-ticker.C:
			r.Renderer.Render(sample())
		}
	}
}

// Track runs stage in the background and reports its progress until it returns.
func (r *Reporter) Track(sample Sampler, stage func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		stage()
	}()
	r.Watch(done, sample)
}
