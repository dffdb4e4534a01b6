package runstate

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// Flag is a one-way cancellation request. Once set it stays set.
type Flag struct {
	set atomic.Bool
}

// Cancel sets the flag and reports whether this call was the one that set it.
func (f *Flag) Cancel() bool {
	return f.set.CompareAndSwap(false, true)
}

func (f *Flag) Cancelled() bool {
	return f.set.Load()
}

// ErrorLogger is the part of the logger the signal listener needs.
type ErrorLogger interface {
	Errorf(format string, args ...any)
}

var terminationSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGABRT}

// Listen cancels flag on interrupt, terminate or abort signals until the returned stop func is called.
// In-flight formatter processes are left running; stages only stop starting new work.
func Listen(flag *Flag, log ErrorLogger) (stop func()) {
	sigs := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigs, terminationSignals...)

	go func() {
		for {
			select {
			case <-done:
				return
			case sig := <-sigs:
				flag.Cancel()
				log.Errorf("\nABORT RECEIVED (%s)\n", sig)
			}
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}
