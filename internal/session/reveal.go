package session

import (
	"context"
	"time"
)

// sequencer drives one progressive reveal: it walks the plan in order,
// holding each stage's loading flag for its duration. It is canceled as a
// unit; a canceled sequencer clears the stage it was holding.
type sequencer struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// startSequencer begins the reveal. set is called with (stage, loading);
// callers make it safe to invoke from the sequencer goroutine.
func startSequencer(plan []StageTiming, set func(Stage, bool)) *sequencer {
	ctx, cancel := context.WithCancel(context.Background())
	s := &sequencer{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(s.done)
		for _, st := range plan {
			set(st.Stage, true)

			timer := time.NewTimer(st.Duration)
			select {
			case <-ctx.Done():
				timer.Stop()
				set(st.Stage, false)
				return
			case <-timer.C:
			}

			set(st.Stage, false)
		}
	}()

	return s
}

// stop cancels the reveal without waiting for the goroutine; stale callbacks
// are fenced off by the session epoch.
func (s *sequencer) stop() {
	if s != nil {
		s.cancel()
	}
}

// wait blocks until the sequencer goroutine has exited. Tests use this.
func (s *sequencer) wait() {
	if s != nil {
		<-s.done
	}
}
