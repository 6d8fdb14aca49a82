package session

import (
	"sync"
	"testing"
	"time"
)

type stageCall struct {
	stage   Stage
	loading bool
}

type stageRecorder struct {
	mu    sync.Mutex
	calls []stageCall
}

func (r *stageRecorder) set(stage Stage, loading bool) {
	r.mu.Lock()
	r.calls = append(r.calls, stageCall{stage, loading})
	r.mu.Unlock()
}

func (r *stageRecorder) snapshot() []stageCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]stageCall{}, r.calls...)
}

func TestSequencer_RunsPlanInOrder(t *testing.T) {
	rec := &stageRecorder{}

	seq := startSequencer(RevealPlan(time.Millisecond), rec.set)
	seq.wait()

	want := []stageCall{
		{StageOutline, true}, {StageOutline, false},
		{StageLessons, true}, {StageLessons, false},
		{StageSummary, true}, {StageSummary, false},
		{StageQuiz, true}, {StageQuiz, false},
	}

	got := rec.snapshot()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSequencer_CancelClearsCurrentStage(t *testing.T) {
	rec := &stageRecorder{}

	// A long stage so cancellation lands mid-hold.
	seq := startSequencer([]StageTiming{{StageOutline, time.Minute}}, rec.set)

	// Wait for the loading flag to be set before canceling.
	deadline := time.Now().Add(2 * time.Second)
	for len(rec.snapshot()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("sequencer never set the first stage")
		}
		time.Sleep(time.Millisecond)
	}

	seq.stop()
	seq.wait()

	got := rec.snapshot()
	last := got[len(got)-1]
	if last.loading {
		t.Errorf("last call = %v, cancellation must clear the held stage", last)
	}
}

func TestSequencer_StopNil(t *testing.T) {
	var seq *sequencer
	seq.stop() // must not panic
	seq.wait()
}
