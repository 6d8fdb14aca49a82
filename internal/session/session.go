package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/geeddi-ai/geeddi-server/internal/course"
	"github.com/geeddi-ai/geeddi-server/internal/i18n"
)

var (
	// ErrSessionNotFound is returned for operations on unknown session IDs.
	ErrSessionNotFound = errors.New("session not found")
	// ErrGenerationInFlight is returned when a generation is already running
	// for the session; the client disables the trigger, the server enforces it.
	ErrGenerationInFlight = errors.New("a generation is already in flight")
	// ErrNoCourse is returned for quiz or export operations before a course exists.
	ErrNoCourse = errors.New("no course in session")
	// ErrQuestionOutOfRange is returned for an unknown quiz index.
	ErrQuestionOutOfRange = errors.New("question index out of range")
	// ErrUnknownOption is returned when the selected option is not one of the
	// question's options.
	ErrUnknownOption = errors.New("selected option is not among the question's options")
)

const defaultStageDelay = 600 * time.Millisecond

// Generator is the slice of the course package the session manager needs.
type Generator interface {
	Generate(ctx context.Context, topic, lang string) (*course.Course, error)
	Explain(ctx context.Context, item course.QuizItem, selected, lang string) (string, error)
}

// Session holds one learner's state. All fields are guarded by mu; the epoch
// fences off async callbacks (generation, reveal, explanations) that belong
// to a discarded lifecycle.
type Session struct {
	ID string

	mu     sync.Mutex
	state  State
	epoch  int
	reveal *sequencer
	subs   map[chan Event]struct{}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.state
	snap.Quiz = s.state.Quiz.clone()
	return snap
}

// Subscribe registers an event channel. The returned function unsubscribes
// and closes the channel. Slow subscribers drop events rather than block the
// state machine.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
}

// publish must be called with mu held.
func (s *Session) publish(ev Event) {
	for ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// setStage applies a reveal callback if it still belongs to the current
// lifecycle. Called from the sequencer goroutine.
func (s *Session) setStage(epoch int, stage Stage, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		return
	}
	s.state.Reveal.set(stage, loading)
	evType := EventStageRevealed
	if loading {
		evType = EventStageLoading
	}
	s.publish(Event{Type: evType, Stage: stage.String()})
}

// resetLocked discards the course and every derived flag. Must be called
// with mu held.
func (s *Session) resetLocked() {
	s.epoch++
	s.reveal.stop()
	s.reveal = nil
	s.state.Course = nil
	s.state.Generating = false
	s.state.ErrorMessage = ""
	s.state.Reveal = RevealState{}
	s.state.Quiz = newQuizState(0)
}

// Manager creates sessions and applies every state transition.
type Manager struct {
	generator  Generator
	stageDelay time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

// ManagerConfig holds dependencies for a Manager.
type ManagerConfig struct {
	Generator  Generator
	StageDelay time.Duration // per reveal stage, default 600ms
}

// NewManager creates a session manager.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	delay := cfg.StageDelay
	if delay == 0 {
		delay = defaultStageDelay
	}
	return &Manager{
		generator:  cfg.Generator,
		stageDelay: delay,
		sessions:   make(map[string]*Session),
	}, nil
}

// Create starts a new session in the given language.
func (m *Manager) Create(lang string) *Session {
	s := &Session{
		ID:    generateID(),
		state: State{Language: i18n.Normalize(lang), Quiz: newQuizState(0)},
		subs:  make(map[chan Event]struct{}),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	slog.Info("session created", "session_id", s.ID, "language", s.state.Language)
	return s
}

// Get returns a session by ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close removes a session and cancels its reveal.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return
	}
	s.mu.Lock()
	s.resetLocked()
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
	s.mu.Unlock()
}

// SetLanguage switches the session language. Changing language discards the
// course and resets all derived state; re-selecting the current language is
// a no-op.
func (m *Manager) SetLanguage(id, lang string) (State, error) {
	s, ok := m.Get(id)
	if !ok {
		return State{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	lang = i18n.Normalize(lang)

	s.mu.Lock()
	defer s.mu.Unlock()

	if lang != s.state.Language {
		s.resetLocked()
		s.state.Language = lang
	}
	snap := s.state
	snap.Quiz = s.state.Quiz.clone()
	return snap, nil
}

// StartGeneration kicks off an asynchronous course generation. Only one may
// be in flight per session.
func (m *Manager) StartGeneration(id, topic string) error {
	s, ok := m.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	s.mu.Lock()
	if s.state.Generating {
		s.mu.Unlock()
		return ErrGenerationInFlight
	}
	s.resetLocked()
	s.state.Generating = true
	epoch := s.epoch
	lang := s.state.Language
	s.publish(Event{Type: EventGenerationStarted})
	s.mu.Unlock()

	// Fire-and-forget: the model call is not canceled by client disconnects,
	// only superseded via the epoch.
	go func() {
		c, err := m.generator.Generate(context.Background(), topic, lang)
		m.finishGeneration(s, epoch, c, err)
	}()
	return nil
}

func (m *Manager) finishGeneration(s *Session, epoch int, c *course.Course, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		slog.Debug("dropping stale generation result", "session_id", s.ID)
		return
	}

	s.state.Generating = false
	if err != nil {
		slog.Warn("course generation failed", "session_id", s.ID, "error", err)
		s.state.ErrorMessage = i18n.T(s.state.Language, i18n.MsgGenerationError)
		s.publish(Event{Type: EventGenerationFailed, Message: s.state.ErrorMessage})
		return
	}

	s.state.Course = c
	s.state.ErrorMessage = ""
	s.state.Quiz = newQuizState(len(c.Quiz))
	s.publish(Event{Type: EventGenerationSucceeded, Course: c})

	s.reveal = startSequencer(RevealPlan(m.stageDelay), func(stage Stage, loading bool) {
		s.setStage(epoch, stage, loading)
	})
}

// SelectAnswer applies an answer to a quiz question. It returns the result
// and whether the selection changed anything: answering an already-answered
// question or one whose explanation is still loading is a no-op.
func (m *Manager) SelectAnswer(id string, question int, option string) (AnswerResult, bool, error) {
	s, ok := m.Get(id)
	if !ok {
		return ResultUnset, false, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Course == nil {
		return ResultUnset, false, ErrNoCourse
	}
	if question < 0 || question >= len(s.state.Course.Quiz) {
		return ResultUnset, false, ErrQuestionOutOfRange
	}

	item := s.state.Course.Quiz[question]
	if s.state.Quiz.Results[question] != ResultUnset || s.state.Quiz.Explaining[question] {
		return s.state.Quiz.Results[question], false, nil
	}

	valid := false
	for _, o := range item.Options {
		if o == option {
			valid = true
		}
	}
	if !valid {
		return ResultUnset, false, fmt.Errorf("%w: %q", ErrUnknownOption, option)
	}

	s.state.Quiz.Answers[question] = option
	if option == item.CorrectAnswer {
		s.state.Quiz.Results[question] = ResultCorrect
		return ResultCorrect, true, nil
	}

	s.state.Quiz.Results[question] = ResultIncorrect
	s.state.Quiz.Explaining[question] = true
	s.publish(Event{Type: EventExplanationLoading, Question: question})

	epoch := s.epoch
	lang := s.state.Language
	go func() {
		text, err := m.generator.Explain(context.Background(), item, option, lang)
		s.finishExplanation(epoch, question, text, err, lang)
	}()

	return ResultIncorrect, true, nil
}

func (s *Session) finishExplanation(epoch, question int, text string, err error, lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch || question >= len(s.state.Quiz.Explaining) {
		return
	}

	s.state.Quiz.Explaining[question] = false
	if err != nil {
		slog.Warn("explanation failed", "session_id", s.ID, "question", question, "error", err)
		fallback := i18n.T(lang, i18n.MsgExplanationFallback)
		s.state.Quiz.Explanations[question] = fallback
		s.publish(Event{Type: EventExplanationFailed, Question: question, Message: fallback})
		return
	}

	s.state.Quiz.Explanations[question] = text
	s.publish(Event{Type: EventExplanationReady, Question: question, Message: text})
}

func generateID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
