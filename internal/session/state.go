// Package session owns the per-learner UI state: the generation lifecycle,
// the staged reveal of a received course, and the quiz interaction state
// machine. All mutation goes through the Manager so flags can never drift
// apart.
package session

import (
	"encoding/json"
	"time"

	"github.com/geeddi-ai/geeddi-server/internal/course"
)

// Stage identifies a course section in the progressive reveal.
type Stage int

const (
	StageOutline Stage = iota
	StageLessons
	StageSummary
	StageQuiz
	numStages
)

func (s Stage) String() string {
	switch s {
	case StageOutline:
		return "outline"
	case StageLessons:
		return "lessons"
	case StageSummary:
		return "summary"
	case StageQuiz:
		return "quiz"
	default:
		return "unknown"
	}
}

// StageTiming pairs a stage with how long its loading flag is held.
type StageTiming struct {
	Stage    Stage
	Duration time.Duration
}

// RevealPlan returns the fixed reveal order with the given per-stage delay.
func RevealPlan(delay time.Duration) []StageTiming {
	return []StageTiming{
		{StageOutline, delay},
		{StageLessons, delay},
		{StageSummary, delay},
		{StageQuiz, delay},
	}
}

// RevealState holds the four per-section loading flags.
type RevealState struct {
	Outline bool `json:"outline"`
	Lessons bool `json:"lessons"`
	Summary bool `json:"summary"`
	Quiz    bool `json:"quiz"`
}

func (r *RevealState) set(stage Stage, loading bool) {
	switch stage {
	case StageOutline:
		r.Outline = loading
	case StageLessons:
		r.Lessons = loading
	case StageSummary:
		r.Summary = loading
	case StageQuiz:
		r.Quiz = loading
	}
}

// AnswerResult is the per-question correctness state.
type AnswerResult int

const (
	ResultUnset AnswerResult = iota
	ResultCorrect
	ResultIncorrect
)

func (r AnswerResult) String() string {
	switch r {
	case ResultCorrect:
		return "correct"
	case ResultIncorrect:
		return "incorrect"
	default:
		return "unset"
	}
}

func (r AnswerResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// QuizState holds the four parallel per-question sequences, indexed like the
// course's quiz.
type QuizState struct {
	Answers      []string       `json:"answers"`
	Results      []AnswerResult `json:"results"`
	Explanations []string       `json:"explanations"`
	Explaining   []bool         `json:"explaining"`
}

func newQuizState(n int) QuizState {
	return QuizState{
		Answers:      make([]string, n),
		Results:      make([]AnswerResult, n),
		Explanations: make([]string, n),
		Explaining:   make([]bool, n),
	}
}

func (q QuizState) clone() QuizState {
	out := newQuizState(len(q.Answers))
	copy(out.Answers, q.Answers)
	copy(out.Results, q.Results)
	copy(out.Explanations, q.Explanations)
	copy(out.Explaining, q.Explaining)
	return out
}

// State is the session-state value object. Course is nil until a generation
// succeeds and is discarded again on language change or a new generation.
type State struct {
	Language     string         `json:"language"`
	Course       *course.Course `json:"course,omitempty"`
	Generating   bool           `json:"generating"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
	Reveal       RevealState    `json:"reveal"`
	Quiz         QuizState      `json:"quiz"`
}
