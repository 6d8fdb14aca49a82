package course

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/geeddi-ai/geeddi-server/internal/ai"
	"github.com/geeddi-ai/geeddi-server/internal/i18n"
)

// ErrorKind classifies generation failures for the session state machine.
type ErrorKind int

const (
	// ErrKindRequest covers network and provider errors.
	ErrKindRequest ErrorKind = iota
	// ErrKindParse covers malformed JSON and schema violations.
	ErrKindParse
	// ErrKindInvalid covers structurally valid JSON that breaks course invariants.
	ErrKindInvalid
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindRequest:
		return "request"
	case ErrKindParse:
		return "parse"
	case ErrKindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// GenerationError wraps a generation failure with its kind.
type GenerationError struct {
	Kind ErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("course generation (%s): %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Completer is the slice of the AI gateway the generator needs.
type Completer interface {
	Complete(ctx context.Context, req ai.CompletionRequest) (ai.CompletionResponse, error)
}

const (
	defaultCourseMaxTokens      = 8192
	defaultExplanationMaxTokens = 200
)

// Generator builds courses and answer explanations through the AI gateway.
type Generator struct {
	completer            Completer
	schema               *gojsonschema.Schema
	courseMaxTokens      int
	explanationMaxTokens int
}

// GeneratorConfig holds dependencies and tuning for a Generator.
type GeneratorConfig struct {
	Completer            Completer
	CourseMaxTokens      int // default 8192
	ExplanationMaxTokens int // default 200
}

// NewGenerator creates a course generator.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if cfg.Completer == nil {
		return nil, fmt.Errorf("completer is required")
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(courseJSONSchema))
	if err != nil {
		return nil, fmt.Errorf("compile course schema: %w", err)
	}

	courseMax := cfg.CourseMaxTokens
	if courseMax == 0 {
		courseMax = defaultCourseMaxTokens
	}
	explMax := cfg.ExplanationMaxTokens
	if explMax == 0 {
		explMax = defaultExplanationMaxTokens
	}

	return &Generator{
		completer:            cfg.Completer,
		schema:               schema,
		courseMaxTokens:      courseMax,
		explanationMaxTokens: explMax,
	}, nil
}

// Generate requests a full course about topic with all text in the given
// language. Failures carry an ErrorKind; no partial course is ever returned.
func (g *Generator) Generate(ctx context.Context, topic, lang string) (*Course, error) {
	lang = i18n.Normalize(lang)
	prompt := buildCoursePrompt(topic, lang)

	resp, err := g.completer.Complete(ctx, ai.CompletionRequest{
		Messages:       []ai.Message{{Role: "user", Content: prompt}},
		Task:           ai.TaskCourse,
		MaxTokens:      g.courseMaxTokens,
		ResponseSchema: geminiResponseSchema(),
	})
	if err != nil {
		return nil, &GenerationError{Kind: ErrKindRequest, Err: err}
	}

	raw := stripFencing(strings.TrimSpace(resp.Content))

	result, err := g.schema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, &GenerationError{Kind: ErrKindParse, Err: fmt.Errorf("response is not JSON: %w", err)}
	}
	if !result.Valid() {
		return nil, &GenerationError{Kind: ErrKindParse, Err: fmt.Errorf("response violates course schema: %s", schemaErrors(result))}
	}

	var c Course
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, &GenerationError{Kind: ErrKindParse, Err: fmt.Errorf("decode course: %w", err)}
	}
	if err := c.Validate(); err != nil {
		return nil, &GenerationError{Kind: ErrKindInvalid, Err: err}
	}

	slog.Info("course generated",
		"topic", topic,
		"language", lang,
		"lessons", len(c.Lessons),
		"quiz_items", len(c.Quiz),
		"tokens", resp.TotalTokens(),
	)
	return &c, nil
}

// Explain requests a short explanation of why the selected answer is wrong
// and the correct one is right. The response is used verbatim.
func (g *Generator) Explain(ctx context.Context, item QuizItem, selected, lang string) (string, error) {
	lang = i18n.Normalize(lang)

	prompt := fmt.Sprintf(
		`A learner answered a quiz question incorrectly.

Question: %s
Their answer: %s
Correct answer: %s

In the %s language, briefly explain why their answer is wrong and why the correct answer is right. Use at most three sentences and no markdown formatting.`,
		item.Question, selected, item.CorrectAnswer, i18n.LanguageName(lang))

	resp, err := g.completer.Complete(ctx, ai.CompletionRequest{
		Messages:  []ai.Message{{Role: "user", Content: prompt}},
		Task:      ai.TaskExplanation,
		MaxTokens: g.explanationMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("explanation request: %w", err)
	}
	return strings.TrimSpace(resp.Content), nil
}

func buildCoursePrompt(topic, lang string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a complete beginner-friendly mini course about %q.\n\n", topic)
	b.WriteString("Respond with a single JSON object only. No markdown fencing, no commentary before or after.\n")
	b.WriteString("The object must have these fields:\n")
	b.WriteString("- title: the course title\n")
	b.WriteString("- outline: 4 to 6 short bullet points covering the course\n")
	b.WriteString("- lessons: 3 to 5 lessons, each an object with title and content (2-4 paragraphs)\n")
	b.WriteString("- lessonSummaries: one short summary per lesson, in the same order as lessons\n")
	b.WriteString("- summary: a closing summary of the whole course\n")
	fmt.Fprintf(&b, "- quiz: 4 to 6 questions, each with question, type (%q or %q), options, and correctAnswer\n",
		TypeMultipleChoice, TypeTrueFalse)
	b.WriteString("\nEvery correctAnswer must be copied exactly from that question's options.\n")
	fmt.Fprintf(&b, "Write all text in the %s language.\n", i18n.LanguageName(lang))
	return b.String()
}

// stripFencing removes an accidental ```json ... ``` wrapper. Models are told
// not to fence, but occasionally do anyway.
func stripFencing(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func schemaErrors(result *gojsonschema.Result) string {
	errs := result.Errors()
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, "; ")
}
