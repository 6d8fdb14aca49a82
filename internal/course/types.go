// Package course defines the generated-course model, the generation calls
// against the AI gateway, and the content exporters.
package course

import "fmt"

// Quiz item types.
const (
	TypeMultipleChoice = "multiple-choice"
	TypeTrueFalse      = "true-false"
)

// Lesson is a single lesson within a course.
type Lesson struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// QuizItem is a single quiz question.
type QuizItem struct {
	Question      string   `json:"question"`
	Type          string   `json:"type"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// Course is a complete generated course. LessonSummaries is aligned 1:1 with
// Lessons by index.
type Course struct {
	Title           string     `json:"title"`
	Outline         []string   `json:"outline"`
	Lessons         []Lesson   `json:"lessons"`
	LessonSummaries []string   `json:"lessonSummaries"`
	Summary         string     `json:"summary"`
	Quiz            []QuizItem `json:"quiz"`
}

// Validate enforces the structural invariants a usable course must satisfy.
func (c *Course) Validate() error {
	if c.Title == "" {
		return fmt.Errorf("course title is empty")
	}
	if len(c.Outline) == 0 {
		return fmt.Errorf("course outline is empty")
	}
	if len(c.Lessons) == 0 {
		return fmt.Errorf("course has no lessons")
	}
	if len(c.LessonSummaries) != len(c.Lessons) {
		return fmt.Errorf("lesson summaries count %d does not match lessons count %d",
			len(c.LessonSummaries), len(c.Lessons))
	}
	if len(c.Quiz) == 0 {
		return fmt.Errorf("course has no quiz")
	}
	for i, item := range c.Quiz {
		if item.Question == "" {
			return fmt.Errorf("quiz item %d: question is empty", i)
		}
		if item.Type != TypeMultipleChoice && item.Type != TypeTrueFalse {
			return fmt.Errorf("quiz item %d: unknown type %q", i, item.Type)
		}
		if len(item.Options) == 0 {
			return fmt.Errorf("quiz item %d: no options", i)
		}
		if !contains(item.Options, item.CorrectAnswer) {
			return fmt.Errorf("quiz item %d: correct answer %q is not among the options", i, item.CorrectAnswer)
		}
	}
	return nil
}

func contains(options []string, answer string) bool {
	for _, o := range options {
		if o == answer {
			return true
		}
	}
	return false
}
