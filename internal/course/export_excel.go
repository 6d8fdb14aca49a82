package course

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Excel renders the course as an xlsx workbook with Outline, Lessons and
// Quiz sheets.
func Excel(c *Course) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	outline := "Outline"
	if err := f.SetSheetName("Sheet1", outline); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetCellValue(outline, "A1", c.Title); err != nil {
		return nil, fmt.Errorf("write title: %w", err)
	}
	for i, point := range c.Outline {
		cell := fmt.Sprintf("A%d", i+3)
		if err := f.SetCellValue(outline, cell, point); err != nil {
			return nil, fmt.Errorf("write outline row %d: %w", i, err)
		}
	}

	lessons := "Lessons"
	if _, err := f.NewSheet(lessons); err != nil {
		return nil, fmt.Errorf("create lessons sheet: %w", err)
	}
	if err := f.SetSheetRow(lessons, "A1", &[]string{"#", "Title", "Content", "Summary"}); err != nil {
		return nil, fmt.Errorf("write lessons header: %w", err)
	}
	for i, lesson := range c.Lessons {
		summary := ""
		if i < len(c.LessonSummaries) {
			summary = c.LessonSummaries[i]
		}
		row := []any{i + 1, lesson.Title, lesson.Content, summary}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(lessons, cell, &row); err != nil {
			return nil, fmt.Errorf("write lesson row %d: %w", i, err)
		}
	}

	quiz := "Quiz"
	if _, err := f.NewSheet(quiz); err != nil {
		return nil, fmt.Errorf("create quiz sheet: %w", err)
	}
	if err := f.SetSheetRow(quiz, "A1", &[]string{"#", "Question", "Type", "Options", "Correct Answer"}); err != nil {
		return nil, fmt.Errorf("write quiz header: %w", err)
	}
	for i, item := range c.Quiz {
		row := []any{i + 1, item.Question, item.Type, strings.Join(item.Options, " | "), item.CorrectAnswer}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(quiz, cell, &row); err != nil {
			return nil, fmt.Errorf("write quiz row %d: %w", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
