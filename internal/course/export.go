package course

import (
	"fmt"
	"regexp"
	"strings"
)

// Format identifies an export format.
type Format string

const (
	FormatMarkdown  Format = "markdown"
	FormatPlainText Format = "plaintext"
	FormatExcel     Format = "xlsx"
)

const exportNamePrefix = "Geeddi-AI-Course-"

// ErrUnknownFormat is returned by Export for unsupported formats.
var ErrUnknownFormat = fmt.Errorf("unknown export format")

// Export serializes the course in the given format. It returns the document
// bytes, the download filename, and the MIME type.
func Export(c *Course, format Format) ([]byte, string, string, error) {
	switch format {
	case FormatMarkdown:
		return []byte(Markdown(c)), Filename(c, format), "text/markdown", nil
	case FormatPlainText:
		return []byte(PlainText(c)), Filename(c, format), "text/plain", nil
	case FormatExcel:
		data, err := Excel(c)
		if err != nil {
			return nil, "", "", err
		}
		return data, Filename(c, format), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	default:
		return nil, "", "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Markdown renders the course as a markdown document with headed sections.
func Markdown(c *Course) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", c.Title)

	b.WriteString("## Outline\n\n")
	for _, point := range c.Outline {
		fmt.Fprintf(&b, "- %s\n", point)
	}
	b.WriteString("\n")

	b.WriteString("## Lessons\n\n")
	for i, lesson := range c.Lessons {
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, lesson.Title)
		fmt.Fprintf(&b, "%s\n\n", lesson.Content)
		if i < len(c.LessonSummaries) && c.LessonSummaries[i] != "" {
			fmt.Fprintf(&b, "**In short:** %s\n\n", c.LessonSummaries[i])
		}
	}

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "%s\n\n", c.Summary)

	b.WriteString("## Quiz\n\n")
	for i, item := range c.Quiz {
		fmt.Fprintf(&b, "### Question %d\n\n", i+1)
		fmt.Fprintf(&b, "%s\n\n", item.Question)
		for _, opt := range item.Options {
			fmt.Fprintf(&b, "- %s\n", opt)
		}
		fmt.Fprintf(&b, "\n**Answer:** %s\n\n", item.CorrectAnswer)
	}

	return b.String()
}

// markdownSubs is the fixed, ordered substitution sequence used to strip
// markdown syntax for the plain-text export. The order matters: images before
// links, bold before italic. Nested or malformed markdown can leave
// artifacts; generated content is loosely structured enough that this is
// accepted.
var markdownSubs = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`), "$1"}, // images -> alt text
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`), "$1"},  // links -> link text
	{regexp.MustCompile(`(?m)^#{1,6}\s*`), ""},           // heading markers
	{regexp.MustCompile(`\*\*([^*]+)\*\*`), "$1"},        // bold (asterisks)
	{regexp.MustCompile(`__([^_]+)__`), "$1"},            // bold (underscores)
	{regexp.MustCompile(`\*([^*\n]+)\*`), "$1"},          // italic (asterisks)
	{regexp.MustCompile(`_([^_\n]+)_`), "$1"},            // italic (underscores)
	{regexp.MustCompile("`([^`]*)`"), "$1"},              // inline code
	{regexp.MustCompile(`(?m)^\s*[-*+]\s+`), ""},         // list bullets
	{regexp.MustCompile(`\n{3,}`), "\n\n"},               // collapse blank lines
}

// PlainText renders the course as plain text: the markdown rendering passed
// through the substitution sequence above.
func PlainText(c *Course) string {
	text := Markdown(c)
	for _, sub := range markdownSubs {
		text = sub.re.ReplaceAllString(text, sub.repl)
	}
	return strings.TrimSpace(text) + "\n"
}

// Filename builds the download filename from the sanitized course title.
func Filename(c *Course, format Format) string {
	ext := "md"
	switch format {
	case FormatPlainText:
		ext = "txt"
	case FormatExcel:
		ext = "xlsx"
	}
	return fmt.Sprintf("%s%s.%s", exportNamePrefix, sanitizeTitle(c.Title), ext)
}

var (
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9-_]+`)
	dashRuns    = regexp.MustCompile(`-{2,}`)
)

func sanitizeTitle(title string) string {
	s := unsafeChars.ReplaceAllString(title, "-")
	s = dashRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "Untitled"
	}
	return s
}
