package usecase

import (
	"fmt"
	"strings"
)

// excerptCap bounds how much of each reference page flows into the prompt.
const excerptCap = 400

// PromptReference is one supporting source as presented to the model.
type PromptReference struct {
	Title   string
	URL     string
	Excerpt string
}

// BuildRewritePrompt composes the rewrite instruction: the original title
// and full original content verbatim, followed by one numbered block per
// reference with a capped excerpt of its extracted text.
func BuildRewritePrompt(title, content string, refs []PromptReference) string {
	blocks := make([]string, 0, len(refs))
	for i, ref := range refs {
		blocks = append(blocks, fmt.Sprintf("%d. %s (%s)\n%s",
			i+1, ref.Title, ref.URL, excerpt(ref.Excerpt, excerptCap)))
	}

	var b strings.Builder
	b.WriteString("You are an expert editor. Rewrite the following article to improve structure, tone, and formatting.\n")
	b.WriteString("- Preserve factual accuracy.\n")
	b.WriteString("- Avoid plagiarism.\n")
	b.WriteString("- Use markdown headings and short paragraphs.\n")
	b.WriteString(fmt.Sprintf("- Add a final section titled \"References\" citing the %d supporting sources provided.\n", len(refs)))
	b.WriteString("\n")
	b.WriteString("Original Title: " + title + "\n")
	b.WriteString("Original Article:\n")
	b.WriteString(content + "\n")
	b.WriteString("\n")
	b.WriteString("Supporting Sources:\n")
	b.WriteString(strings.Join(blocks, "\n\n"))
	return b.String()
}

func excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
