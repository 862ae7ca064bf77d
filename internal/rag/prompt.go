package rag

import (
	"fmt"
	"strings"

	"docqa-ai/internal/service"
)

const (
	contextPlaceholder  = "{context}"
	questionPlaceholder = "{question}"
)

// PromptTemplate renders retrieved passages and a question into a grounding
// prompt. A constructed template is guaranteed to contain both placeholders.
type PromptTemplate struct {
	raw string
}

// NewPromptTemplate validates the template once, at configuration time.
func NewPromptTemplate(raw string) (*PromptTemplate, error) {
	if !strings.Contains(raw, contextPlaceholder) || !strings.Contains(raw, questionPlaceholder) {
		return nil, fmt.Errorf("%w: template must contain %s and %s",
			service.ErrTemplate, contextPlaceholder, questionPlaceholder)
	}
	return &PromptTemplate{raw: raw}, nil
}

// Render substitutes the passages and question into the template. Passage
// texts are concatenated in their given order, separated by blank lines; an
// empty passage list leaves the context slot empty so the model answers from
// nothing rather than the call short-circuiting.
func (t *PromptTemplate) Render(passages []Passage, question string) string {
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}
	contextBlock := strings.Join(texts, "\n\n")

	prompt := strings.ReplaceAll(t.raw, contextPlaceholder, contextBlock)
	return strings.ReplaceAll(prompt, questionPlaceholder, question)
}
