package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks docqa-ai/internal/rag Engine

import (
	"context"
	"fmt"

	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/llm"
)

// Engine provides retrieval-augmented answering over the indexed documents.
type Engine interface {
	// Ask retrieves grounding passages for the question and asks the
	// generation model for an answer based on them.
	Ask(ctx context.Context, req AskRequest) (Answer, error)
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	retriever *Retriever
	template  *PromptTemplate
	generator llm.Generator
}

// NewEngine creates a new answering engine.
func NewEngine(retriever *Retriever, template *PromptTemplate, generator llm.Generator) Engine {
	return &ragEngine{
		retriever: retriever,
		template:  template,
		generator: generator,
	}
}

// Ask answers a question grounded in retrieved passages. The returned Answer
// carries the exact passage sequence that was rendered into the prompt, in
// retrieval order. Generation failures are returned as-is; retrying is the
// caller's decision.
func (e *ragEngine) Ask(ctx context.Context, req AskRequest) (Answer, error) {
	logger := contextutil.LoggerFromContext(ctx)

	logger.InfoContext(ctx, "question received", "question_length", len(req.Question), "k", req.K)

	passages, err := e.retriever.Retrieve(ctx, req.Question, req.K)
	if err != nil {
		logger.ErrorContext(ctx, "retrieval failed", "error", err)
		return Answer{}, err
	}

	prompt := e.template.Render(passages, req.Question)

	text, err := e.generator.Complete(ctx, prompt)
	if err != nil {
		logger.ErrorContext(ctx, "generation failed", "error", err)
		return Answer{}, fmt.Errorf("failed to generate answer: %w", err)
	}

	logger.InfoContext(ctx, "question answered",
		"passages_used", len(passages),
		"answer_length", len(text))

	return Answer{
		Text:    text,
		Sources: passages,
	}, nil
}
