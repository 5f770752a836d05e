package assistant

import (
	"context"
	"fmt"

	"loanrag/internal/domain"
)

// Completer sends a single prompt to a text-generation service.
type Completer interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// LLM builds prompts from records and statistics and hands them to a Completer.
type LLM struct {
	completer Completer
}

// NewLLM wraps c as an Assistant.
func NewLLM(c Completer) *LLM { return &LLM{completer: c} }

// Name returns the identifier of the underlying completer.
func (l *LLM) Name() string { return l.completer.Name() }

// Answer asks the completer to answer query from results.
func (l *LLM) Answer(ctx context.Context, query string, results []domain.SearchResult) (string, error) {
	out, err := l.completer.Complete(ctx, AnswerPrompt(query, results))
	if err != nil {
		return "", fmt.Errorf("%s answer: %w", l.completer.Name(), err)
	}
	return out, nil
}

// Insights asks the completer for trends in s.
func (l *LLM) Insights(ctx context.Context, s domain.Statistics) (string, error) {
	out, err := l.completer.Complete(ctx, InsightsPrompt(s))
	if err != nil {
		return "", fmt.Errorf("%s insights: %w", l.completer.Name(), err)
	}
	return out, nil
}
