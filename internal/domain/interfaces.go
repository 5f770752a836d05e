package domain

import "context"

// Assistant turns ranked records and dataset statistics into prose.
// Implementations may call an external text-generation service.
type Assistant interface {
	Name() string
	Answer(ctx context.Context, query string, results []SearchResult) (string, error)
	Insights(ctx context.Context, stats Statistics) (string, error)
}

// LoanService defines the operations exposed by the application core.
type LoanService interface {
	Search(query string, topK int) []SearchResult
	Statistics() Statistics
	Ask(ctx context.Context, query string) (Answer, error)
	Insights(ctx context.Context) (string, error)
}

// Answer is the assistant reply to a query together with the records it was grounded on.
type Answer struct {
	ID      string         `json:"id"`
	Query   string         `json:"query"`
	Text    string         `json:"answer"`
	Sources []string       `json:"sources"`
	Results []SearchResult `json:"results"`
}
