package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"loanrag/internal/domain"
	"loanrag/internal/loader"
	"loanrag/internal/retrieval"
	"loanrag/internal/stats"
	"loanrag/internal/store"
)

// ErrEmptyQuery is returned by Ask when the question has no content.
var ErrEmptyQuery = errors.New("empty query")

// DefaultTopK is the number of records handed to the assistant when none is configured.
const DefaultTopK = 5

// LoanServiceImpl ties the record store, ranker and assistant together.
type LoanServiceImpl struct {
	data      *store.Handle
	ranker    *retrieval.Ranker
	assistant domain.Assistant
	topK      int
	sheet     string
	logger    *slog.Logger
}

var _ domain.LoanService = (*LoanServiceImpl)(nil)

// Option customizes a LoanServiceImpl.
type Option func(*LoanServiceImpl)

// WithLogger sets the logger used for load and query events.
func WithLogger(l *slog.Logger) Option {
	return func(s *LoanServiceImpl) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSheet sets the worksheet read from XLSX files.
func WithSheet(sheet string) Option {
	return func(s *LoanServiceImpl) { s.sheet = sheet }
}

// NewLoanService creates a service over an empty store.
func NewLoanService(ranker *retrieval.Ranker, assistant domain.Assistant, topK int, opts ...Option) *LoanServiceImpl {
	if ranker == nil {
		ranker = retrieval.NewRanker(nil)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	s := &LoanServiceImpl{
		data:      store.NewHandle(nil),
		ranker:    ranker,
		assistant: assistant,
		topK:      topK,
		sheet:     loader.DefaultSheet,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// LoadRecords replaces the dataset with records and returns the new record count.
func (s *LoanServiceImpl) LoadRecords(records []domain.LoanRecord) int {
	st := store.New(records)
	prev := s.data.Replace(st)
	s.logger.Info("dataset replaced", "records", st.Len(), "previous", prev.Len())
	return st.Len()
}

// LoadFile reads a CSV or XLSX file and replaces the dataset with its records.
// On error the current dataset is kept.
func (s *LoanServiceImpl) LoadFile(path string) (int, error) {
	records, err := loader.LoadFile(path, s.sheet)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", path, err)
	}
	s.logger.Debug("dataset file read", "path", path)
	return s.LoadRecords(records), nil
}

// LoadReader reads records in the given format from r and replaces the dataset.
func (s *LoanServiceImpl) LoadReader(r io.Reader, format string) (int, error) {
	records, err := loader.Read(r, format, s.sheet)
	if err != nil {
		return 0, fmt.Errorf("load %s upload: %w", format, err)
	}
	return s.LoadRecords(records), nil
}

// Current returns the store serving queries right now.
func (s *LoanServiceImpl) Current() *store.Store { return s.data.Current() }

// Search ranks the current dataset against query.
func (s *LoanServiceImpl) Search(query string, topK int) []domain.SearchResult {
	res := s.ranker.Search(s.data.Current(), query, topK)
	s.logger.Debug("search", "query", query, "top_k", topK, "results", len(res))
	return res
}

// Statistics summarizes the current dataset.
func (s *LoanServiceImpl) Statistics() domain.Statistics {
	return stats.Compute(s.data.Current())
}

// Ask retrieves the best matching records for query and has the assistant answer from them.
func (s *LoanServiceImpl) Ask(ctx context.Context, query string) (domain.Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Answer{}, ErrEmptyQuery
	}
	results := s.Search(query, s.topK)
	text, err := s.assistant.Answer(ctx, query, results)
	if err != nil {
		s.logger.Error("assistant answer failed", "assistant", s.assistant.Name(), "err", err)
		return domain.Answer{}, err
	}
	sources := make([]string, len(results))
	for i, r := range results {
		sources[i] = r.Record.LoanID
	}
	return domain.Answer{
		ID:      uuid.NewString(),
		Query:   query,
		Text:    text,
		Sources: sources,
		Results: results,
	}, nil
}

// Insights has the assistant describe the statistics of the current dataset.
func (s *LoanServiceImpl) Insights(ctx context.Context) (string, error) {
	text, err := s.assistant.Insights(ctx, s.Statistics())
	if err != nil {
		s.logger.Error("assistant insights failed", "assistant", s.assistant.Name(), "err", err)
		return "", err
	}
	return text, nil
}
