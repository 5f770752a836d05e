package retrieval

import (
	"slices"
	"strings"

	"loanrag/internal/domain"
)

// Weights are the per-field contributions to the raw score.
type Weights struct {
	Field                float64
	IdentifierBonus      float64
	ExactIdentifierBonus float64
	Numeric              float64
}

// DefaultWeights returns unit weights for every contribution.
func DefaultWeights() Weights {
	return Weights{Field: 1, IdentifierBonus: 1, ExactIdentifierBonus: 1, Numeric: 1}
}

// Config tunes a Scorer. Each zero weight falls back to its default.
type Config struct {
	Weights    Weights
	Thresholds map[string]Threshold
}

// Scorer computes the relevance of one record to a query.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	weights    Weights
	thresholds map[string]Threshold
}

// NewScorer builds a scorer from cfg.
func NewScorer(cfg Config) *Scorer {
	def := DefaultWeights()
	w := Weights{
		Field:                orDefault(cfg.Weights.Field, def.Field),
		IdentifierBonus:      orDefault(cfg.Weights.IdentifierBonus, def.IdentifierBonus),
		ExactIdentifierBonus: orDefault(cfg.Weights.ExactIdentifierBonus, def.ExactIdentifierBonus),
		Numeric:              orDefault(cfg.Weights.Numeric, def.Numeric),
	}
	th := DefaultThresholds()
	for name, t := range cfg.Thresholds {
		if _, known := th[name]; known {
			th[name] = t
		}
	}
	return &Scorer{weights: w, thresholds: th}
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// Score parses query and scores rec against it.
func (s *Scorer) Score(query string, rec *domain.LoanRecord) (float64, []string) {
	return s.ScoreQuery(ParseQuery(query), rec)
}

// ScoreQuery returns the normalized score of rec for q and the fields that
// contributed to it, in evaluation order. An empty query scores 0.
func (s *Scorer) ScoreQuery(q Query, rec *domain.LoanRecord) (float64, []string) {
	if q.Empty() || rec == nil {
		return 0, nil
	}
	var (
		raw     float64
		matched []string
	)
	add := func(name string, weight float64) {
		if weight <= 0 {
			return
		}
		raw += weight
		if !slices.Contains(matched, name) {
			matched = append(matched, name)
		}
	}

	for _, f := range searchableFields {
		text := f.render(rec)
		if text == "" {
			continue
		}
		hit, exact := false, false
		for _, term := range q.Terms {
			if termMatches(term, text, f.identifier) {
				hit = true
				if term == text {
					exact = true
				}
			}
		}
		if !hit {
			continue
		}
		weight := s.weights.Field
		if f.identifier {
			weight += s.weights.IdentifierBonus
			if exact {
				weight += s.weights.ExactIdentifierBonus
			}
		}
		add(f.name, weight)
	}

	cues := detectCues(q.Tokens)
	if len(cues) > 0 {
		for _, f := range numericFields {
			th := s.thresholds[f.name]
			for _, c := range cues {
				if c.field == f.name && f.matches(rec, c.dir, th) {
					add(f.name, s.weights.Numeric)
					break
				}
			}
		}
	}

	if raw == 0 {
		return 0, nil
	}
	return raw / float64(len(q.Terms)), matched
}

// termMatches reports whether term is a substring of the field text. Identifier
// fields also match when the text is contained in the term.
func termMatches(term, text string, identifier bool) bool {
	if strings.Contains(text, term) {
		return true
	}
	return identifier && strings.Contains(term, text)
}
