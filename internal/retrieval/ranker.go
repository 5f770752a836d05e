package retrieval

import (
	"sort"

	"loanrag/internal/domain"
	"loanrag/internal/store"
)

// Ranker applies a Scorer to every record of a store and keeps the best.
type Ranker struct {
	scorer *Scorer
}

// NewRanker returns a ranker using scorer, or the default scorer when nil.
func NewRanker(scorer *Scorer) *Ranker {
	if scorer == nil {
		scorer = NewScorer(Config{})
	}
	return &Ranker{scorer: scorer}
}

var defaultRanker = NewRanker(nil)

// Search ranks st against query with the default scorer.
func Search(st *store.Store, query string, topK int) []domain.SearchResult {
	return defaultRanker.Search(st, query, topK)
}

// Search returns at most topK records with a non-zero score, best first.
// Equal scores keep store order. The result is never nil.
func (r *Ranker) Search(st *store.Store, query string, topK int) []domain.SearchResult {
	results := []domain.SearchResult{}
	if topK <= 0 {
		return results
	}
	q := ParseQuery(query)
	if q.Empty() {
		return results
	}
	for i, rec := range st.Records() {
		score, fields := r.scorer.ScoreQuery(q, rec)
		if score <= 0 {
			continue
		}
		results = append(results, domain.SearchResult{Record: rec, Index: i, Score: score, MatchedFields: fields})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK < len(results) {
		results = results[:topK]
	}
	return results
}
