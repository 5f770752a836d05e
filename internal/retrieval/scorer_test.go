package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"loanrag/internal/domain"
	"loanrag/internal/loader"
)

func sampleRecord(t *testing.T, id string) *domain.LoanRecord {
	t.Helper()
	for _, r := range loader.Sample() {
		if r.LoanID == id {
			return &r
		}
	}
	t.Fatalf("no sample record %s", id)
	return nil
}

func TestScoreEmptyQuery(t *testing.T) {
	s := NewScorer(Config{})
	rec := sampleRecord(t, "LP001001")
	for _, q := range []string{"", "   ", "?!", "the of and"} {
		score, fields := s.Score(q, rec)
		assert.Zero(t, score, q)
		assert.Empty(t, fields, q)
	}
}

func TestScoreNilRecord(t *testing.T) {
	score, fields := NewScorer(Config{}).Score("urban", nil)
	assert.Zero(t, score)
	assert.Nil(t, fields)
}

func TestScoreIdentifier(t *testing.T) {
	s := NewScorer(Config{})

	score, fields := s.Score("LP001003", sampleRecord(t, "LP001003"))
	assert.Equal(t, 3.0, score)
	assert.Equal(t, []string{domain.FieldLoanID}, fields)

	// Prefix matches every identifier without the exact bonus.
	score, fields = s.Score("lp001", sampleRecord(t, "LP001004"))
	assert.Equal(t, 2.0, score)
	assert.Equal(t, []string{domain.FieldLoanID}, fields)

	score, _ = s.Score("LP001003", sampleRecord(t, "LP001001"))
	assert.Zero(t, score)
}

func TestScoreCategoricalFields(t *testing.T) {
	s := NewScorer(Config{})
	tests := []struct {
		name   string
		query  string
		id     string
		score  float64
		fields []string
	}{
		{"property area", "urban", "LP001001", 1, []string{domain.FieldPropertyArea}},
		{"status label", "approved", "LP001001", 1, []string{domain.FieldLoanStatus}},
		{"status synonym", "declined", "LP001002", 1, []string{domain.FieldLoanStatus}},
		{"status does not match other label", "rejected", "LP001001", 0, nil},
		{"married", "married", "LP001002", 1, []string{domain.FieldMarried}},
		{"single", "single", "LP001001", 1, []string{domain.FieldMarried}},
		{"self employed", "self employed", "LP001003", 0.5, []string{domain.FieldSelfEmployed}},
		{"not graduate", "not graduate", "LP001004", 0.5, []string{domain.FieldEducation}},
		{"graduate matches both education labels", "graduate", "LP001004", 1, []string{domain.FieldEducation}},
		{"good credit", "good credit", "LP001001", 0.5, []string{domain.FieldCreditHistory}},
		{"short term substring", "rb", "LP001001", 1, []string{domain.FieldPropertyArea}},
		{"two letter prefix", "ur", "LP001001", 1, []string{domain.FieldPropertyArea}},
		{"digit hits identifier and dependents", "1", "LP001002", 3, []string{domain.FieldLoanID, domain.FieldDependents}},
		{"lone letter is ignored", "u", "LP001001", 0, nil},
		{
			"fields in evaluation order",
			"rejected rural married male",
			"LP001002",
			1,
			[]string{domain.FieldGender, domain.FieldMarried, domain.FieldPropertyArea, domain.FieldLoanStatus},
		},
		{"normalized by term count", "urban approved nothing zzz", "LP001001", 0.5, []string{domain.FieldPropertyArea, domain.FieldLoanStatus}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, fields := s.Score(tt.query, sampleRecord(t, tt.id))
			assert.InDelta(t, tt.score, score, 1e-9)
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestScoreDistinctFieldCountsOnce(t *testing.T) {
	s := NewScorer(Config{})
	// Both terms hit Self_Employed: the field still contributes one weight.
	score, fields := s.Score("self employed", sampleRecord(t, "LP001003"))
	assert.Equal(t, 0.5, score)
	assert.Equal(t, []string{domain.FieldSelfEmployed}, fields)
}

func TestScoreNumericCues(t *testing.T) {
	s := NewScorer(Config{})
	tests := []struct {
		name   string
		query  string
		id     string
		score  float64
		fields []string
	}{
		{"high income hit", "high income", "LP001005", 0.5, []string{domain.FieldApplicantIncome}},
		{"high income miss", "high income", "LP001003", 0, nil},
		{"low income", "low income", "LP001004", 0.5, []string{domain.FieldApplicantIncome}},
		{"low loan amount", "low loan amount", "LP001003", 1.0 / 3, []string{domain.FieldLoanAmount}},
		{"high coapplicant income", "high co-applicant income", "LP001004", 0.25, []string{domain.FieldCoapplicantIncome}},
		{"long term", "long term", "LP001001", 0.5, []string{domain.FieldLoanAmountTerm}},
		{"short term", "short term", "LP001001", 0, nil},
		{
			"categorical before numeric",
			"urban high income",
			"LP001001",
			2.0 / 3,
			[]string{domain.FieldPropertyArea, domain.FieldApplicantIncome},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, fields := s.Score(tt.query, sampleRecord(t, tt.id))
			assert.InDelta(t, tt.score, score, 1e-9)
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestScoreZeroLoanAmountIsNotLow(t *testing.T) {
	s := NewScorer(Config{})
	rec := &domain.LoanRecord{LoanID: "LP9", LoanAmount: 0}
	score, _ := s.Score("low loan amount", rec)
	assert.Zero(t, score)
}

func TestScorerCustomConfig(t *testing.T) {
	s := NewScorer(Config{
		Weights: Weights{Field: 2, IdentifierBonus: 0, ExactIdentifierBonus: 5, Numeric: 3},
		Thresholds: map[string]Threshold{
			domain.FieldApplicantIncome: {High: 6000, Low: 1000},
			"Unknown":                   {High: 1, Low: 1},
		},
	})

	// The zero identifier bonus falls back to 1.
	score, _ := s.Score("LP001003", sampleRecord(t, "LP001003"))
	assert.Equal(t, 8.0, score)

	score, _ = s.Score("high income", sampleRecord(t, "LP001001"))
	assert.Zero(t, score, "5849 is below the raised threshold")

	score, _ = s.Score("high income", sampleRecord(t, "LP001005"))
	assert.Equal(t, 1.5, score)

	_, ok := s.thresholds["Unknown"]
	assert.False(t, ok)
}

func TestScorerPartialWeights(t *testing.T) {
	s := NewScorer(Config{Weights: Weights{Numeric: 2}})
	assert.Equal(t, Weights{Field: 1, IdentifierBonus: 1, ExactIdentifierBonus: 1, Numeric: 2}, s.weights)

	score, fields := s.Score("LP001003", sampleRecord(t, "LP001003"))
	assert.Equal(t, 3.0, score)
	assert.Equal(t, []string{domain.FieldLoanID}, fields)

	score, _ = s.Score("urban", sampleRecord(t, "LP001001"))
	assert.Equal(t, 1.0, score)

	score, _ = s.Score("high income", sampleRecord(t, "LP001005"))
	assert.Equal(t, 1.0, score)
}

func TestScoreUnknownCategoricalValues(t *testing.T) {
	s := NewScorer(Config{})
	rec := &domain.LoanRecord{LoanID: "X1", LoanStatus: "Pending", CreditHistory: 0.5, PropertyArea: "Semiurban"}

	score, fields := s.Score("pending", rec)
	assert.Equal(t, 1.0, score)
	assert.Equal(t, []string{domain.FieldLoanStatus}, fields)

	score, _ = s.Score("credit", rec)
	assert.Zero(t, score, "unknown credit flag renders empty")

	score, fields = s.Score("urban", rec)
	assert.Equal(t, 1.0, score, "substring of semiurban")
	assert.Equal(t, []string{domain.FieldPropertyArea}, fields)
}
