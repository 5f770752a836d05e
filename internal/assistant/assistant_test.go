package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanrag/internal/domain"
	"loanrag/internal/loader"
	"loanrag/internal/stats"
	"loanrag/internal/store"
)

func sampleResults() []domain.SearchResult {
	recs := loader.Sample()
	return []domain.SearchResult{
		{Record: &recs[2], Index: 2, Score: 3, MatchedFields: []string{domain.FieldLoanID}},
		{Record: &recs[1], Index: 1, Score: 0.5, MatchedFields: []string{domain.FieldPropertyArea, domain.FieldLoanStatus}},
	}
}

func TestBuildContext(t *testing.T) {
	out := BuildContext(sampleResults())

	assert.Contains(t, out, "Record 1 (Score: 3.00):")
	assert.Contains(t, out, "- Loan ID: LP001003")
	assert.Contains(t, out, "- Applicant Income: $3,000")
	assert.Contains(t, out, "Record 2 (Score: 0.50):")
	assert.Contains(t, out, "- Coapplicant Income: $1,508")
	assert.Contains(t, out, "- Loan Status: REJECTED")
	assert.Contains(t, out, "- Matched Fields: Property_Area, Loan_Status")
	assert.Empty(t, BuildContext(nil))
}

func TestAnswerPrompt(t *testing.T) {
	out := AnswerPrompt("why was LP001002 rejected?", sampleResults())
	assert.Contains(t, out, `User Question: "why was LP001002 rejected?"`)
	assert.Contains(t, out, "- Loan ID: LP001002")

	empty := AnswerPrompt("anything", nil)
	assert.Contains(t, empty, "(no matching records)")
}

func TestInsightsPrompt(t *testing.T) {
	s := stats.Compute(store.New(loader.Sample()))
	out := InsightsPrompt(s)

	assert.Contains(t, out, "- Total Records: 5")
	assert.Contains(t, out, "- Approval Rate: 80.0%")
	assert.Contains(t, out, "- Average Applicant Income: $4,403")
	assert.Contains(t, out, "- Median Applicant Income: $4,583")
	assert.Contains(t, out, "- Education Distribution: 4 Graduate, 1 Not Graduate")
	assert.Contains(t, out, "- Property Area Distribution: 4 Urban, 1 Rural")
}

func TestInsightsPromptEmptyDataset(t *testing.T) {
	out := InsightsPrompt(stats.Compute(store.New(nil)))
	assert.Contains(t, out, "- Approval Rate: 0.0%")
	assert.Contains(t, out, "- Gender Distribution: none")
	assert.NotContains(t, out, "NaN")
}

func TestDistribution(t *testing.T) {
	assert.Equal(t, "none", Distribution(nil))
	assert.Equal(t, "2 Female, 2 Male, 1 Unknown", Distribution(map[string]int{"Male": 2, "Female": 2, "": 1}))
	assert.Equal(t, "1,200 Urban", Distribution(map[string]int{"Urban": 1200}))
}

func TestOfflineAnswer(t *testing.T) {
	a := NewOffline(0)
	assert.Equal(t, "offline", a.Name())

	out, err := a.Answer(context.Background(), "LP001003", sampleResults())
	require.NoError(t, err)
	assert.Contains(t, out, "Found 2 matching loan records")
	assert.Contains(t, out, "LP001003, LP001002")
	assert.Contains(t, out, "1 were approved and 1 rejected")
	assert.Contains(t, out, "The best match is LP001003 (score 3.00) on Loan_ID.")
	assert.NotContains(t, out, "%")

	out, err = a.Answer(context.Background(), "zzzz", nil)
	require.NoError(t, err)
	assert.Contains(t, out, `No loan records matched "zzzz"`)
}

func TestOfflineSentenceCap(t *testing.T) {
	out, err := NewOffline(1).Answer(context.Background(), "LP001003", sampleResults())
	require.NoError(t, err)
	assert.NotContains(t, out, "best match")
}

func TestOfflineDefaultKeepsAllInsights(t *testing.T) {
	out, err := NewOffline(0).Insights(context.Background(), stats.Compute(store.New(loader.Sample())))
	require.NoError(t, err)
	assert.Contains(t, out, "By property area: 4 Urban, 1 Rural.")
	assert.Contains(t, out, "By credit history: 5 good.")
}

func TestOfflineInsights(t *testing.T) {
	a := NewOffline(10)
	out, err := a.Insights(context.Background(), stats.Compute(store.New(loader.Sample())))
	require.NoError(t, err)
	assert.Contains(t, out, "5 loan applications with an approval rate of 80.0%")
	assert.Contains(t, out, "By credit history: 5 good.")

	out, err = a.Insights(context.Background(), stats.Compute(nil))
	require.NoError(t, err)
	assert.Contains(t, out, "empty")
}

type fakeCompleter struct {
	prompt string
	reply  string
	err    error
}

func (f *fakeCompleter) Name() string { return "fake" }

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func TestLLM(t *testing.T) {
	c := &fakeCompleter{reply: "generated"}
	l := NewLLM(c)
	assert.Equal(t, "fake", l.Name())

	out, err := l.Answer(context.Background(), "rural loans", sampleResults())
	require.NoError(t, err)
	assert.Equal(t, "generated", out)
	assert.Contains(t, c.prompt, `"rural loans"`)

	_, err = l.Insights(context.Background(), stats.Compute(store.New(loader.Sample())))
	require.NoError(t, err)
	assert.Contains(t, c.prompt, "Approval Rate: 80.0%")
}

func TestLLMWrapsError(t *testing.T) {
	boom := errors.New("boom")
	l := NewLLM(&fakeCompleter{err: boom})

	_, err := l.Answer(context.Background(), "q", nil)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "fake answer")

	_, err = l.Insights(context.Background(), domain.Statistics{})
	assert.ErrorIs(t, err, boom)
}
