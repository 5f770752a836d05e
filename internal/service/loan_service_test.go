package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanrag/internal/assistant"
	"loanrag/internal/domain"
	"loanrag/internal/loader"
	"loanrag/internal/logging"
)

const csvData = `Loan_ID,Gender,Married,Dependents,Education,Self_Employed,ApplicantIncome,CoapplicantIncome,LoanAmount,Loan_Amount_Term,Credit_History,Property_Area,Loan_Status
LP002001,Female,No,0,Graduate,No,9000,0,200,360,1,Semiurban,Y
LP002002,Male,Yes,2,Not Graduate,Yes,1500,800,90,180,0,Rural,N
`

func newService(t *testing.T, a domain.Assistant) *LoanServiceImpl {
	t.Helper()
	if a == nil {
		a = assistant.NewOffline(0)
	}
	return NewLoanService(nil, a, 3, WithLogger(logging.New(io.Discard, "debug")))
}

func TestEmptyService(t *testing.T) {
	s := newService(t, nil)
	assert.Equal(t, 0, s.Current().Len())
	assert.Empty(t, s.Search("urban", 5))
	assert.Equal(t, 0, s.Statistics().TotalRecords)
	assert.Equal(t, 0.0, s.Statistics().ApprovalRate())
}

func TestLoadRecordsAndSearch(t *testing.T) {
	s := newService(t, nil)
	assert.Equal(t, 5, s.LoadRecords(loader.Sample()))

	res := s.Search("LP001003", 5)
	require.NotEmpty(t, res)
	assert.Equal(t, "LP001003", res[0].Record.LoanID)
	assert.Equal(t, 4, s.Statistics().ApprovedLoans)
}

func TestLoadRecordsKeepsOldSnapshot(t *testing.T) {
	s := newService(t, nil)
	s.LoadRecords(loader.Sample())
	before := s.Current()

	s.LoadRecords(nil)
	assert.Equal(t, 5, before.Len())
	assert.Equal(t, 0, s.Current().Len())
}

func TestLoadFile(t *testing.T) {
	s := newService(t, nil)
	s.LoadRecords(loader.Sample())

	path := filepath.Join(t.TempDir(), "loans.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvData), 0o644))

	n, err := s.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, s.Statistics().RejectedLoans)

	_, err = s.LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
	assert.Equal(t, 2, s.Current().Len())
}

func TestLoadReader(t *testing.T) {
	s := newService(t, nil)
	n, err := s.LoadReader(strings.NewReader(csvData), loader.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.LoadReader(strings.NewReader(csvData), "json")
	assert.ErrorIs(t, err, loader.ErrUnsupportedFormat)
	assert.Equal(t, 2, s.Current().Len())
}

func TestAsk(t *testing.T) {
	s := newService(t, nil)
	s.LoadRecords(loader.Sample())

	ans, err := s.Ask(context.Background(), "  LP001003 ")
	require.NoError(t, err)
	assert.Equal(t, "LP001003", ans.Query)
	assert.Equal(t, []string{"LP001003"}, ans.Sources)
	assert.Len(t, ans.Results, 1)
	assert.Contains(t, ans.Text, "LP001003")
	_, err = uuid.Parse(ans.ID)
	assert.NoError(t, err)
}

func TestAskRespectsTopK(t *testing.T) {
	s := newService(t, nil)
	s.LoadRecords(loader.Sample())

	ans, err := s.Ask(context.Background(), "urban")
	require.NoError(t, err)
	assert.Equal(t, []string{"LP001001", "LP001003", "LP001004"}, ans.Sources)
}

func TestAskEmptyQuery(t *testing.T) {
	s := newService(t, nil)
	_, err := s.Ask(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

type failingAssistant struct{ err error }

func (f failingAssistant) Name() string { return "failing" }

func (f failingAssistant) Answer(context.Context, string, []domain.SearchResult) (string, error) {
	return "", f.err
}

func (f failingAssistant) Insights(context.Context, domain.Statistics) (string, error) {
	return "", f.err
}

func TestAssistantErrors(t *testing.T) {
	boom := errors.New("upstream down")
	s := newService(t, failingAssistant{err: boom})
	s.LoadRecords(loader.Sample())

	_, err := s.Ask(context.Background(), "urban")
	assert.ErrorIs(t, err, boom)

	_, err = s.Insights(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestInsights(t *testing.T) {
	s := newService(t, nil)
	s.LoadRecords(loader.Sample())

	out, err := s.Insights(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out, "80.0%")
}
