package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanrag/internal/domain"
	"loanrag/internal/loader"
)

type fakePort struct {
	stats    domain.Statistics
	answer   domain.Answer
	insights string
	err      error
	asked    []string
}

func (f *fakePort) Statistics() domain.Statistics { return f.stats }

func (f *fakePort) Ask(_ context.Context, q string) (domain.Answer, error) {
	f.asked = append(f.asked, q)
	a := f.answer
	a.Query = q
	return a, f.err
}

func (f *fakePort) Insights(context.Context) (string, error) { return f.insights, f.err }

func newPort() *fakePort {
	recs := loader.Sample()
	answer := domain.Answer{
		ID:      "a1",
		Text:    "LP001003 is a self-employed graduate.",
		Sources: []string{"LP001003", "LP001002"},
		Results: []domain.SearchResult{
			{Record: &recs[2], Index: 2, Score: 1, MatchedFields: []string{domain.FieldLoanID}},
			{Record: &recs[1], Index: 1, Score: 0.5, MatchedFields: []string{domain.FieldPropertyArea}},
		},
	}
	return &fakePort{
		stats:    domain.Statistics{TotalRecords: 5, ApprovedLoans: 4, RejectedLoans: 1},
		answer:   answer,
		insights: "Approval rate is 80.0%.",
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func ready(t *testing.T, port LoanPort) Model {
	t.Helper()
	m, _ := update(t, New(port), tea.WindowSizeMsg{Width: 100, Height: 60})
	return m
}

func TestViewBeforeSize(t *testing.T) {
	assert.Equal(t, "Loading...", New(newPort()).View())
}

func TestSummaryLine(t *testing.T) {
	m := ready(t, newPort())
	assert.Contains(t, m.View(), "5 records, 4 approved, 1 rejected (80.0% approval)")
}

func TestAskFlow(t *testing.T) {
	port := newPort()
	m := ready(t, port)
	m.input.SetValue("  LP001003 ")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	assert.Equal(t, "", m.input.Value())
	require.Len(t, m.messages, 1)
	assert.NotEmpty(t, m.messages[0].id)

	m, _ = update(t, m, cmd())
	assert.False(t, m.busy)
	assert.Equal(t, []string{"LP001003"}, port.asked)
	require.Len(t, m.messages, 2)

	view := m.View()
	assert.Contains(t, view, "self-employed graduate")
	assert.Contains(t, view, "Source 1/2")
	assert.Contains(t, view, "score=1.00")
	assert.Contains(t, view, `2 matching records for "LP001003"`)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.cursor)
	assert.Contains(t, m.viewport.View(), "LP001002")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, m.cursor)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 1, m.cursor)
}

func TestEnterIgnoredWhenEmpty(t *testing.T) {
	port := newPort()
	m := ready(t, port)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.busy)
	assert.Empty(t, m.messages)
}

func TestAskError(t *testing.T) {
	port := newPort()
	port.err = errors.New("upstream unavailable")
	m := ready(t, port)
	m.input.SetValue("urban")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, cmd())
	assert.Contains(t, m.status, "upstream unavailable")
	assert.Empty(t, m.results)
}

func TestInsightsTab(t *testing.T) {
	port := newPort()
	m := ready(t, port)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.NotNil(t, cmd)
	assert.Equal(t, modeInsights, m.mode)

	m, _ = update(t, m, cmd())
	assert.Contains(t, m.View(), "Approval rate is 80.0%.")

	// Cached on the second visit.
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, modeChat, m.mode)
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Nil(t, cmd)
}

func TestInsightsFetchedAfterPendingAsk(t *testing.T) {
	port := newPort()
	m := ready(t, port)
	m.input.SetValue("urban")

	m, askCmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, askCmd)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Nil(t, cmd)
	assert.Equal(t, modeInsights, m.mode)

	m, cmd = update(t, m, askCmd())
	require.NotNil(t, cmd)
	assert.True(t, m.busy)

	m, _ = update(t, m, cmd())
	assert.False(t, m.busy)
	assert.Contains(t, m.View(), "Approval rate is 80.0%.")
}

func TestDatasetReloaded(t *testing.T) {
	port := newPort()
	m := ready(t, port)
	port.stats = domain.Statistics{TotalRecords: 2, ApprovedLoans: 1, RejectedLoans: 1}

	m, cmd := update(t, m, DatasetReloadedMsg{})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "2 records, 1 approved, 1 rejected (50.0% approval)")
}

func TestQuitKeys(t *testing.T) {
	m := ready(t, newPort())
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
