package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"loanrag/internal/domain"
)

// LoanPort is the TUI-facing subset of the loan service.
type LoanPort interface {
	Statistics() domain.Statistics
	Ask(ctx context.Context, query string) (domain.Answer, error)
	Insights(ctx context.Context) (string, error)
}

type mode int

const (
	modeChat mode = iota
	modeInsights
)

const requestTimeout = 2 * time.Minute

type role string

const (
	roleUser      role = "you"
	roleAssistant role = "assistant"
)

type chatMessage struct {
	id   string
	role role
	text string
}

type answerMsg struct {
	answer domain.Answer
	err    error
}

type insightsMsg struct {
	text string
	err  error
}

// DatasetReloadedMsg tells the model the dataset changed underneath it.
type DatasetReloadedMsg struct{}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	service  LoanPort
	input    textinput.Model
	viewport viewport.Model
	messages []chatMessage
	results  []domain.SearchResult
	insights string
	summary  string
	status   string
	cursor   int
	mode     mode
	busy     bool
	ready    bool
}

// New creates a new TUI model instance.
func New(service LoanPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the loans and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service:  service,
		input:    ti,
		viewport: vp,
		summary:  statsLine(service.Statistics()),
		status:   "Loaded. Tab switches between chat and insights.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2                                    // header + summary
		totalFooterLines := 1                                    // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1 // 1 spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.refresh()
		return m, nil

	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.messages = append(m.messages, chatMessage{id: msg.answer.ID, role: roleAssistant, text: msg.answer.Text})
			m.results = msg.answer.Results
			m.cursor = 0
			m.status = fmt.Sprintf("%d matching records for %q", len(m.results), msg.answer.Query)
		}
		// Tab was pressed while the question was running.
		if m.mode == modeInsights && m.insights == "" {
			m.busy = true
			m.refresh()
			return m, m.fetchInsights()
		}
		m.refresh()
		m.viewport.GotoBottom()
		return m, nil

	case insightsMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.insights = msg.text
			m.status = "Insights ready."
		}
		m.refresh()
		return m, nil

	case DatasetReloadedMsg:
		m.summary = statsLine(m.service.Statistics())
		m.insights = ""
		m.status = "Dataset reloaded."
		if m.mode == modeInsights && !m.busy {
			m.busy = true
			m.refresh()
			return m, m.fetchInsights()
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab":
			if m.mode == modeChat {
				m.mode = modeInsights
				if m.insights == "" && !m.busy {
					m.busy = true
					m.status = "Generating insights..."
					m.refresh()
					return m, m.fetchInsights()
				}
			} else {
				m.mode = modeChat
			}
			m.refresh()
			return m, nil
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.busy && m.mode == modeChat {
				m.messages = append(m.messages, chatMessage{id: uuid.NewString(), role: roleUser, text: q})
				m.input.SetValue("")
				m.busy = true
				m.status = "Thinking..."
				m.refresh()
				return m, m.ask(q)
			}
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.refresh()
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.refresh()
				return m, nil
			}
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(q string) tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		ans, err := svc.Ask(ctx, q)
		return answerMsg{answer: ans, err: err}
	}
}

func (m Model) fetchInsights() tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		text, err := svc.Insights(ctx)
		return insightsMsg{text: text, err: err}
	}
}

func (m *Model) refresh() {
	if m.mode == modeInsights {
		m.viewport.SetContent(m.renderInsights())
		return
	}
	m.viewport.SetContent(m.renderChat())
}

// View renders the TUI layout and current content.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	title := "Loan Assistant  [chat]  insights"
	if m.mode == modeInsights {
		title = "Loan Assistant  chat  [insights]"
	}
	header := lipgloss.NewStyle().Bold(true).Render(title)
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderChat() string {
	if len(m.messages) == 0 {
		return "No questions yet. Try \"applicants with high income\" or a Loan ID such as LP001003."
	}
	var b strings.Builder
	for _, msg := range m.messages {
		style := assistantStyle
		if msg.role == roleUser {
			style = userStyle
		}
		b.WriteString(style.Render(string(msg.role)+":") + " " + msg.text + "\n\n")
	}
	if len(m.results) > 0 {
		b.WriteString(m.renderCurrentResult())
	}
	return b.String()
}

func (m Model) renderCurrentResult() string {
	r := m.results[m.cursor]
	title := fmt.Sprintf("Source %d/%d  %s  score=%.2f", m.cursor+1, len(m.results), r.Record.LoanID, r.Score)
	return title + "\n" + renderRecord(r)
}

func (m Model) renderInsights() string {
	if m.insights == "" {
		if m.busy {
			return "Generating insights..."
		}
		return "No insights yet."
	}
	return m.insights
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
)

// renderRecord lists the record's columns, highlighting the ones the query matched.
func renderRecord(r domain.SearchResult) string {
	rec := r.Record
	matched := make(map[string]bool, len(r.MatchedFields))
	for _, f := range r.MatchedFields {
		matched[f] = true
	}
	rows := []struct {
		name  string
		value string
	}{
		{domain.FieldLoanID, rec.LoanID},
		{domain.FieldGender, rec.Gender},
		{domain.FieldMarried, rec.Married},
		{domain.FieldDependents, rec.Dependents},
		{domain.FieldEducation, rec.Education},
		{domain.FieldSelfEmployed, rec.SelfEmployed},
		{domain.FieldApplicantIncome, fmt.Sprintf("%g", rec.ApplicantIncome)},
		{domain.FieldCoapplicantIncome, fmt.Sprintf("%g", rec.CoapplicantIncome)},
		{domain.FieldLoanAmount, fmt.Sprintf("%g", rec.LoanAmount)},
		{domain.FieldLoanAmountTerm, fmt.Sprintf("%g", rec.LoanAmountTerm)},
		{domain.FieldCreditHistory, fmt.Sprintf("%g", rec.CreditHistory)},
		{domain.FieldPropertyArea, rec.PropertyArea},
		{domain.FieldLoanStatus, rec.LoanStatus},
	}
	var b strings.Builder
	for _, row := range rows {
		line := fmt.Sprintf("  %-18s %s", row.name, row.value)
		if matched[row.name] {
			line = highlightStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func statsLine(s domain.Statistics) string {
	return fmt.Sprintf("%d records, %d approved, %d rejected (%.1f%% approval)",
		s.TotalRecords, s.ApprovedLoans, s.RejectedLoans, s.ApprovalRate()*100)
}
