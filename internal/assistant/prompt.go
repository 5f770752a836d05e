package assistant

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"loanrag/internal/domain"
)

var printer = message.NewPrinter(language.English)

// money renders whole dollars with thousands separators, e.g. $5,849.
func money(v float64) string {
	return printer.Sprintf("$%d", int64(math.Round(v)))
}

func count(n int) string { return printer.Sprintf("%d", n) }

func percent(ratio float64) string { return fmt.Sprintf("%.1f%%", ratio*100) }

// score renders a relevance score, which can exceed 1.
func score(v float64) string { return fmt.Sprintf("%.2f", v) }

func creditLabel(r *domain.LoanRecord) string {
	if r.GoodCredit() {
		return "Good"
	}
	return "Poor"
}

func statusLabel(r *domain.LoanRecord) string {
	switch {
	case r.Approved():
		return "APPROVED"
	case r.Rejected():
		return "REJECTED"
	}
	return "UNKNOWN"
}

// BuildContext renders ranked records as the context block of a prompt.
func BuildContext(results []domain.SearchResult) string {
	var b strings.Builder
	for i, res := range results {
		r := res.Record
		fmt.Fprintf(&b, "Record %d (Score: %s):\n", i+1, score(res.Score))
		fmt.Fprintf(&b, "- Loan ID: %s\n", r.LoanID)
		fmt.Fprintf(&b, "- Gender: %s, Married: %s, Dependents: %s\n", r.Gender, r.Married, r.Dependents)
		fmt.Fprintf(&b, "- Education: %s, Self Employed: %s\n", r.Education, r.SelfEmployed)
		fmt.Fprintf(&b, "- Applicant Income: %s\n", money(r.ApplicantIncome))
		fmt.Fprintf(&b, "- Coapplicant Income: %s\n", money(r.CoapplicantIncome))
		fmt.Fprintf(&b, "- Loan Amount: %s\n", money(r.LoanAmount))
		fmt.Fprintf(&b, "- Loan Term: %g months\n", r.LoanAmountTerm)
		fmt.Fprintf(&b, "- Credit History: %s\n", creditLabel(r))
		fmt.Fprintf(&b, "- Property Area: %s\n", r.PropertyArea)
		fmt.Fprintf(&b, "- Loan Status: %s\n", statusLabel(r))
		if len(res.MatchedFields) > 0 {
			fmt.Fprintf(&b, "- Matched Fields: %s\n", strings.Join(res.MatchedFields, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// AnswerPrompt asks a text generator to answer query from the ranked records.
func AnswerPrompt(query string, results []domain.SearchResult) string {
	records := BuildContext(results)
	if records == "" {
		records = "(no matching records)\n"
	}
	return fmt.Sprintf(`You are an intelligent loan approval assistant with access to a loan dataset. Based on the user's question and the relevant loan records provided below, generate a helpful, accurate, and informative response.

User Question: %q

Relevant Loan Records:
%s
Instructions:
- Provide a comprehensive answer based on the loan data
- Include specific statistics, trends, or patterns when relevant
- If the question is about loan approval factors, explain what influences approval/rejection
- Use clear, professional language
- If asked about specific loan cases, reference the Loan IDs
- Provide actionable insights when possible

Generate a helpful response:`, query, records)
}

// InsightsPrompt asks a text generator for trends in the dataset statistics.
func InsightsPrompt(s domain.Statistics) string {
	var b strings.Builder
	b.WriteString("Based on the following loan dataset statistics, provide key insights and trends:\n\n")
	b.WriteString("Dataset Statistics:\n")
	fmt.Fprintf(&b, "- Total Records: %s\n", count(s.TotalRecords))
	fmt.Fprintf(&b, "- Approved Loans: %s\n", count(s.ApprovedLoans))
	fmt.Fprintf(&b, "- Rejected Loans: %s\n", count(s.RejectedLoans))
	fmt.Fprintf(&b, "- Approval Rate: %s\n", percent(s.ApprovalRate()))
	fmt.Fprintf(&b, "- Average Applicant Income: %s\n", money(s.AverageIncome))
	fmt.Fprintf(&b, "- Median Applicant Income: %s\n", money(s.MedianIncome))
	fmt.Fprintf(&b, "- Average Coapplicant Income: %s\n", money(s.AverageCoapplicantIncome))
	fmt.Fprintf(&b, "- Average Loan Amount: %s\n", money(s.AverageLoanAmount))
	fmt.Fprintf(&b, "- Gender Distribution: %s\n", Distribution(s.GenderDistribution))
	fmt.Fprintf(&b, "- Education Distribution: %s\n", Distribution(s.EducationDistribution))
	fmt.Fprintf(&b, "- Property Area Distribution: %s\n", Distribution(s.PropertyAreaDistribution))
	fmt.Fprintf(&b, "- Credit History Distribution: %s\n", Distribution(s.CreditHistoryDistribution))
	b.WriteString("\nProvide 3-4 key insights about loan approval patterns, trends, and factors that influence approval decisions.\n")
	return b.String()
}

// Distribution renders counts largest first, ties by name: "4 Graduate, 1 Not Graduate".
// Empty keys are shown as "Unknown".
func Distribution(d map[string]int) string {
	if len(d) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if d[keys[i]] != d[keys[j]] {
			return d[keys[i]] > d[keys[j]]
		}
		return keys[i] < keys[j]
	})
	parts := make([]string, len(keys))
	for i, k := range keys {
		name := k
		if name == "" {
			name = "Unknown"
		}
		parts[i] = count(d[k]) + " " + name
	}
	return strings.Join(parts, ", ")
}
