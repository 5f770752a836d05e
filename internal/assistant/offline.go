package assistant

import (
	"context"
	"fmt"
	"strings"

	"loanrag/internal/domain"
)

// Offline answers from the ranked records and statistics alone, with no
// text-generation service. Output is deterministic.
type Offline struct {
	maxSentences int
}

// DefaultMaxSentences fits every sentence Answer and Insights produce.
const DefaultMaxSentences = 10

// NewOffline creates an offline assistant; maxSentences caps the length of answers.
func NewOffline(maxSentences int) *Offline {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}
	return &Offline{maxSentences: maxSentences}
}

// Name returns the identifier of this assistant implementation.
func (o *Offline) Name() string { return "offline" }

// Answer summarizes the records that matched query.
func (o *Offline) Answer(_ context.Context, query string, results []domain.SearchResult) (string, error) {
	if len(results) == 0 {
		return fmt.Sprintf("No loan records matched %q. Try a Loan ID, a property area, an education level or a phrase like \"high income\".", query), nil
	}
	approved, rejected := 0, 0
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Record.LoanID
		switch {
		case r.Record.Approved():
			approved++
		case r.Record.Rejected():
			rejected++
		}
	}
	top := results[0]
	sentences := []string{
		fmt.Sprintf("Found %s matching loan records for %q: %s.", count(len(results)), query, strings.Join(ids, ", ")),
		fmt.Sprintf("The best match is %s (score %s) on %s.", top.Record.LoanID, score(top.Score), strings.Join(top.MatchedFields, ", ")),
		fmt.Sprintf("Among these, %s were approved and %s rejected.", count(approved), count(rejected)),
		fmt.Sprintf("%s has an applicant income of %s, a loan amount of %s and %s credit history.",
			top.Record.LoanID, money(top.Record.ApplicantIncome), money(top.Record.LoanAmount), strings.ToLower(creditLabel(top.Record))),
	}
	return o.join(sentences), nil
}

// Insights describes the dataset statistics.
func (o *Offline) Insights(_ context.Context, s domain.Statistics) (string, error) {
	if s.TotalRecords == 0 {
		return "The dataset is empty, so there are no approval patterns to report.", nil
	}
	sentences := []string{
		fmt.Sprintf("The dataset holds %s loan applications with an approval rate of %s (%s approved, %s rejected).",
			count(s.TotalRecords), percent(s.ApprovalRate()), count(s.ApprovedLoans), count(s.RejectedLoans)),
		fmt.Sprintf("Applicants earn %s on average (median %s) and request %s on average.",
			money(s.AverageIncome), money(s.MedianIncome), money(s.AverageLoanAmount)),
		fmt.Sprintf("By education: %s.", Distribution(s.EducationDistribution)),
		fmt.Sprintf("By gender: %s.", Distribution(s.GenderDistribution)),
		fmt.Sprintf("By property area: %s.", Distribution(s.PropertyAreaDistribution)),
		fmt.Sprintf("By credit history: %s.", Distribution(s.CreditHistoryDistribution)),
	}
	return o.join(sentences), nil
}

func (o *Offline) join(sentences []string) string {
	if len(sentences) > o.maxSentences {
		sentences = sentences[:o.maxSentences]
	}
	return strings.Join(sentences, " ")
}
