package retrieval

import "loanrag/internal/domain"

// field is one searchable column of a record. Order in searchableFields is
// evaluation order, and therefore matched-field order.
type field struct {
	name       string
	identifier bool
	render     func(r *domain.LoanRecord) string
}

var searchableFields = []field{
	{name: domain.FieldLoanID, identifier: true, render: func(r *domain.LoanRecord) string { return normalize(r.LoanID) }},
	{name: domain.FieldGender, render: func(r *domain.LoanRecord) string { return normalize(r.Gender) }},
	{name: domain.FieldMarried, render: func(r *domain.LoanRecord) string {
		return label(r.Married, map[string]string{domain.AnswerYes: "married", domain.AnswerNo: "single"})
	}},
	{name: domain.FieldDependents, render: func(r *domain.LoanRecord) string { return normalize(r.Dependents) }},
	{name: domain.FieldEducation, render: func(r *domain.LoanRecord) string { return normalize(r.Education) }},
	{name: domain.FieldSelfEmployed, render: func(r *domain.LoanRecord) string {
		return label(r.SelfEmployed, map[string]string{domain.AnswerYes: "self employed", domain.AnswerNo: "salaried"})
	}},
	{name: domain.FieldPropertyArea, render: func(r *domain.LoanRecord) string { return normalize(r.PropertyArea) }},
	{name: domain.FieldLoanStatus, render: func(r *domain.LoanRecord) string {
		return label(r.LoanStatus, map[string]string{
			domain.StatusApproved: "approved accepted",
			domain.StatusRejected: "rejected denied declined",
		})
	}},
	{name: domain.FieldCreditHistory, render: func(r *domain.LoanRecord) string {
		switch r.CreditHistory {
		case domain.CreditHistoryGood:
			return "good credit"
		case domain.CreditHistoryPoor:
			return "poor credit bad credit"
		}
		return ""
	}},
}

// label maps a raw loader value to its searchable phrase; unknown values
// stay searchable as their normalized raw text.
func label(raw string, phrases map[string]string) string {
	if p, ok := phrases[raw]; ok {
		return p
	}
	return normalize(raw)
}
