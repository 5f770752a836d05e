package retrieval

import "loanrag/internal/domain"

// Numeric cue rules.
//
// A cue word ("high income", "low loan amount", "long term") followed within
// cueWindow tokens by a subject word selects a numeric field. When several
// subjects appear in the window, subjectPrecedence decides. A selected field
// matches a record whose value is at or above Threshold.High (high cues) or
// below Threshold.Low (low cues).

const cueWindow = 2

// Direction of a numeric cue.
type Direction int

const (
	High Direction = iota
	Low
)

// Threshold bounds for one numeric field.
type Threshold struct {
	High float64
	Low  float64
}

type numericField struct {
	name     string
	subjects []string
	// skipZero fields treat 0 as "missing" (the loader's default), never as low.
	skipZero bool
	value    func(r *domain.LoanRecord) float64
}

// numericFields is evaluation order for matched fields.
var numericFields = []numericField{
	{
		name:     domain.FieldApplicantIncome,
		subjects: []string{"income", "incomes", "salary", "salaries", "earning", "earnings", "earner", "earners"},
		value:    func(r *domain.LoanRecord) float64 { return r.ApplicantIncome },
	},
	{
		name:     domain.FieldCoapplicantIncome,
		subjects: []string{"coapplicant", "coapplicants", "co"},
		value:    func(r *domain.LoanRecord) float64 { return r.CoapplicantIncome },
	},
	{
		name:     domain.FieldLoanAmount,
		subjects: []string{"loan", "loans", "amount", "amounts", "borrowing"},
		skipZero: true,
		value:    func(r *domain.LoanRecord) float64 { return r.LoanAmount },
	},
	{
		name:     domain.FieldLoanAmountTerm,
		subjects: []string{"term", "terms", "tenure", "duration", "months"},
		skipZero: true,
		value:    func(r *domain.LoanRecord) float64 { return r.LoanAmountTerm },
	},
}

var subjectPrecedence = []string{
	domain.FieldLoanAmountTerm,
	domain.FieldCoapplicantIncome,
	domain.FieldApplicantIncome,
	domain.FieldLoanAmount,
}

var cueWords = map[string]Direction{
	"high": High, "higher": High, "highest": High,
	"large": High, "larger": High, "largest": High,
	"big": High, "bigger": High, "biggest": High,
	"long": High, "longer": High, "longest": High,
	"above": High, "over": High, "more": High, "rich": High,
	"low": Low, "lower": Low, "lowest": Low,
	"small": Low, "smaller": Low, "smallest": Low,
	"short": Low, "shorter": Low, "shortest": Low,
	"below": Low, "under": Low, "less": Low, "little": Low,
}

// DefaultThresholds returns the built-in bounds, keyed by column name.
func DefaultThresholds() map[string]Threshold {
	return map[string]Threshold{
		domain.FieldApplicantIncome:   {High: 5000, Low: 3000},
		domain.FieldCoapplicantIncome: {High: 2000, Low: 1000},
		domain.FieldLoanAmount:        {High: 150, Low: 100},
		domain.FieldLoanAmountTerm:    {High: 360, Low: 360},
	}
}

type cue struct {
	field string
	dir   Direction
}

func numericByName(name string) (numericField, bool) {
	for _, f := range numericFields {
		if f.name == name {
			return f, true
		}
	}
	return numericField{}, false
}

// detectCues scans the ordered query tokens for cue/subject pairs.
func detectCues(tokens []string) []cue {
	var out []cue
	for i, tok := range tokens {
		dir, ok := cueWords[tok]
		if !ok {
			continue
		}
		end := min(i+1+cueWindow, len(tokens))
		window := tokens[i+1 : end]
		for _, name := range subjectPrecedence {
			f, _ := numericByName(name)
			if containsAny(window, f.subjects) {
				c := cue{field: name, dir: dir}
				if !containsCue(out, c) {
					out = append(out, c)
				}
				break
			}
		}
	}
	return out
}

func (f numericField) matches(r *domain.LoanRecord, dir Direction, th Threshold) bool {
	v := f.value(r)
	if f.skipZero && v == 0 {
		return false
	}
	if dir == High {
		return v >= th.High
	}
	return v < th.Low
}

func containsAny(haystack, needles []string) bool {
	for _, h := range haystack {
		for _, n := range needles {
			if h == n {
				return true
			}
		}
	}
	return false
}

func containsCue(cues []cue, c cue) bool {
	for _, x := range cues {
		if x == c {
			return true
		}
	}
	return false
}
