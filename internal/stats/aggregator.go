package stats

import (
	"strconv"

	mstats "github.com/montanaflynn/stats"

	"loanrag/internal/domain"
	"loanrag/internal/store"
)

// Credit-history buckets. Any other flag value gets its own numeric bucket.
const (
	CreditGood = "good"
	CreditPoor = "poor"
)

// Compute summarizes st in a single pass. Means and the median of an empty
// store are 0, distributions are empty but never nil.
func Compute(st *store.Store) domain.Statistics {
	out := domain.Statistics{
		TotalRecords:              st.Len(),
		GenderDistribution:        map[string]int{},
		EducationDistribution:     map[string]int{},
		PropertyAreaDistribution:  map[string]int{},
		CreditHistoryDistribution: map[string]int{},
	}
	incomes := make([]float64, 0, st.Len())
	amounts := make([]float64, 0, st.Len())
	coIncomes := make([]float64, 0, st.Len())

	for _, rec := range st.Records() {
		switch {
		case rec.Approved():
			out.ApprovedLoans++
		case rec.Rejected():
			out.RejectedLoans++
		}
		out.GenderDistribution[rec.Gender]++
		out.EducationDistribution[rec.Education]++
		out.PropertyAreaDistribution[rec.PropertyArea]++
		out.CreditHistoryDistribution[creditBucket(rec.CreditHistory)]++

		incomes = append(incomes, rec.ApplicantIncome)
		amounts = append(amounts, rec.LoanAmount)
		coIncomes = append(coIncomes, rec.CoapplicantIncome)
	}

	out.AverageIncome = mean(incomes)
	out.AverageLoanAmount = mean(amounts)
	out.AverageCoapplicantIncome = mean(coIncomes)
	out.MedianIncome = median(incomes)
	return out
}

func creditBucket(v float64) string {
	switch v {
	case domain.CreditHistoryGood:
		return CreditGood
	case domain.CreditHistoryPoor:
		return CreditPoor
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// mean is 0 for no data.
func mean(data []float64) float64 {
	m, err := mstats.Mean(data)
	if err != nil {
		return 0
	}
	return m
}

func median(data []float64) float64 {
	m, err := mstats.Median(data)
	if err != nil {
		return 0
	}
	return m
}
