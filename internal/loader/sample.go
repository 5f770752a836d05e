package loader

import "loanrag/internal/domain"

// Sample returns the built-in five-record dataset used when no file is configured.
func Sample() []domain.LoanRecord {
	return []domain.LoanRecord{
		{
			LoanID: "LP001001", Gender: "Male", Married: "No", Dependents: "0",
			Education: "Graduate", SelfEmployed: "No",
			ApplicantIncome: 5849, CoapplicantIncome: 0, LoanAmount: 128, LoanAmountTerm: 360,
			CreditHistory: 1, PropertyArea: "Urban", LoanStatus: "Y",
		},
		{
			LoanID: "LP001002", Gender: "Male", Married: "Yes", Dependents: "1",
			Education: "Graduate", SelfEmployed: "No",
			ApplicantIncome: 4583, CoapplicantIncome: 1508, LoanAmount: 128, LoanAmountTerm: 360,
			CreditHistory: 1, PropertyArea: "Rural", LoanStatus: "N",
		},
		{
			LoanID: "LP001003", Gender: "Male", Married: "Yes", Dependents: "0",
			Education: "Graduate", SelfEmployed: "Yes",
			ApplicantIncome: 3000, CoapplicantIncome: 0, LoanAmount: 66, LoanAmountTerm: 360,
			CreditHistory: 1, PropertyArea: "Urban", LoanStatus: "Y",
		},
		{
			LoanID: "LP001004", Gender: "Male", Married: "Yes", Dependents: "0",
			Education: "Not Graduate", SelfEmployed: "No",
			ApplicantIncome: 2583, CoapplicantIncome: 2358, LoanAmount: 120, LoanAmountTerm: 360,
			CreditHistory: 1, PropertyArea: "Urban", LoanStatus: "Y",
		},
		{
			LoanID: "LP001005", Gender: "Male", Married: "No", Dependents: "0",
			Education: "Graduate", SelfEmployed: "No",
			ApplicantIncome: 6000, CoapplicantIncome: 0, LoanAmount: 141, LoanAmountTerm: 360,
			CreditHistory: 1, PropertyArea: "Urban", LoanStatus: "Y",
		},
	}
}
