package domain

// Column names emitted by the loader. Consumers key off these exact
// strings, they double as JSON keys and matched-field names.
const (
	FieldLoanID            = "Loan_ID"
	FieldGender            = "Gender"
	FieldMarried           = "Married"
	FieldDependents        = "Dependents"
	FieldEducation         = "Education"
	FieldSelfEmployed      = "Self_Employed"
	FieldApplicantIncome   = "ApplicantIncome"
	FieldCoapplicantIncome = "CoapplicantIncome"
	FieldLoanAmount        = "LoanAmount"
	FieldLoanAmountTerm    = "Loan_Amount_Term"
	FieldCreditHistory     = "Credit_History"
	FieldPropertyArea      = "Property_Area"
	FieldLoanStatus        = "Loan_Status"
)

// Value vocabularies used by the loader.
const (
	StatusApproved    = "Y"
	StatusRejected    = "N"
	EducationGraduate = "Graduate"
	EducationNotGrad  = "Not Graduate"
	AnswerYes         = "Yes"
	AnswerNo          = "No"
	CreditHistoryGood = 1
	CreditHistoryPoor = 0
)

// LoanRecord is one loan application. It is value data owned by the store
// it was loaded into.
type LoanRecord struct {
	LoanID            string  `json:"Loan_ID"`
	Gender            string  `json:"Gender"`
	Married           string  `json:"Married"`
	Dependents        string  `json:"Dependents"`
	Education         string  `json:"Education"`
	SelfEmployed      string  `json:"Self_Employed"`
	ApplicantIncome   float64 `json:"ApplicantIncome"`
	CoapplicantIncome float64 `json:"CoapplicantIncome"`
	LoanAmount        float64 `json:"LoanAmount"`
	LoanAmountTerm    float64 `json:"Loan_Amount_Term"`
	CreditHistory     float64 `json:"Credit_History"`
	PropertyArea      string  `json:"Property_Area"`
	LoanStatus        string  `json:"Loan_Status"`
}

// Approved reports whether the application carries the approved label.
func (r LoanRecord) Approved() bool { return r.LoanStatus == StatusApproved }

// Rejected reports whether the application carries the rejected label.
func (r LoanRecord) Rejected() bool { return r.LoanStatus == StatusRejected }

// GoodCredit reports whether the credit-history flag is set.
func (r LoanRecord) GoodCredit() bool { return r.CreditHistory == CreditHistoryGood }

// SearchResult pairs a stored record with its relevance for one query.
// Record points into the store and must be treated as read-only.
type SearchResult struct {
	Record        *LoanRecord `json:"record"`
	Index         int         `json:"index"`
	Score         float64     `json:"score"`
	MatchedFields []string    `json:"relevantFields"`
}

// Statistics is a point-in-time summary of a store.
// ApprovedLoans+RejectedLoans never exceeds TotalRecords; records with an
// unrecognized status count toward the total only.
type Statistics struct {
	TotalRecords              int            `json:"totalRecords"`
	ApprovedLoans             int            `json:"approvedLoans"`
	RejectedLoans             int            `json:"rejectedLoans"`
	AverageIncome             float64        `json:"averageIncome"`
	AverageLoanAmount         float64        `json:"averageLoanAmount"`
	AverageCoapplicantIncome  float64        `json:"averageCoapplicantIncome"`
	MedianIncome              float64        `json:"medianIncome"`
	GenderDistribution        map[string]int `json:"genderDistribution"`
	EducationDistribution     map[string]int `json:"educationDistribution"`
	PropertyAreaDistribution  map[string]int `json:"propertyAreaDistribution"`
	CreditHistoryDistribution map[string]int `json:"creditHistoryDistribution"`
}

// ApprovalRate returns the approved share of all records, 0 for an empty dataset.
func (s Statistics) ApprovalRate() float64 {
	if s.TotalRecords == 0 {
		return 0
	}
	return float64(s.ApprovedLoans) / float64(s.TotalRecords)
}
