package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"loanrag/internal/domain"
)

// Supported dataset formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// DefaultSheet is read from workbooks when no sheet is configured.
const DefaultSheet = "Sheet1"

// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// FormatOf infers the dataset format from a file extension.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// LoadFile reads a CSV or XLSX dataset. sheet only applies to workbooks.
func LoadFile(path, sheet string) ([]domain.LoanRecord, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatXLSX:
		return ReadXLSX(path, sheet)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ParseCSV(f)
	}
}

// Read parses a dataset of the given format from r.
func Read(r io.Reader, format, sheet string) ([]domain.LoanRecord, error) {
	switch strings.ToLower(format) {
	case FormatCSV, "":
		return ParseCSV(r)
	case FormatXLSX:
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
		defer f.Close()
		return readWorkbook(f, sheet)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// ParseCSV reads comma-separated records with a header row.
// Empty input yields no records.
func ParseCSV(r io.Reader) ([]domain.LoanRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return FromRows(rows), nil
}

// ReadXLSX reads the given sheet (DefaultSheet when empty) of a workbook.
func ReadXLSX(path, sheet string) ([]domain.LoanRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return readWorkbook(f, sheet)
}

func readWorkbook(f *excelize.File, sheet string) ([]domain.LoanRecord, error) {
	if sheet == "" {
		sheet = DefaultSheet
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return FromRows(rows), nil
}

// FromRows maps a header row plus data rows onto records by exact column
// name. Unknown columns are ignored, blank lines skipped. Missing or
// malformed numeric cells become 0, missing text cells "".
func FromRows(rows [][]string) []domain.LoanRecord {
	records := []domain.LoanRecord{}
	if len(rows) == 0 {
		return records
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		var rec domain.LoanRecord
		for i, col := range header {
			val := ""
			if i < len(row) {
				val = strings.TrimSpace(row[i])
			}
			assign(&rec, col, val)
		}
		records = append(records, rec)
	}
	return records
}

func assign(rec *domain.LoanRecord, column, val string) {
	switch column {
	case domain.FieldLoanID:
		rec.LoanID = val
	case domain.FieldGender:
		rec.Gender = val
	case domain.FieldMarried:
		rec.Married = val
	case domain.FieldDependents:
		rec.Dependents = val
	case domain.FieldEducation:
		rec.Education = val
	case domain.FieldSelfEmployed:
		rec.SelfEmployed = val
	case domain.FieldApplicantIncome:
		rec.ApplicantIncome = number(val)
	case domain.FieldCoapplicantIncome:
		rec.CoapplicantIncome = number(val)
	case domain.FieldLoanAmount:
		rec.LoanAmount = number(val)
	case domain.FieldLoanAmountTerm:
		rec.LoanAmountTerm = number(val)
	case domain.FieldCreditHistory:
		rec.CreditHistory = number(val)
	case domain.FieldPropertyArea:
		rec.PropertyArea = val
	case domain.FieldLoanStatus:
		rec.LoanStatus = val
	}
}

func number(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
