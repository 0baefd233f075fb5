package parsers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finlens/internal/logging"
	"finlens/internal/models"
)

// Standard column names.
const (
	colDate        = "Date"
	colDescription = "Description"
	colAmount      = "Amount"
	colCategory    = "Category"
	colDebit       = "Debit"
	colCredit      = "Credit"
)

// columnMappings maps lowercased bank export headers to our standard names
var columnMappings = map[string][]string{
	colDate: {
		"date", "transaction date", "posted date", "post date",
		"trans date", "posting date", "value date",
	},
	colDescription: {
		"description", "memo", "details", "payee", "name",
		"transaction description", "merchant", "narrative", "transaction",
	},
	colAmount: {
		"amount", "value", "transaction amount", "sum",
	},
	colCategory: {
		"category", "type", "category name",
	},
	colDebit: {
		"debit", "withdrawal", "withdrawals", "money out", "expense",
	},
	colCredit: {
		"credit", "deposit", "deposits", "money in", "income",
	},
}

// normalizeColumnName maps a header to its standard name, or returns it trimmed
func normalizeColumnName(col string) string {
	col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
	lower := strings.ToLower(col)
	for standard, variants := range columnMappings {
		for _, variant := range variants {
			if lower == variant {
				return standard
			}
		}
	}
	return col
}

// matchOrder is the order the substring pass claims columns in. Debit and
// Credit go before Amount so "Debit Amount" is not taken as a signed amount.
var matchOrder = []string{colDate, colDebit, colCredit, colAmount, colDescription, colCategory}

// buildColumnIndex maps standard names to header positions. Exact header
// names are matched first and the first match wins. Standard names still
// missing after that are matched against headers that contain one of their
// variants, so "Amount (USD)" maps to Amount.
func buildColumnIndex(header []string) map[string]int {
	colIndex := make(map[string]int)
	claimed := make(map[int]bool)
	for i, col := range header {
		normalized := normalizeColumnName(col)
		if _, exists := colIndex[normalized]; !exists {
			colIndex[normalized] = i
			if _, standard := columnMappings[normalized]; standard {
				claimed[i] = true
			}
		}
	}

	for _, standard := range matchOrder {
		if _, ok := colIndex[standard]; ok {
			continue
		}
	variants:
		for _, variant := range columnMappings[standard] {
			for i, col := range header {
				if claimed[i] {
					continue
				}
				if strings.Contains(strings.ToLower(col), variant) {
					colIndex[standard] = i
					claimed[i] = true
					break variants
				}
			}
		}
	}
	return colIndex
}

// inferColumns fills Date, Description and Amount from the contents of the
// sample rows when the header did not name them. Columns are visited left to
// right and each one is claimed at most once.
func inferColumns(colIndex map[string]int, width int, sample [][]string) {
	if len(sample) == 0 {
		return
	}
	claimed := make(map[int]bool)
	for name, i := range colIndex {
		if _, standard := columnMappings[name]; standard {
			claimed[i] = true
		}
	}
	_, hasDate := colIndex[colDate]
	_, hasDesc := colIndex[colDescription]
	_, hasAmount := colIndex[colAmount]
	_, hasDebit := colIndex[colDebit]
	_, hasCredit := colIndex[colCredit]
	if hasDebit || hasCredit {
		hasAmount = true
	}

	for i := 0; i < width; i++ {
		if claimed[i] {
			continue
		}
		values := columnValues(sample, i)
		switch {
		case !hasDate && isDateColumn(values):
			colIndex[colDate], hasDate = i, true
		case !hasDesc && isDescriptionColumn(values):
			colIndex[colDescription], hasDesc = i, true
		case !hasAmount && isAmountColumn(values):
			colIndex[colAmount], hasAmount = i, true
		}
	}
}

// columnValues returns the non-empty values of column i
func columnValues(rows [][]string, i int) []string {
	var values []string
	for _, row := range rows {
		if i < len(row) {
			if v := strings.TrimSpace(row[i]); v != "" {
				values = append(values, v)
			}
		}
	}
	return values
}

func isDateColumn(values []string) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if parseDate(v).IsZero() {
			return false
		}
	}
	return true
}

// isAmountColumn reports whether more than 70% of the values are amounts
func isAmountColumn(values []string) bool {
	if len(values) == 0 {
		return false
	}
	n := 0
	for _, v := range values {
		if _, err := parseAmount(v); err == nil {
			n++
		}
	}
	return float64(n)/float64(len(values)) > 0.7
}

// isDescriptionColumn reports whether the values are free text averaging
// more than ten characters.
func isDescriptionColumn(values []string) bool {
	if len(values) == 0 || isAmountColumn(values) {
		return false
	}
	total := 0
	for _, v := range values {
		total += len(v)
	}
	return float64(total)/float64(len(values)) > 10
}

// layout describes where the fields of a statement row live
type layout struct {
	index          map[string]int
	useDebitCredit bool
}

// sampleRows is how many data rows newLayout looks at to infer columns
const sampleRows = 20

// newLayout resolves the statement columns from the header, falling back to
// the contents of the data rows for any required column the header does not
// name.
func newLayout(header []string, rows [][]string) (*layout, error) {
	l := &layout{index: buildColumnIndex(header)}

	var sample [][]string
	for _, row := range rows {
		if len(sample) == sampleRows {
			break
		}
		if !isBlank(row) {
			sample = append(sample, row)
		}
	}
	inferColumns(l.index, len(header), sample)

	_, hasAmount := l.index[colAmount]
	_, hasDebit := l.index[colDebit]
	_, hasCredit := l.index[colCredit]
	l.useDebitCredit = !hasAmount && (hasDebit || hasCredit)

	if _, ok := l.index[colDate]; !ok {
		return nil, fmt.Errorf("missing required column: Date (tried: %v)", columnMappings[colDate])
	}
	if _, ok := l.index[colDescription]; !ok {
		return nil, fmt.Errorf("missing required column: Description (tried: %v)", columnMappings[colDescription])
	}
	if !hasAmount && !l.useDebitCredit {
		return nil, fmt.Errorf("missing required column: Amount or Debit/Credit (tried: %v)", columnMappings[colAmount])
	}
	return l, nil
}

func (l *layout) field(record []string, name string) string {
	idx, ok := l.index[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// transaction builds one transaction from a data row. ok is false for rows to skip.
func (l *layout) transaction(record []string, source string, line int) (models.Transaction, bool) {
	logger := logging.Component("parsers")

	if isBlank(record) {
		return models.Transaction{}, false
	}

	t := models.Transaction{SourceFile: source}

	dateStr := l.field(record, colDate)
	t.Date = parseDate(dateStr)
	if t.Date.IsZero() {
		logger.Warn("could not parse date", "source", source, "line", line, "value", dateStr)
		return t, false
	}

	var err error
	if l.useDebitCredit {
		t.Amount, err = l.debitCredit(record)
	} else {
		t.Amount, err = parseAmount(l.field(record, colAmount))
	}
	if err != nil {
		logger.Warn("could not parse amount", "source", source, "line", line, "err", err)
		return t, false
	}

	t.Description = l.field(record, colDescription)
	t.Category = l.field(record, colCategory)
	t.ComputeDerivedFields()
	return t, true
}

// debitCredit combines Debit and Credit columns into a single amount.
// Credits are positive (income), debits are negative (expenses).
func (l *layout) debitCredit(record []string) (float64, error) {
	credit, err := parseAmount(l.field(record, colCredit))
	if err != nil {
		return 0, fmt.Errorf("credit: %w", err)
	}
	debit, err := parseAmount(l.field(record, colDebit))
	if err != nil {
		return 0, fmt.Errorf("debit: %w", err)
	}
	if debit != 0 {
		return -abs(debit), nil
	}
	return abs(credit), nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"01-02-2006",
	"01-02-06",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// parseDate tries the known statement date formats
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

var errBadAmount = errors.New("not a monetary amount")

// parseAmount parses a statement amount, handling currency symbols, thousands
// separators and accounting parentheses. Empty input is zero.
func parseAmount(s string) (float64, error) {
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	// (100.00) -> -100.00
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + strings.TrimSpace(s[1:len(s)-1])
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errBadAmount, s)
	}
	return d.Round(2).InexactFloat64(), nil
}
