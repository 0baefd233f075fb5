package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Uncategorized is used when a statement row carries no category and no rule matched
const Uncategorized = "other"

// Transaction represents a single statement line.
// Negative amounts are expenses, positive amounts are income.
type Transaction struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	SourceFile  string    `json:"source_file,omitempty"`
	Hash        string    `json:"hash"`

	// Derived
	Month string `json:"month,omitempty"` // "2024-01"
}

// ComputeHash generates a short hash used for duplicate detection
func (t *Transaction) ComputeHash() string {
	dateStr := t.Date.Format("2006-01-02")
	desc := strings.ToLower(strings.TrimSpace(t.Description))
	amount := fmt.Sprintf("%.2f", t.Amount)

	input := fmt.Sprintf("%s|%s|%s", dateStr, desc, amount)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:8])
}

// ComputeDerivedFields populates computed fields from Date
func (t *Transaction) ComputeDerivedFields() {
	t.Month = t.Date.Format("2006-01")
	if t.Hash == "" {
		t.Hash = t.ComputeHash()
	}
}

// IsExpense reports whether the transaction is money going out
func (t *Transaction) IsExpense() bool {
	return t.Amount < 0
}

// AbsAmount returns the absolute value of the amount
func (t *Transaction) AbsAmount() float64 {
	return math.Abs(t.Amount)
}

// TransactionSet wraps a slice with filtering helpers
type TransactionSet struct {
	Transactions []Transaction
}

// NewTransactionSet creates a new TransactionSet from a slice
func NewTransactionSet(transactions []Transaction) *TransactionSet {
	return &TransactionSet{Transactions: transactions}
}

// Len returns the number of transactions
func (ts *TransactionSet) Len() int {
	return len(ts.Transactions)
}

// Expenses returns transactions with a negative amount
func (ts *TransactionSet) Expenses() *TransactionSet {
	result := &TransactionSet{}
	for _, t := range ts.Transactions {
		if t.Amount < 0 {
			result.Transactions = append(result.Transactions, t)
		}
	}
	return result
}

// FilterByCategory returns transactions matching the category (case-insensitive)
func (ts *TransactionSet) FilterByCategory(category string) *TransactionSet {
	result := &TransactionSet{}
	for _, t := range ts.Transactions {
		if strings.EqualFold(t.Category, category) {
			result.Transactions = append(result.Transactions, t)
		}
	}
	return result
}

// FilterBySearch returns transactions whose description or category contains query (case-insensitive)
func (ts *TransactionSet) FilterBySearch(query string) *TransactionSet {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return ts.Copy()
	}
	result := &TransactionSet{}
	for _, t := range ts.Transactions {
		if strings.Contains(strings.ToLower(t.Description), query) ||
			strings.Contains(strings.ToLower(t.Category), query) {
			result.Transactions = append(result.Transactions, t)
		}
	}
	return result
}

// Copy returns a set backed by a new slice
func (ts *TransactionSet) Copy() *TransactionSet {
	txns := make([]Transaction, len(ts.Transactions))
	copy(txns, ts.Transactions)
	return &TransactionSet{Transactions: txns}
}

// TotalPages returns the number of pages of perPage transactions
func (ts *TransactionSet) TotalPages(perPage int) int {
	if perPage < 1 || len(ts.Transactions) == 0 {
		return 0
	}
	return (len(ts.Transactions) + perPage - 1) / perPage
}

// Paginate returns page (1-based) of perPage transactions. Out-of-range pages are empty.
func (ts *TransactionSet) Paginate(page, perPage int) *TransactionSet {
	if page < 1 || perPage < 1 {
		return &TransactionSet{}
	}
	start := (page - 1) * perPage
	if start >= len(ts.Transactions) {
		return &TransactionSet{}
	}
	end := min(start+perPage, len(ts.Transactions))
	return &TransactionSet{Transactions: ts.Transactions[start:end]}
}

// SumAbsAmount returns the sum of absolute values
func (ts *TransactionSet) SumAbsAmount() float64 {
	var sum float64
	for _, t := range ts.Transactions {
		sum += math.Abs(t.Amount)
	}
	return sum
}

// SortByDate returns a copy sorted by date (ascending, stable)
func (ts *TransactionSet) SortByDate() *TransactionSet {
	sorted := make([]Transaction, len(ts.Transactions))
	copy(sorted, ts.Transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return &TransactionSet{Transactions: sorted}
}

// SortByDateDesc returns a copy sorted by date (descending, stable)
func (ts *TransactionSet) SortByDateDesc() *TransactionSet {
	sorted := make([]Transaction, len(ts.Transactions))
	copy(sorted, ts.Transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	return &TransactionSet{Transactions: sorted}
}

// MinDate returns the earliest transaction date
func (ts *TransactionSet) MinDate() time.Time {
	if len(ts.Transactions) == 0 {
		return time.Time{}
	}
	minDate := ts.Transactions[0].Date
	for _, t := range ts.Transactions[1:] {
		if t.Date.Before(minDate) {
			minDate = t.Date
		}
	}
	return minDate
}

// MaxDate returns the latest transaction date
func (ts *TransactionSet) MaxDate() time.Time {
	if len(ts.Transactions) == 0 {
		return time.Time{}
	}
	maxDate := ts.Transactions[0].Date
	for _, t := range ts.Transactions[1:] {
		if t.Date.After(maxDate) {
			maxDate = t.Date
		}
	}
	return maxDate
}

// Categories returns a sorted list of unique categories
func (ts *TransactionSet) Categories() []string {
	catMap := make(map[string]bool)
	for _, t := range ts.Transactions {
		cat := t.Category
		if cat == "" {
			cat = Uncategorized
		}
		catMap[cat] = true
	}

	cats := make([]string, 0, len(catMap))
	for cat := range catMap {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	return cats
}

// Deduplicate drops transactions whose hash was already seen, keeping the first
func (ts *TransactionSet) Deduplicate() (*TransactionSet, int) {
	seen := make(map[string]bool)
	result := &TransactionSet{}

	for _, t := range ts.Transactions {
		if t.Hash == "" {
			t.Hash = t.ComputeHash()
		}
		if seen[t.Hash] {
			continue
		}
		seen[t.Hash] = true
		result.Transactions = append(result.Transactions, t)
	}

	return result, len(ts.Transactions) - len(result.Transactions)
}
