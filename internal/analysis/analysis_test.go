package analysis

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finlens/internal/models"
)

func txn(date, desc string, amount float64, category string) models.Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return models.Transaction{Date: d, Description: desc, Amount: amount, Category: category}
}

func TestCategorize(t *testing.T) {
	c := NewCategorizer()

	tests := []struct {
		name     string
		t        models.Transaction
		expected string
	}{
		{"existing category kept", txn("2024-01-01", "Netflix", -15, "Streaming"), "Streaming"},
		{"keyword", txn("2024-01-01", "NETFLIX.COM", -15, ""), "entertainment"},
		{"first rule wins", txn("2024-01-01", "Shell Gas Station", -40, ""), "utilities"},
		{"income on positive", txn("2024-01-01", "Employer Payroll Deposit", 2500, ""), "income"},
		{"deposit as expense", txn("2024-01-01", "Security deposit for rent", -900, ""), "housing"},
		{"no match", txn("2024-01-01", "XYZZY", -3, ""), models.Uncategorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.Categorize(&tt.t))
		})
	}
}

func TestCustomRulesMerge(t *testing.T) {
	c := NewCategorizer(
		Rule{Category: "groceries", Keywords: []string{"Aldi"}},
		Rule{Category: "pets", Keywords: []string{"petco", " "}},
		Rule{Category: "", Keywords: []string{"ignored"}},
	)

	rules := c.Rules()
	assert.Equal(t, "pets", rules[len(rules)-1].Category)
	assert.Equal(t, []string{"petco"}, rules[len(rules)-1].Keywords)

	aldi := txn("2024-01-01", "ALDI 1234", -30, "")
	assert.Equal(t, "groceries", c.Categorize(&aldi))
	petco := txn("2024-01-01", "PETCO #77", -30, "")
	assert.Equal(t, "pets", c.Categorize(&petco))

	// defaults are untouched
	assert.Len(t, DefaultRules[2].Keywords, 4)
}

func TestParseRules(t *testing.T) {
	in := `
categories:
  pets: [petco, chewy]
  groceries:
    - aldi
`
	rules, err := ParseRules(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []Rule{
		{Category: "pets", Keywords: []string{"petco", "chewy"}},
		{Category: "groceries", Keywords: []string{"aldi"}},
	}, rules)

	rules, err = ParseRules(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rules)

	_, err = ParseRules(strings.NewReader("categories: [a, b]"))
	assert.Error(t, err)

	_, err = ParseRules(strings.NewReader("categories:\n  pets: {a: b}\n"))
	assert.ErrorContains(t, err, `"pets"`)
}

func TestLoadRulesMissingFile(t *testing.T) {
	rules, err := LoadRules(t.TempDir() + "/nope.yaml")
	require.NoError(t, err)
	assert.Nil(t, rules)
}

func sampleTransactions() []models.Transaction {
	return []models.Transaction{
		txn("2024-02-03", "Whole Foods Market", -60, ""),
		txn("2024-01-15", "Acme Payroll", 3000, ""),
		txn("2024-01-02", "Monthly Rent", -1200, ""),
		txn("2024-01-05", "Whole Foods Market", -40, ""),
		txn("2024-02-01", "Monthly Rent", -1200, ""),
		txn("2024-02-10", "Purchase Blue Bottle Coffee Oakland CA", -6.5, ""),
		txn("2024-02-11", "Refund", 20, ""),
	}
}

func TestAnalyze(t *testing.T) {
	a := New(nil)
	result := a.Analyze("sample.csv", sampleTransactions())

	assert.Equal(t, "sample.csv", result.SourceName)
	assert.Equal(t, 7, result.TransactionCount())

	// spending in first-seen date order
	assert.Equal(t, []string{"housing", "groceries", "dining"}, result.SpendingByCategory.Keys())
	assert.Equal(t, []float64{2400, 100, 6.5}, result.SpendingByCategory.Values())

	assert.Equal(t, []string{"2024-01", "2024-02"}, result.MonthlySpending.Months())
	jan, _ := result.MonthlySpending.Get("2024-01")
	assert.Equal(t, []string{"housing", "groceries"}, jan.Keys())
	assert.Equal(t, []float64{1200, 40}, jan.Values())
	feb, _ := result.MonthlySpending.Get("2024-02")
	assert.Equal(t, []string{"housing", "groceries", "dining"}, feb.Keys())

	assert.Equal(t, 3020.0, result.Income)
	assert.Equal(t, 2506.5, result.Expenses)
	assert.Equal(t, 513.5, result.NetCashFlow)
	assert.InDelta(t, 0.17, result.SavingsRate, 0.0001)

	require.Len(t, result.TopCategories, 3)
	assert.Equal(t, "housing", result.TopCategories[0].Category)
	assert.Equal(t, 95.8, result.TopCategories[0].Percentage)

	require.Len(t, result.TopMerchants, 3)
	assert.Equal(t, models.MerchantSummary{Merchant: "Monthly Rent", Amount: 2400, Count: 2}, result.TopMerchants[0])
	assert.Equal(t, "Blue Bottle Coffee", result.TopMerchants[2].Merchant)
}

func TestAnalyzeDoesNotMutateInput(t *testing.T) {
	in := sampleTransactions()
	New(nil).Analyze("x", in)
	assert.Equal(t, "", in[0].Category)
	assert.Equal(t, "Whole Foods Market", in[0].Description)
}

func TestAnalyzeNoIncome(t *testing.T) {
	result := New(nil).Analyze("x", []models.Transaction{txn("2024-03-01", "Coffee", -4, "")})
	assert.Equal(t, 0.0, result.SavingsRate)
	assert.Equal(t, -4.0, result.NetCashFlow)
	assert.Equal(t, 100.0, result.TopCategories[0].Percentage)
}

func TestAnalyzeEmpty(t *testing.T) {
	result := New(nil).Analyze("empty", nil)
	assert.Equal(t, 0, result.SpendingByCategory.Len())
	assert.Equal(t, 0, result.MonthlySpending.Len())
	assert.Empty(t, result.TopCategories)
	assert.Empty(t, result.TopMerchants)
}

func TestAnalyzeTopNAndDedup(t *testing.T) {
	in := []models.Transaction{
		txn("2024-01-01", "Aa", -1, "a"),
		txn("2024-01-01", "Bb", -2, "b"),
		txn("2024-01-01", "Cc", -3, "c"),
		txn("2024-01-01", "Cc", -3, "c"),
	}

	result := New(nil, WithTopN(2), WithDeduplication()).Analyze("x", in)
	assert.Equal(t, 1, result.DuplicatesRemoved)
	assert.Equal(t, 3, result.TransactionCount())
	require.Len(t, result.TopCategories, 2)
	assert.Equal(t, "c", result.TopCategories[0].Category)
	assert.Equal(t, "b", result.TopCategories[1].Category)

	result = New(nil).Analyze("x", in)
	assert.Equal(t, 0, result.DuplicatesRemoved)
	v, _ := result.SpendingByCategory.Get("c")
	assert.Equal(t, 6.0, v)
}

func TestExtractMerchant(t *testing.T) {
	assert.Equal(t, "Blue Bottle Coffee", ExtractMerchant("POS PURCHASE blue bottle coffee #12 sf"))
	assert.Equal(t, "Netflix", ExtractMerchant("netflix"))
	assert.Equal(t, "  ", ExtractMerchant("  "))
}
