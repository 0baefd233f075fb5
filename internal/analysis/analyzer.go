package analysis

import (
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"finlens/internal/logging"
	"finlens/internal/models"
)

// DefaultTopN is how many categories and merchants are ranked
const DefaultTopN = 5

// Analyzer turns parsed transactions into a SpendingAnalysis
type Analyzer struct {
	categorizer *Categorizer
	topN        int
	deduplicate bool
	logger      *log.Logger
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithTopN sets the length of the ranked category and merchant lists
func WithTopN(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.topN = n
		}
	}
}

// WithDeduplication drops repeated transactions, for combining overlapping statements
func WithDeduplication() Option {
	return func(a *Analyzer) { a.deduplicate = true }
}

// New creates an analyzer. A nil categorizer uses the default rules.
func New(categorizer *Categorizer, opts ...Option) *Analyzer {
	if categorizer == nil {
		categorizer = NewCategorizer()
	}
	a := &Analyzer{
		categorizer: categorizer,
		topN:        DefaultTopN,
		logger:      logging.Component("analysis"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze categorizes transactions and computes totals. Category and month
// maps list entries in the order they first appear in date order, so months
// come out chronologically.
func (a *Analyzer) Analyze(source string, transactions []models.Transaction) *models.SpendingAnalysis {
	set := models.NewTransactionSet(a.categorizer.CategorizeAll(transactions))

	removed := 0
	if a.deduplicate {
		set, removed = set.Deduplicate()
		if removed > 0 {
			a.logger.Info("removed duplicate transactions", "source", source, "count", removed)
		}
	}

	set = set.SortByDate()
	for i := range set.Transactions {
		set.Transactions[i].ComputeDerivedFields()
	}

	byCategory := newTotals()
	monthly := make(map[string]*totals)
	var months []string
	merchants := newTotals()
	merchantCounts := make(map[string]int)
	income, expenses := decimal.Zero, decimal.Zero

	for _, t := range set.Transactions {
		amount := decimal.NewFromFloat(t.Amount)
		if !t.IsExpense() {
			income = income.Add(amount)
			continue
		}

		spent := amount.Abs()
		expenses = expenses.Add(spent)
		byCategory.add(t.Category, spent)

		m, ok := monthly[t.Month]
		if !ok {
			m = newTotals()
			monthly[t.Month] = m
			months = append(months, t.Month)
		}
		m.add(t.Category, spent)

		merchant := ExtractMerchant(t.Description)
		merchants.add(merchant, spent)
		merchantCounts[merchant]++
	}

	result := &models.SpendingAnalysis{
		SourceName:         source,
		Transactions:       set.Transactions,
		SpendingByCategory: byCategory.amounts(),
		MonthlySpending:    models.NewMonthlyCategoryMap(),
		Income:             income.Round(2).InexactFloat64(),
		Expenses:           expenses.Round(2).InexactFloat64(),
		NetCashFlow:        income.Sub(expenses).Round(2).InexactFloat64(),
		DuplicatesRemoved:  removed,
	}
	if income.IsPositive() {
		result.SavingsRate = income.Sub(expenses).Div(income).Round(4).InexactFloat64()
	}
	for _, month := range months {
		result.MonthlySpending.Set(month, monthly[month].amounts())
	}

	result.TopCategories = a.topCategories(byCategory, expenses)
	result.TopMerchants = a.topMerchants(merchants, merchantCounts)
	result.RecurringPayments = DetectRecurring(set.Transactions)
	result.UnusualSpending = DetectUnusual(result.MonthlySpending)

	a.logger.Debug("analyzed statement",
		"source", source,
		"transactions", len(result.Transactions),
		"categories", result.SpendingByCategory.Len(),
		"months", result.MonthlySpending.Len())

	return result
}

func (a *Analyzer) topCategories(byCategory *totals, expenses decimal.Decimal) []models.CategorySummary {
	ranked := byCategory.ranked()
	if len(ranked) > a.topN {
		ranked = ranked[:a.topN]
	}
	summaries := make([]models.CategorySummary, 0, len(ranked))
	for _, name := range ranked {
		amount := byCategory.sums[name]
		s := models.CategorySummary{Category: name, Amount: amount.Round(2).InexactFloat64()}
		if expenses.IsPositive() {
			s.Percentage = amount.Div(expenses).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
		}
		summaries = append(summaries, s)
	}
	return summaries
}

func (a *Analyzer) topMerchants(merchants *totals, counts map[string]int) []models.MerchantSummary {
	ranked := merchants.ranked()
	if len(ranked) > a.topN {
		ranked = ranked[:a.topN]
	}
	summaries := make([]models.MerchantSummary, 0, len(ranked))
	for _, name := range ranked {
		summaries = append(summaries, models.MerchantSummary{
			Merchant: name,
			Amount:   merchants.sums[name].Round(2).InexactFloat64(),
			Count:    counts[name],
		})
	}
	return summaries
}

// totals accumulates decimal sums keyed by name in first-seen order
type totals struct {
	keys []string
	sums map[string]decimal.Decimal
}

func newTotals() *totals {
	return &totals{sums: make(map[string]decimal.Decimal)}
}

func (t *totals) add(key string, amount decimal.Decimal) {
	sum, ok := t.sums[key]
	if !ok {
		t.keys = append(t.keys, key)
	}
	t.sums[key] = sum.Add(amount)
}

func (t *totals) amounts() *models.CategoryAmountMap {
	m := models.NewCategoryAmountMap()
	for _, k := range t.keys {
		m.Set(k, t.sums[k].Round(2).InexactFloat64())
	}
	return m
}

// ranked returns keys by descending sum; ties keep first-seen order
func (t *totals) ranked() []string {
	keys := append([]string(nil), t.keys...)
	sort.SliceStable(keys, func(i, j int) bool {
		return t.sums[keys[i]].GreaterThan(t.sums[keys[j]])
	})
	return keys
}

var merchantPrefixes = []string{"purchase ", "payment to ", "pos purchase ", "debit card purchase "}

// ExtractMerchant reduces a description to a merchant name: a leading
// purchase prefix is dropped and the first three words are title cased.
func ExtractMerchant(description string) string {
	desc := strings.ToLower(strings.TrimSpace(description))
	for _, prefix := range merchantPrefixes {
		if strings.HasPrefix(desc, prefix) {
			desc = desc[len(prefix):]
			break
		}
	}

	words := strings.Fields(desc)
	if len(words) == 0 {
		return description
	}
	if len(words) > 3 {
		words = words[:3]
	}
	return cases.Title(language.AmericanEnglish).String(strings.Join(words, " "))
}
