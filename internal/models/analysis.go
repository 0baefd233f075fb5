package models

import "time"

// SpendingAnalysis is the result of analyzing one statement
type SpendingAnalysis struct {
	ID         string    `json:"id"`
	SourceName string    `json:"source_name"`
	CreatedAt  time.Time `json:"created_at"`

	Transactions []Transaction `json:"transactions"`

	SpendingByCategory *CategoryAmountMap  `json:"spending_by_category"`
	MonthlySpending    *MonthlyCategoryMap `json:"monthly_spending"`

	Income      float64 `json:"income"`
	Expenses    float64 `json:"expenses"`
	NetCashFlow float64 `json:"net_cash_flow"`
	SavingsRate float64 `json:"savings_rate"` // fraction of income, 0 when there is no income

	TopCategories []CategorySummary `json:"top_categories"`
	TopMerchants  []MerchantSummary `json:"top_merchants"`

	RecurringPayments []RecurringPayment `json:"recurring_payments"`
	UnusualSpending   []UnusualMonth     `json:"unusual_spending"`

	DuplicatesRemoved int `json:"duplicates_removed"`
}

// TransactionCount returns the number of analyzed transactions
func (a *SpendingAnalysis) TransactionCount() int {
	return len(a.Transactions)
}

// CategorySummary represents spending in a category
type CategorySummary struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// MerchantSummary represents spending at a merchant
type MerchantSummary struct {
	Merchant string  `json:"merchant"`
	Amount   float64 `json:"amount"`
	Count    int     `json:"count"`
}

// RecurringPayment is an expense repeating at a regular interval
type RecurringPayment struct {
	Merchant     string    `json:"merchant"`
	Amount       float64   `json:"amount"` // average absolute amount
	Frequency    string    `json:"frequency"`
	Occurrences  int       `json:"occurrences"`
	LastDate     time.Time `json:"last_date"`
	NextExpected time.Time `json:"next_expected"`
	AnnualCost   float64   `json:"annual_cost"`
	Confidence   float64   `json:"confidence"`
}

// UnusualMonth lists the categories that ran well above their usual level in a month
type UnusualMonth struct {
	Month      string            `json:"month"`
	Categories []UnusualCategory `json:"unusual_categories"`
}

// UnusualCategory is one category's spending in an unusual month
type UnusualCategory struct {
	Category        string  `json:"category"`
	Amount          float64 `json:"amount"`
	Average         float64 `json:"average"`
	PercentIncrease float64 `json:"percent_increase"`
}

// SavingsRecommendation is one suggestion for cutting spending. Amounts are per month.
type SavingsRecommendation struct {
	Category         string  `json:"category"`
	Description      string  `json:"description"`
	PotentialSavings float64 `json:"potential_savings"`
}

// SavingsPlan collects the recommendations for an analysis, largest saving first
type SavingsPlan struct {
	Recommendations       []SavingsRecommendation `json:"recommendations"`
	TotalPotentialSavings float64                 `json:"total_potential_savings"`
	Months                int                     `json:"months"`
}

// StatementFile describes an uploaded statement held in storage
type StatementFile struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Uploaded time.Time `json:"uploaded"`
}
