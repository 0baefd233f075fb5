package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finlens/internal/models"
)

func categoriesOf(plan models.SavingsPlan) []string {
	out := make([]string, len(plan.Recommendations))
	for i, r := range plan.Recommendations {
		out[i] = r.Category
	}
	return out
}

func savingsOf(plan models.SavingsPlan) []float64 {
	out := make([]float64, len(plan.Recommendations))
	for i, r := range plan.Recommendations {
		out[i] = r.PotentialSavings
	}
	return out
}

func singleMonth(amounts map[string]float64, order ...string) *models.SpendingAnalysis {
	cats := models.NewCategoryAmountMap()
	for _, c := range order {
		cats.Set(c, amounts[c])
	}
	monthly := models.NewMonthlyCategoryMap()
	monthly.Set("2024-01", cats)
	return &models.SpendingAnalysis{SpendingByCategory: cats, MonthlySpending: monthly}
}

func TestRecommendSavingsDining(t *testing.T) {
	result := New(nil).Analyze("dining.csv", []models.Transaction{
		txn("2024-01-05", "DoorDash Order", -150, ""),
		txn("2024-01-12", "Corner Restaurant", -400, ""),
		txn("2024-01-15", "Acme Payroll", 3000, ""),
	})

	plan := RecommendSavings(result)
	assert.Equal(t, 1, plan.Months)
	assert.Equal(t, []string{"dining", "dining", "general", "savings"}, categoriesOf(plan))
	assert.Equal(t, []float64{105, 60, 27.5, 16.5}, savingsOf(plan))
	assert.InDelta(t, 209, plan.TotalPotentialSavings, 0.001)

	assert.Contains(t, plan.Recommendations[0].Description, "$150.00 a month on food delivery (1 orders)")
	assert.Contains(t, plan.Recommendations[1].Description, "(2 transactions)")
}

func TestRecommendSavingsAveragesOverMonths(t *testing.T) {
	result := New(nil).Analyze("dining.csv", []models.Transaction{
		txn("2024-01-10", "Corner Restaurant", -200, ""),
		txn("2024-02-10", "Corner Restaurant", -200, ""),
	})

	// 200 a month is under the dining threshold
	plan := RecommendSavings(result)
	assert.Equal(t, 2, plan.Months)
	assert.Equal(t, []string{"general", "savings"}, categoriesOf(plan))
	assert.Equal(t, []float64{10, 6}, savingsOf(plan))
}

func TestRecommendSavingsSubscriptions(t *testing.T) {
	a := singleMonth(map[string]float64{"entertainment": 46, "housing": 1450}, "entertainment", "housing")
	a.RecurringPayments = []models.RecurringPayment{
		{Merchant: "Oakwood Apartments", Amount: 1450, Frequency: "monthly"},
		{Merchant: "Netflix", Amount: 16, Frequency: "monthly"},
		{Merchant: "Hulu", Amount: 18, Frequency: "monthly"},
		{Merchant: "Spotify Premium", Amount: 12, Frequency: "monthly"},
		{Merchant: "Icloud Storage", Amount: 4, Frequency: "monthly"},
		{Merchant: "Costco Membership", Amount: 120, Frequency: "yearly"},
	}

	plan := RecommendSavings(a)
	assert.Equal(t, []string{"general", "savings", "subscriptions", "subscriptions"}, categoriesOf(plan))
	assert.Equal(t, []float64{74.8, 44.88, 28, 23}, savingsOf(plan))
	assert.InDelta(t, 170.68, plan.TotalPotentialSavings, 0.001)
	assert.Contains(t, plan.Recommendations[2].Description, "$170.00 on subscription services")
	assert.Contains(t, plan.Recommendations[3].Description, "3 streaming subscriptions costing $46.00")
}

func TestRecommendSavingsDebt(t *testing.T) {
	plan := RecommendSavings(singleMonth(map[string]float64{"debt": 300, "dining": 100}, "debt", "dining"))
	assert.Equal(t, []string{"debt", "general", "savings"}, categoriesOf(plan))
	assert.Equal(t, []float64{30, 20, 12}, savingsOf(plan))
	assert.Contains(t, plan.Recommendations[0].Description, "$300.00 a month towards debt")
}

func TestRecommendSavingsSkipsGeneralAdvice(t *testing.T) {
	plan := RecommendSavings(singleMonth(
		map[string]float64{"entertainment": 250, "utilities": 400, "groceries": 600},
		"entertainment", "utilities", "groceries"))

	assert.Equal(t, []string{"groceries", "entertainment", "utilities"}, categoriesOf(plan))
	assert.Equal(t, []float64{90, 62.5, 60}, savingsOf(plan))
}

func TestRecommendSavingsTransportation(t *testing.T) {
	var txns []models.Transaction
	for _, date := range []string{"2024-01-03", "2024-01-09", "2024-01-17", "2024-01-24"} {
		txns = append(txns,
			txn(date, "Lyft Ride", -40, "transportation"),
			txn(date, "Chevron Fuel", -60, "transportation"))
	}

	plan := RecommendSavings(New(nil).Analyze("car.csv", txns))
	require.NotEmpty(t, plan.Recommendations)
	assert.Equal(t, "transportation", plan.Recommendations[0].Category)
	assert.Equal(t, 80.0, plan.Recommendations[0].PotentialSavings)
	assert.Contains(t, plan.Recommendations[0].Description, "(4 rides)")
	assert.Contains(t, categoriesOf(plan), "general")
}

func TestRecommendSavingsEmpty(t *testing.T) {
	plan := RecommendSavings(&models.SpendingAnalysis{})
	assert.Equal(t, []string{"general", "savings"}, categoriesOf(plan))
	assert.Equal(t, 0.0, plan.TotalPotentialSavings)
}
