package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finlens/internal/models"
)

func monthlyOf(months []string, amounts map[string][]float64) *models.MonthlyCategoryMap {
	m := models.NewMonthlyCategoryMap()
	for i, month := range months {
		cats := m.Month(month)
		for _, category := range []string{"housing", "groceries", "dining", "travel"} {
			values, ok := amounts[category]
			if !ok || values[i] == 0 {
				continue
			}
			cats.Set(category, values[i])
		}
	}
	return m
}

func TestDetectUnusual(t *testing.T) {
	months := []string{"2024-01", "2024-02", "2024-03", "2024-04", "2024-05"}
	monthly := monthlyOf(months, map[string][]float64{
		// flat spending is never unusual
		"housing": {1200, 1200, 1200, 1200, 1200},
		// mean 180, population std 160, threshold 420
		"groceries": {100, 100, 100, 100, 500},
		// jumps past the deviation threshold but stays under $50
		"dining": {10, 10, 10, 10, 50},
		// one month has no baseline
		"travel": {0, 0, 0, 0, 900},
	})

	got := DetectUnusual(monthly)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-05", got[0].Month)
	require.Len(t, got[0].Categories, 1)
	assert.Equal(t, models.UnusualCategory{
		Category:        "groceries",
		Amount:          500,
		Average:         180,
		PercentIncrease: 177.78,
	}, got[0].Categories[0])
}

func TestDetectUnusualThreshold(t *testing.T) {
	months := []string{"2024-01", "2024-02", "2024-03", "2024-04", "2024-05"}

	// mean 136, std 102, threshold 289: 340 is reported
	above := monthlyOf(months, map[string][]float64{"groceries": {85, 85, 85, 85, 340}})
	require.Len(t, DetectUnusual(above), 1)

	// three months cannot put one value 1.5 deviations above the mean
	short := monthlyOf(months[:3], map[string][]float64{"groceries": {100, 100, 400}})
	assert.Empty(t, DetectUnusual(short))
}

func TestDetectUnusualNeedsTwoMonths(t *testing.T) {
	one := monthlyOf([]string{"2024-01"}, map[string][]float64{"groceries": {900}})
	got := DetectUnusual(one)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, DetectUnusual(nil))
}

func TestAnalyzeReportsUnusualSpending(t *testing.T) {
	var txns []models.Transaction
	for _, date := range []string{"2024-01-04", "2024-02-04", "2024-03-04", "2024-04-04"} {
		txns = append(txns, txn(date, "Whole Foods Market", -100, ""))
	}
	txns = append(txns, txn("2024-05-04", "Whole Foods Market", -500, ""))

	result := New(nil).Analyze("groceries.csv", txns)
	require.Len(t, result.UnusualSpending, 1)
	assert.Equal(t, "2024-05", result.UnusualSpending[0].Month)
	assert.Equal(t, "groceries", result.UnusualSpending[0].Categories[0].Category)

	assert.Empty(t, New(nil).Analyze("x", sampleTransactions()).UnusualSpending)
}
