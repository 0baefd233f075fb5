package analysis

import (
	"math"

	"finlens/internal/models"
)

const (
	// unusualDeviations is how many standard deviations above its mean a
	// month has to be before it is reported
	unusualDeviations = 1.5
	// unusualMinimum ignores small categories however much they swing
	unusualMinimum = 50.0
)

type categoryStats struct {
	mean, stdDev float64
}

// DetectUnusual reports, per month, the categories whose spending exceeded
// their mean across months by more than 1.5 population standard deviations
// and more than $50. Categories seen in fewer than two months have no
// baseline and are never reported. Fewer than two months yields no results.
func DetectUnusual(monthly *models.MonthlyCategoryMap) []models.UnusualMonth {
	unusual := []models.UnusualMonth{}
	if monthly.Len() < 2 {
		return unusual
	}

	history := make(map[string][]float64)
	for _, m := range monthly.Entries() {
		m.Categories.Each(func(category string, amount float64) {
			history[category] = append(history[category], amount)
		})
	}

	stats := make(map[string]categoryStats, len(history))
	for category, amounts := range history {
		if len(amounts) < 2 {
			continue
		}
		stats[category] = newCategoryStats(amounts)
	}

	for _, m := range monthly.Entries() {
		var flagged []models.UnusualCategory
		m.Categories.Each(func(category string, amount float64) {
			s, ok := stats[category]
			if !ok || amount <= unusualMinimum || amount <= s.mean+unusualDeviations*s.stdDev {
				return
			}
			flagged = append(flagged, models.UnusualCategory{
				Category:        category,
				Amount:          amount,
				Average:         math.Round(s.mean*100) / 100,
				PercentIncrease: math.Round((amount-s.mean)/s.mean*10000) / 100,
			})
		})
		if len(flagged) > 0 {
			unusual = append(unusual, models.UnusualMonth{Month: m.Month, Categories: flagged})
		}
	}
	return unusual
}

func newCategoryStats(amounts []float64) categoryStats {
	var sum float64
	for _, a := range amounts {
		sum += a
	}
	mean := sum / float64(len(amounts))

	var sumSq float64
	for _, a := range amounts {
		sumSq += (a - mean) * (a - mean)
	}
	return categoryStats{mean: mean, stdDev: math.Sqrt(sumSq / float64(len(amounts)))}
}
