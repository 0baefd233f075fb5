package analysis

import (
	"math"
	"sort"
	"time"

	"finlens/internal/models"
)

// maxRecurring caps the number of recurring payments reported
const maxRecurring = 20

type cadence struct {
	name        string
	minDays     float64
	maxDays     float64
	perYear     float64
	minOccurred int
}

var cadences = []cadence{
	{"weekly", 5, 9, 52, 4},
	{"biweekly", 12, 16, 26, 4},
	{"monthly", 25, 35, 12, 3},
	{"quarterly", 85, 95, 4, 3},
	{"yearly", 350, 380, 1, 3},
}

// DetectRecurring finds expenses that repeat at a steady interval with a
// steady amount, grouped by merchant. Results are ordered by annual cost.
func DetectRecurring(transactions []models.Transaction) []models.RecurringPayment {
	groups := make(map[string][]models.Transaction)
	var order []string
	for _, t := range transactions {
		if !t.IsExpense() {
			continue
		}
		merchant := ExtractMerchant(t.Description)
		if _, ok := groups[merchant]; !ok {
			order = append(order, merchant)
		}
		groups[merchant] = append(groups[merchant], t)
	}

	recurring := []models.RecurringPayment{}
	for _, merchant := range order {
		if p, ok := recurringPayment(merchant, groups[merchant]); ok {
			recurring = append(recurring, p)
		}
	}

	sort.SliceStable(recurring, func(i, j int) bool {
		return recurring[i].AnnualCost > recurring[j].AnnualCost
	})
	if len(recurring) > maxRecurring {
		recurring = recurring[:maxRecurring]
	}
	return recurring
}

func recurringPayment(merchant string, txns []models.Transaction) (models.RecurringPayment, bool) {
	if len(txns) < 3 {
		return models.RecurringPayment{}, false
	}
	sort.SliceStable(txns, func(i, j int) bool { return txns[i].Date.Before(txns[j].Date) })

	intervals := make([]float64, 0, len(txns)-1)
	for i := 1; i < len(txns); i++ {
		intervals = append(intervals, txns[i].Date.Sub(txns[i-1].Date).Hours()/24)
	}
	sorted := append([]float64(nil), intervals...)
	sort.Float64s(sorted)
	median := sorted[len(sorted)/2]

	var sumSq float64
	for _, interval := range intervals {
		sumSq += (interval - median) * (interval - median)
	}
	stdDev := math.Sqrt(sumSq / float64(len(intervals)))
	if stdDev > 7 {
		return models.RecurringPayment{}, false
	}

	var total float64
	for _, t := range txns {
		total += t.AbsAmount()
	}
	avg := total / float64(len(txns))
	for _, t := range txns {
		if math.Abs(t.AbsAmount()-avg)/avg > 0.10 {
			return models.RecurringPayment{}, false
		}
	}

	var c *cadence
	for i := range cadences {
		if median >= cadences[i].minDays && median <= cadences[i].maxDays {
			c = &cadences[i]
			break
		}
	}
	if c == nil || len(txns) < c.minOccurred {
		return models.RecurringPayment{}, false
	}

	confidence := 1 - stdDev/median
	if confidence < 0.5 {
		return models.RecurringPayment{}, false
	}

	last := txns[len(txns)-1].Date
	return models.RecurringPayment{
		Merchant:     merchant,
		Amount:       math.Round(avg*100) / 100,
		Frequency:    c.name,
		Occurrences:  len(txns),
		LastDate:     last,
		NextExpected: last.Add(time.Duration(median*24) * time.Hour),
		AnnualCost:   math.Round(avg*c.perYear*100) / 100,
		Confidence:   math.Round(confidence*100) / 100,
	}, true
}
