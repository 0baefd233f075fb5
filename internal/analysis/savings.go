package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"finlens/internal/format"
	"finlens/internal/models"
)

// SubscriptionsCategory groups recurring subscription services in a SavingsPlan
const SubscriptionsCategory = "subscriptions"

// savingsThresholds is the monthly spend above which a category gets
// specific advice. Categories without a threshold only feed the general advice.
var savingsThresholds = map[string]float64{
	"dining":              300,
	"entertainment":       200,
	"shopping":            400,
	"utilities":           350,
	"transportation":      300,
	"groceries":           500,
	"housing":             2000,
	SubscriptionsCategory: 50,
}

var (
	subscriptionKeywords = []string{
		"netflix", "hulu", "disney+", "spotify", "apple music", "youtube",
		"amazon prime", "hbo", "paramount+", "peacock", "subscription",
		"membership", "annual fee",
	}
	streamingKeywords = []string{
		"netflix", "hulu", "disney", "hbo", "paramount", "peacock", "apple tv", "amazon prime video",
		"spotify", "apple music", "pandora", "tidal", "youtube music",
	}
	deliveryKeywords  = []string{"doordash", "ubereats", "grubhub", "postmates", "delivery"}
	onlineKeywords    = []string{"amazon", "ebay", "etsy", "walmart.com", "target.com", "online"}
	rideshareKeywords = []string{"uber", "lyft", "taxi", "cab"}
	fuelKeywords      = []string{"gas", "fuel", "shell", "exxon", "chevron", "bp", "marathon"}
)

// spend is one category's spending brought down to a monthly figure
type spend struct {
	category      string
	monthly       float64
	months        float64
	transactions  []models.Transaction
	subscriptions []models.RecurringPayment
}

// matching returns the monthly spend and the count of transactions whose
// description contains one of keywords
func (s spend) matching(keywords []string) (float64, int) {
	var total float64
	n := 0
	for _, t := range s.transactions {
		if containsAny(strings.ToLower(t.Description), keywords) {
			total += t.AbsAmount()
			n++
		}
	}
	return total / s.months, n
}

type strategy func(s spend) []models.SavingsRecommendation

var strategies = map[string]strategy{
	"dining":              diningAdvice,
	"entertainment":       entertainmentAdvice,
	"shopping":            shoppingAdvice,
	"utilities":           utilitiesAdvice,
	"transportation":      transportationAdvice,
	"groceries":           groceriesAdvice,
	"housing":             housingAdvice,
	SubscriptionsCategory: subscriptionAdvice,
}

// RecommendSavings suggests where spending could be cut. Category spending is
// averaged over the months in the statement and compared with a monthly
// threshold; categories above it get specific advice. General budgeting
// advice is added when fewer than three specific recommendations apply.
func RecommendSavings(a *models.SpendingAnalysis) models.SavingsPlan {
	months := a.MonthlySpending.Len()
	if months == 0 {
		months = 1
	}
	perMonth := float64(months)

	byCategory := make(map[string][]models.Transaction)
	for _, t := range a.Transactions {
		if t.IsExpense() {
			byCategory[t.Category] = append(byCategory[t.Category], t)
		}
	}

	var spends []spend
	a.SpendingByCategory.Each(func(category string, amount float64) {
		spends = append(spends, spend{
			category:     category,
			monthly:      amount / perMonth,
			months:       perMonth,
			transactions: byCategory[category],
		})
	})

	subs := subscriptionServices(a.RecurringPayments)
	if _, ok := a.SpendingByCategory.Get(SubscriptionsCategory); !ok && len(subs) > 0 {
		var total float64
		for _, p := range subs {
			total += p.Amount
		}
		spends = append(spends, spend{category: SubscriptionsCategory, monthly: total, months: perMonth})
	}

	var recs []models.SavingsRecommendation
	for i := range spends {
		s := spends[i]
		if s.category == IncomeCategory || s.category == "investments" {
			continue
		}
		threshold, ok := savingsThresholds[s.category]
		if !ok || s.monthly <= threshold {
			continue
		}
		if s.category == SubscriptionsCategory {
			s.subscriptions = subs
		}
		recs = append(recs, strategies[s.category](s)...)
	}

	if len(recs) < 3 {
		recs = append(recs, generalAdvice(spends)...)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].PotentialSavings > recs[j].PotentialSavings
	})

	plan := models.SavingsPlan{Recommendations: make([]models.SavingsRecommendation, 0, len(recs)), Months: months}
	var total float64
	for _, r := range recs {
		r.PotentialSavings = roundCents(r.PotentialSavings)
		total += r.PotentialSavings
		plan.Recommendations = append(plan.Recommendations, r)
	}
	plan.TotalPotentialSavings = roundCents(total)
	return plan
}

// subscriptionServices picks the recurring payments that look like
// subscriptions: a subscription keyword, or a small monthly or yearly charge.
func subscriptionServices(recurring []models.RecurringPayment) []models.RecurringPayment {
	var subs []models.RecurringPayment
	for _, p := range recurring {
		if containsAny(strings.ToLower(p.Merchant), subscriptionKeywords) {
			subs = append(subs, p)
			continue
		}
		if (p.Frequency == "monthly" || p.Frequency == "yearly") && p.Amount <= 50 {
			subs = append(subs, p)
		}
	}
	return subs
}

func diningAdvice(s spend) []models.SavingsRecommendation {
	var recs []models.SavingsRecommendation
	potential := s.monthly * 0.30

	if delivery, n := s.matching(deliveryKeywords); delivery > 100 {
		saving := delivery * 0.70
		recs = append(recs, recommendation("dining", saving,
			"You spend %s a month on food delivery (%d orders). Cooking at home or picking up takeout yourself avoids delivery fees and markups.",
			money(delivery), n))
		potential -= saving
	}

	if potential > 50 {
		recs = append(recs, recommendation("dining", potential,
			"You spend %s a month eating out (%d transactions). Preparing more meals at home and bringing lunch to work would cut this down.",
			money(s.monthly), len(s.transactions)))
	}
	return recs
}

func entertainmentAdvice(s spend) []models.SavingsRecommendation {
	return []models.SavingsRecommendation{recommendation("entertainment", s.monthly*0.25,
		"You spend %s a month on entertainment. Community events, museum free days and the library cost little or nothing, and streaming plans can be shared with family.",
		money(s.monthly))}
}

func shoppingAdvice(s spend) []models.SavingsRecommendation {
	var recs []models.SavingsRecommendation
	potential := s.monthly * 0.20

	if online, n := s.matching(onlineKeywords); online > 200 {
		saving := online * 0.30
		recs = append(recs, recommendation("shopping", saving,
			"You spend %s a month on online purchases (%d transactions). Waiting 24 hours before buying anything non-essential curbs impulse buys.",
			money(online), n))
		potential -= saving
	}

	if potential > 50 {
		recs = append(recs, recommendation("shopping", potential,
			"You spend %s a month shopping (%d transactions). Shop from a list, wait for sales and consider buying used where it makes sense.",
			money(s.monthly), len(s.transactions)))
	}
	return recs
}

func utilitiesAdvice(s spend) []models.SavingsRecommendation {
	return []models.SavingsRecommendation{recommendation("utilities", s.monthly*0.15,
		"You spend %s a month on utilities. LED bulbs, a programmable thermostat and unplugging idle devices lower the bills, and providers can often be negotiated with.",
		money(s.monthly))}
}

func transportationAdvice(s spend) []models.SavingsRecommendation {
	var recs []models.SavingsRecommendation
	potential := s.monthly * 0.20

	if rides, n := s.matching(rideshareKeywords); rides > 100 {
		saving := rides * 0.50
		recs = append(recs, recommendation("transportation", saving,
			"You spend %s a month on rideshares (%d rides). Public transit, carpooling or planning trips ahead would cost less.",
			money(rides), n))
		potential -= saving
	}

	if fuel, _ := s.matching(fuelKeywords); fuel > 150 {
		saving := fuel * 0.15
		recs = append(recs, recommendation("transportation", saving,
			"You spend %s a month on fuel. Combine errands, keep the tires inflated and compare prices before filling up.",
			money(fuel)))
		potential -= saving
	}

	if potential > 30 {
		recs = append(recs, recommendation("transportation", potential,
			"You spend %s a month on transportation. Efficient routes, regular vehicle maintenance and other ways of getting around would bring it down.",
			money(s.monthly)))
	}
	return recs
}

func subscriptionAdvice(s spend) []models.SavingsRecommendation {
	if len(s.subscriptions) == 0 {
		return nil
	}

	var total, streaming float64
	streamingCount := 0
	for _, p := range s.subscriptions {
		total += p.Amount
		if containsAny(strings.ToLower(p.Merchant), streamingKeywords) {
			streaming += p.Amount
			streamingCount++
		}
	}

	var recs []models.SavingsRecommendation
	potential := total * 0.30

	if streamingCount >= 3 {
		saving := streaming * 0.50
		recs = append(recs, recommendation(SubscriptionsCategory, saving,
			"You have %d streaming subscriptions costing %s a month. Subscribing to one service at a time or sharing a family plan would halve that.",
			streamingCount, money(streaming)))
		potential -= saving
	}

	if potential > 10 {
		recs = append(recs, recommendation(SubscriptionsCategory, potential,
			"You spend %s on subscription services. Cancel the ones you rarely use and look for discounted annual billing on the rest.",
			money(total)))
	}
	return recs
}

func groceriesAdvice(s spend) []models.SavingsRecommendation {
	return []models.SavingsRecommendation{recommendation("groceries", s.monthly*0.15,
		"You spend %s a month on groceries. Meal planning, buying in bulk, store brands and loyalty programs all lower the bill.",
		money(s.monthly))}
}

func housingAdvice(s spend) []models.SavingsRecommendation {
	return []models.SavingsRecommendation{recommendation("housing", s.monthly*0.05,
		"Your housing costs %s a month. Negotiate rent at renewal, refinance if rates have dropped and review your insurance for better rates.",
		money(s.monthly))}
}

// generalAdvice applies to any statement. The subscriptions entry is
// excluded from the total because those payments are already counted in
// their own category.
func generalAdvice(spends []spend) []models.SavingsRecommendation {
	var total, debt float64
	for _, s := range spends {
		switch s.category {
		case IncomeCategory, "investments", SubscriptionsCategory:
			continue
		case "debt":
			debt = s.monthly
		}
		total += s.monthly
	}

	recs := []models.SavingsRecommendation{
		recommendation("general", total*0.05,
			"Try the 50/30/20 rule: half of income for needs, 30%% for wants and 20%% for savings and debt repayment. Reviewing expenses regularly shows where to cut back."),
	}
	if debt > 0 {
		recs = append(recs, recommendation("debt", debt*0.10,
			"You pay %s a month towards debt. Consolidating or negotiating lower rates on high-interest balances, and paying those off first, reduces what you pay in interest.",
			money(debt)))
	}
	recs = append(recs, recommendation("savings", total*0.03,
		"Set up an automatic transfer to a high-yield savings account on payday. Small amounts add up."))
	return recs
}

func recommendation(category string, saving float64, description string, args ...interface{}) models.SavingsRecommendation {
	return models.SavingsRecommendation{
		Category:         category,
		Description:      fmt.Sprintf(description, args...),
		PotentialSavings: saving,
	}
}

func money(v float64) string {
	return format.FormatCurrency(v)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
