// Package analysis categorizes statement transactions and summarizes spending.
package analysis

import (
	"strings"

	"finlens/internal/models"
)

// IncomeCategory is assigned to positive transactions matching an income keyword
const IncomeCategory = "income"

// Rule maps a category to the description keywords that select it
type Rule struct {
	Category string
	Keywords []string
}

// DefaultRules are checked in order; the first keyword hit wins.
var DefaultRules = []Rule{
	{"housing", []string{"rent", "mortgage", "property tax", "hoa", "maintenance", "repair"}},
	{"utilities", []string{"electric", "water", "gas", "internet", "phone", "cable", "utility"}},
	{"groceries", []string{"grocery", "supermarket", "food", "market"}},
	{"dining", []string{"restaurant", "cafe", "coffee", "bar", "grubhub", "doordash", "ubereats", "dining"}},
	{"transportation", []string{"gas", "fuel", "uber", "lyft", "taxi", "transit", "parking", "toll", "car", "auto", "vehicle"}},
	{"entertainment", []string{"movie", "theatre", "concert", "netflix", "hulu", "spotify", "disney", "subscription", "game"}},
	{"shopping", []string{"amazon", "walmart", "target", "costco", "shop", "store", "retail", "clothing", "electronics"}},
	{"health", []string{"doctor", "hospital", "medical", "pharmacy", "health", "fitness", "gym", "insurance"}},
	{"education", []string{"tuition", "school", "college", "university", "course", "book", "education"}},
	{"travel", []string{"hotel", "flight", "airline", "airbnb", "vacation", "travel"}},
	{"personal", []string{"haircut", "salon", "spa", "beauty", "personal"}},
	{IncomeCategory, []string{"salary", "deposit", "paycheck", "payment received", "direct deposit", "income", "payroll"}},
	{"investments", []string{"investment", "dividend", "interest", "stock", "bond", "etf", "mutual fund"}},
	{"debt", []string{"credit card", "loan", "debt", "interest payment"}},
	{"insurance", []string{"insurance", "premium"}},
	{"taxes", []string{"tax", "irs", "state tax"}},
	{"gifts_donations", []string{"gift", "donation", "charity", "nonprofit"}},
	{"business", []string{"business", "office", "professional", "service"}},
}

// Categorizer assigns categories from description keywords
type Categorizer struct {
	rules []Rule
}

// NewCategorizer builds a categorizer from DefaultRules merged with custom
// rules. Custom keywords for an existing category are appended to it; new
// categories are checked after the defaults.
func NewCategorizer(custom ...Rule) *Categorizer {
	c := &Categorizer{}
	for _, r := range DefaultRules {
		c.merge(r)
	}
	for _, r := range custom {
		c.merge(r)
	}
	return c
}

func (c *Categorizer) merge(r Rule) {
	name := strings.TrimSpace(r.Category)
	if name == "" {
		return
	}
	keywords := make([]string, 0, len(r.Keywords))
	for _, kw := range r.Keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	for i := range c.rules {
		if c.rules[i].Category == name {
			c.rules[i].Keywords = append(c.rules[i].Keywords, keywords...)
			return
		}
	}
	c.rules = append(c.rules, Rule{Category: name, Keywords: keywords})
}

// Rules returns the merged rules in match order
func (c *Categorizer) Rules() []Rule {
	rules := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		rules[i] = Rule{Category: r.Category, Keywords: append([]string(nil), r.Keywords...)}
	}
	return rules
}

// Categorize returns the category for a transaction. A category already on
// the transaction is kept.
func (c *Categorizer) Categorize(t *models.Transaction) string {
	if cat := strings.TrimSpace(t.Category); cat != "" {
		return cat
	}

	desc := strings.ToLower(t.Description)

	// Positive amounts prefer income before any other match
	if t.Amount > 0 {
		for _, r := range c.rules {
			if r.Category == IncomeCategory && containsAny(desc, r.Keywords) {
				return IncomeCategory
			}
		}
	}

	for _, r := range c.rules {
		if containsAny(desc, r.Keywords) {
			return r.Category
		}
	}
	return models.Uncategorized
}

// CategorizeAll returns a copy of transactions with categories filled in
func (c *Categorizer) CategorizeAll(transactions []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, len(transactions))
	for i := range transactions {
		out[i] = transactions[i]
		out[i].Category = c.Categorize(&out[i])
	}
	return out
}

// containsAny checks if text contains any of the keywords
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
