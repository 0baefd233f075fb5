// Package charts turns spending maps into labeled, colored chart series and
// the declarative Chart.js configurations that render them.
package charts

import "finlens/internal/models"

// CategoryProjection is the pie chart series for category totals.
type CategoryProjection struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Colors []Color   `json:"colors"`
}

// Series is one category's amounts across months.
type Series struct {
	Label     string    `json:"label"`
	Values    []float64 `json:"values"`
	FillColor Color     `json:"fill_color"`
	LineColor Color     `json:"line_color"`
}

// MonthlyProjection is the stacked bar chart data for monthly spending.
type MonthlyProjection struct {
	Months []string `json:"months"`
	Series []Series `json:"series"`
}

// ProjectCategoryTotals lists categories and amounts in map order with evenly spaced colors.
// Amounts are passed through unchanged.
func ProjectCategoryTotals(amounts *models.CategoryAmountMap) CategoryProjection {
	n := amounts.Len()
	p := CategoryProjection{
		Labels: amounts.Keys(),
		Values: amounts.Values(),
		Colors: make([]Color, 0, n),
	}
	for i := 0; i < n; i++ {
		p.Colors = append(p.Colors, FillColor(i, n))
	}
	return p
}

// ProjectMonthlySeries builds one series per category seen in any month.
// Categories are ordered by first appearance scanning months in order, and a
// category missing from a month contributes 0 for that month.
func ProjectMonthlySeries(monthly *models.MonthlyCategoryMap) MonthlyProjection {
	entries := monthly.Entries()
	categories := unionCategories(entries)

	p := MonthlyProjection{
		Months: monthly.Months(),
		Series: make([]Series, 0, len(categories)),
	}

	n := len(categories)
	for i, category := range categories {
		values := make([]float64, len(entries))
		for j, e := range entries {
			values[j], _ = e.Categories.Get(category)
		}
		p.Series = append(p.Series, Series{
			Label:     category,
			Values:    values,
			FillColor: FillColor(i, n),
			LineColor: LineColor(i, n),
		})
	}
	return p
}

func unionCategories(entries []models.MonthAmounts) []string {
	seen := make(map[string]bool)
	var categories []string
	for _, e := range entries {
		for _, c := range e.Categories.Keys() {
			if !seen[c] {
				seen[c] = true
				categories = append(categories, c)
			}
		}
	}
	return categories
}
