package charts

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finlens/internal/models"
)

func categoryMap(pairs ...interface{}) *models.CategoryAmountMap {
	m := models.NewCategoryAmountMap()
	for i := 0; i < len(pairs); i += 2 {
		m.Set(pairs[i].(string), pairs[i+1].(float64))
	}
	return m
}

func TestProjectCategoryTotalsExample(t *testing.T) {
	p := ProjectCategoryTotals(categoryMap("Food", 50.0, "Rent", 50.0))

	assert.Equal(t, []string{"Food", "Rent"}, p.Labels)
	assert.Equal(t, []float64{50, 50}, p.Values)
	require.Len(t, p.Colors, 2)
	assert.Equal(t, Color{Hue: 0, Saturation: 70, Lightness: 60}, p.Colors[0])
	assert.Equal(t, Color{Hue: 180, Saturation: 70, Lightness: 60}, p.Colors[1])
	assert.Equal(t, "hsl(0, 70%, 60%)", p.Colors[0].String())
	assert.Equal(t, "hsl(180, 70%, 60%)", p.Colors[1].String())
}

func TestProjectCategoryTotalsEmpty(t *testing.T) {
	p := ProjectCategoryTotals(models.NewCategoryAmountMap())
	assert.NotNil(t, p.Labels)
	assert.NotNil(t, p.Values)
	assert.NotNil(t, p.Colors)
	assert.Empty(t, p.Labels)
	assert.Empty(t, p.Values)
	assert.Empty(t, p.Colors)

	p = ProjectCategoryTotals(nil)
	assert.Empty(t, p.Colors)
}

func TestProjectCategoryTotalsEvenHues(t *testing.T) {
	for n := 1; n <= 13; n++ {
		m := models.NewCategoryAmountMap()
		for i := 0; i < n; i++ {
			m.Set(fmt.Sprintf("cat-%02d", i), float64(i))
		}

		p := ProjectCategoryTotals(m)
		require.Len(t, p.Labels, n)
		require.Len(t, p.Values, n)
		require.Len(t, p.Colors, n)

		step := 360.0 / float64(n)
		for i, c := range p.Colors {
			assert.InDelta(t, float64(i)*step, c.Hue, 1e-9, "n=%d i=%d", n, i)
			assert.Equal(t, 70, c.Saturation)
			assert.Equal(t, 60, c.Lightness)
		}
	}
}

func TestProjectCategoryTotalsPassesThroughInvalidAmounts(t *testing.T) {
	p := ProjectCategoryTotals(categoryMap("Refund", -12.5, "Broken", math.NaN()))
	assert.Equal(t, -12.5, p.Values[0])
	assert.True(t, math.IsNaN(p.Values[1]))
}

func TestProjectCategoryTotalsKeepsMapOrder(t *testing.T) {
	p := ProjectCategoryTotals(categoryMap("Zeta", 1.0, "Alpha", 2.0, "Mid", 3.0))
	assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, p.Labels)
	assert.Equal(t, []float64{1, 2, 3}, p.Values)
}

func TestProjectMonthlySeriesMissingCategoryDefaultsToZero(t *testing.T) {
	monthly := models.NewMonthlyCategoryMap()
	monthly.Set("Jan", categoryMap("Food", 10.0))
	monthly.Set("Feb", categoryMap("Rent", 20.0))

	p := ProjectMonthlySeries(monthly)

	assert.Equal(t, []string{"Jan", "Feb"}, p.Months)
	require.Len(t, p.Series, 2)
	assert.Equal(t, "Food", p.Series[0].Label)
	assert.Equal(t, []float64{10, 0}, p.Series[0].Values)
	assert.Equal(t, "Rent", p.Series[1].Label)
	assert.Equal(t, []float64{0, 20}, p.Series[1].Values)
}

func TestProjectMonthlySeriesUnionOrderAndColors(t *testing.T) {
	monthly := models.NewMonthlyCategoryMap()
	monthly.Set("2024-01", categoryMap("Rent", 1000.0, "Food", 200.0))
	monthly.Set("2024-02", categoryMap("Food", 150.0, "Travel", 400.0, "Rent", 1000.0))
	monthly.Set("2024-03", categoryMap("Utilities", 90.0))

	p := ProjectMonthlySeries(monthly)

	labels := make([]string, len(p.Series))
	for i, s := range p.Series {
		labels[i] = s.Label
		assert.Len(t, s.Values, 3, "series %s", s.Label)
		assert.Equal(t, EvenHue(i, 4), s.FillColor.Hue)
		assert.Equal(t, s.FillColor.Hue, s.LineColor.Hue)
		assert.Equal(t, 60, s.FillColor.Lightness)
		assert.Equal(t, 50, s.LineColor.Lightness)
		assert.Equal(t, 70, s.LineColor.Saturation)
	}
	assert.Equal(t, []string{"Rent", "Food", "Travel", "Utilities"}, labels)
	assert.Equal(t, []float64{0, 400, 0}, p.Series[2].Values)
	assert.Equal(t, []float64{0, 0, 90}, p.Series[3].Values)
	assert.Equal(t, "hsl(90, 70%, 50%)", p.Series[1].LineColor.String())
}

func TestProjectMonthlySeriesEmpty(t *testing.T) {
	p := ProjectMonthlySeries(models.NewMonthlyCategoryMap())
	assert.Empty(t, p.Months)
	assert.Empty(t, p.Series)

	// months with no categories still count as months
	monthly := models.NewMonthlyCategoryMap()
	monthly.Set("2024-01", nil)
	p = ProjectMonthlySeries(monthly)
	assert.Equal(t, []string{"2024-01"}, p.Months)
	assert.Empty(t, p.Series)
}

func TestProjectionsAreIdempotent(t *testing.T) {
	amounts := categoryMap("Food", 10.0, "Rent", 20.0, "Fun", 5.0)
	monthly := models.NewMonthlyCategoryMap()
	monthly.Set("2024-01", categoryMap("Food", 10.0))
	monthly.Set("2024-02", categoryMap("Rent", 20.0, "Food", 3.0))

	first := ProjectCategoryTotals(amounts)
	second := ProjectCategoryTotals(amounts)
	assert.Equal(t, first, second)

	m1 := ProjectMonthlySeries(monthly)
	m2 := ProjectMonthlySeries(monthly)
	assert.Equal(t, m1, m2)

	// input untouched
	assert.Equal(t, []string{"Food", "Rent", "Fun"}, amounts.Keys())
	feb, _ := monthly.Get("2024-02")
	assert.Equal(t, []string{"Rent", "Food"}, feb.Keys())
}

func TestColorString(t *testing.T) {
	assert.Equal(t, "hsl(51.42857142857143, 70%, 60%)", FillColor(1, 7).String())
	assert.Equal(t, "hsl(120, 70%, 50%)", LineColor(1, 3).String())
	assert.Equal(t, 0.0, EvenHue(3, 0))
}
