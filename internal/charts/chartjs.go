package charts

import (
	"errors"
	"fmt"
)

// Chart kinds served by the API and rendered by the page.
const (
	KindCategory = "category"
	KindMonthly  = "monthly"
)

// Chart titles shown above each chart.
const (
	CategoryChartTitle = "Spending by Category"
	MonthlyChartTitle  = "Monthly Spending by Category"
)

// Config is a declarative Chart.js chart specification.
type Config struct {
	Type    string  `json:"type"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`
}

// Data holds the x labels and datasets of a chart.
type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is one series. BackgroundColor is a single Color for bar
// datasets and a []Color for pie slices.
type Dataset struct {
	Label           string      `json:"label,omitempty"`
	Data            []float64   `json:"data"`
	BackgroundColor interface{} `json:"backgroundColor"`
	BorderColor     interface{} `json:"borderColor,omitempty"`
	BorderWidth     int         `json:"borderWidth"`
}

// Options are the chart display options.
type Options struct {
	Responsive          bool    `json:"responsive"`
	MaintainAspectRatio bool    `json:"maintainAspectRatio"`
	Scales              *Scales `json:"scales,omitempty"`
	Plugins             Plugins `json:"plugins"`
}

// Scales configures the cartesian axes.
type Scales struct {
	X Axis `json:"x"`
	Y Axis `json:"y"`
}

// Axis configures one axis.
type Axis struct {
	Stacked     bool `json:"stacked"`
	BeginAtZero bool `json:"beginAtZero,omitempty"`
}

// Plugins holds legend and title settings.
type Plugins struct {
	Legend *Legend `json:"legend,omitempty"`
	Title  Title   `json:"title"`
}

// Legend positions the chart legend.
type Legend struct {
	Position string `json:"position"`
}

// Title is the chart heading.
type Title struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

// CategoryPieConfig renders category totals as a pie chart with the legend on the right.
func CategoryPieConfig(p CategoryProjection) Config {
	return Config{
		Type: "pie",
		Data: Data{
			Labels: p.Labels,
			Datasets: []Dataset{{
				Data:            p.Values,
				BackgroundColor: p.Colors,
				BorderWidth:     1,
			}},
		},
		Options: Options{
			Responsive:          true,
			MaintainAspectRatio: false,
			Plugins: Plugins{
				Legend: &Legend{Position: "right"},
				Title:  Title{Display: true, Text: CategoryChartTitle},
			},
		},
	}
}

// MonthlyBarConfig renders monthly series as a stacked bar chart.
func MonthlyBarConfig(p MonthlyProjection) Config {
	datasets := make([]Dataset, 0, len(p.Series))
	for _, s := range p.Series {
		datasets = append(datasets, Dataset{
			Label:           s.Label,
			Data:            s.Values,
			BackgroundColor: s.FillColor,
			BorderColor:     s.LineColor,
			BorderWidth:     1,
		})
	}

	return Config{
		Type: "bar",
		Data: Data{
			Labels:   p.Months,
			Datasets: datasets,
		},
		Options: Options{
			Responsive:          true,
			MaintainAspectRatio: false,
			Scales: &Scales{
				X: Axis{Stacked: true},
				Y: Axis{Stacked: true, BeginAtZero: true},
			},
			Plugins: Plugins{
				Title: Title{Display: true, Text: MonthlyChartTitle},
			},
		},
	}
}

// ErrUnknownKind is returned by Build for kinds other than KindCategory and KindMonthly.
var ErrUnknownKind = errors.New("unknown chart kind")

// Build projects the payload into the chart of the given kind.
func Build(kind string, p *Payload) (Config, error) {
	switch kind {
	case KindCategory:
		return CategoryPieConfig(ProjectCategoryTotals(p.SpendingByCategory)), nil
	case KindMonthly:
		return MonthlyBarConfig(ProjectMonthlySeries(p.MonthlySpending)), nil
	default:
		return Config{}, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
}
