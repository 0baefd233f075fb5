package charts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"finlens/internal/models"
)

// ErrMalformedChartData matches every payload decoding failure.
var ErrMalformedChartData = errors.New("malformed chart data")

// MalformedChartDataError explains why an embedded chart payload was rejected.
type MalformedChartDataError struct {
	Field string
	Err   error
}

func (e *MalformedChartDataError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %v", ErrMalformedChartData, e.Err)
	}
	return fmt.Sprintf("%v: %s: %v", ErrMalformedChartData, e.Field, e.Err)
}

func (e *MalformedChartDataError) Unwrap() error { return e.Err }

// Is reports ErrMalformedChartData as a match.
func (e *MalformedChartDataError) Is(target error) bool {
	return target == ErrMalformedChartData
}

// Payload is the chart data embedded in a dashboard page.
type Payload struct {
	SpendingByCategory *models.CategoryAmountMap  `json:"spending_by_category"`
	MonthlySpending    *models.MonthlyCategoryMap `json:"monthly_spending"`
}

// Payload field names.
const (
	fieldSpendingByCategory = "spending_by_category"
	fieldMonthlySpending    = "monthly_spending"
)

var errMissing = errors.New("missing or null")

// DecodePayload parses and validates an embedded chart payload. Both maps are
// required; unknown top-level fields are ignored.
func DecodePayload(data []byte) (*Payload, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &MalformedChartDataError{Err: err}
	}
	if raw == nil {
		return nil, &MalformedChartDataError{Err: errors.New("payload is null")}
	}

	p := &Payload{
		SpendingByCategory: models.NewCategoryAmountMap(),
		MonthlySpending:    models.NewMonthlyCategoryMap(),
	}

	field, err := requireField(raw, fieldSpendingByCategory)
	if err != nil {
		return nil, err
	}
	if err := p.SpendingByCategory.UnmarshalJSON(field); err != nil {
		return nil, &MalformedChartDataError{Field: fieldSpendingByCategory, Err: err}
	}

	field, err = requireField(raw, fieldMonthlySpending)
	if err != nil {
		return nil, err
	}
	if err := p.MonthlySpending.UnmarshalJSON(field); err != nil {
		return nil, &MalformedChartDataError{Field: fieldMonthlySpending, Err: err}
	}

	return p, nil
}

func requireField(raw map[string]json.RawMessage, name string) (json.RawMessage, error) {
	field, ok := raw[name]
	if !ok || bytes.Equal(bytes.TrimSpace(field), []byte("null")) {
		return nil, &MalformedChartDataError{Field: name, Err: errMissing}
	}
	return field, nil
}

// EncodePayload writes the payload with map order preserved. Nil maps encode as empty objects.
func EncodePayload(p *Payload) ([]byte, error) {
	out := Payload{
		SpendingByCategory: p.SpendingByCategory,
		MonthlySpending:    p.MonthlySpending,
	}
	if out.SpendingByCategory == nil {
		out.SpendingByCategory = models.NewCategoryAmountMap()
	}
	if out.MonthlySpending == nil {
		out.MonthlySpending = models.NewMonthlyCategoryMap()
	}
	return json.Marshal(out)
}

// PayloadFromAnalysis extracts the chart payload from an analysis result.
func PayloadFromAnalysis(a *models.SpendingAnalysis) *Payload {
	return &Payload{
		SpendingByCategory: a.SpendingByCategory,
		MonthlySpending:    a.MonthlySpending,
	}
}
