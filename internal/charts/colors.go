package charts

import (
	"fmt"
	"math"
	"strconv"
)

const (
	// SeriesSaturation is shared by every generated series color.
	SeriesSaturation = 70

	// FillLightness is used for pie slices and bar fills.
	FillLightness = 60

	// LineLightness is used for bar borders.
	LineLightness = 50
)

// Color is a point on the HSL color circle.
type Color struct {
	Hue        float64
	Saturation int
	Lightness  int
}

// String renders the color as a CSS hsl() value, e.g. "hsl(180, 70%, 60%)".
func (c Color) String() string {
	return fmt.Sprintf("hsl(%s, %d%%, %d%%)", strconv.FormatFloat(c.Hue, 'f', -1, 64), c.Saturation, c.Lightness)
}

// MarshalText lets colors encode as plain CSS strings in chart configs.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// EvenHue returns the hue for position index out of total, spaced evenly around the circle.
// It returns 0 when total is not positive.
func EvenHue(index, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Mod(float64(index*360)/float64(total), 360)
}

// FillColor is the series fill color for position index out of total.
func FillColor(index, total int) Color {
	return Color{Hue: EvenHue(index, total), Saturation: SeriesSaturation, Lightness: FillLightness}
}

// LineColor is the border color paired with FillColor.
func LineColor(index, total int) Color {
	return Color{Hue: EvenHue(index, total), Saturation: SeriesSaturation, Lightness: LineLightness}
}
