package domain

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// All amounts are stored as int64 minor units (e.g. kobo). Conversion to and
// from major units happens only at configuration and gateway boundaries.

// Currency describes how amounts are rendered to donors.
type Currency struct {
	Code      string
	Symbol    string
	Precision int
}

// Format renders a minor-unit amount with the currency symbol, e.g. ₦5,000.00.
func (c Currency) Format(minor int64) string {
	p := message.NewPrinter(language.English)
	major := float64(minor) / 100
	return c.Symbol + p.Sprint(number.Decimal(major,
		number.MinFractionDigits(c.Precision),
		number.MaxFractionDigits(c.Precision)))
}

// MajorToMinor converts a major-unit value to minor units.
func MajorToMinor(major float64) int64 {
	return int64(math.Round(major * 100))
}

// MinorToMajor converts a minor-unit value to major units.
func MinorToMajor(minor int64) float64 {
	return float64(minor) / 100
}
