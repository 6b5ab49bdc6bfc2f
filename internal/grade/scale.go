package grade

import (
	"context"

	appI18n "github.com/correggi-verifiche/api/internal/i18n"
)

// Band is one step of the Italian ten-point grading scale.
type Band struct {
	// Min is the lowest percentage (inclusive) that earns this band.
	Min float64
	// Canonical is the Italian numeral-plus-descriptor string.
	Canonical string
	// MsgID is the translation key for localized rendering.
	MsgID string
}

// Bands in descending order; the last entry is the catch-all.
var bands = []Band{
	{95, "10 eccellente", "Grade10"},
	{85, "9 distinto", "Grade9"},
	{75, "8 buono", "Grade8"},
	{65, "7 discreto", "Grade7"},
	{55, "6 sufficiente", "Grade6"},
	{45, "5 insufficiente", "Grade5"},
	{35, "4 gravemente insufficiente", "Grade4"},
	{25, "3 molto gravemente insufficiente", "Grade3"},
	{0, "1-2 gravemente insufficiente", "Grade12"},
}

func bandFor(percentage float64) Band {
	for _, b := range bands[:len(bands)-1] {
		if percentage >= b.Min {
			return b
		}
	}
	return bands[len(bands)-1]
}

// Scale maps a percentage to the canonical Italian grade string.
// Total over all float inputs; out-of-range percentages land in the
// nearest band rather than erroring.
func Scale(percentage float64) string {
	return bandFor(percentage).Canonical
}

// Localized renders the grade for percentage in the request's language.
func Localized(ctx context.Context, percentage float64) string {
	return appI18n.T(ctx, bandFor(percentage).MsgID)
}
