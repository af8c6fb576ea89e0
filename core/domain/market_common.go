package domain

import "time"

// Season buckets used by purchase patterns and seasonal scoring.
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
	SeasonWinter Season = "winter"
)

// SeasonForMonth maps a calendar month to its season.
// Months 3-5 spring, 6-8 summer, 9-11 autumn, everything else winter.
func SeasonForMonth(month time.Month) Season {
	switch {
	case month >= time.March && month <= time.May:
		return SeasonSpring
	case month >= time.June && month <= time.August:
		return SeasonSummer
	case month >= time.September && month <= time.November:
		return SeasonAutumn
	default:
		return SeasonWinter
	}
}

// TimeOfDay buckets a clock hour into a coarse slot.
func TimeOfDay(t time.Time) string {
	switch h := t.Hour(); {
	case h < 6:
		return "night"
	case h < 12:
		return "morning"
	case h < 17:
		return "afternoon"
	default:
		return "evening"
	}
}

// FestivalForDate returns the shopping festival active on the given date,
// or "" when none applies.
func FestivalForDate(t time.Time) string {
	switch t.Month() {
	case time.November:
		return "black_friday"
	case time.December:
		return "holiday_season"
	case time.July:
		return "summer_sale"
	default:
		return ""
	}
}

// ClampScore bounds a score to [0,1]. Preference and similarity scores are
// documented as [0,1]; the raw formulas can drift past the bounds.
func ClampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
