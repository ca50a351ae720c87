package render

import (
	"fmt"
	"time"
)

const (
	minutesPerHour = 60
	hoursPerDay    = 24
	daysPerWeek    = 7
	weeksPerMonth  = 4
	daysPerMonth   = 30

	exactDateLayout = "02.01.2006, 15:04"
)

// RelativeAge buckets the distance between t and now into a short German
// phrase. Cutoffs are plain integer divisions, not calendar arithmetic.
func RelativeAge(t time.Time, now time.Time) string {
	minutes := int64(now.Sub(t) / time.Minute)
	if minutes < 1 {
		return "Gerade eben"
	}
	if minutes < minutesPerHour {
		return fmt.Sprintf("vor %d Min.", minutes)
	}

	hours := minutes / minutesPerHour
	if hours < hoursPerDay {
		return fmt.Sprintf("vor %d Std.", hours)
	}

	days := hours / hoursPerDay
	if days < daysPerWeek {
		return fmt.Sprintf("vor %d %s", days, plural(days, "Tag", "Tagen"))
	}

	weeks := days / daysPerWeek
	if weeks < weeksPerMonth {
		return fmt.Sprintf("vor %d %s", weeks, plural(weeks, "Woche", "Wochen"))
	}

	months := max(days/daysPerMonth, 1)

	return fmt.Sprintf("vor %d %s", months, plural(months, "Monat", "Monaten"))
}

// ExactDate formats t as day.month.year, hour:minute in loc.
func ExactDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}

	return t.In(loc).Format(exactDateLayout)
}

func plural(n int64, one string, many string) string {
	if n > 1 {
		return many
	}

	return one
}
