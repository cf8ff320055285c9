package ledger

import (
	"fmt"
	"time"
)

// Occurrence identifies one billing occurrence of a recurring expense.
// The period key is the uniqueness scope for materialization: at most one
// non-deleted ledger entry may exist per (tenant, expense, period key).
type Occurrence struct {
	Date      time.Time
	PeriodKey string
}

// DaysInMonth returns the number of days in the given month
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// monthIndex linearizes a (year, month) pair for interval arithmetic
func monthIndex(year int, month time.Month) int {
	return year*12 + int(month) - 1
}

// OccurrencesInMonth computes the billing occurrences of the expense that
// fall in the given month. Months before the expense's start month yield
// nothing. The due day is clamped to the month's length.
func (r *RecurringExpense) OccurrencesInMonth(year int, month time.Month) []Occurrence {
	startYear, startMonth := r.StartYearMonth()
	elapsed := monthIndex(year, month) - monthIndex(startYear, startMonth)
	if elapsed < 0 {
		return nil
	}

	switch r.Frequency {
	case FrequencyMonthly:
		return []Occurrence{r.occurrenceOn(year, month, r.DueDay, monthKey(year, month))}

	case FrequencyWeekly:
		days := DaysInMonth(year, month)
		day := r.DueDay
		if day > 7 {
			day = 7
		}
		var occ []Occurrence
		for week := 1; day <= days; week++ {
			occ = append(occ, r.occurrenceOn(year, month, day, weekKey(year, month, week)))
			day += 7
		}
		return occ

	case FrequencyQuarterly:
		if elapsed%3 != 0 {
			return nil
		}
		return []Occurrence{r.occurrenceOn(year, month, r.DueDay, monthKey(year, month))}

	case FrequencySemiannual:
		if elapsed%6 != 0 {
			return nil
		}
		return []Occurrence{r.occurrenceOn(year, month, r.DueDay, monthKey(year, month))}

	case FrequencyAnnual:
		if month != startMonth {
			return nil
		}
		return []Occurrence{r.occurrenceOn(year, month, r.DueDay, yearKey(year))}
	}

	return nil
}

// occurrenceOn builds an occurrence clamping the day to the month's length
func (r *RecurringExpense) occurrenceOn(year int, month time.Month, day int, key string) Occurrence {
	if max := DaysInMonth(year, month); day > max {
		day = max
	}
	return Occurrence{
		Date:      time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
		PeriodKey: key,
	}
}

func monthKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

func weekKey(year int, month time.Month, week int) string {
	return fmt.Sprintf("%04d-%02d-W%d", year, int(month), week)
}

func yearKey(year int) string {
	return fmt.Sprintf("%04d", year)
}
