package ledger

import "time"

// DateOnly truncates a timestamp to midnight UTC. All ledger dates are
// day-granular.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the length of the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay builds a date in year/month with the day clamped to the month's
// actual last day, so a day of 31 never overflows into the next month.
func ClampDay(year int, month time.Month, day int) time.Time {
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// shiftMonth returns the first day of the month `months` away from base.
func shiftMonth(base time.Time, months int) time.Time {
	idx := int(base.Month()) - 1 + months
	year := base.Year() + idx/12
	idx %= 12
	if idx < 0 {
		idx += 12
		year--
	}
	return time.Date(year, time.Month(idx+1), 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths shifts a date by whole months, clamping the day to the target
// month's length (Jan 31 + 1 month = Feb 28/29).
func AddMonths(base time.Time, months int) time.Time {
	first := shiftMonth(base, months)
	return ClampDay(first.Year(), first.Month(), base.Day())
}

// BillingPeriod computes the current statement period for a reference date
// and a closing day-of-month. If the reference day has reached this
// month's (clamped) closing day the period ends there; otherwise it ends
// on the previous month's closing date. The period starts one day after
// the closing date of the month before the period end, so consecutive
// periods tile calendar time with no gap or overlap.
func BillingPeriod(ref time.Time, closingDay int) (start, end time.Time) {
	closingThisMonth := ClampDay(ref.Year(), ref.Month(), closingDay)
	if ref.Day() >= closingThisMonth.Day() {
		end = closingThisMonth
	} else {
		prev := shiftMonth(ref, -1)
		end = ClampDay(prev.Year(), prev.Month(), closingDay)
	}
	before := shiftMonth(end, -1)
	prevClosing := ClampDay(before.Year(), before.Month(), closingDay)
	start = prevClosing.AddDate(0, 0, 1)
	return start, end
}

// BillingDueDate places the payment due day after the period end: in the
// same month when the due day falls past the closing day, otherwise in the
// following month. The day is clamped in either case.
func BillingDueDate(periodEnd time.Time, dueDay int) time.Time {
	if dueDay > periodEnd.Day() {
		return ClampDay(periodEnd.Year(), periodEnd.Month(), dueDay)
	}
	next := shiftMonth(periodEnd, 1)
	return ClampDay(next.Year(), next.Month(), dueDay)
}
