package expiry

import (
	"fmt"
	"time"
)

// AddMonths advances a timestamp by whole calendar months. Unlike
// time.Time.AddDate it clamps instead of overflowing: Jan 31 + 1 month is
// Feb 28 (29 in leap years), not Mar 2/3. The time of day and location are
// preserved.
func AddMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	total := int(month) + months
	year += (total - 1) / 12
	month = time.Month((total-1)%12 + 1)

	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}

	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func lastDayOfMonth(year int, month time.Month) int {
	// Day zero of the next month normalizes to this month's last day.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseOverrideDate parses the backfill command's fixed override date. The
// error names the offending string and the expected layout; the command
// aborts on it before writing anything.
func ParseOverrideDate(value, layout string) (time.Time, error) {
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("incorrect date string %q for the format %q: %w", value, layout, err)
	}
	return t, nil
}
