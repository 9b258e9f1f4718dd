package account

import (
	"fmt"
	"strings"
	"time"
)

// MembershipDuration renders how long an account has existed, in whole years
// and months, e.g. "1 year, 3 months". Calendar fields are compared in now's
// location.
func MembershipDuration(createdAt *time.Time, now time.Time) string {
	if createdAt == nil || createdAt.IsZero() {
		return "Unknown"
	}
	created := createdAt.In(now.Location())

	years := now.Year() - created.Year()
	months := int(now.Month()) - int(created.Month())
	if now.Day() < created.Day() {
		months--
	}
	if months < 0 {
		years--
		months += 12
	}

	parts := make([]string, 0, 2)
	if years > 0 {
		parts = append(parts, plural(years, "year"))
	}
	if months > 0 {
		parts = append(parts, plural(months, "month"))
	}
	if len(parts) == 0 {
		return "Less than a month"
	}
	return strings.Join(parts, ", ")
}

func plural(n int, unit string) string {
	if n > 1 {
		return fmt.Sprintf("%d %ss", n, unit)
	}
	return fmt.Sprintf("%d %s", n, unit)
}
