package mirror

import "strings"

// NormalizeDate truncates an ISO-8601 timestamp at its time separator,
// leaving a date-only string. Firefly III silently drops the time component
// whenever a transaction is edited, so creating with full timestamps and
// later updating with date-only values would shift sort order; truncating
// uniformly at creation keeps ordering stable across the create-update
// lifecycle. Already date-only input passes through unchanged.
func NormalizeDate(timestamp string) string {
	date, _, _ := strings.Cut(timestamp, "T")
	return date
}
