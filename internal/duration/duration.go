// Package duration parses the relative time expressions accepted by
// --since flags.
package duration

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const timestampLayout = "2006-01-02T15:04:05Z"

var unitPattern = regexp.MustCompile(`(\d+)([wdhm])`)

var errInvalidFormat = errors.New(
	"invalid duration format. Use combinations like '24h', '3h30m', '2d', '1w' or named expressions: 'yesterday', 'today', 'this-week', 'last-week', 'this-month', 'last-month'")

// ParseSince converts a relative time expression into the UTC timestamp it
// denotes, measured from now. Unit expressions ("24h", "3h30m", "2d", "1w",
// and combinations) count back from now; named expressions ("yesterday",
// "today", "this-week", "last-week", "this-month", "last-month") resolve to
// the start of the named period in now's location.
func ParseSince(since string, now time.Time) (string, error) {
	switch since {
	case "yesterday":
		return format(startOfDay(now.AddDate(0, 0, -1))), nil
	case "today":
		return format(startOfDay(now)), nil
	case "this-week":
		return format(startOfDay(now.AddDate(0, 0, -daysSinceMonday(now)))), nil
	case "last-week":
		return format(startOfDay(now.AddDate(0, 0, -daysSinceMonday(now)-7))), nil
	case "this-month":
		return format(startOfMonth(now)), nil
	case "last-month":
		return format(startOfMonth(now).AddDate(0, -1, 0)), nil
	}

	matches := unitPattern.FindAllStringSubmatch(since, -1)
	if len(matches) == 0 {
		return "", errInvalidFormat
	}
	var total time.Duration
	for _, match := range matches {
		value, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			return "", fmt.Errorf("invalid number in duration: %s", match[1])
		}
		switch match[2] {
		case "w":
			total += time.Duration(value) * 7 * 24 * time.Hour
		case "d":
			total += time.Duration(value) * 24 * time.Hour
		case "h":
			total += time.Duration(value) * time.Hour
		case "m":
			total += time.Duration(value) * time.Minute
		}
	}
	return format(now.Add(-total)), nil
}

func format(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func daysSinceMonday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
