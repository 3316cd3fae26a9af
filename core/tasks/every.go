package tasks

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseEvery converts an interval such as "hourly", "daily", "weekly",
// "90s", "2d" or "1w" into a duration. Intervals must be positive.
func ParseEvery(every string) (time.Duration, error) {
	s := strings.ToLower(strings.TrimSpace(every))
	switch s {
	case "hourly":
		return time.Hour, nil
	case "daily":
		return 24 * time.Hour, nil
	case "weekly":
		return 7 * 24 * time.Hour, nil
	}

	var d time.Duration
	var err error
	switch {
	case strings.HasSuffix(s, "d"):
		d, err = days(strings.TrimSuffix(s, "d"), 1)
	case strings.HasSuffix(s, "w"):
		d, err = days(strings.TrimSuffix(s, "w"), 7)
	default:
		d, err = time.ParseDuration(s)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid schedule interval %q: %w", every, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("schedule interval must be positive: %q", every)
	}
	return d, nil
}

const day = 24 * time.Hour

func days(n string, mult int64) (time.Duration, error) {
	v, err := strconv.ParseInt(n, 10, 64)
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt64/int64(day)/mult {
		return 0, errors.New("interval too long")
	}
	return time.Duration(v*mult) * day, nil
}
