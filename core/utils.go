package core

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration renders d as "1d 2h 3m 4s", omitting leading zero units.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}
	d = d.Truncate(time.Second)
	units := []struct {
		size time.Duration
		unit string
	}{
		{24 * time.Hour, "d"},
		{time.Hour, "h"},
		{time.Minute, "m"},
		{time.Second, "s"},
	}
	var parts []string
	for _, u := range units {
		if n := d / u.size; n > 0 || len(parts) > 0 {
			parts = append(parts, fmt.Sprintf("%d%s", n, u.unit))
			d -= n * u.size
		}
	}
	return strings.Join(parts, " ")
}
