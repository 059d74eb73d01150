// Package format renders counts and durations for the CLI's progress lines.
package format

import (
	"fmt"
	"time"
)

// Elapsed formats a run duration: milliseconds under a second, tenths of a
// second under a minute, then minutes and seconds.
// Examples: "850ms", "3.2s", "1m05s"
func Elapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d/time.Millisecond)
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%dm%02ds", m, s)
}

// Count formats n with the singular or plural form of a noun.
// Examples: "1 slide", "3 slides", "0 proposals"
func Count(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
