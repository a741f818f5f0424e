// Package timeline renders activity feeds with coarse relative timestamps.
package timeline

import (
	"fmt"
	"time"
)

// DateLayout is the calendar form used once an event is a week old.
const DateLayout = "1/2/2006"

// Relative formats t against now. The calendar date is rendered in now's
// location so the caller's clock decides the day boundary.
func Relative(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	default:
		return t.In(now.Location()).Format(DateLayout)
	}
}
