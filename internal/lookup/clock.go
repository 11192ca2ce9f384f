package lookup

import (
	"fmt"
	"time"
)

// Clock returns the current instant. Tests inject a fixed one.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now()
}

func UniversalTime(now time.Time) string {
	return fmt.Sprintf("The current Universal (UTC) time is %s 🌍", now.UTC().Format("2006-01-02 15:04:05"))
}

func LocalTime(now time.Time) string {
	return fmt.Sprintf("The current local time is %s ⏰", now.Format("15:04:05"))
}
