package util

import "time"

// NowUTC returns the current time in UTC; stored timestamps always use it.
func NowUTC() time.Time {
	return time.Now().UTC()
}
