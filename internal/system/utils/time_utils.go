package utils

import (
	"time"
)

// GetCurrentTimeMillis returns the current time as epoch milliseconds.
func GetCurrentTimeMillis() int64 {
	return time.Now().UnixMilli()
}

// FormatMillis renders an epoch-millisecond timestamp as RFC 3339 UTC.
func FormatMillis(millis int64) string {
	return time.UnixMilli(millis).UTC().Format(time.RFC3339)
}
