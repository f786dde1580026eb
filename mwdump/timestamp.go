package mwdump

import (
	"fmt"
	"time"
)

// ParseTimestamp converts an ISO 8601 dump timestamp ("2013-01-15T12:00:00Z")
// to MediaWiki's 14-digit DB format ("20130115120000"), per spec §4.4.
func ParseTimestamp(iso string) (string, error) {
	t, err := time.Parse("2006-01-02T15:04:05Z", iso)
	if err != nil {
		return "", fmt.Errorf("mwdump: bad timestamp %q: %w", iso, err)
	}
	return t.Format("20060102150405"), nil
}
