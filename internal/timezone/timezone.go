// Package timezone normalizes client-supplied timestamps before they
// reach the ledger. Strings with an explicit UTC offset are taken as-is;
// wall-clock strings without one are interpreted in the configured
// reference zone.
package timezone

import (
	"fmt"
	"sync"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/logger"
)

// Wall-clock layouts accepted when no offset is present. The short form
// matches HTML datetime-local input.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

var (
	loc     *time.Location
	locOnce sync.Once
)

// Location returns the reference time zone, loading it once from
// configuration. Falls back to UTC when the zone name is unknown.
func Location() *time.Location {
	locOnce.Do(func() {
		name := config.Get().Timezone
		l, err := time.LoadLocation(name)
		if err != nil {
			logger.Get().Warnf("unknown reference timezone %q, falling back to UTC", name)
			l = time.UTC
		}
		loc = l
	})
	return loc
}

// Normalize parses a client timestamp into an absolute UTC instant.
// RFC 3339 input (explicit offset or Z) is parsed as-is; offsetless
// wall-clock input is interpreted in the reference zone. Any other
// shape is an error.
func Normalize(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, Location()); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
