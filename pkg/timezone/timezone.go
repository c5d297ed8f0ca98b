// Package timezone implements the time skill: current time lookups,
// wall-clock conversion between IANA zones, and zone listing.
package timezone

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ZoneTime describes a moment in a specific timezone.
type ZoneTime struct {
	Timezone string `json:"timezone"`
	DateTime string `json:"datetime"`
	IsDST    bool   `json:"is_dst"`
}

// Conversion is the result of converting a wall-clock time between zones.
type Conversion struct {
	Source         ZoneTime `json:"source"`
	Target         ZoneTime `json:"target"`
	TimeDifference string   `json:"time_difference"`
}

// Now returns the current time in the named IANA zone.
func Now(zone string) (ZoneTime, error) {
	return at(zone, time.Now())
}

func at(zone string, t time.Time) (ZoneTime, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return ZoneTime{}, errors.Wrapf(err, "unknown timezone %q", zone)
	}

	local := t.In(loc)
	return ZoneTime{
		Timezone: zone,
		DateTime: local.Format(time.RFC3339),
		IsDST:    local.IsDST(),
	}, nil
}

// Convert maps a HH:MM wall-clock time on today's date in the source
// zone onto the target zone and reports the signed offset difference.
func Convert(sourceZone, clock, targetZone string) (Conversion, error) {
	return convertAt(sourceZone, clock, targetZone, time.Now())
}

func convertAt(sourceZone, clock, targetZone string, now time.Time) (Conversion, error) {
	hour, minute, err := parseClock(clock)
	if err != nil {
		return Conversion{}, err
	}

	source, err := time.LoadLocation(sourceZone)
	if err != nil {
		return Conversion{}, errors.Wrapf(err, "unknown source timezone %q", sourceZone)
	}
	target, err := time.LoadLocation(targetZone)
	if err != nil {
		return Conversion{}, errors.Wrapf(err, "unknown target timezone %q", targetZone)
	}

	today := now.In(source)
	sourceTime := time.Date(today.Year(), today.Month(), today.Day(), hour, minute, 0, 0, source)
	targetTime := sourceTime.In(target)

	_, sourceOffset := sourceTime.Zone()
	_, targetOffset := targetTime.Zone()
	diffHours := float64(targetOffset-sourceOffset) / 3600

	return Conversion{
		Source: ZoneTime{
			Timezone: sourceZone,
			DateTime: sourceTime.Format(time.RFC3339),
			IsDST:    sourceTime.IsDST(),
		},
		Target: ZoneTime{
			Timezone: targetZone,
			DateTime: targetTime.Format(time.RFC3339),
			IsDST:    targetTime.IsDST(),
		},
		TimeDifference: fmt.Sprintf("%+.1fh", diffHours),
	}, nil
}

func parseClock(clock string) (hour, minute int, err error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("invalid time %q, expected HH:MM", clock)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, errors.Errorf("invalid hour in %q", clock)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, errors.Errorf("invalid minute in %q", clock)
	}
	return hour, minute, nil
}

// zoneinfo directories checked for zone listing, mirroring the lookup
// order of time.LoadLocation.
var zoneDirs = []string{
	"/usr/share/zoneinfo",
	"/usr/share/lib/zoneinfo",
	"/usr/lib/locale/TZ",
	"/etc/zoneinfo",
}

// List returns the sorted IANA zone names, optionally filtered by a
// case-insensitive substring. It walks the system zoneinfo database and
// falls back to a minimal built-in list on systems without one.
func List(filter string) []string {
	names := listSystemZones()
	if len(names) == 0 {
		names = fallbackZones()
	}

	if filter != "" {
		lowered := strings.ToLower(filter)
		filtered := names[:0]
		for _, name := range names {
			if strings.Contains(strings.ToLower(name), lowered) {
				filtered = append(filtered, name)
			}
		}
		names = filtered
	}

	sort.Strings(names)
	return names
}

func listSystemZones() []string {
	seen := map[string]bool{}

	for _, dir := range zoneDirs {
		root := os.DirFS(dir)
		fs.WalkDir(root, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || path == "." {
				return nil
			}
			// Skip non-zone files shipped alongside the database.
			base := filepath.Base(path)
			if !strings.Contains(path, "/") && base == strings.ToLower(base) {
				return nil
			}
			if strings.HasPrefix(path, "posix/") || strings.HasPrefix(path, "right/") {
				return nil
			}
			seen[path] = true
			return nil
		})
		if len(seen) > 0 {
			break
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	return names
}

func fallbackZones() []string {
	return []string{
		"UTC",
		"America/New_York", "America/Chicago", "America/Denver", "America/Los_Angeles",
		"Europe/London", "Europe/Paris", "Europe/Berlin", "Europe/Moscow",
		"Asia/Shanghai", "Asia/Tokyo", "Asia/Seoul", "Asia/Kolkata", "Asia/Singapore",
		"Australia/Sydney", "Pacific/Auckland",
	}
}
