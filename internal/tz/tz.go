// Package tz resolves a subscriber's local timezone.
//
// Resolution order, first hit wins: explicit IANA zone, country table,
// phone dialing prefix, UTC. Phone-prefix inference is a last-resort
// heuristic and must not be relied on for compliance purposes.
package tz

import (
	"strings"
	"sync"
	"time"
	_ "time/tzdata" // zone data for minimal container images
)

// Source records which rule produced a zone.
type Source string

const (
	SourceExplicit Source = "timezone"
	SourceCountry  Source = "country"
	SourcePhone    Source = "phone"
	SourceDefault  Source = "default"
)

// Hints are the subscriber attributes used for resolution.
type Hints struct {
	Timezone string
	Country  string
	Phone    string // sanitized digits, no "+" or "00" prefix
}

// Zone is a resolved timezone.
type Zone struct {
	Name     string
	Location *time.Location
	Source   Source
}

// Local returns instant as wall clock time in the zone.
func (z Zone) Local(instant time.Time) time.Time {
	return instant.In(z.Location)
}

var locations sync.Map // zone name -> *time.Location

// Resolve never fails; unknown or unparseable hints fall through to UTC.
func Resolve(h Hints) Zone {
	if loc, ok := loadZone(h.Timezone); ok {
		return Zone{Name: loc.String(), Location: loc, Source: SourceExplicit}
	}
	if name, ok := countryZones[strings.ToUpper(strings.TrimSpace(h.Country))]; ok {
		if loc, ok := loadZone(name); ok {
			return Zone{Name: name, Location: loc, Source: SourceCountry}
		}
	}
	if name, ok := ZoneForPhone(h.Phone); ok {
		if loc, ok := loadZone(name); ok {
			return Zone{Name: name, Location: loc, Source: SourcePhone}
		}
	}
	return Zone{Name: "UTC", Location: time.UTC, Source: SourceDefault}
}

// ZoneForCountry returns the table zone for an ISO alpha-2 country code.
func ZoneForCountry(country string) (string, bool) {
	name, ok := countryZones[strings.ToUpper(strings.TrimSpace(country))]
	return name, ok
}

// ZoneForPhone returns the zone for the longest known dialing prefix
// (3, 2, then 1 digits).
func ZoneForPhone(phone string) (string, bool) {
	digits := onlyDigits(phone)
	for n := 3; n >= 1; n-- {
		if len(digits) < n {
			continue
		}
		if name, ok := prefixZones[digits[:n]]; ok {
			return name, true
		}
	}
	return "", false
}

func loadZone(name string) (*time.Location, bool) {
	name = strings.TrimSpace(name)
	// LoadLocation accepts "" and "Local", neither of which is an IANA zone.
	if name == "" || name == "Local" {
		return nil, false
	}
	if cached, ok := locations.Load(name); ok {
		return cached.(*time.Location), true
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, false
	}
	locations.Store(name, loc)
	return loc, true
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
