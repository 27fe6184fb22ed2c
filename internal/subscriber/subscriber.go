// Package subscriber models subscribers read from the subscriber store and
// provides the per-run snapshot.
package subscriber

import (
	"strings"
	"time"

	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/attr"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/tz"
)

// Attribute names in the subscriber store.
const (
	AttrCustomerID      = "customer_id"
	AttrEmail           = "email"
	AttrPhone           = "phone"
	AttrCountry         = "country"
	AttrTimezone        = "timezone"
	AttrGender          = "gender"
	AttrWhatsAppEnabled = "whatsapp_notifications"
	AttrEmailEnabled    = "email_enabled"
	AttrDevices         = "devices"

	deviceAddedDate = "addedDate"
	deviceCreatedAt = "created_at"
	deviceAddedAt   = "added_at"
)

// Device is one registered device. Only the registration dates are used.
type Device struct {
	AddedDate string
	CreatedAt string
	AddedAt   string
}

// Subscriber is a parsed subscriber item. Raw holds the normalized item as
// read from the store and must not be modified.
type Subscriber struct {
	CustomerID      string
	Email           string
	Phone           string // sanitized
	Country         string
	Timezone        string
	Gender          string
	WhatsAppEnabled bool
	EmailEnabled    bool
	Devices         []Device
	Raw             map[string]any
}

// Parse builds a Subscriber from a store item. Typed wrappers are unwrapped
// first; absent opt-out flags default to enabled.
func Parse(item map[string]any) Subscriber {
	n := attr.NormalizeItem(item)
	s := Subscriber{
		CustomerID:      attr.String(n, AttrCustomerID),
		Email:           attr.String(n, AttrEmail),
		Phone:           SanitizePhone(attr.String(n, AttrPhone)),
		Country:         strings.ToUpper(attr.String(n, AttrCountry)),
		Timezone:        attr.String(n, AttrTimezone),
		Gender:          strings.ToLower(attr.String(n, AttrGender)),
		WhatsAppEnabled: attr.BoolOr(n, AttrWhatsAppEnabled, true),
		EmailEnabled:    attr.BoolOr(n, AttrEmailEnabled, true),
		Raw:             n,
	}
	for _, d := range attr.List(n, AttrDevices) {
		dm, ok := d.(map[string]any)
		if !ok {
			continue
		}
		s.Devices = append(s.Devices, Device{
			AddedDate: attr.String(dm, deviceAddedDate),
			CreatedAt: attr.String(dm, deviceCreatedAt),
			AddedAt:   attr.String(dm, deviceAddedAt),
		})
	}
	return s
}

// Hints returns the attributes used for timezone resolution.
func (s Subscriber) Hints() tz.Hints {
	return tz.Hints{Timezone: s.Timezone, Country: s.Country, Phone: s.Phone}
}

// RegistrationInstant is the earliest parseable device date across all
// devices. ok is false when the subscriber has no devices or no date parses.
func (s Subscriber) RegistrationInstant() (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, d := range s.Devices {
		for _, raw := range []string{d.AddedDate, d.CreatedAt, d.AddedAt} {
			t, ok := ParseInstant(raw)
			if !ok {
				continue
			}
			if !found || t.Before(earliest) {
				earliest = t
				found = true
			}
		}
	}
	return earliest, found
}

// instantLayouts are tried in order. Values without an offset are UTC.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseInstant parses an ISO-8601 date or timestamp, with or without "Z".
func ParseInstant(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// SanitizePhone strips "+", spaces, dashes, dots and brackets, then a
// leading international "00".
func SanitizePhone(phone string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(phone) {
		switch r {
		case '+', ' ', '-', '.', '(', ')', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimPrefix(b.String(), "00")
}
