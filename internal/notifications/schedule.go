package notifications

import (
	"time"

	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/subscriber"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/tz"
)

// Reason explains a schedule decision.
type Reason string

const (
	ReasonEligible           Reason = "eligible"
	ReasonNoDevices          Reason = "no_devices"
	ReasonInvalidDates       Reason = "invalid_dates"
	ReasonFutureRegistration Reason = "future_registration"
	ReasonOutsideSendHour    Reason = "outside_send_hour"
	ReasonOffCadence         Reason = "off_cadence"
)

// Decision is the outcome of evaluating one subscriber for one run.
type Decision struct {
	Eligible     bool
	Reason       Reason
	DayNumber    int
	Zone         tz.Zone
	Local        time.Time
	Registration time.Time
}

// Evaluate decides whether sub is due this hour. The subscriber is due when
// their local hour equals sendHour and their day number is 0 or a positive
// multiple of seven.
func Evaluate(sub subscriber.Subscriber, runInstant time.Time, sendHour int) Decision {
	if len(sub.Devices) == 0 {
		return Decision{Reason: ReasonNoDevices}
	}
	reg, ok := sub.RegistrationInstant()
	if !ok {
		return Decision{Reason: ReasonInvalidDates}
	}
	if reg.After(runInstant) {
		return Decision{Reason: ReasonFutureRegistration, Registration: reg}
	}

	zone := tz.Resolve(sub.Hints())
	local := zone.Local(runInstant)
	d := Decision{
		Zone:         zone,
		Local:        local,
		Registration: reg,
		DayNumber:    DayNumber(reg, runInstant, zone.Location),
	}

	if local.Hour() != sendHour {
		d.Reason = ReasonOutsideSendHour
		return d
	}
	if !OnCadence(d.DayNumber) {
		d.Reason = ReasonOffCadence
		return d
	}
	d.Eligible = true
	d.Reason = ReasonEligible
	return d
}

// OnCadence reports whether dayNumber is a send day.
func OnCadence(dayNumber int) bool {
	return dayNumber == 0 || (dayNumber > 0 && dayNumber%cadenceDays == 0)
}

// DayNumber is the number of calendar days between the local dates of from
// and to in loc.
func DayNumber(from, to time.Time, loc *time.Location) int {
	return civilDays(to.In(loc)) - civilDays(from.In(loc))
}

// civilDays counts days since the epoch for t's wall-clock date, ignoring
// the zone offset so DST changes do not shorten or lengthen a day.
func civilDays(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
