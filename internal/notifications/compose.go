package notifications

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/milestone"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/subscriber"
)

// Decline reasons. The subscriber is skipped and the run continues.
var (
	ErrNoCurrentMilestone = errors.New("no current milestone")
	ErrNoTemplate         = errors.New("current milestone has no level template")
	ErrUnknownGender      = errors.New("unknown gender")
)

// Compose builds the recipient record for sub on dayNumber.
func Compose(sub subscriber.Subscriber, dayNumber int, catalog *milestone.Catalog, ranker *Ranker) (Recipient, error) {
	gender, ok := milestone.ParseGender(sub.Gender)
	if !ok {
		return Recipient{}, ErrUnknownGender
	}

	current, ok := catalog.Current(gender, dayNumber)
	if !ok {
		return Recipient{}, ErrNoCurrentMilestone
	}
	next, ok := catalog.Next(gender, dayNumber)
	if !ok {
		next = current
	}
	if current.LevelTemplate == "" {
		return Recipient{}, ErrNoTemplate
	}

	daysToNext := max(0, next.Day-dayNumber)
	finalDay := defaultFinalDays
	if final, ok := catalog.Final(gender); ok {
		finalDay = final.Day
	}
	daysToFinal := max(0, finalDay-dayNumber)

	percentile := ranker.Percentile(dayNumber)
	firstName := FirstName(sub.Email)
	kingQueen := gender.FinalRankTitle()

	return Recipient{
		CustomerID:      sub.CustomerID,
		Phone:           sub.Phone,
		Email:           sub.Email,
		WhatsAppEnabled: sub.WhatsAppEnabled,
		EmailEnabled:    sub.EmailEnabled,
		TemplateName:    current.LevelTemplate,
		Params: map[string]string{
			ParamFirstName:     firstName,
			ParamPercentage:    strconv.Itoa(int(percentile)),
			ParamCurrentLevel:  current.Label(),
			ParamFocusDays:     strconv.Itoa(dayNumber),
			ParamNextLevel:     next.Label(),
			ParamNextLevelDays: strconv.Itoa(daysToNext),
			ParamKingQueen:     kingQueen,
			ParamKingQueenDays: strconv.Itoa(daysToFinal),
			ParamQuery:         ShareQuery(sub.CustomerID),
		},
		FirstName:   firstName,
		DayNumber:   dayNumber,
		Percentile:  percentile,
		Current:     current,
		Next:        next,
		DaysToNext:  daysToNext,
		KingQueen:   kingQueen,
		DaysToFinal: daysToFinal,
	}, nil
}

// ShareQuery is the share-URL suffix. It carries the customer id only.
func ShareQuery(customerID string) string {
	return "customer_id=" + customerID
}

// FirstName derives a display name from the local part of an email address,
// with the first letter upper-cased.
func FirstName(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	if local == "" {
		return fallbackFirstName
	}
	r, size := utf8.DecodeRuneInString(local)
	return string(unicode.ToUpper(r)) + local[size:]
}
