// Package notifications sends weekly milestone notifications to subscribers
// at their local send hour.
//
// Pipeline: snapshot → evaluate → compose → dispatch → report.
// One run reads the subscriber store once, decides per subscriber whether
// this hour is their send hour on a cadence day, composes the recipient
// record and fans it out to the messaging and email channels.
package notifications

import (
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/milestone"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	cadenceDays       = 7
	defaultFinalDays  = 90
	defaultMaxBatch   = 100
	broadcastPrefix   = "Milestone Day - "
	fallbackFirstName = "User"
	shareBaseURL      = "https://screentimejourney.com/share"

	// CampaignTag is attached to every milestone email.
	CampaignTag = "milestone_notification"
)

// Parameter keys sent to the messaging gateway.
const (
	ParamFirstName     = "first_name"
	ParamPercentage    = "percentage"
	ParamCurrentLevel  = "current_lvl"
	ParamFocusDays     = "focus_days"
	ParamNextLevel     = "next_lvl"
	ParamNextLevelDays = "next_lvl_days"
	ParamKingQueen     = "king_queen"
	ParamKingQueenDays = "king_queen_days"
	ParamQuery         = "query"
)

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Recipient is the composed record for one subscriber in one run.
type Recipient struct {
	CustomerID      string
	Phone           string
	Email           string
	WhatsAppEnabled bool
	EmailEnabled    bool
	TemplateName    string
	Params          map[string]string

	FirstName   string
	DayNumber   int
	Percentile  float64
	Current     milestone.Milestone
	Next        milestone.Milestone
	DaysToNext  int
	KingQueen   string
	DaysToFinal int
}

// WantsMessaging reports whether the messaging channel applies.
func (r Recipient) WantsMessaging() bool {
	return r.WhatsAppEnabled && r.Phone != ""
}

// WantsEmail reports whether the email channel applies.
func (r Recipient) WantsEmail() bool {
	return r.EmailEnabled && r.Email != ""
}

// MilestoneSnapshot is the composed milestone view returned to invokers of
// the real test email.
type MilestoneSnapshot struct {
	CustomerID   string            `json:"customer_id"`
	TemplateName string            `json:"template_name"`
	DayNumber    int               `json:"day_number"`
	Percentile   float64           `json:"percentile"`
	Current      string            `json:"current_level"`
	Next         string            `json:"next_level"`
	DaysToNext   int               `json:"days_to_next"`
	KingQueen    string            `json:"king_queen"`
	DaysToFinal  int               `json:"days_to_king_queen"`
	Params       map[string]string `json:"params"`
}

// Snapshot returns the invoker-facing view of r.
func (r Recipient) Snapshot() MilestoneSnapshot {
	return MilestoneSnapshot{
		CustomerID:   r.CustomerID,
		TemplateName: r.TemplateName,
		DayNumber:    r.DayNumber,
		Percentile:   r.Percentile,
		Current:      r.Current.Label(),
		Next:         r.Next.Label(),
		DaysToNext:   r.DaysToNext,
		KingQueen:    r.KingQueen,
		DaysToFinal:  r.DaysToFinal,
		Params:       r.Params,
	}
}
