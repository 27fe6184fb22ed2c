package notifications

import (
	"fmt"
	"time"
)

// Report is the summary of one dispatcher run.
type Report struct {
	RunID      string    `json:"run_id"`
	RunInstant time.Time `json:"run_instant"`
	DryRun     bool      `json:"dry_run"`

	Scanned           int `json:"scanned"`
	Eligible          int `json:"eligible"`
	SkippedOptOut     int `json:"skipped_opt_out"`
	SkippedNoDevices  int `json:"skipped_no_devices"`
	SkippedHour       int `json:"skipped_hour"`
	SkippedCadence    int `json:"skipped_cadence"`
	SkippedInvalid    int `json:"skipped_invalid"`
	SkippedDuplicate  int `json:"skipped_duplicate"`
	MessagingOptedOut int `json:"messaging_opted_out"`
	EmailOptedOut     int `json:"email_opted_out"`

	MessagingSent   int `json:"messaging_sent"`
	MessagingErrors int `json:"messaging_errors"`
	EmailSent       int `json:"email_sent"`
	EmailErrors     int `json:"email_errors"`
	BatchCount      int `json:"batch_count"`

	Duration time.Duration `json:"-"`
}

// Skipped is the total of all per-subscriber skips.
func (r *Report) Skipped() int {
	return r.SkippedOptOut + r.SkippedNoDevices + r.SkippedHour +
		r.SkippedCadence + r.SkippedInvalid + r.SkippedDuplicate
}

// Errors is the total of all per-recipient channel errors.
func (r *Report) Errors() int {
	return r.MessagingErrors + r.EmailErrors
}

// Summary returns a human-readable summary.
func (r *Report) Summary() string {
	return fmt.Sprintf(
		"run_instant=%s scanned=%d eligible=%d skipped=%d (opt_out=%d no_devices=%d hour=%d cadence=%d invalid=%d duplicate=%d) "+
			"messaging=%d/%d email=%d/%d batches=%d dry_run=%t duration=%s",
		r.RunInstant.UTC().Format(time.RFC3339), r.Scanned, r.Eligible, r.Skipped(),
		r.SkippedOptOut, r.SkippedNoDevices, r.SkippedHour, r.SkippedCadence, r.SkippedInvalid, r.SkippedDuplicate,
		r.MessagingSent, r.MessagingSent+r.MessagingErrors,
		r.EmailSent, r.EmailSent+r.EmailErrors,
		r.BatchCount, r.DryRun, r.Duration.Round(time.Millisecond),
	)
}

// count records a schedule decision that did not lead to a send.
func (r *Report) count(reason Reason) {
	switch reason {
	case ReasonNoDevices:
		r.SkippedNoDevices++
	case ReasonOutsideSendHour:
		r.SkippedHour++
	case ReasonOffCadence:
		r.SkippedCadence++
	case ReasonInvalidDates, ReasonFutureRegistration:
		r.SkippedInvalid++
	}
}
