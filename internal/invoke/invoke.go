// Package invoke routes invocation events to the dispatcher.
//
// An event selects one of three modes: "real_test_email" sends the composed
// milestone email to one real subscriber, "test_email" sends one email with
// literal display fields, and anything else runs the full dispatch.
package invoke

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/attr"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/notifications"
)

// Modes.
const (
	ModeDispatch      = "dispatch"
	ModeRealTestEmail = "real_test_email"
	ModeTestEmail     = "test_email"
)

// ErrBadEvent marks an event that cannot be served.
var ErrBadEvent = errors.New("bad invocation event")

// Service is the dispatcher surface used by the handler.
type Service interface {
	Run(ctx context.Context) (*notifications.Report, error)
	SendRealTestEmail(ctx context.Context, address string, runInstant time.Time) (*notifications.TestEmailResult, error)
	SendTestEmail(ctx context.Context, to string, data notifications.EmailData) (string, error)
}

// Response is the result of one invocation.
type Response struct {
	StatusCode int                              `json:"statusCode"`
	Mode       string                           `json:"mode"`
	Report     *notifications.Report            `json:"report,omitempty"`
	MessageID  string                           `json:"message_id,omitempty"`
	Milestone  *notifications.MilestoneSnapshot `json:"milestone,omitempty"`
	Error      string                           `json:"error,omitempty"`
	Traceback  string                           `json:"traceback,omitempty"`
}

// Handler serves invocation events.
type Handler struct {
	svc    Service
	logger *slog.Logger
	now    func() time.Time
}

// NewHandler creates a handler.
func NewHandler(svc Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger, now: time.Now}
}

// Mode returns the mode selected by event.
func Mode(event map[string]any) string {
	event = attr.NormalizeItem(event)
	if attr.BoolOr(event, ModeRealTestEmail, false) {
		return ModeRealTestEmail
	}
	if attr.BoolOr(event, ModeTestEmail, false) {
		return ModeTestEmail
	}
	return ModeDispatch
}

// Handle serves one event. It never returns an error: failures, including
// panics, are reported in the response with a traceback.
func (h *Handler) Handle(ctx context.Context, event map[string]any) (resp Response) {
	mode := Mode(event)
	event = attr.NormalizeItem(event)

	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Invocation panicked", "mode", mode, "panic", r)
			resp = Response{
				StatusCode: http.StatusInternalServerError,
				Mode:       mode,
				Error:      fmt.Sprint(r),
				Traceback:  string(debug.Stack()),
			}
		}
	}()

	var err error
	resp = Response{StatusCode: http.StatusOK, Mode: mode}
	switch mode {
	case ModeRealTestEmail:
		err = h.realTestEmail(ctx, event, &resp)
	case ModeTestEmail:
		err = h.testEmail(ctx, event, &resp)
	default:
		resp.Report, err = h.svc.Run(ctx)
	}
	if err != nil {
		return h.failure(mode, err)
	}
	return resp
}

func (h *Handler) realTestEmail(ctx context.Context, event map[string]any, resp *Response) error {
	address := attr.String(event, "email")
	if address == "" {
		return fmt.Errorf("%w: email is required", ErrBadEvent)
	}
	res, err := h.svc.SendRealTestEmail(ctx, address, h.now())
	if err != nil {
		return err
	}
	resp.MessageID = res.MessageID
	resp.Milestone = &res.Milestone
	return nil
}

func (h *Handler) testEmail(ctx context.Context, event map[string]any, resp *Response) error {
	to := attr.String(event, "email")
	if to == "" {
		return fmt.Errorf("%w: email is required", ErrBadEvent)
	}
	id, err := h.svc.SendTestEmail(ctx, to, TestEmailData(event))
	if err != nil {
		return err
	}
	resp.MessageID = id
	return nil
}

// TestEmailData reads literal display fields from a test_email event.
// Missing fields fall back to a day-7 sample.
func TestEmailData(event map[string]any) notifications.EmailData {
	str := func(key, fallback string) string {
		if v := attr.String(event, key); v != "" {
			return v
		}
		return fallback
	}
	num := func(key string, fallback float64) float64 {
		if v, ok := attr.Float(event[key]); ok {
			return v
		}
		return fallback
	}
	return notifications.EmailData{
		FirstName:       str("first_name", notifications.FirstName(attr.String(event, "email"))),
		FocusDays:       int(num("focus_days", 7)),
		CurrentLevel:    str("current_level", "Fighter"),
		CurrentEmoji:    str("current_emoji", "🥊"),
		NextLevel:       str("next_level", "Warrior"),
		NextEmoji:       str("next_emoji", "⚔️"),
		DaysToNext:      int(num("days_to_next", 7)),
		KingQueen:       str("king_queen", "King"),
		DaysToKingQueen: int(num("days_to_king_queen", 83)),
		Percentile:      num("percentile", 50),
		MediaURL:        str("media_url", ""),
	}
}

func (h *Handler) failure(mode string, err error) Response {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrBadEvent):
		status = http.StatusBadRequest
	case errors.Is(err, notifications.ErrSubscriberNotFound):
		status = http.StatusNotFound
	case errors.Is(err, notifications.ErrEmailDisabled):
		status = http.StatusConflict
	}
	h.logger.Error("Invocation failed", "mode", mode, "status", status, "error", err)
	return Response{
		StatusCode: status,
		Mode:       mode,
		Error:      err.Error(),
		Traceback:  fmt.Sprintf("%+v", err),
	}
}
