package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ecodeclub/ekit/slice"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/gateway/email"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/gateway/whatsapp"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/milestone"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/subscriber"
)

var (
	ErrEmptyPopulation    = errors.New("subscriber store returned no subscribers")
	ErrSubscriberNotFound = errors.New("subscriber not found")
	ErrEmailDisabled      = errors.New("email channel disabled for subscriber")
	ErrNotConfigured      = errors.New("channel not configured")
)

// --------------------------------------------------------------------------
// Collaborators
// --------------------------------------------------------------------------

// SubscriberSource reads the subscriber population.
type SubscriberSource interface {
	Scan(ctx context.Context) (*subscriber.Snapshot, error)
}

// CatalogSource reads the milestone catalog.
type CatalogSource interface {
	Load(ctx context.Context) (*milestone.Catalog, error)
}

// Messenger sends one template batch to the messaging gateway.
type Messenger interface {
	SendTemplateMessages(ctx context.Context, batch whatsapp.Batch) error
}

// Mailer sends one email and returns its message id.
type Mailer interface {
	Send(ctx context.Context, msg email.Message) (string, error)
}

// Ledger records sends per subscriber and local date. Claim returns false
// when the subscriber was already claimed for that date.
type Ledger interface {
	Claim(ctx context.Context, customerID, localDate string) (bool, error)
}

// Recorder receives every finished report.
type Recorder interface {
	Record(r *Report)
}

// Deps are the collaborators of a Dispatcher. Messenger, Mailer, Ledger and
// Recorder are optional; a nil Ledger means no send state is kept.
type Deps struct {
	Subscribers SubscriberSource
	Catalog     CatalogSource
	Messenger   Messenger
	Mailer      Mailer
	Renderer    *EmailRenderer
	Ledger      Ledger
	Recorder    Recorder
}

// Options tune a Dispatcher.
type Options struct {
	SendHour int
	MaxBatch int
	DryRun   bool
}

// Dispatcher runs the milestone notification pipeline.
type Dispatcher struct {
	deps   Deps
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(deps Deps, opts Options, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxBatch < 1 {
		opts.MaxBatch = defaultMaxBatch
	}
	return &Dispatcher{deps: deps, opts: opts, logger: logger, now: time.Now}
}

// --------------------------------------------------------------------------
// Run
// --------------------------------------------------------------------------

// Run executes one dispatch with the current time as run instant.
func (d *Dispatcher) Run(ctx context.Context) (*Report, error) {
	return d.RunAt(ctx, d.now())
}

// RunAt executes one dispatch for runInstant. Configuration errors fail the
// run before anything is sent; per-subscriber and per-channel errors are
// logged and counted.
func (d *Dispatcher) RunAt(ctx context.Context, runInstant time.Time) (*Report, error) {
	start := time.Now()
	report := &Report{
		RunID:      uuid.NewString(),
		RunInstant: runInstant.UTC(),
		DryRun:     d.opts.DryRun,
	}
	logger := d.logger.With("run_id", report.RunID)

	if !d.opts.DryRun {
		if d.deps.Messenger == nil || d.deps.Mailer == nil || d.deps.Renderer == nil {
			return nil, pkgerrors.Wrap(ErrNotConfigured, "messaging and email gateways are required")
		}
	}

	catalog, err := d.deps.Catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load milestone catalog: %w", err)
	}
	snapshot, err := d.deps.Subscribers.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan subscribers: %w", err)
	}
	if snapshot.Len() == 0 {
		return nil, pkgerrors.WithStack(ErrEmptyPopulation)
	}

	logger.Info("Dispatch started",
		"run_instant", report.RunInstant.Format(time.RFC3339),
		"subscribers", snapshot.Len(),
		"send_hour", d.opts.SendHour,
		"dry_run", d.opts.DryRun)

	ranker := NewRanker(snapshot.All(), runInstant)
	messaging, mail := d.collect(ctx, logger, report, snapshot, catalog, ranker, runInstant)

	d.sendMessaging(ctx, logger, report, messaging)
	d.sendEmail(ctx, logger, report, mail)

	report.Duration = time.Since(start)
	if d.deps.Recorder != nil {
		d.deps.Recorder.Record(report)
	}
	logger.Info("Dispatch complete", "summary", report.Summary())
	return report, nil
}

// collect evaluates and composes every subscriber in snapshot order.
func (d *Dispatcher) collect(
	ctx context.Context,
	logger *slog.Logger,
	report *Report,
	snapshot *subscriber.Snapshot,
	catalog *milestone.Catalog,
	ranker *Ranker,
	runInstant time.Time,
) (messaging, mail []Recipient) {
	for _, sub := range snapshot.All() {
		report.Scanned++

		decision := Evaluate(sub, runInstant, d.opts.SendHour)
		if !decision.Eligible {
			report.count(decision.Reason)
			if decision.Reason == ReasonInvalidDates || decision.Reason == ReasonFutureRegistration {
				logger.Warn("Skipping subscriber", "customer_id", sub.CustomerID, "reason", decision.Reason)
			}
			continue
		}
		report.Eligible++

		rec, err := Compose(sub, decision.DayNumber, catalog, ranker)
		if err != nil {
			report.SkippedInvalid++
			logger.Warn("Compose declined", "customer_id", sub.CustomerID, "day", decision.DayNumber, "error", err)
			continue
		}

		wantsMessaging, wantsEmail := rec.WantsMessaging(), rec.WantsEmail()
		if !wantsMessaging {
			report.MessagingOptedOut++
		}
		if !wantsEmail {
			report.EmailOptedOut++
		}
		if !wantsMessaging && !wantsEmail {
			report.SkippedOptOut++
			continue
		}

		if d.deps.Ledger != nil && !d.opts.DryRun {
			localDate := decision.Local.Format(time.DateOnly)
			claimed, err := d.deps.Ledger.Claim(ctx, sub.CustomerID, localDate)
			switch {
			case err != nil:
				logger.Warn("Send ledger unavailable, sending anyway", "customer_id", sub.CustomerID, "error", err)
			case !claimed:
				report.SkippedDuplicate++
				continue
			}
		}

		if wantsMessaging {
			messaging = append(messaging, rec)
		}
		if wantsEmail {
			mail = append(mail, rec)
		}
	}
	return messaging, mail
}

// --------------------------------------------------------------------------
// Messaging channel
// --------------------------------------------------------------------------

func (d *Dispatcher) sendMessaging(ctx context.Context, logger *slog.Logger, report *Report, recipients []Recipient) {
	for _, group := range groupByTemplate(recipients) {
		template := group[0].TemplateName
		for _, batch := range splitEven(group, d.opts.MaxBatch) {
			report.BatchCount++
			req := whatsapp.Batch{
				TemplateName:  template,
				BroadcastName: broadcastPrefix + template,
				Receivers: slice.Map(batch, func(idx int, r Recipient) whatsapp.Receiver {
					return whatsapp.Receiver{
						WhatsAppNumber: r.Phone,
						CustomParams:   whatsapp.ParamsFromMap(r.Params),
					}
				}),
			}

			if d.opts.DryRun {
				logger.Info("Dry run: template batch", "template", template, "receivers", len(batch))
				report.MessagingSent += len(batch)
				continue
			}

			if err := d.deps.Messenger.SendTemplateMessages(ctx, req); err != nil {
				report.MessagingErrors += len(batch)
				logger.Warn("Template batch failed", "template", template, "receivers", len(batch), "error", err)
				continue
			}
			report.MessagingSent += len(batch)
			logger.Info("Template batch sent", "template", template, "receivers", len(batch))
		}
	}
}

// groupByTemplate groups recipients by template name. Groups are ordered by
// first appearance and keep snapshot order within a group.
func groupByTemplate(recipients []Recipient) [][]Recipient {
	index := make(map[string]int)
	var groups [][]Recipient
	for _, r := range recipients {
		i, ok := index[r.TemplateName]
		if !ok {
			i = len(groups)
			index[r.TemplateName] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], r)
	}
	return groups
}

// splitEven splits items into the fewest batches of at most limit items,
// with batch sizes differing by at most one.
func splitEven[T any](items []T, limit int) [][]T {
	n := len(items)
	if n == 0 {
		return nil
	}
	if limit < 1 || n <= limit {
		return [][]T{items}
	}
	batches := (n + limit - 1) / limit
	base, extra := n/batches, n%batches
	out := make([][]T, 0, batches)
	start := 0
	for i := 0; i < batches; i++ {
		size := base
		if i < extra {
			size++
		}
		out = append(out, items[start:start+size])
		start += size
	}
	return out
}

// --------------------------------------------------------------------------
// Email channel
// --------------------------------------------------------------------------

func (d *Dispatcher) sendEmail(ctx context.Context, logger *slog.Logger, report *Report, recipients []Recipient) {
	for _, rec := range recipients {
		if d.opts.DryRun {
			logger.Info("Dry run: email", "customer_id", rec.CustomerID, "subject", EmailDataFor(rec).Subject())
			report.EmailSent++
			continue
		}
		if _, err := d.deliverEmail(ctx, rec.Email, EmailDataFor(rec)); err != nil {
			report.EmailErrors++
			logger.Warn("Email failed", "customer_id", rec.CustomerID, "error", err)
			continue
		}
		report.EmailSent++
	}
}

func (d *Dispatcher) deliverEmail(ctx context.Context, to string, data EmailData) (string, error) {
	if d.deps.Mailer == nil || d.deps.Renderer == nil {
		return "", pkgerrors.Wrap(ErrNotConfigured, "email gateway is required")
	}
	msg, err := d.deps.Renderer.Render(to, data)
	if err != nil {
		return "", err
	}
	return d.deps.Mailer.Send(ctx, msg)
}

// --------------------------------------------------------------------------
// Test emails
// --------------------------------------------------------------------------

// TestEmailResult is the outcome of a real test email.
type TestEmailResult struct {
	MessageID string            `json:"message_id"`
	Milestone MilestoneSnapshot `json:"milestone"`
}

// SendRealTestEmail composes the milestone email for the subscriber with the
// given address as of runInstant and sends it. The hour and cadence gates do
// not apply; only the email channel is used.
func (d *Dispatcher) SendRealTestEmail(ctx context.Context, address string, runInstant time.Time) (*TestEmailResult, error) {
	catalog, err := d.deps.Catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load milestone catalog: %w", err)
	}
	snapshot, err := d.deps.Subscribers.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan subscribers: %w", err)
	}

	sub, ok := snapshot.FindByEmail(address)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSubscriberNotFound, strings.TrimSpace(address))
	}
	if !sub.EmailEnabled {
		return nil, fmt.Errorf("%w: %s", ErrEmailDisabled, sub.CustomerID)
	}

	decision := Evaluate(sub, runInstant, d.opts.SendHour)
	switch decision.Reason {
	case ReasonNoDevices, ReasonInvalidDates, ReasonFutureRegistration:
		return nil, fmt.Errorf("subscriber %s: %s", sub.CustomerID, decision.Reason)
	}

	rec, err := Compose(sub, decision.DayNumber, catalog, NewRanker(snapshot.All(), runInstant))
	if err != nil {
		return nil, fmt.Errorf("compose %s: %w", sub.CustomerID, err)
	}

	id, err := d.deliverEmail(ctx, sub.Email, EmailDataFor(rec))
	if err != nil {
		return nil, err
	}
	d.logger.Info("Real test email sent", "customer_id", sub.CustomerID, "day", rec.DayNumber, "message_id", id)
	return &TestEmailResult{MessageID: id, Milestone: rec.Snapshot()}, nil
}

// SendTestEmail sends one email with literal display content. No store is read.
func (d *Dispatcher) SendTestEmail(ctx context.Context, to string, data EmailData) (string, error) {
	if strings.TrimSpace(to) == "" {
		return "", errors.New("test email: recipient is required")
	}
	id, err := d.deliverEmail(ctx, to, data)
	if err != nil {
		return "", err
	}
	d.logger.Info("Test email sent", "to", to, "message_id", id)
	return id, nil
}
