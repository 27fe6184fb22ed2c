package notifications

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/gateway/email"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/gateway/whatsapp"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/milestone"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/subscriber"
)

// --------------------------------------------------------------------------
// Fakes
// --------------------------------------------------------------------------

type fakeSubscribers struct {
	subs []subscriber.Subscriber
	err  error
}

func (f *fakeSubscribers) Scan(context.Context) (*subscriber.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return subscriber.NewSnapshot(f.subs, runInstant), nil
}

type fakeCatalog struct {
	catalog *milestone.Catalog
	err     error
}

func (f *fakeCatalog) Load(context.Context) (*milestone.Catalog, error) {
	return f.catalog, f.err
}

type fakeMessenger struct {
	mu      sync.Mutex
	batches []whatsapp.Batch
	failFor map[string]bool
}

func (f *fakeMessenger) SendTemplateMessages(_ context.Context, b whatsapp.Batch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, b)
	if f.failFor[b.TemplateName] {
		return errors.New("gateway returned 502")
	}
	return nil
}

func (f *fakeMessenger) numbers() []string {
	var out []string
	for _, b := range f.batches {
		for _, r := range b.Receivers {
			out = append(out, r.WhatsAppNumber)
		}
	}
	return out
}

type fakeMailer struct {
	mu      sync.Mutex
	sent    []email.Message
	failFor map[string]bool
}

func (f *fakeMailer) Send(_ context.Context, msg email.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[msg.To] {
		return "", errors.New("smtp 554")
	}
	f.sent = append(f.sent, msg)
	return fmt.Sprintf("<%d@test>", len(f.sent)), nil
}

type fakeLedger struct {
	claimed map[string]bool
	err     error
}

func (f *fakeLedger) Claim(_ context.Context, customerID, localDate string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	key := customerID + "|" + localDate
	if f.claimed[key] {
		return false, nil
	}
	f.claimed[key] = true
	return true, nil
}

type fakeRecorder struct{ reports []*Report }

func (f *fakeRecorder) Record(r *Report) { f.reports = append(f.reports, r) }

type harness struct {
	messenger *fakeMessenger
	mailer    *fakeMailer
	recorder  *fakeRecorder
	ledger    *fakeLedger
}

func newDispatcher(t *testing.T, subs []subscriber.Subscriber, opts Options, withLedger bool) (*Dispatcher, *harness) {
	t.Helper()
	renderer, err := NewEmailRenderer("", nil)
	require.NoError(t, err)

	h := &harness{
		messenger: &fakeMessenger{failFor: map[string]bool{}},
		mailer:    &fakeMailer{failFor: map[string]bool{}},
		recorder:  &fakeRecorder{},
	}
	deps := Deps{
		Subscribers: &fakeSubscribers{subs: subs},
		Catalog:     &fakeCatalog{catalog: testCatalog(t)},
		Messenger:   h.messenger,
		Mailer:      h.mailer,
		Renderer:    renderer,
		Recorder:    h.recorder,
	}
	if withLedger {
		h.ledger = &fakeLedger{claimed: map[string]bool{}}
		deps.Ledger = h.ledger
	}
	if opts.SendHour == 0 {
		opts.SendHour = 10
	}
	return NewDispatcher(deps, opts, nil), h
}

const day7 = "2025-02-25T09:00:00Z"

// --------------------------------------------------------------------------
// Scenarios
// --------------------------------------------------------------------------

func TestRunScenarios(t *testing.T) {
	t.Parallel()

	subs := []subscriber.Subscriber{
		newSubscriber("amsterdam", "NL", day7, nil),
		newSubscriber("newyork", "US", day7, map[string]any{"phone": "+12125550100", "email": "ny@x.com"}),
		newSubscriber("optout", "NL", day7, map[string]any{"phone": "+31600000001", "email": "opt@x.com", "whatsapp_notifications": false}),
		newSubscriber("nodevices", "NL", "", map[string]any{"phone": "+31600000002", "email": "none@x.com"}),
		newSubscriber("onboarding", "NL", "2025-03-04T07:30:00Z", map[string]any{"phone": "+31600000003", "email": "new@x.com"}),
	}

	d, h := newDispatcher(t, subs, Options{}, false)
	report, err := d.RunAt(context.Background(), runInstant)
	require.NoError(t, err)

	assert.Equal(t, 5, report.Scanned)
	assert.Equal(t, 3, report.Eligible)
	assert.Equal(t, 1, report.SkippedHour)
	assert.Equal(t, 1, report.SkippedNoDevices)
	assert.Equal(t, 0, report.SkippedOptOut)
	assert.Equal(t, 1, report.MessagingOptedOut)
	assert.Equal(t, 2, report.MessagingSent)
	assert.Equal(t, 3, report.EmailSent)
	assert.Equal(t, 2, report.BatchCount)
	assert.Equal(t, "2025-03-04T09:00:00Z", report.RunInstant.Format(time.RFC3339))
	assert.NotEmpty(t, report.RunID)

	// One batch per template.
	require.Len(t, h.messenger.batches, 2)
	byTemplate := map[string]whatsapp.Batch{}
	for _, b := range h.messenger.batches {
		byTemplate[b.TemplateName] = b
	}
	m1 := byTemplate["m1"]
	assert.Equal(t, "Milestone Day - m1", m1.BroadcastName)
	require.Len(t, m1.Receivers, 1)
	assert.Equal(t, "31612345678", m1.Receivers[0].WhatsAppNumber)
	assert.Contains(t, m1.Receivers[0].CustomParams, whatsapp.Param{Name: "king_queen_days", Value: "83"})
	assert.Contains(t, m1.Receivers[0].CustomParams, whatsapp.Param{Name: "query", Value: "customer_id=amsterdam"})

	m0 := byTemplate["m0"]
	require.Len(t, m0.Receivers, 1)
	assert.Equal(t, "31600000003", m0.Receivers[0].WhatsAppNumber)

	// Opted-out subscriber still gets email; nobody else outside the gates does.
	assert.NotContains(t, h.messenger.numbers(), "31600000001")
	var to []string
	for _, m := range h.mailer.sent {
		to = append(to, m.To)
		assert.Equal(t, "milestone_notification", m.Tags["campaign"])
	}
	assert.ElementsMatch(t, []string{"alex@x.com", "opt@x.com", "new@x.com"}, to)

	require.Len(t, h.recorder.reports, 1)
	assert.Same(t, report, h.recorder.reports[0])
}

func TestRunPopulationRank(t *testing.T) {
	t.Parallel()

	// Days in focus {0, 3, 7, 30}; the day-0 and day-7 members are due.
	d, h := newDispatcher(t, populationWithDays(0, 3, 7, 30), Options{}, false)

	report, err := d.RunAt(context.Background(), runInstant)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Eligible)

	var params []whatsapp.Param
	for _, b := range h.messenger.batches {
		if b.TemplateName == "m1" {
			params = b.Receivers[0].CustomParams
		}
	}
	assert.Contains(t, params, whatsapp.Param{Name: "percentage", Value: "50"})
}

func TestRunBothChannelsOptedOut(t *testing.T) {
	t.Parallel()

	subs := []subscriber.Subscriber{
		newSubscriber("quiet", "NL", day7, map[string]any{"whatsapp_notifications": false, "email_enabled": false}),
		newSubscriber("nophone", "NL", day7, map[string]any{"phone": "", "email_enabled": false}),
	}
	d, h := newDispatcher(t, subs, Options{}, false)

	report, err := d.RunAt(context.Background(), runInstant)
	require.NoError(t, err)
	assert.Equal(t, 2, report.SkippedOptOut)
	assert.Empty(t, h.messenger.batches)
	assert.Empty(t, h.mailer.sent)
	assert.Equal(t, 0, report.BatchCount)
}

func TestRunChannelFailures(t *testing.T) {
	t.Parallel()

	subs := []subscriber.Subscriber{
		newSubscriber("a", "NL", day7, map[string]any{"phone": "+31600000011", "email": "a@x.com"}),
		newSubscriber("b", "NL", day7, map[string]any{"phone": "+31600000012", "email": "b@x.com"}),
		newSubscriber("c", "NL", "2025-03-04T08:00:00Z", map[string]any{"phone": "+31600000013", "email": "c@x.com"}),
	}
	d, h := newDispatcher(t, subs, Options{}, false)
	h.messenger.failFor["m1"] = true
	h.mailer.failFor["b@x.com"] = true

	report, err := d.RunAt(context.Background(), runInstant)
	require.NoError(t, err)

	assert.Equal(t, 2, report.MessagingErrors)
	assert.Equal(t, 1, report.MessagingSent)
	assert.Equal(t, 1, report.EmailErrors)
	assert.Equal(t, 2, report.EmailSent)
	assert.Equal(t, 3, report.Errors())
}

func TestRunSplitsLargeGroups(t *testing.T) {
	t.Parallel()

	var subs []subscriber.Subscriber
	for i := 0; i < 7; i++ {
		subs = append(subs, newSubscriber(fmt.Sprintf("s%d", i), "NL", day7, map[string]any{
			"phone": fmt.Sprintf("+3160000010%d", i),
			"email": "",
		}))
	}
	d, h := newDispatcher(t, subs, Options{MaxBatch: 3}, false)

	report, err := d.RunAt(context.Background(), runInstant)
	require.NoError(t, err)

	require.Len(t, h.messenger.batches, 3)
	var sizes []int
	for _, b := range h.messenger.batches {
		sizes = append(sizes, len(b.Receivers))
	}
	assert.Equal(t, []int{3, 2, 2}, sizes)
	assert.Equal(t, 3, report.BatchCount)
	assert.Equal(t, 7, report.MessagingSent)

	// Snapshot order is kept across sub-batches.
	assert.Equal(t, "31600000100", h.messenger.numbers()[0])
	assert.Equal(t, "31600000106", h.messenger.numbers()[6])
}

func TestRunLedgerPreventsSecondSendSameLocalDay(t *testing.T) {
	t.Parallel()

	subs := []subscriber.Subscriber{newSubscriber("a", "NL", day7, nil)}
	d, h := newDispatcher(t, subs, Options{}, true)

	first, err := d.RunAt(context.Background(), runInstant)
	require.NoError(t, err)
	assert.Equal(t, 1, first.MessagingSent)

	// A repeated 10:00 hour on the same local date is suppressed.
	second, err := d.RunAt(context.Background(), runInstant.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, second.SkippedDuplicate)
	assert.Equal(t, 0, second.MessagingSent)
	assert.Len(t, h.messenger.batches, 1)
}

func TestRunLedgerErrorStillSends(t *testing.T) {
	t.Parallel()

	subs := []subscriber.Subscriber{newSubscriber("a", "NL", day7, nil)}
	d, h := newDispatcher(t, subs, Options{}, true)
	h.ledger.err = errors.New("redis down")

	report, err := d.RunAt(context.Background(), runInstant)
	require.NoError(t, err)
	assert.Equal(t, 1, report.MessagingSent)
	assert.Equal(t, 1, report.EmailSent)
}

func TestRunDryRunCallsNoGateway(t *testing.T) {
	t.Parallel()

	subs := []subscriber.Subscriber{newSubscriber("a", "NL", day7, nil)}
	d, h := newDispatcher(t, subs, Options{DryRun: true}, true)

	report, err := d.RunAt(context.Background(), runInstant)
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.MessagingSent)
	assert.Equal(t, 1, report.EmailSent)
	assert.Empty(t, h.messenger.batches)
	assert.Empty(t, h.mailer.sent)
	assert.Empty(t, h.ledger.claimed)
}

func TestRunIsRepeatable(t *testing.T) {
	t.Parallel()

	subs := []subscriber.Subscriber{
		newSubscriber("a", "NL", day7, nil),
		newSubscriber("b", "NL", "2025-03-04T08:00:00Z", map[string]any{"phone": "+31600000013"}),
	}
	d, h := newDispatcher(t, subs, Options{}, false)

	_, err := d.RunAt(context.Background(), runInstant)
	require.NoError(t, err)
	first := append([]whatsapp.Batch(nil), h.messenger.batches...)

	h.messenger.batches = nil
	_, err = d.RunAt(context.Background(), runInstant)
	require.NoError(t, err)
	assert.Equal(t, first, h.messenger.batches)
}

func TestRunConfigurationErrors(t *testing.T) {
	t.Parallel()

	d, h := newDispatcher(t, nil, Options{}, false)
	_, err := d.RunAt(context.Background(), runInstant)
	assert.ErrorIs(t, err, ErrEmptyPopulation)

	d.deps.Catalog = &fakeCatalog{err: milestone.ErrEmptyCatalog}
	_, err = d.RunAt(context.Background(), runInstant)
	assert.ErrorIs(t, err, milestone.ErrEmptyCatalog)

	d.deps.Catalog = &fakeCatalog{catalog: testCatalog(t)}
	d.deps.Subscribers = &fakeSubscribers{err: errors.New("connection refused")}
	_, err = d.RunAt(context.Background(), runInstant)
	assert.Error(t, err)

	d.deps.Messenger = nil
	_, err = d.RunAt(context.Background(), runInstant)
	assert.ErrorIs(t, err, ErrNotConfigured)

	assert.Empty(t, h.messenger.batches)
	assert.Empty(t, h.mailer.sent)
	assert.Empty(t, h.recorder.reports)
}

func TestRunComposeDeclineIsCounted(t *testing.T) {
	t.Parallel()

	subs := []subscriber.Subscriber{
		newSubscriber("robot", "NL", day7, map[string]any{"gender": "robot"}),
		newSubscriber("a", "NL", day7, nil),
	}
	d, _ := newDispatcher(t, subs, Options{}, false)

	report, err := d.RunAt(context.Background(), runInstant)
	require.NoError(t, err)
	assert.Equal(t, 1, report.SkippedInvalid)
	assert.Equal(t, 1, report.MessagingSent)
}

// --------------------------------------------------------------------------
// Test emails
// --------------------------------------------------------------------------

func TestSendRealTestEmail(t *testing.T) {
	t.Parallel()

	subs := []subscriber.Subscriber{
		// Day 9: no gate applies to the real test email.
		newSubscriber("a", "NL", "2025-02-23T09:00:00Z", map[string]any{"email": "Alex@X.com"}),
		newSubscriber("off", "NL", day7, map[string]any{"email": "off@x.com", "email_enabled": false}),
	}
	d, h := newDispatcher(t, subs, Options{}, false)

	res, err := d.SendRealTestEmail(context.Background(), "alex@x.com", runInstant.Add(5*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "<1@test>", res.MessageID)
	assert.Equal(t, 9, res.Milestone.DayNumber)
	assert.Equal(t, "Fighter 🥊", res.Milestone.Current)
	assert.Equal(t, "m1", res.Milestone.TemplateName)
	assert.Empty(t, h.messenger.batches)
	require.Len(t, h.mailer.sent, 1)
	assert.Equal(t, "9 Days in Focus, Fighter 🥊 → Warrior ⚔️", h.mailer.sent[0].Subject)

	_, err = d.SendRealTestEmail(context.Background(), "nobody@x.com", runInstant)
	assert.ErrorIs(t, err, ErrSubscriberNotFound)

	_, err = d.SendRealTestEmail(context.Background(), "off@x.com", runInstant)
	assert.ErrorIs(t, err, ErrEmailDisabled)
}

func TestSendTestEmail(t *testing.T) {
	t.Parallel()

	d, h := newDispatcher(t, nil, Options{}, false)
	id, err := d.SendTestEmail(context.Background(), "qa@x.com", sampleEmailData())
	require.NoError(t, err)
	assert.Equal(t, "<1@test>", id)
	require.Len(t, h.mailer.sent, 1)
	assert.Equal(t, "qa@x.com", h.mailer.sent[0].To)

	_, err = d.SendTestEmail(context.Background(), "", sampleEmailData())
	assert.Error(t, err)
}

func TestSplitEven(t *testing.T) {
	t.Parallel()

	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	testCases := []struct {
		name  string
		limit int
		want  []int
	}{
		{name: "fits", limit: 10, want: []int{10}},
		{name: "two even", limit: 5, want: []int{5, 5}},
		{name: "three uneven", limit: 4, want: []int{4, 3, 3}},
		{name: "singles", limit: 1, want: []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var sizes []int
			for _, b := range splitEven(items, tc.limit) {
				sizes = append(sizes, len(b))
			}
			assert.Equal(t, tc.want, sizes)
		})
	}
	assert.Nil(t, splitEven([]int{}, 3))
}
