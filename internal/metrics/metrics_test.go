package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/notifications"
)

func sampleReport() *notifications.Report {
	return &notifications.Report{
		RunInstant:      time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC),
		Scanned:         10,
		Eligible:        4,
		SkippedHour:     5,
		SkippedCadence:  1,
		MessagingSent:   3,
		MessagingErrors: 1,
		EmailSent:       4,
		BatchCount:      2,
		Duration:        1500 * time.Millisecond,
	}
}

func TestRecord(t *testing.T) {
	t.Parallel()

	m := New()
	m.Record(sampleReport())
	m.Record(sampleReport())

	assert.InDelta(t, 2, testutil.ToFloat64(m.runs), 0)
	assert.InDelta(t, 8, testutil.ToFloat64(m.subscribers.WithLabelValues("eligible")), 0)
	assert.InDelta(t, 10, testutil.ToFloat64(m.subscribers.WithLabelValues("skipped_hour")), 0)
	assert.InDelta(t, 6, testutil.ToFloat64(m.sends.WithLabelValues("whatsapp", "sent")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.sends.WithLabelValues("whatsapp", "error")), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(m.batches), 0)
	assert.InDelta(t, 1741078800, testutil.ToFloat64(m.lastRun), 0)
}

func TestHandler(t *testing.T) {
	t.Parallel()

	m := New()
	m.Record(sampleReport())

	srv := httptest.NewServer(m.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `milestone_sends_total{channel="email",result="sent"} 4`)
	assert.Contains(t, string(body), "milestone_runs_total 1")
}

func TestPush(t *testing.T) {
	t.Parallel()

	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	m := New()
	m.Record(sampleReport())
	require.NoError(t, m.Push(srv.URL))
	assert.Equal(t, "/metrics/job/milestone_dispatcher", path)
}
