package invoke

import (
	"context"
	"sync"
	"time"

	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/notifications"
)

// serial runs one call at a time.
type serial struct {
	mu  sync.Mutex
	svc Service
}

// Serialized wraps svc so that calls from the HTTP server and the hourly
// scheduler never overlap.
func Serialized(svc Service) Service {
	return &serial{svc: svc}
}

func (s *serial) Run(ctx context.Context) (*notifications.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.svc.Run(ctx)
}

func (s *serial) SendRealTestEmail(ctx context.Context, address string, runInstant time.Time) (*notifications.TestEmailResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.svc.SendRealTestEmail(ctx, address, runInstant)
}

func (s *serial) SendTestEmail(ctx context.Context, to string, data notifications.EmailData) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.svc.SendTestEmail(ctx, to, data)
}
