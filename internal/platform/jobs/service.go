package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"peopledesk/internal/domain/notifications"
	"peopledesk/internal/domain/worktime"
	"peopledesk/internal/platform/config"
)

const JobSessionAutoClose = "session_auto_close"

// Service runs background maintenance. The only scheduled job completes
// work sessions left running or paused past the office closing hour, so a
// forgotten timer never accrues overnight.
type Service struct {
	Sessions      *worktime.Store
	Notifications *notifications.Service
	Cfg           config.Config
	queue         chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config) *Service {
	return &Service{
		Sessions:      worktime.NewStore(db),
		Notifications: notifications.New(db),
		Cfg:           cfg,
		queue:         make(chan job, 64),
	}
}

// Start launches the worker and schedulers. All goroutines exit when ctx
// is cancelled; tickers are stopped on the way out.
func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.SessionAutoCloseInterval > 0 {
		go s.scheduleAutoClose(ctx, s.Cfg.SessionAutoCloseInterval)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := j.Run(ctx); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) scheduleAutoClose(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobSessionAutoClose, s.runAutoClose)
		}
	}
}

func (s *Service) runAutoClose(ctx context.Context) (any, error) {
	// Anything started before today's office opening is stale by now.
	now := time.Now()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	closed, err := s.Sessions.AutoCloseStale(ctx, cutoff)
	for _, session := range closed {
		message := fmt.Sprintf("Work session from %s was closed automatically at end of day", session.StartTime.Format("2006-01-02"))
		if notifyErr := s.Notifications.Create(ctx, session.EmployeeID, notifications.KindSessionAutoClosed, message); notifyErr != nil {
			slog.Warn("auto-close notification failed", "employeeId", session.EmployeeID, "err", notifyErr)
		}
	}
	return map[string]any{"closed": len(closed)}, err
}
