package worker

import (
	"context"
	"time"

	"github.com/incubo-lab/pitchreview/pkg/utils/logging"
)

// IdleSessionReleaser releases edit sessions unused for at least idle.
type IdleSessionReleaser interface {
	ReleaseIdleSessions(ctx context.Context, idle time.Duration) int
}

// EditSessionReaper periodically cancels edit sessions abandoned by their
// reviewer.
//
// Edit sessions live in process memory, so one reaper per server instance is
// enough.
type EditSessionReaper struct {
	releaser IdleSessionReleaser
	idle     time.Duration
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewEditSessionReaper creates a reaper that checks every interval for
// sessions idle longer than idle.
func NewEditSessionReaper(releaser IdleSessionReleaser, idle, interval time.Duration) *EditSessionReaper {
	return &EditSessionReaper{
		releaser: releaser,
		idle:     idle,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background loop. It does not block.
func (w *EditSessionReaper) Start(ctx context.Context) {
	logging.From(ctx).Info("edit session reaper starting",
		"idle", w.idle.String(),
		"interval", w.interval.String())

	go w.run(ctx)
}

// Stop signals the reaper to stop and waits for the loop to exit
func (w *EditSessionReaper) Stop() {
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("edit session reaper stopped")
}

func (w *EditSessionReaper) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.reap(ctx)

		case <-w.stopCh:
			return

		case <-ctx.Done():
			return
		}
	}
}

func (w *EditSessionReaper) reap(ctx context.Context) {
	if n := w.releaser.ReleaseIdleSessions(ctx, w.idle); n > 0 {
		logging.From(ctx).Info("released idle edit sessions", "count", n)
	}
}
