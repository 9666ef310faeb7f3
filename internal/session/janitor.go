package session

import (
	"context"
	"time"

	"github.com/Skotchmaster/feed_shop/pkg/logging"
)

// RunJanitor prunes expired sessions every interval until ctx is cancelled.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	l := logging.FromContext(ctx).With("component", "session_janitor")
	if interval <= 0 {
		interval = time.Hour
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := m.Store.Prune(ctx, m.now())
			if err != nil {
				l.Error("session_prune_error", "error", err)
				continue
			}
			if n > 0 {
				l.Info("session_prune", "removed", n)
			}
		}
	}
}
