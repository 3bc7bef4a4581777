package settings

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// defaultRefreshInterval controls how often the snapshot is reloaded when
// no interval is given.
const defaultRefreshInterval = 3 * time.Minute

// Poller reloads the settings snapshot from the database on an interval so
// edits made by another process become visible without a restart.
type Poller struct {
	db       *gorm.DB
	interval time.Duration
}

// NewPoller constructs a Poller. A non-positive interval falls back to the
// default.
func NewPoller(db *gorm.DB, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	return &Poller{db: db, interval: interval}
}

// Start runs the refresh loop until ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if errRefresh := Refresh(ctx, p.db); errRefresh != nil {
					log.WithError(errRefresh).Warn("settings refresh failed")
				}
			}
		}
	}()
}
