// Package scheduler runs the background ingestion loops: live match
// polling and the nightly archive refresh.
package scheduler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/willow/internal/adapter"
	"github.com/fortuna/willow/internal/cache"
	"github.com/fortuna/willow/internal/models"
	"github.com/fortuna/willow/internal/publisher"
	"github.com/fortuna/willow/internal/source/archive"
	"github.com/fortuna/willow/internal/store/repository"
)

// Broadcaster pushes live updates to connected WebSocket clients.
type Broadcaster interface {
	BroadcastLiveUpdate(data []byte)
}

// Config holds scheduler configuration
type Config struct {
	LivePollInterval   time.Duration // Default: 60s
	ArchiveRefreshSpec string        // cron spec, default: "0 3 * * *"
	EnableLivePolling  bool          // Default: true
	EnableArchiveSync  bool          // Default: true
	MaxRetries         int           // Default: 3
	RetryDelay         time.Duration // Default: 5s
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		LivePollInterval:   60 * time.Second,
		ArchiveRefreshSpec: "0 3 * * *",
		EnableLivePolling:  true,
		EnableArchiveSync:  true,
		MaxRetries:         3,
		RetryDelay:         5 * time.Second,
	}
}

// Orchestrator manages the scheduled ingestion tasks. The publisher,
// broadcaster, archive and repositories are all optional; a nil
// dependency simply disables that output.
type Orchestrator struct {
	data      *adapter.Adapter
	archive   *archive.Client
	publisher *publisher.RedisPublisher
	hot       *cache.RedisCache
	hub       Broadcaster
	matches   *repository.MatchRepository
	players   *repository.PlayerRepository
	config    *Config
	cron      *cron.Cron
	log       *logrus.Entry

	cancel context.CancelFunc
}

// NewOrchestrator creates a new scheduler orchestrator
func NewOrchestrator(data *adapter.Adapter, arc *archive.Client, pub *publisher.RedisPublisher, hot *cache.RedisCache, hub Broadcaster, matches *repository.MatchRepository, players *repository.PlayerRepository, config *Config, log *logrus.Logger) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 5 * time.Second
	}

	return &Orchestrator{
		data:      data,
		archive:   arc,
		publisher: pub,
		hot:       hot,
		hub:       hub,
		matches:   matches,
		players:   players,
		config:    config,
		cron:      cron.New(),
		log:       log.WithField("component", "scheduler"),
	}
}

// Start begins all scheduled tasks and blocks until ctx is cancelled.
func (o *Orchestrator) Start(ctx context.Context) {
	o.log.WithFields(logrus.Fields{
		"live_polling":  o.config.EnableLivePolling,
		"poll_interval": o.config.LivePollInterval.String(),
		"archive_sync":  o.config.EnableArchiveSync,
		"archive_spec":  o.config.ArchiveRefreshSpec,
	}).Info("Scheduler orchestrator starting")

	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	if o.config.EnableLivePolling {
		go o.runLivePolling(ctx)
	}

	if o.config.EnableArchiveSync && o.archive != nil {
		if _, err := o.cron.AddFunc(o.config.ArchiveRefreshSpec, func() {
			o.runArchiveSync(ctx)
		}); err != nil {
			o.log.WithError(err).Error("Invalid archive refresh spec, sync disabled")
		} else {
			o.cron.Start()
		}
	}

	<-ctx.Done()
	o.log.Info("Scheduler orchestrator stopping...")
}

// runLivePolling polls for live match updates
func (o *Orchestrator) runLivePolling(ctx context.Context) {
	o.log.Infof("→ Live match polling started (interval: %v)", o.config.LivePollInterval)

	ticker := time.NewTicker(o.config.LivePollInterval)
	defer ticker.Stop()

	consecutiveEmpty := 0

	// Run immediately on start
	o.pollLiveMatches(ctx, &consecutiveEmpty)

	for {
		select {
		case <-ctx.Done():
			o.log.Info("→ Live match polling stopped")
			return
		case <-ticker.C:
			o.pollLiveMatches(ctx, &consecutiveEmpty)
		}
	}
}

// pollLiveMatches fetches the current live matches and fans them out to
// the WebSocket hub, the Redis streams and the store.
func (o *Orchestrator) pollLiveMatches(ctx context.Context, consecutiveEmpty *int) {
	matches := o.data.LiveMatches(ctx)
	if len(matches) == 0 {
		*consecutiveEmpty++
		// Nothing in play; stay quiet until something starts.
		if *consecutiveEmpty == 1 {
			o.log.Debug("No live matches")
			if o.hot != nil {
				if err := o.hot.Delete(ctx, cache.LiveMatchesKey); err != nil {
					o.log.WithError(err).Debug("Failed to clear hot live-match state")
				}
			}
		}
		return
	}
	*consecutiveEmpty = 0

	if o.hot != nil {
		if err := o.hot.SetJSON(ctx, cache.LiveMatchesKey, matches, 2*o.config.LivePollInterval); err != nil {
			o.log.WithError(err).Warn("Failed to write hot live-match state")
		}
	}

	if o.hub != nil {
		payload, err := json.Marshal(map[string]interface{}{
			"type":    "live_update",
			"matches": matches,
			"count":   len(matches),
		})
		if err == nil {
			o.hub.BroadcastLiveUpdate(payload)
		}
	}

	published := 0
	for i := range matches {
		match := matches[i]

		if o.publisher != nil {
			var err error
			if match.Status == models.StatusCompleted {
				err = o.publisher.PublishMatchResult(ctx, match)
			} else {
				err = o.publisher.PublishLiveMatchUpdate(ctx, match)
			}
			if err != nil {
				o.log.WithError(err).Warnf("Failed to publish match %s", match.Teams)
			} else {
				published++
			}
		}

		if o.matches != nil {
			if _, err := o.matches.Upsert(ctx, &match); err != nil {
				o.log.WithError(err).Warnf("Failed to snapshot match %s", match.Teams)
			}
		}
	}

	if published > 0 {
		o.log.Infof("✓ Published %d live matches to Redis streams", published)
	}
}

// runArchiveSync refreshes the ball-by-ball archive with retries.
func (o *Orchestrator) runArchiveSync(ctx context.Context) {
	o.log.Info("═══ Archive refresh starting ═══")
	start := time.Now()

	var err error
	for attempt := 1; attempt <= o.config.MaxRetries; attempt++ {
		if err = o.archive.Sync(ctx, true); err == nil {
			break
		}

		o.log.Warnf("  Archive sync attempt %d/%d failed: %v", attempt, o.config.MaxRetries, err)
		if attempt < o.config.MaxRetries {
			select {
			case <-ctx.Done():
				return
			case <-time.After(o.config.RetryDelay):
			}
		}
	}

	if err != nil {
		o.log.WithError(err).Error("❌ Archive refresh failed")
		return
	}

	o.snapshotRecentMatches(ctx)
	o.snapshotPlayerPool(ctx)
	o.log.Infof("✓ Archive refresh complete in %v", time.Since(start).Round(time.Second))
}

// snapshotPlayerPool re-resolves every known player against the fresh
// archive and writes the fused records to the store and the stats
// stream.
func (o *Orchestrator) snapshotPlayerPool(ctx context.Context) {
	if o.players == nil && o.publisher == nil {
		return
	}

	saved := 0
	for _, known := range o.data.KnownPlayers() {
		player, err := o.data.PlayerStats(ctx, known.Name)
		if err != nil {
			continue
		}

		if o.players != nil {
			if _, err := o.players.Upsert(ctx, player); err != nil {
				o.log.WithError(err).Warnf("Failed to snapshot player %s", player.Name)
				continue
			}
		}
		if o.publisher != nil {
			if err := o.publisher.PublishPlayerStats(ctx, player); err != nil {
				o.log.WithError(err).Warnf("Failed to publish stats for %s", player.Name)
			}
		}
		saved++
	}

	if saved > 0 {
		o.log.Infof("✓ Snapshotted %d player records", saved)
	}
}

// snapshotRecentMatches writes the freshly synced recent matches to the
// store so they survive cache expiry.
func (o *Orchestrator) snapshotRecentMatches(ctx context.Context) {
	if o.matches == nil {
		return
	}

	matches := o.data.RecentMatches(ctx)
	saved := 0
	for i := range matches {
		if _, err := o.matches.Upsert(ctx, &matches[i]); err != nil {
			o.log.WithError(err).Warnf("Failed to snapshot match %s", matches[i].Teams)
			continue
		}
		saved++
	}

	if saved > 0 {
		o.log.Infof("✓ Snapshotted %d recent matches", saved)
	}
}

// TriggerArchiveSync manually runs an archive refresh.
func (o *Orchestrator) TriggerArchiveSync(ctx context.Context) {
	if o.archive == nil {
		o.log.Warn("Archive source is disabled, nothing to sync")
		return
	}
	o.runArchiveSync(ctx)
}

// GetStatus returns current scheduler status
func (o *Orchestrator) GetStatus() map[string]interface{} {
	return map[string]interface{}{
		"live_polling_enabled": o.config.EnableLivePolling,
		"live_poll_interval":   o.config.LivePollInterval.String(),
		"archive_sync_enabled": o.config.EnableArchiveSync,
		"archive_refresh_spec": o.config.ArchiveRefreshSpec,
	}
}

// Stop gracefully stops the scheduler
func (o *Orchestrator) Stop() {
	o.log.Info("Stopping scheduler orchestrator...")

	if o.cancel != nil {
		o.cancel()
	}

	cronCtx := o.cron.Stop()
	<-cronCtx.Done()

	o.log.Info("✓ Scheduler orchestrator stopped")
}
