package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/speedial/speedial/internal/githubsync"
	"github.com/speedial/speedial/internal/logger"
)

// dailySpec fires at local midnight, so a backup lands at most once per
// calendar day regardless of how long the process has been up.
const dailySpec = "0 0 * * *"

// DailySyncer uploads the dataset to GitHub once a day and on manual
// trigger. An upload failure is logged and retried at the next boundary.
type DailySyncer struct {
	syncer        *githubsync.Syncer
	logger        logger.Logger
	cron          *cron.Cron
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewDailySyncer creates a daily sync runner. manualTrigger may be nil
// when no on-demand channel is wired.
func NewDailySyncer(syncer *githubsync.Syncer, log logger.Logger, manualTrigger chan struct{}) *DailySyncer {
	return &DailySyncer{
		syncer:        syncer,
		logger:        log,
		cron:          cron.New(),
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start schedules the midnight upload and begins listening for manual
// triggers. It does not sync immediately; the first upload happens at
// the next boundary or trigger.
func (ds *DailySyncer) Start(ctx context.Context) error {
	if !ds.syncer.Configured() {
		return githubsync.ErrNotConfigured
	}

	_, err := ds.cron.AddFunc(dailySpec, func() {
		ds.run(ctx, "scheduled")
	})
	if err != nil {
		return fmt.Errorf("schedule daily sync: %w", err)
	}
	ds.cron.Start()

	go func() {
		for {
			select {
			case <-ds.manualTrigger:
				ds.logger.Info("manual sync triggered")
				ds.run(ctx, "manual")
			case <-ds.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	ds.logger.Info("daily sync scheduled", logger.String("spec", dailySpec))
	return nil
}

// Stop halts the cron schedule and the trigger listener.
func (ds *DailySyncer) Stop() {
	stopCtx := ds.cron.Stop()
	<-stopCtx.Done()
	close(ds.stopCh)
}

func (ds *DailySyncer) run(ctx context.Context, reason string) {
	start := time.Now()
	if err := ds.syncer.Up(ctx); err != nil {
		ds.logger.Error("daily sync failed",
			logger.String("reason", reason),
			logger.Error(err))
		return
	}
	ds.logger.Info("daily sync complete",
		logger.String("reason", reason),
		logger.Duration("took", time.Since(start)))
}
