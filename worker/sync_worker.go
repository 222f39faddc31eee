package worker

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	controller "leadpilot/controllers"
	"leadpilot/utils"
)

// SyncWorker periodically runs the reply-sync pipeline so replies keep
// flowing in without anyone hitting the sync endpoint
type SyncWorker struct {
	db       *gorm.DB
	logger   *log.Logger
	interval time.Duration
	sync     *controller.SyncController
}

func NewSyncWorker(db *gorm.DB, ai *utils.AIClient, interval time.Duration, logger *log.Logger) *SyncWorker {
	return &SyncWorker{
		db:       db,
		logger:   logger,
		interval: interval,
		sync:     controller.NewSyncController(db, ai, logger),
	}
}

func (sw *SyncWorker) Start(ctx context.Context) {
	if sw.interval <= 0 {
		sw.logger.Println("Sync worker disabled (no interval configured)")
		return
	}

	sw.logger.Printf("Starting sync worker, interval %s", sw.interval)
	ticker := time.NewTicker(sw.interval)

	for {
		select {
		case <-ticker.C:
			found, err := sw.sync.RunSync()
			if err != nil {
				sw.logger.Printf("Scheduled sync failed: %v", err)
				continue
			}
			if found > 0 {
				sw.logger.Printf("Scheduled sync ingested %d new replies", found)
			}
		case <-ctx.Done():
			sw.logger.Println("Stopping sync worker...")
			ticker.Stop()
			return
		}
	}
}
