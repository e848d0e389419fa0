package scheduler

import (
	"github.com/jwliao/babymall-backend/internal/app/service"
	"github.com/jwliao/babymall-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// CategorySyncScheduler periodically backfills main categories from the
// legacy category name strings still present on products.
type CategorySyncScheduler struct {
	cron            *cron.Cron
	categoryService service.CategoryService
	schedule        string
}

func NewCategorySyncScheduler(categoryService service.CategoryService, schedule string) *CategorySyncScheduler {
	return &CategorySyncScheduler{
		cron:            cron.New(),
		categoryService: categoryService,
		schedule:        schedule,
	}
}

func (s *CategorySyncScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		logger.Info("Starting scheduled category sync", nil)

		result, err := s.categoryService.SyncFromProducts()
		if err != nil {
			logger.Error("Scheduled category sync failed", err, nil)
			return
		}

		logger.Info("Scheduled category sync completed", map[string]interface{}{
			"created_main": result.CreatedMain,
		})
	})

	if err != nil {
		logger.Error("Failed to register category sync cron job", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Category sync scheduler started", map[string]interface{}{
		"schedule": s.schedule,
	})

	return nil
}

func (s *CategorySyncScheduler) Stop() {
	logger.Info("Stopping category sync scheduler...", nil)
	s.cron.Stop()
	logger.Info("Category sync scheduler stopped", nil)
}
