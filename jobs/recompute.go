package jobs

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/CantarellH/distribuidora-api-sub001/models"
	"github.com/CantarellH/distribuidora-api-sub001/reconcile"
	"github.com/CantarellH/distribuidora-api-sub001/stores"
)

// Recomputer periodically refreshes every remission's stored TotalCost and
// IsPaid projections from current state, so a projection can never stay
// stale longer than one schedule interval.
type Recomputer struct {
	cron     *cron.Cron
	db       *gorm.DB
	schedule string
	logger   *zap.Logger
}

func NewRecomputer(db *gorm.DB, schedule string, logger *zap.Logger) *Recomputer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if schedule == "" {
		schedule = "@hourly"
	}
	return &Recomputer{
		cron:     cron.New(),
		db:       db,
		schedule: schedule,
		logger:   logger,
	}
}

func (r *Recomputer) Start() error {
	if _, err := r.cron.AddFunc(r.schedule, r.RunOnce); err != nil {
		return err
	}
	r.cron.Start()
	r.logger.Info("recompute job scheduled", zap.String("schedule", r.schedule))
	return nil
}

func (r *Recomputer) Stop() {
	r.cron.Stop()
}

// RunOnce recomputes all remissions in one transaction per remission, so a
// single bad row cannot block the rest.
func (r *Recomputer) RunOnce() {
	var ids []uint
	if err := r.db.Model(&models.Remission{}).Pluck("id", &ids).Error; err != nil {
		r.logger.Error("recompute: listing remissions failed", zap.Error(err))
		return
	}

	var failed int
	for _, id := range ids {
		err := r.db.Transaction(func(tx *gorm.DB) error {
			gs := stores.NewGorm(tx)
			allocator := reconcile.NewAllocator(gs, gs, gs)
			_, err := allocator.Recompute(id)
			return err
		})
		if err != nil {
			failed++
			r.logger.Error("recompute failed", zap.Uint("remission_id", id), zap.Error(err))
		}
	}

	r.logger.Info("recompute pass finished",
		zap.Int("remissions", len(ids)),
		zap.Int("failed", failed),
	)
}
