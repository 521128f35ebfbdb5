package tools

import (
	"context"
	"fmt"

	"github.com/HendryAvila/dealcoach/internal/activity"
	"github.com/HendryAvila/dealcoach/internal/deals"
	"github.com/HendryAvila/dealcoach/internal/stages"
	"go.uber.org/zap"
)

// DealObserver is notified after a deal write succeeds.
// It's an optional dependency: tools work fine with a nil observer.
type DealObserver interface {
	OnDealCreated(ctx context.Context, d *deals.Deal)
	OnStageChanged(ctx context.Context, d *deals.Deal, from stages.Stage)
	OnDealDeleted(ctx context.Context, d *deals.Deal)
}

// ActivityBridge writes deal lifecycle events to the activity feed.
//
// It is best-effort: feed failures are logged and never fail the deal
// write that triggered them.
type ActivityBridge struct {
	store  *activity.Store
	logger *zap.Logger
}

// NewActivityBridge creates a bridge onto store. Returns nil if store is
// nil, so callers must not wrap the result in a DealObserver blindly.
func NewActivityBridge(store *activity.Store, logger *zap.Logger) *ActivityBridge {
	if store == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityBridge{store: store, logger: logger}
}

// OnDealCreated records a new deal.
func (b *ActivityBridge) OnDealCreated(ctx context.Context, d *deals.Deal) {
	b.record(ctx, &activity.Entry{
		Icon:        "🎯",
		Category:    activity.CategoryPipeline,
		Title:       fmt.Sprintf("Deal created: %s", d.Label()),
		Description: fmt.Sprintf("Starting in %s", d.Stage),
		DealID:      d.ID,
	})
}

// OnStageChanged records a stage move.
func (b *ActivityBridge) OnStageChanged(ctx context.Context, d *deals.Deal, from stages.Stage) {
	icon := "🚀"
	switch d.Stage {
	case stages.StageWon:
		icon = "🏆"
	case stages.StageLost:
		icon = "🪦"
	}
	desc := fmt.Sprintf("%s → %s", from, d.Stage)
	if from == "" {
		desc = fmt.Sprintf("moved to %s", d.Stage)
	}
	b.record(ctx, &activity.Entry{
		Icon:        icon,
		Category:    activity.CategoryPipeline,
		Title:       fmt.Sprintf("%s stage updated", d.Label()),
		Description: desc,
		DealID:      d.ID,
	})
}

// OnDealDeleted records a removal. The deal's interactions are gone by
// now; the feed entry survives.
func (b *ActivityBridge) OnDealDeleted(ctx context.Context, d *deals.Deal) {
	b.record(ctx, &activity.Entry{
		Icon:     "🗑️",
		Category: activity.CategoryPipeline,
		Title:    fmt.Sprintf("Deal deleted: %s", d.Label()),
		DealID:   d.ID,
	})
}

func (b *ActivityBridge) record(ctx context.Context, e *activity.Entry) {
	if err := b.store.Record(ctx, e); err != nil {
		b.logger.Warn("activity bridge: record entry",
			zap.String("title", e.Title),
			zap.String("deal_id", e.DealID),
			zap.Error(err),
		)
	}
}
