package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/sideeye/pkg/domain"
)

// LogHooks returns lifecycle hooks that write one structured log line per event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTrialBuilt: func(ctx context.Context, e *domain.TrialEvent) {
			logger.InfoContext(ctx, "trial_built",
				"trial_key", e.TrialKey,
				"item", e.ItemNumber,
				"fixations", e.Fixations,
				"excluded", e.Excluded,
				"saccades", e.Saccades,
			)
		},
		OnTrialRejected: func(ctx context.Context, e *domain.TrialEvent) {
			logger.WarnContext(ctx, "trial_rejected",
				"trial_key", e.TrialKey,
				"item", e.ItemNumber,
				"err", e.Err,
			)
		},
		OnTrialMeasured: func(ctx context.Context, e *domain.TrialEvent) {
			logger.InfoContext(ctx, "trial_measured", "trial_key", e.TrialKey)
		},
	}
}

// Combine merges several sets of hooks; each event is delivered to all of them in order.
func Combine(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var built, rejected, measured []func(context.Context, *domain.TrialEvent)
	for _, h := range hooks {
		if h.OnTrialBuilt != nil {
			built = append(built, h.OnTrialBuilt)
		}
		if h.OnTrialRejected != nil {
			rejected = append(rejected, h.OnTrialRejected)
		}
		if h.OnTrialMeasured != nil {
			measured = append(measured, h.OnTrialMeasured)
		}
	}
	return domain.LifecycleHooks{
		OnTrialBuilt:    fanOut(built),
		OnTrialRejected: fanOut(rejected),
		OnTrialMeasured: fanOut(measured),
	}
}

func fanOut(fns []func(context.Context, *domain.TrialEvent)) func(context.Context, *domain.TrialEvent) {
	if len(fns) == 0 {
		return nil
	}
	return func(ctx context.Context, e *domain.TrialEvent) {
		for _, fn := range fns {
			fn(ctx, e)
		}
	}
}
