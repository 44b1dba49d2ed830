package services

import "context"

// StatsInvalidator drops cached read models after writes that change point
// totals or team composition.
type StatsInvalidator interface {
	Invalidate(ctx context.Context)
}

func invalidate(ctx context.Context, inv StatsInvalidator) {
	if inv != nil {
		inv.Invalidate(ctx)
	}
}
