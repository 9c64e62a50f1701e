package contract

import (
	"context"

	"leadscout-be/internal/entity"
)

// LeadRepository stores the whole lead collection under one key; callers
// run load-mutate-store cycles (dedup, retention) on top of it.
type LeadRepository interface {
	List(ctx context.Context) ([]entity.Lead, error)
	Replace(ctx context.Context, leads []entity.Lead) error
}
