package contract

import (
	"context"

	"leadscout-be/internal/entity"
)

type HistoryRepository interface {
	List(ctx context.Context) ([]entity.SearchHistoryItem, error)
	Replace(ctx context.Context, items []entity.SearchHistoryItem) error
}
