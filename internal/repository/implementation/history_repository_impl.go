package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"leadscout-be/internal/constant"
	"leadscout-be/internal/entity"
	"leadscout-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

type historyRepository struct {
	rdb *redis.Client
}

func NewHistoryRepository(rdb *redis.Client) contract.HistoryRepository {
	return &historyRepository{rdb: rdb}
}

func (r *historyRepository) List(ctx context.Context) ([]entity.SearchHistoryItem, error) {
	raw, err := r.rdb.Get(ctx, constant.SearchHistoryKey).Result()
	if errors.Is(err, redis.Nil) {
		return []entity.SearchHistoryItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get search history: %w", err)
	}

	var items []entity.SearchHistoryItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("unmarshal search history: %w", err)
	}
	return items, nil
}

func (r *historyRepository) Replace(ctx context.Context, items []entity.SearchHistoryItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal search history: %w", err)
	}
	if err := r.rdb.Set(ctx, constant.SearchHistoryKey, data, 0).Err(); err != nil {
		return fmt.Errorf("set search history: %w", err)
	}
	return nil
}
