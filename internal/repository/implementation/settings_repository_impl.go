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

type settingsRepository struct {
	rdb *redis.Client
}

func NewSettingsRepository(rdb *redis.Client) contract.SettingsRepository {
	return &settingsRepository{rdb: rdb}
}

func (r *settingsRepository) Get(ctx context.Context) (*entity.Settings, error) {
	raw, err := r.rdb.Get(ctx, constant.SettingsKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}

	var s entity.Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	return &s, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *entity.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := r.rdb.Set(ctx, constant.SettingsKey, data, 0).Err(); err != nil {
		return fmt.Errorf("set settings: %w", err)
	}
	return nil
}
