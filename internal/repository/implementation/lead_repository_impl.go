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

type leadRepository struct {
	rdb *redis.Client
}

func NewLeadRepository(rdb *redis.Client) contract.LeadRepository {
	return &leadRepository{rdb: rdb}
}

func (r *leadRepository) List(ctx context.Context) ([]entity.Lead, error) {
	raw, err := r.rdb.Get(ctx, constant.LeadsKey).Result()
	if errors.Is(err, redis.Nil) {
		return []entity.Lead{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get leads: %w", err)
	}

	var leads []entity.Lead
	if err := json.Unmarshal([]byte(raw), &leads); err != nil {
		return nil, fmt.Errorf("unmarshal leads: %w", err)
	}
	return leads, nil
}

func (r *leadRepository) Replace(ctx context.Context, leads []entity.Lead) error {
	data, err := json.Marshal(leads)
	if err != nil {
		return fmt.Errorf("marshal leads: %w", err)
	}
	if err := r.rdb.Set(ctx, constant.LeadsKey, data, 0).Err(); err != nil {
		return fmt.Errorf("set leads: %w", err)
	}
	return nil
}
