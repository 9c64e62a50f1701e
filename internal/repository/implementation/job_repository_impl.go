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

type jobRepository struct {
	rdb *redis.Client
}

func NewJobRepository(rdb *redis.Client) contract.JobRepository {
	return &jobRepository{rdb: rdb}
}

func (r *jobRepository) Get(ctx context.Context, researchId string) (*entity.ResearchJob, error) {
	raw, err := r.rdb.Get(ctx, constant.JobKeyPrefix+researchId).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", researchId, err)
	}

	var job entity.ResearchJob
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return nil, fmt.Errorf("unmarshal job %s: %w", researchId, err)
	}
	return &job, nil
}

func (r *jobRepository) Put(ctx context.Context, job *entity.ResearchJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", job.ResearchId, err)
	}
	// Jobs are never deleted automatically, so no TTL.
	if err := r.rdb.Set(ctx, constant.JobKeyPrefix+job.ResearchId, data, 0).Err(); err != nil {
		return fmt.Errorf("put job %s: %w", job.ResearchId, err)
	}
	return nil
}
