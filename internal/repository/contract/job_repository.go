package contract

import (
	"context"

	"leadscout-be/internal/entity"
)

// JobRepository is the durable research-job store. Get returns (nil, nil)
// when the id is unknown. The store guarantees single-key atomicity only;
// the consumer is the sole writer per job in normal operation.
type JobRepository interface {
	Get(ctx context.Context, researchId string) (*entity.ResearchJob, error)
	Put(ctx context.Context, job *entity.ResearchJob) error
}
