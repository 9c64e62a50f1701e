package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"leadscout-be/internal/constant"
	"leadscout-be/internal/dto"
	"leadscout-be/internal/entity"
	"leadscout-be/internal/pkg/logger"
	"leadscout-be/internal/repository/contract"
	"leadscout-be/pkg/events"
	"leadscout-be/pkg/exa"

	"github.com/google/uuid"
)

// QueuePublisher is the durable dispatch queue surface. *nats.Publisher is
// the real implementation.
type QueuePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
	PublishEvent(ctx context.Context, event events.Event) error
}

type IResearchService interface {
	// ResearchSync runs a bounded research cycle inside the request and
	// returns the formatted report text. Full poll-to-completion cycles
	// belong on the async path.
	ResearchSync(ctx context.Context, req dto.ResearchRequest) (string, error)

	// Enqueue hands the request to the dispatch queue and returns as soon
	// as the queue acknowledges it.
	Enqueue(ctx context.Context, req dto.ResearchRequest) (*dto.EnqueueResearchResponse, error)

	// GetJob returns the durable job record, or nil when unknown.
	GetJob(ctx context.Context, researchId string) (*dto.JobResponse, error)
}

type researchService struct {
	jobs         contract.JobRepository
	queue        QueuePublisher
	syncProvider exa.Provider
	log          logger.ILogger
}

func NewResearchService(
	jobs contract.JobRepository,
	queue QueuePublisher,
	syncProvider exa.Provider,
	log logger.ILogger,
) IResearchService {
	return &researchService{
		jobs:         jobs,
		queue:        queue,
		syncProvider: syncProvider,
		log:          log,
	}
}

func (s *researchService) ResearchSync(ctx context.Context, req dto.ResearchRequest) (string, error) {
	report, err := s.syncProvider.SubmitResearch(ctx, req.Query, req.EntityType)
	if err != nil {
		return "", fmt.Errorf("research for %q failed: %w", req.Query, err)
	}
	return report, nil
}

func (s *researchService) Enqueue(ctx context.Context, req dto.ResearchRequest) (*dto.EnqueueResearchResponse, error) {
	researchId := uuid.NewString()

	job := &entity.ResearchJob{
		ResearchId: researchId,
		Query:      req.Query,
		EntityType: entity.EntityType(req.EntityType),
		Status:     entity.JobQueued,
		CreatedAt:  time.Now(),
	}
	if err := s.jobs.Put(ctx, job); err != nil {
		return nil, fmt.Errorf("write queued job record: %w", err)
	}

	msg := dto.ResearchQueueMessage{
		ResearchId: researchId,
		Query:      req.Query,
		EntityType: req.EntityType,
		IssueKey:   req.IssueKey,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal queue message: %w", err)
	}
	if err := s.queue.Publish(ctx, constant.ResearchRequestedSubject, payload); err != nil {
		return nil, fmt.Errorf("enqueue research: %w", err)
	}

	s.log.Info("Research", "Research enqueued", map[string]interface{}{
		"research_id": researchId,
		"query":       req.Query,
		"entity_type": req.EntityType,
	})

	return &dto.EnqueueResearchResponse{
		ResearchId: researchId,
		Status:     string(entity.JobQueued),
	}, nil
}

func (s *researchService) GetJob(ctx context.Context, researchId string) (*dto.JobResponse, error) {
	job, err := s.jobs.Get(ctx, researchId)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, nil
	}
	return jobToResponse(job), nil
}

func jobToResponse(job *entity.ResearchJob) *dto.JobResponse {
	resp := &dto.JobResponse{
		ResearchId:  job.ResearchId,
		Query:       job.Query,
		EntityType:  string(job.EntityType),
		Status:      string(job.Status),
		CreatedAt:   job.CreatedAt,
		CompletedAt: job.CompletedAt,
		Error:       job.Error,
	}
	if job.Result != nil {
		resp.PageURL = job.Result.PageURL
		resp.PageTitle = job.Result.PageTitle
	}
	return resp
}
