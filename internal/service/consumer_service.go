package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"leadscout-be/internal/config"
	"leadscout-be/internal/constant"
	"leadscout-be/internal/dto"
	"leadscout-be/internal/entity"
	"leadscout-be/internal/pkg/logger"
	"leadscout-be/internal/pkg/mailer"
	"leadscout-be/internal/repository/contract"
	"leadscout-be/pkg/confluence"
	"leadscout-be/pkg/events"
	"leadscout-be/pkg/exa"
	"leadscout-be/pkg/jira"
	"leadscout-be/pkg/markup"
	pkgnats "leadscout-be/pkg/nats"
)

// queueSubscriber lets tests run the consumer without a NATS server.
type queueSubscriber interface {
	Subscribe(subject string, durableName string, handler pkgnats.MessageHandler) error
}

type IConsumerService interface {
	// Start registers the durable queue consumer.
	Start() error

	// HandleMessage processes one delivered dispatch message. A non-nil
	// return causes redelivery, so it is only used for infrastructure
	// failures that happen before any side effect.
	HandleMessage(ctx context.Context, data []byte) error
}

type consumerService struct {
	sub       queueSubscriber
	jobs      contract.JobRepository
	settings  contract.SettingsRepository
	provider  exa.Provider
	wiki      confluence.API
	tracker   jira.API
	mail      mailer.IEmailService
	queue     QueuePublisher
	updates   IPublisherService
	formatter *markup.Formatter
	cfg       *config.Config
	log       logger.ILogger
}

func NewConsumerService(
	sub queueSubscriber,
	jobs contract.JobRepository,
	settings contract.SettingsRepository,
	provider exa.Provider,
	wiki confluence.API,
	tracker jira.API,
	mail mailer.IEmailService,
	queue QueuePublisher,
	updates IPublisherService,
	cfg *config.Config,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		sub:       sub,
		jobs:      jobs,
		settings:  settings,
		provider:  provider,
		wiki:      wiki,
		tracker:   tracker,
		mail:      mail,
		queue:     queue,
		updates:   updates,
		formatter: markup.NewFormatter(),
		cfg:       cfg,
		log:       log,
	}
}

func (cs *consumerService) Start() error {
	return cs.sub.Subscribe(constant.ResearchRequestedSubject, constant.ResearchWorkerDurable, cs.HandleMessage)
}

func (cs *consumerService) HandleMessage(ctx context.Context, data []byte) error {
	var msg dto.ResearchQueueMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		// Ack malformed payloads, redelivery cannot fix them.
		cs.log.Error("Consumer", "Failed to unmarshal dispatch message", map[string]interface{}{"error": err.Error()})
		return nil
	}
	if msg.ResearchId == "" {
		cs.log.Error("Consumer", "Dispatch message without research id", nil)
		return nil
	}

	job, err := cs.jobs.Get(ctx, msg.ResearchId)
	if err != nil {
		// No side effects yet, safe to retry via redelivery.
		return fmt.Errorf("load job %s: %w", msg.ResearchId, err)
	}
	if job != nil && job.Terminal() {
		// Redelivered message for a finished job: at-least-once delivery
		// makes this normal, not an error.
		cs.log.Info("Consumer", "Job already terminal, skipping", map[string]interface{}{
			"research_id": msg.ResearchId,
			"status":      string(job.Status),
		})
		return nil
	}
	if job == nil {
		job = &entity.ResearchJob{
			ResearchId: msg.ResearchId,
			Query:      msg.Query,
			EntityType: entity.EntityType(msg.EntityType),
			Status:     entity.JobQueued,
			CreatedAt:  time.Now(),
		}
	}

	job.Status = entity.JobRunning
	if err := cs.jobs.Put(ctx, job); err != nil {
		return fmt.Errorf("mark job %s running: %w", msg.ResearchId, err)
	}
	cs.publishUpdate(ctx, job)

	cs.log.Info("Consumer", "Processing research job", map[string]interface{}{
		"research_id": msg.ResearchId,
		"query":       msg.Query,
	})

	report, err := cs.provider.SubmitResearch(ctx, msg.Query, string(job.EntityType))
	if err != nil {
		return cs.fail(ctx, job, fmt.Errorf("research: %w", err))
	}

	spaceKey, err := cs.resolveSpace(ctx)
	if err != nil {
		return cs.fail(ctx, job, err)
	}

	body := cs.formatter.ToStorageFormat(report, msg.Query, string(job.EntityType))
	page, err := cs.wiki.CreatePage(ctx, spaceKey, "Research: "+msg.Query, body)
	if err != nil {
		return cs.fail(ctx, job, fmt.Errorf("create page: %w", err))
	}

	now := time.Now()
	job.Status = entity.JobCompleted
	job.CompletedAt = &now
	job.Result = &entity.JobResult{
		PageURL:   page.WebLink,
		PageTitle: page.Title,
	}
	if err := cs.jobs.Put(ctx, job); err != nil {
		// The page already exists; surfacing this to the queue would
		// redeliver and publish a duplicate. Leave the record as-is.
		cs.log.Error("Consumer", "Failed to write completed job record", map[string]interface{}{
			"research_id": msg.ResearchId,
			"error":       err.Error(),
		})
		return nil
	}

	cs.log.Info("Consumer", "Research job completed", map[string]interface{}{
		"research_id": msg.ResearchId,
		"page_url":    page.WebLink,
	})

	cs.notifyCompleted(ctx, job, msg)
	return nil
}

// fail writes the terminal failed record and swallows the error: the queue
// must never see it, or redelivery would re-run a job we already failed.
func (cs *consumerService) fail(ctx context.Context, job *entity.ResearchJob, cause error) error {
	if job.Terminal() {
		return nil
	}

	now := time.Now()
	job.Status = entity.JobFailed
	job.CompletedAt = &now
	job.Error = cause.Error()

	if err := cs.jobs.Put(ctx, job); err != nil {
		cs.log.Error("Consumer", "Failed to write failed job record", map[string]interface{}{
			"research_id": job.ResearchId,
			"error":       err.Error(),
		})
		return nil
	}

	cs.log.Error("Consumer", "Research job failed", map[string]interface{}{
		"research_id": job.ResearchId,
		"error":       cause.Error(),
	})

	cs.publishUpdate(ctx, job)
	if err := cs.queue.PublishEvent(ctx, events.ResearchFailed(job.ResearchId, job.Query, cause.Error())); err != nil {
		cs.log.Warn("Consumer", "Failed to publish lifecycle event", map[string]interface{}{"error": err.Error()})
	}
	return nil
}

// resolveSpace picks the publish target: stored settings, then the
// configured default, then the first listed space. No space at all fails
// the job with an actionable message.
func (cs *consumerService) resolveSpace(ctx context.Context) (string, error) {
	settings, err := cs.settings.Get(ctx)
	if err != nil {
		cs.log.Warn("Consumer", "Failed to load settings, using defaults", map[string]interface{}{"error": err.Error()})
	}
	if settings != nil && settings.SpaceKey != "" {
		return settings.SpaceKey, nil
	}
	if cs.cfg.Atlassian.SpaceKey != "" {
		return cs.cfg.Atlassian.SpaceKey, nil
	}

	spaces, err := cs.wiki.ListSpaces(ctx)
	if err != nil {
		return "", fmt.Errorf("list spaces: %w", err)
	}
	if len(spaces) == 0 {
		return "", fmt.Errorf("no Confluence space available to publish research; set space_key in settings")
	}
	return spaces[0].Key, nil
}

func (cs *consumerService) publishUpdate(ctx context.Context, job *entity.ResearchJob) {
	update := dto.JobUpdateMessage{
		ResearchId: job.ResearchId,
		Status:     string(job.Status),
		Error:      job.Error,
	}
	if job.Result != nil {
		update.PageURL = job.Result.PageURL
	}
	if err := cs.updates.PublishJobUpdate(ctx, update); err != nil {
		cs.log.Warn("Consumer", "Failed to publish job update", map[string]interface{}{"error": err.Error()})
	}
}

// notifyCompleted sends the linking notifications. All of them are
// best-effort: the job record is already terminal.
func (cs *consumerService) notifyCompleted(ctx context.Context, job *entity.ResearchJob, msg dto.ResearchQueueMessage) {
	cs.publishUpdate(ctx, job)

	if err := cs.queue.PublishEvent(ctx, events.ResearchCompleted(job.ResearchId, job.Query, job.Result.PageURL)); err != nil {
		cs.log.Warn("Consumer", "Failed to publish lifecycle event", map[string]interface{}{"error": err.Error()})
	}

	if msg.IssueKey != "" && cs.tracker != nil {
		comment := fmt.Sprintf("Research page published: %s (%s)", job.Result.PageTitle, job.Result.PageURL)
		if err := cs.tracker.AddComment(ctx, msg.IssueKey, comment); err != nil {
			cs.log.Warn("Consumer", "Failed to add linking comment", map[string]interface{}{
				"issue_key": msg.IssueKey,
				"error":     err.Error(),
			})
		}
	}

	if cs.mail != nil && cs.cfg.SMTP.NotifyEmail != "" {
		if err := cs.mail.SendResearchCompleted(cs.cfg.SMTP.NotifyEmail, job.Query, job.Result.PageTitle, job.Result.PageURL); err != nil {
			cs.log.Warn("Consumer", "Failed to send notification email", map[string]interface{}{"error": err.Error()})
		}
	}
}
