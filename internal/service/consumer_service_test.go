package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"leadscout-be/internal/config"
	"leadscout-be/internal/dto"
	"leadscout-be/internal/entity"
	"leadscout-be/pkg/confluence"
	"leadscout-be/pkg/events"
	"leadscout-be/pkg/exa"
	"leadscout-be/pkg/jira"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- shared fakes for the service package ----

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type memJobRepo struct {
	jobs   map[string]*entity.ResearchJob
	getErr error
	putErr error
	// putErrFor limits putErr to writes of jobs in one status.
	putErrFor entity.JobStatus
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: make(map[string]*entity.ResearchJob)}
}

func (r *memJobRepo) Get(ctx context.Context, researchId string) (*entity.ResearchJob, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	job, ok := r.jobs[researchId]
	if !ok {
		return nil, nil
	}
	copied := *job
	return &copied, nil
}

func (r *memJobRepo) Put(ctx context.Context, job *entity.ResearchJob) error {
	if r.putErr != nil && (r.putErrFor == "" || job.Status == r.putErrFor) {
		return r.putErr
	}
	copied := *job
	r.jobs[job.ResearchId] = &copied
	return nil
}

type memSettingsRepo struct {
	settings *entity.Settings
	err      error
}

func (r *memSettingsRepo) Get(ctx context.Context) (*entity.Settings, error) {
	return r.settings, r.err
}

func (r *memSettingsRepo) Save(ctx context.Context, settings *entity.Settings) error {
	r.settings = settings
	return nil
}

type fakeProvider struct {
	report     string
	submitErr  error
	submits    int
	results    []exa.SearchResult
	searchErr  error
	lastSearch exa.SearchRequest
}

func (p *fakeProvider) Search(ctx context.Context, req exa.SearchRequest) ([]exa.SearchResult, error) {
	p.lastSearch = req
	return p.results, p.searchErr
}

func (p *fakeProvider) SubmitResearch(ctx context.Context, subject, entityType string) (string, error) {
	p.submits++
	return p.report, p.submitErr
}

type createdPage struct {
	SpaceKey string
	Title    string
	Body     string
}

type fakeWiki struct {
	spaces    []confluence.Space
	listErr   error
	createErr error
	pages     []createdPage
}

func (w *fakeWiki) ListSpaces(ctx context.Context) ([]confluence.Space, error) {
	return w.spaces, w.listErr
}

func (w *fakeWiki) CreatePage(ctx context.Context, spaceKey, title, storageBody string) (*confluence.Page, error) {
	if w.createErr != nil {
		return nil, w.createErr
	}
	w.pages = append(w.pages, createdPage{SpaceKey: spaceKey, Title: title, Body: storageBody})
	return &confluence.Page{
		Id:      "4242",
		Title:   title,
		WebLink: "https://example.atlassian.net/wiki/spaces/RES/pages/4242",
	}, nil
}

type fakeTracker struct {
	createdIssues []string
	comments      map[string]string
	createErr     error
}

func (t *fakeTracker) CreateIssue(ctx context.Context, projectKey, summary, description string, labels []string) (*jira.Issue, error) {
	if t.createErr != nil {
		return nil, t.createErr
	}
	t.createdIssues = append(t.createdIssues, summary)
	return &jira.Issue{Key: projectKey + "-1"}, nil
}

func (t *fakeTracker) GetIssue(ctx context.Context, key string) (*jira.IssueDetails, error) {
	return nil, errors.New("not implemented")
}

func (t *fakeTracker) AddComment(ctx context.Context, key, body string) error {
	if t.comments == nil {
		t.comments = make(map[string]string)
	}
	t.comments[key] = body
	return nil
}

type fakeMailer struct {
	sentTo []string
}

func (m *fakeMailer) SendResearchCompleted(toEmail, subject, pageTitle, pageURL string) error {
	m.sentTo = append(m.sentTo, toEmail)
	return nil
}

type fakeQueue struct {
	subjects []string
	payloads [][]byte
	events   []events.Event
	pubErr   error
}

func (q *fakeQueue) Publish(ctx context.Context, subject string, data []byte) error {
	if q.pubErr != nil {
		return q.pubErr
	}
	q.subjects = append(q.subjects, subject)
	q.payloads = append(q.payloads, data)
	return nil
}

func (q *fakeQueue) PublishEvent(ctx context.Context, event events.Event) error {
	q.events = append(q.events, event)
	return nil
}

type fakeUpdates struct {
	updates []dto.JobUpdateMessage
}

func (u *fakeUpdates) PublishJobUpdate(ctx context.Context, update dto.JobUpdateMessage) error {
	u.updates = append(u.updates, update)
	return nil
}

// ---- consumer fixtures ----

type consumerFixture struct {
	jobs     *memJobRepo
	settings *memSettingsRepo
	provider *fakeProvider
	wiki     *fakeWiki
	tracker  *fakeTracker
	mail     *fakeMailer
	queue    *fakeQueue
	updates  *fakeUpdates
	cfg      *config.Config
	consumer IConsumerService
}

func newConsumerFixture() *consumerFixture {
	f := &consumerFixture{
		jobs:     newMemJobRepo(),
		settings: &memSettingsRepo{settings: &entity.Settings{SpaceKey: "RES", DefaultResultCount: 10}},
		provider: &fakeProvider{report: "# Report\n\nAcme Corp builds anvils."},
		wiki:     &fakeWiki{spaces: []confluence.Space{{Key: "RES", Name: "Research"}}},
		tracker:  &fakeTracker{},
		mail:     &fakeMailer{},
		queue:    &fakeQueue{},
		updates:  &fakeUpdates{},
		cfg:      &config.Config{},
	}
	f.consumer = NewConsumerService(
		nil, f.jobs, f.settings, f.provider, f.wiki, f.tracker, f.mail, f.queue, f.updates, f.cfg, nopLogger{},
	)
	return f
}

func dispatchPayload(t *testing.T, msg dto.ResearchQueueMessage) []byte {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	return data
}

func TestHandleMessageCompletesJob(t *testing.T) {
	f := newConsumerFixture()
	f.cfg.SMTP.NotifyEmail = "ops@example.com"
	f.jobs.Put(context.Background(), &entity.ResearchJob{
		ResearchId: "job-1",
		Query:      "Acme Corp",
		EntityType: entity.EntityCompany,
		Status:     entity.JobQueued,
		CreatedAt:  time.Now(),
	})

	msg := dto.ResearchQueueMessage{
		ResearchId: "job-1",
		Query:      "Acme Corp",
		EntityType: "company",
		IssueKey:   "SALES-7",
	}
	err := f.consumer.HandleMessage(context.Background(), dispatchPayload(t, msg))
	require.NoError(t, err)

	job := f.jobs.jobs["job-1"]
	require.NotNil(t, job)
	assert.Equal(t, entity.JobCompleted, job.Status)
	require.NotNil(t, job.CompletedAt)
	require.NotNil(t, job.Result)
	assert.Equal(t, "Research: Acme Corp", job.Result.PageTitle)
	assert.NotEmpty(t, job.Result.PageURL)

	require.Len(t, f.wiki.pages, 1)
	assert.Equal(t, "RES", f.wiki.pages[0].SpaceKey)
	assert.Contains(t, f.wiki.pages[0].Body, "Acme Corp builds anvils.")

	// running then completed over the update bus
	require.Len(t, f.updates.updates, 2)
	assert.Equal(t, "running", f.updates.updates[0].Status)
	assert.Equal(t, "completed", f.updates.updates[1].Status)
	assert.NotEmpty(t, f.updates.updates[1].PageURL)

	require.Len(t, f.queue.events, 1)
	assert.Equal(t, "RESEARCH_COMPLETED", f.queue.events[0].EventType())

	assert.Contains(t, f.tracker.comments["SALES-7"], "Research page published")
	assert.Equal(t, []string{"ops@example.com"}, f.mail.sentTo)
}

func TestHandleMessageCreatesJobWhenRecordMissing(t *testing.T) {
	f := newConsumerFixture()

	msg := dto.ResearchQueueMessage{ResearchId: "job-2", Query: "Jane Doe", EntityType: "person"}
	err := f.consumer.HandleMessage(context.Background(), dispatchPayload(t, msg))
	require.NoError(t, err)

	job := f.jobs.jobs["job-2"]
	require.NotNil(t, job)
	assert.Equal(t, entity.JobCompleted, job.Status)
	assert.Equal(t, "Jane Doe", job.Query)
}

func TestHandleMessageResearchFailureIsTerminalNotRetried(t *testing.T) {
	f := newConsumerFixture()
	f.provider.submitErr = errors.New("research provider down")

	msg := dto.ResearchQueueMessage{ResearchId: "job-3", Query: "Acme Corp", EntityType: "company"}
	err := f.consumer.HandleMessage(context.Background(), dispatchPayload(t, msg))

	// nil keeps the queue from redelivering a job we already failed
	require.NoError(t, err)

	job := f.jobs.jobs["job-3"]
	require.NotNil(t, job)
	assert.Equal(t, entity.JobFailed, job.Status)
	assert.Contains(t, job.Error, "research provider down")
	require.NotNil(t, job.CompletedAt)

	require.Len(t, f.queue.events, 1)
	assert.Equal(t, "RESEARCH_FAILED", f.queue.events[0].EventType())
	assert.Empty(t, f.wiki.pages)
}

func TestHandleMessagePageCreationFailureFailsJob(t *testing.T) {
	f := newConsumerFixture()
	f.wiki.createErr = errors.New("confluence 502")

	msg := dto.ResearchQueueMessage{ResearchId: "job-4", Query: "Acme Corp", EntityType: "company"}
	err := f.consumer.HandleMessage(context.Background(), dispatchPayload(t, msg))
	require.NoError(t, err)

	job := f.jobs.jobs["job-4"]
	require.NotNil(t, job)
	assert.Equal(t, entity.JobFailed, job.Status)
	assert.Contains(t, job.Error, "create page")
}

func TestHandleMessageCompletedRecordWriteFailureIsNotRetried(t *testing.T) {
	f := newConsumerFixture()
	f.jobs.putErr = errors.New("redis: connection refused")
	f.jobs.putErrFor = entity.JobCompleted

	msg := dto.ResearchQueueMessage{ResearchId: "job-9", Query: "Acme Corp", EntityType: "company"}
	err := f.consumer.HandleMessage(context.Background(), dispatchPayload(t, msg))

	// the page already exists, so the queue must ack; an error here would
	// redeliver and publish the same page twice
	require.NoError(t, err)
	require.Len(t, f.wiki.pages, 1)
	assert.Equal(t, 1, f.provider.submits)
}

func TestHandleMessageTerminalJobIsNoOp(t *testing.T) {
	f := newConsumerFixture()
	now := time.Now()
	f.jobs.Put(context.Background(), &entity.ResearchJob{
		ResearchId:  "job-5",
		Query:       "Acme Corp",
		EntityType:  entity.EntityCompany,
		Status:      entity.JobCompleted,
		CreatedAt:   now,
		CompletedAt: &now,
		Result:      &entity.JobResult{PageURL: "https://example/pages/1", PageTitle: "Research: Acme Corp"},
	})

	msg := dto.ResearchQueueMessage{ResearchId: "job-5", Query: "Acme Corp", EntityType: "company"}
	err := f.consumer.HandleMessage(context.Background(), dispatchPayload(t, msg))
	require.NoError(t, err)

	// redelivery of a finished job must not research or publish again
	assert.Equal(t, 0, f.provider.submits)
	assert.Empty(t, f.wiki.pages)
	assert.Empty(t, f.updates.updates)
}

func TestHandleMessageStoreErrorIsRetried(t *testing.T) {
	f := newConsumerFixture()
	f.jobs.getErr = errors.New("redis: connection refused")

	msg := dto.ResearchQueueMessage{ResearchId: "job-6", Query: "Acme Corp", EntityType: "company"}
	err := f.consumer.HandleMessage(context.Background(), dispatchPayload(t, msg))

	// no side effects happened yet, so redelivery is the right outcome
	require.Error(t, err)
	assert.Equal(t, 0, f.provider.submits)
}

func TestHandleMessageMalformedPayloadIsAcked(t *testing.T) {
	f := newConsumerFixture()

	err := f.consumer.HandleMessage(context.Background(), []byte("{not json"))
	require.NoError(t, err)
	assert.Equal(t, 0, f.provider.submits)
}

func TestResolveSpaceFallsBackToFirstListed(t *testing.T) {
	f := newConsumerFixture()
	f.settings.settings = &entity.Settings{}
	f.wiki.spaces = []confluence.Space{{Key: "TEAM", Name: "Team"}, {Key: "DOCS", Name: "Docs"}}

	msg := dto.ResearchQueueMessage{ResearchId: "job-7", Query: "Acme Corp", EntityType: "company"}
	err := f.consumer.HandleMessage(context.Background(), dispatchPayload(t, msg))
	require.NoError(t, err)

	require.Len(t, f.wiki.pages, 1)
	assert.Equal(t, "TEAM", f.wiki.pages[0].SpaceKey)
}

func TestResolveSpaceNoneAvailableFailsJob(t *testing.T) {
	f := newConsumerFixture()
	f.settings.settings = &entity.Settings{}
	f.wiki.spaces = nil

	msg := dto.ResearchQueueMessage{ResearchId: "job-8", Query: "Acme Corp", EntityType: "company"}
	err := f.consumer.HandleMessage(context.Background(), dispatchPayload(t, msg))
	require.NoError(t, err)

	job := f.jobs.jobs["job-8"]
	require.NotNil(t, job)
	assert.Equal(t, entity.JobFailed, job.Status)
	assert.Contains(t, job.Error, "no Confluence space available")
}
