package entity

import "time"

type EntityType string

const (
	EntityPerson  EntityType = "person"
	EntityCompany EntityType = "company"
)

type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCanceled  JobStatus = "canceled"
)

// JobResult is only present on completed jobs.
type JobResult struct {
	PageURL   string `json:"page_url"`
	PageTitle string `json:"page_title"`
}

// ResearchJob tracks one asynchronous research request from enqueue to its
// terminal state. Status only moves forward; a terminal job is never mutated
// again (redelivered queue messages must treat it as a no-op).
type ResearchJob struct {
	ResearchId  string     `json:"research_id"`
	Query       string     `json:"query"`
	EntityType  EntityType `json:"entity_type"`
	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Result      *JobResult `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Terminal reports whether the job has reached a state after which no
// further status mutation is allowed.
func (j *ResearchJob) Terminal() bool {
	return j.Status == JobCompleted || j.Status == JobFailed || j.Status == JobCanceled
}
