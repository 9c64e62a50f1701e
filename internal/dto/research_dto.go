package dto

import "time"

type ResearchRequest struct {
	Query      string `json:"query" validate:"required"`
	EntityType string `json:"entity_type" validate:"required,oneof=person company"`
	// IssueKey, when present, receives a linking comment once the page is
	// published.
	IssueKey string `json:"issue_key,omitempty"`
}

// ResearchQueueMessage is the payload handed to the dispatch queue.
type ResearchQueueMessage struct {
	ResearchId string `json:"research_id"`
	Query      string `json:"query"`
	EntityType string `json:"entity_type"`
	IssueKey   string `json:"issue_key,omitempty"`
}

type EnqueueResearchResponse struct {
	ResearchId string `json:"research_id"`
	Status     string `json:"status"`
}

type SyncResearchResponse struct {
	Report string `json:"report"`
}

type JobResponse struct {
	ResearchId  string     `json:"research_id"`
	Query       string     `json:"query"`
	EntityType  string     `json:"entity_type"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	PageURL     string     `json:"page_url,omitempty"`
	PageTitle   string     `json:"page_title,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// JobUpdateMessage is broadcast over the in-process bus to websocket
// clients whenever a job changes status.
type JobUpdateMessage struct {
	ResearchId string `json:"research_id"`
	Status     string `json:"status"`
	PageURL    string `json:"page_url,omitempty"`
	Error      string `json:"error,omitempty"`
}
