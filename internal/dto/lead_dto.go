package dto

import (
	"time"

	"leadscout-be/internal/entity"
)

type LeadSearchRequest struct {
	Query      string `json:"query" validate:"required"`
	SearchType string `json:"search_type" validate:"required,oneof=people companies"`
	NumResults int    `json:"num_results" validate:"omitempty,min=1,max=50"`
}

type LeadSearchResponse struct {
	Leads []entity.Lead `json:"leads"`
	Saved int           `json:"saved"`
}

type ListLeadsQuery struct {
	Type   string `query:"type"`   // person | company | all
	Status string `query:"status"` // pending | accepted | rejected | contacted | all
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

type ListLeadsResponse struct {
	Leads []entity.Lead `json:"leads"`
	Total int           `json:"total"`
}

type UpdateLeadStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending accepted rejected contacted"`
}

type CreateLeadIssueResponse struct {
	IssueKey string `json:"issue_key"`
}

type HistoryResponse struct {
	Items []entity.SearchHistoryItem `json:"items"`
}

type SaveLeadsRequest struct {
	Leads []entity.Lead `json:"leads" validate:"required,min=1"`
}

type SaveLeadsResponse struct {
	Saved     int       `json:"saved"`
	Timestamp time.Time `json:"timestamp"`
}
