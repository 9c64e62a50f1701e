package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leadscout-be/internal/config"
	"leadscout-be/internal/constant"
	"leadscout-be/internal/dto"
	"leadscout-be/internal/entity"
	"leadscout-be/internal/pkg/logger"
	"leadscout-be/internal/repository/contract"
	"leadscout-be/pkg/exa"
	"leadscout-be/pkg/jira"

	"github.com/google/uuid"
)

type ILeadService interface {
	Search(ctx context.Context, req dto.LeadSearchRequest) (*dto.LeadSearchResponse, error)
	List(ctx context.Context, q dto.ListLeadsQuery) (*dto.ListLeadsResponse, error)
	SaveLeads(ctx context.Context, leads []entity.Lead) (int, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	CreateIssue(ctx context.Context, id string) (*dto.CreateLeadIssueResponse, error)
	History(ctx context.Context) (*dto.HistoryResponse, error)
}

type leadService struct {
	leads    contract.LeadRepository
	history  contract.HistoryRepository
	settings contract.SettingsRepository
	provider exa.Provider
	tracker  jira.API
	cfg      *config.Config
	log      logger.ILogger
}

func NewLeadService(
	leads contract.LeadRepository,
	history contract.HistoryRepository,
	settings contract.SettingsRepository,
	provider exa.Provider,
	tracker jira.API,
	cfg *config.Config,
	log logger.ILogger,
) ILeadService {
	return &leadService{
		leads:    leads,
		history:  history,
		settings: settings,
		provider: provider,
		tracker:  tracker,
		cfg:      cfg,
		log:      log,
	}
}

func (s *leadService) Search(ctx context.Context, req dto.LeadSearchRequest) (*dto.LeadSearchResponse, error) {
	settings := s.loadSettings(ctx)

	numResults := req.NumResults
	if numResults <= 0 {
		numResults = settings.DefaultResultCount
	}

	category := exa.CategoryPeople
	entityType := entity.EntityPerson
	if req.SearchType == "companies" {
		category = exa.CategoryCompany
		entityType = entity.EntityCompany
	}

	searchReq := exa.SearchRequest{
		Query:      req.Query,
		NumResults: numResults,
		Category:   category,
	}
	searchReq.Contents.Text = true
	searchReq.Contents.Highlights.NumSentences = 2
	searchReq.Contents.Highlights.HighlightsPerURL = 1

	results, err := s.provider.Search(ctx, searchReq)
	if err != nil {
		return nil, fmt.Errorf("lead search failed: %w", err)
	}

	leads := make([]entity.Lead, 0, len(results))
	for _, r := range results {
		leads = append(leads, resultToLead(r, entityType))
	}

	saved := 0
	if settings.AutoSaveLeads && len(leads) > 0 {
		n, err := s.SaveLeads(ctx, leads)
		if err != nil {
			// Auto-save is a convenience; the search result still stands.
			s.log.Warn("Lead", "Auto-save of leads failed", map[string]interface{}{"error": err.Error()})
		} else {
			saved = n
		}
	}

	s.recordSearch(ctx, req.Query, req.SearchType, len(results))

	return &dto.LeadSearchResponse{Leads: leads, Saved: saved}, nil
}

func resultToLead(r exa.SearchResult, entityType entity.EntityType) entity.Lead {
	id := r.Id
	if id == "" {
		// Weak fallback identifier; uniqueness is probabilistic only.
		id = uuid.NewString()
	}

	summary := r.Text
	if summary == "" && len(r.Highlights) > 0 {
		summary = strings.Join(r.Highlights, " ")
	}
	if len(summary) > 400 {
		summary = summary[:400] + "..."
	}

	lead := entity.Lead{
		Id:      id,
		Type:    entityType,
		Name:    r.Title,
		Summary: summary,
		Status:  entity.LeadPending,
		FoundAt: time.Now(),
	}
	if entityType == entity.EntityCompany {
		lead.Website = r.URL
	} else {
		lead.ProfileURL = r.URL
	}
	return lead
}

func (s *leadService) SaveLeads(ctx context.Context, leads []entity.Lead) (int, error) {
	existing, err := s.leads.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("load leads: %w", err)
	}

	merged := entity.MergeLeads(existing, leads, constant.MaxStoredLeads)
	if err := s.leads.Replace(ctx, merged); err != nil {
		return 0, fmt.Errorf("store leads: %w", err)
	}
	return len(merged) - len(existing) + countEvicted(existing, merged), nil
}

// countEvicted accounts for old entries pushed out by the retention cap so
// the saved count reflects actual insertions.
func countEvicted(existing, merged []entity.Lead) int {
	if len(merged) < constant.MaxStoredLeads {
		return 0
	}
	kept := make(map[string]bool, len(merged))
	for _, l := range merged {
		kept[l.Id] = true
	}
	evicted := 0
	for _, l := range existing {
		if !kept[l.Id] {
			evicted++
		}
	}
	return evicted
}

func (s *leadService) List(ctx context.Context, q dto.ListLeadsQuery) (*dto.ListLeadsResponse, error) {
	all, err := s.leads.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load leads: %w", err)
	}

	filtered := entity.FilterLeads(all, q.Type, q.Status)
	total := len(filtered)

	// Pagination after sorting.
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > len(filtered) {
		offset = len(filtered)
	}
	filtered = filtered[offset:]
	if q.Limit > 0 && q.Limit < len(filtered) {
		filtered = filtered[:q.Limit]
	}

	return &dto.ListLeadsResponse{Leads: filtered, Total: total}, nil
}

func (s *leadService) UpdateStatus(ctx context.Context, id, status string) error {
	all, err := s.leads.List(ctx)
	if err != nil {
		return fmt.Errorf("load leads: %w", err)
	}

	for i := range all {
		if all[i].Id == id {
			// Any transition between the four statuses is legal.
			all[i].Status = entity.LeadStatus(status)
			return s.leads.Replace(ctx, all)
		}
	}
	return fmt.Errorf("lead %s not found", id)
}

func (s *leadService) Delete(ctx context.Context, id string) error {
	all, err := s.leads.List(ctx)
	if err != nil {
		return fmt.Errorf("load leads: %w", err)
	}

	kept := make([]entity.Lead, 0, len(all))
	found := false
	for _, l := range all {
		if l.Id == id {
			found = true
			continue
		}
		kept = append(kept, l)
	}
	if !found {
		return fmt.Errorf("lead %s not found", id)
	}
	return s.leads.Replace(ctx, kept)
}

func (s *leadService) CreateIssue(ctx context.Context, id string) (*dto.CreateLeadIssueResponse, error) {
	all, err := s.leads.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load leads: %w", err)
	}

	var lead *entity.Lead
	for i := range all {
		if all[i].Id == id {
			lead = &all[i]
			break
		}
	}
	if lead == nil {
		return nil, fmt.Errorf("lead %s not found", id)
	}

	settings := s.loadSettings(ctx)
	projectKey := settings.JiraProjectKey
	if projectKey == "" {
		projectKey = s.cfg.Atlassian.ProjectKey
	}
	if projectKey == "" {
		return nil, fmt.Errorf("no Jira project key configured; set jira_project_key in settings")
	}

	description := lead.Summary
	if url := lead.DedupKey(); url != "" {
		description = fmt.Sprintf("%s\n\nSource: %s", description, url)
	}

	issue, err := s.tracker.CreateIssue(ctx, projectKey, "Lead: "+lead.Name, description, []string{"lead", string(lead.Type)})
	if err != nil {
		return nil, fmt.Errorf("create tracking issue: %w", err)
	}
	return &dto.CreateLeadIssueResponse{IssueKey: issue.Key}, nil
}

func (s *leadService) History(ctx context.Context) (*dto.HistoryResponse, error) {
	items, err := s.history.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load search history: %w", err)
	}
	return &dto.HistoryResponse{Items: items}, nil
}

// recordSearch appends a history entry. Failures are logged and swallowed:
// history must never fail the primary search action.
func (s *leadService) recordSearch(ctx context.Context, query, searchType string, resultCount int) {
	items, err := s.history.List(ctx)
	if err != nil {
		s.log.Warn("Lead", "Failed to load search history", map[string]interface{}{"error": err.Error()})
		return
	}

	item := entity.SearchHistoryItem{
		Id:          uuid.NewString(),
		Query:       query,
		SearchType:  searchType,
		Timestamp:   time.Now(),
		ResultCount: resultCount,
	}
	items = entity.PrependHistory(items, item, constant.MaxSearchHistory)

	if err := s.history.Replace(ctx, items); err != nil {
		s.log.Warn("Lead", "Failed to store search history", map[string]interface{}{"error": err.Error()})
	}
}

func (s *leadService) loadSettings(ctx context.Context) *entity.Settings {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.log.Warn("Lead", "Failed to load settings, using defaults", map[string]interface{}{"error": err.Error()})
	}
	if settings == nil {
		settings = entity.DefaultSettings()
	}
	return settings
}
