package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadscout-be/internal/config"
	"leadscout-be/internal/dto"
	"leadscout-be/internal/entity"
	"leadscout-be/pkg/exa"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLeadRepo struct {
	leads   []entity.Lead
	listErr error
}

func (r *memLeadRepo) List(ctx context.Context) ([]entity.Lead, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.leads, nil
}

func (r *memLeadRepo) Replace(ctx context.Context, leads []entity.Lead) error {
	r.leads = leads
	return nil
}

type memHistoryRepo struct {
	items   []entity.SearchHistoryItem
	listErr error
}

func (r *memHistoryRepo) List(ctx context.Context) ([]entity.SearchHistoryItem, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.items, nil
}

func (r *memHistoryRepo) Replace(ctx context.Context, items []entity.SearchHistoryItem) error {
	r.items = items
	return nil
}

type leadFixture struct {
	leads    *memLeadRepo
	history  *memHistoryRepo
	settings *memSettingsRepo
	provider *fakeProvider
	tracker  *fakeTracker
	cfg      *config.Config
	svc      ILeadService
}

func newLeadFixture() *leadFixture {
	f := &leadFixture{
		leads:    &memLeadRepo{},
		history:  &memHistoryRepo{},
		settings: &memSettingsRepo{settings: &entity.Settings{DefaultResultCount: 10, AutoSaveLeads: true}},
		provider: &fakeProvider{},
		tracker:  &fakeTracker{},
		cfg:      &config.Config{},
	}
	f.svc = NewLeadService(f.leads, f.history, f.settings, f.provider, f.tracker, f.cfg, nopLogger{})
	return f
}

func TestSearchMapsResultsAndAutoSaves(t *testing.T) {
	f := newLeadFixture()
	f.provider.results = []exa.SearchResult{
		{Id: "r1", Title: "Acme Corp", URL: "https://acme.example", Text: "Anvil maker."},
		{Id: "r2", Title: "Globex", URL: "https://globex.example", Text: "Conglomerate."},
	}

	res, err := f.svc.Search(context.Background(), dto.LeadSearchRequest{
		Query:      "anvil manufacturers",
		SearchType: "companies",
	})
	require.NoError(t, err)
	require.Len(t, res.Leads, 2)
	assert.Equal(t, 2, res.Saved)

	assert.Equal(t, exa.CategoryCompany, f.provider.lastSearch.Category)
	assert.Equal(t, 10, f.provider.lastSearch.NumResults)

	lead := res.Leads[0]
	assert.Equal(t, entity.EntityCompany, lead.Type)
	assert.Equal(t, "https://acme.example", lead.Website)
	assert.Empty(t, lead.ProfileURL)
	assert.Equal(t, entity.LeadPending, lead.Status)

	// persisted via auto-save
	assert.Len(t, f.leads.leads, 2)

	require.Len(t, f.history.items, 1)
	assert.Equal(t, "anvil manufacturers", f.history.items[0].Query)
	assert.Equal(t, 2, f.history.items[0].ResultCount)
}

func TestSearchPeopleUsesProfileURL(t *testing.T) {
	f := newLeadFixture()
	f.settings.settings.AutoSaveLeads = false
	f.provider.results = []exa.SearchResult{
		{Id: "p1", Title: "Jane Doe", URL: "https://linkedin.example/jane", Highlights: []string{"Staff engineer."}},
	}

	res, err := f.svc.Search(context.Background(), dto.LeadSearchRequest{
		Query:      "golang engineers",
		SearchType: "people",
		NumResults: 3,
	})
	require.NoError(t, err)
	require.Len(t, res.Leads, 1)
	assert.Equal(t, 0, res.Saved)
	assert.Empty(t, f.leads.leads)

	assert.Equal(t, exa.CategoryPeople, f.provider.lastSearch.Category)
	assert.Equal(t, 3, f.provider.lastSearch.NumResults)

	lead := res.Leads[0]
	assert.Equal(t, entity.EntityPerson, lead.Type)
	assert.Equal(t, "https://linkedin.example/jane", lead.ProfileURL)
	assert.Equal(t, "Staff engineer.", lead.Summary)
}

func TestSearchHistoryFailureDoesNotFailSearch(t *testing.T) {
	f := newLeadFixture()
	f.settings.settings.AutoSaveLeads = false
	f.history.listErr = errors.New("redis down")
	f.provider.results = []exa.SearchResult{{Id: "r1", Title: "Acme", URL: "https://acme.example"}}

	res, err := f.svc.Search(context.Background(), dto.LeadSearchRequest{Query: "acme", SearchType: "companies"})
	require.NoError(t, err)
	assert.Len(t, res.Leads, 1)
}

func TestSaveLeadsDeduplicates(t *testing.T) {
	f := newLeadFixture()
	f.leads.leads = []entity.Lead{
		{Id: "a", Type: entity.EntityCompany, Name: "Acme", Website: "https://acme.example", FoundAt: time.Now()},
	}

	saved, err := f.svc.SaveLeads(context.Background(), []entity.Lead{
		{Id: "dup", Type: entity.EntityCompany, Name: "Acme again", Website: "https://acme.example"},
		{Id: "b", Type: entity.EntityCompany, Name: "Globex", Website: "https://globex.example"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, saved)
	assert.Len(t, f.leads.leads, 2)
	// newest first
	assert.Equal(t, "b", f.leads.leads[0].Id)
}

func TestListFiltersAndPaginates(t *testing.T) {
	f := newLeadFixture()
	base := time.Now()
	f.leads.leads = []entity.Lead{
		{Id: "p1", Type: entity.EntityPerson, Status: entity.LeadPending, FoundAt: base.Add(-3 * time.Hour)},
		{Id: "c1", Type: entity.EntityCompany, Status: entity.LeadAccepted, FoundAt: base.Add(-2 * time.Hour)},
		{Id: "c2", Type: entity.EntityCompany, Status: entity.LeadPending, FoundAt: base.Add(-1 * time.Hour)},
	}

	res, err := f.svc.List(context.Background(), dto.ListLeadsQuery{Type: "company"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, "c2", res.Leads[0].Id)

	res, err = f.svc.List(context.Background(), dto.ListLeadsQuery{Type: "company", Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Leads, 1)
	assert.Equal(t, "c1", res.Leads[0].Id)
}

func TestListNegativeOffsetTreatedAsZero(t *testing.T) {
	f := newLeadFixture()
	f.leads.leads = []entity.Lead{
		{Id: "a", Type: entity.EntityCompany, Status: entity.LeadPending, FoundAt: time.Now()},
	}

	res, err := f.svc.List(context.Background(), dto.ListLeadsQuery{Offset: -1})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Leads, 1)
	assert.Equal(t, "a", res.Leads[0].Id)
}

func TestUpdateStatusUnknownLead(t *testing.T) {
	f := newLeadFixture()
	err := f.svc.UpdateStatus(context.Background(), "missing", "accepted")
	require.Error(t, err)
}

func TestUpdateStatusAndDelete(t *testing.T) {
	f := newLeadFixture()
	f.leads.leads = []entity.Lead{{Id: "a", Type: entity.EntityPerson, Status: entity.LeadPending}}

	require.NoError(t, f.svc.UpdateStatus(context.Background(), "a", "contacted"))
	assert.Equal(t, entity.LeadContacted, f.leads.leads[0].Status)

	require.NoError(t, f.svc.Delete(context.Background(), "a"))
	assert.Empty(t, f.leads.leads)
	require.Error(t, f.svc.Delete(context.Background(), "a"))
}

func TestCreateIssueUsesConfiguredProject(t *testing.T) {
	f := newLeadFixture()
	f.settings.settings.JiraProjectKey = "SALES"
	f.leads.leads = []entity.Lead{{Id: "a", Type: entity.EntityCompany, Name: "Acme", Website: "https://acme.example", Summary: "Anvil maker."}}

	res, err := f.svc.CreateIssue(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "SALES-1", res.IssueKey)
	require.Len(t, f.tracker.createdIssues, 1)
	assert.Equal(t, "Lead: Acme", f.tracker.createdIssues[0])
}

func TestCreateIssueWithoutProjectKeyFails(t *testing.T) {
	f := newLeadFixture()
	f.leads.leads = []entity.Lead{{Id: "a", Type: entity.EntityCompany, Name: "Acme"}}

	_, err := f.svc.CreateIssue(context.Background(), "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jira_project_key")
}
