package exa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy(attempts int, sleeps *[]time.Duration) RetryPolicy {
	return RetryPolicy{
		BaseDelay:   2 * time.Second,
		Multiplier:  2.0,
		MaxDelay:    30 * time.Second,
		MaxAttempts: attempts,
		Sleep: func(_ context.Context, d time.Duration) error {
			if sleeps != nil {
				*sleeps = append(*sleeps, d)
			}
			return nil
		},
	}
}

func newTestClient(t *testing.T, handler http.Handler, policy RetryPolicy) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	old := DefaultBaseURL
	DefaultBaseURL = srv.URL
	t.Cleanup(func() { DefaultBaseURL = old })

	return NewClient("test-key", policy)
}

// researchServer scripts the create/poll endpoints. Each poll pops the next
// status from the script.
type researchServer struct {
	script   []ResearchTask
	polls    int
	fallback []SearchResult
}

func (s *researchServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/research/v1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(createResearchResponse{ResearchId: "task-1", Status: "running"})
	})
	mux.HandleFunc("/research/v1/task-1", func(w http.ResponseWriter, r *http.Request) {
		idx := s.polls
		if idx >= len(s.script) {
			idx = len(s.script) - 1
		}
		s.polls++
		json.NewEncoder(w).Encode(s.script[idx])
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{Results: s.fallback})
	})
	return mux
}

func TestSubmitResearchPollsUntilCompleted(t *testing.T) {
	srv := &researchServer{
		script: []ResearchTask{
			{Status: "running"},
			{Status: "running"},
			{
				Status: "completed",
				Output: "Acme is a robotics company.",
				Sources: []ResearchSource{
					{Title: "Acme homepage", URL: "https://acme.example"},
					{Title: "Acme funding news", URL: "https://news.example/acme"},
				},
			},
		},
	}
	client := newTestClient(t, srv.handler(), testPolicy(10, nil))

	report, err := client.SubmitResearch(context.Background(), "Acme Corp", EntityCompany)
	require.NoError(t, err)

	assert.Equal(t, 3, srv.polls, "expected exactly 3 polls")
	assert.Contains(t, report, "Acme is a robotics company.")
	assert.Contains(t, report, "## Sources")
	assert.Contains(t, report, "1. [Acme homepage](https://acme.example)")
	assert.Contains(t, report, "2. [Acme funding news](https://news.example/acme)")
}

func TestSubmitResearchBackoffSequence(t *testing.T) {
	var sleeps []time.Duration
	srv := &researchServer{
		script: []ResearchTask{
			{Status: "running"},
			{Status: "running"},
			{Status: "running"},
			{Status: "running"},
			{Status: "running"},
			{Status: "completed", Output: "done"},
		},
	}
	client := newTestClient(t, srv.handler(), testPolicy(10, &sleeps))

	_, err := client.SubmitResearch(context.Background(), "Acme Corp", EntityCompany)
	require.NoError(t, err)

	want := []time.Duration{
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second, // capped, 32s would exceed MaxDelay
	}
	assert.Equal(t, want, sleeps)
}

func TestSubmitResearchTimeoutFallsBack(t *testing.T) {
	srv := &researchServer{
		script: []ResearchTask{{Status: "running"}},
		fallback: []SearchResult{
			{Title: "Jane Doe profile", URL: "https://people.example/jane", Text: "Jane Doe is a staff engineer."},
		},
	}
	client := newTestClient(t, srv.handler(), testPolicy(3, nil))

	report, err := client.SubmitResearch(context.Background(), "Jane Doe", EntityPerson)
	require.NoError(t, err)
	assert.Contains(t, report, "Jane Doe is a staff engineer.")
	assert.Contains(t, report, "[Source](https://people.example/jane)")
}

func TestSubmitResearchFailedTaskFallsBack(t *testing.T) {
	srv := &researchServer{
		script: []ResearchTask{
			{Status: "failed", Error: "model unavailable"},
		},
		fallback: []SearchResult{
			{Title: "Acme", URL: "https://acme.example", Text: "Acme builds robots."},
		},
	}
	client := newTestClient(t, srv.handler(), testPolicy(3, nil))

	report, err := client.SubmitResearch(context.Background(), "Acme Corp", EntityCompany)
	require.NoError(t, err)
	assert.Contains(t, report, "Acme builds robots.")
}

func TestSubmitResearchSentinelWhenFallbackEmpty(t *testing.T) {
	srv := &researchServer{
		script: []ResearchTask{{Status: "failed", Error: "no sources"}},
	}
	client := newTestClient(t, srv.handler(), testPolicy(2, nil))

	report, err := client.SubmitResearch(context.Background(), "Nobody Nowhere", EntityPerson)
	require.NoError(t, err, "sentinel path must not surface an error")
	assert.Equal(t, NoInformationFound, report)
}

func TestSubmitResearchCreateErrorFallsBack(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/research/v1", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{})
	})
	client := newTestClient(t, mux, testPolicy(2, nil))

	report, err := client.SubmitResearch(context.Background(), "Acme Corp", EntityCompany)
	require.NoError(t, err)
	assert.Equal(t, NoInformationFound, report)
}

func TestRetryPolicyDelayFor(t *testing.T) {
	p := RetryPolicy{BaseDelay: time.Second, Multiplier: 3.0, MaxDelay: 10 * time.Second, MaxAttempts: 5}

	assert.Equal(t, 1*time.Second, p.DelayFor(0))
	assert.Equal(t, 3*time.Second, p.DelayFor(1))
	assert.Equal(t, 9*time.Second, p.DelayFor(2))
	assert.Equal(t, 10*time.Second, p.DelayFor(3))
	assert.Equal(t, 10*time.Second, p.DelayFor(8))
}

func TestSearchSendsCategoryAndKey(t *testing.T) {
	var gotKey string
	var gotReq SearchRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(searchResponse{Results: []SearchResult{{Id: "r1", URL: "https://x.example"}}})
	})
	client := newTestClient(t, mux, testPolicy(1, nil))

	req := SearchRequest{Query: "golang engineers berlin", NumResults: 7, Category: CategoryPeople}
	results, err := client.Search(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, CategoryPeople, gotReq.Category)
	assert.Equal(t, 7, gotReq.NumResults)
	require.Len(t, results, 1)
	assert.Equal(t, "r1", results[0].Id)
}
