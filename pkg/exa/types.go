package exa

import "context"

// Search categories accepted by the Exa search endpoint.
const (
	CategoryPeople  = "people"
	CategoryCompany = "company"
)

// Entity types accepted by SubmitResearch.
const (
	EntityPerson  = "person"
	EntityCompany = "company"
)

// NoInformationFound is returned by SubmitResearch when both the research
// task and the fallback search came up empty. Callers must treat it as a
// semantic failure, not an error.
const NoInformationFound = "No information could be found for this subject."

type SearchRequest struct {
	Query      string `json:"query"`
	NumResults int    `json:"numResults"`
	Category   string `json:"category,omitempty"`
	Contents   struct {
		Text       bool `json:"text"`
		Highlights struct {
			NumSentences     int `json:"numSentences"`
			HighlightsPerURL int `json:"highlightsPerUrl"`
		} `json:"highlights"`
	} `json:"contents"`
}

type SearchResult struct {
	Id            string   `json:"id"`
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Text          string   `json:"text"`
	Highlights    []string `json:"highlights"`
	PublishedDate string   `json:"publishedDate"`
}

type ResearchSource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ResearchTask is the state of a long-running research request as reported
// by the get-status endpoint.
type ResearchTask struct {
	ResearchId string           `json:"researchId"`
	Status     string           `json:"status"` // running | completed | failed | canceled
	Output     string           `json:"output,omitempty"`
	Sources    []ResearchSource `json:"sources,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// Provider is the surface the services depend on. *Client is the real
// implementation; tests substitute fakes.
type Provider interface {
	Search(ctx context.Context, req SearchRequest) ([]SearchResult, error)
	SubmitResearch(ctx context.Context, subject, entityType string) (string, error)
}
