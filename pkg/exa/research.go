package exa

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrResearchTimeout is returned when the poll attempt budget is exhausted
// before the task reaches a terminal status.
var ErrResearchTimeout = errors.New("exa research: timed out waiting for completion")

// ErrResearchCanceled is returned when the task was canceled upstream.
var ErrResearchCanceled = errors.New("exa research: task was canceled")

// ResearchError carries the upstream failure message of a failed task.
type ResearchError struct {
	Message string
}

func (e *ResearchError) Error() string {
	return fmt.Sprintf("exa research: task failed: %s", e.Message)
}

const personInstructions = `Research the person named "%s". Cover their current role and employer,
professional background and career history, notable achievements, public
profiles, and recent activity or publications. Write a structured report
with markdown headings, bullet lists for key facts, and bold for names
and employers.`

const companyInstructions = `Research the company "%s". Cover what it does, its products and market,
founding and headquarters, leadership, size and funding, notable customers
or partners, and recent news. Write a structured report with markdown
headings, bullet lists for key facts, and bold for product and company
names.`

func buildInstructions(subject, entityType string) string {
	if entityType == EntityCompany {
		return fmt.Sprintf(companyInstructions, subject)
	}
	return fmt.Sprintf(personInstructions, subject)
}

// SubmitResearch runs one full research cycle: create the task, poll with
// exponential backoff until a terminal status, and render the report with
// its sources enumerated. Any error on that path, including timeout, falls
// back to a single synchronous search with a broadened query. When the
// fallback also finds nothing, the NoInformationFound sentinel is returned
// with a nil error.
func (c *Client) SubmitResearch(ctx context.Context, subject, entityType string) (string, error) {
	report, err := c.runResearch(ctx, subject, entityType)
	if err == nil {
		return report, nil
	}
	return c.fallbackSearch(ctx, subject, entityType)
}

func (c *Client) runResearch(ctx context.Context, subject, entityType string) (string, error) {
	id, err := c.CreateResearchTask(ctx, buildInstructions(subject, entityType))
	if err != nil {
		return "", err
	}

	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		task, err := c.GetResearchTask(ctx, id)
		if err != nil {
			return "", err
		}

		switch task.Status {
		case "completed":
			return renderReport(task), nil
		case "failed":
			return "", &ResearchError{Message: task.Error}
		case "canceled":
			return "", ErrResearchCanceled
		}

		if attempt == c.retry.MaxAttempts-1 {
			break
		}
		if err := c.retry.sleep(ctx, c.retry.DelayFor(attempt)); err != nil {
			return "", err
		}
	}
	return "", ErrResearchTimeout
}

// renderReport appends the enumerated source list to the synthesized text.
func renderReport(task *ResearchTask) string {
	if len(task.Sources) == 0 {
		return task.Output
	}
	var sb strings.Builder
	sb.WriteString(task.Output)
	sb.WriteString("\n\n## Sources\n")
	for i, src := range task.Sources {
		title := src.Title
		if title == "" {
			title = src.URL
		}
		sb.WriteString(fmt.Sprintf("%d. [%s](%s)\n", i+1, title, src.URL))
	}
	return sb.String()
}

func (c *Client) fallbackSearch(ctx context.Context, subject, entityType string) (string, error) {
	query := subject + " professional background profile"
	if entityType == EntityCompany {
		query = subject + " company overview products news"
	}

	req := SearchRequest{Query: query, NumResults: 5}
	req.Contents.Text = true
	req.Contents.Highlights.NumSentences = 3
	req.Contents.Highlights.HighlightsPerURL = 1

	results, err := c.Search(ctx, req)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return NoInformationFound, nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", subject))
	for _, r := range results {
		title := r.Title
		if title == "" {
			title = r.URL
		}
		sb.WriteString(fmt.Sprintf("## %s\n", title))
		text := r.Text
		if text == "" && len(r.Highlights) > 0 {
			text = strings.Join(r.Highlights, " ")
		}
		if len(text) > 600 {
			text = text[:600] + "..."
		}
		if text != "" {
			sb.WriteString(text + "\n")
		}
		sb.WriteString(fmt.Sprintf("[Source](%s)\n\n", r.URL))
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
