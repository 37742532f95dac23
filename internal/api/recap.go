package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// RecapRequest carries the optional filters for a recap submission. Dates
// are YYYY-MM-DD; From expands to start of day, To to end of day.
type RecapRequest struct {
	From        string
	To          string
	ProjectIDs  []string
	Tags        []string
	ExcludeTags []string
}

// SubmitRecap asks the backend to generate a recap. The call returns as soon
// as the job is accepted; a cached recap comes back with status "completed".
func (c *Client) SubmitRecap(ctx context.Context, req RecapRequest) (*RecapJob, error) {
	query := url.Values{}
	if req.From != "" {
		formatted, err := DateToISO(req.From, false)
		if err != nil {
			return nil, err
		}
		query.Set("from", formatted)
	}
	if req.To != "" {
		formatted, err := DateToISO(req.To, true)
		if err != nil {
			return nil, err
		}
		query.Set("to", formatted)
	}
	if len(req.ProjectIDs) > 0 {
		query.Set("project_ids", strings.Join(req.ProjectIDs, ","))
	}
	if len(req.Tags) > 0 {
		query.Set("tags", strings.Join(req.Tags, " "))
	}
	if len(req.ExcludeTags) > 0 {
		query.Set("exclude_tags", strings.Join(req.ExcludeTags, " "))
	}

	var out RecapJob
	if err := c.postJSON(ctx, "api/v1/worklog/recaps", query, nil, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchRecapStatus fetches one status snapshot for a recap job. No retries;
// the caller owns cadence and count.
func (c *Client) FetchRecapStatus(ctx context.Context, recapID string) (*RecapStatus, error) {
	var out RecapStatus
	path := "api/v1/worklog/recaps/" + url.PathEscape(recapID)
	if err := c.getJSON(ctx, path, nil, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DateToISO converts a YYYY-MM-DD date to the ISO8601 instant the API
// expects: start of day for range starts, end of day for range ends.
func DateToISO(date string, endOfDay bool) (string, error) {
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	if err != nil {
		return "", fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrValidation, date)
	}
	if endOfDay {
		parsed = parsed.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	}
	return parsed.UTC().Format("2006-01-02T15:04:05Z"), nil
}
