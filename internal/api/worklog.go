package api

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// CreateEntry creates a worklog entry and returns its ID.
func (c *Client) CreateEntry(ctx context.Context, content string, tags []string, projectID string) (*Entry, error) {
	body := map[string]any{"content": content}
	if len(tags) > 0 {
		body["tags"] = tags
	}
	if projectID != "" {
		body["project_id"] = projectID
	}
	var out Entry
	if err := c.postJSON(ctx, "api/v1/worklog/entries", nil, body, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EntryFilter narrows FetchEntries results. Zero values mean "no filter".
type EntryFilter struct {
	ProjectID string
	Tags      []string
	From      string // YYYY-MM-DD, inclusive
	To        string // YYYY-MM-DD, inclusive
	Limit     int
	Cursor    string
}

// FetchEntries lists worklog entries, newest first, one cursor page at a
// time.
func (c *Client) FetchEntries(ctx context.Context, filter EntryFilter) (*EntryPage, error) {
	query := url.Values{}
	if filter.ProjectID != "" {
		query.Set("project_id", filter.ProjectID)
	}
	if len(filter.Tags) > 0 {
		query.Set("tags", strings.Join(filter.Tags, ","))
	}
	if filter.From != "" {
		formatted, err := DateToISO(filter.From, false)
		if err != nil {
			return nil, err
		}
		query.Set("from", formatted)
	}
	if filter.To != "" {
		formatted, err := DateToISO(filter.To, true)
		if err != nil {
			return nil, err
		}
		query.Set("to", formatted)
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Cursor != "" {
		query.Set("cursor", filter.Cursor)
	}
	var out EntryPage
	if err := c.getJSON(ctx, "api/v1/worklog/entries", query, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchUncapturedCommits returns the subset of shas the backend has not seen
// for the given repository.
func (c *Client) FetchUncapturedCommits(ctx context.Context, repoID string, shas []string) ([]string, error) {
	body := map[string]any{"shas": shas}
	var out struct {
		Uncaptured []string `json:"uncaptured"`
	}
	path := "api/v1/repos/" + url.PathEscape(repoID) + "/commits/uncaptured"
	if err := c.postJSON(ctx, path, nil, body, true, &out); err != nil {
		return nil, err
	}
	return out.Uncaptured, nil
}

// CreateCommits records git commits against a repository and returns the
// backend ids assigned to them.
func (c *Client) CreateCommits(ctx context.Context, repoID string, commits []Commit) ([]string, error) {
	body := map[string]any{"commits": commits}
	var out struct {
		IDs []string `json:"ids"`
	}
	path := "api/v1/repos/" + url.PathEscape(repoID) + "/commits"
	if err := c.postJSON(ctx, path, nil, body, true, &out); err != nil {
		return nil, err
	}
	return out.IDs, nil
}

// AssociateCommits links previously created commits to a worklog entry.
func (c *Client) AssociateCommits(ctx context.Context, entryID string, commitIDs []string) error {
	body := map[string]any{"commit_ids": commitIDs}
	path := "api/v1/worklog/entries/" + url.PathEscape(entryID) + "/commits"
	return c.postJSON(ctx, path, nil, body, true, nil)
}
