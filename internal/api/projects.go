package api

import (
	"context"
)

type projectList struct {
	Projects []Project `json:"projects"`
}

// FetchProjects lists all projects for the authenticated user.
func (c *Client) FetchProjects(ctx context.Context) ([]Project, error) {
	var out projectList
	if err := c.getJSON(ctx, "api/v1/projects", nil, true, &out); err != nil {
		return nil, err
	}
	return out.Projects, nil
}

// CreateProject creates a project. An empty identifier lets the backend
// auto-generate one.
func (c *Client) CreateProject(ctx context.Context, name, description, identifier string) (*Project, error) {
	body := map[string]string{"name": name}
	if description != "" {
		body["description"] = description
	}
	if identifier != "" {
		body["identifier"] = identifier
	}
	var out Project
	if err := c.postJSON(ctx, "api/v1/projects", nil, body, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type repositoryList struct {
	Repositories []Repository `json:"repositories"`
}

// FetchRepositories lists the repositories registered for the user.
func (c *Client) FetchRepositories(ctx context.Context) ([]Repository, error) {
	var out repositoryList
	if err := c.getJSON(ctx, "api/v1/repos", nil, true, &out); err != nil {
		return nil, err
	}
	return out.Repositories, nil
}

// CreateRepository registers a repository under a project.
func (c *Client) CreateRepository(ctx context.Context, projectID, name, remoteURL, defaultBranch string) (*Repository, error) {
	body := map[string]string{
		"project_id": projectID,
		"name":       name,
	}
	if remoteURL != "" {
		body["remote_url"] = remoteURL
	}
	if defaultBranch != "" {
		body["default_branch"] = defaultBranch
	}
	var out Repository
	if err := c.postJSON(ctx, "api/v1/repos", nil, body, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
