package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/apexdefense/agd/models"
)

func projectPath(id string) string {
	return "/projects/" + url.PathEscape(id)
}

func scenarioPath(projectID, scenarioID string) string {
	return projectPath(projectID) + "/scenarios/" + url.PathEscape(scenarioID)
}

// Projects lists the caller's projects.
func (c *Client) Projects(ctx context.Context, q models.ProjectQuery) ([]models.Project, error) {
	params := pageParams(q.Skip, q.Limit)
	if q.Status != "" {
		params.Set("status_filter", q.Status)
	}
	var out []models.Project
	if err := c.Request(ctx, http.MethodGet, "/projects/", nil, params, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// Project fetches one project with its scenarios.
func (c *Client) Project(ctx context.Context, id string) (*models.Project, error) {
	var out models.Project
	if err := c.Request(ctx, http.MethodGet, projectPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProject creates a project owned by the caller.
func (c *Client) CreateProject(ctx context.Context, in models.ProjectCreate) (*models.Project, error) {
	var out models.Project
	if err := c.Request(ctx, http.MethodPost, "/projects/", in, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProject applies a partial update; zero-valued fields are left alone.
func (c *Client) UpdateProject(ctx context.Context, id string, in models.ProjectCreate) (*models.Project, error) {
	var out models.Project
	if err := c.Request(ctx, http.MethodPatch, projectPath(id), in, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProject deletes a project and its scenarios.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.Request(ctx, http.MethodDelete, projectPath(id), nil, nil, nil)
}

// Scenarios lists the scenarios of a project.
func (c *Client) Scenarios(ctx context.Context, projectID string, q models.PageQuery) ([]models.Scenario, error) {
	var out []models.Scenario
	if err := c.Request(ctx, http.MethodGet, projectPath(projectID)+"/scenarios", nil, pageParams(q.Skip, q.Limit), &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// Scenario fetches one scenario.
func (c *Client) Scenario(ctx context.Context, projectID, scenarioID string) (*models.Scenario, error) {
	var out models.Scenario
	if err := c.Request(ctx, http.MethodGet, scenarioPath(projectID, scenarioID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateScenario creates a scenario in projectID. The body's ProjectID is
// overwritten with projectID.
func (c *Client) CreateScenario(ctx context.Context, projectID string, in models.ScenarioCreate) (*models.Scenario, error) {
	in.ProjectID = projectID
	var out models.Scenario
	if err := c.Request(ctx, http.MethodPost, projectPath(projectID)+"/scenarios", in, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateScenario applies a partial update to a scenario.
func (c *Client) UpdateScenario(ctx context.Context, projectID, scenarioID string, in models.ScenarioCreate) (*models.Scenario, error) {
	var out models.Scenario
	if err := c.Request(ctx, http.MethodPatch, scenarioPath(projectID, scenarioID), in, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteScenario deletes a scenario.
func (c *Client) DeleteScenario(ctx context.Context, projectID, scenarioID string) error {
	return c.Request(ctx, http.MethodDelete, scenarioPath(projectID, scenarioID), nil, nil, nil)
}

// BranchScenario copies a scenario into a new version named newName.
func (c *Client) BranchScenario(ctx context.Context, projectID, scenarioID, newName string) (*models.Scenario, error) {
	params := url.Values{}
	params.Set("new_name", newName)
	var out models.Scenario
	if err := c.Request(ctx, http.MethodPost, scenarioPath(projectID, scenarioID)+"/branch", nil, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
