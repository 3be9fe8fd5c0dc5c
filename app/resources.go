package app

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/apexdefense/agd/models"
	"github.com/apexdefense/agd/store"
)

const successNoticeDuration = 3 * time.Second

// load brackets fetch with the collection's loading flag and applies the
// result only if the view is still open and nothing newer reached the
// collection in the meantime.
func load[T any](ctx context.Context, logger *slog.Logger, c *store.Collection[T], fetch func(context.Context) ([]T, error)) error {
	c.SetLoading(true)
	defer c.SetLoading(false)

	ticket := c.Begin()
	items, err := fetch(ctx)
	if err != nil {
		return err
	}
	if err := alive(ctx); err != nil {
		return err
	}
	if !c.Resolve(ticket, items) {
		logger.Debug("discarding stale fetch result", "items", len(items))
	}
	return nil
}

// LoadCountries fetches countries into the country store.
func (a *App) LoadCountries(ctx context.Context, q models.CountryQuery) error {
	err := load(ctx, a.logger, a.Countries.Collection, func(ctx context.Context) ([]models.Country, error) {
		return a.Gateway.Countries(ctx, q)
	})
	if err != nil {
		return a.fail("Loading countries failed", err)
	}
	return nil
}

// SelectCountry loads a country with its branches and force summary and
// selects it, both in the country list and on the map.
func (a *App) SelectCountry(ctx context.Context, id string) (*models.Country, *models.ForceSummary, error) {
	var (
		country *models.Country
		summary *models.ForceSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		country, err = a.Gateway.Country(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = a.Gateway.CountryForceSummary(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, a.fail("Loading country failed", err)
	}
	if err := alive(ctx); err != nil {
		return nil, nil, err
	}
	a.Countries.SetCurrent(country)
	a.Countries.SetSummary(country.ID, summary)
	a.Map.SelectMarker(country.ID)
	if country.Lat != nil && country.Lng != nil {
		view := a.Map.Snapshot().View
		view.Latitude, view.Longitude = *country.Lat, *country.Lng
		a.Map.SetView(view)
	}
	return country, summary, nil
}

// ClearCountry drops the country selection.
func (a *App) ClearCountry() {
	a.Countries.SetCurrent(nil)
	a.Map.SelectMarker("")
}

// LoadProjects fetches the caller's projects into the project store.
func (a *App) LoadProjects(ctx context.Context, q models.ProjectQuery) error {
	err := load(ctx, a.logger, a.Projects.Collection, func(ctx context.Context) ([]models.Project, error) {
		return a.Gateway.Projects(ctx, q)
	})
	if err != nil {
		return a.fail("Loading projects failed", err)
	}
	return nil
}

// OpenProject loads a project, makes it current and replaces the scenario
// store with its scenarios.
func (a *App) OpenProject(ctx context.Context, id string) (*models.Project, error) {
	p, err := a.Gateway.Project(ctx, id)
	if err != nil {
		return nil, a.fail("Loading project failed", err)
	}
	if err := alive(ctx); err != nil {
		return nil, err
	}
	a.Projects.SetCurrent(p)
	a.Scenarios.SetCurrent(nil)
	a.Scenarios.Set(p.Scenarios)
	return p, nil
}

// CreateProject creates a project and appends it to the store.
func (a *App) CreateProject(ctx context.Context, in models.ProjectCreate) (*models.Project, error) {
	p, err := a.Gateway.CreateProject(ctx, in)
	if err != nil {
		return nil, a.fail("Creating project failed", err)
	}
	if err := alive(ctx); err != nil {
		return nil, err
	}
	a.Projects.Add(*p)
	a.UI.Notify(models.SeveritySuccess, "Project created", successNoticeDuration)
	return p, nil
}

// UpdateProject patches a project and replaces it in the store.
func (a *App) UpdateProject(ctx context.Context, id string, in models.ProjectCreate) (*models.Project, error) {
	p, err := a.Gateway.UpdateProject(ctx, id, in)
	if err != nil {
		return nil, a.fail("Saving project failed", err)
	}
	if err := alive(ctx); err != nil {
		return nil, err
	}
	a.Projects.Update(*p)
	return p, nil
}

// DeleteProject deletes a project and removes it from the store. When it
// was the current project its scenarios are dropped too.
func (a *App) DeleteProject(ctx context.Context, id string) error {
	if err := a.Gateway.DeleteProject(ctx, id); err != nil {
		return a.fail("Deleting project failed", err)
	}
	if err := alive(ctx); err != nil {
		return err
	}
	if cur := a.Projects.Current(); cur != nil && cur.ID == id {
		a.Scenarios.Reset()
	}
	a.Projects.Remove(id)
	return nil
}

// LoadScenarios fetches a project's scenarios into the scenario store.
func (a *App) LoadScenarios(ctx context.Context, projectID string, q models.PageQuery) error {
	err := load(ctx, a.logger, a.Scenarios.Collection, func(ctx context.Context) ([]models.Scenario, error) {
		return a.Gateway.Scenarios(ctx, projectID, q)
	})
	if err != nil {
		return a.fail("Loading scenarios failed", err)
	}
	return nil
}

// OpenScenario loads a scenario and makes it current.
func (a *App) OpenScenario(ctx context.Context, projectID, scenarioID string) (*models.Scenario, error) {
	s, err := a.Gateway.Scenario(ctx, projectID, scenarioID)
	if err != nil {
		return nil, a.fail("Loading scenario failed", err)
	}
	if err := alive(ctx); err != nil {
		return nil, err
	}
	a.Scenarios.SetCurrent(s)
	return s, nil
}

// CreateScenario creates a scenario in a project and appends it to the store.
func (a *App) CreateScenario(ctx context.Context, projectID string, in models.ScenarioCreate) (*models.Scenario, error) {
	s, err := a.Gateway.CreateScenario(ctx, projectID, in)
	if err != nil {
		return nil, a.fail("Creating scenario failed", err)
	}
	if err := alive(ctx); err != nil {
		return nil, err
	}
	a.Scenarios.Add(*s)
	a.UI.Notify(models.SeveritySuccess, "Scenario created", successNoticeDuration)
	return s, nil
}

// UpdateScenario patches a scenario and replaces it in the store.
func (a *App) UpdateScenario(ctx context.Context, projectID, scenarioID string, in models.ScenarioCreate) (*models.Scenario, error) {
	s, err := a.Gateway.UpdateScenario(ctx, projectID, scenarioID, in)
	if err != nil {
		return nil, a.fail("Saving scenario failed", err)
	}
	if err := alive(ctx); err != nil {
		return nil, err
	}
	a.Scenarios.Update(*s)
	return s, nil
}

// DeleteScenario deletes a scenario and removes it from the store.
func (a *App) DeleteScenario(ctx context.Context, projectID, scenarioID string) error {
	if err := a.Gateway.DeleteScenario(ctx, projectID, scenarioID); err != nil {
		return a.fail("Deleting scenario failed", err)
	}
	if err := alive(ctx); err != nil {
		return err
	}
	a.Scenarios.Remove(scenarioID)
	return nil
}

// BranchScenario copies a scenario as a new version and appends the copy.
func (a *App) BranchScenario(ctx context.Context, projectID, scenarioID, newName string) (*models.Scenario, error) {
	s, err := a.Gateway.BranchScenario(ctx, projectID, scenarioID, newName)
	if err != nil {
		return nil, a.fail("Branching scenario failed", err)
	}
	if err := alive(ctx); err != nil {
		return nil, err
	}
	a.Scenarios.Add(*s)
	return s, nil
}
