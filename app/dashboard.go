package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/apexdefense/agd/models"
)

const (
	dashboardProjectLimit = 10
	dashboardCountryLimit = 50
	recentProjects        = 5
)

// DashboardStats summarises the stores for the dashboard view.
type DashboardStats struct {
	TotalCountries  int              `json:"total_countries" yaml:"total_countries"`
	TotalProjects   int              `json:"total_projects" yaml:"total_projects"`
	ActiveScenarios int              `json:"active_scenarios" yaml:"active_scenarios"`
	PendingAnalyses int              `json:"pending_analyses" yaml:"pending_analyses"`
	RecentProjects  []models.Project `json:"recent_projects" yaml:"recent_projects"`
}

// LoadDashboard fetches the first page of projects and countries together
// and returns the figures computed from the stores.
func (a *App) LoadDashboard(ctx context.Context) (*DashboardStats, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return load(gctx, a.logger, a.Projects.Collection, func(ctx context.Context) ([]models.Project, error) {
			return a.Gateway.Projects(ctx, models.ProjectQuery{Limit: dashboardProjectLimit})
		})
	})
	g.Go(func() error {
		return load(gctx, a.logger, a.Countries.Collection, func(ctx context.Context) ([]models.Country, error) {
			return a.Gateway.Countries(ctx, models.CountryQuery{Limit: dashboardCountryLimit})
		})
	})
	if err := g.Wait(); err != nil {
		return nil, a.fail("Loading dashboard failed", err)
	}
	if err := alive(ctx); err != nil {
		return nil, err
	}
	return a.DashboardStats(), nil
}

// DashboardStats computes the dashboard figures from the current stores.
// No analysis queue exists yet, so PendingAnalyses is always zero.
func (a *App) DashboardStats() *DashboardStats {
	projects := a.Projects.Items()
	recent := projects
	if len(recent) > recentProjects {
		recent = recent[:recentProjects]
	}
	return &DashboardStats{
		TotalCountries:  a.Countries.Len(),
		TotalProjects:   len(projects),
		ActiveScenarios: a.Projects.ActiveScenarios(),
		RecentProjects:  recent,
	}
}
