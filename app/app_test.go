package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexdefense/agd/events"
	"github.com/apexdefense/agd/gateway"
	"github.com/apexdefense/agd/internal/testbackend"
	"github.com/apexdefense/agd/models"
	"github.com/apexdefense/agd/routes"
	"github.com/apexdefense/agd/session"
	"github.com/apexdefense/agd/storage"
	"github.com/apexdefense/agd/storage/memory"
	"github.com/apexdefense/agd/store"
)

const (
	testEmail    = "a@b.com"
	testPassword = "secret123"
)

func newApp(t *testing.T, repo storage.Repository) (*testbackend.Backend, *App) {
	t.Helper()
	be := testbackend.New()
	t.Cleanup(be.Close)
	be.AddUser(testEmail, testPassword, "Alex Analyst")

	if repo == nil {
		repo = memory.NewRepository()
	}
	a, err := New(be.URL(), repo)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return be, a
}

func login(t *testing.T, a *App) {
	t.Helper()
	v, err := a.Mount(routes.Login)
	require.NoError(t, err)
	_, err = a.Login(v.Context(), testEmail, testPassword)
	require.NoError(t, err)
}

func TestLoginPopulatesSession(t *testing.T) {
	_, a := newApp(t, nil)
	v, err := a.Mount(routes.Login)
	require.NoError(t, err)
	assert.Equal(t, routes.Login, v.Match.Path)

	u, err := a.Login(v.Context(), testEmail, testPassword)
	require.NoError(t, err)

	assert.Equal(t, testEmail, u.Email)
	assert.True(t, a.Session.IsAuthenticated())
	assert.Equal(t, "Alex Analyst", a.Session.User().FullName)
	assert.True(t, a.Gateway.IsAuthenticated())
	assert.Equal(t, routes.Dashboard, a.Nav.Location())
	assert.True(t, v.Closed(), "the login view is unmounted after navigating away")
}

func TestLoginFailureLeavesSession(t *testing.T) {
	_, a := newApp(t, nil)
	v, err := a.Mount(routes.Login)
	require.NoError(t, err)

	_, err = a.Login(v.Context(), testEmail, "wrong")
	require.ErrorIs(t, err, gateway.ErrAuthentication)

	assert.False(t, a.Session.IsAuthenticated())
	assert.False(t, a.Gateway.IsAuthenticated())
	assert.Equal(t, routes.Login, a.Nav.Location())
	notes := a.UI.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, models.SeverityError, notes[0].Severity)
	assert.Contains(t, notes[0].Message, "Incorrect email or password")
}

func TestRegisterLogsIn(t *testing.T) {
	_, a := newApp(t, nil)
	v, err := a.Mount(routes.Register)
	require.NoError(t, err)

	u, err := a.Register(v.Context(), models.UserCreate{
		Email: "new@agd.test", FullName: "New Analyst", Password: "pw-123456",
	})
	require.NoError(t, err)
	assert.Equal(t, "new@agd.test", u.Email)
	assert.True(t, a.Session.IsAuthenticated())
}

func TestRestoredSessionDoesNotRedirect(t *testing.T) {
	repo := memory.NewRepository()
	snap, err := json.Marshal(session.Snapshot{User: &models.User{ID: "usr-1", Email: testEmail}, IsAuthenticated: true})
	require.NoError(t, err)
	require.NoError(t, repo.Put(gateway.DefaultNamespace, session.StorageKey, snap))
	require.NoError(t, repo.Put(gateway.DefaultNamespace, gateway.TokenKey, []byte("persisted")))

	_, a := newApp(t, repo)
	v, err := a.Mount(routes.Projects)
	require.NoError(t, err)
	assert.Equal(t, routes.Projects, v.Match.Path)
	assert.True(t, a.Gateway.IsAuthenticated())
}

func TestAnonymousProtectedRedirects(t *testing.T) {
	_, a := newApp(t, nil)
	v, err := a.Mount(routes.Projects)
	require.NoError(t, err)
	assert.Equal(t, routes.Login, v.Match.Path)
	assert.Equal(t, []string{routes.Login}, a.Nav.History())
}

func TestLogoutTwiceMatchesOnce(t *testing.T) {
	repo := memory.NewRepository()
	_, a := newApp(t, repo)
	login(t, a)

	require.NoError(t, a.Logout())
	first := a.Session.Snapshot()
	history := a.Nav.History()

	require.NoError(t, a.Logout())
	assert.Equal(t, first, a.Session.Snapshot())
	assert.Equal(t, history, a.Nav.History())

	assert.False(t, a.Session.IsAuthenticated())
	assert.False(t, a.Gateway.IsAuthenticated())
	_, err := repo.Get(gateway.DefaultNamespace, gateway.TokenKey)
	assert.True(t, storage.IsNotFound(err))
	assert.Equal(t, routes.Login, a.Nav.Location())
}

func TestUnauthorizedMidSession(t *testing.T) {
	be, a := newApp(t, nil)
	login(t, a)

	var fired atomic.Int32
	var last events.Unauthorized
	unsubscribe := a.Signal.Subscribe(func(evt events.Unauthorized) {
		fired.Add(1)
		last = evt
	})
	defer unsubscribe()

	v, err := a.Mount(routes.Projects)
	require.NoError(t, err)
	be.ExpireTokens()

	err = a.LoadProjects(v.Context(), models.ProjectQuery{})
	require.ErrorIs(t, err, gateway.ErrUnauthorized, "the caller still sees the failure")

	assert.EqualValues(t, 1, fired.Load())
	assert.Equal(t, routes.Login, last.Redirect)
	assert.False(t, a.Session.IsAuthenticated())
	assert.False(t, a.Gateway.IsAuthenticated())
	assert.False(t, a.Projects.IsLoading())
	assert.Equal(t, routes.Login, a.Nav.Location())
	assert.True(t, v.Closed())

	m, err := a.Nav.Resolve(routes.Projects)
	require.NoError(t, err)
	assert.Equal(t, routes.Login, m.Path)

	notes := a.UI.Notifications()
	require.NotEmpty(t, notes)
	assert.Contains(t, notes[len(notes)-1].Message, "Loading projects failed")
}

func TestLoadProjectsEmptyClearsLoading(t *testing.T) {
	_, a := newApp(t, nil)
	login(t, a)
	v, err := a.Mount(routes.Projects)
	require.NoError(t, err)

	var sawLoading bool
	unsubscribe := a.Projects.Subscribe(func(s store.State[models.Project]) {
		if s.Loading {
			sawLoading = true
		}
	})
	defer unsubscribe()

	require.NoError(t, a.LoadProjects(v.Context(), models.ProjectQuery{}))
	assert.True(t, sawLoading)
	assert.False(t, a.Projects.IsLoading())
	assert.Equal(t, []models.Project{}, a.Projects.Items())
}

func TestLoadingResetOnFailure(t *testing.T) {
	be, a := newApp(t, nil)
	login(t, a)
	v, err := a.Mount(routes.Countries)
	require.NoError(t, err)
	be.Close()

	err = a.LoadCountries(v.Context(), models.CountryQuery{})
	require.Error(t, err)
	assert.Zero(t, gateway.StatusCode(err))
	assert.False(t, a.Countries.IsLoading())
	assert.True(t, a.Session.IsAuthenticated(), "a network failure does not end the session")
}

func TestClosedViewDropsResult(t *testing.T) {
	be, a := newApp(t, nil)
	login(t, a)
	be.AddProject(testEmail, models.Project{Name: "Pacific Watch"})

	v, err := a.Mount(routes.Projects)
	require.NoError(t, err)
	be.OnRequest(func(*http.Request) { v.Close() })

	err = a.LoadProjects(v.Context(), models.ProjectQuery{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled) || errors.Is(err, ErrViewClosed))
	assert.Empty(t, a.Projects.Items())
	assert.False(t, a.Projects.IsLoading())
	assert.Empty(t, a.UI.Notifications(), "cancellation is not reported to the user")
}

func TestProjectLifecycle(t *testing.T) {
	_, a := newApp(t, nil)
	login(t, a)
	v, err := a.Mount(routes.Projects)
	require.NoError(t, err)
	ctx := v.Context()

	p, err := a.CreateProject(ctx, models.ProjectCreate{Name: "Baltic Shield", RegionFocus: "Europe"})
	require.NoError(t, err)
	other, err := a.CreateProject(ctx, models.ProjectCreate{Name: "Pacific Watch"})
	require.NoError(t, err)
	assert.Equal(t, 2, a.Projects.Len())

	opened, err := a.OpenProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, opened.ID)
	require.NotNil(t, a.Projects.Current())

	_, err = a.UpdateProject(ctx, p.ID, models.ProjectCreate{Description: "updated"})
	require.NoError(t, err)
	assert.Equal(t, "updated", a.Projects.Current().Description)

	require.NoError(t, a.DeleteProject(ctx, other.ID))
	require.NotNil(t, a.Projects.Current(), "deleting another project keeps the current one")

	require.NoError(t, a.DeleteProject(ctx, p.ID))
	assert.Nil(t, a.Projects.Current())
	assert.Zero(t, a.Projects.Len())
}

func TestScenarioLifecycle(t *testing.T) {
	_, a := newApp(t, nil)
	login(t, a)
	v, err := a.Mount(routes.Scenarios)
	require.NoError(t, err)
	ctx := v.Context()

	p, err := a.CreateProject(ctx, models.ProjectCreate{Name: "Baltic Shield"})
	require.NoError(t, err)
	s, err := a.CreateScenario(ctx, p.ID, models.ScenarioCreate{Name: "Base case", ScenarioType: models.ScenarioConventional})
	require.NoError(t, err)
	assert.Equal(t, p.ID, s.ProjectID)

	branch, err := a.BranchScenario(ctx, p.ID, s.ID, "Escalation")
	require.NoError(t, err)
	assert.Equal(t, s.ID, branch.ParentScenarioID)

	require.NoError(t, a.LoadScenarios(ctx, p.ID, models.PageQuery{}))
	assert.Equal(t, 2, a.Scenarios.Len())

	opened, err := a.OpenScenario(ctx, p.ID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, opened.ID)

	_, err = a.UpdateScenario(ctx, p.ID, s.ID, models.ScenarioCreate{Description: "revised"})
	require.NoError(t, err)
	assert.Equal(t, "revised", a.Scenarios.Current().Description)

	require.NoError(t, a.DeleteScenario(ctx, p.ID, s.ID))
	assert.Nil(t, a.Scenarios.Current())
	assert.Equal(t, 1, a.Scenarios.Len())
}

func TestCountriesAndSelection(t *testing.T) {
	_, a := newApp(t, nil)
	login(t, a)
	v, err := a.Mount(routes.Build(routes.Country, "cty-usa"))
	require.NoError(t, err)
	assert.Equal(t, "cty-usa", v.Match.Param("id"))

	require.NoError(t, a.LoadCountries(v.Context(), models.CountryQuery{}))
	assert.Equal(t, 3, a.Countries.Len())

	c, summary, err := a.SelectCountry(v.Context(), v.Match.Param("id"))
	require.NoError(t, err)
	assert.Equal(t, "USA", c.ISOCode)
	assert.NotEmpty(t, c.MilitaryBranches)
	assert.EqualValues(t, 958000, summary.TotalPersonnel)
	assert.Equal(t, summary, a.Countries.Summary())
	assert.Equal(t, "cty-usa", a.Map.Snapshot().SelectedMarker)
	assert.InDelta(t, 38.0, a.Map.Snapshot().View.Latitude, 1e-9)

	a.ClearCountry()
	assert.Nil(t, a.Countries.Current())
	assert.Empty(t, a.Map.Snapshot().SelectedMarker)

	_, _, err = a.SelectCountry(v.Context(), "cty-none")
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}

func TestAISettings(t *testing.T) {
	be, a := newApp(t, nil)
	login(t, a)
	v, err := a.Mount(routes.AISettings)
	require.NoError(t, err)
	ctx := v.Context()

	require.NoError(t, a.LoadAISettings(ctx))
	state := a.AI.Snapshot()
	assert.Nil(t, state.Config)
	assert.False(t, state.Enabled)
	assert.NotEmpty(t, state.Providers)
	assert.NotEmpty(t, state.Features)
	assert.False(t, state.Loading)

	cfg, err := a.SaveAIConfig(ctx, models.AIConfigCreate{Provider: models.ProviderOpenAI, APIKey: "sk-test", Model: "gpt-4"})
	require.NoError(t, err)
	assert.True(t, cfg.HasAPIKey)
	assert.True(t, a.AI.IsEnabled())
	assert.Equal(t, 1, be.Hits("POST /ai/config"))

	_, err = a.SaveAIConfig(ctx, models.AIConfigCreate{Model: "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, 1, be.Hits("PATCH /ai/config"))
	assert.Equal(t, "gpt-4o", a.AI.Config().Model)

	resp, err := a.Analyze(ctx, models.AIAnalysisRequest{Feature: models.FeatureThreatAssessment, InputText: "two armoured brigades"})
	require.NoError(t, err)
	assert.False(t, resp.IsFallback)

	require.NoError(t, a.DeleteAIConfig(ctx))
	assert.Nil(t, a.AI.Config())
	assert.False(t, a.AI.IsEnabled())
}

func TestDashboard(t *testing.T) {
	be, a := newApp(t, nil)
	login(t, a)
	for _, name := range []string{"One", "Two", "Three", "Four", "Five", "Six"} {
		be.AddProject(testEmail, models.Project{Name: name, Status: models.ProjectActive})
	}
	v, err := a.Mount(routes.Dashboard)
	require.NoError(t, err)

	stats, err := a.LoadDashboard(v.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCountries)
	assert.Equal(t, 6, stats.TotalProjects)
	assert.Zero(t, stats.PendingAnalyses)
	assert.Len(t, stats.RecentProjects, 5)
	assert.False(t, a.Projects.IsLoading())
	assert.False(t, a.Countries.IsLoading())
}

func TestCloseIdempotent(t *testing.T) {
	_, a := newApp(t, nil)
	closed := 0
	a.OnClose(func() error {
		closed++
		return nil
	})
	v, err := a.Mount(routes.Login)
	require.NoError(t, err)

	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
	assert.Equal(t, 1, closed)
	assert.True(t, v.Closed())
	assert.Zero(t, a.Signal.Subscribers())
}

// failingMe serves be but answers GET /auth/me with a server error.
func failingMe(t *testing.T, be *testbackend.Backend) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/auth/me") {
			http.Error(w, `{"detail":"profile service down"}`, http.StatusInternalServerError)
			return
		}
		be.Server.Config.Handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestReloginWithFailingProfileKeepsSession(t *testing.T) {
	be := testbackend.New()
	t.Cleanup(be.Close)
	be.AddUser(testEmail, testPassword, "Alex Analyst")

	repo := memory.NewRepository()
	prior := &models.User{ID: "usr-prior", Email: "prior@b.com"}
	snap, err := json.Marshal(session.Snapshot{User: prior, IsAuthenticated: true})
	require.NoError(t, err)
	require.NoError(t, repo.Put(gateway.DefaultNamespace, session.StorageKey, snap))
	require.NoError(t, repo.Put(gateway.DefaultNamespace, gateway.TokenKey, []byte("tokA")))

	a, err := New(failingMe(t, be), repo)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	v, err := a.Mount(routes.Login)
	require.NoError(t, err)
	assert.Equal(t, routes.Dashboard, v.Match.Path)

	_, err = a.Login(v.Context(), testEmail, testPassword)
	require.ErrorIs(t, err, gateway.ErrServer)

	assert.True(t, a.Session.IsAuthenticated())
	assert.Equal(t, "usr-prior", a.Session.User().ID)
	held, err := a.Gateway.Token()
	require.NoError(t, err)
	assert.Equal(t, "tokA", held)
	stored, err := repo.Get(gateway.DefaultNamespace, gateway.TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "tokA", string(stored))
}

func TestFirstLoginWithFailingProfileHoldsNoToken(t *testing.T) {
	be := testbackend.New()
	t.Cleanup(be.Close)
	be.AddUser(testEmail, testPassword, "Alex Analyst")

	repo := memory.NewRepository()
	a, err := New(failingMe(t, be), repo)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	v, err := a.Mount(routes.Login)
	require.NoError(t, err)
	_, err = a.Login(v.Context(), testEmail, testPassword)
	require.Error(t, err)

	assert.False(t, a.Session.IsAuthenticated())
	assert.False(t, a.Gateway.IsAuthenticated())
	_, err = repo.Get(gateway.DefaultNamespace, gateway.TokenKey)
	assert.True(t, storage.IsNotFound(err))
}
