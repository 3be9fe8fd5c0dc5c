package cmd

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexdefense/agd/app"
	"github.com/apexdefense/agd/internal/testbackend"
	"github.com/apexdefense/agd/models"
)

// cli runs agd commands against one backend and one data dir. Commands
// share package-level flag state, so tests must not run in parallel.
type cli struct {
	t   *testing.T
	be  *testbackend.Backend
	dir string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	be := testbackend.New()
	t.Cleanup(be.Close)
	be.AddUser("ana@example.com", "hunter2", "Ana Analyst")
	return &cli{t: t, be: be, dir: t.TempDir()}
}

func (c *cli) run(format string, args ...string) (string, string, error) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{
		"--api-url", c.be.URL(),
		"--data-dir", c.dir,
		"--log-level", "error",
		"-o", format,
	}, args...))
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// runJSON runs a command with JSON output and decodes it into out.
func (c *cli) runJSON(out any, args ...string) {
	c.t.Helper()
	stdout, stderr, err := c.run("json", args...)
	require.NoError(c.t, err, stderr)
	require.NoError(c.t, json.Unmarshal([]byte(stdout), out), stdout)
}

func (c *cli) login() {
	c.t.Helper()
	var u models.User
	c.runJSON(&u, "login", "--email", "ana@example.com", "--password", "hunter2")
	require.Equal(c.t, "ana@example.com", u.Email)
}

func TestLoginPersistsAcrossInvocations(t *testing.T) {
	c := newCLI(t)
	c.login()

	var st statusInfo
	c.runJSON(&st, "status")
	assert.True(t, st.Authenticated)
	require.NotNil(t, st.User)
	assert.Equal(t, "Ana Analyst", st.User.FullName)
	assert.Equal(t, "/dashboard", st.Location)

	var u models.User
	c.runJSON(&u, "whoami", "--refresh")
	assert.Equal(t, "ana@example.com", u.Email)

	_, stderr, err := c.run("table", "logout")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Logged out")

	_, _, err = c.run("table", "whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)

	c.runJSON(&st, "status")
	assert.False(t, st.Authenticated)
	assert.Equal(t, "/login", st.Location)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	c := newCLI(t)
	_, _, err := c.run("table", "login", "--email", "ana@example.com", "--password", "wrong")
	require.Error(t, err)

	var st statusInfo
	c.runJSON(&st, "status")
	assert.False(t, st.Authenticated)
}

func TestExpiredSessionRedirectsToLogin(t *testing.T) {
	c := newCLI(t)
	c.login()
	c.be.ExpireTokens()

	_, _, err := c.run("table", "projects", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session expired")

	var st statusInfo
	c.runJSON(&st, "status")
	assert.False(t, st.Authenticated)
}

func TestProjectAndScenarioCommands(t *testing.T) {
	c := newCLI(t)
	c.login()

	var p models.Project
	c.runJSON(&p, "projects", "create", "Northern Watch", "--classification", "SECRET", "--tag", "arctic")
	assert.Equal(t, "Northern Watch", p.Name)
	assert.Equal(t, []string{"arctic"}, p.Tags)

	var list []models.Project
	c.runJSON(&list, "projects", "list")
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)

	var s models.Scenario
	c.runJSON(&s, "scenarios", "create", "Baseline", "-p", p.ID, "--type", "hybrid")
	assert.Equal(t, models.ScenarioHybrid, s.ScenarioType)

	var branch models.Scenario
	c.runJSON(&branch, "scenarios", "branch", s.ID, "-p", p.ID, "--name", "Baseline v2")
	assert.Equal(t, s.ID, branch.ParentScenarioID)
	assert.Equal(t, s.Version+1, branch.Version)

	var scenarios []models.Scenario
	c.runJSON(&scenarios, "scenarios", "list", "-p", p.ID)
	assert.Len(t, scenarios, 2)

	_, stderr, err := c.run("table", "projects", "delete", p.ID)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Deleted project")

	c.runJSON(&list, "projects", "list")
	assert.Empty(t, list)
}

func TestCountryCommands(t *testing.T) {
	c := newCLI(t)
	c.login()

	var list []models.Country
	c.runJSON(&list, "countries", "list", "--sort", "name", "--search", "")
	names := make([]string, len(list))
	for i, co := range list {
		names[i] = co.Name
	}
	assert.Equal(t, []string{"France", "Japan", "United States"}, names)

	var detail countryDetail
	c.runJSON(&detail, "countries", "show", "cty-fra")
	require.NotNil(t, detail.Country)
	assert.Equal(t, "FRA", detail.Country.ISOCode)
	assert.NotNil(t, detail.Summary)

	stdout, _, err := c.run("table", "countries", "list", "--sort", "budget")
	require.NoError(t, err)
	assert.Contains(t, stdout, "NAME")
	assert.Contains(t, stdout, "Japan")

	_, _, err = c.run("table", "countries", "list", "--sort", "gdp")
	assert.Error(t, err)
}

func TestOpenResolvesThroughGuards(t *testing.T) {
	c := newCLI(t)

	var r resolvedRoute
	c.runJSON(&r, "open", "/projects")
	assert.Equal(t, "/login", r.Location)
	assert.Equal(t, "login", r.Route)

	c.login()
	c.runJSON(&r, "open", "/countries/cty-jpn")
	assert.Equal(t, "/countries/cty-jpn", r.Location)
	assert.Equal(t, "cty-jpn", r.Params["id"])

	c.runJSON(&r, "open", "/login")
	assert.Equal(t, "/dashboard", r.Location)
}

func TestDashboardCommand(t *testing.T) {
	c := newCLI(t)
	c.login()

	var p models.Project
	c.runJSON(&p, "projects", "create", "Alpha")

	var stats app.DashboardStats
	c.runJSON(&stats, "dashboard")
	assert.Equal(t, 3, stats.TotalCountries)
	assert.Equal(t, 1, stats.TotalProjects)
	require.Len(t, stats.RecentProjects, 1)
	assert.Equal(t, "Alpha", stats.RecentProjects[0].Name)
}

func TestTokenCommand(t *testing.T) {
	c := newCLI(t)
	c.login()

	var info tokenInfo
	c.runJSON(&info, "token")
	assert.NotEmpty(t, info.Subject)
	assert.False(t, info.Expired)
	assert.True(t, info.ExpiresAt.After(time.Now()))
}

func TestInspectToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sign := func(exp time.Time) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "usr-1",
			IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(exp),
		}).SignedString([]byte("k"))
		require.NoError(t, err)
		return tok
	}

	info, err := inspectToken(sign(now.Add(time.Minute)), now)
	require.NoError(t, err)
	assert.Equal(t, "usr-1", info.Subject)
	assert.False(t, info.Expired)

	info, err = inspectToken(sign(now.Add(-time.Minute)), now)
	require.NoError(t, err)
	assert.True(t, info.Expired)

	_, err = inspectToken("not-a-token", now)
	assert.Error(t, err)
}

func TestGroupThousands(t *testing.T) {
	tests := map[string]string{
		"0":         "0",
		"999":       "999",
		"1000":      "1,000",
		"958000":    "958,000",
		"-1234567":  "-1,234,567",
		"100000000": "100,000,000",
	}
	for in, want := range tests {
		assert.Equal(t, want, groupThousands(in), in)
	}
}

func TestLoginWhileLoggedInIsRefused(t *testing.T) {
	c := newCLI(t)
	c.login()

	_, _, err := c.run("table", "login", "--email", "ana@example.com", "--password", "hunter2")
	assert.ErrorIs(t, err, errAlreadyLoggedIn)
	_, _, err = c.run("table", "register", "--email", "bo@example.com", "--password", "hunter22", "--name", "Bo")
	assert.ErrorIs(t, err, errAlreadyLoggedIn)

	var st statusInfo
	c.runJSON(&st, "status")
	assert.True(t, st.Authenticated)
	require.NotNil(t, st.User)
	assert.Equal(t, "ana@example.com", st.User.Email)
}
