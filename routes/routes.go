// Package routes maps dashboard paths onto views and decides, from the
// session state alone, whether a view may render or must redirect.
package routes

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Paths of the dashboard views.
const (
	Root       = "/"
	Login      = "/login"
	Register   = "/register"
	Dashboard  = "/dashboard"
	Map        = "/map"
	Countries  = "/countries"
	Country    = "/countries/{id}"
	Projects   = "/projects"
	Project    = "/projects/{id}"
	Scenarios  = "/scenarios"
	AISettings = "/ai-settings"
)

// Access selects the guard applied to a route.
type Access int

const (
	// Protected routes render only for an authenticated session.
	Protected Access = iota
	// PublicOnly routes render only when no session is held.
	PublicOnly
	// Redirect routes never render; they forward to Route.Target.
	Redirect
)

func (a Access) String() string {
	switch a {
	case Protected:
		return "protected"
	case PublicOnly:
		return "public"
	case Redirect:
		return "redirect"
	}
	return fmt.Sprintf("Access(%d)", int(a))
}

// Route is one entry of the route table.
type Route struct {
	Pattern string
	Name    string
	Access  Access
	Target  string
}

// Match is a path resolved against the table.
type Match struct {
	Route  Route
	Path   string
	Params map[string]string
}

// Param returns the URL parameter key, or "".
func (m Match) Param(key string) string {
	return m.Params[key]
}

// Table is the set of known routes. Unknown paths match the fallback
// route, which redirects to the dashboard.
type Table struct {
	mux      *chi.Mux
	routes   map[string]Route
	fallback Route
}

// DefaultTable returns the dashboard's route table.
func DefaultTable() *Table {
	t := NewTable(Route{Pattern: "/*", Name: "not-found", Access: Redirect, Target: Dashboard})
	t.Add(Route{Pattern: Login, Name: "login", Access: PublicOnly})
	t.Add(Route{Pattern: Register, Name: "register", Access: PublicOnly})
	t.Add(Route{Pattern: Root, Name: "index", Access: Redirect, Target: Dashboard})
	t.Add(Route{Pattern: Dashboard, Name: "dashboard", Access: Protected})
	t.Add(Route{Pattern: Map, Name: "map", Access: Protected})
	t.Add(Route{Pattern: Countries, Name: "countries", Access: Protected})
	t.Add(Route{Pattern: Country, Name: "country", Access: Protected})
	t.Add(Route{Pattern: Projects, Name: "projects", Access: Protected})
	t.Add(Route{Pattern: Project, Name: "project", Access: Protected})
	t.Add(Route{Pattern: Scenarios, Name: "scenarios", Access: Protected})
	t.Add(Route{Pattern: AISettings, Name: "ai-settings", Access: Protected})
	return t
}

// NewTable returns a table with only the fallback route.
func NewTable(fallback Route) *Table {
	return &Table{
		mux:      chi.NewMux(),
		routes:   make(map[string]Route),
		fallback: fallback,
	}
}

// Add registers r. Patterns use chi syntax ("/projects/{id}").
func (t *Table) Add(r Route) {
	t.routes[r.Pattern] = r
	t.mux.Get(r.Pattern, http.NotFound)
}

// Routes returns the registered routes, fallback excluded.
func (t *Table) Routes() []Route {
	out := make([]Route, 0, len(t.routes))
	for _, r := range t.routes {
		out = append(out, r)
	}
	return out
}

// Match resolves path, ignoring any query string and a trailing slash.
func (t *Table) Match(path string) Match {
	path = Clean(path)
	rctx := chi.NewRouteContext()
	if !t.mux.Match(rctx, http.MethodGet, path) {
		return Match{Route: t.fallback, Path: path, Params: map[string]string{}}
	}
	r, ok := t.routes[rctx.RoutePattern()]
	if !ok {
		return Match{Route: t.fallback, Path: path, Params: map[string]string{}}
	}
	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		if v, err := url.PathUnescape(rctx.URLParams.Values[i]); err == nil {
			params[k] = v
		} else {
			params[k] = rctx.URLParams.Values[i]
		}
	}
	return Match{Route: r, Path: path, Params: params}
}

// Clean strips the query, fragment and trailing slash from path and makes
// it absolute.
func Clean(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

// Build fills pattern's {params} with values in order.
func Build(pattern string, values ...string) string {
	out := pattern
	for _, v := range values {
		start := strings.Index(out, "{")
		end := strings.Index(out, "}")
		if start < 0 || end < start {
			break
		}
		out = out[:start] + url.PathEscape(v) + out[end+1:]
	}
	return out
}
