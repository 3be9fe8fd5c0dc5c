// Package app is the composition root of the dashboard client. It builds
// storage, the gateway, the session and resource stores, the navigator and
// the unauthorized bridge, and exposes the actions views trigger.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/apexdefense/agd/bridge"
	"github.com/apexdefense/agd/events"
	"github.com/apexdefense/agd/gateway"
	"github.com/apexdefense/agd/models"
	"github.com/apexdefense/agd/routes"
	"github.com/apexdefense/agd/session"
	"github.com/apexdefense/agd/storage"
	"github.com/apexdefense/agd/store"
)

// ErrViewClosed is the cancellation cause of a view's context once the
// view has been closed or navigated away from.
var ErrViewClosed = errors.New("view closed")

// errorNoticeDuration is how long failure notifications stay queued.
const errorNoticeDuration = 5 * time.Second

// App wires the client together. Every field is an independent instance;
// two Apps never share state.
type App struct {
	Gateway   *gateway.Client
	Session   *session.Store
	Projects  *store.Projects
	Scenarios *store.Scenarios
	Countries *store.Countries
	AI        *store.AI
	Map       *store.Map
	UI        *store.UI
	Signal    *events.Signal
	Nav       *routes.Navigator

	logger   *slog.Logger
	mapToken string
	bridge   *bridge.Bridge

	mu      sync.Mutex
	view    *View
	closers []func() error
	closed  bool
}

type options struct {
	namespace  string
	logger     *slog.Logger
	httpClient *http.Client
	mapToken   string
	table      *routes.Table
}

// Option configures New.
type Option func(*options)

// WithNamespace selects the storage namespace (the profile).
func WithNamespace(ns string) Option {
	return func(o *options) {
		o.namespace = ns
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHTTPClient replaces the gateway's http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithMapToken carries the map-provider access token for the map view.
func WithMapToken(tok string) Option {
	return func(o *options) {
		o.mapToken = tok
	}
}

// WithRouteTable replaces the default route table.
func WithRouteTable(t *routes.Table) Option {
	return func(o *options) {
		o.table = t
	}
}

// New builds an App against the backend at apiURL, keeping durable state in
// repo. The persisted session is restored before New returns, so the first
// route decision already sees it.
func New(apiURL string, repo storage.Repository, opts ...Option) (*App, error) {
	o := options{namespace: gateway.DefaultNamespace}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.table == nil {
		o.table = routes.DefaultTable()
	}

	a := &App{
		Session:   session.New(repo, session.WithNamespace(o.namespace), session.WithLogger(o.logger)),
		Projects:  store.NewProjects(),
		Scenarios: store.NewScenarios(),
		Countries: store.NewCountries(),
		AI:        store.NewAI(),
		Map:       store.NewMap(),
		UI:        store.NewUI(),
		Signal:    events.NewSignal(),
		logger:    o.logger,
		mapToken:  o.mapToken,
	}
	if err := a.Session.Restore(); err != nil {
		return nil, err
	}

	gwOpts := []gateway.Option{
		gateway.WithNamespace(o.namespace),
		gateway.WithLogger(o.logger),
		gateway.WithUnauthorizedHandler(a.unauthorized),
	}
	if o.httpClient != nil {
		gwOpts = append(gwOpts, gateway.WithHTTPClient(o.httpClient))
	}
	gw, err := gateway.New(apiURL, repo, gwOpts...)
	if err != nil {
		return nil, err
	}
	a.Gateway = gw

	a.Nav = routes.NewNavigator(o.table, a.Session)
	a.bridge = bridge.Open(a.Signal, a, o.logger)
	return a, nil
}

// MapToken returns the map-provider access token.
func (a *App) MapToken() string {
	return a.mapToken
}

// Logger returns the App's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// OnClose registers fn to run when the App is closed, in reverse order of
// registration.
func (a *App) OnClose(fn func() error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, fn)
}

// Close closes the open view, detaches the bridge and runs the OnClose
// functions. Calling Close again is a no-op.
func (a *App) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	v := a.view
	a.view = nil
	closers := slices.Clone(a.closers)
	a.mu.Unlock()

	if v != nil {
		v.Close()
	}
	errs := []error{a.bridge.Close()}
	for i := len(closers) - 1; i >= 0; i-- {
		errs = append(errs, closers[i]())
	}
	return errors.Join(errs...)
}

// unauthorized runs on the requesting goroutine after the gateway dropped a
// rejected token: the session and cached data go, then the bridge redirects.
func (a *App) unauthorized(evt events.Unauthorized) {
	if err := a.Session.Logout(); err != nil {
		a.logger.Error("clearing session after 401 failed", "error", err)
	}
	a.resetData()
	a.Signal.Emit(evt)
}

func (a *App) resetData() {
	a.Projects.Reset()
	a.Scenarios.Reset()
	a.Countries.Reset()
	a.AI.Reset()
}

// View is the lifetime of one rendered route. Its context is cancelled
// when the view is closed or replaced, and any action bound to it drops
// its result instead of mutating shared state.
type View struct {
	Match routes.Match

	ctx    context.Context
	cancel context.CancelCauseFunc
}

// Context is cancelled with ErrViewClosed when the view goes away.
func (v *View) Context() context.Context {
	return v.ctx
}

// Closed reports whether the view has been closed.
func (v *View) Closed() bool {
	return v.ctx.Err() != nil
}

// Close ends the view's lifetime. It is safe to call more than once.
func (v *View) Close() {
	v.cancel(ErrViewClosed)
}

// Mount navigates to path, pushing a history entry, and opens a view for
// the route the guards settle on. The previously mounted view is closed.
func (a *App) Mount(path string) (*View, error) {
	return a.navigate(path, a.Nav.Push)
}

// Replace navigates to path without adding a history entry. The bridge
// redirects through it so the interrupted view is closed as well.
func (a *App) Replace(path string) (routes.Match, error) {
	v, err := a.navigate(path, a.Nav.Replace)
	if err != nil {
		return routes.Match{}, err
	}
	return v.Match, nil
}

// CurrentView returns the mounted view, or nil.
func (a *App) CurrentView() *View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view
}

func (a *App) navigate(path string, move func(string) (routes.Match, error)) (*View, error) {
	m, err := move(path)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancelCause(context.Background())
	v := &View{Match: m, ctx: ctx, cancel: cancel}

	a.mu.Lock()
	prev := a.view
	a.view = v
	a.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
	a.logger.Debug("navigated", "requested", path, "location", m.Path, "route", m.Route.Name)
	return v, nil
}

// alive returns the cancellation cause once ctx is done.
func alive(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("dropping result: %w", context.Cause(ctx))
	}
	return nil
}

// fail queues an error notification for err and returns it. Cancellation
// is not reported; a 401 is, even though the bridge has already closed the
// requesting view.
func (a *App) fail(what string, err error) error {
	if !errors.Is(err, context.Canceled) && !errors.Is(err, ErrViewClosed) {
		a.UI.Notify(models.SeverityError, fmt.Sprintf("%s: %v", what, err), errorNoticeDuration)
	}
	a.logger.Debug("action failed", "action", what, "error", err)
	return err
}
