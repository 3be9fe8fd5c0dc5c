package store

import (
	"slices"
	"sync"

	"github.com/apexdefense/agd/models"
)

// AIState is a point-in-time copy of the AI store.
type AIState struct {
	Config    *models.AIConfig
	Enabled   bool
	Loading   bool
	Providers []models.AIProviderInfo
	Features  []models.AIFeatureInfo
}

// AI holds the caller's AI configuration and the backend's catalogue of
// providers and features.
type AI struct {
	mu        sync.Mutex
	config    *models.AIConfig
	loading   bool
	providers []models.AIProviderInfo
	features  []models.AIFeatureInfo
	gen       uint64

	subs listeners[AIState]
}

// NewAI returns an AI store with no configuration.
func NewAI() *AI {
	return &AI{}
}

// SetConfig replaces the configuration. nil means none is stored.
func (a *AI) SetConfig(cfg *models.AIConfig) {
	a.mu.Lock()
	a.config = cloneConfig(cfg)
	a.gen++
	state := a.stateLocked()
	a.mu.Unlock()
	a.subs.notify(state)
}

// Reset drops the configuration and catalogue and invalidates any
// outstanding fetch.
func (a *AI) Reset() {
	a.mu.Lock()
	a.config = nil
	a.providers = nil
	a.features = nil
	a.loading = false
	a.gen++
	state := a.stateLocked()
	a.mu.Unlock()
	a.subs.notify(state)
}

// SetCatalog replaces the provider and feature lists.
func (a *AI) SetCatalog(providers []models.AIProviderInfo, features []models.AIFeatureInfo) {
	a.mu.Lock()
	a.providers = slices.Clone(providers)
	a.features = slices.Clone(features)
	a.gen++
	state := a.stateLocked()
	a.mu.Unlock()
	a.subs.notify(state)
}

// Begin starts a settings fetch.
func (a *AI) Begin() Ticket {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gen++
	return Ticket(a.gen)
}

// Resolve applies a settings fetch unless the store changed after t.
func (a *AI) Resolve(t Ticket, cfg *models.AIConfig, providers []models.AIProviderInfo, features []models.AIFeatureInfo) bool {
	a.mu.Lock()
	if uint64(t) != a.gen {
		a.mu.Unlock()
		return false
	}
	a.gen++
	a.config = cloneConfig(cfg)
	a.providers = slices.Clone(providers)
	a.features = slices.Clone(features)
	state := a.stateLocked()
	a.mu.Unlock()
	a.subs.notify(state)
	return true
}

// Config returns a copy of the configuration, or nil.
func (a *AI) Config() *models.AIConfig {
	a.mu.Lock()
	defer a.mu.Unlock()
	return cloneConfig(a.config)
}

// IsEnabled reports whether a provider other than "none" is configured
// with a stored API key.
func (a *AI) IsEnabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.config.Enabled()
}

// SetLoading sets the loading flag.
func (a *AI) SetLoading(loading bool) {
	a.mu.Lock()
	a.loading = loading
	state := a.stateLocked()
	a.mu.Unlock()
	a.subs.notify(state)
}

// IsLoading reports the loading flag.
func (a *AI) IsLoading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

// Snapshot returns the full state.
func (a *AI) Snapshot() AIState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stateLocked()
}

// Subscribe registers fn to receive the state after every transition.
func (a *AI) Subscribe(fn func(AIState)) (unsubscribe func()) {
	return a.subs.subscribe(fn)
}

func (a *AI) stateLocked() AIState {
	return AIState{
		Config:    cloneConfig(a.config),
		Enabled:   a.config.Enabled(),
		Loading:   a.loading,
		Providers: slices.Clone(a.providers),
		Features:  slices.Clone(a.features),
	}
}

func cloneConfig(cfg *models.AIConfig) *models.AIConfig {
	if cfg == nil {
		return nil
	}
	cp := *cfg
	cp.EnabledFeatures = slices.Clone(cfg.EnabledFeatures)
	return &cp
}
