package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/apexdefense/agd/models"
)

// LoadAISettings fetches the provider and feature catalogue and the
// caller's configuration together.
func (a *App) LoadAISettings(ctx context.Context) error {
	a.AI.SetLoading(true)
	defer a.AI.SetLoading(false)

	ticket := a.AI.Begin()
	var (
		providers []models.AIProviderInfo
		features  []models.AIFeatureInfo
		cfg       *models.AIConfig
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		providers, err = a.Gateway.AIProviders(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		features, err = a.Gateway.AIFeatures(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		cfg, err = a.Gateway.AIConfig(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return a.fail("Loading AI settings failed", err)
	}
	if err := alive(ctx); err != nil {
		return err
	}
	if !a.AI.Resolve(ticket, cfg, providers, features) {
		a.logger.Debug("discarding stale AI settings")
	}
	return nil
}

// SaveAIConfig creates the caller's configuration when none is held and
// patches it otherwise.
func (a *App) SaveAIConfig(ctx context.Context, in models.AIConfigCreate) (*models.AIConfig, error) {
	var (
		cfg *models.AIConfig
		err error
	)
	if a.AI.Config() == nil {
		cfg, err = a.Gateway.CreateAIConfig(ctx, in)
	} else {
		cfg, err = a.Gateway.UpdateAIConfig(ctx, in)
	}
	if err != nil {
		return nil, a.fail("Saving AI settings failed", err)
	}
	if err := alive(ctx); err != nil {
		return nil, err
	}
	a.AI.SetConfig(cfg)
	a.UI.Notify(models.SeveritySuccess, "AI settings saved", successNoticeDuration)
	return cfg, nil
}

// DeleteAIConfig removes the caller's configuration.
func (a *App) DeleteAIConfig(ctx context.Context) error {
	if err := a.Gateway.DeleteAIConfig(ctx); err != nil {
		return a.fail("Deleting AI settings failed", err)
	}
	if err := alive(ctx); err != nil {
		return err
	}
	a.AI.SetConfig(nil)
	return nil
}

// Analyze runs an AI feature. The backend decides whether a provider or the
// manual fallback answers; the client only relays the result.
func (a *App) Analyze(ctx context.Context, req models.AIAnalysisRequest) (*models.AIAnalysisResponse, error) {
	resp, err := a.Gateway.Analyze(ctx, req)
	if err != nil {
		return nil, a.fail("Analysis failed", err)
	}
	return resp, nil
}
