package gateway

import (
	"context"
	"net/http"

	"github.com/apexdefense/agd/models"
)

// AIProviders lists the providers the backend supports.
func (c *Client) AIProviders(ctx context.Context) ([]models.AIProviderInfo, error) {
	var out []models.AIProviderInfo
	if err := c.Request(ctx, http.MethodGet, "/ai/providers", nil, nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// AIFeatures lists the AI-assisted features.
func (c *Client) AIFeatures(ctx context.Context) ([]models.AIFeatureInfo, error) {
	var out []models.AIFeatureInfo
	if err := c.Request(ctx, http.MethodGet, "/ai/features", nil, nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// AIConfig returns the caller's configuration, or nil when none exists.
func (c *Client) AIConfig(ctx context.Context) (*models.AIConfig, error) {
	var out *models.AIConfig
	if err := c.Request(ctx, http.MethodGet, "/ai/config", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAIConfig stores a first configuration for the caller.
func (c *Client) CreateAIConfig(ctx context.Context, in models.AIConfigCreate) (*models.AIConfig, error) {
	var out models.AIConfig
	if err := c.Request(ctx, http.MethodPost, "/ai/config", in, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAIConfig patches the caller's configuration.
func (c *Client) UpdateAIConfig(ctx context.Context, in models.AIConfigCreate) (*models.AIConfig, error) {
	var out models.AIConfig
	if err := c.Request(ctx, http.MethodPatch, "/ai/config", in, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAIConfig removes the caller's configuration.
func (c *Client) DeleteAIConfig(ctx context.Context) error {
	return c.Request(ctx, http.MethodDelete, "/ai/config", nil, nil, nil)
}

// Analyze runs an AI feature over the input text.
func (c *Client) Analyze(ctx context.Context, in models.AIAnalysisRequest) (*models.AIAnalysisResponse, error) {
	var out models.AIAnalysisResponse
	if err := c.Request(ctx, http.MethodPost, "/ai/analyze", in, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
