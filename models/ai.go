package models

import "time"

// AIProvider names the backend used for AI-assisted features.
type AIProvider string

const (
	ProviderOpenAI    AIProvider = "openai"
	ProviderAnthropic AIProvider = "anthropic"
	ProviderLocal     AIProvider = "local"
	ProviderNone      AIProvider = "none"
)

// FallbackMode controls what happens when the provider is unavailable.
type FallbackMode string

const (
	FallbackAuto   FallbackMode = "auto"
	FallbackPrompt FallbackMode = "prompt"
	FallbackBlock  FallbackMode = "block"
)

// AIFeatureID identifies an AI-assisted feature.
type AIFeatureID string

const (
	FeatureIntelligenceAnalysis AIFeatureID = "intelligence_analysis"
	FeatureScenarioGeneration   AIFeatureID = "scenario_generation"
	FeatureThreatAssessment     AIFeatureID = "threat_assessment"
	FeatureReportGeneration     AIFeatureID = "report_generation"
	FeatureTranslation          AIFeatureID = "translation"
)

// AIConfig is the caller's AI provider configuration. The API key itself
// never leaves the server; HasAPIKey reports whether one is stored.
type AIConfig struct {
	ID                   string         `json:"id"`
	UserID               string         `json:"user_id"`
	Provider             AIProvider     `json:"provider"`
	Model                string         `json:"model,omitempty"`
	FallbackMode         FallbackMode   `json:"fallback_mode"`
	AllowDataSharing     bool           `json:"allow_data_sharing"`
	MonthlyBudgetUSD     *float64       `json:"monthly_budget_usd,omitempty"`
	CurrentMonthUsageUSD float64        `json:"current_month_usage_usd"`
	MaxInputTokens       *int           `json:"max_input_tokens,omitempty"`
	EnabledFeatures      []AIFeatureID  `json:"enabled_features,omitempty"`
	FeatureSettings      map[string]any `json:"feature_settings,omitempty"`
	LocalModelPath       string         `json:"local_model_path,omitempty"`
	LocalModelConfig     map[string]any `json:"local_model_config,omitempty"`
	HasAPIKey            bool           `json:"has_api_key"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// Enabled reports whether AI features can run with this configuration.
func (c *AIConfig) Enabled() bool {
	return c != nil && c.Provider != ProviderNone && c.HasAPIKey
}

// AIConfigCreate is the body for POST and PATCH /ai/config.
type AIConfigCreate struct {
	Provider         AIProvider     `json:"provider,omitempty"`
	Model            string         `json:"model,omitempty"`
	APIKey           string         `json:"api_key,omitempty"`
	FallbackMode     FallbackMode   `json:"fallback_mode,omitempty"`
	AllowDataSharing *bool          `json:"allow_data_sharing,omitempty"`
	MonthlyBudgetUSD *float64       `json:"monthly_budget_usd,omitempty"`
	MaxInputTokens   *int           `json:"max_input_tokens,omitempty"`
	EnabledFeatures  []AIFeatureID  `json:"enabled_features,omitempty"`
	FeatureSettings  map[string]any `json:"feature_settings,omitempty"`
	LocalModelPath   string         `json:"local_model_path,omitempty"`
	LocalModelConfig map[string]any `json:"local_model_config,omitempty"`
}

// AIFeatureInfo describes a feature offered by the backend.
type AIFeatureInfo struct {
	FeatureID      AIFeatureID `json:"feature_id"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	AIMode         string      `json:"ai_mode"`
	FallbackMode   string      `json:"fallback_mode"`
	RequiresAPIKey bool        `json:"requires_api_key"`
}

// AIProviderInfo describes a provider supported by the backend.
type AIProviderInfo struct {
	ProviderID        AIProvider `json:"provider_id"`
	Name              string     `json:"name"`
	Models            []string   `json:"models"`
	SupportsStreaming bool       `json:"supports_streaming"`
	MaxTokens         *int       `json:"max_tokens,omitempty"`
}

// AIAnalysisRequest is the body for POST /ai/analyze.
type AIAnalysisRequest struct {
	Feature   AIFeatureID    `json:"feature"`
	InputText string         `json:"input_text"`
	Context   map[string]any `json:"context,omitempty"`
	Options   map[string]any `json:"options,omitempty"`
}

// AIAnalysisResponse is the result of an analysis. Result is either a
// string or a JSON object depending on the feature.
type AIAnalysisResponse struct {
	Feature    AIFeatureID `json:"feature"`
	Result     any         `json:"result"`
	TokensUsed int         `json:"tokens_used"`
	CostUSD    float64     `json:"cost_usd"`
	Provider   AIProvider  `json:"provider"`
	Model      string      `json:"model,omitempty"`
	IsFallback bool        `json:"is_fallback"`
}
