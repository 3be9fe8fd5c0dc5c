package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/apexdefense/agd/app"
	"github.com/apexdefense/agd/models"
	"github.com/apexdefense/agd/routes"
)

var (
	aiProvider    string
	aiModel       string
	aiAPIKey      string
	aiFallback    string
	aiDataSharing bool
	aiBudget      float64
	aiMaxTokens   int
	aiFeatures    []string

	analyzeFeature string
)

type aiSettings struct {
	Config    *models.AIConfig        `json:"config" yaml:"config"`
	Enabled   bool                    `json:"enabled" yaml:"enabled"`
	Providers []models.AIProviderInfo `json:"providers" yaml:"providers"`
	Features  []models.AIFeatureInfo  `json:"features" yaml:"features"`
}

func renderAIConfig(w io.Writer, cfg *models.AIConfig) error {
	if cfg == nil {
		fmt.Fprintln(w, warnStyle.Render("No AI provider configured"))
		return nil
	}
	key := errStyle.Render("missing")
	if cfg.HasAPIKey {
		key = okStyle.Render("stored")
	}
	budget := "-"
	if cfg.MonthlyBudgetUSD != nil {
		budget = fmt.Sprintf("$%.2f", *cfg.MonthlyBudgetUSD)
	}
	features := make([]string, len(cfg.EnabledFeatures))
	for i, f := range cfg.EnabledFeatures {
		features[i] = string(f)
	}
	return writeFields(w, "AI configuration", [][2]string{
		{"Provider", string(cfg.Provider)},
		{"Model", cfg.Model},
		{"API key", key},
		{"Fallback", string(cfg.FallbackMode)},
		{"Data sharing", fmt.Sprint(cfg.AllowDataSharing)},
		{"Budget", budget},
		{"Used this month", fmt.Sprintf("$%.2f", cfg.CurrentMonthUsageUSD)},
		{"Features", strings.Join(features, ", ")},
	})
}

var aiCmd = &cobra.Command{
	Use:   "ai",
	Short: "Configure and run AI-assisted features",
}

var aiSettingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show the AI configuration and the backend's catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withView(cmd, routes.AISettings, func(a *app.App, view *app.View) error {
			if err := a.LoadAISettings(view.Context()); err != nil {
				return err
			}
			st := a.AI.Snapshot()
			out := aiSettings{Config: st.Config, Enabled: st.Enabled, Providers: st.Providers, Features: st.Features}
			return render(cmd, out, func(w io.Writer) error {
				if err := renderAIConfig(w, out.Config); err != nil {
					return err
				}
				rows := make([][]string, 0, len(out.Providers))
				for _, p := range out.Providers {
					rows = append(rows, []string{string(p.ProviderID), p.Name, strings.Join(p.Models, ", ")})
				}
				io.WriteString(w, "\n")
				if err := writeTable(w, []string{"PROVIDER", "NAME", "MODELS"}, rows); err != nil {
					return err
				}
				rows = rows[:0]
				for _, f := range out.Features {
					rows = append(rows, []string{string(f.FeatureID), f.Name, f.FallbackMode})
				}
				io.WriteString(w, "\n")
				return writeTable(w, []string{"FEATURE", "NAME", "FALLBACK"}, rows)
			})
		})
	},
}

var aiSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or change the AI configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		in := models.AIConfigCreate{
			Provider:     models.AIProvider(aiProvider),
			Model:        aiModel,
			APIKey:       aiAPIKey,
			FallbackMode: models.FallbackMode(aiFallback),
		}
		if f.Changed("data-sharing") {
			in.AllowDataSharing = &aiDataSharing
		}
		if f.Changed("budget") {
			in.MonthlyBudgetUSD = &aiBudget
		}
		if f.Changed("max-tokens") {
			in.MaxInputTokens = &aiMaxTokens
		}
		for _, id := range aiFeatures {
			in.EnabledFeatures = append(in.EnabledFeatures, models.AIFeatureID(id))
		}
		return withView(cmd, routes.AISettings, func(a *app.App, view *app.View) error {
			if err := a.LoadAISettings(view.Context()); err != nil {
				return err
			}
			cfg, err := a.SaveAIConfig(view.Context(), in)
			if err != nil {
				return err
			}
			return render(cmd, cfg, func(w io.Writer) error {
				return renderAIConfig(w, cfg)
			})
		})
	},
}

var aiDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the AI configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withView(cmd, routes.AISettings, func(a *app.App, view *app.View) error {
			if err := a.DeleteAIConfig(view.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), okStyle.Render("AI configuration removed"))
			return nil
		})
	},
}

var aiAnalyzeCmd = &cobra.Command{
	Use:   "analyze <text>...",
	Short: "Run an AI feature over text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := models.AIAnalysisRequest{
			Feature:   models.AIFeatureID(analyzeFeature),
			InputText: strings.Join(args, " "),
		}
		return withView(cmd, routes.Dashboard, func(a *app.App, view *app.View) error {
			resp, err := a.Analyze(view.Context(), req)
			if err != nil {
				return err
			}
			return render(cmd, resp, func(w io.Writer) error {
				source := string(resp.Provider)
				if resp.IsFallback {
					source = warnStyle.Render("manual fallback")
				}
				err := writeFields(w, "", [][2]string{
					{"Feature", string(resp.Feature)},
					{"Answered by", source},
					{"Tokens", fmt.Sprint(resp.TokensUsed)},
					{"Cost", fmt.Sprintf("$%.4f", resp.CostUSD)},
				})
				if err != nil {
					return err
				}
				io.WriteString(w, "\n")
				if s, ok := resp.Result.(string); ok {
					_, err = fmt.Fprintln(w, s)
					return err
				}
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(resp.Result)
			})
		})
	},
}

func init() {
	f := aiSetCmd.Flags()
	f.StringVar(&aiProvider, "provider", "", "openai, anthropic, local or none")
	f.StringVar(&aiModel, "model", "", "Model name")
	f.StringVar(&aiAPIKey, "api-key", "", "Provider API key")
	f.StringVar(&aiFallback, "fallback", "", "auto, prompt or block")
	f.BoolVar(&aiDataSharing, "data-sharing", false, "Allow sending data to the provider")
	f.Float64Var(&aiBudget, "budget", 0, "Monthly budget in USD")
	f.IntVar(&aiMaxTokens, "max-tokens", 0, "Maximum input tokens per request")
	f.StringSliceVar(&aiFeatures, "feature", nil, "Enabled feature, repeatable")

	aiAnalyzeCmd.Flags().StringVar(&analyzeFeature, "feature", string(models.FeatureIntelligenceAnalysis), "Feature to run")

	aiCmd.AddCommand(aiSettingsCmd, aiSetCmd, aiDeleteCmd, aiAnalyzeCmd)
	rootCmd.AddCommand(aiCmd)
}
