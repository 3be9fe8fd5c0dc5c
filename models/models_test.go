package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectActiveScenarios(t *testing.T) {
	p := Project{Scenarios: []Scenario{
		{ID: "s1", Status: ScenarioActive},
		{ID: "s2", Status: ScenarioDraft},
		{ID: "s3", Status: ScenarioActive},
	}}
	assert.Equal(t, 2, p.ActiveScenarios())
	assert.Zero(t, Project{}.ActiveScenarios())
}

func TestAIConfigEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  *AIConfig
		want bool
	}{
		{"nil", nil, false},
		{"none provider", &AIConfig{Provider: ProviderNone, HasAPIKey: true}, false},
		{"no key", &AIConfig{Provider: ProviderOpenAI}, false},
		{"ready", &AIConfig{Provider: ProviderAnthropic, HasAPIKey: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Enabled())
		})
	}
}

func TestPartialUpdateOmitsZeroFields(t *testing.T) {
	data, err := json.Marshal(ProjectCreate{Description: "updated"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"description":"updated"}`, string(data))

	off := false
	data, err = json.Marshal(AIConfigCreate{AllowDataSharing: &off})
	require.NoError(t, err)
	assert.JSONEq(t, `{"allow_data_sharing":false}`, string(data))
}

func TestCountryDecodesBackendPayload(t *testing.T) {
	payload := `{
		"id": "c1", "name": "France", "iso_code": "FRA", "iso_code_2": "FR",
		"region": "Europe", "population": 68000000, "defense_budget_usd": 5.6e10,
		"lat": 46.2, "lng": 2.2,
		"created_at": "2025-01-01T00:00:00Z", "updated_at": "2025-01-01T00:00:00Z"
	}`
	var c Country
	require.NoError(t, json.Unmarshal([]byte(payload), &c))
	assert.Equal(t, "FRA", c.ISOCode)
	require.NotNil(t, c.Population)
	assert.EqualValues(t, 68000000, *c.Population)
	require.NotNil(t, c.Lat)
	assert.InDelta(t, 46.2, *c.Lat, 1e-9)
	assert.Nil(t, c.GDPUSD)
}
