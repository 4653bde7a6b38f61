package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 0.2, cfg.Search.Floor)
	assert.Equal(t, 3, cfg.Search.TopK)
	assert.True(t, cfg.Maintenance.Enabled)
	assert.True(t, cfg.Usage.IsEnabled())
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_AZURE_KEY", "secret-value")

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"port": 9090,
		"azure": {
			"endpoint": "https://example.openai.azure.com",
			"api_key": "${TEST_AZURE_KEY}",
			"embedding_deployment": "embed",
			"chat_deployment": "chat"
		},
		"search": {"relevance_floor": 0.3, "top_k": 5}
	}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "secret-value", cfg.Azure.APIKey)
	assert.Equal(t, 0.3, cfg.Search.Floor)
	assert.Equal(t, 5, cfg.Search.TopK)
	// Defaults survive for fields the file omits.
	assert.Equal(t, "2024-02-01", cfg.Azure.APIVersion)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad port", `{"port": -1}`},
		{"floor too high", `{"port": 8080, "search": {"relevance_floor": 1.5}}`},
		{"negative top_k", `{"port": 8080, "search": {"top_k": -2}}`},
		{"not json", `{{{`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			require.NoError(t, os.WriteFile(path, []byte(tc.body), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestUsageDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port": 8080, "usage": {"enabled": false}}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Usage.IsEnabled())
}
