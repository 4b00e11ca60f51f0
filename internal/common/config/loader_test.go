package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_DefaultsAndExpansion(t *testing.T) {
	t.Setenv("TEST_ZEEBE_ADDRESS", "zeebe:26500")
	t.Setenv("LLM_API_KEY", "sk-test")

	path := writeConfig(t, `
camunda:
  broker_address: ${TEST_ZEEBE_ADDRESS}
llm:
  base_url: http://llm.local/v1
workers:
  semantics-description:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "zeebe:26500", cfg.Camunda.BrokerAddress)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 60000, cfg.LLM.Timeout)
	assert.Equal(t, "mdl:", cfg.Redis.KeyPrefix)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "semantics-workers", cfg.Tracing.ServiceName)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)

	w := GetWorkerConfig(cfg, "semantics-description")
	assert.True(t, w.Enabled)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Zero(t, w.Timeout, "unset timeout defers to the activity registry")
	assert.Zero(t, w.MaxRetries, "unset max_retries defers to the activity registry")
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing broker",
			body:    "llm:\n  base_url: http://llm\n",
			wantErr: "camunda.broker_address is required",
		},
		{
			name:    "missing llm base url",
			body:    "camunda:\n  broker_address: zeebe:26500\n",
			wantErr: "llm.base_url is required",
		},
		{
			name: "redis enabled without address",
			body: `
camunda:
  broker_address: zeebe:26500
llm:
  base_url: http://llm
redis:
  enabled: true
`,
			wantErr: "redis.address is required",
		},
		{
			name: "tracing enabled without endpoint",
			body: `
camunda:
  broker_address: zeebe:26500
llm:
  base_url: http://llm
tracing:
  enabled: true
`,
			wantErr: "tracing.endpoint is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_ZeroSampleRatioIsKept(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, `
camunda:
  broker_address: zeebe:26500
llm:
  base_url: http://llm
tracing:
  sample_ratio: 0
`))
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Tracing.SampleRatio)
}

func TestLoadFromFile_WorkerOverrides(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, `
camunda:
  broker_address: zeebe:26500
llm:
  base_url: http://llm
workers:
  semantics-description:
    enabled: true
    timeout: 30000
    max_retries: 1
`))
	require.NoError(t, err)

	w := GetWorkerConfig(cfg, "semantics-description")
	assert.Equal(t, 30000, w.Timeout)
	assert.Equal(t, 1, w.MaxRetries)
	assert.Equal(t, 5, w.MaxJobsActive)
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWorkerHelpers(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"off": {Enabled: false},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "off"))
	assert.True(t, IsWorkerEnabled(cfg, "unknown"))
	assert.Zero(t, GetWorkerConfig(cfg, "unknown").Timeout)
	assert.Equal(t, 5, GetWorkerConfig(cfg, "unknown").MaxJobsActive)
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
