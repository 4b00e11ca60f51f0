package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semantics-workers/pkg/registry"
)

func writeRegistry(t *testing.T, mutate func(a *registry.Activity)) string {
	t.Helper()
	a := registry.Activity{
		ID:           "semantics-description",
		DisplayName:  "Semantics Description",
		Description:  "Describes MDL models",
		Category:     "semantics",
		Version:      "1.0.0",
		TaskType:     "semantics-description",
		InputSchema:  map[string]interface{}{"type": "object"},
		OutputSchema: map[string]interface{}{"type": "object"},
		ErrorCodes:   []string{"INVALID_INPUT", "LLM_TIMEOUT"},
		Timeout:      "2m",
		Retries:      3,
	}
	mutate(&a)

	reg := registry.New()
	require.NoError(t, reg.Add(a))
	path := filepath.Join(t.TempDir(), "activity-registry.json")
	require.NoError(t, reg.Save(path))
	return path
}

func TestValidateRegistry(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(a *registry.Activity)
		wantErr string
	}{
		{name: "valid", mutate: func(a *registry.Activity) {}},
		{name: "unknown error code", mutate: func(a *registry.Activity) {
			a.ErrorCodes = append(a.ErrorCodes, "FRANCHISE_NOT_FOUND")
		}, wantErr: "unknown error code FRANCHISE_NOT_FOUND"},
		{name: "broken output schema", mutate: func(a *registry.Activity) {
			a.OutputSchema = map[string]interface{}{"type": 42}
		}, wantErr: "output schema"},
		{name: "broken input schema", mutate: func(a *registry.Activity) {
			a.InputSchema = map[string]interface{}{"type": 42}
		}, wantErr: "input schema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := validateRegistry(writeRegistry(t, tt.mutate))
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, 1, n)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateRegistry_ShippedFile(t *testing.T) {
	path := filepath.Join("..", "..", "..", "configs", "activity-registry.json")
	if _, err := os.Stat(path); err != nil {
		t.Skip("shipped registry not found")
	}
	n, err := validateRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
