// internal/workers/semantics/semantics-description/config.go
package semanticsdescription

import (
	"time"

	"semantics-workers/internal/common/config"
	"semantics-workers/pkg/registry"
)

type Config struct {
	Timeout     time.Duration
	MaxRetries  int // cap on the retries a failed job is handed back with
	InputSchema map[string]interface{}
}

// defaultInputSchema is used when the activity registry has no entry for TaskType.
var defaultInputSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"selectedModels"},
	"properties": map[string]interface{}{
		"userPrompt": map[string]interface{}{"type": "string"},
		"selectedModels": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"mdl":    map[string]interface{}{"type": "object"},
		"mdlKey": map[string]interface{}{"type": "string", "minLength": 1},
	},
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     2 * time.Minute,
		MaxRetries:  3,
		InputSchema: defaultInputSchema,
	}
}

// ConfigFrom resolves each setting in order: the worker's own config, the registry
// activity, the built-in default. Zero means unset at every layer.
func ConfigFrom(wc config.WorkerConfig, reg *registry.ActivityRegistry) *Config {
	c := LoadConfig()
	if reg != nil {
		if activity, err := reg.FindByTaskType(TaskType); err == nil {
			if len(activity.InputSchema) > 0 {
				c.InputSchema = activity.InputSchema
			}
			c.Timeout = activity.TimeoutDuration(c.Timeout)
			if activity.Retries > 0 {
				c.MaxRetries = activity.Retries
			}
		}
	}

	if wc.Timeout > 0 {
		c.Timeout = config.GetDuration(wc.Timeout)
	}
	if wc.MaxRetries > 0 {
		c.MaxRetries = wc.MaxRetries
	}
	return c
}
