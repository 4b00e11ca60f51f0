// internal/workers/semantics/semantics-description/models.go
package semanticsdescription

import (
	"encoding/json"

	"semantics-workers/internal/pipeline/semantics"
)

// Input is read from the job variables. The MDL comes inline or from the MDL store
// by key, never both.
type Input struct {
	UserPrompt     string          `json:"userPrompt"`
	SelectedModels []string        `json:"selectedModels"`
	MDL            json.RawMessage `json:"mdl,omitempty"`
	MDLKey         string          `json:"mdlKey,omitempty"`
}

// Output is written back to the process. Degraded is set only when the LLM reply could
// not be parsed; a parsed reply describing no models completes with empty semantics.
type Output struct {
	Semantics  semantics.Result `json:"semantics"`
	ModelCount int              `json:"modelCount"`
	RunID      string           `json:"runId"`
	Degraded   bool             `json:"degraded"`
}
