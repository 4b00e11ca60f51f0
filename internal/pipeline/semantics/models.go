package semantics

// MDL is the semantic-layer manifest: the models a user can query, with their columns
// and free-form properties. Fields the pipeline never reads are not decoded.
type MDL struct {
	Catalog string  `json:"catalog,omitempty"`
	Schema  string  `json:"schema,omitempty"`
	Models  []Model `json:"models"`
}

type Model struct {
	Name       string                 `json:"name"`
	Columns    []Column               `json:"columns"`
	Properties map[string]interface{} `json:"properties"`
	RefSQL     string                 `json:"refSql,omitempty"`
	PrimaryKey string                 `json:"primaryKey,omitempty"`
}

type Column struct {
	Name         string                 `json:"name"`
	Type         string                 `json:"type"`
	NotNull      bool                   `json:"notNull"`
	IsCalculated bool                   `json:"isCalculated,omitempty"`
	Expression   string                 `json:"expression,omitempty"`
	Relationship string                 `json:"relationship,omitempty"`
	Properties   map[string]interface{} `json:"properties"`
}

// PickedModel is the trimmed view of a model that is shown to the LLM.
type PickedModel struct {
	Name       string                 `json:"name"`
	Columns    []Column               `json:"columns"`
	Properties map[string]interface{} `json:"properties"`
}

// Input is one invocation of the pipeline.
type Input struct {
	UserPrompt     string
	SelectedModels []string
	MDL            MDL
	// RunID tags logs and the trace span. Generated when empty.
	RunID string
}

// Result maps a model name to the model document returned by the LLM, which carries
// the generated description under properties.description.
type Result map[string]map[string]interface{}

// Degraded reports the empty-map outcome. It does not tell an unparseable reply from a
// valid one that described nothing; Generation.ParseFailed does.
func (r Result) Degraded() bool {
	return len(r) == 0
}

// Generation is the outcome of one run with the reply's parse status kept alongside.
type Generation struct {
	Result      Result
	ParseFailed bool
}

// Description returns the model-level description for name, if the LLM produced one.
func (r Result) Description(name string) (string, bool) {
	model, ok := r[name]
	if !ok {
		return "", false
	}
	props, ok := model["properties"].(map[string]interface{})
	if !ok {
		return "", false
	}
	desc, ok := props["description"].(string)
	return desc, ok
}
