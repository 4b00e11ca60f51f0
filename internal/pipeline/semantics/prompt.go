package semantics

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// Prompt is the rendered user message.
type Prompt struct {
	Prompt string
}

// PromptBuilder renders a fixed template. It is safe for concurrent use.
type PromptBuilder struct {
	tmpl *template.Template
}

type promptData struct {
	UserPrompt   string
	PickedModels string
}

// NewPromptBuilder parses tmpl once. The template sees .UserPrompt and .PickedModels
// (the picked models serialized as JSON).
func NewPromptBuilder(tmpl string) (*PromptBuilder, error) {
	t, err := template.New("semantics-description").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	return &PromptBuilder{tmpl: t}, nil
}

// Run substitutes both inputs verbatim; nothing is escaped or truncated.
func (b *PromptBuilder) Run(picked []PickedModel, userPrompt string) (Prompt, error) {
	if picked == nil {
		picked = []PickedModel{}
	}
	var models strings.Builder
	enc := json.NewEncoder(&models)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(picked); err != nil {
		return Prompt{}, fmt.Errorf("serialize picked models: %w", err)
	}

	var sb strings.Builder
	if err := b.tmpl.Execute(&sb, promptData{
		UserPrompt:   userPrompt,
		PickedModels: strings.TrimSuffix(models.String(), "\n"),
	}); err != nil {
		return Prompt{}, fmt.Errorf("render prompt: %w", err)
	}
	return Prompt{Prompt: sb.String()}, nil
}
