package semantics

// SystemPrompt is bound to the generator at construction.
const SystemPrompt = `
You are given data models in JSON. Each model has a name, a list of columns and a
properties object; each column has a name, a type, a notNull flag and a properties
object.

Add a "description" field to the properties of every model and of every column. Base
each description on the user's prompt, which explains what the data is used for.

1. For each model, write a short description of its overall purpose and put it in the
   model's properties.
2. For each column, describe its role and put it in that column's properties as
   "description".
3. Keep every name unchanged and return well-formed JSON only, with no surrounding text.

Output format:

{
  "models": [
    {
      "name": "model",
      "columns": [
        {"name": "column_1", "properties": {"description": "<description for column_1>"}},
        {"name": "column_2", "properties": {"description": "<description for column_2>"}}
      ],
      "properties": {"description": "<description for model>"}
    }
  ]
}

Descriptions must be concise, informative and grounded in the user's prompt.
`

// UserPromptTemplate is rendered with the user's prompt and the picked models as JSON.
const UserPromptTemplate = `

### Input
User's prompt: {{ .UserPrompt }}
Picked models: {{ .PickedModels }}

Please provide a brief description for the model and each column based on the user's prompt.
`
