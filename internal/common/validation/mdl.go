package validation

// MDLSchema is the part of the MDL manifest the description pipeline depends on:
// named models, each with named columns. Other manifest fields pass through.
const MDLSchema = `{
  "type": "object",
  "required": ["models"],
  "properties": {
    "catalog": {"type": "string"},
    "schema": {"type": "string"},
    "models": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "columns": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["name"],
              "properties": {
                "name": {"type": "string", "minLength": 1},
                "type": {"type": "string"},
                "notNull": {"type": "boolean"},
                "properties": {"type": ["object", "null"]}
              }
            }
          },
          "properties": {"type": ["object", "null"]}
        }
      }
    }
  }
}`

var mdlSchema = mustSchema(MDLSchema)

// ValidateMDL checks a decoded manifest (map or raw JSON-compatible value).
func ValidateMDL(doc interface{}) error {
	return ValidateDocument(mdlSchema, doc)
}

func mustSchema(s string) map[string]interface{} {
	schema, err := GetSchemaFromJSON(s)
	if err != nil {
		panic(err)
	}
	return schema
}
