package semantics

import (
	"encoding/json"
	"strings"

	"semantics-workers/internal/common/logger"
	"semantics-workers/internal/llm"
)

// NormalizeText turns newlines into spaces and collapses every whitespace run to a
// single space. It is idempotent.
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.Join(strings.Fields(text), " ")
}

// PostProcess parses the first candidate of reply and indexes its "models" list by
// name. Any candidate past the first is ignored. A reply that is missing, not JSON, or
// has no "models" list is logged and yields an empty Result; it never fails the run.
func PostProcess(reply *llm.Reply, log logger.Logger) Result {
	result, _ := ParseReply(reply, log)
	return result
}

// ParseReply is PostProcess that also reports whether the reply could be parsed. A
// well-formed reply with an empty "models" list is parsed and yields an empty Result.
func ParseReply(reply *llm.Reply, log logger.Logger) (Result, bool) {
	if reply == nil || len(reply.Replies) == 0 {
		log.Error("Error decoding JSON: generation reply has no candidates", nil)
		return Result{}, false
	}

	normalized := NormalizeText(reply.Replies[0])

	var doc interface{}
	if err := json.Unmarshal([]byte(normalized), &doc); err != nil {
		log.Error("Error decoding JSON", map[string]interface{}{
			"error":      err.Error(),
			"replyBytes": len(normalized),
		})
		return Result{}, false
	}

	obj, ok := doc.(map[string]interface{})
	if !ok {
		log.Error("Error decoding JSON: reply is not an object", nil)
		return Result{}, false
	}
	models, ok := obj["models"].([]interface{})
	if !ok {
		log.Error("Error decoding JSON: reply has no models list", nil)
		return Result{}, false
	}

	result := make(Result, len(models))
	for i, entry := range models {
		model, ok := entry.(map[string]interface{})
		if !ok {
			log.Warn("skipping non-object models entry", map[string]interface{}{"index": i})
			continue
		}
		name, ok := model["name"].(string)
		if !ok {
			log.Warn("skipping models entry without a name", map[string]interface{}{"index": i})
			continue
		}
		result[name] = model
	}
	return result, true
}
