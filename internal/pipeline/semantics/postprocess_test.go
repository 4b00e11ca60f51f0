package semantics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"semantics-workers/internal/common/logger"
	"semantics-workers/internal/llm"
)

func observedLogger() (logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logger.NewZapAdapter(zap.New(core)), logs
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a\nb", "a b"},
		{"  {\n  \"models\":\t[ ]\n}\n", `{ "models": [ ] }`},
		{"already clean", "already clean"},
		{"", ""},
		{"\r\n\t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizeText(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeText(got), "must be idempotent")
		})
	}
}

func TestPostProcess_IndexesModelsByName(t *testing.T) {
	log, _ := observedLogger()
	reply := &llm.Reply{Replies: []string{`{"models":[{"name":"orders","properties":{"description":"d1"}}]}`}}

	got := PostProcess(reply, log)

	assert.Equal(t, Result{
		"orders": {
			"name":       "orders",
			"properties": map[string]interface{}{"description": "d1"},
		},
	}, got)
	assert.False(t, got.Degraded())

	desc, ok := got.Description("orders")
	assert.True(t, ok)
	assert.Equal(t, "d1", desc)
}

func TestPostProcess_KeepsColumnsNested(t *testing.T) {
	log, _ := observedLogger()
	reply := &llm.Reply{Replies: []string{`{
  "models": [
    {
      "name": "customers",
      "columns": [
        {"name": "custkey", "properties": {"description": "Customer   key"}}
      ],
      "properties": {"description": "People who buy"}
    }
  ]
}`}}

	got := PostProcess(reply, log)

	assert.Len(t, got, 1)
	columns := got["customers"]["columns"].([]interface{})
	col := columns[0].(map[string]interface{})
	// whitespace collapsing applies inside string values too
	assert.Equal(t, "Customer key", col["properties"].(map[string]interface{})["description"])
}

func TestPostProcess_FirstReplyOnly(t *testing.T) {
	log, _ := observedLogger()
	reply := &llm.Reply{Replies: []string{
		`{"models":[{"name":"orders"}]}`,
		`{"models":[{"name":"customers"}]}`,
	}}

	got := PostProcess(reply, log)
	assert.Contains(t, got, "orders")
	assert.NotContains(t, got, "customers")
}

func TestPostProcess_Degraded(t *testing.T) {
	tests := []struct {
		name  string
		reply *llm.Reply
	}{
		{name: "truncated json", reply: &llm.Reply{Replies: []string{`{"models":[{"name":"ord`}}},
		{name: "plain text", reply: &llm.Reply{Replies: []string{"Sure! Here are your descriptions."}}},
		{name: "markdown fenced", reply: &llm.Reply{Replies: []string{"```json\n{\"models\":[]}\n```"}}},
		{name: "top-level array", reply: &llm.Reply{Replies: []string{`[{"name":"orders"}]`}}},
		{name: "models not a list", reply: &llm.Reply{Replies: []string{`{"models":"orders"}`}}},
		{name: "no models key", reply: &llm.Reply{Replies: []string{`{"tables":[]}`}}},
		{name: "no candidates", reply: &llm.Reply{}},
		{name: "nil reply", reply: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, logs := observedLogger()

			var got Result
			var parsed bool
			assert.NotPanics(t, func() { got, parsed = ParseReply(tt.reply, log) })
			assert.NotNil(t, got)
			assert.Empty(t, got)
			assert.True(t, got.Degraded())
			assert.False(t, parsed)
			assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
		})
	}
}

func TestParseReply_EmptyModelsListIsParsed(t *testing.T) {
	log, logs := observedLogger()

	got, parsed := ParseReply(&llm.Reply{Replies: []string{`{"models":[]}`}}, log)
	assert.True(t, parsed)
	assert.Empty(t, got)
	assert.Equal(t, 0, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestPostProcess_SkipsBadEntries(t *testing.T) {
	log, logs := observedLogger()
	reply := &llm.Reply{Replies: []string{`{"models":[{"name":"orders"},{"properties":{}},"junk",{"name":42}]}`}}

	got := PostProcess(reply, log)
	assert.Equal(t, []string{"orders"}, keys(got))
	assert.Equal(t, 3, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestPostProcess_DuplicateNamesLastWins(t *testing.T) {
	log, _ := observedLogger()
	reply := &llm.Reply{Replies: []string{`{"models":[{"name":"orders","v":1},{"name":"orders","v":2}]}`}}

	got := PostProcess(reply, log)
	assert.EqualValues(t, 2, got["orders"]["v"])
}

func TestResult_Description_Missing(t *testing.T) {
	r := Result{"orders": {"name": "orders"}}
	_, ok := r.Description("orders")
	assert.False(t, ok)
	_, ok = r.Description("customers")
	assert.False(t, ok)
}

func keys(r Result) []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	return out
}
