package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSemanticsRuns_CountsByOutcome(t *testing.T) {
	before := testutil.ToFloat64(SemanticsRuns.WithLabelValues(OutcomeDegraded))

	SemanticsRuns.WithLabelValues(OutcomeDegraded).Inc()
	SemanticsRuns.WithLabelValues(OutcomeDegraded).Inc()

	assert.Equal(t, before+2, testutil.ToFloat64(SemanticsRuns.WithLabelValues(OutcomeDegraded)))
}

func TestWorkerJobsFailed_Labels(t *testing.T) {
	c := WorkerJobsFailed.WithLabelValues("semantics-description", "LLM_TIMEOUT")
	before := testutil.ToFloat64(c)
	c.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}
