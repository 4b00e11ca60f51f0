package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semantics-workers/internal/common/config"
	"semantics-workers/internal/common/logger"
	"semantics-workers/internal/common/metrics"
)

func createTestClient(t *testing.T, maxRetries int) *Client {
	return &Client{
		config: &ClientConfig{
			ConnectionTimeout: time.Second,
			RetryConfig: &RetryConfig{
				MaxRetries: maxRetries,
				BaseDelay:  time.Millisecond,
				MaxDelay:   5 * time.Millisecond,
			},
		},
		logger: logger.NewTestLogger(t),
	}
}

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		err  string
		want bool
	}{
		{"rpc error: code = Unavailable desc = connection refused", true},
		{"context deadline exceeded", true},
		{"write: broken pipe", true},
		{"rpc error: code = NotFound desc = job not found", false},
		{"permission denied", false},
	}

	for _, tt := range tests {
		t.Run(tt.err, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableZeebeError(errors.New(tt.err)))
		})
	}
}

func TestExecuteWithRetry(t *testing.T) {
	t.Run("succeeds after transient failures", func(t *testing.T) {
		c := createTestClient(t, 3)
		calls := 0
		result, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("unavailable")
			}
			return "ok", nil
		}, "topology")

		require.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry permanent errors", func(t *testing.T) {
		c := createTestClient(t, 3)
		calls := 0
		_, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
			calls++
			return nil, errors.New("invalid argument")
		}, "topology")

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		c := createTestClient(t, 2)
		calls := 0
		_, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
			calls++
			return nil, errors.New("connection reset")
		}, "topology")

		require.Error(t, err)
		assert.Equal(t, 3, calls)
		assert.Contains(t, err.Error(), "topology")
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		c := createTestClient(t, 5)
		c.config.RetryConfig.BaseDelay = time.Hour
		c.config.RetryConfig.MaxDelay = time.Hour

		ctx, cancel := context.WithCancel(context.Background())
		_, err := c.ExecuteWithRetry(ctx, func(context.Context) (interface{}, error) {
			cancel()
			return nil, errors.New("unavailable")
		}, "topology")

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestClientConfigFrom(t *testing.T) {
	cc := ClientConfigFrom(config.CamundaConfig{
		BrokerAddress:  "zeebe:26500",
		Plaintext:      true,
		Timeout:        2000,
		RequestTimeout: 0,
	})

	assert.Equal(t, "zeebe:26500", cc.GatewayAddress)
	assert.True(t, cc.UsePlaintextConnection)
	assert.Equal(t, 2*time.Second, cc.ConnectionTimeout)
	assert.Equal(t, 30*time.Second, cc.RequestTimeout)
	assert.Same(t, DefaultRetryConfig, cc.RetryConfig)
}

func TestInstrumentHandler_RecoversPanics(t *testing.T) {
	const taskType = "instrument-test"
	job := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 7, Type: taskType}}

	before := testutil.ToFloat64(metrics.WorkerJobsFailed.WithLabelValues(taskType, "PANIC"))

	h := InstrumentHandler(taskType, func(worker.JobClient, entities.Job) {
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues(taskType)))
		panic("boom")
	}, logger.NewTestLogger(t))

	assert.NotPanics(t, func() { h(nil, job) })
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.WorkerJobsFailed.WithLabelValues(taskType, "PANIC")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues(taskType)))
}
