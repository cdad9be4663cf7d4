package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/tapevm"
	"github.com/aretw0/tapevm/internal/logging"
	"github.com/aretw0/tapevm/pkg/adapters/memory"
	"github.com/aretw0/tapevm/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	ctx := context.Background()
	m := observability.NewMetrics(nil)
	eng := tapevm.New(
		tapevm.WithLifecycleHooks(m.Hooks()),
		tapevm.WithCache(memory.NewCache(), time.Minute),
	)

	// 1. Suspend, then finish
	resp, err := eng.Execute(ctx, tapevm.Request{Program: ",."})
	require.NoError(t, err)
	in := "A"
	_, err = eng.Execute(ctx, tapevm.Request{PriorState: resp.NextState, Input: &in})
	require.NoError(t, err)

	// 2. Rejection
	bad := "AA"
	_, err = eng.Execute(ctx, tapevm.Request{PriorState: resp.NextState, Input: &bad})
	require.NoError(t, err)

	// 3. Fault
	_, err = eng.Execute(ctx, tapevm.Request{Program: "<"})
	require.Error(t, err)

	// 4. Cache hit
	_, err = eng.Execute(ctx, tapevm.Request{Program: ",."})
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Invocations.WithLabelValues("suspended")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Invocations.WithLabelValues("finished")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Invocations.WithLabelValues("input_rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Invocations.WithLabelValues("fault")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Faults.WithLabelValues("pointer_out_of_range")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits))
}

func TestMetrics_Handler(t *testing.T) {
	m := observability.NewMetrics(nil)
	m.Invocations.WithLabelValues("finished").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `tapevm_invocations_total{outcome="finished"} 1`)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(slog.LevelDebug, logging.Options{Writer: &buf})
	eng := tapevm.New(tapevm.WithLifecycleHooks(observability.LogHooks(logger)))

	_, err := eng.Execute(context.Background(), tapevm.Request{Program: "+>"})
	require.NoError(t, err)
	_, err = eng.Execute(context.Background(), tapevm.Request{Program: "[+"})
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "msg=start")
	assert.Contains(t, out, "msg=finish")
	assert.Contains(t, out, "msg=fault")
	assert.Contains(t, out, "kind=unmatched_bracket")
}
