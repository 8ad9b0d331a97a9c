package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "warbler-test"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
	assert.NotNil(t, Tracer)
}

func TestStartSpan_EndWithError(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "Test", "Op")
	assert.NotNil(t, ctx)
	EndSpan(span, errors.New("boom"))
}

func TestPolicyDenialsCounter(t *testing.T) {
	before := testutil.ToFloat64(PolicyDenials.WithLabelValues("test_action"))
	PolicyDenials.WithLabelValues("test_action").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(PolicyDenials.WithLabelValues("test_action")))
}

func TestTrackQuery(t *testing.T) {
	done := TrackQuery("select", "users")
	done()
	assert.Equal(t, 1, testutil.CollectAndCount(DatabaseQueryLatency))
}
