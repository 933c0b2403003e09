package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.IntentClassified("gate", false)
	m.IntentClassified("llm", true)
	m.IntentClassified("llm", true)
	m.JobSearchCompleted("ok")
	m.TurnCompleted("retried")
	m.ChunksIndexed(3)
	m.ObserveChat(300 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.intents.WithLabelValues("llm", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobSearches.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.turns.WithLabelValues("retried")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ingested))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.TrackSessions(func() int { return 7 })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "job_engine_sessions_active 7")
}
