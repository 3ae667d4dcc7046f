package profiler

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickLogsOncePerInterval(t *testing.T) {
	now := time.Unix(0, 0)
	p := NewProfiler(
		WithInterval(time.Second),
		WithClock(func() time.Time { return now }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	now = now.Add(500 * time.Millisecond)
	assert.False(t, p.Tick())

	now = now.Add(500 * time.Millisecond)
	assert.True(t, p.Tick())
	assert.InDelta(t, 2, testutil.ToFloat64(p.tickRate), 1e-9)
	assert.Equal(t, float64(2), testutil.ToFloat64(p.ticks))
	assert.Greater(t, testutil.ToFloat64(p.heapBytes), float64(0))
}

func TestDocumentMetrics(t *testing.T) {
	p := NewProfiler()
	p.ObserveTick("intro", 2*time.Millisecond)
	p.ObserveTick("outro", time.Millisecond)
	p.SetMissingTracks("intro", 3)
	p.AddBakedFrames(120)

	assert.Equal(t, 2, testutil.CollectAndCount(p.tickDuration))
	assert.Equal(t, float64(3), testutil.ToFloat64(p.missingTracks.WithLabelValues("intro")))
	assert.Equal(t, float64(120), testutil.ToFloat64(p.bakedFrames))

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `oxyanim_missing_tracks{document="intro"} 3`))
}
