package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/xrig/internal/core/constraints"
	"github.com/zeusync/xrig/internal/core/events/bus"
)

func TestRecorder(t *testing.T) {
	m := New()
	m.ObserveResolve(constraints.KindCollision, "hand", time.Millisecond, nil)
	m.ObserveResolve(constraints.KindCollision, "hand", time.Millisecond, errors.New("x"))
	m.ObserveTick(2 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.resolves.WithLabelValues("collision")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("hand")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.tickDuration))
}

func TestBusObserverCountsCollisions(t *testing.T) {
	m := New()
	b := bus.New()
	b.AddObserver(m)

	require.NoError(t, b.Publish(bus.NewEvent(constraints.EventCollision, "hand-collision", nil)))
	require.NoError(t, b.Publish(bus.NewEvent(constraints.EventCollision, "hand-collision", nil)))
	require.NoError(t, b.Publish(bus.NewEvent("sim.frame", "engine", nil)))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.collisions.WithLabelValues("hand-collision")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.busEvents.WithLabelValues("sim.frame")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveResolve(constraints.KindEaseFollow, "follow", 0, nil)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `xrig_constraint_resolves_total{kind="ease_follow"} 1`)
}
