package simulation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/danmudi/netlab/internal/testutil"
	"github.com/danmudi/netlab/internal/topology"
	"github.com/danmudi/netlab/pkg/models"
	pkgplugin "github.com/danmudi/netlab/pkg/plugin"
)

func newTestPlugin(t *testing.T, values map[string]any) (*Plugin, *topology.Store) {
	t.Helper()
	store := topology.NewStore(zap.NewNop())
	p := New(store, testutil.NewMockBus())
	require.NoError(t, p.Init(testutil.Viper(values), zap.NewNop()))
	require.NoError(t, p.Start(context.Background()))
	t.Cleanup(func() { _ = p.Stop() })
	return p, store
}

func serve(p *Plugin, method, path string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	for _, r := range p.Routes() {
		mux.HandleFunc(r.Method+" "+r.Path, r.Handler)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
	return rr
}

func TestPluginConfig(t *testing.T) {
	p, _ := newTestPlugin(t, map[string]any{"interval": "250ms", "max_step": 2.5})
	assert.Equal(t, "simulation", p.Name())
	assert.Equal(t, 250*time.Millisecond, p.Driver().Interval())
	assert.Equal(t, 2.5, p.Driver().MaxStep())
	assert.False(t, p.Driver().Running(), "not started without autostart")

	p, _ = newTestPlugin(t, nil)
	assert.Equal(t, DefaultInterval, p.Driver().Interval())
	assert.Equal(t, DefaultMaxStep, p.Driver().MaxStep())
}

func TestPluginAutostart(t *testing.T) {
	p, _ := newTestPlugin(t, map[string]any{"autostart": true, "interval": "1h"})
	assert.True(t, p.Driver().Running())
	assert.Equal(t, "running", p.Health(context.Background()).Details["simulation"])
	require.NoError(t, p.Stop())
	assert.False(t, p.Driver().Running())
}

func TestPluginRoutes(t *testing.T) {
	p, store := newTestPlugin(t, map[string]any{"interval": "1h"})
	store.AddDevice(models.DeviceTypeSensorMoisture, nil)

	rr := serve(p, "POST", "/step")
	require.Equal(t, http.StatusOK, rr.Code)
	var readings []topology.SensorReading
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&readings))
	assert.Len(t, readings, 1)

	rr = serve(p, "POST", "/start")
	require.Equal(t, http.StatusOK, rr.Code)
	var status StatusResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&status))
	assert.True(t, status.Running)
	assert.Equal(t, int64(3600000), status.IntervalMS)
	assert.Equal(t, uint64(1), status.Ticks)

	rr = serve(p, "POST", "/stop")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&status))
	assert.False(t, status.Running)

	rr = serve(p, "GET", "/status")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, pkgplugin.HealthOK, p.Health(context.Background()).Status)
}
