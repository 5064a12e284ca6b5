package projects

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/danmudi/netlab/internal/testutil"
	"github.com/danmudi/netlab/internal/topology"
	"github.com/danmudi/netlab/pkg/models"
	pkgplugin "github.com/danmudi/netlab/pkg/plugin"
)

type fakeLoader struct {
	loaded []models.Snapshot
}

func (f *fakeLoader) Import(snap models.Snapshot) error {
	f.loaded = append(f.loaded, snap)
	return nil
}

func newTestPlugin(t *testing.T) (*http.ServeMux, *topology.Store, *fakeLoader) {
	t.Helper()
	topo := topology.NewStore(zap.NewNop())
	loader := &fakeLoader{}
	p := New(testutil.NewStore(t), topo, loader)
	require.NoError(t, p.Init(testutil.Viper(map[string]any{"autosave_schedule": "@every 1h"}), zap.NewNop()))

	mux := http.NewServeMux()
	for _, r := range p.Routes() {
		mux.HandleFunc(r.Method+" /api/v1/projects"+r.Path, r.Handler)
	}
	return mux, topo, loader
}

func call(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(method, path, &buf))
	return rr
}

func TestProjectsSaveListLoad(t *testing.T) {
	mux, topo, loader := newTestPlugin(t)
	topo.AddDevice(models.DeviceTypePC, nil)
	topo.AddSwitch(8, nil)

	rr := call(t, mux, "POST", "/api/v1/projects", CreateRequest{Name: "  Office  "})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created Project
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.Equal(t, "Office", created.Name)
	assert.Equal(t, 2, created.DeviceCount)

	rr = call(t, mux, "POST", "/api/v1/projects", CreateRequest{Name: "office"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	rr = call(t, mux, "POST", "/api/v1/projects", CreateRequest{Name: " "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = call(t, mux, "GET", "/api/v1/projects?q=off", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list ListResult[Project]
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	assert.Equal(t, 1, list.Total)

	rr = call(t, mux, "POST", "/api/v1/projects/"+created.ID+"/load", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var loaded LoadResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&loaded))
	assert.Equal(t, LoadResponse{ID: created.ID, Devices: 2, Links: 0}, loaded)
	require.Len(t, loader.loaded, 1)
	assert.Len(t, loader.loaded[0].Devices, 2)

	rr = call(t, mux, "POST", "/api/v1/projects/nope/load", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestProjectsCreateFromDocument(t *testing.T) {
	mux, _, _ := newTestPlugin(t)

	doc := json.RawMessage(`{"devices": [
		{"id": "a", "type": "ESP32", "name": "Board", "x": 0, "y": 0},
		{"id": "b", "type": "ACTUATOR_LED", "name": "LED", "x": 100, "y": 0}
	], "links": [
		{"id": "l1", "sourceId": "a", "targetId": "b", "type": "GPIO"},
		{"id": "l2", "sourceId": "a", "targetId": "a", "type": "GPIO"}
	]}`)
	rr := call(t, mux, "POST", "/api/v1/projects", CreateRequest{Name: "Blink", Snapshot: doc})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var p Project
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&p))
	assert.Equal(t, models.CategoryIoT, p.Mode)
	assert.Equal(t, 1, p.LinkCount, "self link dropped")

	rr = call(t, mux, "POST", "/api/v1/projects", CreateRequest{Name: "Bad", Snapshot: json.RawMessage(`{"devices": "oops"}`)})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProjectsUpdateCaptureDelete(t *testing.T) {
	mux, topo, _ := newTestPlugin(t)

	rr := call(t, mux, "POST", "/api/v1/projects", CreateRequest{Name: "Empty"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var p Project
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&p))
	assert.Equal(t, 0, p.DeviceCount)

	topo.AddDevice(models.DeviceTypeRouter, nil)
	name := "Routed"
	rr = call(t, mux, "PUT", "/api/v1/projects/"+p.ID, UpdateRequest{Name: &name, Capture: true})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&p))
	assert.Equal(t, "Routed", p.Name)
	assert.Equal(t, 1, p.DeviceCount)

	rr = call(t, mux, "PUT", "/api/v1/projects/missing", UpdateRequest{Name: &name})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = call(t, mux, "DELETE", "/api/v1/projects/"+p.ID, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = call(t, mux, "GET", "/api/v1/projects/"+p.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestProjectsAutosaveRoute(t *testing.T) {
	mux, topo, _ := newTestPlugin(t)

	rr := call(t, mux, "POST", "/api/v1/projects/autosave", nil)
	assert.JSONEq(t, `{"saved": false}`, rr.Body.String())

	topo.AddDevice(models.DeviceTypeLaptop, nil)
	rr = call(t, mux, "POST", "/api/v1/projects/autosave", nil)
	assert.JSONEq(t, `{"saved": true}`, rr.Body.String())

	rr = call(t, mux, "GET", "/api/v1/projects/"+AutosaveID, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestProjectsHealthReportsSchema(t *testing.T) {
	p := New(testutil.NewStore(t), topology.NewStore(zap.NewNop()), &fakeLoader{})
	require.NoError(t, p.Init(testutil.Viper(nil), zap.NewNop()))

	h := p.Health(context.Background())
	assert.Equal(t, pkgplugin.HealthOK, h.Status)
	assert.NotEmpty(t, h.Details["schema_version"])
	assert.NotEqual(t, "0", h.Details["schema_version"])
}
