package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	_ "github.com/danmudi/netlab/docs"
	"github.com/danmudi/netlab/internal/event"
	"github.com/danmudi/netlab/internal/plugin"
	pkgplugin "github.com/danmudi/netlab/pkg/plugin"
)

type stubPlugin struct {
	name   string
	health string
}

func (p *stubPlugin) Name() string                         { return p.name }
func (p *stubPlugin) Version() string                      { return "1.0.0" }
func (p *stubPlugin) Init(*viper.Viper, *zap.Logger) error { return nil }
func (p *stubPlugin) Start(context.Context) error          { return nil }
func (p *stubPlugin) Stop() error                          { return nil }

func (p *stubPlugin) Health(context.Context) pkgplugin.HealthStatus {
	return pkgplugin.HealthStatus{Status: p.health}
}

func (p *stubPlugin) Routes() []plugin.Route {
	return []plugin.Route{{Method: "GET", Path: "/status", Handler: func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"plugin": p.name})
	}}}
}

type pingHandler struct{}

func (pingHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func newTestServer(t *testing.T, health string, opts ...Option) *Server {
	t.Helper()
	reg := plugin.NewRegistry(zap.NewNop())
	reg.Register(&stubPlugin{name: "sim", health: health})
	reg.Register(&stubPlugin{name: "off", health: pkgplugin.HealthDown})

	v := viper.New()
	v.Set("plugins.sim.enabled", true)
	if err := reg.InitAll(v); err != nil {
		t.Fatalf("InitAll() error = %v", err)
	}
	return New(":0", reg, zap.NewNop(), opts...)
}

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(method, path, nil))
	return rr
}

func TestHealth(t *testing.T) {
	tests := []struct {
		plugin string
		want   string
	}{
		{pkgplugin.HealthOK, pkgplugin.HealthOK},
		{pkgplugin.HealthDown, pkgplugin.HealthDegraded},
	}
	for _, tc := range tests {
		s := newTestServer(t, tc.plugin)
		rr := serve(s, "GET", "/api/v1/health")
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rr.Code)
		}
		if rr.Header().Get("X-Netlab-Version") == "" {
			t.Error("missing X-Netlab-Version header")
		}
		var body HealthResponse
		if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Status != tc.want {
			t.Errorf("status = %q, want %q", body.Status, tc.want)
		}
		if _, ok := body.Plugins["off"]; ok {
			t.Error("disabled plugin reported in health")
		}
	}
}

func TestPluginsAndRoutes(t *testing.T) {
	s := newTestServer(t, pkgplugin.HealthOK, WithHandlers(pingHandler{}))

	rr := serve(s, "GET", "/api/v1/plugins")
	var list []pluginResponse
	if err := json.NewDecoder(rr.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 2 || !list[0].Enabled || list[1].Enabled {
		t.Errorf("plugins = %+v", list)
	}

	if rr := serve(s, "GET", "/api/v1/sim/status"); rr.Code != http.StatusOK {
		t.Errorf("plugin route status = %d", rr.Code)
	}
	if rr := serve(s, "GET", "/api/v1/off/status"); rr.Code != http.StatusNotFound {
		t.Errorf("disabled plugin route status = %d, want 404", rr.Code)
	}
	if rr := serve(s, "GET", "/api/v1/ping"); rr.Code != http.StatusNoContent {
		t.Errorf("registrar route status = %d", rr.Code)
	}

	rr = serve(s, "GET", "/api/v1/nowhere")
	if rr.Code != http.StatusNotFound || rr.Header().Get("Content-Type") != "application/problem+json" {
		t.Errorf("unknown route = %d %q", rr.Code, rr.Header().Get("Content-Type"))
	}
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("netlab_devices 2\n"))
	})
	s := newTestServer(t, pkgplugin.HealthOK, WithMetrics(metrics))

	rr := serve(s, "GET", "/metrics")
	if !strings.Contains(rr.Body.String(), "netlab_devices 2") {
		t.Errorf("metrics body = %q", rr.Body.String())
	}
}

func TestAPIDocs(t *testing.T) {
	s := newTestServer(t, pkgplugin.HealthOK, WithAPIDocs())

	rr := serve(s, "GET", "/swagger/doc.json")
	if rr.Code != http.StatusOK {
		t.Fatalf("doc.json status = %d, want 200", rr.Code)
	}
	var doc struct {
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&doc); err != nil {
		t.Fatalf("decode doc.json: %v", err)
	}
	if doc.BasePath != "/api/v1" {
		t.Errorf("basePath = %q, want /api/v1", doc.BasePath)
	}
	for _, path := range []string{"/topology", "/canvas/pending/confirm", "/projects/{id}/load", "/tutor/ask", "/health"} {
		if _, ok := doc.Paths[path]; !ok {
			t.Errorf("doc.json missing path %s", path)
		}
	}

	if rr := serve(s, "GET", "/swagger/index.html"); rr.Code != http.StatusOK {
		t.Errorf("index.html status = %d, want 200", rr.Code)
	}

	plain := newTestServer(t, pkgplugin.HealthOK)
	if rr := serve(plain, "GET", "/swagger/index.html"); rr.Code != http.StatusNotFound {
		t.Errorf("swagger without WithAPIDocs status = %d, want 404", rr.Code)
	}
}

func TestEventStream(t *testing.T) {
	bus := event.NewBus(zap.NewNop())
	hub := NewHub(bus, zap.NewNop())
	s := newTestServer(t, pkgplugin.HealthOK, WithEvents(hub))
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/events?topics=topology."
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.CloseNow()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	bus.Publish(ctx, pkgplugin.Event{Topic: "simulation.tick", Source: "simulation"})
	bus.Publish(ctx, pkgplugin.Event{Topic: "topology.device.added", Source: "topology", Payload: map[string]string{"id": "dev-1"}})

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	var got pkgplugin.Event
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Topic != "topology.device.added" {
		t.Errorf("topic = %q, want topology.device.added (filtered stream)", got.Topic)
	}

	hub.Close()
	if _, _, err := conn.Read(ctx); websocket.CloseStatus(err) != websocket.StatusGoingAway {
		t.Errorf("close status = %v, want going away", websocket.CloseStatus(err))
	}
}

func TestEventStreamCapacity(t *testing.T) {
	bus := event.NewBus(zap.NewNop())
	hub := NewHub(bus, zap.NewNop(), WithMaxClients(1))
	hub.register(&client{send: make(chan []byte, 1), dropped: make(chan struct{})})

	rr := httptest.NewRecorder()
	hub.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/events", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}
