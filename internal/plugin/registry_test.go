package plugin

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	pkgplugin "github.com/danmudi/netlab/pkg/plugin"
)

type testPlugin struct {
	name     string
	initErr  error
	startErr error
	log      *[]string
	config   *viper.Viper
	routes   []Route
}

func newTestPlugin(name string, log *[]string) *testPlugin {
	return &testPlugin{name: name, log: log}
}

func (p *testPlugin) Name() string    { return p.name }
func (p *testPlugin) Version() string { return "0.0.1" }

func (p *testPlugin) Init(config *viper.Viper, _ *zap.Logger) error {
	p.config = config
	*p.log = append(*p.log, "init:"+p.name)
	return p.initErr
}

func (p *testPlugin) Start(context.Context) error {
	*p.log = append(*p.log, "start:"+p.name)
	return p.startErr
}

func (p *testPlugin) Stop() error {
	*p.log = append(*p.log, "stop:"+p.name)
	return nil
}

func (p *testPlugin) Routes() []Route { return p.routes }

type healthyPlugin struct {
	testPlugin
}

func (p *healthyPlugin) Health(context.Context) pkgplugin.HealthStatus {
	return pkgplugin.HealthStatus{Status: pkgplugin.HealthDegraded, Message: "broker offline"}
}

func enabled(names ...string) *viper.Viper {
	v := viper.New()
	for _, n := range names {
		v.Set("plugins."+n+".enabled", true)
	}
	return v
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRegisterDuplicate(t *testing.T) {
	var log []string
	reg := NewRegistry(zap.NewNop())
	if err := reg.Register(newTestPlugin("a", &log)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := reg.Register(newTestPlugin("a", &log)); err == nil {
		t.Fatal("Register() expected duplicate error, got nil")
	}
	if got := len(reg.All()); got != 1 {
		t.Errorf("All() returned %d plugins, want 1", got)
	}
}

func TestLifecycleSkipsDisabled(t *testing.T) {
	var log []string
	reg := NewRegistry(zap.NewNop())
	reg.Register(newTestPlugin("a", &log))
	reg.Register(newTestPlugin("off", &log))
	reg.Register(newTestPlugin("b", &log))

	v := enabled("a", "b")
	v.Set("plugins.a.interval", "2s")
	if err := reg.InitAll(v); err != nil {
		t.Fatalf("InitAll() error = %v", err)
	}
	if err := reg.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll() error = %v", err)
	}
	reg.StopAll()

	want := []string{"init:a", "init:b", "start:a", "start:b", "stop:b", "stop:a"}
	if !equal(log, want) {
		t.Errorf("lifecycle = %v, want %v", log, want)
	}
	if reg.Enabled("off") {
		t.Error("Enabled('off') = true, want false")
	}

	p, _ := reg.Get("a")
	if got := p.(*testPlugin).config.GetString("interval"); got != "2s" {
		t.Errorf("plugin config interval = %q, want 2s", got)
	}
}

func TestStopAllIsIdempotent(t *testing.T) {
	var log []string
	reg := NewRegistry(zap.NewNop())
	reg.Register(newTestPlugin("a", &log))
	reg.InitAll(enabled("a"))
	reg.StartAll(context.Background())

	reg.StopAll()
	reg.StopAll()
	if n := len(log); n != 3 {
		t.Errorf("lifecycle = %v, want a single stop", log)
	}
}

func TestInitAllFailure(t *testing.T) {
	var log []string
	reg := NewRegistry(zap.NewNop())
	p := newTestPlugin("a", &log)
	p.initErr = errors.New("init failed")
	reg.Register(p)

	if err := reg.InitAll(enabled("a")); err == nil {
		t.Fatal("InitAll() expected error, got nil")
	}
	if reg.Enabled("a") {
		t.Error("failed plugin should not be enabled")
	}
}

func TestStartAllRollsBack(t *testing.T) {
	var log []string
	reg := NewRegistry(zap.NewNop())
	reg.Register(newTestPlugin("a", &log))
	bad := newTestPlugin("b", &log)
	bad.startErr = errors.New("port in use")
	reg.Register(bad)
	reg.InitAll(enabled("a", "b"))

	if err := reg.StartAll(context.Background()); err == nil {
		t.Fatal("StartAll() expected error, got nil")
	}
	want := []string{"init:a", "init:b", "start:a", "start:b", "stop:a"}
	if !equal(log, want) {
		t.Errorf("lifecycle = %v, want %v", log, want)
	}
}

func TestAllRoutesOnlyEnabled(t *testing.T) {
	var log []string
	reg := NewRegistry(zap.NewNop())
	noop := func(http.ResponseWriter, *http.Request) {}

	web := newTestPlugin("web", &log)
	web.routes = []Route{{Method: "GET", Path: "/status", Handler: noop}}
	off := newTestPlugin("off", &log)
	off.routes = []Route{{Method: "GET", Path: "/x", Handler: noop}}
	reg.Register(web)
	reg.Register(off)
	reg.Register(newTestPlugin("quiet", &log))
	reg.InitAll(enabled("web", "quiet"))

	routes := reg.AllRoutes()
	if len(routes) != 1 {
		t.Fatalf("AllRoutes() returned %d plugin route sets, want 1", len(routes))
	}
	if _, ok := routes["web"]; !ok {
		t.Error("AllRoutes() missing 'web' routes")
	}
}

func TestHealthAll(t *testing.T) {
	var log []string
	reg := NewRegistry(zap.NewNop())
	reg.Register(newTestPlugin("plain", &log))
	reg.Register(&healthyPlugin{testPlugin: *newTestPlugin("mqtt", &log)})
	reg.Register(newTestPlugin("off", &log))
	reg.InitAll(enabled("plain", "mqtt"))

	health := reg.HealthAll(context.Background())
	if len(health) != 2 {
		t.Fatalf("HealthAll() returned %d entries, want 2", len(health))
	}
	if health["plain"].Status != pkgplugin.HealthOK {
		t.Errorf("plain status = %q, want ok", health["plain"].Status)
	}
	if health["mqtt"].Status != pkgplugin.HealthDegraded {
		t.Errorf("mqtt status = %q, want degraded", health["mqtt"].Status)
	}
}
