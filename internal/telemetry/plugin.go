package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/danmudi/netlab/internal/plugin"
	pkgplugin "github.com/danmudi/netlab/pkg/plugin"
)

var (
	_ plugin.Plugin           = (*Plugin)(nil)
	_ pkgplugin.HealthChecker = (*Plugin)(nil)
)

// Plugin is the "telemetry" module.
type Plugin struct {
	bus    pkgplugin.EventBus
	pub    Publisher
	logger *zap.Logger

	mqtt      MQTTConfig
	prefix    string
	queueSize int
	bridge    *Bridge
	ownsPub   bool
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithPublisher uses pub instead of dialing the configured broker.
func WithPublisher(pub Publisher) Option {
	return func(p *Plugin) { p.pub = pub }
}

// New creates the telemetry plugin.
func New(bus pkgplugin.EventBus, opts ...Option) *Plugin {
	p := &Plugin{bus: bus}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Plugin) Name() string    { return "telemetry" }
func (p *Plugin) Version() string { return "0.1.0" }

func (p *Plugin) Init(config *viper.Viper, logger *zap.Logger) error {
	p.logger = logger
	p.prefix = config.GetString("topic_prefix")
	if p.prefix == "" {
		p.prefix = "netlab"
	}
	qos := config.GetInt("qos")
	if qos < 0 || qos > 2 {
		return fmt.Errorf("telemetry qos must be 0, 1 or 2, got %d", qos)
	}
	p.mqtt = MQTTConfig{
		Broker:         config.GetString("broker"),
		ClientID:       config.GetString("client_id"),
		QoS:            byte(qos),
		ConnectTimeout: config.GetDuration("connect_timeout"),
	}
	if p.pub == nil && p.mqtt.Broker == "" {
		return fmt.Errorf("telemetry broker is required")
	}
	p.queueSize = config.GetInt("queue_size")

	p.logger.Info("telemetry module initialized",
		zap.String("broker", p.mqtt.Broker),
		zap.String("topic_prefix", p.prefix),
	)
	return nil
}

func (p *Plugin) Start(ctx context.Context) error {
	if p.pub == nil {
		pub, err := DialMQTT(ctx, p.mqtt, p.logger)
		if err != nil {
			return err
		}
		p.pub, p.ownsPub = pub, true
	}
	p.bridge = NewBridge(p.pub, p.prefix, p.queueSize, p.logger)
	p.bridge.Start(ctx, p.bus)
	return nil
}

func (p *Plugin) Stop() error {
	if p.bridge != nil {
		p.bridge.Stop()
	}
	if p.ownsPub {
		p.pub.Close()
		p.pub, p.ownsPub = nil, false
	}
	return nil
}

// Health reports degraded once messages are dropped or fail.
func (p *Plugin) Health(_ context.Context) pkgplugin.HealthStatus {
	if p.bridge == nil {
		return pkgplugin.HealthStatus{Status: pkgplugin.HealthDown, Message: "not started"}
	}
	published, dropped, failed := p.bridge.Stats()
	status := pkgplugin.HealthOK
	if dropped > 0 || failed > 0 {
		status = pkgplugin.HealthDegraded
	}
	return pkgplugin.HealthStatus{
		Status: status,
		Details: map[string]string{
			"published": strconv.FormatUint(published, 10),
			"dropped":   strconv.FormatUint(dropped, 10),
			"failed":    strconv.FormatUint(failed, 10),
		},
	}
}

func (p *Plugin) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "/status", Handler: p.handleStatus},
	}
}

// StatusResponse describes the bridge.
type StatusResponse struct {
	Broker      string `json:"broker"`
	TopicPrefix string `json:"topic_prefix"`
	Published   uint64 `json:"published"`
	Dropped     uint64 `json:"dropped"`
	Failed      uint64 `json:"failed"`
}

// handleStatus reports the MQTT bridge counters.
//
//	@Summary		Telemetry status
//	@Tags			telemetry
//	@Produce		json
//	@Success		200 {object} StatusResponse
//	@Router			/telemetry/status [get]
func (p *Plugin) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := StatusResponse{Broker: p.mqtt.Broker, TopicPrefix: p.prefix}
	if p.bridge != nil {
		resp.Published, resp.Dropped, resp.Failed = p.bridge.Stats()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
