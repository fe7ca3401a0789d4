package telemetry

import (
	"context"
	"time"

	"github.com/goto/salt/log"
	"github.com/newrelic/go-agent/v3/newrelic"
)

const gracePeriod = 5 * time.Second

type Config struct {
	AppVersion string `yaml:"-" mapstructure:"-"`

	AppName       string              `yaml:"app_name" mapstructure:"app_name" default:"lineage"`
	NewRelic      NewRelicConfig      `yaml:"newrelic" mapstructure:"newrelic"`
	OpenTelemetry OpenTelemetryConfig `yaml:"open_telemetry" mapstructure:"open_telemetry"`
}

// Telemetry holds the exporters started by Init. The zero value is usable
// and does nothing.
type Telemetry struct {
	NewRelic *newrelic.Application

	shutdownOTLP func()
}

// Init starts the OpenTelemetry providers and the New Relic agent that are
// enabled in cfg. Close must be called to flush them.
func Init(ctx context.Context, cfg Config, logger log.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = log.NewNoop()
	}

	shutdown, err := initOTLP(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	nrApp, err := initNewRelicMonitor(cfg.AppName, cfg.NewRelic, logger)
	if err != nil {
		shutdown()
		return nil, err
	}

	return &Telemetry{NewRelic: nrApp, shutdownOTLP: shutdown}, nil
}

func (t *Telemetry) Close() {
	if t == nil {
		return
	}
	if t.NewRelic != nil {
		t.NewRelic.Shutdown(gracePeriod)
	}
	if t.shutdownOTLP != nil {
		t.shutdownOTLP()
	}
}
