package telemetry_test

import (
	"context"
	"testing"

	"github.com/goto/lineage/pkg/telemetry"
	"github.com/goto/salt/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	ctx := context.Background()

	t.Run("AllDisabled", func(t *testing.T) {
		tel, err := telemetry.Init(ctx, telemetry.Config{AppName: "lineage"}, log.NewNoop())
		require.NoError(t, err)
		assert.Nil(t, tel.NewRelic)
		tel.Close()
	})

	t.Run("InvalidSampleProbability", func(t *testing.T) {
		cfg := telemetry.Config{AppName: "lineage"}
		cfg.OpenTelemetry.Enabled = true
		cfg.OpenTelemetry.TraceSampleProbability = 1.5

		tel, err := telemetry.Init(ctx, cfg, nil)
		assert.ErrorContains(t, err, "trace sample probability")
		assert.Nil(t, tel)
	})

	t.Run("NewRelicWithoutAppName", func(t *testing.T) {
		cfg := telemetry.Config{}
		cfg.NewRelic.Enabled = true

		tel, err := telemetry.Init(ctx, cfg, log.NewNoop())
		assert.ErrorContains(t, err, "app name is required")
		assert.Nil(t, tel)
	})

	t.Run("NilTelemetryClose", func(t *testing.T) {
		var tel *telemetry.Telemetry
		assert.NotPanics(t, tel.Close)
	})
}
