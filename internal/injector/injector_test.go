package injector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/behave/internal/core/bt"
	"github.com/zeusync/behave/internal/core/observability/log"
	"github.com/zeusync/behave/internal/runner"
)

func TestInitializeApp(t *testing.T) {
	app, err := InitializeApp(Options{LogLevel: log.LevelSilent})
	require.NoError(t, err)

	assert.NotNil(t, app.Logger)
	assert.NotNil(t, app.Events)
	assert.Contains(t, app.Registry.Actions(), "Wait")

	app.Collector.ObserveTick(runner.TickReport{Tree: "t", Status: bt.StatusSuccess})
	families, err := app.Metrics.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "behave_ticks_total")
}

func TestInitializeApp_FreshMetricsPerApp(t *testing.T) {
	_, err := InitializeApp(Options{LogLevel: log.LevelSilent})
	require.NoError(t, err)
	_, err = InitializeApp(Options{LogLevel: log.LevelSilent})
	assert.NoError(t, err, "each app registers into its own registry")
}
