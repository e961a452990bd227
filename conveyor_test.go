package conveyor_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	conveyor "github.com/calvora/conveyor"
	"github.com/calvora/conveyor/pkg/dsl"
)

func TestOrchestrator_RunGraph(t *testing.T) {
	core := conveyor.New(prometheus.NewRegistry())
	core.Registry().MustRegister("greet", func(ctx context.Context, args []any) (any, error) {
		return "hello " + args[0].(string), nil
	})

	vars, err := core.RunGraph(context.Background(),
		dsl.Act("greet", []string{"name"}, "greeting"),
		map[string]any{"name": "world"},
	)
	require.NoError(t, err)
	assert.Equal(t, "hello world", vars["greeting"])
}

func TestOrchestrator_RunGraph_RejectsUnknownActivity(t *testing.T) {
	core := conveyor.New(prometheus.NewRegistry())

	_, err := core.RunGraph(context.Background(), dsl.Act("nope", nil, "x"), nil)
	var verr *dsl.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestOrchestrator_ExposesCollaborators(t *testing.T) {
	core := conveyor.New(prometheus.NewRegistry())

	assert.NotNil(t, core.Registry())
	assert.NotNil(t, core.Host())
	assert.NotNil(t, core.Metrics())
}
