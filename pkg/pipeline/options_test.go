package pipeline_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-dataflow/pkg/config"
	"github.com/askiada/go-dataflow/pkg/pipeline"
)

func TestEdgeOptionsFromConfig(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		cfg          config.Config
		wantCapacity int
		wantPolicy   pipeline.FullPolicy
		wantDep      bool
		wantRequired bool
	}{
		"empty": {
			cfg:          config.Empty(),
			wantRequired: true,
		},
		"bounded dropping": {
			cfg: config.Config{
				pipeline.EdgeConfigCapacity:   "8",
				pipeline.EdgeConfigFullPolicy: "drop_oldest",
			},
			wantCapacity: 8,
			wantPolicy:   pipeline.FullPolicyDropOldest,
			wantRequired: true,
		},
		"dependency not required": {
			cfg: config.Config{
				pipeline.EdgeConfigDependency:           "true",
				pipeline.EdgeConfigRequiredByDownstream: "false",
			},
			wantDep: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			opts, err := pipeline.EdgeOptionsFromConfig(tc.cfg)
			require.NoError(t, err)

			edge := newEdge(t, opts...)
			assert.Equal(t, tc.wantCapacity, edge.Capacity())
			assert.Equal(t, tc.wantPolicy, edge.FullPolicy())
			assert.Equal(t, tc.wantDep, edge.MakesDependency())
			assert.Equal(t, tc.wantRequired, edge.RequiredByDownstream())
		})
	}
}

func TestEdgeOptionsFromConfigBadValues(t *testing.T) {
	t.Parallel()

	tcs := map[string]config.Config{
		"capacity":   {pipeline.EdgeConfigCapacity: "many"},
		"policy":     {pipeline.EdgeConfigFullPolicy: "sometimes"},
		"dependency": {pipeline.EdgeConfigDependency: "maybe"},
		"required":   {pipeline.EdgeConfigRequiredByDownstream: "2"},
	}

	for name, cfg := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			opts, err := pipeline.EdgeOptionsFromConfig(cfg)
			require.ErrorIs(t, err, pipeline.ErrBadEdgeConfig)
			assert.Nil(t, opts)
		})
	}
}

func TestEdgeOptionsFromYAML(t *testing.T) {
	t.Parallel()

	cfg, err := config.FromYAML(strings.NewReader(`
edges:
  capacity: 16
  full_policy: drop_newest
`))
	require.NoError(t, err)

	opts, err := pipeline.EdgeOptionsFromConfig(cfg.Subblock("edges"))
	require.NoError(t, err)

	edge := newEdge(t, opts...)
	assert.Equal(t, 16, edge.Capacity())
	assert.Equal(t, pipeline.FullPolicyDropNewest, edge.FullPolicy())
}
