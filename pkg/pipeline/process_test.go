package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-dataflow/pkg/pipeline"
	"github.com/askiada/go-dataflow/pkg/pipeline/model"
)

func TestBaseProcessPorts(t *testing.T) {
	t.Parallel()

	proc := newProcess(t, "merge", "merger",
		[]model.Port{port("left", "int", model.PortFlagRequired), port("right", "int")},
		[]model.Port{port("out", model.PortTypeFlowDependent)})

	assert.Equal(t, "merge", proc.Name())
	assert.Equal(t, "merger", proc.Type())
	assert.Equal(t, []string{"left", "right"}, proc.InputPorts())
	assert.Equal(t, []string{"out"}, proc.OutputPorts())

	info, err := proc.InputPortType("left")
	require.NoError(t, err)
	assert.Equal(t, "int", info.Type)
	assert.True(t, info.Required())

	info, err = proc.OutputPortType("out")
	require.NoError(t, err)
	assert.Equal(t, model.PortTypeFlowDependent, info.Type)
	assert.False(t, info.Required())
}

func TestBaseProcessUnknownPort(t *testing.T) {
	t.Parallel()

	proc := newSource(t, "numbers")

	tcs := map[string]struct {
		lookup func(string) (model.PortInfo, error)
		port   string
	}{
		"unknown output":       {lookup: proc.OutputPortType, port: "missing"},
		"output used as input": {lookup: proc.InputPortType, port: "o"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := tc.lookup(tc.port)
			require.ErrorIs(t, err, pipeline.ErrNoSuchPort)

			var portErr *pipeline.PortError
			require.ErrorAs(t, err, &portErr)
			assert.Equal(t, "numbers", portErr.Process)
			assert.Equal(t, tc.port, portErr.Port)
		})
	}
}

func TestBaseProcessDuplicatePort(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		inputs, outputs []model.Port
	}{
		"inputs":  {inputs: []model.Port{port("i", "int"), port("i", "string")}},
		"outputs": {outputs: []model.Port{port("o", "int"), port("o", "int")}},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			proc, err := pipeline.NewBaseProcess("p", "t", tc.inputs, tc.outputs)
			require.ErrorIs(t, err, pipeline.ErrDuplicatePort)
			assert.Nil(t, proc)
		})
	}
}

func TestBaseProcessSameNameOnBothSides(t *testing.T) {
	t.Parallel()

	proc := newProcess(t, "p", "passthrough",
		[]model.Port{port("data", "int")},
		[]model.Port{port("data", "int")})

	assert.Equal(t, []string{"data"}, proc.InputPorts())
	assert.Equal(t, []string{"data"}, proc.OutputPorts())
}

func TestBaseProcessPortInfoIsCopied(t *testing.T) {
	t.Parallel()

	flags := []model.PortFlag{model.PortFlagRequired}
	proc := newProcess(t, "p", "t", []model.Port{{Name: "i", Info: model.PortInfo{Type: "int", Flags: flags}}}, nil)

	flags[0] = model.PortFlagConst

	info, err := proc.InputPortType("i")
	require.NoError(t, err)
	assert.True(t, info.Required())

	info.Flags[0] = model.PortFlagConst

	info, err = proc.InputPortType("i")
	require.NoError(t, err)
	assert.True(t, info.Required())

	ports := proc.InputPorts()
	ports[0] = "x"
	assert.Equal(t, []string{"i"}, proc.InputPorts())
}
