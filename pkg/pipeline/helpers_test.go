package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/go-dataflow/pkg/pipeline"
	"github.com/askiada/go-dataflow/pkg/pipeline/model"
)

func port(name, typ string, flags ...model.PortFlag) model.Port {
	return model.Port{Name: name, Info: model.PortInfo{Type: typ, Flags: flags}}
}

func newProcess(t *testing.T, name, typ string, inputs, outputs []model.Port) pipeline.Process {
	t.Helper()

	proc, err := pipeline.NewBaseProcess(name, typ, inputs, outputs)
	require.NoError(t, err)

	return proc
}

// newSource declares a process with a single int output "o".
func newSource(t *testing.T, name string) pipeline.Process {
	t.Helper()

	return newProcess(t, name, "numbers", nil, []model.Port{port("o", "int")})
}

// newSink declares a process with a single required int input "i".
func newSink(t *testing.T, name string) pipeline.Process {
	t.Helper()

	return newProcess(t, name, "sink", []model.Port{port("i", "int", model.PortFlagRequired)}, nil)
}

func newEdge(t *testing.T, opts ...pipeline.EdgeOption) *pipeline.Edge {
	t.Helper()

	edge, err := pipeline.NewEdge(opts...)
	require.NoError(t, err)

	return edge
}

func edgeDatum(value any, stamp model.Stamp) model.EdgeDatum {
	return model.EdgeDatum{Datum: model.NewDatum(value), Stamp: stamp}
}
