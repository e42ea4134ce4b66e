package drawer_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/go-dataflow/pkg/pipeline"
	"github.com/askiada/go-dataflow/pkg/pipeline/drawer"
	"github.com/askiada/go-dataflow/pkg/pipeline/model"
)

func newProcess(t *testing.T, name, typ string, inputs, outputs []model.Port) pipeline.Process {
	t.Helper()

	proc, err := pipeline.NewBaseProcess(name, typ, inputs, outputs)
	require.NoError(t, err)

	return proc
}

func newTwoProcessPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()

	pipe := pipeline.New()
	require.NoError(t, pipe.AddProcess(newProcess(t, "P", "num", nil,
		[]model.Port{{Name: "o", Info: model.PortInfo{Type: "int"}}})))
	require.NoError(t, pipe.AddProcess(newProcess(t, "Q", "sink",
		[]model.Port{{Name: "i", Info: model.PortInfo{Type: "int"}}}, nil)))
	require.NoError(t, pipe.Connect("P", "o", "Q", "i"))

	return pipe
}

const expectedTwoProcessDOT = `strict digraph test {

subgraph cluster_P {
color=lightgray;style=filled;

P_main [label="P\n:: num",shape=ellipse,rank=same];


P_output_o [label="o\n:: int",shape=none,height=0,width=0,fontsize=7];
P_main -> P_output_o [arrowhead=none,color=black];

}

subgraph cluster_Q {
color=lightgray;style=filled;

Q_main [label="Q\n:: sink",shape=ellipse,rank=same];

Q_input_i [label="i\n:: int",shape=none,height=0,width=0,fontsize=7];
Q_input_i -> Q_main [arrowhead=none,color=black];


}

P_output_o -> Q_input_i [minlen=1,color=black,weight=1];

}
`

func TestExportDOT(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := drawer.ExportDOT(&buf, newTwoProcessPipeline(t), "test")
	require.NoError(t, err)

	assert.Equal(t, expectedTwoProcessDOT, buf.String())
	assert.Contains(t, buf.String(), "P_output_o -> Q_input_i [minlen=1,color=black,weight=1];")
}

func TestExportDOTEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := drawer.ExportDOT(&buf, pipeline.New(), "empty")
	require.NoError(t, err)
	assert.Equal(t, "strict digraph empty {\n\n\n}\n", buf.String())
}

func TestExportDOTFanOut(t *testing.T) {
	t.Parallel()

	pipe := pipeline.New()
	intPort := model.PortInfo{Type: "int"}
	require.NoError(t, pipe.AddProcess(newProcess(t, "src", "num", nil, []model.Port{{Name: "o", Info: intPort}})))
	require.NoError(t, pipe.AddProcess(newProcess(t, "a", "sink", []model.Port{{Name: "i", Info: intPort}}, nil)))
	require.NoError(t, pipe.AddProcess(newProcess(t, "b", "sink",
		[]model.Port{{Name: "i", Info: model.PortInfo{Type: model.PortTypeAny}}}, nil)))
	require.NoError(t, pipe.Connect("src", "o", "a", "i"))
	require.NoError(t, pipe.Connect("src", "o", "b", "i"))

	var buf bytes.Buffer

	require.NoError(t, drawer.ExportDOT(&buf, pipe, "fan"))

	out := buf.String()
	first := strings.Index(out, "src_output_o -> a_input_i [minlen=1,color=black,weight=1];")
	second := strings.Index(out, "src_output_o -> b_input_i [minlen=1,color=black,weight=1];")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)
	assert.Contains(t, out, `b_input_i [label="i\n:: _any",shape=none,height=0,width=0,fontsize=7];`)
	assert.Equal(t, 3, strings.Count(out, "subgraph cluster_"))
}

func TestExportDOTClusterColor(t *testing.T) {
	t.Parallel()

	red, err := colors.RGB(255, 0, 0)
	require.NoError(t, err)

	var buf bytes.Buffer

	require.NoError(t, drawer.ExportDOT(&buf, newTwoProcessPipeline(t), "test", drawer.ClusterColor(red)))
	assert.Contains(t, buf.String(), `color="`+red.ToHEX().String()+`";style=filled;`)
	assert.NotContains(t, buf.String(), "lightgray")
}

func TestExportDOTFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pipeline.dot")

	require.NoError(t, drawer.ExportDOTFile(path, newTwoProcessPipeline(t), "test"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, expectedTwoProcessDOT, string(content))
}

func TestExportDOTFileBadPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "pipeline.dot")

	err := drawer.ExportDOTFile(path, newTwoProcessPipeline(t), "test")
	require.Error(t, err)
}

type brokenSource struct{}

func (brokenSource) ProcessNames() []string { return []string{"ghost"} }

func (brokenSource) ProcessByName(name string) (pipeline.Process, error) {
	return nil, &pipeline.ConnectionError{Kind: pipeline.NoSuchProcess, Name: name}
}

func (brokenSource) ReceiversForPort(string, string) []model.PortAddr { return nil }

func TestExportDOTUnknownProcess(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := drawer.ExportDOT(&buf, brokenSource{}, "broken")
	require.ErrorIs(t, err, pipeline.ErrNoSuchProcess)
}
