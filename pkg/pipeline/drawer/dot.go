// Package drawer renders a pipeline as a graphviz DOT graph.
//
// Every process becomes a cluster holding a central node and one node per port. Connections are
// drawn between the port nodes after all clusters.
package drawer

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/go-dataflow/pkg/pipeline"
)

const (
	nodeSuffixMain   = "_main"
	nodePrefixInput  = "_input_"
	nodePrefixOutput = "_output_"

	defaultClusterColor = "lightgray"

	styleProcess         = "shape=ellipse,rank=same"
	stylePort            = "shape=none,height=0,width=0,fontsize=7"
	stylePortEdge        = "arrowhead=none,color=black"
	styleConnectionEdge  = "minlen=1,color=black,weight=1"
	styleSubgraphPattern = "color=%s;style=filled;"
)

//nolint:lll //this is a template
const dotTemplate = `strict digraph {{.Name}} {

{{range $proc := .Processes}}subgraph cluster_{{$proc.Name}} {
{{$.ClusterStyle}}

{{$proc.Main}} [label="{{$proc.Name}}\n:: {{$proc.Type}}",{{$.ProcessStyle}}];

{{range $proc.Inputs}}{{.Node}} [label="{{.Port}}\n:: {{.Type}}",{{$.PortStyle}}];
{{.Node}} -> {{$proc.Main}} [{{$.PortEdgeStyle}}];
{{end}}
{{range $proc.Outputs}}{{.Node}} [label="{{.Port}}\n:: {{.Type}}",{{$.PortStyle}}];
{{$proc.Main}} -> {{.Node}} [{{$.PortEdgeStyle}}];
{{end}}
}

{{end}}{{range .Connections}}{{.From}} -> {{.To}} [{{$.ConnectionStyle}}];
{{end}}
}
`

type description struct {
	Name            string
	ClusterStyle    string
	ProcessStyle    string
	PortStyle       string
	PortEdgeStyle   string
	ConnectionStyle string
	Processes       []processNode
	Connections     []connectionEdge
}

type processNode struct {
	Name    string
	Type    string
	Main    string
	Inputs  []portNode
	Outputs []portNode
}

type portNode struct {
	Node string
	Port string
	Type string
}

type connectionEdge struct {
	From string
	To   string
}

// Option tunes the rendering.
type Option func(d *description)

// ClusterColor fills the process clusters with c instead of light gray.
func ClusterColor(c colors.Color) Option {
	return func(d *description) {
		d.ClusterStyle = fmt.Sprintf(styleSubgraphPattern, `"`+c.ToHEX().String()+`"`)
	}
}

// ExportDOT writes the DOT graph of src, named graphName, to wrt.
func ExportDOT(wrt io.Writer, src Source, graphName string, opts ...Option) error {
	if src == nil {
		return errors.New("nothing to export")
	}

	desc, err := generateDOT(src, graphName, opts...)
	if err != nil {
		return errors.Wrap(err, "failed to generate DOT description")
	}

	return renderDOT(wrt, desc)
}

// ExportDOTFile writes the DOT graph of src to the file at path.
func ExportDOTFile(path string, src Source, graphName string, opts ...Option) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", path)
	}

	defer func() {
		closeErr := file.Close()
		if err == nil && closeErr != nil {
			err = errors.Wrapf(closeErr, "unable to close file %s", path)
		}
	}()

	err = ExportDOT(file, src, graphName, opts...)
	if err != nil {
		return errors.Wrapf(err, "unable to create dot file %s", path)
	}

	return nil
}

func generateDOT(src Source, graphName string, opts ...Option) (description, error) {
	desc := description{
		Name:            graphName,
		ClusterStyle:    fmt.Sprintf(styleSubgraphPattern, defaultClusterColor),
		ProcessStyle:    styleProcess,
		PortStyle:       stylePort,
		PortEdgeStyle:   stylePortEdge,
		ConnectionStyle: styleConnectionEdge,
	}

	for _, opt := range opts {
		opt(&desc)
	}

	names := src.ProcessNames()
	procs := make([]pipeline.Process, len(names))

	for i, name := range names {
		proc, err := src.ProcessByName(name)
		if err != nil {
			return desc, errors.Wrapf(err, "unable to get process %q", name)
		}

		procs[i] = proc

		node, err := describeProcess(proc)
		if err != nil {
			return desc, err
		}

		desc.Processes = append(desc.Processes, node)
	}

	for i, name := range names {
		for _, port := range procs[i].OutputPorts() {
			from := name + nodePrefixOutput + port

			for _, addr := range src.ReceiversForPort(name, port) {
				desc.Connections = append(desc.Connections, connectionEdge{
					From: from,
					To:   addr.Process + nodePrefixInput + addr.Port,
				})
			}
		}
	}

	return desc, nil
}

func describeProcess(proc pipeline.Process) (processNode, error) {
	name := proc.Name()
	node := processNode{
		Name: name,
		Type: proc.Type(),
		Main: name + nodeSuffixMain,
	}

	for _, port := range proc.InputPorts() {
		info, err := proc.InputPortType(port)
		if err != nil {
			return node, errors.Wrapf(err, "unable to get type of input port %s.%s", name, port)
		}

		node.Inputs = append(node.Inputs, portNode{Node: name + nodePrefixInput + port, Port: port, Type: info.Type})
	}

	for _, port := range proc.OutputPorts() {
		info, err := proc.OutputPortType(port)
		if err != nil {
			return node, errors.Wrapf(err, "unable to get type of output port %s.%s", name, port)
		}

		node.Outputs = append(node.Outputs, portNode{Node: name + nodePrefixOutput + port, Port: port, Type: info.Type})
	}

	return node, nil
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}
