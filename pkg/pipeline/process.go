package pipeline

import (
	"reflect"

	"github.com/askiada/go-dataflow/pkg/pipeline/model"
)

// Process is a named node exposing a fixed set of typed ports.
// Implementations usually embed a *BaseProcess.
type Process interface {
	Name() string
	Type() string
	// InputPorts returns the input port names in declaration order.
	InputPorts() []string
	// OutputPorts returns the output port names in declaration order.
	OutputPorts() []string
	InputPortType(port string) (model.PortInfo, error)
	OutputPortType(port string) (model.PortInfo, error)
}

// BaseProcess implements the port contract of a Process. Ports are declared at construction
// and cannot change afterwards.
type BaseProcess struct {
	name, typ     string
	inputs        []string
	outputs       []string
	inputsByName  map[string]model.PortInfo
	outputsByName map[string]model.PortInfo
}

// NewBaseProcess declares a process with the given ports. It fails if a port name is declared twice
// on the same side.
func NewBaseProcess(name, typ string, inputs, outputs []model.Port) (*BaseProcess, error) {
	bp := &BaseProcess{
		name:          name,
		typ:           typ,
		inputs:        make([]string, 0, len(inputs)),
		outputs:       make([]string, 0, len(outputs)),
		inputsByName:  make(map[string]model.PortInfo, len(inputs)),
		outputsByName: make(map[string]model.PortInfo, len(outputs)),
	}

	for _, port := range inputs {
		if _, ok := bp.inputsByName[port.Name]; ok {
			return nil, &PortError{Kind: DuplicatePort, Process: name, Port: port.Name}
		}

		bp.inputs = append(bp.inputs, port.Name)
		bp.inputsByName[port.Name] = clonePortInfo(port.Info)
	}

	for _, port := range outputs {
		if _, ok := bp.outputsByName[port.Name]; ok {
			return nil, &PortError{Kind: DuplicatePort, Process: name, Port: port.Name}
		}

		bp.outputs = append(bp.outputs, port.Name)
		bp.outputsByName[port.Name] = clonePortInfo(port.Info)
	}

	return bp, nil
}

func (bp *BaseProcess) Name() string {
	return bp.name
}

func (bp *BaseProcess) Type() string {
	return bp.typ
}

func (bp *BaseProcess) InputPorts() []string {
	return append([]string(nil), bp.inputs...)
}

func (bp *BaseProcess) OutputPorts() []string {
	return append([]string(nil), bp.outputs...)
}

func (bp *BaseProcess) InputPortType(port string) (model.PortInfo, error) {
	info, ok := bp.inputsByName[port]
	if !ok {
		return model.PortInfo{}, &PortError{Kind: NoSuchPort, Process: bp.name, Port: port}
	}

	return clonePortInfo(info), nil
}

func (bp *BaseProcess) OutputPortType(port string) (model.PortInfo, error) {
	info, ok := bp.outputsByName[port]
	if !ok {
		return model.PortInfo{}, &PortError{Kind: NoSuchPort, Process: bp.name, Port: port}
	}

	return clonePortInfo(info), nil
}

func clonePortInfo(info model.PortInfo) model.PortInfo {
	info.Flags = append([]model.PortFlag(nil), info.Flags...)

	return info
}

// isNilProcess catches both a nil interface and an interface holding a nil pointer.
func isNilProcess(p Process) bool {
	if p == nil {
		return true
	}

	v := reflect.ValueOf(p)

	return v.Kind() == reflect.Ptr && v.IsNil()
}

var _ Process = (*BaseProcess)(nil)
