package pipeline

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/askiada/go-dataflow/pkg/config"
	"github.com/askiada/go-dataflow/pkg/pipeline/measure"
	"github.com/askiada/go-dataflow/pkg/pipeline/model"
)

type phase int

const (
	phaseAssembly phase = iota
	phaseRunning
)

// connection records the two ports joined by the edge with the same index.
type connection struct {
	upstream   model.PortAddr
	downstream model.PortAddr
}

// Pipeline owns processes and the edges between them. Edges and adjacency maps refer to processes
// by name only.
type Pipeline struct {
	logger     *zap.Logger
	measure    measure.Measure
	edgeOpts   []EdgeOption
	edgeConfig config.Config

	mu          sync.RWMutex
	phase       phase
	processes   []Process
	byName      map[string]int
	edges       []*Edge
	connections []connection
	// senders maps an input port to the index of its single feeding edge.
	senders map[model.PortAddr]int
	// receivers maps an output port to the indexes of the edges it feeds, in connection order.
	receivers map[model.PortAddr][]int
}

// New creates an empty pipeline in the assembly phase.
func New(opts ...PipelineOption) *Pipeline {
	pipe := &Pipeline{
		logger:    zap.NewNop(),
		byName:    make(map[string]int),
		senders:   make(map[model.PortAddr]int),
		receivers: make(map[model.PortAddr][]int),
	}

	for _, opt := range opts {
		opt(pipe)
	}

	return pipe
}

// AddProcess registers proc under its name.
func (p *Pipeline) AddProcess(proc Process) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.phase != phaseAssembly {
		return errors.Wrap(ErrPipelineRunning, "unable to add process")
	}

	if isNilProcess(proc) {
		return &AdditionError{Kind: NullProcessAddition}
	}

	name := proc.Name()
	if _, ok := p.byName[name]; ok {
		return &AdditionError{Kind: DuplicateProcessName, Name: name}
	}

	p.byName[name] = len(p.processes)
	p.processes = append(p.processes, proc)

	p.logger.Debug("process added", zap.String("process", name), zap.String("type", proc.Type()))

	return nil
}

// Connect creates an edge from the output port upPort of upName to the input port downPort of
// downName. opts are applied after the pipeline wide edge options.
func (p *Pipeline) Connect(upName, upPort, downName, downPort string, opts ...EdgeOption) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.phase != phaseAssembly {
		return errors.Wrapf(ErrPipelineRunning, "unable to connect %s.%s to %s.%s", upName, upPort, downName, downPort)
	}

	connErr := func(kind ConnectionErrorKind, name string, cause error) error {
		return &ConnectionError{
			Kind:              kind,
			Name:              name,
			Cause:             cause,
			UpstreamProcess:   upName,
			UpstreamPort:      upPort,
			DownstreamProcess: downName,
			DownstreamPort:    downPort,
		}
	}

	up, ok := p.process(upName)
	if !ok {
		return connErr(NoSuchProcess, upName, nil)
	}

	down, ok := p.process(downName)
	if !ok {
		return connErr(NoSuchProcess, downName, nil)
	}

	upInfo, err := up.OutputPortType(upPort)
	if err != nil {
		return err
	}

	downInfo, err := down.InputPortType(downPort)
	if err != nil {
		return err
	}

	if !model.PortTypesCompatible(upInfo.Type, downInfo.Type) {
		return &PortError{
			Kind:     PortTypeMismatch,
			Process:  downName,
			Port:     downPort,
			Expected: downInfo.Type,
			Actual:   upInfo.Type,
		}
	}

	conn := connection{
		upstream:   model.PortAddr{Process: upName, Port: upPort},
		downstream: model.PortAddr{Process: downName, Port: downPort},
	}

	if _, ok := p.senders[conn.downstream]; ok {
		return connErr(PortAlreadyConnected, "", nil)
	}

	edge, err := p.newEdge(conn, opts)
	if err != nil {
		return connErr(NullEdgeConnection, "", err)
	}

	err = edge.SetUpstreamProcess(up)
	if err != nil {
		return connErr(NullEdgeConnection, "", err)
	}

	err = edge.SetDownstreamProcess(down)
	if err != nil {
		return connErr(NullEdgeConnection, "", err)
	}

	id := len(p.edges)
	p.edges = append(p.edges, edge)
	p.connections = append(p.connections, conn)
	p.senders[conn.downstream] = id
	p.receivers[conn.upstream] = append(p.receivers[conn.upstream], id)

	p.logger.Debug("processes connected",
		zap.String("edge", edge.Name()),
		zap.Int("capacity", edge.Capacity()),
		zap.Bool("dependency", edge.MakesDependency()))

	return nil
}

func (p *Pipeline) newEdge(conn connection, opts []EdgeOption) (*Edge, error) {
	name := conn.upstream.String() + "->" + conn.downstream.String()

	all := []EdgeOption{edgeName(name), EdgeLogger(p.logger)}
	all = append(all, p.edgeOpts...)

	if p.edgeConfig != nil {
		cfgOpts, err := EdgeOptionsFromConfig(p.edgeConfig)
		if err != nil {
			return nil, err
		}

		all = append(all, cfgOpts...)
	}

	all = append(all, opts...)

	edge, err := NewEdge(all...)
	if err != nil {
		return nil, err
	}

	if p.measure != nil {
		edge.metric = p.measure.AddMetric(name, edge.Capacity())
	}

	return edge, nil
}

// process must be called with p.mu held.
func (p *Pipeline) process(name string) (Process, bool) {
	idx, ok := p.byName[name]
	if !ok {
		return nil, false
	}

	return p.processes[idx], true
}

// ProcessNames returns the process names in insertion order.
func (p *Pipeline) ProcessNames() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, len(p.processes))
	for i, proc := range p.processes {
		names[i] = proc.Name()
	}

	return names
}

func (p *Pipeline) ProcessByName(name string) (Process, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	proc, ok := p.process(name)
	if !ok {
		return nil, &ConnectionError{Kind: NoSuchProcess, Name: name}
	}

	return proc, nil
}

// ReceiversForPort returns every input port fed by the output port of process name.
func (p *Pipeline) ReceiversForPort(name, port string) []model.PortAddr {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := p.receivers[model.PortAddr{Process: name, Port: port}]

	addrs := make([]model.PortAddr, len(ids))
	for i, id := range ids {
		addrs[i] = p.connections[id].downstream
	}

	return addrs
}

// SenderForPort returns the output port feeding the input port of process name.
func (p *Pipeline) SenderForPort(name, port string) (model.PortAddr, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	id, ok := p.senders[model.PortAddr{Process: name, Port: port}]
	if !ok {
		return model.PortAddr{}, false
	}

	return p.connections[id].upstream, true
}

// InputEdgeForPort returns the edge feeding the input port of process name.
func (p *Pipeline) InputEdgeForPort(name, port string) (*Edge, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	id, ok := p.senders[model.PortAddr{Process: name, Port: port}]
	if !ok {
		return nil, false
	}

	return p.edges[id], true
}

// OutputEdgesForPort returns the edges fed by the output port of process name.
func (p *Pipeline) OutputEdgesForPort(name, port string) []*Edge {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := p.receivers[model.PortAddr{Process: name, Port: port}]

	edges := make([]*Edge, len(ids))
	for i, id := range ids {
		edges[i] = p.edges[id]
	}

	return edges
}

// EdgeForConnection returns the edge between two ports.
func (p *Pipeline) EdgeForConnection(upName, upPort, downName, downPort string) (*Edge, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	id, ok := p.senders[model.PortAddr{Process: downName, Port: downPort}]
	if !ok || p.connections[id].upstream != (model.PortAddr{Process: upName, Port: upPort}) {
		return nil, false
	}

	return p.edges[id], true
}

// UpstreamForProcess returns the distinct processes feeding name, in connection order.
func (p *Pipeline) UpstreamForProcess(name string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	seen := map[string]struct{}{}
	names := []string{}

	for _, conn := range p.connections {
		if conn.downstream.Process != name {
			continue
		}

		if _, ok := seen[conn.upstream.Process]; ok {
			continue
		}

		seen[conn.upstream.Process] = struct{}{}
		names = append(names, conn.upstream.Process)
	}

	return names
}

// DownstreamForProcess returns the distinct processes fed by name, in connection order.
func (p *Pipeline) DownstreamForProcess(name string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	seen := map[string]struct{}{}
	names := []string{}

	for _, conn := range p.connections {
		if conn.upstream.Process != name {
			continue
		}

		if _, ok := seen[conn.downstream.Process]; ok {
			continue
		}

		seen[conn.downstream.Process] = struct{}{}
		names = append(names, conn.downstream.Process)
	}

	return names
}

// Edges returns every edge in connection order.
func (p *Pipeline) Edges() []*Edge {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return append([]*Edge(nil), p.edges...)
}

// IsSetup reports whether SetupPipeline succeeded, after which the topology is frozen.
func (p *Pipeline) IsSetup() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.phase == phaseRunning
}
