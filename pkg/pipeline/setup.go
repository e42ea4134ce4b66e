package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/askiada/go-dataflow/pkg/pipeline/model"
)

// SetupPipeline validates the whole graph once, before execution. Every issue found is reported in
// a single *SetupError. On success the pipeline enters its running phase and the topology can no
// longer change.
func (p *Pipeline) SetupPipeline() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.phase != phaseAssembly {
		return ErrDuplicateSetup
	}

	issues := []*SetupIssue{}
	if len(p.processes) == 0 {
		issues = append(issues, &SetupIssue{Kind: NoProcesses})
	}

	issues = append(issues, p.checkRequiredPorts()...)
	issues = append(issues, p.checkFlowTypes()...)

	cycleIssues, err := p.checkCycles()
	if err != nil {
		return errors.Wrap(err, "unable to check pipeline cycles")
	}

	issues = append(issues, cycleIssues...)

	if len(issues) > 0 {
		for _, issue := range issues {
			p.logger.Warn("pipeline setup issue", zap.Error(issue))
		}

		return &SetupError{Issues: issues}
	}

	p.phase = phaseRunning
	for _, edge := range p.edges {
		edge.freeze()
	}

	p.logger.Info("pipeline set up",
		zap.Int("processes", len(p.processes)),
		zap.Int("edges", len(p.edges)))

	return nil
}

func (p *Pipeline) checkRequiredPorts() []*SetupIssue {
	issues := []*SetupIssue{}

	for _, proc := range p.processes {
		name := proc.Name()

		for _, port := range proc.InputPorts() {
			info, err := proc.InputPortType(port)
			if err != nil || !info.Required() {
				continue
			}

			if _, ok := p.senders[model.PortAddr{Process: name, Port: port}]; !ok {
				issues = append(issues, &SetupIssue{Kind: MissingInputConnection, Process: name, Port: port})
			}
		}

		for _, port := range proc.OutputPorts() {
			info, err := proc.OutputPortType(port)
			if err != nil || !info.Required() {
				continue
			}

			if len(p.receivers[model.PortAddr{Process: name, Port: port}]) == 0 {
				issues = append(issues, &SetupIssue{Kind: MissingOutputConnection, Process: name, Port: port})
			}
		}
	}

	return issues
}

// flowVar is the type variable shared by the flow dependent ports of a process with the same tag.
type flowVar struct {
	process string
	tag     string
}

// flowGroups is a union-find over flow variables. Connecting two flow dependent ports merges their
// variables, so a type flows through any chain of pass-through processes.
type flowGroups struct {
	parent map[flowVar]flowVar
	// ports lists the connected flow dependent ports of each variable, in connection order.
	ports map[flowVar][]model.PortAddr
	types map[flowVar][]string
	order []flowVar
}

func newFlowGroups() *flowGroups {
	return &flowGroups{
		parent: map[flowVar]flowVar{},
		ports:  map[flowVar][]model.PortAddr{},
		types:  map[flowVar][]string{},
	}
}

func (fg *flowGroups) find(v flowVar) flowVar {
	for fg.parent[v] != v {
		fg.parent[v] = fg.parent[fg.parent[v]]
		v = fg.parent[v]
	}

	return v
}

func (fg *flowGroups) touch(addr model.PortAddr, typ string) flowVar {
	v := flowVar{process: addr.Process, tag: model.FlowTag(typ)}
	if _, ok := fg.parent[v]; !ok {
		fg.parent[v] = v
		fg.order = append(fg.order, v)
	}

	for _, known := range fg.ports[v] {
		if known == addr {
			return v
		}
	}

	fg.ports[v] = append(fg.ports[v], addr)

	return v
}

func (fg *flowGroups) union(a, b flowVar) {
	ra, rb := fg.find(a), fg.find(b)
	if ra != rb {
		fg.parent[rb] = ra
	}
}

// checkFlowTypes resolves flow dependent ports against the concrete types reaching them, directly or
// through other flow dependent ports. Every group of linked flow dependent ports must end up with
// exactly one concrete type.
func (p *Pipeline) checkFlowTypes() []*SetupIssue {
	fg := newFlowGroups()

	for _, conn := range p.connections {
		upType, downType := p.connectionTypes(conn)
		upFlow, downFlow := model.IsFlowDependent(upType), model.IsFlowDependent(downType)

		switch {
		case upFlow && downFlow:
			fg.union(fg.touch(conn.upstream, upType), fg.touch(conn.downstream, downType))
		case upFlow:
			v := fg.touch(conn.upstream, upType)
			if model.IsConcreteType(downType) {
				fg.types[v] = append(fg.types[v], downType)
			}
		case downFlow:
			v := fg.touch(conn.downstream, downType)
			if model.IsConcreteType(upType) {
				fg.types[v] = append(fg.types[v], upType)
			}
		}
	}

	roots := []flowVar{}
	ports := map[flowVar][]model.PortAddr{}
	types := map[flowVar]map[string]struct{}{}

	for _, v := range fg.order {
		root := fg.find(v)
		if _, ok := types[root]; !ok {
			roots = append(roots, root)
			types[root] = map[string]struct{}{}
		}

		ports[root] = append(ports[root], fg.ports[v]...)
		for _, typ := range fg.types[v] {
			types[root][typ] = struct{}{}
		}
	}

	issues := []*SetupIssue{}

	for _, root := range roots {
		group := ports[root]

		switch len(types[root]) {
		case 1:
			continue
		case 0:
			issues = append(issues, &SetupIssue{
				Kind:    UnresolvedPortType,
				Process: group[0].Process,
				Port:    group[0].Port,
				Detail:  "no concrete type reaches " + joinAddrs(group),
			})
		default:
			names := make([]string, 0, len(types[root]))
			for t := range types[root] {
				names = append(names, t)
			}

			sort.Strings(names)

			issues = append(issues, &SetupIssue{
				Kind:    FlowTypeMismatch,
				Process: group[0].Process,
				Port:    group[0].Port,
				Detail:  joinAddrs(group) + " connected to " + strings.Join(names, ", "),
			})
		}
	}

	return issues
}

func joinAddrs(addrs []model.PortAddr) string {
	names := make([]string, len(addrs))
	for i, addr := range addrs {
		names[i] = addr.String()
	}

	return strings.Join(names, ", ")
}

func (p *Pipeline) connectionTypes(conn connection) (string, string) {
	var upType, downType string

	if up, ok := p.process(conn.upstream.Process); ok {
		if info, err := up.OutputPortType(conn.upstream.Port); err == nil {
			upType = info.Type
		}
	}

	if down, ok := p.process(conn.downstream.Process); ok {
		if info, err := down.InputPortType(conn.downstream.Port); err == nil {
			downType = info.Type
		}
	}

	return upType, downType
}

// checkCycles adds data edges first and dependency edges last to a cycle free graph, so an edge
// closing a cycle is reported, with dependency edges taking the blame when they are involved.
func (p *Pipeline) checkCycles() ([]*SetupIssue, error) {
	gra := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())

	for _, proc := range p.processes {
		err := gra.AddVertex(proc.Name())
		if err != nil {
			return nil, errors.Wrapf(err, "unable to add vertex %q", proc.Name())
		}
	}

	ids := make([]int, 0, len(p.edges))
	for id, edge := range p.edges {
		if !edge.MakesDependency() {
			ids = append(ids, id)
		}
	}

	for id, edge := range p.edges {
		if edge.MakesDependency() {
			ids = append(ids, id)
		}
	}

	issues := []*SetupIssue{}

	for _, id := range ids {
		conn := p.connections[id]
		edge := p.edges[id]

		err := gra.AddEdge(conn.upstream.Process, conn.downstream.Process,
			graph.EdgeAttribute("edge", edge.Name()))

		switch {
		case err == nil, errors.Is(err, graph.ErrEdgeAlreadyExists):
		case errors.Is(err, graph.ErrEdgeCreatesCycle):
			kind := "data"
			if edge.MakesDependency() {
				kind = "dependency"
			}

			issues = append(issues, &SetupIssue{
				Kind:    Cycle,
				Process: conn.downstream.Process,
				Port:    conn.downstream.Port,
				Detail:  fmt.Sprintf("%s edge %s", kind, edge.Name()),
			})
		default:
			return nil, errors.Wrapf(err, "unable to add edge %q", edge.Name())
		}
	}

	return issues, nil
}
