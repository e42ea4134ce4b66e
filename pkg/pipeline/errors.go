package pipeline

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrNullProcessAddition    = errors.New("null process addition")
	ErrDuplicateProcessName   = errors.New("duplicate process name")
	ErrNullEdgeConnection     = errors.New("null edge connection")
	ErrNoSuchProcess          = errors.New("no such process")
	ErrPortAlreadyConnected   = errors.New("input port already connected")
	ErrNullProcessConnection  = errors.New("null process connection")
	ErrInputAlreadyConnected  = errors.New("edge input already connected")
	ErrOutputAlreadyConnected = errors.New("edge output already connected")
	ErrNoSuchPort             = errors.New("no such port")
	ErrDuplicatePort          = errors.New("duplicate port")
	ErrPortTypeMismatch       = errors.New("port type mismatch")
	ErrUnresolvedPortType     = errors.New("unresolved port type")
	ErrMissingConnection      = errors.New("required port not connected")
	ErrNoProcesses            = errors.New("pipeline has no processes")
	ErrCycle                  = errors.New("connection creates a cycle")
	ErrSetupFailed            = errors.New("pipeline setup failed")
	ErrDuplicateSetup         = errors.New("pipeline already set up")
	ErrPipelineRunning        = errors.New("pipeline topology is immutable once set up")
	ErrBadEdgeConfig          = errors.New("bad edge configuration")
	ErrEmptyEdge              = errors.New("edge is empty")
)

// AdditionErrorKind tags the failures of Pipeline.AddProcess.
type AdditionErrorKind int

const (
	NullProcessAddition AdditionErrorKind = iota
	DuplicateProcessName
)

// AdditionError is returned when a process cannot be added to a pipeline.
type AdditionError struct {
	Kind AdditionErrorKind
	Name string
}

func (e *AdditionError) Error() string {
	switch e.Kind {
	case DuplicateProcessName:
		return fmt.Sprintf("%s: %q", ErrDuplicateProcessName, e.Name)
	default:
		return ErrNullProcessAddition.Error()
	}
}

func (e *AdditionError) Is(target error) bool {
	switch e.Kind {
	case NullProcessAddition:
		return target == ErrNullProcessAddition
	case DuplicateProcessName:
		return target == ErrDuplicateProcessName
	}

	return false
}

// ConnectionErrorKind tags the failures of Pipeline.Connect.
type ConnectionErrorKind int

const (
	NullEdgeConnection ConnectionErrorKind = iota
	NoSuchProcess
	PortAlreadyConnected
)

// ConnectionError is returned when two ports cannot be connected. Name holds the missing process
// for NoSuchProcess.
type ConnectionError struct {
	Cause             error
	UpstreamProcess   string
	UpstreamPort      string
	DownstreamProcess string
	DownstreamPort    string
	Name              string
	Kind              ConnectionErrorKind
}

func (e *ConnectionError) Error() string {
	var msg string

	switch e.Kind {
	case NoSuchProcess:
		msg = fmt.Sprintf("%s: %q", ErrNoSuchProcess, e.Name)
	case PortAlreadyConnected:
		msg = fmt.Sprintf("%s: %s.%s", ErrPortAlreadyConnected, e.DownstreamProcess, e.DownstreamPort)
	default:
		msg = fmt.Sprintf("%s: %s.%s -> %s.%s", ErrNullEdgeConnection,
			e.UpstreamProcess, e.UpstreamPort, e.DownstreamProcess, e.DownstreamPort)
	}

	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}

	return msg
}

func (e *ConnectionError) Is(target error) bool {
	switch e.Kind {
	case NullEdgeConnection:
		return target == ErrNullEdgeConnection
	case NoSuchProcess:
		return target == ErrNoSuchProcess
	case PortAlreadyConnected:
		return target == ErrPortAlreadyConnected
	}

	return false
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// BindingErrorKind tags the failures of binding a process to an edge.
type BindingErrorKind int

const (
	NullProcessConnection BindingErrorKind = iota
	InputAlreadyConnected
	OutputAlreadyConnected
)

// BindingError is returned by Edge.SetUpstreamProcess and Edge.SetDownstreamProcess.
// Bound is the process already attached to the edge.
type BindingError struct {
	Edge    string
	Process string
	Bound   string
	Kind    BindingErrorKind
}

func (e *BindingError) Error() string {
	switch e.Kind {
	case InputAlreadyConnected:
		return fmt.Sprintf("%s: edge %q is fed by %q, cannot bind %q", ErrInputAlreadyConnected, e.Edge, e.Bound, e.Process)
	case OutputAlreadyConnected:
		return fmt.Sprintf("%s: edge %q feeds %q, cannot bind %q", ErrOutputAlreadyConnected, e.Edge, e.Bound, e.Process)
	default:
		return fmt.Sprintf("%s: edge %q", ErrNullProcessConnection, e.Edge)
	}
}

func (e *BindingError) Is(target error) bool {
	switch e.Kind {
	case NullProcessConnection:
		return target == ErrNullProcessConnection
	case InputAlreadyConnected:
		return target == ErrInputAlreadyConnected
	case OutputAlreadyConnected:
		return target == ErrOutputAlreadyConnected
	}

	return false
}

// PortErrorKind tags the failures of the port contract.
type PortErrorKind int

const (
	NoSuchPort PortErrorKind = iota
	DuplicatePort
	PortTypeMismatch
)

// PortError reports a bad port. Expected and Actual are set for PortTypeMismatch: Expected is the
// downstream input type and Actual the upstream output type.
type PortError struct {
	Process  string
	Port     string
	Expected string
	Actual   string
	Kind     PortErrorKind
}

func (e *PortError) Error() string {
	switch e.Kind {
	case DuplicatePort:
		return fmt.Sprintf("%s: %s.%s", ErrDuplicatePort, e.Process, e.Port)
	case PortTypeMismatch:
		return fmt.Sprintf("%s: %s.%s expects %q, got %q", ErrPortTypeMismatch, e.Process, e.Port, e.Expected, e.Actual)
	default:
		return fmt.Sprintf("%s: %s.%s", ErrNoSuchPort, e.Process, e.Port)
	}
}

func (e *PortError) Is(target error) bool {
	switch e.Kind {
	case NoSuchPort:
		return target == ErrNoSuchPort
	case DuplicatePort:
		return target == ErrDuplicatePort
	case PortTypeMismatch:
		return target == ErrPortTypeMismatch
	}

	return false
}

// IssueKind tags a violation found by Pipeline.SetupPipeline.
type IssueKind int

const (
	NoProcesses IssueKind = iota
	MissingInputConnection
	MissingOutputConnection
	UnresolvedPortType
	FlowTypeMismatch
	Cycle
)

// SetupIssue is one violation found by Pipeline.SetupPipeline.
type SetupIssue struct {
	Process string
	Port    string
	Detail  string
	Kind    IssueKind
}

func (i *SetupIssue) sentinel() error {
	switch i.Kind {
	case NoProcesses:
		return ErrNoProcesses
	case MissingInputConnection, MissingOutputConnection:
		return ErrMissingConnection
	case UnresolvedPortType:
		return ErrUnresolvedPortType
	case FlowTypeMismatch:
		return ErrPortTypeMismatch
	case Cycle:
		return ErrCycle
	}

	return ErrSetupFailed
}

func (i *SetupIssue) Error() string {
	msg := i.sentinel().Error()
	if i.Process != "" {
		msg += ": " + i.Process
		if i.Port != "" {
			msg += "." + i.Port
		}
	}

	if i.Detail != "" {
		msg += " (" + i.Detail + ")"
	}

	return msg
}

func (i *SetupIssue) Is(target error) bool {
	return target == i.sentinel()
}

// SetupError aggregates every issue found while setting up a pipeline.
type SetupError struct {
	Issues []*SetupIssue
}

func (e *SetupError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.Error()
	}

	return fmt.Sprintf("%s: %d issue(s): %s", ErrSetupFailed, len(e.Issues), strings.Join(msgs, "; "))
}

func (e *SetupError) Is(target error) bool {
	return target == ErrSetupFailed
}

func (e *SetupError) Unwrap() []error {
	errs := make([]error, len(e.Issues))
	for i, issue := range e.Issues {
		errs[i] = issue
	}

	return errs
}
