package drawer

import (
	"github.com/askiada/go-dataflow/pkg/pipeline"
	"github.com/askiada/go-dataflow/pkg/pipeline/model"
)

// Source is the read-only view of a pipeline needed to draw it. *pipeline.Pipeline implements it.
type Source interface {
	// ProcessNames returns the process names in insertion order.
	ProcessNames() []string
	// ProcessByName returns the process registered under name.
	ProcessByName(name string) (pipeline.Process, error)
	// ReceiversForPort returns the input ports fed by an output port.
	ReceiversForPort(name, port string) []model.PortAddr
}

var _ Source = (*pipeline.Pipeline)(nil)
