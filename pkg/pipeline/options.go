package pipeline

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/askiada/go-dataflow/pkg/config"
	"github.com/askiada/go-dataflow/pkg/pipeline/measure"
)

type PipelineOption func(p *Pipeline)

// PipelineLogger sets the logger used during assembly and setup, and by the edges.
func PipelineLogger(logger *zap.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// PipelineMeasure records transport metrics for every edge created by Connect.
func PipelineMeasure(msr measure.Measure) PipelineOption {
	return func(p *Pipeline) {
		p.measure = msr
	}
}

// PipelineEdgeOptions applies opts to every edge created by Connect, before the options given to
// Connect itself.
func PipelineEdgeOptions(opts ...EdgeOption) PipelineOption {
	return func(p *Pipeline) {
		p.edgeOpts = append(p.edgeOpts, opts...)
	}
}

// PipelineEdgeConfig reads default edge settings from cfg, see EdgeOptionsFromConfig.
// A bad value makes every Connect fail.
func PipelineEdgeConfig(cfg config.Config) PipelineOption {
	return func(p *Pipeline) {
		p.edgeConfig = cfg
	}
}

type EdgeOption func(e *Edge)

// EdgeCapacity bounds the edge. 0 means unbounded.
func EdgeCapacity(capacity int) EdgeOption {
	return func(e *Edge) {
		e.capacity = capacity
	}
}

// EdgeFullPolicy picks what happens when pushing to a full bounded edge.
func EdgeFullPolicy(policy FullPolicy) EdgeOption {
	return func(e *Edge) {
		e.policy = policy
	}
}

// EdgeDependency makes the edge an ordering constraint only.
func EdgeDependency() EdgeOption {
	return func(e *Edge) {
		e.dependency.Store(true)
	}
}

func EdgeNotRequiredByDownstream() EdgeOption {
	return func(e *Edge) {
		e.required.Store(false)
	}
}

func EdgeMetric(mt measure.Metric) EdgeOption {
	return func(e *Edge) {
		e.metric = mt
	}
}

func EdgeLogger(logger *zap.Logger) EdgeOption {
	return func(e *Edge) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func edgeName(name string) EdgeOption {
	return func(e *Edge) {
		e.name = name
	}
}

// Edge configuration keys understood by EdgeOptionsFromConfig.
const (
	EdgeConfigCapacity             = "capacity"
	EdgeConfigFullPolicy           = "full_policy"
	EdgeConfigDependency           = "dependency"
	EdgeConfigRequiredByDownstream = "required_by_downstream"
)

// EdgeOptionsFromConfig turns an edge configuration block into options. Absent keys produce no
// option, so the result can be layered over other defaults.
func EdgeOptionsFromConfig(cfg config.Config) ([]EdgeOption, error) {
	opts := []EdgeOption{}

	if cfg.Has(EdgeConfigCapacity) {
		capacity, err := cfg.Int(EdgeConfigCapacity, 0)
		if err != nil {
			return nil, errors.Wrap(ErrBadEdgeConfig, err.Error())
		}

		opts = append(opts, EdgeCapacity(capacity))
	}

	if cfg.Has(EdgeConfigFullPolicy) {
		policy, err := ParseFullPolicy(cfg.GetOr(EdgeConfigFullPolicy, ""))
		if err != nil {
			return nil, err
		}

		opts = append(opts, EdgeFullPolicy(policy))
	}

	dependency, err := cfg.Bool(EdgeConfigDependency, false)
	if err != nil {
		return nil, errors.Wrap(ErrBadEdgeConfig, err.Error())
	}

	if dependency {
		opts = append(opts, EdgeDependency())
	}

	required, err := cfg.Bool(EdgeConfigRequiredByDownstream, true)
	if err != nil {
		return nil, errors.Wrap(ErrBadEdgeConfig, err.Error())
	}

	if !required {
		opts = append(opts, EdgeNotRequiredByDownstream())
	}

	return opts, nil
}
