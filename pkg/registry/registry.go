// Package registry maps process type names to the factories building them.
//
// A registry is populated once, typically from init functions, and becomes read-only as soon as the
// first process is created from it.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/askiada/go-dataflow/pkg/config"
	"github.com/askiada/go-dataflow/pkg/pipeline"
)

var (
	ErrDuplicateType  = errors.New("process type already registered")
	ErrRegistryFrozen = errors.New("registry is frozen")
	ErrNoSuchType     = errors.New("no such process type")
	ErrNilFactory     = errors.New("nil factory")
	ErrFactoryFailed  = errors.New("process factory failed")
)

// Factory builds a process called name from its configuration block.
type Factory func(name string, cfg config.Config) (pipeline.Process, error)

// Registry is safe for concurrent use.
type Registry struct {
	logger *zap.Logger

	mu        sync.RWMutex
	factories map[string]Factory
	frozen    bool
}

type Option func(r *Registry)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func New(opts ...Option) *Registry {
	r := &Registry{
		logger:    zap.NewNop(),
		factories: make(map[string]Factory),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register binds typ to factory.
func (r *Registry) Register(typ string, factory Factory) error {
	if factory == nil {
		return errors.Wrapf(ErrNilFactory, "unable to register %q", typ)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return errors.Wrapf(ErrRegistryFrozen, "unable to register %q", typ)
	}

	if _, ok := r.factories[typ]; ok {
		return errors.Wrapf(ErrDuplicateType, "%q", typ)
	}

	r.factories[typ] = factory

	r.logger.Debug("process type registered", zap.String("type", typ))

	return nil
}

// Freeze forbids further registrations.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frozen = true
}

func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.frozen
}

// Create builds a process of type typ. The first call freezes the registry.
func (r *Registry) Create(typ, name string, cfg config.Config) (pipeline.Process, error) {
	r.mu.Lock()
	r.frozen = true
	factory, ok := r.factories[typ]
	r.mu.Unlock()

	if !ok {
		return nil, errors.Wrapf(ErrNoSuchType, "%q", typ)
	}

	if cfg == nil {
		cfg = config.Empty()
	}

	proc, err := factory(name, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: type %q, process %q: %w", ErrFactoryFailed, typ, name, err)
	}

	if proc == nil {
		return nil, errors.Wrapf(ErrFactoryFailed, "type %q, process %q: factory returned no process", typ, name)
	}

	return proc, nil
}

// Types returns the registered type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for typ := range r.factories {
		types = append(types, typ)
	}

	sort.Strings(types)

	return types
}

// AddToPipeline creates a process and adds it to pipe in one step.
func (r *Registry) AddToPipeline(pipe *pipeline.Pipeline, typ, name string, cfg config.Config) (pipeline.Process, error) {
	proc, err := r.Create(typ, name, cfg)
	if err != nil {
		return nil, err
	}

	err = pipe.AddProcess(proc)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to add %q", name)
	}

	return proc, nil
}
