package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/askiada/go-dataflow/pkg/pipeline/measure"
	"github.com/askiada/go-dataflow/pkg/pipeline/model"
)

// FullPolicy decides what PushDatum does when a bounded edge is full.
type FullPolicy int

const (
	// FullPolicyBlock makes the producer wait until the consumer frees a slot.
	FullPolicyBlock FullPolicy = iota
	// FullPolicyDropOldest discards the head of the queue to make room for the new datum.
	FullPolicyDropOldest
	// FullPolicyDropNewest discards the datum being pushed.
	FullPolicyDropNewest
)

func (fp FullPolicy) String() string {
	switch fp {
	case FullPolicyBlock:
		return "block"
	case FullPolicyDropOldest:
		return "drop_oldest"
	case FullPolicyDropNewest:
		return "drop_newest"
	default:
		return fmt.Sprintf("unknown(%d)", int(fp))
	}
}

// ParseFullPolicy reads the names returned by FullPolicy.String.
func ParseFullPolicy(s string) (FullPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "block", "":
		return FullPolicyBlock, nil
	case "drop_oldest":
		return FullPolicyDropOldest, nil
	case "drop_newest":
		return FullPolicyDropNewest, nil
	}

	return 0, errors.Wrapf(ErrBadEdgeConfig, "unknown full policy %q", s)
}

// Edge is a FIFO of (datum, stamp) pairs between one output port and one input port.
// It is safe for one producer and one consumer running concurrently.
type Edge struct {
	name       string
	capacity   int
	policy     FullPolicy
	dependency atomic.Bool
	required   atomic.Bool
	// frozen is set once the owning pipeline is set up.
	frozen atomic.Bool
	metric measure.Metric
	logger *zap.Logger

	mu    sync.Mutex
	queue []model.EdgeDatum
	// slots holds one unit per queued datum when the edge is bounded.
	slots *semaphore.Weighted

	bindMu        sync.Mutex
	upstream      string
	downstream    string
	hasUpstream   bool
	hasDownstream bool
}

// NewEdge creates an unbound edge. Without options the edge is unbounded and required by downstream.
func NewEdge(opts ...EdgeOption) (*Edge, error) {
	e := &Edge{
		logger: zap.NewNop(),
	}
	e.required.Store(true)

	for _, opt := range opts {
		opt(e)
	}

	if e.capacity < 0 {
		return nil, errors.Wrapf(ErrBadEdgeConfig, "negative capacity %d", e.capacity)
	}

	if e.policy < FullPolicyBlock || e.policy > FullPolicyDropNewest {
		return nil, errors.Wrapf(ErrBadEdgeConfig, "unknown full policy %d", int(e.policy))
	}

	if e.capacity == 0 && e.policy != FullPolicyBlock {
		return nil, errors.Wrapf(ErrBadEdgeConfig, "%s needs a capacity", e.policy)
	}

	if e.capacity > 0 {
		e.slots = semaphore.NewWeighted(int64(e.capacity))
	}

	return e, nil
}

// Name returns "upstream.port->downstream.port" for edges created by a pipeline.
func (e *Edge) Name() string {
	return e.name
}

// Capacity returns the maximum number of queued datums, 0 when unbounded.
func (e *Edge) Capacity() int {
	return e.capacity
}

// FullPolicy returns what PushDatum does on a full bounded edge.
func (e *Edge) FullPolicy() FullPolicy {
	return e.policy
}

// PushDatum appends ed to the edge. On a full edge it blocks or drops according to the full policy.
func (e *Edge) PushDatum(ed model.EdgeDatum) {
	// Acquire with a background context only fails if the context is done.
	_ = e.PushDatumContext(context.Background(), ed)
}

// PushDatumContext is PushDatum with a way out: a producer blocked on a full edge gives up when ctx
// is done, leaving the edge untouched.
func (e *Edge) PushDatumContext(ctx context.Context, ed model.EdgeDatum) error {
	if e.slots == nil {
		e.mu.Lock()
		e.enqueue(ed)
		e.mu.Unlock()

		return nil
	}

	switch e.policy {
	case FullPolicyDropNewest:
		e.mu.Lock()
		defer e.mu.Unlock()

		if !e.slots.TryAcquire(1) {
			e.dropped(ed, "newest")

			return nil
		}

		e.enqueue(ed)
	case FullPolicyDropOldest:
		e.mu.Lock()
		defer e.mu.Unlock()

		if !e.slots.TryAcquire(1) {
			// The slot of the discarded head is reused by ed.
			head := e.queue[0]
			e.queue[0] = model.EdgeDatum{}
			e.queue = e.queue[1:]
			e.dropped(head, "oldest")
		}

		e.enqueue(ed)
	default:
		if !e.slots.TryAcquire(1) {
			start := time.Now()

			err := e.slots.Acquire(ctx, 1)
			if err != nil {
				return errors.Wrapf(err, "push to edge %q abandoned", e.name)
			}

			if e.metric != nil {
				e.metric.AddBlockedDuration(time.Since(start))
			}
		}

		e.mu.Lock()
		e.enqueue(ed)
		e.mu.Unlock()
	}

	return nil
}

// enqueue must be called with e.mu held.
func (e *Edge) enqueue(ed model.EdgeDatum) {
	e.queue = append(e.queue, ed)

	if e.metric != nil {
		e.metric.AddPush()
		e.metric.SetDepth(len(e.queue))
	}
}

// dequeue must be called with e.mu held on a non empty queue.
func (e *Edge) dequeue() model.EdgeDatum {
	head := e.queue[0]
	e.queue[0] = model.EdgeDatum{}
	e.queue = e.queue[1:]

	if e.slots != nil {
		e.slots.Release(1)
	}

	if e.metric != nil {
		e.metric.AddPop()
		e.metric.SetDepth(len(e.queue))
	}

	return head
}

func (e *Edge) dropped(ed model.EdgeDatum, which string) {
	if e.metric != nil {
		e.metric.AddDrop()
	}

	e.logger.Debug("edge full, datum dropped",
		zap.String("edge", e.name),
		zap.String("dropped", which),
		zap.Stringer("stamp", ed.Stamp))
}

// PeekDatum returns the head of the edge without removing it.
func (e *Edge) PeekDatum() (model.EdgeDatum, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.queue) == 0 {
		return model.EdgeDatum{}, errors.Wrapf(ErrEmptyEdge, "peek on %q", e.name)
	}

	return e.queue[0], nil
}

// PopDatum removes the head of the edge.
func (e *Edge) PopDatum() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.queue) == 0 {
		return errors.Wrapf(ErrEmptyEdge, "pop on %q", e.name)
	}

	e.dequeue()

	return nil
}

// GetDatum removes and returns the head of the edge in a single step.
func (e *Edge) GetDatum() (model.EdgeDatum, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.queue) == 0 {
		return model.EdgeDatum{}, errors.Wrapf(ErrEmptyEdge, "get on %q", e.name)
	}

	return e.dequeue(), nil
}

// DatumCount returns the number of queued datums.
func (e *Edge) DatumCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.queue)
}

// HasData reports whether at least one datum is queued.
func (e *Edge) HasData() bool {
	return e.DatumCount() > 0
}

// FullOfData reports whether a bounded edge has reached its capacity. Unbounded edges are never full.
func (e *Edge) FullOfData() bool {
	if e.capacity == 0 {
		return false
	}

	return e.DatumCount() >= e.capacity
}

// SetRequiredByDownstream tells the scheduler whether running out of data on this edge is fatal
// for the downstream process (true) or an expected completion (false).
func (e *Edge) SetRequiredByDownstream(required bool) {
	e.required.Store(required)
}

// RequiredByDownstream reports whether the downstream process needs data from this edge. Defaults to true.
func (e *Edge) RequiredByDownstream() bool {
	return e.required.Load()
}

// MarkDependency turns the edge into an ordering constraint that carries no data contract. It fails
// with ErrPipelineRunning once the pipeline owning the edge is set up.
func (e *Edge) MarkDependency() error {
	if e.frozen.Load() {
		return errors.Wrapf(ErrPipelineRunning, "unable to mark %q as a dependency", e.name)
	}

	e.dependency.Store(true)

	return nil
}

// MakesDependency reports whether the edge is an ordering constraint only.
func (e *Edge) MakesDependency() bool {
	return e.dependency.Load()
}

// SetUpstreamProcess binds the producer of the edge. It can only succeed once.
func (e *Edge) SetUpstreamProcess(p Process) error {
	if isNilProcess(p) {
		return &BindingError{Kind: NullProcessConnection, Edge: e.name}
	}

	e.bindMu.Lock()
	defer e.bindMu.Unlock()

	if e.hasUpstream {
		return &BindingError{Kind: InputAlreadyConnected, Edge: e.name, Process: p.Name(), Bound: e.upstream}
	}

	e.upstream = p.Name()
	e.hasUpstream = true

	return nil
}

// SetDownstreamProcess binds the consumer of the edge. It can only succeed once.
func (e *Edge) SetDownstreamProcess(p Process) error {
	if isNilProcess(p) {
		return &BindingError{Kind: NullProcessConnection, Edge: e.name}
	}

	e.bindMu.Lock()
	defer e.bindMu.Unlock()

	if e.hasDownstream {
		return &BindingError{Kind: OutputAlreadyConnected, Edge: e.name, Process: p.Name(), Bound: e.downstream}
	}

	e.downstream = p.Name()
	e.hasDownstream = true

	return nil
}

// freeze locks the topology related state of the edge.
func (e *Edge) freeze() {
	e.frozen.Store(true)
}

// UpstreamProcess returns the name of the bound producer and whether one is bound.
func (e *Edge) UpstreamProcess() (string, bool) {
	e.bindMu.Lock()
	defer e.bindMu.Unlock()

	return e.upstream, e.hasUpstream
}

// DownstreamProcess returns the name of the bound consumer and whether one is bound.
func (e *Edge) DownstreamProcess() (string, bool) {
	e.bindMu.Lock()
	defer e.bindMu.Unlock()

	return e.downstream, e.hasDownstream
}
