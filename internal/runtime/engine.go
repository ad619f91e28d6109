package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/aacflow/internal/logging"
	"github.com/aretw0/aacflow/pkg/domain"
)

// DefaultMaxSteps is the ceiling on node invocations per run.
// The verification budget already bounds the retry cycles; this guards against
// graphs that loop without touching it.
const DefaultMaxSteps = 64

// Engine executes a compiled graph against a WorkflowState.
// An Engine is stateless between runs and safe for concurrent use.
type Engine struct {
	graph    *domain.Graph
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	maxSteps int
	now      func() time.Time
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMaxSteps overrides DefaultMaxSteps.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// WithClock sets the time source used for trace timestamps and durations.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine for graph.
func NewEngine(graph *domain.Graph, opts ...Option) *Engine {
	e := &Engine{
		graph:    graph,
		logger:   logging.NewNop(),
		maxSteps: DefaultMaxSteps,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph returns the graph the engine executes.
func (e *Engine) Graph() *domain.Graph {
	return e.graph
}

// Execute runs the graph from node `from` (the graph entry when empty) until a
// router selects the terminal node. The returned state is always the latest
// one, including the trace entry of a failing node.
func (e *Engine) Execute(ctx context.Context, state domain.WorkflowState, from string) (domain.WorkflowState, error) {
	current := from
	if current == "" {
		current = e.graph.Entry()
	}

	e.logger.DebugContext(ctx, "run started", "run_id", state.RunID, "user_id", state.UserID, "entry", current)

	for steps := 0; current != domain.NodeFinish; steps++ {
		if steps >= e.maxSteps {
			return state, fmt.Errorf("%w: %d invocations, stopped before %q", domain.ErrStepLimit, steps, current)
		}
		if err := ctx.Err(); err != nil {
			return state, err
		}

		node, ok := e.graph.Node(current)
		if !ok {
			return state, fmt.Errorf("%w: %q", domain.ErrUnknownNode, current)
		}

		next, target, err := e.invoke(ctx, node, state)
		state = next
		if err != nil {
			return state, err
		}
		current = target
	}

	e.logger.DebugContext(ctx, "run finished",
		"run_id", state.RunID,
		"steps", len(state.DebugTrace),
		"attempts", state.Attempts,
		"rule_status", state.RuleStatus,
	)
	return state, nil
}

// invoke runs a single node and resolves where the run goes next.
func (e *Engine) invoke(ctx context.Context, node domain.Node, state domain.WorkflowState) (domain.WorkflowState, string, error) {
	start := e.now()
	e.emitNodeEnter(ctx, state.RunID, node.ID)

	nodeCtx := domain.WithRunInfo(ctx, domain.RunInfo{RunID: state.RunID, NodeID: node.ID})
	step := Trace(node, Enforce(node), e.now)

	next, err := step(nodeCtx, state)
	if err != nil {
		e.emitNodeLeave(ctx, state, next, node.ID, "", e.now().Sub(start), true)
		e.logger.WarnContext(ctx, "node failed", "run_id", state.RunID, "node", node.ID, "error", err)
		return next, "", &NodeError{NodeID: node.ID, Err: err, State: next}
	}

	target, err := resolve(node, next)
	if err != nil {
		e.emitNodeLeave(ctx, state, next, node.ID, "", e.now().Sub(start), true)
		return next, "", err
	}

	elapsed := e.now().Sub(start)
	e.emitNodeLeave(ctx, state, next, node.ID, target, elapsed, false)
	e.logger.DebugContext(ctx, "node executed", "run_id", state.RunID, "node", node.ID, "next", target, "duration", elapsed)
	return next, target, nil
}

// resolve applies the node's router. A node without transitions ends the run.
func resolve(node domain.Node, state domain.WorkflowState) (string, error) {
	if len(node.Transitions) == 0 {
		return domain.NodeFinish, nil
	}
	if node.Route == nil {
		return node.Transitions[0].ToNodeID, nil
	}

	target := node.Route(state)
	if !node.CanReach(target) {
		return "", fmt.Errorf("%w: node %q routed to %q, declared %v", domain.ErrInvalidRoute, node.ID, target, node.Targets())
	}
	return target, nil
}
