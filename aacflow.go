package aacflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/aacflow/internal/logging"
	"github.com/aretw0/aacflow/internal/runtime"
	"github.com/aretw0/aacflow/pkg/adapters/llm"
	"github.com/aretw0/aacflow/pkg/domain"
	"github.com/aretw0/aacflow/pkg/ports"
	"github.com/aretw0/aacflow/pkg/session"
	"github.com/aretw0/aacflow/pkg/workflow"
	"github.com/google/uuid"
)

// ErrNoRecorder is returned by Record when the engine has no phrase recorder.
var ErrNoRecorder = ports.ErrNoRecorder

// Engine is the high-level entry point for the aacflow library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime  *runtime.Engine
	nodes    *workflow.Nodes
	recorder ports.PhraseRecorder
	sessions *session.Manager
	hooks    domain.LifecycleHooks
	logger   *slog.Logger

	maxAttempts int
	maxSteps    int
	keyPrefix   string
	window      int
	language    string
	newRunID    func() string
}

var _ ports.Composer = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxAttempts bounds how many verifications a run may perform.
// Values below 1 keep domain.DefaultMaxAttempts.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		e.maxAttempts = n
	}
}

// WithMaxSteps overrides the runtime's ceiling on node invocations per run.
// The ceiling is never set below workflow.MaxInvocations of the attempt
// budget, so a run that spends its budget still reaches best_effort.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// WithKeyPrefix sets the prefix of the per-user phrase list key (default "phrases:").
func WithKeyPrefix(prefix string) Option {
	return func(e *Engine) {
		e.keyPrefix = prefix
	}
}

// WithWindow sets how many recent phrases a run reads (default 10).
func WithWindow(n int) Option {
	return func(e *Engine) {
		e.window = n
	}
}

// WithLanguage sets the language the providers are asked to write in (default "Korean").
func WithLanguage(language string) Option {
	return func(e *Engine) {
		e.language = language
	}
}

// WithRecorder sets where Record appends tokens. When the phrase source
// implements ports.PhraseRecorder it is used by default.
func WithRecorder(r ports.PhraseRecorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithSessions serializes runs per user through m.
func WithSessions(m *session.Manager) Option {
	return func(e *Engine) {
		e.sessions = m
	}
}

// WithRunIDGenerator replaces the UUID run ID generator.
func WithRunIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		e.newRunID = fn
	}
}

// New initializes a new Engine reading phrases from source, drafting sentences
// with generator and checking them with verifier.
func New(source ports.PhraseSource, generator, verifier ports.ChatProvider, opts ...Option) (*Engine, error) {
	eng := &Engine{
		maxAttempts: domain.DefaultMaxAttempts,
		newRunID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.maxAttempts < 1 {
		eng.maxAttempts = domain.DefaultMaxAttempts
	}
	if eng.maxSteps <= 0 {
		eng.maxSteps = runtime.DefaultMaxSteps
	}
	if need := workflow.MaxInvocations(eng.maxAttempts); eng.maxSteps < need {
		eng.logger.Debug("raising step ceiling to fit the attempt budget", "max_steps", need, "max_attempts", eng.maxAttempts)
		eng.maxSteps = need
	}
	if eng.recorder == nil {
		if r, ok := source.(ports.PhraseRecorder); ok {
			eng.recorder = r
		}
	}

	if generator != nil && (eng.hooks.OnProviderCall != nil || eng.hooks.OnProviderReturn != nil) {
		generator = llm.NewObserved(generator, llm.RoleGenerator, eng.hooks)
	}
	if verifier != nil && (eng.hooks.OnProviderCall != nil || eng.hooks.OnProviderReturn != nil) {
		verifier = llm.NewObserved(verifier, llm.RoleVerifier, eng.hooks)
	}

	nodes, err := workflow.NewNodes(workflow.Deps{
		Source:    source,
		Generator: generator,
		Verifier:  verifier,
		Logger:    eng.logger,
		KeyPrefix: eng.keyPrefix,
		Window:    eng.window,
		Language:  eng.language,
	})
	if err != nil {
		return nil, err
	}
	graph, err := nodes.Graph()
	if err != nil {
		return nil, fmt.Errorf("failed to build workflow graph: %w", err)
	}

	eng.nodes = nodes
	eng.runtime = runtime.NewEngine(graph,
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithMaxSteps(eng.maxSteps),
	)
	return eng, nil
}

// Run loads the user's recent phrases and drives the workflow to a final sentence.
func (e *Engine) Run(ctx context.Context, userID string) (*domain.Result, error) {
	state, err := e.newState(userID)
	if err != nil {
		return nil, err
	}
	return e.execute(ctx, state, workflow.NodeLoadRecentPhrases)
}

// Compose drives the workflow from tokens the caller already holds,
// skipping the phrase store read.
func (e *Engine) Compose(ctx context.Context, userID string, tokens []string) (*domain.Result, error) {
	state, err := e.newState(userID)
	if err != nil {
		return nil, err
	}
	state.RawPhrases = make([]string, len(tokens))
	for i, t := range tokens {
		if state.RawPhrases[i], err = domain.SanitizeToken(t); err != nil {
			return nil, err
		}
	}
	return e.execute(ctx, state, workflow.NodeNormalizePhrases)
}

// Record appends recognised tokens to the user's phrase list.
// Control characters are stripped and blank tokens are dropped.
func (e *Engine) Record(ctx context.Context, userID string, tokens ...string) error {
	if strings.TrimSpace(userID) == "" {
		return domain.ErrEmptyUserID
	}
	if e.recorder == nil {
		return ErrNoRecorder
	}

	clean := make([]string, 0, len(tokens))
	for _, raw := range tokens {
		t, err := domain.SanitizeToken(raw)
		if err != nil {
			return err
		}
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, t)
		}
	}
	if len(clean) == 0 {
		return nil
	}

	if err := e.recorder.Append(ctx, e.nodes.Key(userID), clean...); err != nil {
		return fmt.Errorf("failed to record phrases for %s: %w", userID, err)
	}
	e.logger.DebugContext(ctx, "phrases recorded", "user_id", userID, "count", len(clean))
	return nil
}

// Graph returns the workflow definition for introspection.
func (e *Engine) Graph() *domain.Graph {
	return e.runtime.Graph()
}

func (e *Engine) newState(userID string) (domain.WorkflowState, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.WorkflowState{}, domain.ErrEmptyUserID
	}
	return domain.NewWorkflowState(e.newRunID(), userID, e.maxAttempts), nil
}

func (e *Engine) execute(ctx context.Context, state domain.WorkflowState, from string) (*domain.Result, error) {
	var final domain.WorkflowState
	run := func(ctx context.Context) error {
		var err error
		final, err = e.runtime.Execute(ctx, state, from)
		return err
	}

	var err error
	if e.sessions != nil {
		err = e.sessions.WithLock(ctx, state.UserID, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		e.logger.ErrorContext(ctx, "run failed", "run_id", state.RunID, "user_id", state.UserID, "error", err)
		return nil, err
	}

	res := domain.NewResult(final)
	e.logger.InfoContext(ctx, "sentence composed",
		"run_id", res.RunID,
		"user_id", res.UserID,
		"intent", res.Intent,
		"verified", res.Verified,
		"attempts", res.Attempts,
		"steps", res.Steps,
	)
	return res, nil
}
