package llm

import (
	"context"
	"time"

	"github.com/aretw0/aacflow/pkg/domain"
	"github.com/aretw0/aacflow/pkg/ports"
)

// Role names used in provider events.
const (
	RoleGenerator = "generator"
	RoleVerifier  = "verifier"
)

// Observed emits provider lifecycle events around every call.
type Observed struct {
	next  ports.ChatProvider
	role  string
	hooks domain.LifecycleHooks
	now   func() time.Time
}

// NewObserved wraps next. Events are labelled with role and with the run
// information found in the call context.
func NewObserved(next ports.ChatProvider, role string, hooks domain.LifecycleHooks) *Observed {
	return &Observed{next: next, role: role, hooks: hooks, now: time.Now}
}

// Chat delegates to the wrapped provider.
func (o *Observed) Chat(ctx context.Context, prompt string) (string, error) {
	info := domain.RunInfoFrom(ctx)
	start := o.now()

	if o.hooks.OnProviderCall != nil {
		o.hooks.OnProviderCall(ctx, &domain.ProviderEvent{
			EventBase: domain.EventBase{Timestamp: start, Type: domain.EventProviderCall, RunID: info.RunID},
			NodeID:    info.NodeID,
			Role:      o.role,
			Prompt:    prompt,
		})
	}

	reply, err := o.next.Chat(ctx, prompt)

	if o.hooks.OnProviderReturn != nil {
		end := o.now()
		o.hooks.OnProviderReturn(ctx, &domain.ProviderEvent{
			EventBase: domain.EventBase{Timestamp: end, Type: domain.EventProviderReturn, RunID: info.RunID},
			NodeID:    info.NodeID,
			Role:      o.role,
			Reply:     reply,
			Duration:  end.Sub(start),
			IsError:   err != nil,
		})
	}

	return reply, err
}
