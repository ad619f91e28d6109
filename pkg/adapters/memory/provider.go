package memory

import (
	"context"
	"errors"
	"sync"
)

// ErrScriptExhausted is returned when a scripted provider runs out of replies.
var ErrScriptExhausted = errors.New("scripted provider has no replies left")

// Reply is one scripted provider response.
type Reply struct {
	Text string
	Err  error
}

// ScriptedProvider implements ports.ChatProvider by replaying canned replies in order.
// It records every prompt it receives. Safe for concurrent use.
type ScriptedProvider struct {
	mu      sync.Mutex
	replies []Reply
	next    int
	cycle   bool
	prompts []string
}

// NewScriptedProvider creates a provider that answers with texts in order.
func NewScriptedProvider(texts ...string) *ScriptedProvider {
	p := &ScriptedProvider{}
	for _, t := range texts {
		p.replies = append(p.replies, Reply{Text: t})
	}
	return p
}

// NewScriptedProviderWithReplies creates a provider that can also fail on given turns.
func NewScriptedProviderWithReplies(replies ...Reply) *ScriptedProvider {
	return &ScriptedProvider{replies: replies}
}

// Cycle makes the provider start over once every reply was used.
func (p *ScriptedProvider) Cycle() *ScriptedProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cycle = true
	return p
}

// Chat returns the next scripted reply.
func (p *ScriptedProvider) Chat(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.prompts = append(p.prompts, prompt)

	if p.next >= len(p.replies) {
		if !p.cycle || len(p.replies) == 0 {
			return "", ErrScriptExhausted
		}
		p.next = 0
	}
	r := p.replies[p.next]
	p.next++
	return r.Text, r.Err
}

// Prompts returns a copy of every prompt received so far.
func (p *ScriptedProvider) Prompts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.prompts...)
}

// Calls returns how many times Chat was invoked.
func (p *ScriptedProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}
