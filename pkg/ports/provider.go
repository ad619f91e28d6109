package ports

import "context"

// ChatProvider is a blocking request/response text generator.
// Replies may be malformed; callers are expected to parse defensively.
type ChatProvider interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

// ChatProviderFunc adapts an ordinary function to ChatProvider.
type ChatProviderFunc func(ctx context.Context, prompt string) (string, error)

// Chat calls f(ctx, prompt).
func (f ChatProviderFunc) Chat(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
