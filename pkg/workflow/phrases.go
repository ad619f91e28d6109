package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/aacflow/pkg/domain"
)

// LoadRecentPhrases reads the newest phrases of the user, oldest first.
// When the list is empty it falls back to a JSON array stored as a plain value
// under the same key. Store and decode failures yield no phrases; the run goes on.
func (n *Nodes) LoadRecentPhrases(ctx context.Context, s domain.WorkflowState) (domain.WorkflowState, error) {
	key := n.Key(s.UserID)

	phrases, err := n.source.Range(ctx, key, -int64(n.window), -1)
	if err != nil {
		n.logger.WarnContext(ctx, "phrase list read failed", "key", key, "error", err)
		phrases = nil
	}
	if len(phrases) == 0 {
		phrases = n.loadLegacy(ctx, key)
	}

	s.RawPhrases = phrases
	if s.RawPhrases == nil {
		s.RawPhrases = []string{}
	}
	return s, nil
}

func (n *Nodes) loadLegacy(ctx context.Context, key string) []string {
	raw, ok, err := n.source.Get(ctx, key)
	if err != nil {
		n.logger.WarnContext(ctx, "phrase value read failed", "key", key, "error", err)
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	phrases, err := DecodePhrases(raw)
	if err != nil {
		n.logger.WarnContext(ctx, "phrase value is not a JSON array", "key", key, "error", err)
		return nil
	}
	return phrases
}

// DecodePhrases decodes a JSON array, coercing every element to a string.
func DecodePhrases(raw string) ([]string, error) {
	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
			continue
		}
		out = append(out, fmt.Sprint(item))
	}
	return out, nil
}
