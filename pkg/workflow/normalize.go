package workflow

import (
	"context"

	"github.com/aretw0/aacflow/pkg/domain"
)

// NormalizePhrases collapses runs of identical consecutive tokens.
func (n *Nodes) NormalizePhrases(_ context.Context, s domain.WorkflowState) (domain.WorkflowState, error) {
	s.NormalizedPhrases = Normalize(s.RawPhrases)
	return s, nil
}

// Normalize keeps the first token of every run of equal neighbours.
// Non-adjacent repeats survive: [a a b a] becomes [a b a].
func Normalize(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if len(out) > 0 && out[len(out)-1] == t {
			continue
		}
		out = append(out, t)
	}
	return out
}
