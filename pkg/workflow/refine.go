package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/aacflow/pkg/domain"
)

// RefineSentence rewrites the draft to be more polite and simpler.
// It always starts from the draft, never from an earlier refinement.
func (n *Nodes) RefineSentence(ctx context.Context, s domain.WorkflowState) (domain.WorkflowState, error) {
	prompt, err := n.prompts.Render(RefineSentencePrompt, nil, s.DraftSentence)
	if err != nil {
		return s, err
	}

	reply, err := n.generator.Chat(ctx, prompt)
	if err != nil {
		return s, fmt.Errorf("refinement: %w", err)
	}

	s.RefinedSentence = strings.TrimSpace(reply)
	return s, nil
}
