package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/aacflow/pkg/domain"
)

// EmergencyGenerate drafts a short urgent sentence from the phrases.
func (n *Nodes) EmergencyGenerate(ctx context.Context, s domain.WorkflowState) (domain.WorkflowState, error) {
	return n.generate(ctx, s, EmergencyGeneratePrompt)
}

// NormalGenerate drafts an everyday sentence from the phrases.
func (n *Nodes) NormalGenerate(ctx context.Context, s domain.WorkflowState) (domain.WorkflowState, error) {
	return n.generate(ctx, s, NormalGeneratePrompt)
}

func (n *Nodes) generate(ctx context.Context, s domain.WorkflowState, tmpl PromptTemplate) (domain.WorkflowState, error) {
	prompt, err := n.prompts.Render(tmpl, s.NormalizedPhrases, "")
	if err != nil {
		return s, err
	}

	reply, err := n.generator.Chat(ctx, prompt)
	if err != nil {
		return s, fmt.Errorf("generation: %w", err)
	}

	s.DraftSentence = strings.TrimSpace(reply)
	return s, nil
}
