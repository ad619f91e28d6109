package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/aacflow/pkg/domain"
)

// EmergencyCheck verifies the emergency draft.
func (n *Nodes) EmergencyCheck(ctx context.Context, s domain.WorkflowState) (domain.WorkflowState, error) {
	return n.check(ctx, s, domain.TrackEmergency, EmergencyCheckPrompt, s.DraftSentence)
}

// NormalCheck verifies the refined sentence, or the draft when no refinement ran yet.
func (n *Nodes) NormalCheck(ctx context.Context, s domain.WorkflowState) (domain.WorkflowState, error) {
	return n.check(ctx, s, domain.TrackNormal, NormalCheckPrompt, CheckedSentence(s))
}

// CheckedSentence returns the sentence the normal track verifies.
func CheckedSentence(s domain.WorkflowState) string {
	if s.RefinedSentence != "" {
		return s.RefinedSentence
	}
	return s.DraftSentence
}

func (n *Nodes) check(ctx context.Context, s domain.WorkflowState, track domain.Track, tmpl PromptTemplate, sentence string) (domain.WorkflowState, error) {
	prompt, err := n.prompts.Render(tmpl, nil, sentence)
	if err != nil {
		return s, err
	}

	reply, err := n.verifier.Chat(ctx, prompt)
	if err != nil {
		return s, fmt.Errorf("verification: %w", err)
	}

	status := track.ParseVerdict(CleanVerdict(reply))
	if string(status) != CleanVerdict(reply) {
		n.logger.DebugContext(ctx, "verdict coerced", "track", track, "reply", reply, "status", status)
	}

	s.RuleStatus = status
	s.Attempts++
	if status == domain.StatusOK {
		s.FinalSentence = sentence
	}
	return s, nil
}

// CleanVerdict trims a verifier reply and strips one pair of surrounding quotes,
// since the rubric prompts list the verdicts in quotes.
func CleanVerdict(reply string) string {
	v := strings.TrimSpace(reply)
	if len(v) >= 2 {
		first, last := v[0], v[len(v)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			v = strings.TrimSpace(v[1 : len(v)-1])
		}
	}
	return v
}
