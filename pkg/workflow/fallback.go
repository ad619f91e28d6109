package workflow

import (
	"context"

	"github.com/aretw0/aacflow/pkg/domain"
)

// BestEffort ends a run whose verification budget is spent. It keeps an
// earlier accepted sentence if there is one, otherwise it emits the last
// checked sentence and marks the result unverified.
func (n *Nodes) BestEffort(ctx context.Context, s domain.WorkflowState) (domain.WorkflowState, error) {
	if s.FinalSentence == "" {
		if s.IsEmergency {
			s.FinalSentence = s.DraftSentence
		} else {
			s.FinalSentence = CheckedSentence(s)
		}
	}
	s.Unverified = true

	n.logger.WarnContext(ctx, "verification budget exhausted",
		"run_id", s.RunID,
		"attempts", s.Attempts,
		"rule_status", s.RuleStatus,
	)
	return s, nil
}
