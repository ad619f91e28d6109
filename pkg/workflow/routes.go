package workflow

import "github.com/aretw0/aacflow/pkg/domain"

// RouteIntent sends emergencies to the emergency track.
func RouteIntent(s domain.WorkflowState) string {
	if s.IsEmergency {
		return NodeEmergencyGenerate
	}
	return NodeNormalGenerate
}

// RouteEmergencyCheck regenerates until OK or the attempts run out.
func RouteEmergencyCheck(s domain.WorkflowState) string {
	switch {
	case s.RuleStatus == domain.StatusOK:
		return domain.NodeFinish
	case s.RetriesExhausted():
		return NodeBestEffort
	default:
		return NodeEmergencyGenerate
	}
}

// RouteNormalCheck refines until OK or the attempts run out.
func RouteNormalCheck(s domain.WorkflowState) string {
	switch {
	case s.RuleStatus == domain.StatusOK:
		return domain.NodeFinish
	case s.RetriesExhausted():
		return NodeBestEffort
	default:
		return NodeRefineSentence
	}
}
