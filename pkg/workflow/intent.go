package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/aacflow/pkg/domain"
)

// ClassifyIntent asks the generation provider for the intent of the phrases.
func (n *Nodes) ClassifyIntent(ctx context.Context, s domain.WorkflowState) (domain.WorkflowState, error) {
	prompt, err := n.prompts.Render(IntentPrompt, s.NormalizedPhrases, "")
	if err != nil {
		return s, err
	}

	reply, err := n.generator.Chat(ctx, prompt)
	if err != nil {
		return s, fmt.Errorf("intent classification: %w", err)
	}

	s.Intent = ParseIntentReply(reply)
	s.IsEmergency = s.Intent == domain.IntentEmergency
	return s, nil
}

// ParseIntentReply extracts the intent label from a provider reply.
// A JSON object is read through its "intent" key; anything that is not a JSON
// object is matched as a bare label. Every other outcome is OTHER.
func ParseIntentReply(reply string) domain.Intent {
	var obj map[string]any
	if err := json.Unmarshal([]byte(reply), &obj); err == nil {
		raw, ok := obj["intent"]
		if !ok || raw == nil {
			return domain.IntentOther
		}
		if intent, ok := domain.ParseIntent(fmt.Sprint(raw)); ok {
			return intent
		}
		return domain.IntentOther
	}

	if intent, ok := domain.ParseIntent(strings.TrimSpace(reply)); ok {
		return intent
	}
	return domain.IntentOther
}
