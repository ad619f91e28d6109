package workflow

import (
	"github.com/aretw0/aacflow/pkg/domain"
	"github.com/aretw0/aacflow/pkg/dsl"
)

// Build assembles the sentence workflow graph.
func Build(deps Deps) (*domain.Graph, error) {
	n, err := NewNodes(deps)
	if err != nil {
		return nil, err
	}
	return n.Graph()
}

// Graph wires the nodes into the workflow graph.
func (n *Nodes) Graph() (*domain.Graph, error) {
	b := dsl.New()

	b.Add(NodeLoadRecentPhrases).
		Describe("Read the most recent phrase tokens of the user").
		Reads(domain.FieldUserID).
		Writes(domain.FieldRawPhrases).
		Do(n.LoadRecentPhrases).
		Go(NodeNormalizePhrases)

	b.Add(NodeNormalizePhrases).
		Describe("Collapse consecutive duplicate tokens").
		Reads(domain.FieldRawPhrases).
		Writes(domain.FieldNormalizedPhrases).
		Do(n.NormalizePhrases).
		Go(NodeIntentClassifier)

	b.Add(NodeIntentClassifier).
		Describe("Classify the intent of the phrases").
		Reads(domain.FieldNormalizedPhrases).
		Writes(domain.FieldIntent, domain.FieldIsEmergency).
		Do(n.ClassifyIntent).
		Branch("is_emergency", NodeEmergencyGenerate).
		Branch("else", NodeNormalGenerate).
		Route(RouteIntent)

	b.Add(NodeEmergencyGenerate).
		Describe("Draft a short urgent sentence").
		Reads(domain.FieldNormalizedPhrases).
		Writes(domain.FieldDraftSentence).
		Do(n.EmergencyGenerate).
		Go(NodeEmergencyCheck)

	b.Add(NodeEmergencyCheck).
		Describe("Verify the emergency draft").
		Reads(domain.FieldDraftSentence, domain.FieldAttempts).
		Writes(domain.FieldRuleStatus, domain.FieldAttempts, domain.FieldFinalSentence).
		Do(n.EmergencyCheck).
		Branch("OK", domain.NodeFinish).
		Branch("exhausted", NodeBestEffort).
		Branch("retry", NodeEmergencyGenerate).
		Route(RouteEmergencyCheck)

	b.Add(NodeNormalGenerate).
		Describe("Draft an everyday sentence").
		Reads(domain.FieldNormalizedPhrases).
		Writes(domain.FieldDraftSentence).
		Do(n.NormalGenerate).
		Go(NodeNormalCheck)

	b.Add(NodeRefineSentence).
		Describe("Rewrite the draft more politely and simply").
		Reads(domain.FieldDraftSentence).
		Writes(domain.FieldRefinedSentence).
		Do(n.RefineSentence).
		Go(NodeNormalCheck)

	b.Add(NodeNormalCheck).
		Describe("Verify the refined sentence, or the draft").
		Reads(domain.FieldDraftSentence, domain.FieldRefinedSentence, domain.FieldAttempts).
		Writes(domain.FieldRuleStatus, domain.FieldAttempts, domain.FieldFinalSentence).
		Do(n.NormalCheck).
		Branch("OK", domain.NodeFinish).
		Branch("exhausted", NodeBestEffort).
		Branch("retry", NodeRefineSentence).
		Route(RouteNormalCheck)

	b.Add(NodeBestEffort).
		Describe("Emit the last checked sentence as unverified").
		Reads(domain.FieldIsEmergency, domain.FieldDraftSentence, domain.FieldRefinedSentence, domain.FieldRuleStatus, domain.FieldAttempts).
		Writes(domain.FieldFinalSentence, domain.FieldUnverified).
		Do(n.BestEffort).
		Finish()

	return b.Build()
}
