/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically constructing workflow graphs.

It lets developers define nodes, their state contracts and their routing edges with a
type-safe, fluent builder, and validates the result before it reaches the engine.

Example usage:

	b := dsl.New()

	b.Add("draft").
		Reads(domain.FieldNormalizedPhrases).
		Writes(domain.FieldDraftSentence).
		Do(draftStep).
		Go("check")

	b.Add("check").
		Reads(domain.FieldDraftSentence).
		Writes(domain.FieldRuleStatus, domain.FieldFinalSentence).
		Do(checkStep).
		Branch("OK", domain.NodeFinish).
		Branch("retry", "draft").
		Route(func(s domain.WorkflowState) string {
			if s.RuleStatus == domain.StatusOK {
				return domain.NodeFinish
			}
			return "draft"
		})

	graph, err := b.Build()
*/
package dsl
