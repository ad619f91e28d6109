// Package workflow defines the AAC sentence workflow: the node steps, their
// routers and the graph that joins them.
//
// A run reads the user's recent gesture phrases, collapses repeats, classifies
// the intent and then follows one of two tracks. The emergency track
// regenerates until the verifier answers OK. The normal track verifies the
// draft, then refines and re-verifies it. Both tracks share the state's
// attempt budget; once it is spent the best_effort node emits the last checked
// sentence flagged as unverified.
package workflow
