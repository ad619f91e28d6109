package domain

import (
	"slices"
	"time"
)

// DefaultMaxAttempts bounds the verification retries of a single run.
const DefaultMaxAttempts = 3

// Field names of WorkflowState, as used by node contracts, trace snapshots and JSON.
const (
	FieldRunID             = "run_id"
	FieldUserID            = "user_id"
	FieldRawPhrases        = "raw_phrases"
	FieldNormalizedPhrases = "normalized_phrases"
	FieldIntent            = "intent"
	FieldIsEmergency       = "is_emergency"
	FieldDraftSentence     = "draft_sentence"
	FieldRefinedSentence   = "refined_sentence"
	FieldRuleStatus        = "rule_status"
	FieldFinalSentence     = "final_sentence"
	FieldAttempts          = "attempts"
	FieldMaxAttempts       = "max_attempts"
	FieldUnverified        = "unverified"
	FieldDebugTrace        = "debug_trace"
)

// stateFields is the canonical field order used by ChangedFields.
var stateFields = []string{
	FieldRunID,
	FieldUserID,
	FieldRawPhrases,
	FieldNormalizedPhrases,
	FieldIntent,
	FieldIsEmergency,
	FieldDraftSentence,
	FieldRefinedSentence,
	FieldRuleStatus,
	FieldFinalSentence,
	FieldAttempts,
	FieldMaxAttempts,
	FieldUnverified,
	FieldDebugTrace,
}

// WorkflowState is the record threaded through every node of a run.
// It is passed by value; nodes return a modified copy and never mutate
// the value they were given.
type WorkflowState struct {
	RunID  string `json:"run_id"`
	UserID string `json:"user_id"`

	RawPhrases        []string `json:"raw_phrases"`
	NormalizedPhrases []string `json:"normalized_phrases"`

	Intent      Intent `json:"intent,omitempty"`
	IsEmergency bool   `json:"is_emergency"`

	DraftSentence   string     `json:"draft_sentence,omitempty"`
	RefinedSentence string     `json:"refined_sentence,omitempty"`
	RuleStatus      RuleStatus `json:"rule_status,omitempty"`

	// FinalSentence is sticky: once set it is never cleared.
	FinalSentence string `json:"final_sentence,omitempty"`

	// Attempts counts verification invocations across the run.
	Attempts    int  `json:"attempts"`
	MaxAttempts int  `json:"max_attempts"`
	Unverified  bool `json:"unverified,omitempty"`

	DebugTrace []TraceEntry `json:"debug_trace"`
}

// NewWorkflowState creates a fresh state for one end-to-end run.
func NewWorkflowState(runID, userID string, maxAttempts int) WorkflowState {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return WorkflowState{
		RunID:       runID,
		UserID:      userID,
		MaxAttempts: maxAttempts,
		DebugTrace:  []TraceEntry{},
	}
}

// Clone returns a copy that shares no slices with s.
func (s WorkflowState) Clone() WorkflowState {
	c := s
	c.RawPhrases = slices.Clone(s.RawPhrases)
	c.NormalizedPhrases = slices.Clone(s.NormalizedPhrases)
	c.DebugTrace = slices.Clone(s.DebugTrace)
	return c
}

// RetriesExhausted reports whether the verification budget is spent.
func (s WorkflowState) RetriesExhausted() bool {
	return s.Attempts >= s.MaxAttempts
}

// Field returns the value of the named field.
func (s WorkflowState) Field(name string) (any, bool) {
	switch name {
	case FieldRunID:
		return s.RunID, true
	case FieldUserID:
		return s.UserID, true
	case FieldRawPhrases:
		return s.RawPhrases, true
	case FieldNormalizedPhrases:
		return s.NormalizedPhrases, true
	case FieldIntent:
		return s.Intent, true
	case FieldIsEmergency:
		return s.IsEmergency, true
	case FieldDraftSentence:
		return s.DraftSentence, true
	case FieldRefinedSentence:
		return s.RefinedSentence, true
	case FieldRuleStatus:
		return s.RuleStatus, true
	case FieldFinalSentence:
		return s.FinalSentence, true
	case FieldAttempts:
		return s.Attempts, true
	case FieldMaxAttempts:
		return s.MaxAttempts, true
	case FieldUnverified:
		return s.Unverified, true
	case FieldDebugTrace:
		return s.DebugTrace, true
	}
	return nil, false
}

// Snapshot copies the named fields into a map suitable for a trace entry.
// Unknown names are ignored.
func (s WorkflowState) Snapshot(fields ...string) map[string]any {
	out := make(map[string]any, len(fields))
	for _, name := range fields {
		v, ok := s.Field(name)
		if !ok {
			continue
		}
		if list, isList := v.([]string); isList {
			v = slices.Clone(list)
		}
		out[name] = v
	}
	return out
}

// TraceEntry is one immutable record of a node invocation.
type TraceEntry struct {
	Step    string         `json:"step" yaml:"step"`
	Inputs  map[string]any `json:"inputs" yaml:"inputs"`
	Outputs map[string]any `json:"outputs" yaml:"outputs"`
	At      time.Time      `json:"at" yaml:"at"`
}

// Result is what a finished run hands back to its caller.
type Result struct {
	RunID         string       `json:"run_id"`
	UserID        string       `json:"user_id"`
	FinalSentence string       `json:"final_sentence"`
	Verified      bool         `json:"verified"`
	Intent        Intent       `json:"intent"`
	Attempts      int          `json:"attempts"`
	Steps         int          `json:"steps"`
	DebugTrace    []TraceEntry `json:"debug_trace"`
}

// NewResult summarises a terminal state.
func NewResult(s WorkflowState) *Result {
	return &Result{
		RunID:         s.RunID,
		UserID:        s.UserID,
		FinalSentence: s.FinalSentence,
		Verified:      s.RuleStatus == StatusOK && !s.Unverified,
		Intent:        s.Intent,
		Attempts:      s.Attempts,
		Steps:         len(s.DebugTrace),
		DebugTrace:    s.DebugTrace,
	}
}
