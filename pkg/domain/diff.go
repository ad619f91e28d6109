package domain

import (
	"reflect"
)

// StateDiff describes the fields a node changed between two states.
// It is designed to be serialized to JSON for debugging tools.
type StateDiff struct {
	RunID string `json:"run_id"`

	// Changed maps each modified field to its new value.
	Changed map[string]any `json:"changed,omitempty"`

	// TraceAppended holds the trace entries added after the old state.
	TraceAppended []TraceEntry `json:"trace_appended,omitempty"`
}

// ChangedFields lists the fields whose values differ between old and new,
// in canonical field order. The debug trace counts as a field.
func ChangedFields(old, new WorkflowState) []string {
	var changed []string
	for _, name := range stateFields {
		oldVal, _ := old.Field(name)
		newVal, _ := new.Field(name)
		if !equalField(oldVal, newVal) {
			changed = append(changed, name)
		}
	}
	return changed
}

// Diff calculates the difference between oldState and newState.
// It returns nil when nothing changed.
func Diff(oldState, newState WorkflowState) *StateDiff {
	diff := &StateDiff{RunID: newState.RunID}

	for _, name := range ChangedFields(oldState, newState) {
		if name == FieldDebugTrace {
			continue
		}
		if diff.Changed == nil {
			diff.Changed = make(map[string]any)
		}
		v, _ := newState.Field(name)
		diff.Changed[name] = v
	}

	// Optimize for append-only history, like the trace recorder produces.
	if len(newState.DebugTrace) > len(oldState.DebugTrace) {
		diff.TraceAppended = newState.DebugTrace[len(oldState.DebugTrace):]
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// RedactedValue replaces the user's words in a redacted diff.
const RedactedValue = "[redacted]"

// userTextFields carry the user's phrases or sentences built from them.
var userTextFields = []string{
	FieldRawPhrases,
	FieldNormalizedPhrases,
	FieldDraftSentence,
	FieldRefinedSentence,
	FieldFinalSentence,
}

// Redacted returns a copy fit for external observers: fields holding the
// user's words keep their key but lose their value, and the appended trace
// entries are dropped since they repeat node inputs verbatim.
func (d *StateDiff) Redacted() *StateDiff {
	if d == nil {
		return nil
	}
	out := &StateDiff{RunID: d.RunID}
	if len(d.Changed) > 0 {
		out.Changed = make(map[string]any, len(d.Changed))
		for k, v := range d.Changed {
			out.Changed[k] = v
		}
		for _, f := range userTextFields {
			if _, ok := out.Changed[f]; ok {
				out.Changed[f] = RedactedValue
			}
		}
	}
	return out
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return len(d.Changed) == 0 && len(d.TraceAppended) == 0
}

// equalField treats nil and empty slices as equal so that a node
// writing an empty result over an unset field is not a change.
func equalField(a, b any) bool {
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.Kind() == reflect.Slice && bv.Kind() == reflect.Slice && av.Len() == 0 && bv.Len() == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
