package runtime_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/aacflow/internal/runtime"
	"github.com/aretw0/aacflow/pkg/domain"
	"github.com/aretw0/aacflow/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixed = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func clock() time.Time { return fixed }

func draft(_ context.Context, s domain.WorkflowState) (domain.WorkflowState, error) {
	s.DraftSentence = "물 주세요"
	return s, nil
}

func check(_ context.Context, s domain.WorkflowState) (domain.WorkflowState, error) {
	s.Attempts++
	if s.Attempts >= 2 {
		s.RuleStatus = domain.StatusOK
		s.FinalSentence = s.DraftSentence
	} else {
		s.RuleStatus = domain.StatusRewrite
	}
	return s, nil
}

func buildLoop(t *testing.T) *domain.Graph {
	t.Helper()
	b := dsl.New()
	b.Add("draft").
		Reads(domain.FieldNormalizedPhrases).
		Writes(domain.FieldDraftSentence).
		Do(draft).
		Go("check")
	b.Add("check").
		Reads(domain.FieldDraftSentence, domain.FieldAttempts).
		Writes(domain.FieldRuleStatus, domain.FieldFinalSentence, domain.FieldAttempts).
		Do(check).
		Branch("OK", domain.NodeFinish).
		Branch("retry", "draft").
		Route(func(s domain.WorkflowState) string {
			if s.RuleStatus == domain.StatusOK {
				return domain.NodeFinish
			}
			return "draft"
		})
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func TestEngine_Execute_LoopsUntilFinish(t *testing.T) {
	engine := runtime.NewEngine(buildLoop(t), runtime.WithClock(clock))

	in := domain.NewWorkflowState("r1", "u1", 3)
	in.NormalizedPhrases = []string{"물"}

	out, err := engine.Execute(context.Background(), in, "")
	require.NoError(t, err)

	assert.Equal(t, "물 주세요", out.FinalSentence)
	assert.Equal(t, 2, out.Attempts)

	var steps []string
	for _, e := range out.DebugTrace {
		steps = append(steps, e.Step)
	}
	assert.Equal(t, []string{"draft", "check", "draft", "check"}, steps)

	first := out.DebugTrace[0]
	assert.Equal(t, map[string]any{domain.FieldNormalizedPhrases: []string{"물"}}, first.Inputs)
	assert.Equal(t, map[string]any{domain.FieldDraftSentence: "물 주세요"}, first.Outputs)
	assert.Equal(t, fixed, first.At)

	// The caller's state is untouched.
	assert.Empty(t, in.DebugTrace)
	assert.Empty(t, in.FinalSentence)
}

func TestEngine_Execute_StartNode(t *testing.T) {
	engine := runtime.NewEngine(buildLoop(t))

	in := domain.NewWorkflowState("r1", "u1", 3)
	in.DraftSentence = "preset"
	in.Attempts = 1

	out, err := engine.Execute(context.Background(), in, "check")
	require.NoError(t, err)
	require.Len(t, out.DebugTrace, 1)
	assert.Equal(t, "check", out.DebugTrace[0].Step)
	assert.Equal(t, "preset", out.FinalSentence)
}

func TestEngine_Execute_UnknownNode(t *testing.T) {
	engine := runtime.NewEngine(buildLoop(t))

	_, err := engine.Execute(context.Background(), domain.NewWorkflowState("r", "u", 3), "ghost")
	assert.ErrorIs(t, err, domain.ErrUnknownNode)
}

func TestEngine_Execute_ContractViolation(t *testing.T) {
	b := dsl.New()
	b.Add("sneaky").
		Writes(domain.FieldDraftSentence).
		Do(func(_ context.Context, s domain.WorkflowState) (domain.WorkflowState, error) {
			s.DraftSentence = "ok"
			s.FinalSentence = "not mine"
			return s, nil
		}).
		Finish()
	g, err := b.Build()
	require.NoError(t, err)

	out, err := runtime.NewEngine(g).Execute(context.Background(), domain.NewWorkflowState("r", "u", 3), "")

	var violation *runtime.ContractViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "sneaky", violation.NodeID)
	assert.Equal(t, []string{domain.FieldFinalSentence}, violation.Fields)

	// Nothing from the rejected result survives, but the failure is traced.
	assert.Empty(t, out.DraftSentence)
	require.Len(t, out.DebugTrace, 1)
	assert.Contains(t, out.DebugTrace[0].Outputs, "error")
}

func TestEngine_Execute_NodeError(t *testing.T) {
	boom := errors.New("provider down")
	b := dsl.New()
	b.Add("call").
		Writes(domain.FieldDraftSentence).
		Do(func(_ context.Context, s domain.WorkflowState) (domain.WorkflowState, error) {
			return s, boom
		}).
		Finish()
	g, err := b.Build()
	require.NoError(t, err)

	_, err = runtime.NewEngine(g).Execute(context.Background(), domain.NewWorkflowState("r", "u", 3), "")

	assert.ErrorIs(t, err, boom)
	var nodeErr *runtime.NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, "call", nodeErr.NodeID)
	require.Len(t, nodeErr.State.DebugTrace, 1)
	assert.Equal(t, "provider down", nodeErr.State.DebugTrace[0].Outputs["error"])
}

func TestEngine_Execute_InvalidRoute(t *testing.T) {
	b := dsl.New()
	b.Add("a").
		Do(func(_ context.Context, s domain.WorkflowState) (domain.WorkflowState, error) { return s, nil }).
		Branch("done", domain.NodeFinish).
		Route(func(domain.WorkflowState) string { return "elsewhere" })
	g, err := b.Build()
	require.NoError(t, err)

	_, err = runtime.NewEngine(g).Execute(context.Background(), domain.NewWorkflowState("r", "u", 3), "")
	assert.ErrorIs(t, err, domain.ErrInvalidRoute)
}

func TestEngine_Execute_StepLimit(t *testing.T) {
	b := dsl.New()
	b.Add("spin").
		Do(func(_ context.Context, s domain.WorkflowState) (domain.WorkflowState, error) { return s, nil }).
		Go("spin")
	g, err := b.Build()
	require.NoError(t, err)

	out, err := runtime.NewEngine(g, runtime.WithMaxSteps(5)).Execute(context.Background(), domain.NewWorkflowState("r", "u", 3), "")
	assert.ErrorIs(t, err, domain.ErrStepLimit)
	assert.Len(t, out.DebugTrace, 5)
}

func TestEngine_Execute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runtime.NewEngine(buildLoop(t)).Execute(ctx, domain.NewWorkflowState("r", "u", 3), "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_Execute_RunInfo(t *testing.T) {
	var seen domain.RunInfo
	b := dsl.New()
	b.Add("peek").
		Do(func(ctx context.Context, s domain.WorkflowState) (domain.WorkflowState, error) {
			seen = domain.RunInfoFrom(ctx)
			return s, nil
		}).
		Finish()
	g, err := b.Build()
	require.NoError(t, err)

	_, err = runtime.NewEngine(g).Execute(context.Background(), domain.NewWorkflowState("run-7", "u", 3), "")
	require.NoError(t, err)
	assert.Equal(t, domain.RunInfo{RunID: "run-7", NodeID: "peek"}, seen)
}
