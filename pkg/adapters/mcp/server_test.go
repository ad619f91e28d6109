package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/aacflow"
	"github.com/aretw0/aacflow/pkg/adapters/memory"
	"github.com/aretw0/aacflow/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, generator, verifier *memory.ScriptedProvider) (*Server, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	engine, err := aacflow.New(store, generator, verifier,
		aacflow.WithRunIDGenerator(func() string { return "run-1" }),
	)
	require.NoError(t, err)
	return NewServer(engine, "0.0.0-test\n", nil), store
}

func TestCompose_FromTokens(t *testing.T) {
	s, _ := newTestServer(t,
		memory.NewScriptedProvider("EMERGENCY", "도와주세요!"),
		memory.NewScriptedProvider("OK"),
	)

	out, err := s.handleCompose(context.Background(), mcp.CallToolRequest{}, map[string]any{
		"user_id": "u1",
		"tokens":  []any{"help", "pain"},
	})
	require.NoError(t, err)

	assert.Equal(t, "run-1", out.RunID)
	assert.Equal(t, "도와주세요!", out.FinalSentence)
	assert.True(t, out.Verified)
	assert.Equal(t, domain.IntentEmergency, out.Intent)
	assert.Equal(t, 4, out.Steps)
	assert.Empty(t, out.Trace)
}

func TestRecordThenCompose_WithTrace(t *testing.T) {
	s, store := newTestServer(t,
		memory.NewScriptedProvider("REQUEST", "물 주세요"),
		memory.NewScriptedProvider("OK"),
	)
	ctx := context.Background()

	rec, err := s.handleRecord(ctx, mcp.CallToolRequest{}, map[string]any{
		"user_id": "u1",
		"tokens":  []any{"water", " "},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Recorded)

	got, err := store.Range(ctx, "phrases:u1", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"water"}, got)

	out, err := s.handleCompose(ctx, mcp.CallToolRequest{}, map[string]any{
		"user_id":       "u1",
		"include_trace": true,
	})
	require.NoError(t, err)
	assert.Equal(t, "물 주세요", out.FinalSentence)
	require.Len(t, out.Trace, 5)
	assert.Equal(t, "load_recent_phrases", out.Trace[0].Step)
}

func TestCompose_Errors(t *testing.T) {
	s, _ := newTestServer(t, memory.NewScriptedProvider(), memory.NewScriptedProvider())
	ctx := context.Background()

	_, err := s.handleCompose(ctx, mcp.CallToolRequest{}, map[string]any{"tokens": []any{"x"}})
	assert.ErrorIs(t, err, domain.ErrEmptyUserID)

	_, err = s.handleCompose(ctx, mcp.CallToolRequest{}, map[string]any{"user_id": 42})
	assert.ErrorContains(t, err, "invalid arguments")
}

func TestGraphJSON(t *testing.T) {
	s, _ := newTestServer(t, memory.NewScriptedProvider(), memory.NewScriptedProvider())

	text, err := s.graphJSON()
	require.NoError(t, err)

	var desc domain.GraphDescription
	require.NoError(t, json.Unmarshal([]byte(text), &desc))
	assert.Equal(t, "load_recent_phrases", desc.Entry)
	assert.Len(t, desc.Nodes, 9)
}
