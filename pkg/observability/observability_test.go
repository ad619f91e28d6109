package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/aacflow"
	"github.com/aretw0/aacflow/internal/logging"
	"github.com/aretw0/aacflow/pkg/adapters/memory"
	"github.com/aretw0/aacflow/pkg/domain"
	"github.com/aretw0/aacflow/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordsRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	engine, err := aacflow.New(memory.NewStore(),
		memory.NewScriptedProvider(`{"intent":"REQUEST"}`, "draft", "refined"),
		memory.NewScriptedProvider("TOO_LONG", "OK"),
		aacflow.WithLifecycleHooks(m.Hooks()),
	)
	require.NoError(t, err)

	_, err = engine.Compose(context.Background(), "u1", []string{"water"})
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.NodeVisits.WithLabelValues("normal_check")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodeVisits.WithLabelValues("refine_sentence")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("normal_check", "refine_sentence")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("normal_check", domain.NodeFinish)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ProviderErrors.WithLabelValues("generator")))

	count, err := testutil.GatherAndCount(reg, "aacflow_provider_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 4, count, "one series per role and node")
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestMetrics_Errors(t *testing.T) {
	m, err := observability.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnNodeLeave(ctx, &domain.NodeEvent{NodeID: "normal_generate", IsError: true, Duration: time.Millisecond})
	hooks.OnProviderReturn(ctx, &domain.ProviderEvent{NodeID: "normal_generate", Role: "generator", IsError: true})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodeErrors.WithLabelValues("normal_generate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderErrors.WithLabelValues("generator")))
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, slog.LevelDebug, logging.FormatText)
	ctx := context.Background()

	quiet := observability.LoggingHooks(logger, false)
	quiet.OnProviderCall(ctx, &domain.ProviderEvent{EventBase: domain.EventBase{RunID: "r"}, NodeID: "n", Role: "generator", Prompt: "secret phrases"})
	assert.Contains(t, buf.String(), "provider_call")
	assert.NotContains(t, buf.String(), "secret phrases")

	buf.Reset()
	loud := observability.LoggingHooks(logger, true)
	loud.OnProviderReturn(ctx, &domain.ProviderEvent{NodeID: "n", Role: "verifier", Reply: "OK", IsError: true})
	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "reply=OK")
}

func TestChain(t *testing.T) {
	var calls []string
	record := func(name string) domain.LifecycleHooks {
		return domain.LifecycleHooks{
			OnNodeEnter: func(context.Context, *domain.NodeEvent) { calls = append(calls, name) },
		}
	}

	chained := observability.Chain(record("a"), domain.LifecycleHooks{}, record("b"))
	require.NotNil(t, chained.OnNodeEnter)
	assert.Nil(t, chained.OnNodeLeave)
	assert.Nil(t, chained.OnProviderCall)

	chained.OnNodeEnter(context.Background(), &domain.NodeEvent{})
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestChain_WithEngine(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, slog.LevelDebug, logging.FormatText)
	m, err := observability.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	boom := errors.New("boom")
	engine, err := aacflow.New(memory.NewStore(),
		memory.NewScriptedProviderWithReplies(memory.Reply{Err: boom}),
		memory.NewScriptedProvider(),
		aacflow.WithLifecycleHooks(observability.Chain(m.Hooks(), observability.LoggingHooks(logger, false))),
	)
	require.NoError(t, err)

	_, err = engine.Compose(context.Background(), "u1", []string{"x"})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodeErrors.WithLabelValues("intent_classifier")))
	assert.Equal(t, 1, strings.Count(buf.String(), "msg=provider_return"))
}
