package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/aacflow"
	aachttp "github.com/aretw0/aacflow/pkg/adapters/http"
	"github.com/aretw0/aacflow/pkg/adapters/memory"
	"github.com/aretw0/aacflow/pkg/domain"
	"github.com/aretw0/aacflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store   *memory.Store
	handler http.Handler
	streams *aachttp.StreamManager
}

func newFixture(t *testing.T, generator, verifier ports.ChatProvider, opts ...aacflow.Option) fixture {
	t.Helper()
	store := memory.NewStore()
	streams := aachttp.NewStreamManager(nil)

	opts = append(opts,
		aacflow.WithLifecycleHooks(streams.Hooks()),
		aacflow.WithRunIDGenerator(func() string { return "run-1" }),
	)
	engine, err := aacflow.New(store, generator, verifier, opts...)
	require.NoError(t, err)

	return fixture{
		store:   store,
		streams: streams,
		handler: aachttp.NewHandler(engine, aachttp.WithStreams(streams), aachttp.WithVersion("test")),
	}
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	p := memory.NewScriptedProvider()
	f := newFixture(t, p, p)

	w := do(f.handler, "GET", "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","version":"test"}`, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestGetGraph(t *testing.T) {
	p := memory.NewScriptedProvider()
	f := newFixture(t, p, p)

	w := do(f.handler, "GET", "/v1/graph", "")
	require.Equal(t, http.StatusOK, w.Code)

	var desc domain.GraphDescription
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &desc))
	assert.Equal(t, "load_recent_phrases", desc.Entry)
	assert.NotEmpty(t, desc.Nodes)

	w = do(f.handler, "GET", "/v1/graph?format=mermaid", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "graph TD")
	assert.Contains(t, w.Body.String(), "best_effort")
}

func TestComposeSentence_FromTokens(t *testing.T) {
	f := newFixture(t,
		memory.NewScriptedProvider("REQUEST", "물 주세요"),
		memory.NewScriptedProvider("OK"),
	)

	w := do(f.handler, "POST", "/v1/users/u1/sentence", `{"tokens":["water","please"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res domain.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, "물 주세요", res.FinalSentence)
	assert.True(t, res.Verified)
	assert.Equal(t, domain.IntentRequest, res.Intent)
	assert.Equal(t, 4, res.Steps)
}

func TestRecordThenCompose(t *testing.T) {
	f := newFixture(t,
		memory.NewScriptedProvider("STATUS", "괜찮아요"),
		memory.NewScriptedProvider("OK"),
	)

	w := do(f.handler, "POST", "/v1/users/u1/phrases", `{"tokens":["fine"]}`)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	got, err := f.store.Range(context.Background(), "phrases:u1", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"fine"}, got)

	// Empty body reads the store.
	w = do(f.handler, "POST", "/v1/users/u1/sentence", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res domain.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "괜찮아요", res.FinalSentence)
	assert.Equal(t, 5, res.Steps)
}

func TestErrors(t *testing.T) {
	boom := errors.New("upstream down")

	tests := []struct {
		name      string
		generator ports.ChatProvider
		method    string
		path      string
		body      string
		want      int
		wantNode  string
	}{
		{
			name:   "Malformed Body",
			method: "POST", path: "/v1/users/u1/sentence", body: `{"tokens":`,
			want: http.StatusBadRequest,
		},
		{
			name:   "Blank User",
			method: "POST", path: "/v1/users/%20/sentence", body: `{"tokens":["a"]}`,
			want: http.StatusBadRequest,
		},
		{
			name:   "Record Without Tokens",
			method: "POST", path: "/v1/users/u1/phrases", body: `{"tokens":[" "]}`,
			want: http.StatusBadRequest,
		},
		{
			name:   "Oversized Token",
			method: "POST", path: "/v1/users/u1/sentence", body: `{"tokens":["` + strings.Repeat("a", 300) + `"]}`,
			want: http.StatusBadRequest,
		},
		{
			name:      "Provider Failure",
			generator: memory.NewScriptedProviderWithReplies(memory.Reply{Err: boom}),
			method:    "POST", path: "/v1/users/u1/sentence", body: `{"tokens":["a"]}`,
			want:     http.StatusBadGateway,
			wantNode: "intent_classifier",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := tt.generator
			if gen == nil {
				gen = memory.NewScriptedProvider()
			}
			f := newFixture(t, gen, memory.NewScriptedProvider())

			w := do(f.handler, tt.method, tt.path, tt.body)
			require.Equal(t, tt.want, w.Code, w.Body.String())

			var resp aachttp.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.wantNode, resp.NodeID)
		})
	}
}

type readOnlySource struct{ ports.PhraseSource }

func TestRecord_NoRecorder(t *testing.T) {
	p := memory.NewScriptedProvider()
	engine, err := aacflow.New(readOnlySource{memory.NewStore()}, p, p)
	require.NoError(t, err)

	w := do(aachttp.NewHandler(engine), "POST", "/v1/users/u1/phrases", `{"tokens":["a"]}`)
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	// No stream manager, no event endpoint.
	w = do(aachttp.NewHandler(engine), "GET", "/v1/events", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscribeEvents(t *testing.T) {
	f := newFixture(t,
		memory.NewScriptedProvider("REQUEST", "물 주세요"),
		memory.NewScriptedProvider("OK"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wSub := httptest.NewRecorder()
	reqSub := httptest.NewRequest("GET", "/v1/events?run_id=run-1", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.handler.ServeHTTP(wSub, reqSub)
	}()

	require.Eventually(t, func() bool { return f.streams.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	w := do(f.handler, "POST", "/v1/users/u1/sentence", `{"tokens":["water"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cancel()
	<-done

	output := wSub.Body.String()
	assert.Contains(t, output, "event: ping")
	assert.Contains(t, output, "event: node_enter")
	assert.Contains(t, output, `"node_id":"normal_check"`)
	assert.Contains(t, output, "event: provider_return")
	assert.Contains(t, output, `"diff":{"run_id":"run-1","changed":{`)
	assert.Contains(t, output, `"rule_status":"OK"`)
	assert.Contains(t, output, `"final_sentence":"[redacted]"`)
	assert.NotContains(t, output, "물 주세요", "the user's words must not be streamed")
	assert.NotContains(t, output, `"water"`)
	assert.Equal(t, 0, f.streams.Subscribers())
}

func TestStreamManager_DropsWhenFull(t *testing.T) {
	sm := aachttp.NewStreamManager(nil)
	ch, unsubscribe := sm.Subscribe("t")

	for range 100 {
		sm.Broadcast("t", "x")
	}
	assert.Len(t, ch, 32)

	unsubscribe()
	unsubscribe()
	_, open := <-ch
	for open {
		_, open = <-ch
	}
	assert.Equal(t, 0, sm.Subscribers())
}

func TestStreamManager_Close(t *testing.T) {
	sm := aachttp.NewStreamManager(nil)
	ch, unsubscribe := sm.Subscribe("t")

	sm.Close()
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, sm.Subscribers())

	// Unsubscribing after Close must not double close.
	assert.NotPanics(t, unsubscribe)
}
