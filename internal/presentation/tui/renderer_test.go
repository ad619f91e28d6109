package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/aacflow/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestTraceMarkdown(t *testing.T) {
	res := &domain.Result{
		RunID:    "r1",
		UserID:   "u1",
		Intent:   domain.IntentRequest,
		Attempts: 1,
		Verified: true,
		DebugTrace: []domain.TraceEntry{
			{Step: "normalize_phrases", Inputs: map[string]any{"raw_phrases": []string{"a", "a|b"}}, Outputs: map[string]any{"normalized_phrases": []string{"a"}}},
			{Step: "best_effort"},
		},
	}

	md := TraceMarkdown(res)
	assert.Contains(t, md, "## Run `r1`")
	assert.Contains(t, md, `| 1 | normalize_phrases | raw_phrases=["a","a\|b"] | normalized_phrases=["a"] |`)
	assert.Contains(t, md, "| 2 | best_effort | - | - |")
}

func TestNewRenderer(t *testing.T) {
	render := NewRenderer()
	out, err := render("# Title")
	assert.NoError(t, err)
	assert.Contains(t, out, "Title")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
	assert.Greater(t, strings.Count(buf.String(), "\n"), 4)
}

func TestVerdict(t *testing.T) {
	assert.Contains(t, Verdict("안녕하세요", true), "안녕하세요")
	assert.Contains(t, Verdict("도와주세요", false), "(unverified)")
}
