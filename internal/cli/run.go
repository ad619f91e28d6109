package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/aacflow"
	"github.com/aretw0/aacflow/internal/presentation/graph"
	"github.com/aretw0/aacflow/internal/presentation/tui"
	"github.com/aretw0/aacflow/pkg/domain"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	UserIDs     []string
	Tokens      []string // compose from these instead of the phrase store; single user only
	Concurrency int
	JSON        bool
	Trace       bool // render the per-step trace
	Graph       bool // print the graph with the visited path highlighted
}

// runOutput is the JSON shape of one run.
type runOutput struct {
	UserID string         `json:"user_id"`
	Result *domain.Result `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// Execute handles the 'run' command logic: one user runs inline, several run as a batch.
func Execute(ctx context.Context, engine *aacflow.Engine, opts RunOptions, w io.Writer) error {
	if len(opts.UserIDs) == 0 {
		return errors.New("at least one user id is required")
	}
	if len(opts.Tokens) > 0 && len(opts.UserIDs) > 1 {
		return errors.New("--tokens can only be used with a single user")
	}

	var results []aacflow.BatchResult
	switch {
	case len(opts.Tokens) > 0:
		res, err := engine.Compose(ctx, opts.UserIDs[0], opts.Tokens)
		results = []aacflow.BatchResult{{UserID: opts.UserIDs[0], Result: res, Err: err}}
	case len(opts.UserIDs) == 1:
		res, err := engine.Run(ctx, opts.UserIDs[0])
		results = []aacflow.BatchResult{{UserID: opts.UserIDs[0], Result: res, Err: err}}
	default:
		results = engine.Batch(ctx, opts.UserIDs, opts.Concurrency)
	}

	if opts.JSON {
		if err := writeJSON(w, results); err != nil {
			return err
		}
	} else {
		writeText(w, engine.Graph(), results, opts)
	}

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.UserID, r.Err))
		}
	}
	return errors.Join(errs...)
}

func writeJSON(w io.Writer, results []aacflow.BatchResult) error {
	out := make([]runOutput, len(results))
	for i, r := range results {
		out[i] = runOutput{UserID: r.UserID, Result: r.Result}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(out) == 1 {
		return enc.Encode(out[0])
	}
	return enc.Encode(out)
}

func writeText(w io.Writer, g *domain.Graph, results []aacflow.BatchResult, opts RunOptions) {
	var render func(string) (string, error)
	if opts.Trace {
		render = tui.NewRenderer()
	}

	for _, r := range results {
		if r.Err != nil {
			printSystemMessage(w, "%s: run failed: %v", r.UserID, r.Err)
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", r.UserID, tui.Verdict(r.Result.FinalSentence, r.Result.Verified))

		if opts.Trace {
			md := tui.TraceMarkdown(r.Result)
			if out, err := render(md); err == nil {
				md = out
			}
			fmt.Fprintln(w, md)
		}
		if opts.Graph {
			fmt.Fprintln(w, graph.GenerateMermaid(g, graph.OverlayFromTrace(r.Result.DebugTrace)))
		}
	}
}
