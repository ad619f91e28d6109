package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/aacflow/internal/logging"
	"github.com/aretw0/aacflow/pkg/domain"
	"github.com/aretw0/aacflow/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
	"golang.org/x/sync/errgroup"
)

// GraphURI is the resource under which the workflow definition is exposed.
const GraphURI = "aacflow://graph"

// ComposeResponse is the structured output of compose_sentence.
type ComposeResponse struct {
	RunID         string              `json:"run_id" jsonschema_description:"Identifier of the run"`
	FinalSentence string              `json:"final_sentence" jsonschema_description:"The sentence to speak or display"`
	Verified      bool                `json:"verified" jsonschema_description:"False when the retry budget ran out and the sentence was not approved"`
	Intent        domain.Intent       `json:"intent" jsonschema_description:"Classified intent (EMERGENCY, REQUEST, STATUS, OTHER)"`
	Attempts      int                 `json:"attempts" jsonschema_description:"Verification attempts used"`
	Steps         int                 `json:"steps" jsonschema_description:"Node invocations in the run"`
	Trace         []domain.TraceEntry `json:"trace,omitempty" jsonschema_description:"Per-step trace, only when include_trace is set"`
}

// RecordResponse is the structured output of record_phrase.
type RecordResponse struct {
	UserID   string `json:"user_id"`
	Recorded int    `json:"recorded" jsonschema_description:"Number of non-blank tokens appended"`
}

type composeArgs struct {
	UserID       string   `mapstructure:"user_id"`
	Tokens       []string `mapstructure:"tokens"`
	IncludeTrace bool     `mapstructure:"include_trace"`
}

type recordArgs struct {
	UserID string   `mapstructure:"user_id"`
	Tokens []string `mapstructure:"tokens"`
}

// Server wraps a Composer and exposes it as an MCP Server.
type Server struct {
	engine    ports.Composer
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.Composer, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		engine: engine,
		logger: logger,
		mcpServer: server.NewMCPServer("aacflow-mcp", strings.TrimSpace(version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://" + addr
	if strings.HasPrefix(addr, ":") {
		baseURL = "http://localhost" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: compose_sentence
	composeTool := mcp.NewTool("compose_sentence",
		mcp.WithDescription("Turn a user's gesture phrase tokens into one polite, verified sentence. If tokens are omitted, the user's most recent recorded phrases are used."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("The user whose phrases are composed")),
		mcp.WithArray("tokens", mcp.Description("Phrase tokens to compose from (optional)"), mcp.WithStringItems()),
		mcp.WithBoolean("include_trace", mcp.Description("Include the per-step trace in the response")),
		mcp.WithOutputSchema[ComposeResponse](),
	)
	s.mcpServer.AddTool(composeTool, mcp.NewStructuredToolHandler(s.handleCompose))

	// TOOL: record_phrase
	recordTool := mcp.NewTool("record_phrase",
		mcp.WithDescription("Append recognised gesture tokens to a user's phrase list."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("The user the tokens belong to")),
		mcp.WithArray("tokens", mcp.Required(), mcp.Description("Tokens in recognition order"), mcp.WithStringItems()),
		mcp.WithOutputSchema[RecordResponse](),
	)
	s.mcpServer.AddTool(recordTool, mcp.NewStructuredToolHandler(s.handleRecord))

	// TOOL: get_graph
	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the workflow graph definition for introspection."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := s.graphJSON()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("describe failed: %v", err)), nil
		}
		return mcp.NewToolResultText(text), nil
	})
}

func (s *Server) handleCompose(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ComposeResponse, error) {
	var in composeArgs
	if err := mapstructure.Decode(args, &in); err != nil {
		return ComposeResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}

	var (
		res *domain.Result
		err error
	)
	if len(in.Tokens) > 0 {
		res, err = s.engine.Compose(ctx, in.UserID, in.Tokens)
	} else {
		res, err = s.engine.Run(ctx, in.UserID)
	}
	if err != nil {
		s.logger.Error("MCP compose failed", "user_id", in.UserID, "error", err)
		return ComposeResponse{}, fmt.Errorf("compose failed: %w", err)
	}

	out := ComposeResponse{
		RunID:         res.RunID,
		FinalSentence: res.FinalSentence,
		Verified:      res.Verified,
		Intent:        res.Intent,
		Attempts:      res.Attempts,
		Steps:         res.Steps,
	}
	if in.IncludeTrace {
		out.Trace = res.DebugTrace
	}
	return out, nil
}

func (s *Server) handleRecord(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (RecordResponse, error) {
	var in recordArgs
	if err := mapstructure.Decode(args, &in); err != nil {
		return RecordResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}

	if err := s.engine.Record(ctx, in.UserID, in.Tokens...); err != nil {
		return RecordResponse{}, fmt.Errorf("record failed: %w", err)
	}

	n := 0
	for _, t := range in.Tokens {
		if strings.TrimSpace(t) != "" {
			n++
		}
	}
	return RecordResponse{UserID: in.UserID, Recorded: n}, nil
}

func (s *Server) graphJSON() (string, error) {
	data, err := json.Marshal(s.engine.Graph().Describe())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *Server) registerResources() {
	// EXPOSE: aacflow://graph
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Workflow Graph Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		text, err := s.graphJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to describe graph: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      GraphURI,
				MIMEType: "application/json",
				Text:     text,
			},
		}, nil
	})
}
