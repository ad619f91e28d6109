package ports

import (
	"context"

	"github.com/aretw0/aacflow/pkg/domain"
)

// Composer defines the interface used by adapters (HTTP, MCP) to drive the workflow.
type Composer interface {
	// Run loads the user's recent phrases and drives the graph to completion.
	Run(ctx context.Context, userID string) (*domain.Result, error)

	// Compose drives the graph from already known tokens, skipping the phrase store.
	Compose(ctx context.Context, userID string, tokens []string) (*domain.Result, error)

	// Record appends tokens to the user's phrase list.
	Record(ctx context.Context, userID string, tokens ...string) error

	// Graph returns the workflow definition for introspection.
	Graph() *domain.Graph
}
