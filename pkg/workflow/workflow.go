package workflow

import (
	"errors"
	"log/slog"

	"github.com/aretw0/aacflow/internal/logging"
	"github.com/aretw0/aacflow/pkg/ports"
)

// Node IDs of the sentence workflow.
const (
	NodeLoadRecentPhrases = "load_recent_phrases"
	NodeNormalizePhrases  = "normalize_phrases"
	NodeIntentClassifier  = "intent_classifier"
	NodeEmergencyGenerate = "emergency_generate"
	NodeEmergencyCheck    = "emergency_check"
	NodeNormalGenerate    = "normal_generate"
	NodeRefineSentence    = "refine_sentence"
	NodeNormalCheck       = "normal_check"
	NodeBestEffort        = "best_effort"
)

const (
	// DefaultKeyPrefix is prepended to the user ID to form the phrase list key.
	DefaultKeyPrefix = "phrases:"

	// DefaultWindow is how many of the most recent phrases a run reads.
	DefaultWindow = 10
)

// MaxInvocations is the longest run the graph allows with the given
// verification budget: load, normalize and classify, one generate and check
// per attempt (a refine replaces the generate after the first on the normal
// track), then best_effort.
func MaxInvocations(maxAttempts int) int {
	return 2*maxAttempts + 4
}

// Deps are the collaborators the workflow nodes call.
type Deps struct {
	Source    ports.PhraseSource
	Generator ports.ChatProvider
	Verifier  ports.ChatProvider
	Logger    *slog.Logger

	KeyPrefix string
	Window    int
	Language  string
}

// Nodes holds the step functions of the workflow, bound to their collaborators.
type Nodes struct {
	source    ports.PhraseSource
	generator ports.ChatProvider
	verifier  ports.ChatProvider
	logger    *slog.Logger
	prompts   *Prompts
	keyPrefix string
	window    int
}

// NewNodes validates deps and applies defaults.
func NewNodes(deps Deps) (*Nodes, error) {
	if deps.Source == nil {
		return nil, errors.New("workflow: phrase source is required")
	}
	if deps.Generator == nil {
		return nil, errors.New("workflow: generation provider is required")
	}
	if deps.Verifier == nil {
		return nil, errors.New("workflow: verification provider is required")
	}

	prompts, err := NewPrompts(deps.Language)
	if err != nil {
		return nil, err
	}

	n := &Nodes{
		source:    deps.Source,
		generator: deps.Generator,
		verifier:  deps.Verifier,
		logger:    deps.Logger,
		prompts:   prompts,
		keyPrefix: deps.KeyPrefix,
		window:    deps.Window,
	}
	if n.logger == nil {
		n.logger = logging.NewNop()
	}
	if n.keyPrefix == "" {
		n.keyPrefix = DefaultKeyPrefix
	}
	if n.window <= 0 {
		n.window = DefaultWindow
	}
	return n, nil
}

// Key returns the store key holding the phrases of userID.
func (n *Nodes) Key(userID string) string {
	return n.keyPrefix + userID
}
