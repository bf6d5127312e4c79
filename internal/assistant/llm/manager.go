package llm

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/willow/internal/adapter"
)

// Reply is the answer plus provenance; surfaces display Text and can
// expose the rest as metadata.
type Reply struct {
	Text      string `json:"response"`
	ModelUsed string `json:"model_used"`
	Fallback  bool   `json:"fallback,omitempty"`
	Error     string `json:"error,omitempty"`
}

// RuleFallback is the rule router's entry point; the manager uses it
// whenever the provider cannot answer.
type RuleFallback func(ctx context.Context, query string) string

// refusalMarkers are provider phrasings that mean "I could not use the
// context". A refusal reads better coming from the rule router.
var refusalMarkers = []string{
	"insufficient information",
	"i don't have enough information",
	"i do not have enough information",
	"i cannot answer",
	"i'm unable to answer",
}

// Config holds manager tuning.
type Config struct {
	FetchTimeout  time.Duration
	ContextBudget time.Duration
}

// Manager routes chat queries to the configured provider with rule
// fallback. A nil provider degrades to rules-only, matching a
// deployment without API keys.
type Manager struct {
	provider Provider
	builder  *contextBuilder
	fallback RuleFallback
	log      *logrus.Entry
}

// NewManager wires the LLM front door.
func NewManager(provider Provider, data *adapter.Adapter, fallback RuleFallback, cfg Config, log *logrus.Logger) *Manager {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 5 * time.Second
	}
	if cfg.ContextBudget <= 0 {
		cfg.ContextBudget = 15 * time.Second
	}
	return &Manager{
		provider: provider,
		builder: &contextBuilder{
			data:         data,
			fetchTimeout: cfg.FetchTimeout,
			budget:       cfg.ContextBudget,
		},
		fallback: fallback,
		log:      log.WithField("component", "llm"),
	}
}

// Process answers one query. Provider errors and refusals fall back to
// the rule router, with the error carried in the reply metadata.
func (m *Manager) Process(ctx context.Context, query string) Reply {
	if m.provider == nil {
		return Reply{Text: m.fallback(ctx, query), ModelUsed: "rule-based"}
	}

	prompt := query
	if block := m.builder.build(ctx, query); block != "" {
		prompt = "CONTEXT:\n" + block + "\nUSER QUERY: " + query +
			"\n\nPlease answer the query using the provided context."
	}

	answer, err := m.provider.Generate(ctx, prompt)
	if err != nil {
		m.log.WithError(err).WithField("provider", m.provider.Name()).Warn("provider failed, using rule fallback")
		return Reply{
			Text:      m.fallback(ctx, query),
			ModelUsed: "rule-based",
			Fallback:  true,
			Error:     err.Error(),
		}
	}

	if isRefusal(answer) {
		m.log.WithField("provider", m.provider.Name()).Debug("provider refused, using rule fallback")
		return Reply{
			Text:      m.fallback(ctx, query),
			ModelUsed: "rule-based",
			Fallback:  true,
		}
	}

	return Reply{Text: answer, ModelUsed: m.provider.Name()}
}

// ModelUsed names the active provider.
func (m *Manager) ModelUsed() string {
	if m.provider == nil {
		return "rule-based"
	}
	return m.provider.Name()
}

func isRefusal(answer string) bool {
	lower := strings.ToLower(answer)
	for _, marker := range refusalMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
