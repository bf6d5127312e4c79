package llm

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/willow/internal/adapter"
	"github.com/fortuna/willow/internal/cache"
	"github.com/fortuna/willow/internal/models"
	"github.com/fortuna/willow/internal/source"
)

// stubProvider records the prompts it gets and answers from a script.
type stubProvider struct {
	answer  string
	err     error
	prompts []string
}

func (s *stubProvider) Name() string { return "stub-model" }

func (s *stubProvider) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.answer, s.err
}

type stubSource struct {
	players map[string]*models.Player
}

func (s *stubSource) Name() string { return "test" }

func (s *stubSource) PlayerStats(_ context.Context, name string) (*models.Player, error) {
	if p, ok := s.players[name]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, source.ErrNotFound
}

func (s *stubSource) LiveMatches(context.Context) ([]models.Match, error)     { return nil, nil }
func (s *stubSource) UpcomingMatches(context.Context) ([]models.Match, error) { return nil, nil }
func (s *stubSource) RecentMatches(context.Context) ([]models.Match, error)   { return nil, nil }

func (s *stubSource) MatchDetails(context.Context, string) (*models.Match, error) {
	return nil, source.ErrNotFound
}

type stubTables struct {
	players []models.Player
}

func (t *stubTables) PitchConditions(string) (models.PitchConditions, bool) {
	return models.PitchConditions{}, false
}
func (t *stubTables) Roster(string) ([]string, bool) { return nil, false }
func (t *stubTables) AllPlayers() []models.Player    { return t.players }
func (t *stubTables) Venues() []string               { return nil }
func (t *stubTables) Teams() []string                { return nil }

func newTestData(t *testing.T) *adapter.Adapter {
	t.Helper()

	kohli := &models.Player{
		Name: "Virat Kohli", Team: "India", Role: models.RoleBatsman,
		BattingAvg: 52.1, RecentForm: []int{82, 61, 44},
		FantasyPointsAvg: 90,
	}

	fc, err := cache.NewFileCache(t.TempDir(), map[string]time.Duration{
		cache.KindPlayerStats: time.Hour,
	}, nil)
	require.NoError(t, err)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	src := &stubSource{players: map[string]*models.Player{"Virat Kohli": kohli}}
	static := &stubTables{players: []models.Player{*kohli}}
	return adapter.New(adapter.Sources{Static: src}, static, fc, rand.New(rand.NewSource(5)), log)
}

func newTestManager(t *testing.T, provider Provider) *Manager {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	fallback := func(_ context.Context, query string) string {
		return "rules: " + query
	}
	return NewManager(provider, newTestData(t), fallback, Config{}, log)
}

func TestProcessNilProviderUsesRules(t *testing.T) {
	m := newTestManager(t, nil)

	reply := m.Process(context.Background(), "who is in form?")
	assert.Equal(t, "rules: who is in form?", reply.Text)
	assert.Equal(t, "rule-based", reply.ModelUsed)
	assert.False(t, reply.Fallback)
	assert.Equal(t, "rule-based", m.ModelUsed())
}

func TestProcessProviderAnswer(t *testing.T) {
	provider := &stubProvider{answer: "Kohli is a strong pick tonight."}
	m := newTestManager(t, provider)

	reply := m.Process(context.Background(), "should I pick anyone special?")
	assert.Equal(t, "Kohli is a strong pick tonight.", reply.Text)
	assert.Equal(t, "stub-model", reply.ModelUsed)
	assert.False(t, reply.Fallback)
	assert.Empty(t, reply.Error)
	assert.Equal(t, "stub-model", m.ModelUsed())
}

func TestProcessProviderErrorFallsBack(t *testing.T) {
	provider := &stubProvider{err: errors.New("rate limited")}
	m := newTestManager(t, provider)

	reply := m.Process(context.Background(), "best captain?")
	assert.Equal(t, "rules: best captain?", reply.Text)
	assert.Equal(t, "rule-based", reply.ModelUsed)
	assert.True(t, reply.Fallback)
	assert.Equal(t, "rate limited", reply.Error)
}

func TestProcessRefusalFallsBack(t *testing.T) {
	provider := &stubProvider{answer: "I don't have enough information to answer that."}
	m := newTestManager(t, provider)

	reply := m.Process(context.Background(), "best captain?")
	assert.Equal(t, "rules: best captain?", reply.Text)
	assert.True(t, reply.Fallback)
	assert.Empty(t, reply.Error, "a refusal is not an error")
}

func TestProcessBuildsPlayerContext(t *testing.T) {
	provider := &stubProvider{answer: "He averages 52.1."}
	m := newTestManager(t, provider)

	m.Process(context.Background(), "how good is kohli really?")

	require.Len(t, provider.prompts, 1)
	prompt := provider.prompts[0]
	assert.Contains(t, prompt, "CONTEXT:")
	assert.Contains(t, prompt, "PLAYER INFO - Virat Kohli:")
	assert.Contains(t, prompt, "USER QUERY: how good is kohli really?")
}

func TestProcessNoContextPassesQueryThrough(t *testing.T) {
	provider := &stubProvider{answer: "Hello!"}
	m := newTestManager(t, provider)

	m.Process(context.Background(), "hello there")

	require.Len(t, provider.prompts, 1)
	assert.Equal(t, "hello there", provider.prompts[0])
}
