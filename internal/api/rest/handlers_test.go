package rest

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/willow/internal/adapter"
	"github.com/fortuna/willow/internal/assistant"
	"github.com/fortuna/willow/internal/assistant/llm"
	"github.com/fortuna/willow/internal/cache"
	"github.com/fortuna/willow/internal/fantasy"
	"github.com/fortuna/willow/internal/models"
	"github.com/fortuna/willow/internal/source"
)

// stubSource serves scripted players and one upcoming match.
type stubSource struct {
	players  map[string]*models.Player
	upcoming []models.Match
}

func (s *stubSource) Name() string { return "test" }

func (s *stubSource) PlayerStats(_ context.Context, name string) (*models.Player, error) {
	if p, ok := s.players[name]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, source.ErrNotFound
}

func (s *stubSource) LiveMatches(context.Context) ([]models.Match, error) { return nil, nil }

func (s *stubSource) UpcomingMatches(context.Context) ([]models.Match, error) {
	return s.upcoming, nil
}

func (s *stubSource) RecentMatches(context.Context) ([]models.Match, error) { return nil, nil }

func (s *stubSource) MatchDetails(context.Context, string) (*models.Match, error) {
	return nil, source.ErrNotFound
}

type stubTables struct {
	pitches map[string]models.PitchConditions
	rosters map[string][]string
	players []models.Player
}

func (t *stubTables) PitchConditions(venue string) (models.PitchConditions, bool) {
	pc, ok := t.pitches[venue]
	return pc, ok
}

func (t *stubTables) Roster(team string) ([]string, bool) {
	r, ok := t.rosters[team]
	return r, ok
}

func (t *stubTables) AllPlayers() []models.Player { return t.players }

func (t *stubTables) Venues() []string {
	var out []string
	for v := range t.pitches {
		out = append(out, v)
	}
	return out
}

func (t *stubTables) Teams() []string {
	var out []string
	for team := range t.rosters {
		out = append(out, team)
	}
	return out
}

// newTestRouter wires the full middleware and route table against stub
// data, without auth or the database.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	players := map[string]*models.Player{
		"Virat Kohli": {
			Name: "Virat Kohli", Team: "India", Role: models.RoleBatsman,
			BattingAvg: 52.1, StrikeRate: 138.2,
			RecentForm: []int{82, 61, 44, 72, 95},
			Ownership:  55, Price: 10.5,
			FantasyPointsAvg: 90, MatchesPlayed: 240,
		},
	}

	src := &stubSource{
		players: players,
		upcoming: []models.Match{{
			Teams:  "India vs Australia",
			Venue:  "Wankhede Stadium",
			Date:   "2025-06-01",
			Status: models.StatusUpcoming,
		}},
	}
	static := &stubTables{
		pitches: map[string]models.PitchConditions{
			"Wankhede Stadium": {BattingFriendly: 8, PaceFriendly: 6, SpinFriendly: 5},
		},
		rosters: map[string][]string{
			"India": {"Virat Kohli"},
		},
		players: []models.Player{*players["Virat Kohli"]},
	}

	fc, err := cache.NewFileCache(t.TempDir(), map[string]time.Duration{
		cache.KindPlayerStats: time.Hour,
	}, nil)
	require.NoError(t, err)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	data := adapter.New(adapter.Sources{Static: src}, static, fc, rand.New(rand.NewSource(7)), log)
	engine := fantasy.New(data, rand.New(rand.NewSource(7)), log)
	rules := assistant.New(data, engine, log)
	chatMgr := llm.NewManager(nil, data, rules.Respond, llm.Config{}, log)

	handler := NewHandler(data, engine, chatMgr, nil, nil, nil, nil, nil, nil, nil, log)
	return NewServer("0", handler, log).server.Handler
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestRequestIDHeader(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/health", "")

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDKeepsInbound(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestGetPlayerStats(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/players/Virat%20Kohli/stats", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Virat Kohli")
	assert.Contains(t, rec.Body.String(), "52.1")
}

func TestGetPlayerStatsNotFound(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/players/Nobody%20Atall/stats", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPlayerForm(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/players/Virat%20Kohli/form", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "recent_form")
}

func TestSearchPlayersMissingQuery(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/players/search", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchPlayersUnknownIsEmpty(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/players/search?q=nobody", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"players":[]`)
}

func TestGetTopPlayersWithoutDatabase(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/players/top?role=Batsman", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetLiveMatchesEmpty(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/matches/live", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":0`)
}

func TestGetUpcomingMatches(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/matches/upcoming", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "India vs Australia")
}

func TestGetMatchNotFound(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/matches/nope-123", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPitchConditions(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/pitch/Wankhede%20Stadium", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pitch_conditions")
}

func TestGetPitchConditionsUnknownVenue(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/pitch/Narnia", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComparePlayersMissingParams(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/compare?player1=Virat%20Kohli", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodPost, "/api/v1/chat", `{"message":""}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatRulesReply(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodPost, "/api/v1/chat", `{"message":"hello"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"model_used":"rule-based"`)
}

func TestRegisterWithoutAuthConfigured(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodPost, "/api/v1/auth/register",
		`{"username":"sam","email":"sam@example.com","password":"hunter22","confirm_password":"hunter22"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestProtectedRouteWithoutAuthConfigured(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/users/me", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSchedulerRoutesNeedAuth(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/scheduler/status", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodOptions, "/api/v1/matches/live", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflightOnPostRoute(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/chat", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}
