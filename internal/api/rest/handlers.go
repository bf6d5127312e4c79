package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/willow/internal/adapter"
	"github.com/fortuna/willow/internal/assistant/llm"
	"github.com/fortuna/willow/internal/auth"
	"github.com/fortuna/willow/internal/cache"
	"github.com/fortuna/willow/internal/fantasy"
	"github.com/fortuna/willow/internal/models"
	"github.com/fortuna/willow/internal/source"
	"github.com/fortuna/willow/internal/store"
	"github.com/fortuna/willow/internal/store/repository"
)

// Scheduler is the slice of the orchestrator the admin routes need.
type Scheduler interface {
	GetStatus() map[string]interface{}
	TriggerArchiveSync(ctx context.Context)
}

// Handler contains dependencies for HTTP handlers. The store-backed
// fields are nil when the database is disabled; the account routes
// respond 503 in that case.
type Handler struct {
	data    *adapter.Adapter
	engine  *fantasy.Engine
	chat    *llm.Manager
	auth    *auth.Service
	users   *repository.UserRepository
	chats   *repository.ChatRepository
	matches *repository.MatchRepository
	players *repository.PlayerRepository
	hot     *cache.RedisCache
	sched   Scheduler
	log     *logrus.Logger
}

// NewHandler creates a new handler.
func NewHandler(data *adapter.Adapter, engine *fantasy.Engine, chat *llm.Manager, authSvc *auth.Service, users *repository.UserRepository, chats *repository.ChatRepository, matches *repository.MatchRepository, players *repository.PlayerRepository, hot *cache.RedisCache, sched Scheduler, log *logrus.Logger) *Handler {
	return &Handler{
		data:    data,
		engine:  engine,
		chat:    chat,
		auth:    authSvc,
		users:   users,
		chats:   chats,
		matches: matches,
		players: players,
		hot:     hot,
		sched:   sched,
		log:     log,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{
		"status":  "healthy",
		"service": "willow",
		"version": "1.0.0",
	}
	if h.hot != nil {
		body["redis"] = "ok"
		if err := h.hot.HealthCheck(r.Context()); err != nil {
			body["redis"] = "unavailable"
		}
	}
	respondJSON(w, http.StatusOK, body)
}

// Chat answers a free-text query, via the configured model when
// available and the rule engine otherwise. Authenticated exchanges are
// saved to the user's history.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		respondError(w, http.StatusBadRequest, "Request body must include 'message'", nil)
		return
	}
	if len(req.Message) > 1000 {
		respondError(w, http.StatusBadRequest, "Message must be at most 1000 characters", nil)
		return
	}

	reply := h.chat.Process(r.Context(), req.Message)

	if claims, ok := ClaimsFromContext(r.Context()); ok && h.chats != nil {
		if _, err := h.chats.Save(r.Context(), claims.UserID, req.Message, reply.Text, reply.ModelUsed); err != nil {
			h.log.WithError(err).Warn("Failed to save chat history")
		}
	}

	respondJSON(w, http.StatusOK, reply)
}

// SearchPlayers searches the known-player pool by name fragment.
func (h *Handler) SearchPlayers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, http.StatusBadRequest, "Missing query parameter 'q'", nil)
		return
	}

	player, err := h.data.PlayerStats(r.Context(), query)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			respondJSON(w, http.StatusOK, map[string]interface{}{"players": []interface{}{}})
			return
		}
		respondError(w, http.StatusServiceUnavailable, "Player data is temporarily unavailable", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"players": []interface{}{player},
	})
}

// GetPlayerStats returns a player's fused statistics. When every live
// source is down, the last persisted snapshot is served instead.
func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	player, err := h.data.PlayerStats(r.Context(), name)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Player not found", nil)
			return
		}
		if h.players != nil {
			if snap, serr := h.players.GetByName(r.Context(), name); serr == nil {
				respondJSON(w, http.StatusOK, map[string]interface{}{
					"player": snap,
					"stale":  true,
				})
				return
			}
		}
		respondError(w, http.StatusServiceUnavailable, "Player data is temporarily unavailable", err)
		return
	}

	respondJSON(w, http.StatusOK, player)
}

// GetTopPlayers lists the best persisted players for a role, ranked by
// fantasy average. Requires the database.
func (h *Handler) GetTopPlayers(w http.ResponseWriter, r *http.Request) {
	if h.players == nil {
		respondError(w, http.StatusServiceUnavailable, "Player rankings require the database", nil)
		return
	}

	role := r.URL.Query().Get("role")
	if role == "" {
		respondError(w, http.StatusBadRequest, "Missing query parameter 'role'", nil)
		return
	}

	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if l, err := strconv.Atoi(s); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	players, err := h.players.GetByRole(r.Context(), role, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch player rankings", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"players": players,
		"count":   len(players),
	})
}

// GetPlayerForm returns a player's recent scores and a form label.
func (h *Handler) GetPlayerForm(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	player, err := h.data.PlayerStats(r.Context(), name)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Player not found", nil)
			return
		}
		respondError(w, http.StatusServiceUnavailable, "Player data is temporarily unavailable", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"name":           player.Name,
		"recent_form":    player.RecentForm,
		"recent_wickets": player.RecentWickets,
		"current_form":   player.FormLabel(),
		"form_average":   player.FormAverage(),
	})
}

// GetLiveMatches returns matches currently in play. The scheduler's hot
// Redis snapshot covers the window between polls when the sources come
// back empty.
func (h *Handler) GetLiveMatches(w http.ResponseWriter, r *http.Request) {
	matches := h.data.LiveMatches(r.Context())
	if len(matches) == 0 && h.hot != nil {
		var snap []models.Match
		if err := h.hot.GetJSON(r.Context(), cache.LiveMatchesKey, &snap); err == nil {
			matches = snap
		}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"matches": matches,
		"count":   len(matches),
	})
}

// GetUpcomingMatches returns scheduled matches.
func (h *Handler) GetUpcomingMatches(w http.ResponseWriter, r *http.Request) {
	matches := h.data.UpcomingMatches(r.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"matches": matches,
		"count":   len(matches),
	})
}

// GetRecentMatches returns completed matches with results. An empty
// live read falls back to the persisted snapshots.
func (h *Handler) GetRecentMatches(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if l, err := strconv.Atoi(s); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	matches := h.data.RecentMatches(r.Context())
	if len(matches) == 0 && h.matches != nil {
		if snaps, err := h.matches.GetByStatus(r.Context(), models.StatusCompleted, limit); err == nil && len(snaps) > 0 {
			respondJSON(w, http.StatusOK, map[string]interface{}{
				"matches": snaps,
				"count":   len(snaps),
				"stale":   true,
			})
			return
		}
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"matches": matches,
		"count":   len(matches),
	})
}

// GetMatch returns a specific match by its upstream id, falling back to
// the persisted snapshot when the sources are down.
func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["matchID"]

	match, err := h.data.MatchDetails(r.Context(), id)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Match not found", nil)
			return
		}
		if h.matches != nil {
			if snap, serr := h.matches.GetByExternalID(r.Context(), id); serr == nil {
				respondJSON(w, http.StatusOK, map[string]interface{}{
					"match": snap,
					"stale": true,
				})
				return
			}
		}
		respondError(w, http.StatusServiceUnavailable, "Match data is temporarily unavailable", err)
		return
	}

	respondJSON(w, http.StatusOK, match)
}

// GetPitchConditions returns pitch ratings for a venue. Only curated or
// match-reported conditions are served here; unknown venues are a 404.
func (h *Handler) GetPitchConditions(w http.ResponseWriter, r *http.Request) {
	venue := mux.Vars(r)["venue"]

	pitch, ok := h.data.VenuePitch(venue)
	if !ok {
		respondError(w, http.StatusNotFound, "No pitch data for venue", nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"venue":            venue,
		"pitch_conditions": pitch,
	})
}

// GetDifferentials returns low-ownership picks for the next match.
func (h *Handler) GetDifferentials(w http.ResponseWriter, r *http.Request) {
	picks, err := h.engine.DifferentialPicks(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "No match context available for recommendations", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"differentials": picks,
		"count":         len(picks),
	})
}

// GetCaptains returns captain and vice-captain picks for the next match.
func (h *Handler) GetCaptains(w http.ResponseWriter, r *http.Request) {
	picks, err := h.engine.CaptainPicks(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "No match context available for recommendations", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"captains": picks,
		"count":    len(picks),
	})
}

// ComparePlayers scores two players against each other.
func (h *Handler) ComparePlayers(w http.ResponseWriter, r *http.Request) {
	p1 := r.URL.Query().Get("player1")
	p2 := r.URL.Query().Get("player2")
	if p1 == "" || p2 == "" {
		respondError(w, http.StatusBadRequest, "Missing query parameters 'player1' and 'player2'", nil)
		return
	}

	comparison, err := h.engine.ComparePlayers(r.Context(), p1, p2)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			respondError(w, http.StatusNotFound, "One or both players not found", nil)
			return
		}
		respondError(w, http.StatusServiceUnavailable, "Player data is temporarily unavailable", err)
		return
	}

	respondJSON(w, http.StatusOK, comparison)
}

// Register creates a new account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		respondError(w, http.StatusServiceUnavailable, "Authentication is not configured", nil)
		return
	}

	var req struct {
		Username        string `json:"username"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		var verr *auth.ValidationError
		if errors.As(err, &verr) {
			respondError(w, http.StatusBadRequest, verr.Error(), nil)
			return
		}
		respondError(w, http.StatusConflict, "Username or email is already taken", nil)
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

// Login verifies credentials and issues a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		respondError(w, http.StatusServiceUnavailable, "Authentication is not configured", nil)
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "Invalid username or password", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "Login failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// GetSchedulerStatus reports the background ingestion configuration.
func (h *Handler) GetSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	if h.sched == nil {
		respondError(w, http.StatusServiceUnavailable, "Scheduler is not running", nil)
		return
	}
	respondJSON(w, http.StatusOK, h.sched.GetStatus())
}

// TriggerSync starts an archive refresh without waiting for the nightly
// run. The sync itself runs in the background.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	if h.sched == nil {
		respondError(w, http.StatusServiceUnavailable, "Scheduler is not running", nil)
		return
	}

	go h.sched.TriggerArchiveSync(context.Background())
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "archive sync started"})
}

// GetMe returns the authenticated user's account.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	if h.users == nil {
		respondError(w, http.StatusServiceUnavailable, "Accounts require the database", nil)
		return
	}

	user, err := h.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Account not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to fetch account", err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// GetMyChats returns the authenticated user's recent exchanges.
func (h *Handler) GetMyChats(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	if h.chats == nil {
		respondError(w, http.StatusServiceUnavailable, "Chat history requires the database", nil)
		return
	}

	limit := 10
	if s := r.URL.Query().Get("limit"); s != "" {
		if l, err := strconv.Atoi(s); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	chats, err := h.chats.Recent(r.Context(), claims.UserID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch chat history", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"chats": chats,
		"count": len(chats),
	})
}

// GetMyPreferences returns the authenticated user's settings.
func (h *Handler) GetMyPreferences(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	if h.users == nil {
		respondError(w, http.StatusServiceUnavailable, "Preferences require the database", nil)
		return
	}

	prefs, err := h.users.GetPreferences(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch preferences", err)
		return
	}

	respondJSON(w, http.StatusOK, prefs)
}

// UpdateMyPreferences writes the authenticated user's settings.
func (h *Handler) UpdateMyPreferences(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	if h.users == nil {
		respondError(w, http.StatusServiceUnavailable, "Preferences require the database", nil)
		return
	}

	var pref store.UserPreference
	if err := json.NewDecoder(r.Body).Decode(&pref); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	pref.UserID = claims.UserID

	if err := h.users.UpdatePreferences(r.Context(), &pref); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update preferences", err)
		return
	}

	prefs, err := h.users.GetPreferences(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch preferences", err)
		return
	}

	respondJSON(w, http.StatusOK, prefs)
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
