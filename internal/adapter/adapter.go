// Package adapter fuses the individual data sources into one answer per
// question. Each operation walks a fixed priority chain and the player
// path layers volatile fields from the freshest source on top of the
// archive's career record.
package adapter

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/willow/internal/cache"
	"github.com/fortuna/willow/internal/models"
	"github.com/fortuna/willow/internal/source"
)

// Sources collects the adapter's inputs. Nil entries are skipped, so a
// deployment without a paid API key simply has a shorter chain.
type Sources struct {
	Archive  source.Source
	RapidAPI source.Source
	CricAPI  source.Source
	Scraper  source.Source
	Static   source.Source
}

// StaticData is the slice of the static source the adapter needs beyond
// the Source interface.
type StaticData interface {
	PitchConditions(venue string) (models.PitchConditions, bool)
	Roster(team string) ([]string, bool)
	AllPlayers() []models.Player
	Venues() []string
	Teams() []string
}

// Adapter answers data questions by consulting sources in priority
// order.
type Adapter struct {
	sources Sources
	static  StaticData
	cache   *cache.FileCache
	log     *logrus.Entry

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds an adapter. rng seeds pitch synthesis for venues no table
// covers; pass a seeded generator in tests.
func New(srcs Sources, static StaticData, fc *cache.FileCache, rng *rand.Rand, log *logrus.Logger) *Adapter {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Adapter{
		sources: srcs,
		static:  static,
		cache:   fc,
		rng:     rng,
		log:     log.WithField("component", "adapter"),
	}
}

// PlayerStats resolves a player record. The archive supplies the career
// base, the freshest API overwrites the volatile fields, and the static
// dataset backstops both. The fused record is cached write-through.
func (a *Adapter) PlayerStats(ctx context.Context, name string) (*models.Player, error) {
	corrected := NormalizePlayerName(name)
	if corrected == "" {
		return nil, source.ErrNotFound
	}

	var cached models.Player
	if err := a.cache.Get(cache.KindPlayerStats, corrected, &cached); err == nil {
		a.refreshVolatile(ctx, &cached)
		return &cached, nil
	}

	player := a.fusePlayer(ctx, corrected)
	if player == nil {
		return nil, source.ErrNotFound
	}

	player.Name = corrected
	if corrected != name {
		player.OriginalQuery = name
	}
	player.LastUpdated = time.Now()

	if err := a.cache.Set(cache.KindPlayerStats, corrected, player); err != nil {
		a.log.WithError(err).Warn("caching fused player record")
	}
	return player, nil
}

// fusePlayer builds the record from the source chain.
func (a *Adapter) fusePlayer(ctx context.Context, name string) *models.Player {
	var base *models.Player

	if a.sources.Archive != nil {
		p, err := a.sources.Archive.PlayerStats(ctx, name)
		if err == nil && p.MatchesPlayed > 0 {
			base = p
		} else if err != nil {
			a.log.WithError(err).WithField("player", name).Debug("archive lookup failed")
		}
	}

	if a.sources.RapidAPI != nil {
		fresh, err := a.sources.RapidAPI.PlayerStats(ctx, name)
		switch {
		case err != nil:
			a.log.WithError(err).WithField("player", name).Debug("rapidapi lookup failed")
		case base != nil:
			overlayVolatile(base, fresh)
		default:
			base = fresh
		}
	}

	if base == nil && a.sources.Static != nil {
		p, err := a.sources.Static.PlayerStats(ctx, name)
		if err == nil {
			a.log.WithField("player", name).Warn("serving static fallback record")
			base = p
		}
	}

	return base
}

// overlayVolatile copies the fresh source's volatile fields onto the
// base record when the fresh source actually has them.
func overlayVolatile(base, fresh *models.Player) {
	if fresh == nil {
		return
	}
	if len(fresh.RecentForm) > 0 {
		base.RecentForm = fresh.RecentForm
	}
	if len(fresh.RecentWickets) > 0 {
		base.RecentWickets = fresh.RecentWickets
	}
	if fresh.CurrentForm != "" {
		base.CurrentForm = fresh.CurrentForm
	}
	if base.Role == models.RoleUnknown && fresh.Role != models.RoleUnknown {
		base.Role = fresh.Role
	}
}

// refreshVolatile updates a cached record's volatile fields in place
// when the fresh source answers, then rewrites the cache entry.
// Failures leave the cached record untouched.
func (a *Adapter) refreshVolatile(ctx context.Context, p *models.Player) {
	if a.sources.RapidAPI == nil {
		return
	}
	fresh, err := a.sources.RapidAPI.PlayerStats(ctx, p.Name)
	if err != nil {
		return
	}
	before := p.CurrentForm
	overlayVolatile(p, fresh)
	if p.CurrentForm != before || len(fresh.RecentForm) > 0 {
		if err := a.cache.Set(cache.KindPlayerStats, p.Name, p); err != nil {
			a.log.WithError(err).Warn("rewriting refreshed player record")
		}
	}
}

// LiveMatches returns live matches from the freshest available source.
func (a *Adapter) LiveMatches(ctx context.Context) []models.Match {
	chain := compact(a.sources.RapidAPI, a.sources.CricAPI, a.sources.Scraper, a.sources.Static)
	matches := a.firstMatches(ctx, "live", chain, func(ctx context.Context, s source.Source) ([]models.Match, error) {
		return s.LiveMatches(ctx)
	})
	return a.withPitch(matches)
}

// UpcomingMatches returns fixtures, preferring real-time sources and
// falling through the archive to the static schedule.
func (a *Adapter) UpcomingMatches(ctx context.Context) []models.Match {
	chain := compact(a.sources.RapidAPI, a.sources.Archive, a.sources.CricAPI, a.sources.Static)
	matches := a.firstMatches(ctx, "upcoming", chain, func(ctx context.Context, s source.Source) ([]models.Match, error) {
		return s.UpcomingMatches(ctx)
	})
	return a.withPitch(matches)
}

// RecentMatches returns completed matches, same chain as upcoming.
func (a *Adapter) RecentMatches(ctx context.Context) []models.Match {
	chain := compact(a.sources.RapidAPI, a.sources.Archive, a.sources.CricAPI, a.sources.Static)
	matches := a.firstMatches(ctx, "recent", chain, func(ctx context.Context, s source.Source) ([]models.Match, error) {
		return s.RecentMatches(ctx)
	})
	return a.withPitch(matches)
}

// MatchDetails resolves one match by id across the API sources and the
// archive.
func (a *Adapter) MatchDetails(ctx context.Context, id string) (*models.Match, error) {
	for _, s := range compact(a.sources.RapidAPI, a.sources.CricAPI, a.sources.Archive) {
		m, err := s.MatchDetails(ctx, id)
		if err == nil {
			return m, nil
		}
	}
	return nil, source.ErrNotFound
}

// PitchConditions reports a venue's pitch profile: the curated venue
// table first, then any match already carrying conditions for the
// venue, then a synthesized mid-range profile.
func (a *Adapter) PitchConditions(ctx context.Context, venue string) models.PitchConditions {
	if a.static != nil {
		if pc, ok := a.static.PitchConditions(venue); ok {
			return pc
		}
	}

	lower := normalizeVenue(venue)
	all := append(a.UpcomingMatches(ctx), a.LiveMatches(ctx)...)
	for _, m := range all {
		if m.PitchConditions.Valid() && containsVenue(m.Venue, lower) {
			return m.PitchConditions
		}
	}

	return a.synthesizePitch()
}

// synthesizePitch invents a plausible profile for unknown venues. Scores
// stay mid-range so recommendations do not swing on invented data.
func (a *Adapter) synthesizePitch() models.PitchConditions {
	a.mu.Lock()
	defer a.mu.Unlock()
	return models.PitchConditions{
		BattingFriendly: 4 + a.rng.Intn(5),
		PaceFriendly:    4 + a.rng.Intn(5),
		SpinFriendly:    4 + a.rng.Intn(5),
	}
}

// Roster returns a team's squad from the static dataset.
func (a *Adapter) Roster(team string) ([]string, bool) {
	if a.static == nil {
		return nil, false
	}
	return a.static.Roster(team)
}

// KnownPlayers lists the static dataset, the universe recommendation
// heuristics rank when no roster is in play.
func (a *Adapter) KnownPlayers() []models.Player {
	if a.static == nil {
		return nil
	}
	return a.static.AllPlayers()
}

// KnownVenues lists venues with curated pitch profiles.
func (a *Adapter) KnownVenues() []string {
	if a.static == nil {
		return nil
	}
	return a.static.Venues()
}

// KnownTeams lists teams with curated rosters.
func (a *Adapter) KnownTeams() []string {
	if a.static == nil {
		return nil
	}
	return a.static.Teams()
}

// VenuePitch reports only the curated table, no synthesis. The chat
// pitch report refuses to invent conditions for unknown grounds.
func (a *Adapter) VenuePitch(venue string) (models.PitchConditions, bool) {
	if a.static == nil {
		return models.PitchConditions{}, false
	}
	return a.static.PitchConditions(venue)
}

// withPitch backfills pitch conditions on matches whose source did not
// provide any, using the venue table where it applies.
func (a *Adapter) withPitch(matches []models.Match) []models.Match {
	if a.static == nil {
		return matches
	}
	for i := range matches {
		if matches[i].PitchConditions.Valid() {
			continue
		}
		if pc, ok := a.static.PitchConditions(matches[i].Venue); ok {
			matches[i].PitchConditions = pc
		} else {
			matches[i].PitchConditions = a.synthesizePitch()
		}
	}
	return matches
}

// InvalidatePlayer drops the fused record so the next lookup refetches.
func (a *Adapter) InvalidatePlayer(name string) error {
	return a.cache.Invalidate(cache.KindPlayerStats, NormalizePlayerName(name))
}

func compact(srcs ...source.Source) []source.Source {
	out := make([]source.Source, 0, len(srcs))
	for _, s := range srcs {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func normalizeVenue(v string) string {
	return cache.NormalizeKey(v)
}

func containsVenue(matchVenue, normalized string) bool {
	mv := cache.NormalizeKey(matchVenue)
	if mv == "" || normalized == "" {
		return false
	}
	return strings.Contains(mv, normalized) || strings.Contains(normalized, mv)
}
