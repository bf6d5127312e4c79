// Package static is the terminal tier of every source chain: a curated
// in-memory table that never fails and never goes to the network.
package static

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/fortuna/willow/internal/models"
	"github.com/fortuna/willow/internal/source"
)

// SourceName tags records produced by this package.
const SourceName = "static"

// Client serves the curated fallback dataset.
type Client struct{}

// New returns the static fallback source.
func New() *Client {
	return &Client{}
}

// Name implements source.Source.
func (c *Client) Name() string { return SourceName }

// PlayerStats looks up a player by exact, then partial, then token match.
// Tokens shorter than 4 characters are ignored to keep "MS" from matching
// everything.
func (c *Client) PlayerStats(_ context.Context, name string) (*models.Player, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return nil, source.ErrNotFound
	}

	for i := range players {
		if strings.ToLower(players[i].Name) == lower {
			return c.tagged(&players[i]), nil
		}
	}

	for i := range players {
		if strings.Contains(strings.ToLower(players[i].Name), lower) {
			return c.tagged(&players[i]), nil
		}
	}

	for _, part := range strings.Fields(lower) {
		if len(part) < 4 {
			continue
		}
		for i := range players {
			for _, known := range strings.Fields(strings.ToLower(players[i].Name)) {
				if part == known {
					return c.tagged(&players[i]), nil
				}
			}
		}
	}

	return nil, source.ErrNotFound
}

// LiveMatches implements source.Source.
func (c *Client) LiveMatches(_ context.Context) ([]models.Match, error) {
	return c.taggedMatches(liveMatches), nil
}

// UpcomingMatches implements source.Source.
func (c *Client) UpcomingMatches(_ context.Context) ([]models.Match, error) {
	return c.taggedMatches(upcomingMatches), nil
}

// RecentMatches implements source.Source. The static table carries no
// completed matches; the fixtures double as the deepest recent tier the
// way the original fallback table did.
func (c *Client) RecentMatches(_ context.Context) ([]models.Match, error) {
	return c.taggedMatches(upcomingMatches), nil
}

// MatchDetails implements source.Source.
func (c *Client) MatchDetails(_ context.Context, id string) (*models.Match, error) {
	for _, set := range [][]models.Match{liveMatches, upcomingMatches} {
		for i := range set {
			if set[i].ID == id || strings.EqualFold(set[i].Teams, id) {
				m := set[i]
				m.Source = SourceName
				return &m, nil
			}
		}
	}
	return nil, source.ErrNotFound
}

// PitchConditions returns the venue table entry on a substring match.
func (c *Client) PitchConditions(venue string) (models.PitchConditions, bool) {
	lower := strings.ToLower(venue)
	for known, pc := range VenuePitchTable {
		if strings.Contains(lower, strings.ToLower(known)) || strings.Contains(strings.ToLower(known), lower) {
			return pc, true
		}
	}
	return models.PitchConditions{}, false
}

// Roster returns the known player names for a team, matching loosely on
// either containment direction.
func (c *Client) Roster(team string) ([]string, bool) {
	lower := strings.ToLower(strings.TrimSpace(team))
	if lower == "" {
		return nil, false
	}
	for known, names := range TeamRosters {
		kl := strings.ToLower(known)
		if strings.Contains(kl, lower) || strings.Contains(lower, kl) {
			return names, true
		}
	}
	return nil, false
}

// Venues lists the venues the pitch table knows, sorted for stable
// query scanning.
func (c *Client) Venues() []string {
	out := make([]string, 0, len(VenuePitchTable))
	for v := range VenuePitchTable {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Teams lists the teams with known rosters, sorted.
func (c *Client) Teams() []string {
	out := make([]string, 0, len(TeamRosters))
	for t := range TeamRosters {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// AllPlayers returns a copy of the full fallback table, tagged.
func (c *Client) AllPlayers() []models.Player {
	out := make([]models.Player, len(players))
	for i := range players {
		out[i] = *c.tagged(&players[i])
	}
	return out
}

func (c *Client) tagged(p *models.Player) *models.Player {
	cp := *p
	cp.Source = SourceName
	cp.LastUpdated = time.Now()
	if cp.RecentForm != nil {
		cp.RecentForm = append([]int(nil), p.RecentForm...)
	}
	if cp.RecentWickets != nil {
		cp.RecentWickets = append([]int(nil), p.RecentWickets...)
	}
	return &cp
}

func (c *Client) taggedMatches(in []models.Match) []models.Match {
	out := make([]models.Match, len(in))
	for i := range in {
		out[i] = in[i]
		out[i].Source = SourceName
		if out[i].Date == "" {
			out[i].Date = time.Now().AddDate(0, 0, i+1).Format("02 Jan")
		}
	}
	return out
}
