// Package fantasy ranks players for fantasy cricket: differential
// picks, captain choices, and head-to-head comparisons. Scores are
// deterministic heuristics over form, role, pitch fit, ownership and
// price; the injected generator only adds a small jitter so equal
// players do not tie.
package fantasy

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/willow/internal/adapter"
	"github.com/fortuna/willow/internal/models"
)

// Pick is one recommended player with its score and reasoning.
type Pick struct {
	Player    models.Player `json:"player"`
	Score     float64       `json:"score"`
	Role      string        `json:"role"`
	Reasoning string        `json:"reasoning"`
}

// Comparison is the result of a head-to-head.
type Comparison struct {
	Player1        models.Player `json:"player1"`
	Player2        models.Player `json:"player2"`
	Score1         float64       `json:"score1"`
	Score2         float64       `json:"score2"`
	Recommendation string        `json:"recommendation"`
	Reasoning      string        `json:"reasoning"`
}

// maxOwnershipForDifferential excludes template players: a pick most
// entrants already own differentiates nothing.
const maxOwnershipForDifferential = 50.0

// Engine computes recommendations against the fused data layer.
type Engine struct {
	data *adapter.Adapter
	log  *logrus.Entry

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds an engine. Pass a seeded rng in tests for reproducible
// jitter.
func New(data *adapter.Adapter, rng *rand.Rand, log *logrus.Logger) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		data: data,
		rng:  rng,
		log:  log.WithField("component", "fantasy"),
	}
}

// DifferentialPicks returns up to five low-ownership players whose
// differential score clears the threshold, best first.
func (e *Engine) DifferentialPicks(ctx context.Context) ([]Pick, error) {
	match, pitch, players, err := e.matchContext(ctx)
	if err != nil {
		return nil, err
	}

	var picks []Pick
	for _, p := range players {
		if p.Ownership > maxOwnershipForDifferential {
			continue
		}
		score := e.differentialScore(p, pitch)
		if score <= 7 {
			continue
		}
		picks = append(picks, Pick{
			Player:    p,
			Score:     score,
			Role:      p.Role,
			Reasoning: differentialReasoning(p, pitch),
		})
	}

	sort.Slice(picks, func(i, j int) bool { return picks[i].Score > picks[j].Score })
	if len(picks) > 5 {
		picks = picks[:5]
	}

	e.log.WithFields(logrus.Fields{
		"match": match.Teams,
		"picks": len(picks),
	}).Debug("differential picks computed")
	return picks, nil
}

// CaptainPicks ranks players by captain score and returns the top six:
// the first three labeled Captain, the next three Vice-Captain.
func (e *Engine) CaptainPicks(ctx context.Context) ([]Pick, error) {
	match, pitch, players, err := e.matchContext(ctx)
	if err != nil {
		return nil, err
	}

	picks := make([]Pick, 0, len(players))
	for _, p := range players {
		picks = append(picks, Pick{
			Player:    p,
			Score:     e.captainScore(p, pitch),
			Reasoning: captainReasoning(p, pitch),
		})
	}

	sort.Slice(picks, func(i, j int) bool { return picks[i].Score > picks[j].Score })
	if len(picks) > 6 {
		picks = picks[:6]
	}
	for i := range picks {
		if i < 3 {
			picks[i].Role = "Captain"
		} else {
			picks[i].Role = "Vice-Captain"
		}
	}

	e.log.WithField("match", match.Teams).Debug("captain picks computed")
	return picks, nil
}

// ComparePlayers scores two players head to head for the next match's
// conditions.
func (e *Engine) ComparePlayers(ctx context.Context, name1, name2 string) (*Comparison, error) {
	p1, err := e.data.PlayerStats(ctx, name1)
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", name1, err)
	}
	p2, err := e.data.PlayerStats(ctx, name2)
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", name2, err)
	}

	pitch := e.nextMatchPitch(ctx)

	cmp := &Comparison{
		Player1: *p1,
		Player2: *p2,
		Score1:  e.comparisonScore(*p1, pitch),
		Score2:  e.comparisonScore(*p2, pitch),
	}

	better, worse := p1, p2
	if cmp.Score2 > cmp.Score1 {
		better, worse = p2, p1
	}
	cmp.Recommendation = fmt.Sprintf("Pick %s over %s", better.Name, worse.Name)
	cmp.Reasoning = comparisonReasoning(*better, *worse, pitch)

	return cmp, nil
}

// matchContext resolves the next relevant match, its pitch, and the
// candidate players from both rosters.
func (e *Engine) matchContext(ctx context.Context) (*models.Match, models.PitchConditions, []models.Player, error) {
	matches := e.data.LiveMatches(ctx)
	if len(matches) == 0 {
		matches = e.data.UpcomingMatches(ctx)
	}
	if len(matches) == 0 {
		return nil, models.PitchConditions{}, nil, fmt.Errorf("no live or upcoming matches")
	}
	match := matches[0]

	pitch := match.PitchConditions
	if !pitch.Valid() {
		pitch = e.data.PitchConditions(ctx, match.Venue)
	}

	players := e.rosterPlayers(ctx, match.Teams)
	if len(players) == 0 {
		players = e.data.KnownPlayers()
	}
	return &match, pitch, players, nil
}

// rosterPlayers resolves full stats for both teams' known squads.
func (e *Engine) rosterPlayers(ctx context.Context, teams string) []models.Player {
	parts := strings.Split(teams, " vs ")
	if len(parts) != 2 {
		e.log.WithField("teams", teams).Warn("could not split team names")
		return nil
	}

	var players []models.Player
	for _, team := range parts {
		roster, ok := e.data.Roster(strings.TrimSpace(team))
		if !ok {
			continue
		}
		for _, name := range roster {
			p, err := e.data.PlayerStats(ctx, name)
			if err != nil {
				e.log.WithError(err).WithField("player", name).Debug("skipping roster player")
				continue
			}
			players = append(players, *p)
		}
	}
	return players
}

// nextMatchPitch finds pitch conditions for the next match, if any.
func (e *Engine) nextMatchPitch(ctx context.Context) models.PitchConditions {
	matches := e.data.LiveMatches(ctx)
	if len(matches) == 0 {
		matches = e.data.UpcomingMatches(ctx)
	}
	if len(matches) == 0 {
		return models.PitchConditions{}
	}
	if matches[0].PitchConditions.Valid() {
		return matches[0].PitchConditions
	}
	return e.data.PitchConditions(ctx, matches[0].Venue)
}

// differentialScore rates a player's upside relative to ownership.
func (e *Engine) differentialScore(p models.Player, pitch models.PitchConditions) float64 {
	score := 5.0

	switch avg := p.FormAverage(); {
	case avg > 50:
		score += 2.0
	case avg > 30:
		score += 1.0
	case avg < 15:
		score -= 1.0
	}

	switch {
	case p.Role == models.RoleAllRounder:
		score += 1.5
	case p.IsBowler() && bowlerFriendly(pitch):
		score += 1.0
	case p.IsBatter() && battingFriendly(pitch):
		score += 1.0
	}

	switch {
	case p.Ownership < 10:
		score += 2.0
	case p.Ownership < 25:
		score += 1.0
	}

	if p.Price > 0 && p.Price < 7.0 {
		score += 1.0
	}

	return round1(score + e.jitter(0.2))
}

// comparisonScore rates a player for a head-to-head.
func (e *Engine) comparisonScore(p models.Player, pitch models.PitchConditions) float64 {
	score := 5.0

	switch avg := p.FormAverage(); {
	case avg > 50:
		score += 3.0
	case avg > 30:
		score += 1.5
	case avg < 15:
		score -= 1.0
	}

	switch {
	case p.Role == models.RoleAllRounder:
		score += 1.0
	case p.IsBowler() && bowlerFriendly(pitch):
		score += 1.5
	case p.IsBatter() && battingFriendly(pitch):
		score += 1.5
	}

	switch {
	case p.FantasyPointsAvg > 80:
		score += 2.0
	case p.FantasyPointsAvg > 60:
		score += 1.0
	}

	return round1(score + e.jitter(0.1))
}

// captainScore weights form heavier and rewards consistency; a captain
// doubles points, so a volatile star is a worse bet than a steady one.
func (e *Engine) captainScore(p models.Player, pitch models.PitchConditions) float64 {
	score := 5.0

	switch avg := p.FormAverage(); {
	case avg > 50:
		score += 3.0
	case avg > 30:
		score += 1.5
	case avg < 15:
		score -= 2.0
	}

	switch {
	case p.Role == models.RoleAllRounder:
		score += 1.5
	case p.IsBowler() && bowlerFriendly(pitch):
		score += 1.0
	case p.IsBatter() && battingFriendly(pitch):
		score += 1.0
	}

	switch {
	case p.FantasyPointsAvg > 80:
		score += 2.5
	case p.FantasyPointsAvg > 60:
		score += 1.5
	}

	if sd := stdDev(p.RecentForm); len(p.RecentForm) > 0 {
		switch {
		case sd < 10:
			score += 1.5
		case sd < 20:
			score += 0.5
		}
	}

	return round1(score + e.jitter(0.2))
}

// jitter returns a uniform value in [-spread, spread].
func (e *Engine) jitter(spread float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return (e.rng.Float64()*2 - 1) * spread
}

// battingFriendly reports whether the pitch favors batters.
func battingFriendly(pitch models.PitchConditions) bool {
	return pitch.BattingFriendly >= 7
}

// bowlerFriendly reports whether the pitch favors either bowling style.
func bowlerFriendly(pitch models.PitchConditions) bool {
	return pitch.PaceFriendly >= 7 || pitch.SpinFriendly >= 7
}

func stdDev(series []int) float64 {
	if len(series) == 0 {
		return 0
	}
	var sum float64
	for _, v := range series {
		sum += float64(v)
	}
	mean := sum / float64(len(series))
	var variance float64
	for _, v := range series {
		variance += (float64(v) - mean) * (float64(v) - mean)
	}
	return math.Sqrt(variance / float64(len(series)))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func differentialReasoning(p models.Player, pitch models.PitchConditions) string {
	var reasons []string

	switch {
	case p.Ownership < 10:
		reasons = append(reasons, fmt.Sprintf("has very low ownership (%.1f%%)", p.Ownership))
	case p.Ownership < 25:
		reasons = append(reasons, fmt.Sprintf("has low ownership (%.1f%%)", p.Ownership))
	}

	switch avg := p.FormAverage(); {
	case avg > 40:
		reasons = append(reasons, fmt.Sprintf("is in good form (avg: %.1f)", avg))
	case avg > 25:
		reasons = append(reasons, "has shown decent form recently")
	}

	if p.Price > 0 && p.Price < 7.0 {
		reasons = append(reasons, fmt.Sprintf("is budget-friendly at %.1f credits", p.Price))
	}

	switch {
	case p.IsBowler() && bowlerFriendly(pitch):
		reasons = append(reasons, "will benefit from bowler-friendly conditions")
	case p.IsBatter() && battingFriendly(pitch):
		reasons = append(reasons, "will benefit from batting-friendly conditions")
	}

	if len(reasons) == 0 {
		return fmt.Sprintf("%s could be a good differential pick for this match", p.Name)
	}
	return fmt.Sprintf("%s is a good differential pick because they %s", p.Name, strings.Join(reasons, " and "))
}

func captainReasoning(p models.Player, pitch models.PitchConditions) string {
	var reasons []string

	switch avg := p.FormAverage(); {
	case avg > 50:
		reasons = append(reasons, fmt.Sprintf("excellent current form (avg: %.1f)", avg))
	case avg > 35:
		reasons = append(reasons, fmt.Sprintf("good current form (avg: %.1f)", avg))
	}

	switch {
	case p.FantasyPointsAvg > 80:
		reasons = append(reasons, fmt.Sprintf("high fantasy points average (%.1f)", p.FantasyPointsAvg))
	case p.FantasyPointsAvg > 60:
		reasons = append(reasons, fmt.Sprintf("good fantasy points average (%.1f)", p.FantasyPointsAvg))
	}

	if p.Role == models.RoleAllRounder {
		reasons = append(reasons, "all-rounder capabilities (can score points with both bat and ball)")
	}

	switch {
	case p.IsBowler() && bowlerFriendly(pitch):
		reasons = append(reasons, "favorable bowling conditions")
	case p.IsBatter() && battingFriendly(pitch):
		reasons = append(reasons, "favorable batting conditions")
	}

	if len(reasons) == 0 {
		return fmt.Sprintf("%s could be a good captain choice for this match", p.Name)
	}
	return fmt.Sprintf("%s is a good captain choice because of %s", p.Name, strings.Join(reasons, " and "))
}

func comparisonReasoning(better, worse models.Player, pitch models.PitchConditions) string {
	var reasons []string

	if ba, wa := better.FormAverage(), worse.FormAverage(); ba > wa {
		reasons = append(reasons, fmt.Sprintf("better current form (avg: %.1f vs %.1f)", ba, wa))
	}

	if better.FantasyPointsAvg > worse.FantasyPointsAvg {
		reasons = append(reasons, fmt.Sprintf("higher fantasy points average (%.1f vs %.1f)",
			better.FantasyPointsAvg, worse.FantasyPointsAvg))
	}

	switch {
	case better.IsBowler() && bowlerFriendly(pitch):
		reasons = append(reasons, "better suited to the bowler-friendly conditions")
	case better.IsBatter() && battingFriendly(pitch):
		reasons = append(reasons, "better suited to the batting-friendly conditions")
	}

	if len(reasons) == 0 {
		return fmt.Sprintf("%s is slightly favored over %s for this match", better.Name, worse.Name)
	}
	return fmt.Sprintf("Pick %s over %s because of %s", better.Name, worse.Name, strings.Join(reasons, " and "))
}
