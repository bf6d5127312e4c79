package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fortuna/willow/internal/adapter"
)

var (
	liveKeywords     = []string{"live", "current", "today", "match", "playing", "score"}
	upcomingKeywords = []string{"upcoming", "schedule", "next", "future", "coming", "fixtures"}
)

// contextBuilder assembles the data block prepended to the user query.
// Each relevant fetch runs in its own goroutine under a per-fetch
// timeout; whatever has answered when the overall budget expires is
// what the model gets.
type contextBuilder struct {
	data         *adapter.Adapter
	fetchTimeout time.Duration
	budget       time.Duration
}

// section is one labeled context block; ord keeps assembly output
// stable regardless of which goroutine finishes first.
type section struct {
	ord  int
	text string
}

// build collects context for the query. Returns "" when nothing in the
// query asks for data.
func (cb *contextBuilder) build(ctx context.Context, query string) string {
	ctx, cancel := context.WithTimeout(ctx, cb.budget)
	defer cancel()

	q := strings.ToLower(query)

	var fetches []func(context.Context) *section
	if anyKeyword(q, liveKeywords) {
		fetches = append(fetches, cb.liveSection)
	}
	if anyKeyword(q, upcomingKeywords) {
		fetches = append(fetches, cb.upcomingSection)
	}
	for _, name := range cb.mentionedPlayers(q) {
		name := name
		fetches = append(fetches, func(ctx context.Context) *section {
			return cb.playerSection(ctx, name)
		})
	}
	for _, venue := range cb.mentionedVenues(q) {
		venue := venue
		fetches = append(fetches, func(ctx context.Context) *section {
			return cb.pitchSection(ctx, venue)
		})
	}
	if len(fetches) == 0 {
		return ""
	}

	results := make(chan *section, len(fetches))
	var wg sync.WaitGroup
	for i, fetch := range fetches {
		wg.Add(1)
		go func(ord int, fetch func(context.Context) *section) {
			defer wg.Done()
			fctx, fcancel := context.WithTimeout(ctx, cb.fetchTimeout)
			defer fcancel()
			if s := fetch(fctx); s != nil {
				s.ord = ord
				results <- s
			}
		}(i, fetch)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]*section, len(fetches))
	for s := range results {
		collected[s.ord] = s
	}

	var parts []string
	for _, s := range collected {
		if s != nil {
			parts = append(parts, s.text)
		}
	}
	return strings.Join(parts, "\n")
}

func (cb *contextBuilder) liveSection(ctx context.Context) *section {
	matches := cb.data.LiveMatches(ctx)
	if len(matches) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("LIVE MATCHES:\n")
	for _, m := range matches {
		status := m.Score
		if status == "" {
			status = m.Status
		}
		fmt.Fprintf(&b, "- %s | %s | %s\n", m.Teams, status, m.Venue)
	}
	return &section{text: b.String()}
}

func (cb *contextBuilder) upcomingSection(ctx context.Context) *section {
	matches := cb.data.UpcomingMatches(ctx)
	if len(matches) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("UPCOMING MATCHES:\n")
	for _, m := range matches {
		fmt.Fprintf(&b, "- %s | %s | %s\n", m.Teams, m.Date, m.Venue)
	}
	return &section{text: b.String()}
}

func (cb *contextBuilder) playerSection(ctx context.Context, name string) *section {
	p, err := cb.data.PlayerStats(ctx, name)
	if err != nil {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "PLAYER INFO - %s:\n", p.Name)
	fmt.Fprintf(&b, "- team: %s\n- role: %s\n", p.Team, p.Role)
	fmt.Fprintf(&b, "- batting_avg: %.1f\n- strike_rate: %.1f\n", p.BattingAvg, p.StrikeRate)
	if p.IsBowler() {
		fmt.Fprintf(&b, "- bowling_avg: %.1f\n- economy: %.1f\n", p.BowlingAvg, p.Economy)
	}
	if len(p.RecentForm) > 0 {
		fmt.Fprintf(&b, "- recent_form: %v\n", p.RecentForm)
	}
	if len(p.RecentWickets) > 0 {
		fmt.Fprintf(&b, "- recent_wickets: %v\n", p.RecentWickets)
	}
	if p.CurrentForm != "" {
		fmt.Fprintf(&b, "- current_form: %s\n", p.CurrentForm)
	}
	fmt.Fprintf(&b, "- fantasy_points_avg: %.1f\n- ownership: %.1f\n- price: %.1f\n",
		p.FantasyPointsAvg, p.Ownership, p.Price)
	return &section{text: b.String()}
}

func (cb *contextBuilder) pitchSection(ctx context.Context, venue string) *section {
	pc := cb.data.PitchConditions(ctx, venue)
	if !pc.Valid() {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "PITCH CONDITIONS - %s:\n", venue)
	fmt.Fprintf(&b, "- Batting friendly: %d/10\n", pc.BattingFriendly)
	fmt.Fprintf(&b, "- Pace bowling friendly: %d/10\n", pc.PaceFriendly)
	fmt.Fprintf(&b, "- Spin friendly: %d/10\n", pc.SpinFriendly)
	return &section{text: b.String()}
}

// mentionedPlayers scans for known player surnames in the query.
func (cb *contextBuilder) mentionedPlayers(q string) []string {
	var out []string
	for _, p := range cb.data.KnownPlayers() {
		lower := strings.ToLower(p.Name)
		fields := strings.Fields(lower)
		surname := fields[len(fields)-1]
		if strings.Contains(q, lower) || (len(surname) >= 4 && strings.Contains(q, surname)) {
			out = append(out, p.Name)
		}
		if len(out) == 3 {
			break
		}
	}
	return out
}

func (cb *contextBuilder) mentionedVenues(q string) []string {
	var out []string
	for _, v := range cb.data.KnownVenues() {
		if strings.Contains(q, strings.ToLower(v)) {
			out = append(out, v)
		}
	}
	return out
}

func anyKeyword(q string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(q, k) {
			return true
		}
	}
	return false
}
