// Package assistant answers fantasy cricket questions. The rule router
// is an ordered table of (pattern, handler) pairs; the first matching
// entry wins, and the table order is load-bearing because several
// patterns overlap.
package assistant

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/willow/internal/adapter"
	"github.com/fortuna/willow/internal/fantasy"
	"github.com/fortuna/willow/internal/models"
)

// Greeting is the first message chat surfaces show.
const Greeting = `👋 Hello! I'm your Fantasy Cricket Assistant. I can help you make informed decisions for your fantasy cricket team.

Here's what I can assist you with:
- Player recommendations based on form and match conditions
- Detailed player statistics and analysis
- Fantasy cricket rules and scoring systems
- Match insights and pitch reports

What would you like to know today?`

const helpMessage = `I'm not sure what you're asking. I can help with:
- Player statistics (e.g., "Show me stats for Virat Kohli")
- Player form (e.g., "How is Bumrah playing?")
- Recommendations (e.g., "Suggest batsmen for today's match")
- Fantasy rules (e.g., "Explain fantasy cricket scoring")
- Pitch reports (e.g., "Pitch conditions in Mumbai")
- Captain picks (e.g., "Who should be my captain?")
- Upcoming matches (e.g., "Show upcoming matches")
- Player comparisons (e.g., "Compare Rohit and Williamson")

How can I assist you?`

var (
	greetRe    = regexp.MustCompile(`(?i)\b(hi|hello|hey|greetings|sup)\b|what's up`)
	thanksRe   = regexp.MustCompile(`(?i)\b(thanks|thank you|thx|ty)\b`)
	statsRe    = regexp.MustCompile(`(?i)\b(stats|statistics|info|information)\b`)
	formRe     = regexp.MustCompile(`(?i)\bform\b|\bperformance\b|how is .+ playing`)
	suggestRe  = regexp.MustCompile(`(?i)\b(recommend|suggest|best|top|differential)\b`)
	rulesRe    = regexp.MustCompile(`(?i)\brules\b|\bscoring\b|\bpoints\b|how (to|do) (play|score)|fantasy (rules|points|scoring)`)
	pitchRe    = regexp.MustCompile(`(?i)\bpitch\b|\bground\b|\bstadium\b|\bvenue\b|conditions? (in|at|of)`)
	captainRe  = regexp.MustCompile(`(?i)\bcaptain\b|vice[\s-]captain|\bvc\b`)
	liveRe     = regexp.MustCompile(`(?i)\blive\b|\bscore(s|board)?\b|happening now`)
	recentRe   = regexp.MustCompile(`(?i)\brecent\b|\bresults?\b|last match`)
	upcomingRe = regexp.MustCompile(`(?i)\bmatches\b|\bschedule\b|\bfixtures?\b|\bupcoming\b|next match`)
	compareRe  = regexp.MustCompile(`(?i)\bcompare\b|\bversus\b|\bvs\b|difference between`)

	// Name extraction for "stats for X" / "how is X playing" phrasing.
	statsNameRe   = regexp.MustCompile(`(?i)(?:stats|statistics|info|information)\s+(?:for|about|on|of)\s+(.+)`)
	formNameRe    = regexp.MustCompile(`(?i)how is\s+(.+?)\s+playing`)
	formOfRe      = regexp.MustCompile(`(?i)(?:form|performance)\s+(?:of|for)\s+(.+)`)
	compareTwoRe  = regexp.MustCompile(`(?i)(?:compare|difference between)\s+(.+?)\s+(?:and|vs\.?|versus|with)\s+(.+)`)
	versusTwoRe   = regexp.MustCompile(`(?i)(.+?)\s+(?:vs\.?|versus)\s+(.+)`)
	budgetRe      = regexp.MustCompile(`(?i)budget\s+(\d+\.?\d*)`)
	trailingPunct = regexp.MustCompile(`[?!.,]+$`)
)

// route pairs a recognizer with its handler. compare sits after the
// match routes but its keywords do not collide with them; the greedy
// stats/form/suggest routes must stay at the top, mirroring how users
// actually phrase questions.
type route struct {
	name    string
	matches func(string) bool
	handle  func(context.Context, string) string
}

// Assistant resolves chat queries against the data and recommendation
// layers.
type Assistant struct {
	data   *adapter.Adapter
	engine *fantasy.Engine
	routes []route
	log    *logrus.Entry
}

// New wires the rule router.
func New(data *adapter.Adapter, engine *fantasy.Engine, log *logrus.Logger) *Assistant {
	a := &Assistant{
		data:   data,
		engine: engine,
		log:    log.WithField("component", "assistant"),
	}
	a.routes = []route{
		{"greet", matcher(greetRe), a.handleGreet},
		{"thanks", matcher(thanksRe), a.handleThanks},
		{"compare", matcher(compareRe), a.handleCompare},
		{"stats", matcher(statsRe), a.handleStats},
		{"form", matcher(formRe), a.handleForm},
		{"recommend", matcher(suggestRe), a.handleRecommend},
		{"rules", matcher(rulesRe), a.handleRules},
		{"pitch", matcher(pitchRe), a.handlePitch},
		{"captain", matcher(captainRe), a.handleCaptain},
		{"live", matcher(liveRe), a.handleLive},
		{"recent", matcher(recentRe), a.handleRecent},
		{"upcoming", matcher(upcomingRe), a.handleUpcoming},
	}
	return a
}

func matcher(re *regexp.Regexp) func(string) bool {
	return re.MatchString
}

// Respond routes one query. Unmatched queries fall through to a scan
// for bare player names, then to the help menu.
func (a *Assistant) Respond(ctx context.Context, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return helpMessage
	}

	for _, r := range a.routes {
		if !r.matches(query) {
			continue
		}
		a.log.WithField("route", r.name).Debug("query routed")
		return r.handle(ctx, query)
	}

	// Bare player names: "Kohli?" is a stats question.
	if name := a.scanPlayerName(query); name != "" {
		if formRe.MatchString(query) {
			return a.handleForm(ctx, "form of "+name)
		}
		return a.handleStats(ctx, "stats for "+name)
	}

	return helpMessage
}

func (a *Assistant) handleGreet(context.Context, string) string {
	return "👋 Hello! How can I help with your fantasy cricket team today?"
}

func (a *Assistant) handleThanks(context.Context, string) string {
	return "You're welcome! Feel free to ask if you need more fantasy cricket advice."
}

func (a *Assistant) handleStats(ctx context.Context, query string) string {
	name := extractName(statsNameRe, query)
	if name == "" {
		name = a.scanPlayerName(query)
	}
	if name == "" {
		return "I need a player name to provide statistics. Could you specify which player you're interested in?"
	}

	player, err := a.data.PlayerStats(ctx, name)
	if err != nil {
		return fmt.Sprintf("I couldn't find statistics for %s. Could you check the spelling or try another player?", name)
	}
	return playerCard(player)
}

func (a *Assistant) handleForm(ctx context.Context, query string) string {
	name := extractName(formNameRe, query)
	if name == "" {
		name = extractName(formOfRe, query)
	}
	if name == "" {
		name = a.scanPlayerName(query)
	}
	if name == "" {
		return "I need a player name to provide form information. Could you specify which player you're interested in?"
	}

	player, err := a.data.PlayerStats(ctx, name)
	if err != nil {
		return fmt.Sprintf("I couldn't find form information for %s. Could you check the spelling or try another player?", name)
	}
	return formCard(player)
}

func (a *Assistant) handleRecommend(ctx context.Context, query string) string {
	if strings.Contains(lower(query), "differential") {
		return a.handleDifferentials(ctx)
	}

	role := extractRole(query)
	venue := a.extractVenue(query)
	team := a.extractTeam(query)
	budget := extractBudget(query)

	recs := a.recommendPlayers(ctx, role, team, budget, 5)
	if len(recs) == 0 {
		return "I couldn't find any players matching your criteria. Try broadening your search parameters."
	}

	var b strings.Builder
	b.WriteString("🏆 **Recommended Players:**\n\n")
	for i, p := range recs {
		fmt.Fprintf(&b, "%d. %s (%s) - %s\n", i+1, p.Name, p.Team, p.Role)

		if venue != "" {
			if pc, ok := a.data.VenuePitch(venue); ok {
				switch {
				case role == models.RoleBatsman && pc.BattingFriendly > 7:
					fmt.Fprintf(&b, "   ✓ Great pick for batting-friendly %s pitch\n", venue)
				case role == models.RoleBowler && (pc.PaceFriendly > 7 || pc.SpinFriendly > 7):
					fmt.Fprintf(&b, "   ✓ Well-suited for the %s pitch conditions\n", venue)
				}
			}
		}

		form := p.CurrentForm
		if form == "" {
			form = classifyFormAverage(&p)
		}
		if form == "excellent" || form == "good" {
			fmt.Fprintf(&b, "   ✓ In %s form recently\n", form)
		}

		fmt.Fprintf(&b, "   💰 Price: %.1f | Fantasy Pts Avg: %.1f\n\n", p.Price, p.FantasyPointsAvg)
	}
	return b.String()
}

func (a *Assistant) handleDifferentials(ctx context.Context) string {
	picks, err := a.engine.DifferentialPicks(ctx)
	if err != nil || len(picks) == 0 {
		return "I couldn't compute differential picks right now. Try again once a match is live or scheduled."
	}

	var b strings.Builder
	b.WriteString("💎 **Differential Picks** (low ownership, high upside):\n\n")
	for i, pick := range picks {
		fmt.Fprintf(&b, "%d. %s (%s) - %s | Score: %.1f\n", i+1,
			pick.Player.Name, pick.Player.Team, pick.Player.Role, pick.Score)
		fmt.Fprintf(&b, "   %s\n\n", pick.Reasoning)
	}
	return b.String()
}

func (a *Assistant) handleRules(_ context.Context, query string) string {
	return ruleExplanation(query)
}

func (a *Assistant) handlePitch(ctx context.Context, query string) string {
	venue := a.extractVenue(query)
	if venue == "" {
		return "I couldn't find pitch information for that venue. Try specifying a different stadium like Mumbai, Chennai, Delhi, etc."
	}
	pc := a.data.PitchConditions(ctx, venue)
	return pitchReport(venue, pc)
}

func (a *Assistant) handleCaptain(ctx context.Context, _ string) string {
	picks, err := a.engine.CaptainPicks(ctx)
	if err != nil || len(picks) == 0 {
		return "I couldn't compute captain picks right now. Try again once a match is live or scheduled."
	}

	var b strings.Builder
	b.WriteString("👑 **Captain & Vice-Captain Recommendations**\n\n")

	b.WriteString("**Captain Picks:**\n")
	n := 1
	for _, pick := range picks {
		if pick.Role != "Captain" {
			continue
		}
		fmt.Fprintf(&b, "%d. %s (%s) - %s\n", n, pick.Player.Name, pick.Player.Team, pick.Player.Role)
		fmt.Fprintf(&b, "   Fantasy Pts Avg: %.1f | As captain: %.1f\n\n",
			pick.Player.FantasyPointsAvg, pick.Player.FantasyPointsAvg*2)
		n++
	}

	b.WriteString("**Vice-Captain Picks:**\n")
	n = 1
	for _, pick := range picks {
		if pick.Role != "Vice-Captain" {
			continue
		}
		fmt.Fprintf(&b, "%d. %s (%s) - %s\n", n, pick.Player.Name, pick.Player.Team, pick.Player.Role)
		fmt.Fprintf(&b, "   Fantasy Pts Avg: %.1f | As VC: %.1f\n\n",
			pick.Player.FantasyPointsAvg, pick.Player.FantasyPointsAvg*1.5)
		n++
	}

	b.WriteString("Remember: Captain gets 2x points and Vice-Captain gets 1.5x points, so choose wisely!")
	return b.String()
}

func (a *Assistant) handleLive(ctx context.Context, _ string) string {
	matches := a.data.LiveMatches(ctx)
	if len(matches) == 0 {
		return "No matches are live right now. Ask about upcoming matches to plan your team."
	}

	var b strings.Builder
	b.WriteString("🔴 **Live Matches**\n\n")
	for i, m := range matches {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, m.Teams, m.MatchType)
		fmt.Fprintf(&b, "   Venue: %s\n", m.Venue)
		if m.Score != "" {
			fmt.Fprintf(&b, "   Score: %s\n", m.Score)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (a *Assistant) handleRecent(ctx context.Context, _ string) string {
	matches := a.data.RecentMatches(ctx)
	if len(matches) == 0 {
		return "I couldn't find recent match results at the moment."
	}

	var b strings.Builder
	b.WriteString("📋 **Recent Matches**\n\n")
	for i, m := range matches {
		if i == 10 {
			break
		}
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, m.Teams, m.MatchType)
		fmt.Fprintf(&b, "   Venue: %s | Date: %s\n", m.Venue, m.Date)
		if m.Score != "" {
			fmt.Fprintf(&b, "   Result: %s\n", m.Score)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (a *Assistant) handleUpcoming(ctx context.Context, _ string) string {
	matches := a.data.UpcomingMatches(ctx)
	if len(matches) == 0 {
		return "I couldn't find information about upcoming matches at the moment."
	}

	var b strings.Builder
	b.WriteString("🗓️ **Upcoming Matches**\n\n")
	for i, m := range matches {
		fmt.Fprintf(&b, "%d. %s\n", i+1, m.Teams)
		fmt.Fprintf(&b, "   Venue: %s | Date: %s\n", m.Venue, m.Date)

		if pc, ok := a.data.VenuePitch(m.Venue); ok {
			switch {
			case pc.BattingFriendly >= 7:
				fmt.Fprintf(&b, "   Pitch Insight: Batting-friendly pitch at %s\n", m.Venue)
			case pc.PaceFriendly >= 7:
				fmt.Fprintf(&b, "   Pitch Insight: Good for pace bowlers at %s\n", m.Venue)
			case pc.SpinFriendly >= 7:
				fmt.Fprintf(&b, "   Pitch Insight: Spin-friendly conditions expected at %s\n", m.Venue)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (a *Assistant) handleCompare(ctx context.Context, query string) string {
	name1, name2 := extractPair(query)
	if name1 == "" || name2 == "" {
		return "To compare players, please specify two players like 'Compare Virat Kohli and Kane Williamson'."
	}

	p1, err := a.data.PlayerStats(ctx, name1)
	if err != nil {
		return fmt.Sprintf("I couldn't find information for %s. Could you check the spelling or try another player?", name1)
	}
	p2, err := a.data.PlayerStats(ctx, name2)
	if err != nil {
		return fmt.Sprintf("I couldn't find information for %s. Could you check the spelling or try another player?", name2)
	}

	return comparisonCard(p1, p2)
}

// recommendPlayers filters and ranks the known player pool.
func (a *Assistant) recommendPlayers(ctx context.Context, role, team string, budget float64, count int) []models.Player {
	pool := a.data.KnownPlayers()

	// Prefer live roster stats where a team was named.
	if team != "" {
		if roster, ok := a.data.Roster(team); ok {
			pool = pool[:0:0]
			for _, name := range roster {
				if p, err := a.data.PlayerStats(ctx, name); err == nil {
					pool = append(pool, *p)
				}
			}
		}
	}

	var out []models.Player
	for _, p := range pool {
		if role != "" && p.Role != role {
			continue
		}
		if team != "" && !strings.Contains(lower(p.Team), lower(team)) && !strings.Contains(lower(team), lower(p.Team)) {
			continue
		}
		if budget > 0 && p.Price > budget {
			continue
		}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].FantasyPointsAvg > out[j].FantasyPointsAvg })
	if len(out) > count {
		out = out[:count]
	}
	return out
}

// scanPlayerName looks for a known player's surname or full name in the
// query.
func (a *Assistant) scanPlayerName(query string) string {
	q := lower(query)
	for _, p := range a.data.KnownPlayers() {
		if strings.Contains(q, lower(p.Name)) {
			return p.Name
		}
		fields := strings.Fields(p.Name)
		surname := lower(fields[len(fields)-1])
		if len(surname) >= 4 && containsWord(q, surname) {
			return p.Name
		}
	}
	return ""
}

func (a *Assistant) extractVenue(query string) string {
	q := lower(query)
	for _, venue := range a.data.KnownVenues() {
		if strings.Contains(q, lower(venue)) {
			return venue
		}
	}
	return ""
}

func (a *Assistant) extractTeam(query string) string {
	q := lower(query)
	for _, team := range a.data.KnownTeams() {
		if strings.Contains(q, lower(team)) {
			return team
		}
	}
	return ""
}

func extractRole(query string) string {
	q := lower(query)
	switch {
	case contains(q, "batsman") || contains(q, "batsmen") || contains(q, "batting"):
		return models.RoleBatsman
	case contains(q, "bowler") || contains(q, "bowling"):
		return models.RoleBowler
	case contains(q, "all-rounder") || contains(q, "all rounder") || contains(q, "allrounder"):
		return models.RoleAllRounder
	case contains(q, "wicket keeper") || contains(q, "wicketkeeper") || contains(q, "keeper"):
		return models.RoleWicketkeeper
	}
	return ""
}

func extractBudget(query string) float64 {
	m := budgetRe.FindStringSubmatch(query)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return v
}

// extractPair pulls two player names out of a comparison query.
func extractPair(query string) (string, string) {
	if m := compareTwoRe.FindStringSubmatch(query); m != nil {
		return cleanName(m[1]), cleanName(m[2])
	}
	if m := versusTwoRe.FindStringSubmatch(query); m != nil {
		return cleanName(m[1]), cleanName(m[2])
	}
	return "", ""
}

func extractName(re *regexp.Regexp, query string) string {
	m := re.FindStringSubmatch(query)
	if m == nil {
		return ""
	}
	return cleanName(m[1])
}

func cleanName(s string) string {
	s = trailingPunct.ReplaceAllString(strings.TrimSpace(s), "")
	// Strip leading filler from greedy captures ("compare stats of X").
	for _, prefix := range []string{"stats of ", "stats for ", "the ", "player "} {
		s = strings.TrimPrefix(s, prefix)
	}
	return strings.TrimSpace(s)
}

func containsWord(haystack, word string) bool {
	for _, f := range strings.FieldsFunc(haystack, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if f == word {
			return true
		}
	}
	return false
}

func lower(s string) string { return strings.ToLower(s) }

func contains(s, sub string) bool { return strings.Contains(s, sub) }
