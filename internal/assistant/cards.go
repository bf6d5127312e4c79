package assistant

import (
	"fmt"
	"strings"

	"github.com/fortuna/willow/internal/models"
)

// playerCard renders a player's stat card for chat surfaces. Telegram
// and the REST chat endpoint both show Markdown, so the card uses it
// directly.
func playerCard(p *models.Player) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📊 **%s (%s)** - %s\n", p.Name, p.Team, p.Role)
	fmt.Fprintf(&b, "💰 Price: %.1f | 👥 Ownership: %.1f%%\n", p.Price, p.Ownership)

	switch p.Role {
	case models.RoleBatsman, models.RoleWicketkeeper:
		fmt.Fprintf(&b, "🏏 Batting Avg: %.1f | ⚡ Strike Rate: %.1f\n", p.BattingAvg, p.StrikeRate)
		fmt.Fprintf(&b, "Recent Form: %s\n", joinInts(p.RecentForm))
	case models.RoleBowler:
		fmt.Fprintf(&b, "🎯 Bowling Avg: %.1f | 📈 Economy: %.1f\n", p.BowlingAvg, p.Economy)
		fmt.Fprintf(&b, "Recent Wickets: %s\n", joinInts(p.RecentWickets))
	case models.RoleAllRounder:
		fmt.Fprintf(&b, "🏏 Batting Avg: %.1f | 🎯 Bowling Avg: %.1f\n", p.BattingAvg, p.BowlingAvg)
		fmt.Fprintf(&b, "Recent Form: %s\n", joinInts(p.RecentForm))
		fmt.Fprintf(&b, "Recent Wickets: %s\n", joinInts(p.RecentWickets))
	}

	fmt.Fprintf(&b, "Fantasy Points Avg: %.1f\n", p.FantasyPointsAvg)
	return b.String()
}

// formCard renders a player's recent form with a pick recommendation.
func formCard(p *models.Player) string {
	form := p.CurrentForm
	if form == "" {
		form = classifyFormAverage(p)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📈 **%s's Current Form:** %s\n\n", p.Name, capitalize(form))

	if p.IsBatter() && len(p.RecentForm) > 0 {
		fmt.Fprintf(&b, "Last 5 innings: %s\n", joinInts(p.RecentForm))
		fmt.Fprintf(&b, "Average in last 5 innings: %.1f\n", p.FormAverage())
	}
	if p.IsBowler() && len(p.RecentWickets) > 0 {
		sum := 0
		for _, w := range p.RecentWickets {
			sum += w
		}
		fmt.Fprintf(&b, "Wickets in last 5 matches: %s\n", joinInts(p.RecentWickets))
		fmt.Fprintf(&b, "Average wickets per match: %.1f\n", float64(sum)/float64(len(p.RecentWickets)))
	}

	switch form {
	case "excellent", "good":
		fmt.Fprintf(&b, "\n✅ Recommendation: %s is in %s form and would be a good pick for your fantasy team.", p.Name, form)
	case "average":
		fmt.Fprintf(&b, "\n⚠️ Recommendation: %s is in average form. Consider other factors like pitch conditions before selecting.", p.Name)
	default:
		fmt.Fprintf(&b, "\n❌ Recommendation: %s is not in great form recently. You might want to consider alternatives.", p.Name)
	}

	return b.String()
}

// pitchReport renders a venue's conditions with selection advice.
func pitchReport(venue string, pc models.PitchConditions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏟️ **Pitch Report: %s Stadium**\n\n", venue)

	fmt.Fprintf(&b, "• Batting Conditions: %s\n", describeScale(pc.BattingFriendly,
		"Very batting friendly", "Batting friendly", "Balanced for batting", "Challenging for batsmen"))
	fmt.Fprintf(&b, "• Pace Bowling: %s\n", describeScale(pc.PaceFriendly,
		"Very pace friendly", "Good for pace bowlers", "Moderate assistance for pacers", "Limited help for pace bowlers"))
	fmt.Fprintf(&b, "• Spin Bowling: %s\n\n", describeScale(pc.SpinFriendly,
		"Very spin friendly", "Good for spinners", "Moderate assistance for spinners", "Limited help for spin bowlers"))

	b.WriteString("**Recommendations:**\n")
	if pc.BattingFriendly >= 7 {
		b.WriteString("✓ Consider picking top-order batsmen from both teams\n")
	}
	if pc.PaceFriendly >= 7 {
		b.WriteString("✓ Fast bowlers should do well on this pitch\n")
	}
	if pc.SpinFriendly >= 7 {
		b.WriteString("✓ Include quality spinners in your team\n")
	}
	if pc.BattingFriendly <= 5 {
		b.WriteString("✓ Pick batsmen with good technique rather than aggressive players\n")
	}

	return b.String()
}

// describeScale buckets a 1-10 pitch score into prose.
func describeScale(v int, top, high, mid, low string) string {
	switch {
	case v >= 8:
		return top
	case v >= 6:
		return high
	case v >= 5:
		return mid
	}
	return low
}

// comparisonCard renders a head-to-head between two players.
func comparisonCard(p1, p2 *models.Player) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🔄 **Comparing %s vs %s**\n\n", p1.Name, p2.Name)
	fmt.Fprintf(&b, "**Role:** %s vs %s\n", p1.Role, p2.Role)
	fmt.Fprintf(&b, "**Team:** %s vs %s\n\n", p1.Team, p2.Team)
	fmt.Fprintf(&b, "**Fantasy Points Avg:** %.1f vs %.1f\n", p1.FantasyPointsAvg, p2.FantasyPointsAvg)
	fmt.Fprintf(&b, "**Price:** %.1f vs %.1f\n", p1.Price, p2.Price)
	fmt.Fprintf(&b, "**Ownership %%:** %.1f%% vs %.1f%%\n\n", p1.Ownership, p2.Ownership)
	fmt.Fprintf(&b, "**Batting Avg:** %.1f vs %.1f\n", p1.BattingAvg, p2.BattingAvg)
	fmt.Fprintf(&b, "**Bowling Avg:** %.1f vs %.1f\n", p1.BowlingAvg, p2.BowlingAvg)
	fmt.Fprintf(&b, "**Current Form:** %s vs %s\n\n",
		capitalizeOrUnknown(p1.CurrentForm), capitalizeOrUnknown(p2.CurrentForm))

	// A pick call needs a clear gap, not a rounding artifact.
	switch {
	case p1.FantasyPointsAvg > p2.FantasyPointsAvg*1.1:
		fmt.Fprintf(&b, "✅ **Recommendation:** %s appears to be the better fantasy pick overall.", p1.Name)
	case p2.FantasyPointsAvg > p1.FantasyPointsAvg*1.1:
		fmt.Fprintf(&b, "✅ **Recommendation:** %s appears to be the better fantasy pick overall.", p2.Name)
	default:
		b.WriteString("✅ **Recommendation:** Both players are quite evenly matched. Consider other factors like match conditions and team combinations.")
	}

	return b.String()
}

// classifyFormAverage derives a form label when no source supplied one.
func classifyFormAverage(p *models.Player) string {
	if len(p.RecentForm) == 0 && len(p.RecentWickets) == 0 {
		return "unknown"
	}
	switch avg := p.FormAverage(); {
	case avg > 60:
		return "excellent"
	case avg > 40:
		return "good"
	case avg > 25:
		return "average"
	}
	return "poor"
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ", ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func capitalizeOrUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return capitalize(s)
}
