package scraper

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/fortuna/willow/internal/models"
)

// scoreRe matches innings lines like "IND 187/4 (18.2)".
var scoreRe = regexp.MustCompile(`([A-Za-z ]+?)\s+(\d{1,3})/(\d{1,2})\s*\(([\d.]+)`)

// versusRe matches "India vs England" style headings.
var versusRe = regexp.MustCompile(`(?i)([a-z ]{3,}?)\s+vs?\.?\s+([a-z ]{3,})`)

// ParseMatches extracts matches from rendered HTML. Several selector
// strategies are tried in order because the widget markup varies by
// page variant and changes over time.
func ParseMatches(html string, live bool) ([]models.Match, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	var matches []models.Match

	// Strategy 1: sports card widgets.
	doc.Find("div.imso_mh__lv-m-stl-cont, div.imso_mh__tm-stats").Each(func(_ int, s *goquery.Selection) {
		if m := parseSportsCard(s, live); m != nil {
			matches = append(matches, *m)
		}
	})

	// Strategy 2: generic sports result divs.
	if len(matches) == 0 {
		doc.Find("div[class*='sports-app'], div[class*='match-tile']").Each(func(_ int, s *goquery.Selection) {
			if m := parseGenericTile(s, live); m != nil {
				matches = append(matches, *m)
			}
		})
	}

	// Strategy 3: plain-text scan of headline blocks. Catches the
	// stripped-down variant served without the widget classes.
	if len(matches) == 0 {
		doc.Find("div, span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.TrimSpace(s.Text())
			if len(text) > 200 || !versusRe.MatchString(text) || !scoreRe.MatchString(text) {
				return true
			}
			if m := parseTextBlock(text, live); m != nil {
				matches = append(matches, *m)
				return len(matches) < 10
			}
			return true
		})
	}

	return dedupe(matches), nil
}

// parseSportsCard extracts a match from the card widget variant.
func parseSportsCard(s *goquery.Selection, live bool) *models.Match {
	var teams []string
	s.Find("div.imso_mh__first-tn-ed, div.imso_mh__tnal-name, span.imso_mh__t-tm-nm").Each(func(_ int, t *goquery.Selection) {
		if name := strings.TrimSpace(t.Text()); name != "" && len(teams) < 2 {
			teams = append(teams, name)
		}
	})
	if len(teams) < 2 {
		return nil
	}

	var scores []string
	s.Find("div.imso_mh__l-tm-sc, div.imso_mh__r-tm-sc").Each(func(_ int, sc *goquery.Selection) {
		if v := strings.TrimSpace(sc.Text()); v != "" {
			scores = append(scores, v)
		}
	})

	statusText := strings.TrimSpace(s.Find("span.imso_mh__ft-mtch, span.imso-medium-font").First().Text())

	m := &models.Match{
		Teams:       fmt.Sprintf("%s vs %s", teams[0], teams[1]),
		Venue:       "Unknown",
		Date:        time.Now().Format("02 Jan"),
		MatchType:   guessFormat(statusText),
		Status:      models.StatusUpcoming,
		Source:      SourceName,
		LastUpdated: time.Now(),
	}

	if live || isLiveStatus(statusText) {
		m.Status = models.StatusLive
		if len(scores) >= 2 {
			m.Score = fmt.Sprintf("%s %s, %s %s", teams[0], scores[0], teams[1], scores[1])
		} else if len(scores) == 1 {
			m.Score = fmt.Sprintf("%s %s", teams[0], scores[0])
		}
	}

	return m
}

// parseGenericTile extracts a match from the looser tile variant.
func parseGenericTile(s *goquery.Selection, live bool) *models.Match {
	return parseTextBlock(strings.TrimSpace(s.Text()), live)
}

// parseTextBlock recovers a match from flattened widget text.
func parseTextBlock(text string, live bool) *models.Match {
	vs := versusRe.FindStringSubmatch(text)
	if vs == nil {
		return nil
	}
	team1 := strings.TrimSpace(vs[1])
	team2 := strings.TrimSpace(vs[2])
	if team1 == "" || team2 == "" {
		return nil
	}

	m := &models.Match{
		Teams:       fmt.Sprintf("%s vs %s", titleCase(team1), titleCase(team2)),
		Venue:       "Unknown",
		Date:        time.Now().Format("02 Jan"),
		MatchType:   guessFormat(text),
		Status:      models.StatusUpcoming,
		Source:      SourceName,
		LastUpdated: time.Now(),
	}

	lines := scoreRe.FindAllStringSubmatch(text, 2)
	if len(lines) > 0 && (live || isLiveStatus(text)) {
		m.Status = models.StatusLive
		parts := make([]string, 0, 2)
		for _, l := range lines {
			parts = append(parts, fmt.Sprintf("%s %s/%s (%s ov)", strings.TrimSpace(l[1]), l[2], l[3], l[4]))
		}
		m.Score = strings.Join(parts, ", ")
	}

	return m
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func isLiveStatus(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range []string{"live", "in progress", "innings", "need", "require", "ov)", "to win"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func guessFormat(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "test"):
		return models.FormatTest
	case strings.Contains(lower, "odi"):
		return models.FormatODI
	case strings.Contains(lower, "t20"):
		return models.FormatT20
	}
	return models.FormatT20
}

func dedupe(in []models.Match) []models.Match {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, m := range in {
		key := strings.ToLower(m.Teams)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	return out
}
