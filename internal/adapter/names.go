package adapter

import (
	"regexp"
	"strings"
)

// statsQueryRe strips the "what are X - statistics" phrasing that the
// chat layer sometimes passes through verbatim.
var statsQueryRe = regexp.MustCompile(`what are (.*?) - statistics`)

// nameCorrections maps common misspellings and bare surnames to the
// intended full name, lowercase on both sides.
var nameCorrections = map[string]string{
	"virat kolhi": "virat kohli",
	"kolhi":       "virat kohli",
	"kohli":       "virat kohli",
	"virat":       "virat kohli",
	"rohit":       "rohit sharma",
	"dhoni":       "ms dhoni",
	"ms":          "ms dhoni",
	"williamson":  "kane williamson",
	"kane":        "kane williamson",
	"smith":       "steve smith",
	"steve":       "steve smith",
	"babar":       "babar azam",
	"azam":        "babar azam",
	"bumrah":      "jasprit bumrah",
	"jasprit":     "jasprit bumrah",
	"stokes":      "ben stokes",
	"ben":         "ben stokes",
	"rabada":      "kagiso rabada",
	"kagiso":      "kagiso rabada",
	"rashid":      "rashid khan",
	"khan":        "rashid khan",
}

// correctionOrder fixes the partial-match scan order; map iteration
// would make corrections nondeterministic for inputs matching several
// entries.
var correctionOrder = []string{
	"virat kolhi", "kolhi", "kohli", "virat", "rohit", "dhoni",
	"williamson", "kane", "smith", "steve", "babar", "azam",
	"bumrah", "jasprit", "stokes", "rabada", "kagiso", "rashid",
	"khan",
}

// canonicalNames maps the lowercase full name to its display casing.
// "MS Dhoni" is why this is not a plain title-case pass.
var canonicalNames = map[string]string{
	"virat kohli":     "Virat Kohli",
	"rohit sharma":    "Rohit Sharma",
	"ms dhoni":        "MS Dhoni",
	"kane williamson": "Kane Williamson",
	"steve smith":     "Steve Smith",
	"babar azam":      "Babar Azam",
	"jasprit bumrah":  "Jasprit Bumrah",
	"ben stokes":      "Ben Stokes",
	"kagiso rabada":   "Kagiso Rabada",
	"rashid khan":     "Rashid Khan",
}

// NormalizePlayerName maps user input to the name sources are queried
// with: strips query phrasing, applies the correction table, and falls
// back to word capitalization for unknown names.
func NormalizePlayerName(name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}

	lower := strings.ToLower(name)
	if m := statsQueryRe.FindStringSubmatch(lower); m != nil {
		lower = m[1]
	}
	lower = strings.Join(strings.Fields(lower), " ")

	if canonical, ok := canonicalNames[lower]; ok {
		return canonical
	}

	if corrected, ok := nameCorrections[lower]; ok {
		if canonical, ok := canonicalNames[corrected]; ok {
			return canonical
		}
		return capitalizeWords(corrected)
	}

	// Partial corrections need at least four characters to avoid
	// rewriting substrings of unrelated names.
	for _, misspelling := range correctionOrder {
		if len(misspelling) >= 4 && strings.Contains(lower, misspelling) {
			corrected := strings.Replace(lower, misspelling, nameCorrections[misspelling], 1)
			if canonical, ok := canonicalNames[corrected]; ok {
				return canonical
			}
			return capitalizeWords(corrected)
		}
	}

	return capitalizeWords(lower)
}

func capitalizeWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
