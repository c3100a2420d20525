package matcher

import (
	"strconv"
	"strings"
)

// family interval, inclusive on both ends ([lo, hi]).
type ecoRange struct {
	letter byte
	lo, hi int
	family string
}

// ecoFamilies encodes the full A00-E99 interval table (spec §9: "encode as a
// static interval list mapping (letter, lo, hi) -> family").
var ecoFamilies = []ecoRange{
	{'A', 0, 9, "irregular"},
	{'A', 10, 39, "english"},
	{'A', 40, 44, "queens_pawn"},
	{'A', 45, 49, "indian_systems"},
	{'A', 50, 79, "benoni_dutch"},
	{'A', 80, 99, "dutch"},

	{'B', 0, 19, "pirc_caro_kann"},
	{'B', 20, 99, "sicilian"},

	{'C', 0, 19, "french"},
	{'C', 20, 59, "open_games"},
	{'C', 60, 99, "ruy_lopez"},

	{'D', 0, 29, "queens_gambit"},
	{'D', 30, 69, "queens_gambit_declined"},
	{'D', 70, 99, "grunfeld"},

	{'E', 0, 59, "indian_defenses"},
	{'E', 60, 99, "kings_indian"},
}

// ECOFamily maps a three-character ECO code (letter + two digits) to its
// opening family (spec §4.5). An unrecognized code returns "" (no family
// constraint; the severe-incompatibility check then never fires for it).
func ECOFamily(eco string) string {
	if len(eco) != 3 {
		return ""
	}
	letter := eco[0]
	num, err := strconv.Atoi(eco[1:])
	if err != nil {
		return ""
	}
	for _, r := range ecoFamilies {
		if r.letter == letter && num >= r.lo && num <= r.hi {
			return r.family
		}
	}
	return ""
}

// familyCue maps a title keyword to the family it names, for deriving the
// video's conflicting family from title text (spec §4.5).
var familyCues = map[string]string{
	"sicilian":        "sicilian",
	"french defense":  "french",
	"french defence":  "french",
	"caro-kann":       "pirc_caro_kann",
	"caro kann":       "pirc_caro_kann",
	"pirc":            "pirc_caro_kann",
	"ruy lopez":       "ruy_lopez",
	"spanish game":    "ruy_lopez",
	"queens gambit":   "queens_gambit",
	"queen's gambit":  "queens_gambit",
	"grunfeld":        "grunfeld",
	"gruenfeld":       "grunfeld",
	"kings indian":    "kings_indian",
	"king's indian":   "kings_indian",
	"nimzo-indian":    "indian_defenses",
	"nimzo indian":    "indian_defenses",
	"english opening": "english",
	"dutch defense":   "dutch",
	"dutch defence":   "dutch",
	"benoni":          "benoni_dutch",
}

// severePairs lists unordered family pairs whose co-occurrence strongly
// indicates a spurious match (spec §4.5, §9).
var severePairs = map[[2]string]bool{
	pairKey("indian_defenses", "queens_gambit"):  true,
	pairKey("sicilian", "french"):                true,
	pairKey("pirc_caro_kann", "sicilian"):         true,
	pairKey("ruy_lopez", "sicilian"):              true,
	pairKey("kings_indian", "queens_gambit_declined"): true,
	pairKey("grunfeld", "french"):                 true,
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// IsSevereIncompatibility reports whether two families are in the severe
// pairwise table (spec §4.5).
func IsSevereIncompatibility(openingFamily, videoFamily string) bool {
	if openingFamily == "" || videoFamily == "" || openingFamily == videoFamily {
		return false
	}
	return severePairs[pairKey(openingFamily, videoFamily)]
}

// VideoFamiliesFromTitle derives every family implied by explicit family
// cues present in a video's lower-cased title. A title can legitimately
// reference more than one family (a comparison or transposition video), so
// all cues are reported rather than the first one found; iteration over the
// underlying cue table is unordered, so order of the result is not
// meaningful and callers must not rely on it.
func VideoFamiliesFromTitle(lowerTitle string) []string {
	seen := make(map[string]bool)
	var families []string
	for cue, family := range familyCues {
		if strings.Contains(lowerTitle, cue) && !seen[family] {
			seen[family] = true
			families = append(families, family)
		}
	}
	return families
}
