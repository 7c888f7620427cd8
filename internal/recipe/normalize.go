package recipe

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// UnitWords is the unit-of-measure vocabulary removed from ingredient lines
// when deriving a canonical grocery-item name. Matched case-insensitively as
// whole words only.
var UnitWords = []string{
	"cup", "cups",
	"tablespoon", "tablespoons", "tbsp", "tbs",
	"teaspoon", "teaspoons", "tsp",
	"ounce", "ounces", "oz",
	"pound", "pounds", "lb", "lbs",
	"can", "cans",
	"package", "packages", "pkg", "pkgs",
	"pint", "pints", "pt",
	"quart", "quarts", "qt",
	"gallon", "gallons", "gal",
	"ml", "milliliter", "milliliters",
	"l", "liter", "liters",
	"g", "gram", "grams",
	"kg", "kilogram", "kilograms",
	"stick", "sticks",
	"clove", "cloves",
	"head", "heads",
	"bunch", "bunches",
	"slice", "slices",
	"piece", "pieces",
	"pinch", "pinches",
	"dash", "dashes",
	"sprig", "sprigs",
	"large", "medium", "small",
	"halves", "halved", "half",
	"and",
}

// PrepWords is the preparation/state descriptor vocabulary removed from
// ingredient lines. Matched case-insensitively as whole words or phrases,
// never as substrings of a longer ingredient name.
var PrepWords = []string{
	"dried", "chopped", "minced", "diced", "sliced", "grated", "shredded",
	"melted", "softened", "room temperature", "cold", "warm", "hot", "thawed",
	"cooked", "raw", "whole", "quartered",
	"firmly packed", "loosely packed", "packed",
	"sifted", "unsifted",
	"lightly beaten", "well beaten", "beaten",
	"divided", "separated",
	"optional", "to taste", "as needed", "for garnish", "for serving",
	"peeled", "cored", "seeded", "deveined", "trimmed", "rinsed", "drained",
	"crushed", "ground", "cubed", "julienned",
	"thinly sliced", "finely chopped", "finely minced", "roughly chopped",
	"coarsely chopped", "at room temperature", "chilled", "warmed",
	"toasted", "untoasted", "blanched", "unblanched", "pitted",
}

var (
	leadingQuantityRe = regexp.MustCompile(`^[\d\s/.\-]+`)
	leadingFractionRe = regexp.MustCompile(`^/\s*\d+\s*`)
	unitRe            = regexp.MustCompile(`(?i)\b(` + strings.Join(UnitWords, "|") + `)\b`)
	parenRe           = regexp.MustCompile(`\([^)]*\)`)
	prepRe            = regexp.MustCompile(`(?i)\b(` + strings.Join(PrepWords, "|") + `)\b`)
	leadingTrimRe     = regexp.MustCompile(`^[.\s]+`)
	trailingTrimRe    = regexp.MustCompile(`[.\s]+$`)
	whitespaceRe      = regexp.MustCompile(`\s+`)
	leadingOfRe       = regexp.MustCompile(`(?i)^of\s+`)
	trailingOfRe      = regexp.MustCompile(`(?i)\s+of$`)
)

// Normalize reduces a raw ingredient line to a canonical grocery-item name:
// quantities, units, parenthesized asides, and preparation descriptors are
// stripped, whitespace is collapsed, and the first letter is capitalized.
// Any input produces a deterministic, possibly empty, result. Lines that
// normalize to the empty string are dropped by callers, never stored.
func Normalize(raw string) string {
	p := leadingQuantityRe.ReplaceAllString(raw, "")
	p = leadingFractionRe.ReplaceAllString(p, "")
	p = unitRe.ReplaceAllString(p, "")
	p = parenRe.ReplaceAllString(p, "")
	p = prepRe.ReplaceAllString(p, "")
	p = leadingTrimRe.ReplaceAllString(p, "")
	p = trailingTrimRe.ReplaceAllString(p, "")
	p = strings.ReplaceAll(p, ",", "")
	p = strings.TrimSpace(whitespaceRe.ReplaceAllString(p, " "))
	p = leadingOfRe.ReplaceAllString(p, "")
	p = trailingOfRe.ReplaceAllString(p, "")
	if p == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(p)
	return string(unicode.ToUpper(r)) + p[size:]
}
