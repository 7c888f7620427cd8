package recipe

import "regexp"

// substitution maps a deprecated or regional ingredient term to its modern
// equivalent. Patterns are case-insensitive whole-word matches.
type substitution struct {
	pattern     *regexp.Regexp
	replacement string
}

// Substitutions is the fixed table of deprecated ingredient terms rewritten
// at extraction time. Lines touched by a substitution carry a Modified flag
// so the user can review them.
var Substitutions = []substitution{
	{regexp.MustCompile(`(?i)\boleo\b`), "margarine"},
	{regexp.MustCompile(`(?i)\bcrisco\b`), "shortening"},
}

// PostProcessSections applies the substitution table to every ingredient line
// of every section. The substituted text becomes the stored and displayed
// line; the returned sections are new values, the input is left untouched.
func PostProcessSections(sections []IngredientSection) []IngredientSection {
	out := make([]IngredientSection, len(sections))
	for i, s := range sections {
		items := make([]IngredientLine, len(s.Items))
		for j, line := range s.Items {
			text := line.Text
			modified := false
			for _, sub := range Substitutions {
				if sub.pattern.MatchString(text) {
					text = sub.pattern.ReplaceAllString(text, sub.replacement)
					modified = true
				}
			}
			items[j] = IngredientLine{Text: text, Modified: modified}
		}
		out[i] = IngredientSection{Title: s.Title, Items: items}
	}
	return out
}
