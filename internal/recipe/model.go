package recipe

import (
	"encoding/json"
)

// Recipe is a digitized recipe. The recipe owns its image and sections
// exclusively; nothing else references them.
type Recipe struct {
	ID                 int64               `json:"id"`
	Title              string              `json:"title"`
	Image              string              `json:"image,omitempty"`
	IngredientSections []IngredientSection `json:"ingredientSections"`
	Instructions       []string            `json:"instructions"`
	Servings           string              `json:"servings"`
	PrepTime           string              `json:"prepTime"`
	CookTime           string              `json:"cookTime"`
	DateAdded          string              `json:"dateAdded"`
	Category           string              `json:"category"`
	Tags               []string            `json:"tags"`
	Story              Story               `json:"story"`
}

// Story is optional provenance metadata for a recipe.
type Story struct {
	Text      string `json:"text"`
	Creator   string `json:"creator"`
	Origin    string `json:"origin"`
	Occasions string `json:"occasions"`
}

// IngredientSection is a named or unnamed group of ingredient lines within a
// recipe. An empty title means a single unnamed group.
type IngredientSection struct {
	Title string           `json:"title"`
	Items []IngredientLine `json:"items"`
}

// IngredientLine is one ingredient line as stored and displayed. Modified is
// set when post-processing substituted a deprecated ingredient name into the
// extracted text.
type IngredientLine struct {
	Text     string `json:"text"`
	Modified bool   `json:"modified"`
}

// UnmarshalJSON implements the json.Unmarshaler interface for Recipe.
// Records written by earlier revisions may lack category, tags, and story;
// they are defaulted rather than treated as an error.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	type Alias Recipe // Create an alias to avoid infinite recursion
	aux := (*Alias)(r)

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	if r.IngredientSections == nil {
		r.IngredientSections = []IngredientSection{}
	}
	if r.Instructions == nil {
		r.Instructions = []string{}
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}

	return nil
}

// UnmarshalJSON accepts both the current section shape, where items are
// {text, modified} records, and the legacy shape, where items are plain
// strings with an optional parallel "uncertain" flag array.
func (s *IngredientSection) UnmarshalJSON(data []byte) error {
	var aux struct {
		Title     string            `json:"title"`
		Items     []json.RawMessage `json:"items"`
		Uncertain []bool            `json:"uncertain"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	s.Title = aux.Title
	s.Items = make([]IngredientLine, 0, len(aux.Items))
	for i, raw := range aux.Items {
		var text string
		if err := json.Unmarshal(raw, &text); err == nil {
			line := IngredientLine{Text: text}
			if len(aux.Uncertain) == len(aux.Items) {
				line.Modified = aux.Uncertain[i]
			}
			s.Items = append(s.Items, line)
			continue
		}
		var line IngredientLine
		if err := json.Unmarshal(raw, &line); err != nil {
			return err
		}
		s.Items = append(s.Items, line)
	}

	return nil
}

// Extraction is the recipe-shaped record returned by the external multimodal
// model. Every field is optional; absent fields are defaulted, never fatal.
type Extraction struct {
	Title              string             `json:"title"`
	Servings           string             `json:"servings"`
	PrepTime           string             `json:"prepTime"`
	CookTime           string             `json:"cookTime"`
	IngredientSections []ExtractedSection `json:"ingredientSections"`
	Ingredients        []string           `json:"ingredients"`
	Instructions       []string           `json:"instructions"`
}

// ExtractedSection is one ingredient section as extracted.
type ExtractedSection struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// TimeEstimate holds machine-estimated prep and cook times.
type TimeEstimate struct {
	PrepTime string `json:"prepTime"`
	CookTime string `json:"cookTime"`
}

// NewFromExtraction builds a Recipe from an extraction result, defaulting
// absent fields and post-processing the ingredient sections. A model that
// returned a legacy flat ingredients list yields a single unnamed section.
func NewFromExtraction(ext *Extraction, id int64, image, dateAdded string) *Recipe {
	title := ext.Title
	if title == "" {
		title = "Untitled"
	}

	sections := make([]IngredientSection, 0, len(ext.IngredientSections))
	for _, s := range ext.IngredientSections {
		items := make([]IngredientLine, 0, len(s.Items))
		for _, text := range s.Items {
			items = append(items, IngredientLine{Text: text})
		}
		sections = append(sections, IngredientSection{Title: s.Title, Items: items})
	}
	if len(sections) == 0 && len(ext.Ingredients) > 0 {
		items := make([]IngredientLine, 0, len(ext.Ingredients))
		for _, text := range ext.Ingredients {
			items = append(items, IngredientLine{Text: text})
		}
		sections = append(sections, IngredientSection{Items: items})
	}
	sections = PostProcessSections(sections)

	instructions := ext.Instructions
	if instructions == nil {
		instructions = []string{}
	}

	return &Recipe{
		ID:                 id,
		Title:              title,
		Image:              image,
		IngredientSections: sections,
		Instructions:       instructions,
		Servings:           ext.Servings,
		PrepTime:           ext.PrepTime,
		CookTime:           ext.CookTime,
		DateAdded:          dateAdded,
		Category:           "",
		Tags:               []string{},
	}
}
