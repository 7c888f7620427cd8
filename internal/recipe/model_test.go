package recipe

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipeUnmarshalDefaults(t *testing.T) {
	// A record from an early revision: no category, tags, or story.
	data := `{"id": 1700000000000, "title": "Meatloaf"}`

	var r Recipe
	require.NoError(t, json.Unmarshal([]byte(data), &r))

	assert.Equal(t, int64(1700000000000), r.ID)
	assert.Equal(t, "Meatloaf", r.Title)
	assert.NotNil(t, r.IngredientSections)
	assert.NotNil(t, r.Instructions)
	assert.NotNil(t, r.Tags)
	assert.Equal(t, Story{}, r.Story)
}

func TestIngredientSectionUnmarshalLegacyShape(t *testing.T) {
	// Early revisions stored items as plain strings with a parallel
	// uncertain flag array.
	data := `{"title": "Dressing", "items": ["1 cup oil", "2 tbsp shortening"], "uncertain": [false, true]}`

	var s IngredientSection
	require.NoError(t, json.Unmarshal([]byte(data), &s))

	assert.Equal(t, "Dressing", s.Title)
	require.Len(t, s.Items, 2)
	assert.Equal(t, "1 cup oil", s.Items[0].Text)
	assert.False(t, s.Items[0].Modified)
	assert.Equal(t, "2 tbsp shortening", s.Items[1].Text)
	assert.True(t, s.Items[1].Modified)
}

func TestIngredientSectionUnmarshalLegacyWithoutFlags(t *testing.T) {
	data := `{"title": "", "items": ["1 cup oil"]}`

	var s IngredientSection
	require.NoError(t, json.Unmarshal([]byte(data), &s))
	require.Len(t, s.Items, 1)
	assert.False(t, s.Items[0].Modified)
}

func TestIngredientSectionRoundTrip(t *testing.T) {
	in := IngredientSection{
		Title: "Crust",
		Items: []IngredientLine{
			{Text: "1 cup graham cracker crumbs"},
			{Text: "1 stick margarine", Modified: true},
		},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out IngredientSection
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestNewFromExtractionDefaults(t *testing.T) {
	r := NewFromExtraction(&Extraction{}, 42, "", "1/2/2026")

	assert.Equal(t, int64(42), r.ID)
	assert.Equal(t, "Untitled", r.Title)
	assert.Empty(t, r.IngredientSections)
	assert.NotNil(t, r.Instructions)
	assert.Equal(t, "1/2/2026", r.DateAdded)
	assert.NotNil(t, r.Tags)
}

func TestNewFromExtractionLegacyFlatIngredients(t *testing.T) {
	ext := &Extraction{
		Title:       "Chili",
		Ingredients: []string{"1 lb ground beef", "1 can kidney beans"},
	}

	r := NewFromExtraction(ext, 1, "", "1/2/2026")
	require.Len(t, r.IngredientSections, 1)
	assert.Equal(t, "", r.IngredientSections[0].Title)
	require.Len(t, r.IngredientSections[0].Items, 2)
	assert.Equal(t, "1 lb ground beef", r.IngredientSections[0].Items[0].Text)
}

func TestNewFromExtractionPostProcesses(t *testing.T) {
	ext := &Extraction{
		Title: "Pie Crust",
		IngredientSections: []ExtractedSection{
			{Title: "", Items: []string{"1 cup Crisco", "2 cups flour"}},
		},
	}

	r := NewFromExtraction(ext, 1, "", "1/2/2026")
	require.Len(t, r.IngredientSections, 1)
	assert.Equal(t, "1 cup shortening", r.IngredientSections[0].Items[0].Text)
	assert.True(t, r.IngredientSections[0].Items[0].Modified)
	assert.False(t, r.IngredientSections[0].Items[1].Modified)
}
