package recipe

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequentialIDs returns a deterministic id generator for tests.
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("item-%d", n)
	}
}

func TestBuildPreview(t *testing.T) {
	r := &Recipe{
		Title: "Grandma's Biscuits",
		IngredientSections: []IngredientSection{
			{Title: "", Items: []IngredientLine{
				{Text: "2 cups flour"},
				{Text: "1 tsp salt"},
				{Text: "1/2 - 2"}, // normalizes to nothing, must be dropped
			}},
			{Title: "Glaze", Items: []IngredientLine{
				{Text: "1 cup powdered sugar"},
			}},
		},
	}

	items := BuildPreview(r)
	require.Len(t, items, 3)

	assert.Equal(t, "Flour", items[0].Name)
	assert.Equal(t, "2 cups flour", items[0].OriginalText)
	assert.Equal(t, "Grandma's Biscuits", items[0].RecipeName)
	assert.True(t, items[0].Selected)

	assert.Equal(t, "Salt", items[1].Name)
	assert.Equal(t, "Powdered sugar", items[2].Name)
	for _, item := range items {
		assert.True(t, item.Selected)
	}
}

func TestBuildPreviewEmptyRecipe(t *testing.T) {
	assert.Empty(t, BuildPreview(&Recipe{Title: "Empty"}))
}

func TestTogglePreviewItem(t *testing.T) {
	items := []PreviewItem{
		{Name: "Flour", Selected: true},
		{Name: "Salt", Selected: true},
	}

	toggled, err := TogglePreviewItem(items, 1)
	require.NoError(t, err)
	assert.True(t, toggled[0].Selected)
	assert.False(t, toggled[1].Selected)
	// input untouched
	assert.True(t, items[1].Selected)

	toggled, err = TogglePreviewItem(toggled, 1)
	require.NoError(t, err)
	assert.True(t, toggled[1].Selected)
}

func TestTogglePreviewItemOutOfRange(t *testing.T) {
	items := []PreviewItem{{Name: "Flour", Selected: true}}

	_, err := TogglePreviewItem(items, -1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = TogglePreviewItem(items, 1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestSelectAllDeselectAll(t *testing.T) {
	items := []PreviewItem{
		{Name: "Flour", Selected: false},
		{Name: "Salt", Selected: true},
	}

	all := SelectAll(items)
	for _, item := range all {
		assert.True(t, item.Selected)
	}

	none := DeselectAll(all)
	for _, item := range none {
		assert.False(t, item.Selected)
	}
}

func TestMergeIntoShoppingListCreatesEntries(t *testing.T) {
	selected := []PreviewItem{
		{Name: "Flour", Selected: true, OriginalText: "2 cups flour", RecipeName: "Biscuits"},
		{Name: "Salt", Selected: true, OriginalText: "1 tsp salt", RecipeName: "Biscuits"},
	}

	list := MergeIntoShoppingList(nil, selected, sequentialIDs())
	require.Len(t, list, 2)

	assert.Equal(t, "item-1", list[0].ID)
	assert.Equal(t, "Flour", list[0].Name)
	assert.False(t, list[0].Checked)
	require.Len(t, list[0].Sources, 1)
	assert.Equal(t, Source{RecipeName: "Biscuits", OriginalText: "2 cups flour"}, list[0].Sources[0])
}

func TestMergeIntoShoppingListCaseInsensitive(t *testing.T) {
	existing := []ShoppingListItem{
		{ID: "a", Name: "Flour", Sources: []Source{{RecipeName: "Biscuits", OriginalText: "2 cups flour"}}},
	}
	selected := []PreviewItem{
		{Name: "flour", Selected: true, OriginalText: "1 cup flour, sifted", RecipeName: "Pie Crust"},
	}

	list := MergeIntoShoppingList(existing, selected, sequentialIDs())
	require.Len(t, list, 1)
	assert.Equal(t, "Flour", list[0].Name)
	require.Len(t, list[0].Sources, 2)
	assert.Equal(t, Source{RecipeName: "Pie Crust", OriginalText: "1 cup flour, sifted"}, list[0].Sources[1])
}

func TestMergeIntoShoppingListSkipsUnselected(t *testing.T) {
	selected := []PreviewItem{
		{Name: "Flour", Selected: false, OriginalText: "2 cups flour", RecipeName: "Biscuits"},
		{Name: "Salt", Selected: true, OriginalText: "1 tsp salt", RecipeName: "Biscuits"},
	}

	list := MergeIntoShoppingList(nil, selected, sequentialIDs())
	require.Len(t, list, 1)
	assert.Equal(t, "Salt", list[0].Name)
}

func TestMergeIntoShoppingListWithinBatchDedup(t *testing.T) {
	// Two selected items with the same canonical name in one batch: the
	// first creates the entry, the second extends its sources.
	selected := []PreviewItem{
		{Name: "Flour", Selected: true, OriginalText: "2 cups flour", RecipeName: "Biscuits"},
		{Name: "flour", Selected: true, OriginalText: "1 cup flour, sifted", RecipeName: "Biscuits"},
	}

	list := MergeIntoShoppingList(nil, selected, sequentialIDs())
	require.Len(t, list, 1)
	assert.Equal(t, "Flour", list[0].Name)
	require.Len(t, list[0].Sources, 2)
}

func TestMergeIntoShoppingListIdempotent(t *testing.T) {
	selected := []PreviewItem{
		{Name: "Flour", Selected: true, OriginalText: "2 cups flour", RecipeName: "Biscuits"},
		{Name: "Salt", Selected: true, OriginalText: "1 tsp salt", RecipeName: "Biscuits"},
	}

	once := MergeIntoShoppingList(nil, selected, sequentialIDs())
	twice := MergeIntoShoppingList(once, selected, sequentialIDs())
	assert.Equal(t, once, twice)
}

func TestMergeIntoShoppingListNamesUnique(t *testing.T) {
	recipes := []*Recipe{
		{Title: "A", IngredientSections: []IngredientSection{
			{Items: []IngredientLine{{Text: "2 cups flour"}, {Text: "1 tsp salt"}}},
		}},
		{Title: "B", IngredientSections: []IngredientSection{
			{Title: "Dressing", Items: []IngredientLine{{Text: "1 cup flour, sifted"}}},
		}},
	}

	var list []ShoppingListItem
	for _, r := range recipes {
		list = MergeIntoShoppingList(list, BuildPreview(r), sequentialIDs())
	}

	seen := map[string]bool{}
	for _, item := range list {
		key := strings.ToLower(item.Name)
		assert.False(t, seen[key], "duplicate name %q", item.Name)
		seen[key] = true
	}
}

// Two recipes contributing the same canonical ingredient end up as one entry
// with provenance from both.
func TestMergeAcrossRecipes(t *testing.T) {
	recipeA := &Recipe{Title: "A", IngredientSections: []IngredientSection{
		{Title: "", Items: []IngredientLine{{Text: "2 cups flour"}, {Text: "1 tsp salt"}}},
	}}
	recipeB := &Recipe{Title: "B", IngredientSections: []IngredientSection{
		{Title: "Dressing", Items: []IngredientLine{{Text: "1 cup flour, sifted"}}},
	}}

	list := MergeIntoShoppingList(nil, BuildPreview(recipeA), sequentialIDs())
	list = MergeIntoShoppingList(list, BuildPreview(recipeB), sequentialIDs())

	require.Len(t, list, 2)

	var flour, salt *ShoppingListItem
	for i := range list {
		switch list[i].Name {
		case "Flour":
			flour = &list[i]
		case "Salt":
			salt = &list[i]
		}
	}

	require.NotNil(t, flour)
	require.NotNil(t, salt)
	require.Len(t, flour.Sources, 2)
	assert.Equal(t, "A", flour.Sources[0].RecipeName)
	assert.Equal(t, "B", flour.Sources[1].RecipeName)
	require.Len(t, salt.Sources, 1)
	assert.Equal(t, "A", salt.Sources[0].RecipeName)
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	existing := []ShoppingListItem{
		{ID: "a", Name: "Flour", Sources: []Source{{RecipeName: "Biscuits", OriginalText: "2 cups flour"}}},
	}
	selected := []PreviewItem{
		{Name: "Flour", Selected: true, OriginalText: "1 cup flour", RecipeName: "Cake"},
	}

	MergeIntoShoppingList(existing, selected, sequentialIDs())
	assert.Len(t, existing[0].Sources, 1)
}

func TestToggleChecked(t *testing.T) {
	list := []ShoppingListItem{
		{ID: "a", Name: "Flour"},
		{ID: "b", Name: "Salt"},
	}

	toggled := ToggleChecked(list, "b")
	assert.False(t, toggled[0].Checked)
	assert.True(t, toggled[1].Checked)

	// unknown id is a no-op
	same := ToggleChecked(toggled, "missing")
	assert.Equal(t, toggled, same)
}

func TestDeleteItem(t *testing.T) {
	list := []ShoppingListItem{
		{ID: "a", Name: "Flour"},
		{ID: "b", Name: "Salt"},
	}

	shorter := DeleteItem(list, "a")
	require.Len(t, shorter, 1)
	assert.Equal(t, "Salt", shorter[0].Name)

	// unknown id is a no-op
	same := DeleteItem(shorter, "missing")
	assert.Equal(t, shorter, same)
}

func TestClear(t *testing.T) {
	list := []ShoppingListItem{{ID: "a", Name: "Flour"}}
	assert.Empty(t, Clear(list))
	assert.Empty(t, Clear(nil))
}
