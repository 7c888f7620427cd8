package recipe

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrIndexOutOfRange is returned when a preview item index does not exist.
var ErrIndexOutOfRange = fmt.Errorf("preview item index out of range")

// ShoppingListItem is one consolidated entry on the shopping list. Name is
// the canonical grocery-item name and is unique within a list under
// case-insensitive comparison.
type ShoppingListItem struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Checked bool     `json:"checked"`
	Sources []Source `json:"sources"`
}

// Source records which recipe and which raw ingredient line contributed to a
// shopping-list entry.
type Source struct {
	RecipeName   string `json:"recipeName"`
	OriginalText string `json:"originalText"`
}

// PreviewItem is a transient candidate shopping-list entry awaiting user
// confirmation. It is never persisted.
type PreviewItem struct {
	Name         string `json:"name"`
	Selected     bool   `json:"selected"`
	OriginalText string `json:"originalText"`
	RecipeName   string `json:"recipeName"`
}

// BuildPreview flattens all of the recipe's ingredient sections into one
// ordered preview list, normalizing each line to its canonical name. Lines
// that normalize to the empty string are dropped; every surviving line starts
// selected.
func BuildPreview(r *Recipe) []PreviewItem {
	items := make([]PreviewItem, 0)
	for _, section := range r.IngredientSections {
		for _, line := range section.Items {
			name := Normalize(line.Text)
			if name == "" {
				continue
			}
			items = append(items, PreviewItem{
				Name:         name,
				Selected:     true,
				OriginalText: line.Text,
				RecipeName:   r.Title,
			})
		}
	}
	return items
}

// TogglePreviewItem flips the selection of the item at index, leaving all
// others unchanged.
func TogglePreviewItem(items []PreviewItem, index int) ([]PreviewItem, error) {
	if index < 0 || index >= len(items) {
		return nil, ErrIndexOutOfRange
	}
	out := make([]PreviewItem, len(items))
	copy(out, items)
	out[index].Selected = !out[index].Selected
	return out, nil
}

// SelectAll marks every preview item selected.
func SelectAll(items []PreviewItem) []PreviewItem {
	out := make([]PreviewItem, len(items))
	for i, item := range items {
		item.Selected = true
		out[i] = item
	}
	return out
}

// DeselectAll marks every preview item unselected.
func DeselectAll(items []PreviewItem) []PreviewItem {
	out := make([]PreviewItem, len(items))
	for i, item := range items {
		item.Selected = false
		out[i] = item
	}
	return out
}

// MergeIntoShoppingList merges the selected preview items into list and
// returns the merged list as a new value; callers persist the result.
// Items are matched to existing entries by case-insensitive name. A matched
// item extends the entry's sources unless the identical (recipe, line) pair
// is already recorded, so re-merging the same batch is a no-op. Unmatched
// items create new unchecked entries with ids from newID; nil newID means
// random UUIDs. De-duplication also applies within a single batch: the first
// selected item with a given name creates the entry, later ones extend it.
func MergeIntoShoppingList(list []ShoppingListItem, selected []PreviewItem, newID func() string) []ShoppingListItem {
	if newID == nil {
		newID = uuid.NewString
	}

	merged := make([]ShoppingListItem, len(list))
	copy(merged, list)

	for _, item := range selected {
		if !item.Selected {
			continue
		}

		existing := -1
		for i, entry := range merged {
			if strings.EqualFold(entry.Name, item.Name) {
				existing = i
				break
			}
		}

		src := Source{RecipeName: item.RecipeName, OriginalText: item.OriginalText}
		if existing >= 0 {
			if hasSource(merged[existing].Sources, src) {
				continue
			}
			sources := make([]Source, len(merged[existing].Sources))
			copy(sources, merged[existing].Sources)
			merged[existing].Sources = append(sources, src)
			continue
		}

		merged = append(merged, ShoppingListItem{
			ID:      newID(),
			Name:    item.Name,
			Checked: false,
			Sources: []Source{src},
		})
	}

	return merged
}

func hasSource(sources []Source, src Source) bool {
	for _, s := range sources {
		if s.RecipeName == src.RecipeName && s.OriginalText == src.OriginalText {
			return true
		}
	}
	return false
}

// ToggleChecked flips the checked state of the item with the given id. An
// unknown id leaves the list unchanged.
func ToggleChecked(list []ShoppingListItem, id string) []ShoppingListItem {
	out := make([]ShoppingListItem, len(list))
	copy(out, list)
	for i := range out {
		if out[i].ID == id {
			out[i].Checked = !out[i].Checked
			break
		}
	}
	return out
}

// DeleteItem removes the item with the given id. An unknown id leaves the
// list unchanged.
func DeleteItem(list []ShoppingListItem, id string) []ShoppingListItem {
	out := make([]ShoppingListItem, 0, len(list))
	for _, item := range list {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}

// Clear returns an empty shopping list.
func Clear(list []ShoppingListItem) []ShoppingListItem {
	return []ShoppingListItem{}
}
