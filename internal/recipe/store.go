package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"familyplate/internal/kv"
)

const (
	recipeKeyPrefix = "recipe:"
	shoppingListKey = "shopping-list"
)

// Store persists recipes and the shopping list as serialized records in a
// generic key-value store. Recipes live one-per-key under recipe:<id>; the
// shopping list is a single record under a fixed key.
type Store struct {
	kv kv.Store
}

// NewStore creates a Store backed by the given key-value store.
func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

func recipeKey(id int64) string {
	return recipeKeyPrefix + strconv.FormatInt(id, 10)
}

// Save persists a recipe, overwriting any previous record with the same id.
func (s *Store) Save(ctx context.Context, r *Recipe) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}
	if err := s.kv.Set(ctx, recipeKey(r.ID), string(data)); err != nil {
		return fmt.Errorf("failed to save recipe %d: %w", r.ID, err)
	}
	return nil
}

// Get retrieves a recipe by id. It returns nil, nil when no record exists.
func (s *Store) Get(ctx context.Context, id int64) (*Recipe, error) {
	data, err := s.kv.Get(ctx, recipeKey(id))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe %d: %w", id, err)
	}
	var r Recipe
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe %d: %w", id, err)
	}
	return &r, nil
}

// List loads every stored recipe, newest first. Individual records that are
// missing or unparseable are skipped rather than aborting the whole load.
func (s *Store) List(ctx context.Context) ([]*Recipe, error) {
	keys, err := s.kv.ListKeys(ctx, recipeKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipe keys: %w", err)
	}

	recipes := make([]*Recipe, 0, len(keys))
	for _, key := range keys {
		data, err := s.kv.Get(ctx, key)
		if err != nil {
			continue
		}
		var r Recipe
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			continue
		}
		recipes = append(recipes, &r)
	}

	sort.Slice(recipes, func(i, j int) bool {
		return recipes[i].ID > recipes[j].ID
	})

	return recipes, nil
}

// Delete removes a recipe by id.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := s.kv.Delete(ctx, recipeKey(id)); err != nil {
		return fmt.Errorf("failed to delete recipe %d: %w", id, err)
	}
	return nil
}

// ShoppingList loads the persisted shopping list. An absent or unparseable
// record yields an empty list.
func (s *Store) ShoppingList(ctx context.Context) ([]ShoppingListItem, error) {
	data, err := s.kv.Get(ctx, shoppingListKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return []ShoppingListItem{}, nil
		}
		return nil, fmt.Errorf("failed to get shopping list: %w", err)
	}
	var list []ShoppingListItem
	if err := json.Unmarshal([]byte(data), &list); err != nil {
		return []ShoppingListItem{}, nil
	}
	if list == nil {
		list = []ShoppingListItem{}
	}
	return list, nil
}

// SaveShoppingList persists the shopping list.
func (s *Store) SaveShoppingList(ctx context.Context, list []ShoppingListItem) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal shopping list: %w", err)
	}
	if err := s.kv.Set(ctx, shoppingListKey, string(data)); err != nil {
		return fmt.Errorf("failed to save shopping list: %w", err)
	}
	return nil
}
