// Package memory implements an in-memory recipe repository.
package memory

import (
	"context"
	"sync"

	"kitchenos/pkg/recipe"
)

// Repository provides an in-memory implementation of recipe.Repository.
// Recipes are kept in insertion order and ids come from a counter that is
// never rewound, so deleted ids are not reused.
type Repository struct {
	mu      sync.RWMutex
	recipes []recipe.Recipe
	lastID  int
	fields  []recipe.Field
}

// Option configures a Repository.
type Option func(*Repository)

// WithSearchFields sets the fields Search matches the query against.
// An empty list keeps the default title and ingredients.
func WithSearchFields(fields ...recipe.Field) Option {
	return func(r *Repository) {
		if len(fields) > 0 {
			r.fields = append([]recipe.Field(nil), fields...)
		}
	}
}

// New creates a new in-memory repository.
func New(opts ...Option) *Repository {
	r := &Repository{fields: recipe.DefaultFields}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add stores rec under a freshly assigned id and returns that id. Any id on
// rec is ignored. Invalid recipes are rejected with recipe.InvalidID and
// recipe.ErrInvalidInput, leaving the store untouched.
func (r *Repository) Add(ctx context.Context, rec recipe.Recipe) (int, error) {
	_ = ctx
	if err := recipe.Validate(rec); err != nil {
		return recipe.InvalidID, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastID++
	rec.ID = r.lastID
	r.recipes = append(r.recipes, rec)
	return rec.ID, nil
}

// Search returns the owner's recipes whose configured fields contain query,
// ignoring ASCII case. An empty query returns all of the owner's recipes.
func (r *Repository) Search(ctx context.Context, ownerID int, query string) []recipe.Recipe {
	_ = ctx
	q := recipe.FoldASCII(query)

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]recipe.Recipe, 0)
	for _, rec := range r.recipes {
		if rec.OwnerID == ownerID && rec.Matches(q, r.fields) {
			out = append(out, rec)
		}
	}
	return out
}

// Delete removes the recipe with id if it belongs to ownerID. A recipe owned
// by someone else is reported exactly like a missing one.
func (r *Repository) Delete(ctx context.Context, ownerID, id int) bool {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.recipes[:0]
	for _, rec := range r.recipes {
		if rec.ID == id && rec.OwnerID == ownerID {
			continue
		}
		kept = append(kept, rec)
	}
	removed := len(kept) != len(r.recipes)
	clear(r.recipes[len(kept):])
	r.recipes = kept
	return removed
}

// Len returns the number of stored recipes across all owners.
func (r *Repository) Len(ctx context.Context) int {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.recipes)
}

var _ recipe.Repository = (*Repository)(nil)
