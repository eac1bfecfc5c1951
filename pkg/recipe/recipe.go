package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Recipe represents a dish owned by a single restaurant.
type Recipe struct {
	ID           int    `json:"id"`
	OwnerID      int    `json:"ownerId"`
	Title        string `json:"title"`
	Ingredients  string `json:"ingredients"`
	Instructions string `json:"instructions"`
	Yield        string `json:"yield"`
}

// InvalidID is returned by Add when the recipe was rejected.
const InvalidID = -1

// ErrInvalidInput indicates a recipe with an empty title or a non-positive owner.
var ErrInvalidInput = errors.New("recipe: invalid input")

// Repository defines behavior for storing recipes scoped by owner.
type Repository interface {
	Add(ctx context.Context, r Recipe) (int, error)
	Search(ctx context.Context, ownerID int, query string) []Recipe
	Delete(ctx context.Context, ownerID, id int) bool
	Len(ctx context.Context) int
}

// Validate reports whether r may be stored.
func Validate(r Recipe) error {
	if r.Title == "" || r.OwnerID <= 0 {
		return ErrInvalidInput
	}
	return nil
}

// Field names a searchable recipe attribute.
type Field string

const (
	FieldTitle        Field = "title"
	FieldIngredients  Field = "ingredients"
	FieldInstructions Field = "instructions"
	FieldYield        Field = "yield"
)

// DefaultFields is the field set matched by Search unless configured otherwise.
var DefaultFields = []Field{FieldTitle, FieldIngredients}

// ParseField converts a field name into a Field.
func ParseField(s string) (Field, error) {
	switch f := Field(strings.ToLower(strings.TrimSpace(s))); f {
	case FieldTitle, FieldIngredients, FieldInstructions, FieldYield:
		return f, nil
	}
	return "", fmt.Errorf("recipe: unknown search field %q", s)
}

// Value returns the text of field f.
func (r Recipe) Value(f Field) string {
	switch f {
	case FieldTitle:
		return r.Title
	case FieldIngredients:
		return r.Ingredients
	case FieldInstructions:
		return r.Instructions
	case FieldYield:
		return r.Yield
	}
	return ""
}

// Matches reports whether the already folded query is a substring of any of
// the given fields. An empty query matches every recipe.
func (r Recipe) Matches(foldedQuery string, fields []Field) bool {
	if foldedQuery == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(FoldASCII(r.Value(f)), foldedQuery) {
			return true
		}
	}
	return false
}

// FoldASCII lowercases ASCII letters only. Other bytes, including multi-byte
// UTF-8 sequences, are left untouched so matching does not depend on locale.
func FoldASCII(s string) string {
	i := 0
	for ; i < len(s); i++ {
		if c := s[i]; 'A' <= c && c <= 'Z' {
			break
		}
	}
	if i == len(s) {
		return s
	}
	b := []byte(s)
	for ; i < len(b); i++ {
		if c := b[i]; 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
