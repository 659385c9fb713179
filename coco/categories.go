package coco

import "github.com/pkg/errors"

// CategoryIndex resolves categories by name.
type CategoryIndex struct {
	categories []Category
	// nameToIdx for fast lookup by name
	nameToIdx map[string]int
}

// NewCategoryIndex builds the name lookup. When names repeat, the first
// category wins.
func NewCategoryIndex(categories []Category) *CategoryIndex {
	idx := &CategoryIndex{
		categories: categories,
		nameToIdx:  make(map[string]int, len(categories)),
	}
	for i, c := range categories {
		if _, ok := idx.nameToIdx[c.Name]; !ok {
			idx.nameToIdx[c.Name] = i
		}
	}
	return idx
}

// Len returns the number of indexed categories.
func (m *CategoryIndex) Len() int {
	return len(m.categories)
}

// ByName returns the category with the given name.
func (m *CategoryIndex) ByName(name string) (Category, error) {
	i, ok := m.nameToIdx[name]
	if !ok {
		return Category{}, errors.Wrapf(ErrInvalidInput, "category %q not found", name)
	}
	return m.categories[i], nil
}

// Has reports whether a category with the given name exists.
func (m *CategoryIndex) Has(name string) bool {
	_, ok := m.nameToIdx[name]
	return ok
}
