// Package merge - Combines several COCO datasets into one.
package merge

import (
	"fmt"

	"github.com/nvr-ai/go-cocokit/coco"
	"github.com/pkg/errors"
)

// Kind is the entity collection an id belongs to.
type Kind string

const (
	// KindLicense maps license ids.
	KindLicense Kind = "license"
	// KindImage maps image ids.
	KindImage Kind = "image"
	// KindCategory maps category ids.
	KindCategory Kind = "category"
)

// Entry records where one source id ended up in the merged dataset.
type Entry struct {
	Kind   Kind
	Source int
	OldID  int
	NewID  int
}

func (e Entry) String() string {
	return fmt.Sprintf("%s[%d]:%d -> %d", e.Kind, e.Source, e.OldID, e.NewID)
}

type entryKey struct {
	kind   Kind
	source int
	oldID  int
}

// IdentityMapper is the append-only table of (kind, source, old id) -> new id
// built during one merge.
type IdentityMapper struct {
	entries []Entry
	index   map[entryKey]int
}

// NewIdentityMapper returns an empty mapper.
func NewIdentityMapper() *IdentityMapper {
	return &IdentityMapper{index: make(map[entryKey]int)}
}

// Add records a mapping.
//
// Returns:
// - ErrIntegrity if the (kind, source, old id) triple was already recorded.
func (m *IdentityMapper) Add(kind Kind, source, oldID, newID int) error {
	key := entryKey{kind: kind, source: source, oldID: oldID}
	if i, ok := m.index[key]; ok {
		return errors.Wrapf(coco.ErrIntegrity, "%s id %d of dataset %d already mapped to %d",
			kind, oldID, source, m.entries[i].NewID)
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, Entry{Kind: kind, Source: source, OldID: oldID, NewID: newID})
	return nil
}

// Lookup returns the new id for a source id.
func (m *IdentityMapper) Lookup(kind Kind, source, oldID int) (int, bool) {
	i, ok := m.index[entryKey{kind: kind, source: source, oldID: oldID}]
	if !ok {
		return 0, false
	}
	return m.entries[i].NewID, true
}

// Resolve is Lookup that fails with ErrIntegrity when the id was never mapped.
func (m *IdentityMapper) Resolve(kind Kind, source, oldID int) (int, error) {
	id, ok := m.Lookup(kind, source, oldID)
	if !ok {
		return 0, errors.Wrapf(coco.ErrIntegrity, "%s id %d of dataset %d was never mapped", kind, oldID, source)
	}
	return id, nil
}

// Entries returns every recorded mapping in insertion order.
func (m *IdentityMapper) Entries() []Entry {
	return m.entries
}

// Len returns the number of recorded mappings.
func (m *IdentityMapper) Len() int {
	return len(m.entries)
}
