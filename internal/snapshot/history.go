// Package snapshot keeps height-indexed histories of values. Entries are
// appended at non-decreasing heights and never rewritten once a higher height
// has been recorded, so a read at a past height is stable forever.
package snapshot

import (
	errorsmod "cosmossdk.io/errors"
	"github.com/google/btree"

	"github.com/elys-network/lockdrop/internal/types"
)

const degree = 16

// Entry is one recorded (height, value) pair.
type Entry[V any] struct {
	Height uint64 `json:"height"`
	Value  V      `json:"value"`
}

func byHeight[V any](a, b Entry[V]) bool {
	return a.Height < b.Height
}

// History is the ordered sequence of values recorded for a single key.
type History[V any] struct {
	tree *btree.BTreeG[Entry[V]]
}

func NewHistory[V any]() *History[V] {
	return &History[V]{tree: btree.NewG(degree, byHeight[V])}
}

// CanSave reports whether a write at height would keep the history monotonic.
func (h *History[V]) CanSave(height uint64) error {
	if last, ok := h.tree.Max(); ok && height < last.Height {
		return errorsmod.Wrapf(types.ErrNonMonotonicHeight, "write at %d, latest entry at %d", height, last.Height)
	}
	return nil
}

// Save records value at height. A second write at the latest height replaces it.
func (h *History[V]) Save(height uint64, value V) error {
	if err := h.CanSave(height); err != nil {
		return err
	}
	h.tree.ReplaceOrInsert(Entry[V]{Height: height, Value: value})
	return nil
}

// At returns the most recent value recorded at or before height.
func (h *History[V]) At(height uint64) (V, bool) {
	var (
		found Entry[V]
		ok    bool
	)
	h.tree.DescendLessOrEqual(Entry[V]{Height: height}, func(e Entry[V]) bool {
		found, ok = e, true
		return false
	})
	return found.Value, ok
}

// Latest returns the value with the highest recorded height.
func (h *History[V]) Latest() (V, bool) {
	e, ok := h.tree.Max()
	return e.Value, ok
}

func (h *History[V]) Len() int {
	return h.tree.Len()
}

// Entries returns every recorded entry in ascending height order.
func (h *History[V]) Entries() []Entry[V] {
	out := make([]Entry[V], 0, h.tree.Len())
	h.tree.Ascend(func(e Entry[V]) bool {
		out = append(out, e)
		return true
	})
	return out
}

// Restore replays entries into an empty history.
func (h *History[V]) Restore(entries []Entry[V]) error {
	for _, e := range entries {
		if err := h.Save(e.Height, e.Value); err != nil {
			return err
		}
	}
	return nil
}
