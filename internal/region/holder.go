package region

import (
	"sync/atomic"

	"idverify/pkg/domain/residentid"
)

// Holder publishes the current Table. Swap replaces the snapshot atomically;
// Current never returns a partially built table.
type Holder struct {
	current atomic.Pointer[Table]
}

// NewHolder returns a Holder serving initial, which may be nil.
func NewHolder(initial *Table) *Holder {
	h := &Holder{}
	if initial != nil {
		h.current.Store(initial)
	}
	return h
}

// Current returns the active snapshot, or nil before the first load.
func (h *Holder) Current() *Table {
	return h.current.Load()
}

// Table returns the active snapshot as a residentid.RegionTable. Before the
// first load it returns nil so decoding falls back to the unknown region.
func (h *Holder) Table() residentid.RegionTable {
	t := h.current.Load()
	if t == nil {
		return nil
	}
	return t
}

// Swap installs next and returns the previous snapshot.
func (h *Holder) Swap(next *Table) *Table {
	return h.current.Swap(next)
}

// Ready reports whether a table has been loaded.
func (h *Holder) Ready() bool {
	return h.current.Load() != nil
}
