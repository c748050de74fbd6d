package model

import (
	"time"

	"github.com/google/uuid"
)

// ChangeType tags the ChangeRecord variants.
type ChangeType string

const (
	ChangeNewItem     ChangeType = "new_item"
	ChangeOrderCount  ChangeType = "order_count"
	ChangeItemRemoved ChangeType = "item_removed"
)

// OrderSet holds orders grouped by side.
type OrderSet struct {
	Sell []OrderRecord `json:"sell,omitempty"`
	Buy  []OrderRecord `json:"buy,omitempty"`
}

// OrderDiff is the per-order difference between two order-book snapshots of
// the same item, computed over composite keys.
type OrderDiff struct {
	Added   OrderSet `json:"added"`
	Removed OrderSet `json:"removed"`
}

// Empty reports whether the diff carries no orders at all.
func (d OrderDiff) Empty() bool {
	return len(d.Added.Sell) == 0 && len(d.Added.Buy) == 0 &&
		len(d.Removed.Sell) == 0 && len(d.Removed.Buy) == 0
}

// ChangeRecord is one detected transition for one item in one cycle.
// Exactly which of Previous/Current/Delta are set depends on Type:
//
//	ChangeNewItem      Current
//	ChangeOrderCount   Previous, Current, Delta
//	ChangeItemRemoved  Previous
//
// Diff is attached when the item's full detail was fetched in the same
// cycle; otherwise DetailMissing is set and a later cycle backfills the
// order-level view. The count transition itself is never lost either way.
type ChangeRecord struct {
	Seq        int64      `json:"seq"` // monotonic, assigned on append
	Type       ChangeType `json:"type"`
	ItemID     int64      `json:"item_id"`
	Name       string     `json:"name"`
	Kind       ItemKind   `json:"kind"`

	Previous *OrderCounts `json:"previous,omitempty"`
	Current  *OrderCounts `json:"current,omitempty"`
	Delta    *OrderCounts `json:"delta,omitempty"`

	Diff          *OrderDiff `json:"diff,omitempty"`
	DetailMissing bool       `json:"detail_missing,omitempty"`

	RecordedAt time.Time `json:"recorded_at"`
	CycleID    uuid.UUID `json:"cycle_id"`
}
