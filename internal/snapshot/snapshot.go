// Package snapshot holds the locally persisted market state: the last-known
// catalog, per-item order detail, the bounded change log, and the push
// bookkeeping. One snapshot file, one writer, loaded wholesale at startup
// and saved wholesale after each cycle.
package snapshot

import (
	"sort"
	"strings"
	"time"

	"bazaarsync/internal/model"
)

// DefaultChangeLogMax bounds the in-memory/on-disk change log.
const DefaultChangeLogMax = 1000

// SyncState tracks what has already been pushed to the remote store. It is
// a local optimization only, never a source of truth for market data.
// Clearing it forces a full re-push.
type SyncState struct {
	ItemHashes      map[int64]uint64 `json:"item_hashes"`
	DetailHashes    map[int64]uint64 `json:"detail_hashes"`
	LastUploadedSeq int64            `json:"last_uploaded_seq"`
}

// Reset clears all push bookkeeping.
func (s *SyncState) Reset() {
	s.ItemHashes = make(map[int64]uint64)
	s.DetailHashes = make(map[int64]uint64)
	s.LastUploadedSeq = 0
}

// Snapshot is the whole locally held market state.
type Snapshot struct {
	Catalog   map[int64]model.CatalogItem     `json:"catalog"`
	Details   map[int64]model.ItemOrderDetail `json:"details"`
	Changes   []model.ChangeRecord            `json:"changes"`
	ChangeSeq int64                           `json:"change_seq"` // cumulative counter, survives eviction
	Sync      SyncState                       `json:"sync"`
	UpdatedAt time.Time                       `json:"updated_at"`
	Cycles    int64                           `json:"cycles"`
}

// New returns an empty snapshot ready for a first run.
func New() *Snapshot {
	return &Snapshot{
		Catalog: make(map[int64]model.CatalogItem),
		Details: make(map[int64]model.ItemOrderDetail),
		Sync: SyncState{
			ItemHashes:   make(map[int64]uint64),
			DetailHashes: make(map[int64]uint64),
		},
	}
}

// normalize repairs nil maps after JSON decoding so callers never need nil
// checks.
func (s *Snapshot) normalize() {
	if s.Catalog == nil {
		s.Catalog = make(map[int64]model.CatalogItem)
	}
	if s.Details == nil {
		s.Details = make(map[int64]model.ItemOrderDetail)
	}
	if s.Sync.ItemHashes == nil {
		s.Sync.ItemHashes = make(map[int64]uint64)
	}
	if s.Sync.DetailHashes == nil {
		s.Sync.DetailHashes = make(map[int64]uint64)
	}
}

// AppendChanges assigns sequence numbers, appends the records, and evicts
// the oldest entries beyond max (FIFO). Pass max <= 0 for the default cap.
func (s *Snapshot) AppendChanges(records []model.ChangeRecord, max int) {
	if max <= 0 {
		max = DefaultChangeLogMax
	}
	for i := range records {
		s.ChangeSeq++
		records[i].Seq = s.ChangeSeq
	}
	s.Changes = append(s.Changes, records...)
	if excess := len(s.Changes) - max; excess > 0 {
		s.Changes = append([]model.ChangeRecord(nil), s.Changes[excess:]...)
	}
}

// PendingChanges returns the change records not yet uploaded to the remote
// store, oldest first. Sequence numbers keep this correct even after FIFO
// eviction shifted the slice.
func (s *Snapshot) PendingChanges() []model.ChangeRecord {
	idx := sort.Search(len(s.Changes), func(i int) bool {
		return s.Changes[i].Seq > s.Sync.LastUploadedSeq
	})
	return s.Changes[idx:]
}

// RecentChanges returns up to n of the newest change records, newest first.
func (s *Snapshot) RecentChanges(n int) []model.ChangeRecord {
	if n <= 0 || n > len(s.Changes) {
		n = len(s.Changes)
	}
	out := make([]model.ChangeRecord, 0, n)
	for i := len(s.Changes) - 1; i >= len(s.Changes)-n; i-- {
		out = append(out, s.Changes[i])
	}
	return out
}

// MissingDetailIDs returns the ids from catalog that have never been
// detailed, ascending for deterministic backfill order. The caller passes
// the current cycle's catalog: the held one predates the fetch and would
// miss items that just appeared.
func (s *Snapshot) MissingDetailIDs(catalog []model.CatalogItem) []int64 {
	var ids []int64
	for _, item := range catalog {
		if _, ok := s.Details[item.ID]; !ok {
			ids = append(ids, item.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// OrdersByOwner returns all held orders whose owner or claim name matches
// name (case-insensitive). Debug aid for the owner command.
func (s *Snapshot) OrdersByOwner(name string) map[int64][]model.OrderRecord {
	needle := strings.ToLower(name)
	match := func(o model.OrderRecord) bool {
		return strings.ToLower(o.OwnerName) == needle || strings.ToLower(o.ClaimName) == needle
	}

	out := make(map[int64][]model.OrderRecord)
	for id, detail := range s.Details {
		for _, o := range detail.SellOrders {
			if match(o) {
				out[id] = append(out[id], o)
			}
		}
		for _, o := range detail.BuyOrders {
			if match(o) {
				out[id] = append(out[id], o)
			}
		}
	}
	return out
}

// Summary aggregates counts for the status command.
type Summary struct {
	Items         int
	Details       int
	SellOrders    int
	BuyOrders     int
	ChangeEntries int
	ChangeSeq     int64
	Cycles        int64
	UpdatedAt     time.Time
}

// Summarize computes the status-command view of the snapshot.
func (s *Snapshot) Summarize() Summary {
	sum := Summary{
		Items:         len(s.Catalog),
		Details:       len(s.Details),
		ChangeEntries: len(s.Changes),
		ChangeSeq:     s.ChangeSeq,
		Cycles:        s.Cycles,
		UpdatedAt:     s.UpdatedAt,
	}
	for _, item := range s.Catalog {
		sum.SellOrders += item.SellOrderCount
		sum.BuyOrders += item.BuyOrderCount
	}
	return sum
}
