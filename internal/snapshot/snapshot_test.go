package snapshot

import (
	"testing"

	"bazaarsync/internal/model"
)

func record(itemID int64) model.ChangeRecord {
	return model.ChangeRecord{
		Type:   model.ChangeOrderCount,
		ItemID: itemID,
	}
}

func TestAppendChangesAssignsSequence(t *testing.T) {
	snap := New()
	snap.AppendChanges([]model.ChangeRecord{record(1), record(2)}, 10)
	snap.AppendChanges([]model.ChangeRecord{record(3)}, 10)

	if snap.ChangeSeq != 3 {
		t.Errorf("ChangeSeq = %d, want 3", snap.ChangeSeq)
	}
	for i, rec := range snap.Changes {
		if rec.Seq != int64(i+1) {
			t.Errorf("record %d Seq = %d, want %d", i, rec.Seq, i+1)
		}
	}
}

func TestAppendChangesBounded(t *testing.T) {
	snap := New()
	for i := int64(1); i <= 25; i++ {
		snap.AppendChanges([]model.ChangeRecord{record(i)}, 10)
	}

	if len(snap.Changes) != 10 {
		t.Fatalf("log length = %d, want 10", len(snap.Changes))
	}
	// Oldest evicted first: entries 16..25 remain.
	if snap.Changes[0].Seq != 16 || snap.Changes[9].Seq != 25 {
		t.Errorf("log spans seq %d..%d, want 16..25",
			snap.Changes[0].Seq, snap.Changes[9].Seq)
	}
	if snap.ChangeSeq != 25 {
		t.Errorf("ChangeSeq = %d, want 25 (cumulative, not capped)", snap.ChangeSeq)
	}
}

func TestPendingChangesSurvivesEviction(t *testing.T) {
	snap := New()
	for i := int64(1); i <= 8; i++ {
		snap.AppendChanges([]model.ChangeRecord{record(i)}, 5)
	}
	snap.Sync.LastUploadedSeq = 6

	pending := snap.PendingChanges()
	if len(pending) != 2 {
		t.Fatalf("pending = %d records, want 2", len(pending))
	}
	if pending[0].Seq != 7 || pending[1].Seq != 8 {
		t.Errorf("pending seqs = %d,%d, want 7,8", pending[0].Seq, pending[1].Seq)
	}
}

func TestRecentChangesNewestFirst(t *testing.T) {
	snap := New()
	snap.AppendChanges([]model.ChangeRecord{record(1), record(2), record(3)}, 0)

	recent := snap.RecentChanges(2)
	if len(recent) != 2 {
		t.Fatalf("recent = %d records, want 2", len(recent))
	}
	if recent[0].Seq != 3 || recent[1].Seq != 2 {
		t.Errorf("recent seqs = %d,%d, want 3,2", recent[0].Seq, recent[1].Seq)
	}
}

func TestMissingDetailIDs(t *testing.T) {
	snap := New()
	snap.Details[2] = model.ItemOrderDetail{ItemID: 2}

	// Checked against the freshly fetched catalog, not the held one: item 4
	// is brand new this cycle and still counts as missing.
	catalog := []model.CatalogItem{{ID: 3}, {ID: 1}, {ID: 2}, {ID: 4}}

	ids := snap.MissingDetailIDs(catalog)
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 3 || ids[2] != 4 {
		t.Errorf("missing ids = %v, want [1 3 4]", ids)
	}
}

func TestOrdersByOwner(t *testing.T) {
	snap := New()
	snap.Details[1] = model.ItemOrderDetail{
		ItemID: 1,
		SellOrders: []model.OrderRecord{
			{Side: model.SideSell, OwnerName: "Alice", Price: 5, Quantity: 10},
			{Side: model.SideSell, OwnerName: "bob", Price: 6, Quantity: 5},
		},
		BuyOrders: []model.OrderRecord{
			{Side: model.SideBuy, ClaimName: "alice", Price: 2, Quantity: 1},
		},
	}

	orders := snap.OrdersByOwner("ALICE")
	if len(orders[1]) != 2 {
		t.Errorf("got %d orders for item 1, want 2", len(orders[1]))
	}
}

func TestSyncStateReset(t *testing.T) {
	snap := New()
	snap.Sync.ItemHashes[1] = 42
	snap.Sync.DetailHashes[1] = 43
	snap.Sync.LastUploadedSeq = 9

	snap.Sync.Reset()
	if len(snap.Sync.ItemHashes) != 0 || len(snap.Sync.DetailHashes) != 0 || snap.Sync.LastUploadedSeq != 0 {
		t.Errorf("reset left state behind: %+v", snap.Sync)
	}
}

func TestSummarize(t *testing.T) {
	snap := New()
	snap.Catalog[1] = model.CatalogItem{ID: 1, SellOrderCount: 2, BuyOrderCount: 1, TotalOrderCount: 3}
	snap.Catalog[2] = model.CatalogItem{ID: 2, SellOrderCount: 1, TotalOrderCount: 1}
	snap.Details[1] = model.ItemOrderDetail{ItemID: 1}
	snap.AppendChanges([]model.ChangeRecord{record(1)}, 0)

	sum := snap.Summarize()
	if sum.Items != 2 || sum.Details != 1 || sum.SellOrders != 3 || sum.BuyOrders != 1 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.ChangeEntries != 1 || sum.ChangeSeq != 1 {
		t.Errorf("change counters = %d/%d", sum.ChangeEntries, sum.ChangeSeq)
	}
}
