package diff

import (
	"sort"

	"bazaarsync/internal/model"
)

// Changes compares the previous catalog against a freshly fetched one and
// returns the structured change records. On a first run (no previous
// catalog) there is nothing to diff against and the result is empty; the
// cycle still populates the snapshot for next time.
//
// Output order is deterministic: current items in their fetch order, then
// removals from the previous catalog in ascending id order.
func Changes(prev map[int64]model.CatalogItem, cur []model.CatalogItem) []model.ChangeRecord {
	if len(prev) == 0 {
		return nil
	}

	var records []model.ChangeRecord
	seen := make(map[int64]bool, len(cur))

	for _, item := range cur {
		seen[item.ID] = true
		counts := item.Counts()

		old, ok := prev[item.ID]
		if !ok {
			if counts.Total == 0 {
				continue
			}
			records = append(records, model.ChangeRecord{
				Type:    model.ChangeNewItem,
				ItemID:  item.ID,
				Name:    item.Name,
				Kind:    item.Kind,
				Current: &counts,
			})
			continue
		}

		oldCounts := old.Counts()
		if counts == oldCounts {
			continue
		}
		delta := counts.Sub(oldCounts)
		records = append(records, model.ChangeRecord{
			Type:     model.ChangeOrderCount,
			ItemID:   item.ID,
			Name:     item.Name,
			Kind:     item.Kind,
			Previous: &oldCounts,
			Current:  &counts,
			Delta:    &delta,
		})
	}

	// Items gone from the catalog: all of their orders cleared.
	var removed []int64
	for id, old := range prev {
		if !seen[id] && old.TotalOrderCount > 0 {
			removed = append(removed, id)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	for _, id := range removed {
		old := prev[id]
		oldCounts := old.Counts()
		records = append(records, model.ChangeRecord{
			Type:     model.ChangeItemRemoved,
			ItemID:   id,
			Name:     old.Name,
			Kind:     old.Kind,
			Previous: &oldCounts,
		})
	}

	return records
}

// ChangedIDs returns just the ids of items whose counts changed or that are
// new with orders — the items worth a detail refetch. A cheaper pre-pass
// than building full change records; removed items are excluded since
// there is nothing left to fetch for them.
func ChangedIDs(prev map[int64]model.CatalogItem, cur []model.CatalogItem) []int64 {
	if len(prev) == 0 {
		return nil
	}

	var ids []int64
	for _, item := range cur {
		old, ok := prev[item.ID]
		if !ok {
			if item.TotalOrderCount > 0 {
				ids = append(ids, item.ID)
			}
			continue
		}
		if item.Counts() != old.Counts() {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

// ChangedFromSummaries detects changed ids by comparing bulk-summary
// counts against the previous catalog. Bulk counts are authoritative for
// detection only; the per-item detail fetched afterwards is authoritative
// for content, and the two are allowed to disagree transiently.
func ChangedFromSummaries(prev map[int64]model.CatalogItem, summaries map[int64]model.OrderCounts) []int64 {
	if len(prev) == 0 {
		return nil
	}

	var ids []int64
	for id, counts := range summaries {
		old, ok := prev[id]
		if !ok {
			if counts.Total > 0 {
				ids = append(ids, id)
			}
			continue
		}
		if counts != old.Counts() {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
