package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bazaarsync/internal/api"
	"bazaarsync/internal/diff"
	"bazaarsync/internal/model"
	"bazaarsync/internal/snapshot"
)

// Engine owns the in-memory snapshot and runs sync cycles against it. The
// snapshot is explicit state passed to collaborators, not an ambient
// singleton; Load happens once in New, Save once per successful cycle.
type Engine struct {
	client MarketAPI
	files  *snapshot.Store
	pusher Pusher // may be nil when no backing store is configured
	snap   *snapshot.Snapshot
	cfg    Config
	logger *slog.Logger
}

// New loads the snapshot file and builds an engine around it.
func New(client MarketAPI, files *snapshot.Store, pusher Pusher, cfg Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeBulk
	}
	if cfg.DetailBudget <= 0 {
		cfg.DetailBudget = 50
	}
	if cfg.SequentialBudget <= 0 {
		cfg.SequentialBudget = 25
	}

	snap, err := files.Load()
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	return &Engine{
		client: client,
		files:  files,
		pusher: pusher,
		snap:   snap,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Snapshot exposes the loaded state for the read-only commands.
func (e *Engine) Snapshot() *snapshot.Snapshot { return e.snap }

// ForceResync clears the push bookkeeping so the next push re-uploads
// every row, then runs one forced cycle.
func (e *Engine) ForceResync(ctx context.Context) (*CycleResult, error) {
	e.snap.Sync.Reset()
	return e.RunCycle(ctx, Options{ForcePush: true})
}

// RunCycle executes one full sync cycle. A catalog fetch failure aborts
// the cycle before any state mutation, leaving the previous snapshot (in
// memory and on disk) untouched. Per-item detail failures are soft and
// only shrink this cycle's coverage.
func (e *Engine) RunCycle(ctx context.Context, opts Options) (*CycleResult, error) {
	mode := opts.Mode
	if mode == "" {
		mode = e.cfg.Mode
	}
	budget := opts.DetailBudget
	if budget <= 0 {
		if mode == ModeSequential {
			budget = e.cfg.SequentialBudget
		} else {
			budget = e.cfg.DetailBudget
		}
	}

	res := &CycleResult{CycleID: uuid.New(), Mode: mode}
	start := time.Now()
	e.logger.Info("cycle starting", "cycle_id", res.CycleID, "mode", mode, "budget", budget)

	catalog, err := e.client.FetchCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("cycle aborted: %w", err)
	}
	res.ItemsFetched = len(catalog)

	prev := e.snap.Catalog

	// Change detection. Bulk counts decide which items to refetch; the
	// catalog comparison produces the change records either way.
	var changedIDs []int64
	switch mode {
	case ModeSequential:
		changedIDs = diff.ChangedIDs(prev, catalog)
	default:
		refs := make([]api.ItemRef, len(catalog))
		for i, item := range catalog {
			refs[i] = api.ItemRef{ID: item.ID, Kind: item.Kind}
		}
		summaries, err := e.client.FetchBulkSummaries(ctx, refs)
		if err != nil {
			return nil, fmt.Errorf("cycle aborted: %w", err)
		}
		counts := make(map[int64]model.OrderCounts, len(summaries))
		for id, s := range summaries {
			counts[id] = s.Counts()
		}
		changedIDs = diff.ChangedFromSummaries(prev, counts)
	}

	records := diff.Changes(prev, catalog)

	// Detail fetch plan: changed ids first, never starved; backfill of
	// never-detailed items only with whatever budget remains.
	fetchIDs := changedIDs
	if len(fetchIDs) > budget {
		fetchIDs = fetchIDs[:budget]
	} else {
		inPlan := make(map[int64]bool, len(fetchIDs))
		for _, id := range fetchIDs {
			inPlan[id] = true
		}
		for _, id := range e.snap.MissingDetailIDs(catalog) {
			if len(fetchIDs) >= budget {
				break
			}
			if inPlan[id] {
				continue
			}
			fetchIDs = append(fetchIDs, id)
			res.Backfilled++
		}
	}

	kinds := make(map[int64]model.ItemKind, len(catalog))
	for _, item := range catalog {
		kinds[item.ID] = item.Kind
	}

	fetched := make(map[int64]*model.ItemOrderDetail, len(fetchIDs))
	for _, id := range fetchIDs {
		kind, ok := kinds[id]
		if !ok {
			// Changed per summaries but already gone from the catalog.
			res.DetailsSkipped++
			continue
		}
		detail, err := e.client.FetchItemDetail(ctx, id, kind)
		if err != nil {
			return nil, fmt.Errorf("cycle aborted: %w", err)
		}
		if detail == nil {
			res.DetailsSkipped++
			continue
		}
		fetched[id] = detail
		res.DetailsFetched++
	}

	// Enrich the change records with order-level diffs where detail
	// arrived this cycle; flag the rest for a later backfill. The count
	// transition is recorded regardless.
	now := time.Now().UTC()
	for i := range records {
		rec := &records[i]
		rec.RecordedAt = now
		rec.CycleID = res.CycleID

		switch rec.Type {
		case model.ChangeNewItem:
			res.NewItems++
		case model.ChangeOrderCount:
			res.CountChanges++
		case model.ChangeItemRemoved:
			res.Removed++
			continue
		}

		if cur, ok := fetched[rec.ItemID]; ok {
			var prevDetail *model.ItemOrderDetail
			if d, ok := e.snap.Details[rec.ItemID]; ok {
				prevDetail = &d
			}
			od := diff.Orders(prevDetail, cur)
			rec.Diff = &od
		} else {
			rec.DetailMissing = true
		}
	}

	// Apply. From here on the cycle must run to completion.
	newCatalog := make(map[int64]model.CatalogItem, len(catalog))
	for _, item := range catalog {
		newCatalog[item.ID] = item
	}
	e.snap.Catalog = newCatalog

	for id, detail := range fetched {
		e.snap.Details[id] = *detail
	}

	// Stale details for items gone from the catalog would corrupt future
	// diffs; drop them together with their push bookkeeping.
	for id := range e.snap.Details {
		if _, ok := newCatalog[id]; !ok {
			delete(e.snap.Details, id)
			delete(e.snap.Sync.DetailHashes, id)
			delete(e.snap.Sync.ItemHashes, id)
			res.Pruned++
		}
	}

	e.snap.AppendChanges(records, e.cfg.ChangeLogMax)
	e.snap.Cycles++

	if err := e.files.Save(e.snap); err != nil {
		return res, fmt.Errorf("persist snapshot: %w", err)
	}

	var pushErr error
	if e.pusher != nil && e.pusher.Configured() {
		res.Push, pushErr = e.pusher.Push(ctx, e.snap, opts.ForcePush, res.CycleID)
		// Push mutates the sync bookkeeping even on failure (hashes advance
		// per successful batch), so persist it either way; retries then
		// re-send only what is still stale.
		if err := e.files.Save(e.snap); err != nil {
			e.logger.Error("failed to persist sync state after push", "err", err)
		}
	} else if e.pusher != nil {
		e.logger.Info("backing store not configured, skipping push")
	}

	res.Duration = time.Since(start)
	e.logSummary(res)

	if pushErr != nil {
		return res, fmt.Errorf("push failed: %w", pushErr)
	}
	return res, nil
}

func (e *Engine) logSummary(res *CycleResult) {
	attrs := []any{
		"cycle_id", res.CycleID,
		"mode", res.Mode,
		"items", res.ItemsFetched,
		"changed", res.Changed(),
		"new", res.NewItems,
		"count_changes", res.CountChanges,
		"removed", res.Removed,
		"details_fetched", res.DetailsFetched,
		"details_skipped", res.DetailsSkipped,
		"backfilled", res.Backfilled,
		"pruned", res.Pruned,
		"duration", res.Duration,
	}
	if res.Push != nil {
		attrs = append(attrs,
			"uploaded_items", res.Push.ItemsUploaded,
			"uploaded_details", res.Push.DetailsUploaded,
			"uploaded_changes", res.Push.ChangesUploaded,
			"skipped_rows", res.Push.ItemsSkipped+res.Push.DetailsSkipped,
			"bytes", res.Push.Bytes,
		)
	}
	e.logger.Info("cycle complete", attrs...)
}
