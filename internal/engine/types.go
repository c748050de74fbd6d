package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bazaarsync/internal/api"
	"bazaarsync/internal/model"
	"bazaarsync/internal/snapshot"
	"bazaarsync/internal/store"
)

// Mode selects the fetch strategy for a cycle.
type Mode string

const (
	// ModeBulk uses the cheap bulk-summary endpoint for change detection
	// and is the default for recurring cycles.
	ModeBulk Mode = "bulk"
	// ModeSequential skips the bulk-summary step and detects changes from
	// the catalog counts alone. Legacy/manual strategy.
	ModeSequential Mode = "sequential"
)

// MarketAPI is the slice of the market client the engine needs.
type MarketAPI interface {
	FetchCatalog(ctx context.Context) ([]model.CatalogItem, error)
	FetchBulkSummaries(ctx context.Context, refs []api.ItemRef) (map[int64]api.Summary, error)
	FetchItemDetail(ctx context.Context, id int64, kind model.ItemKind) (*model.ItemOrderDetail, error)
}

// Pusher uploads snapshot deltas to the backing store.
type Pusher interface {
	Configured() bool
	Push(ctx context.Context, snap *snapshot.Snapshot, force bool, runID uuid.UUID) (*store.PushResult, error)
}

// Config holds the engine defaults; per-cycle Options can override them.
type Config struct {
	Mode             Mode
	DetailBudget     int // max detail fetches per bulk cycle
	SequentialBudget int // max detail fetches per sequential cycle
	ChangeLogMax     int
}

// Options tunes a single cycle.
type Options struct {
	Mode         Mode // empty = engine default
	DetailBudget int  // 0 = engine default
	ForcePush    bool // bypass the hash gates on push
}

// CycleResult is the structured summary of one cycle, logged so operators
// can see degraded conditions (rising skip counts, shrinking uploads)
// without reading internals.
type CycleResult struct {
	CycleID uuid.UUID
	Mode    Mode

	ItemsFetched int
	NewItems     int
	CountChanges int
	Removed      int

	DetailsFetched int
	DetailsSkipped int // soft failures: item not updated this cycle
	Backfilled     int
	Pruned         int

	Push     *store.PushResult
	Duration time.Duration
}

// Changed returns the total number of change records produced.
func (r *CycleResult) Changed() int {
	return r.NewItems + r.CountChanges + r.Removed
}
