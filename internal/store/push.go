package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"bazaarsync/internal/model"
	"bazaarsync/internal/snapshot"
)

// PushResult reports what one push actually transferred.
type PushResult struct {
	ItemsUploaded   int
	ItemsSkipped    int
	DetailsUploaded int
	DetailsSkipped  int
	ChangesUploaded int
	Batches         int
	Bytes           int64
}

type itemRow struct {
	model.CatalogItem
	UpdatedAt time.Time `json:"updated_at"`
}

type detailRow struct {
	model.ItemOrderDetail
	UpdatedAt time.Time `json:"updated_at"`
}

type metaRow struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Push uploads everything in the snapshot that the backing store does not
// already have: hash-gated catalog items and order details, the not yet
// uploaded tail of the change log, and (unconditionally) the liveness
// metadata. force bypasses the hash gates.
//
// SyncState mutates incrementally: hashes and the uploaded-seq cursor only
// advance after the batch carrying them succeeded, so a failed push leaves
// the unsent rows marked stale and a retry re-sends exactly those.
func (c *Client) Push(ctx context.Context, snap *snapshot.Snapshot, force bool, runID uuid.UUID) (*PushResult, error) {
	res := &PushResult{}
	now := time.Now().UTC()

	if err := c.pushItems(ctx, snap, force, now, res); err != nil {
		return res, err
	}
	if err := c.pushDetails(ctx, snap, force, now, res); err != nil {
		return res, err
	}
	if err := c.pushChanges(ctx, snap, res); err != nil {
		return res, err
	}
	if err := c.pushMeta(ctx, snap, now, runID, res); err != nil {
		return res, err
	}

	return res, nil
}

func sortedIDs[V any](m map[int64]V) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (c *Client) pushItems(ctx context.Context, snap *snapshot.Snapshot, force bool, now time.Time, res *PushResult) error {
	var rows []itemRow
	var hashes []uint64
	var ids []int64

	for _, id := range sortedIDs(snap.Catalog) {
		item := snap.Catalog[id]
		h := ItemHash(item)
		if !force && snap.Sync.ItemHashes[id] == h {
			res.ItemsSkipped++
			continue
		}
		rows = append(rows, itemRow{CatalogItem: item, UpdatedAt: now})
		hashes = append(hashes, h)
		ids = append(ids, id)
	}

	for start := 0; start < len(rows); start += c.batchSize {
		end := start + c.batchSize
		if end > len(rows) {
			end = len(rows)
		}

		n, err := c.upsert(ctx, TableItems, "id", rows[start:end])
		if err != nil {
			return fmt.Errorf("push items: %w", err)
		}
		res.Batches++
		res.Bytes += n

		for i := start; i < end; i++ {
			snap.Sync.ItemHashes[ids[i]] = hashes[i]
		}
		res.ItemsUploaded += end - start
	}

	return nil
}

func (c *Client) pushDetails(ctx context.Context, snap *snapshot.Snapshot, force bool, now time.Time, res *PushResult) error {
	var rows []detailRow
	var hashes []uint64
	var ids []int64

	for _, id := range sortedIDs(snap.Details) {
		detail := snap.Details[id]
		h := DetailHash(detail)
		if !force && snap.Sync.DetailHashes[id] == h {
			res.DetailsSkipped++
			continue
		}
		rows = append(rows, detailRow{ItemOrderDetail: detail, UpdatedAt: now})
		hashes = append(hashes, h)
		ids = append(ids, id)
	}

	for start := 0; start < len(rows); start += c.batchSize {
		end := start + c.batchSize
		if end > len(rows) {
			end = len(rows)
		}

		n, err := c.upsert(ctx, TableOrders, "item_id", rows[start:end])
		if err != nil {
			return fmt.Errorf("push details: %w", err)
		}
		res.Batches++
		res.Bytes += n

		for i := start; i < end; i++ {
			snap.Sync.DetailHashes[ids[i]] = hashes[i]
		}
		res.DetailsUploaded += end - start
	}

	return nil
}

// pushChanges uploads the change-log tail past the uploaded-seq cursor.
// Strictly incremental; the remote log is never deleted and re-uploaded.
func (c *Client) pushChanges(ctx context.Context, snap *snapshot.Snapshot, res *PushResult) error {
	pending := snap.PendingChanges()

	for start := 0; start < len(pending); start += c.batchSize {
		end := start + c.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		n, err := c.insert(ctx, TableChanges, batch)
		if err != nil {
			return fmt.Errorf("push changes: %w", err)
		}
		res.Batches++
		res.Bytes += n

		snap.Sync.LastUploadedSeq = batch[len(batch)-1].Seq
		res.ChangesUploaded += len(batch)
	}

	return nil
}

// pushMeta upserts the liveness metadata. Cheap, and done on every push so
// dashboard consumers can tell a quiet market from a dead syncer.
func (c *Client) pushMeta(ctx context.Context, snap *snapshot.Snapshot, now time.Time, runID uuid.UUID, res *PushResult) error {
	rows := []metaRow{
		{Key: "last_update", Value: now.Format(time.RFC3339), UpdatedAt: now},
		{Key: "total_changes", Value: strconv.FormatInt(snap.ChangeSeq, 10), UpdatedAt: now},
		{Key: "item_count", Value: strconv.Itoa(len(snap.Catalog)), UpdatedAt: now},
		{Key: "last_run_id", Value: runID.String(), UpdatedAt: now},
	}

	n, err := c.upsert(ctx, TableMeta, "key", rows)
	if err != nil {
		return fmt.Errorf("push metadata: %w", err)
	}
	res.Batches++
	res.Bytes += n
	return nil
}

// upsert POSTs rows with merge-on-conflict semantics.
func (c *Client) upsert(ctx context.Context, table, conflictCol string, rows any) (int64, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return 0, err
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		return 0, fmt.Errorf("marshal rows: %w", err)
	}

	query := url.Values{}
	query.Set("on_conflict", conflictCol)
	if err := c.do(ctx, http.MethodPost, table, query, payload, true); err != nil {
		return 0, err
	}
	return int64(len(payload)), nil
}

// insert POSTs rows without conflict handling (append-only tables).
func (c *Client) insert(ctx context.Context, table string, rows any) (int64, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return 0, err
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		return 0, fmt.Errorf("marshal rows: %w", err)
	}

	if err := c.do(ctx, http.MethodPost, table, nil, payload, false); err != nil {
		return 0, err
	}
	return int64(len(payload)), nil
}
