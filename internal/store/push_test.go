package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"bazaarsync/internal/model"
	"bazaarsync/internal/ratelimit"
	"bazaarsync/internal/snapshot"
)

// fakeStore records every request per table and can fail selected tables.
type fakeStore struct {
	mu       sync.Mutex
	requests map[string][]storeRequest
	fail     map[string]bool
}

type storeRequest struct {
	method string
	query  string
	prefer string
	rows   int
}

func newFakeStore() (*fakeStore, *httptest.Server) {
	fs := &fakeStore{
		requests: make(map[string][]storeRequest),
		fail:     make(map[string]bool),
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")

		rows := 0
		if r.Body != nil {
			body, _ := io.ReadAll(r.Body)
			if len(body) > 0 {
				var decoded []json.RawMessage
				if err := json.Unmarshal(body, &decoded); err == nil {
					rows = len(decoded)
				}
			}
		}

		fs.mu.Lock()
		fs.requests[table] = append(fs.requests[table], storeRequest{
			method: r.Method,
			query:  r.URL.RawQuery,
			prefer: r.Header.Get("Prefer"),
			rows:   rows,
		})
		failed := fs.fail[table]
		fs.mu.Unlock()

		if failed {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	return fs, server
}

func (fs *fakeStore) totalRows(table string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	total := 0
	for _, req := range fs.requests[table] {
		total += req.rows
	}
	return total
}

func (fs *fakeStore) calls(table string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.requests[table])
}

func testSnapshot(items int) *snapshot.Snapshot {
	snap := snapshot.New()
	for i := 1; i <= items; i++ {
		id := int64(i)
		snap.Catalog[id] = model.CatalogItem{
			ID: id, Name: "Item", Kind: model.KindItem,
			SellOrderCount: i, TotalOrderCount: i,
		}
	}
	return snap
}

func storeClient(url string, opts ...Option) *Client {
	base := []Option{WithPacer(ratelimit.None())}
	return New(url, "test-key", append(base, opts...)...)
}

func TestPushIdempotent(t *testing.T) {
	_, server := newFakeStore()
	defer server.Close()

	c := storeClient(server.URL)
	snap := testSnapshot(5)
	ctx := context.Background()

	first, err := c.Push(ctx, snap, false, uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if first.ItemsUploaded != 5 {
		t.Errorf("first push uploaded %d items, want 5", first.ItemsUploaded)
	}

	second, err := c.Push(ctx, snap, false, uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if second.ItemsUploaded != 0 || second.ItemsSkipped != 5 {
		t.Errorf("second push = %d uploaded / %d skipped, want 0/5",
			second.ItemsUploaded, second.ItemsSkipped)
	}
}

func TestPushOnlyChangedItems(t *testing.T) {
	fs, server := newFakeStore()
	defer server.Close()

	c := storeClient(server.URL)
	snap := testSnapshot(50)
	ctx := context.Background()

	if _, err := c.Push(ctx, snap, false, uuid.New()); err != nil {
		t.Fatal(err)
	}

	// Two items change; only those two rows travel.
	item := snap.Catalog[7]
	item.SellOrderCount++
	item.TotalOrderCount++
	snap.Catalog[7] = item
	item = snap.Catalog[31]
	item.BuyOrderCount++
	item.TotalOrderCount++
	snap.Catalog[31] = item

	before := fs.totalRows(TableItems)
	res, err := c.Push(ctx, snap, false, uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if res.ItemsUploaded != 2 {
		t.Errorf("uploaded %d items, want 2", res.ItemsUploaded)
	}
	if got := fs.totalRows(TableItems) - before; got != 2 {
		t.Errorf("wire carried %d item rows, want 2", got)
	}
}

func TestPushForceBypassesGate(t *testing.T) {
	_, server := newFakeStore()
	defer server.Close()

	c := storeClient(server.URL)
	snap := testSnapshot(3)
	ctx := context.Background()

	if _, err := c.Push(ctx, snap, false, uuid.New()); err != nil {
		t.Fatal(err)
	}
	res, err := c.Push(ctx, snap, true, uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if res.ItemsUploaded != 3 {
		t.Errorf("force push uploaded %d items, want 3", res.ItemsUploaded)
	}
}

func TestPushBatching(t *testing.T) {
	fs, server := newFakeStore()
	defer server.Close()

	c := storeClient(server.URL, WithBatchSize(20))
	snap := testSnapshot(50)

	if _, err := c.Push(context.Background(), snap, false, uuid.New()); err != nil {
		t.Fatal(err)
	}
	// 50 rows at batch 20: three upsert calls.
	if got := fs.calls(TableItems); got != 3 {
		t.Errorf("item calls = %d, want 3", got)
	}
}

func TestPushChangesIncremental(t *testing.T) {
	fs, server := newFakeStore()
	defer server.Close()

	c := storeClient(server.URL)
	snap := snapshot.New()
	snap.AppendChanges([]model.ChangeRecord{
		{Type: model.ChangeNewItem, ItemID: 1},
		{Type: model.ChangeNewItem, ItemID: 2},
	}, 0)
	ctx := context.Background()

	if _, err := c.Push(ctx, snap, false, uuid.New()); err != nil {
		t.Fatal(err)
	}
	if got := fs.totalRows(TableChanges); got != 2 {
		t.Fatalf("first push sent %d change rows, want 2", got)
	}

	snap.AppendChanges([]model.ChangeRecord{
		{Type: model.ChangeOrderCount, ItemID: 1},
	}, 0)

	res, err := c.Push(ctx, snap, false, uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if res.ChangesUploaded != 1 {
		t.Errorf("second push uploaded %d changes, want 1", res.ChangesUploaded)
	}
	if got := fs.totalRows(TableChanges); got != 3 {
		t.Errorf("total change rows = %d, want 3 (never re-uploaded)", got)
	}
}

func TestPushMetaAlways(t *testing.T) {
	fs, server := newFakeStore()
	defer server.Close()

	c := storeClient(server.URL)
	snap := snapshot.New()
	ctx := context.Background()

	if _, err := c.Push(ctx, snap, false, uuid.New()); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Push(ctx, snap, false, uuid.New()); err != nil {
		t.Fatal(err)
	}

	// Nothing else to send, but metadata still lands on both pushes.
	if got := fs.calls(TableMeta); got != 2 {
		t.Errorf("meta calls = %d, want 2", got)
	}
	fs.mu.Lock()
	prefer := fs.requests[TableMeta][0].prefer
	fs.mu.Unlock()
	if prefer != "resolution=merge-duplicates" {
		t.Errorf("meta prefer = %q, want merge-duplicates", prefer)
	}
}

func TestPushFailureKeepsHashesStale(t *testing.T) {
	fs, server := newFakeStore()
	defer server.Close()
	fs.fail[TableItems] = true

	c := storeClient(server.URL)
	snap := testSnapshot(3)
	ctx := context.Background()

	if _, err := c.Push(ctx, snap, false, uuid.New()); err == nil {
		t.Fatal("expected push failure")
	}
	if len(snap.Sync.ItemHashes) != 0 {
		t.Errorf("failed batch advanced hashes: %v", snap.Sync.ItemHashes)
	}

	// Retry after the store recovers re-sends everything.
	fs.fail[TableItems] = false
	res, err := c.Push(ctx, snap, false, uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if res.ItemsUploaded != 3 {
		t.Errorf("retry uploaded %d items, want 3", res.ItemsUploaded)
	}
}

func TestDeleteChangesBefore(t *testing.T) {
	fs, server := newFakeStore()
	defer server.Close()

	c := storeClient(server.URL)
	cutoff := mustParse(t, "2026-08-28T06:00:00Z")
	if err := c.DeleteChangesBefore(context.Background(), cutoff); err != nil {
		t.Fatal(err)
	}

	fs.mu.Lock()
	reqs := fs.requests[TableChanges]
	fs.mu.Unlock()
	if len(reqs) != 1 || reqs[0].method != http.MethodDelete {
		t.Fatalf("requests = %+v", reqs)
	}
	if !strings.Contains(reqs[0].query, "lt.2026-08-28T06%3A00%3A00Z") {
		t.Errorf("query = %q, want lt filter on recorded_at", reqs[0].query)
	}
}

func TestResetTables(t *testing.T) {
	fs, server := newFakeStore()
	defer server.Close()

	c := storeClient(server.URL)
	if err := c.ResetTables(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, table := range []string{TableItems, TableOrders, TableChanges, TableMeta} {
		if got := fs.calls(table); got != 1 {
			t.Errorf("%s calls = %d, want 1", table, got)
		}
	}
}

func TestConfigured(t *testing.T) {
	if New("", "").Configured() {
		t.Error("empty client reports configured")
	}
	if !New("https://example.test", "key").Configured() {
		t.Error("complete client reports unconfigured")
	}
}

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatal(err)
	}
	return parsed
}
