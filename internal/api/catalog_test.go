package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"bazaarsync/internal/model"
)

func TestFetchCatalog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("hasOrders") != "true" {
			t.Errorf("missing hasOrders=true, got query %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{"items":[
			{"id":1004,"name":"Iron Ore","itemType":"item","tier":2,"rarity":"common","sellOrders":3,"buyOrders":1},
			{"id":"2077","name":"Stone Cargo","itemType":"cargo","tier":1,"rarity":"common","sellOrders":2,"buyOrders":0},
			{"id":999,"name":"No Counts","itemType":"item","tier":1,"rarity":"common"}
		]}`))
	}))
	defer server.Close()

	c := testClient(server.URL)
	items, err := c.FetchCatalog(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	// The row without explicit counts is excluded.
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}

	iron := items[0]
	if iron.ID != 1004 || iron.Kind != model.KindItem {
		t.Errorf("item 0 = %+v", iron)
	}
	if iron.TotalOrderCount != iron.SellOrderCount+iron.BuyOrderCount {
		t.Errorf("count invariant broken: %+v", iron)
	}

	// String-form id normalizes to the same integer key.
	cargo := items[1]
	if cargo.ID != 2077 || cargo.Kind != model.KindCargo {
		t.Errorf("item 1 = %+v", cargo)
	}
	if cargo.TotalOrderCount != 2 {
		t.Errorf("cargo total = %d, want 2", cargo.TotalOrderCount)
	}
}

func TestFetchCatalogPartialCounts(t *testing.T) {
	// One explicit counter is enough; the other defaults to zero.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"id":5,"name":"Plank","itemType":"item","tier":1,"rarity":"common","sellOrders":4}]}`))
	}))
	defer server.Close()

	c := testClient(server.URL)
	items, err := c.FetchCatalog(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].SellOrderCount != 4 || items[0].BuyOrderCount != 0 || items[0].TotalOrderCount != 4 {
		t.Errorf("counts = %+v", items[0].Counts())
	}
}

func TestFetchCatalogFailurePropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := testClient(server.URL, WithRetries(0, 0))
	if _, err := c.FetchCatalog(context.Background()); err == nil {
		t.Fatal("expected catalog failure to propagate")
	}
}
