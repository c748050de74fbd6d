package diff

import (
	"testing"

	"bazaarsync/internal/model"
)

func sellOrder(claim string, price int64, qty int) model.OrderRecord {
	return model.OrderRecord{Side: model.SideSell, ClaimName: claim, Price: price, Quantity: qty, Region: 1}
}

func detail(id int64, sell, buy []model.OrderRecord) *model.ItemOrderDetail {
	return &model.ItemOrderDetail{ItemID: id, Kind: model.KindItem, SellOrders: sell, BuyOrders: buy}
}

func TestOrdersAddedOnly(t *testing.T) {
	prev := detail(1, []model.OrderRecord{sellOrder("A", 5, 100)}, nil)
	cur := detail(1, []model.OrderRecord{sellOrder("A", 5, 100), sellOrder("B", 6, 50)}, nil)

	d := Orders(prev, cur)
	if len(d.Added.Sell) != 1 || d.Added.Sell[0].ClaimName != "B" {
		t.Errorf("added = %+v, want just claim B", d.Added.Sell)
	}
	if len(d.Removed.Sell) != 0 {
		t.Errorf("removed = %+v, want none", d.Removed.Sell)
	}
}

func TestOrdersRemoved(t *testing.T) {
	prev := detail(1, []model.OrderRecord{sellOrder("A", 5, 100), sellOrder("B", 6, 50)}, nil)
	cur := detail(1, []model.OrderRecord{sellOrder("B", 6, 50)}, nil)

	d := Orders(prev, cur)
	if len(d.Removed.Sell) != 1 || d.Removed.Sell[0].ClaimName != "A" {
		t.Errorf("removed = %+v, want just claim A", d.Removed.Sell)
	}
	if len(d.Added.Sell) != 0 {
		t.Errorf("added = %+v, want none", d.Added.Sell)
	}
}

func TestOrdersNilPreviousAllAdded(t *testing.T) {
	cur := detail(1,
		[]model.OrderRecord{sellOrder("A", 5, 100)},
		[]model.OrderRecord{{Side: model.SideBuy, ClaimName: "C", Price: 2, Quantity: 10}},
	)

	d := Orders(nil, cur)
	if len(d.Added.Sell) != 1 || len(d.Added.Buy) != 1 {
		t.Errorf("added = %+v", d.Added)
	}
	if len(d.Removed.Sell) != 0 || len(d.Removed.Buy) != 0 {
		t.Errorf("removed = %+v, want none", d.Removed)
	}
}

func TestOrdersSidesIndependent(t *testing.T) {
	// The same composite key on opposite sides must not cancel out.
	prev := detail(1, []model.OrderRecord{sellOrder("A", 5, 100)}, nil)
	cur := detail(1, nil, []model.OrderRecord{{Side: model.SideBuy, ClaimName: "A", Price: 5, Quantity: 100}})

	d := Orders(prev, cur)
	if len(d.Removed.Sell) != 1 {
		t.Errorf("expected the sell order removed, got %+v", d.Removed)
	}
	if len(d.Added.Buy) != 1 {
		t.Errorf("expected the buy order added, got %+v", d.Added)
	}
}

func TestOrdersQuantityChangeIsAddAndRemove(t *testing.T) {
	// Quantity is part of the key, so a restock shows up as remove+add.
	prev := detail(1, []model.OrderRecord{sellOrder("A", 5, 100)}, nil)
	cur := detail(1, []model.OrderRecord{sellOrder("A", 5, 80)}, nil)

	d := Orders(prev, cur)
	if len(d.Added.Sell) != 1 || d.Added.Sell[0].Quantity != 80 {
		t.Errorf("added = %+v", d.Added.Sell)
	}
	if len(d.Removed.Sell) != 1 || d.Removed.Sell[0].Quantity != 100 {
		t.Errorf("removed = %+v", d.Removed.Sell)
	}
}

func TestOrdersCompleteness(t *testing.T) {
	prev := detail(1, []model.OrderRecord{
		sellOrder("A", 5, 100), sellOrder("B", 6, 50), sellOrder("C", 7, 25),
	}, nil)
	cur := detail(1, []model.OrderRecord{
		sellOrder("B", 6, 50), sellOrder("D", 8, 10),
	}, nil)

	d := Orders(prev, cur)

	// added and removed are disjoint by key.
	removedKeys := make(map[string]bool)
	for _, o := range d.Removed.Sell {
		removedKeys[o.CompositeKey()] = true
	}
	for _, o := range d.Added.Sell {
		if removedKeys[o.CompositeKey()] {
			t.Errorf("key %q in both added and removed", o.CompositeKey())
		}
	}

	// Every current order not in added must exist in prev by key.
	addedKeys := make(map[string]bool)
	for _, o := range d.Added.Sell {
		addedKeys[o.CompositeKey()] = true
	}
	prevKeys := make(map[string]bool)
	for _, o := range prev.SellOrders {
		prevKeys[o.CompositeKey()] = true
	}
	for _, o := range cur.SellOrders {
		if !addedKeys[o.CompositeKey()] && !prevKeys[o.CompositeKey()] {
			t.Errorf("order %q neither added nor carried over", o.CompositeKey())
		}
	}
}

func TestOrdersIdentical(t *testing.T) {
	orders := []model.OrderRecord{sellOrder("A", 5, 100), sellOrder("B", 6, 50)}
	d := Orders(detail(1, orders, nil), detail(1, orders, nil))
	if !d.Empty() {
		t.Errorf("identical books produced diff %+v", d)
	}
}
