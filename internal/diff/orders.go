package diff

import "bazaarsync/internal/model"

// Orders computes which individual orders were added and removed between
// two order-book snapshots of the same item. Identity is the composite key
// (claim, price, quantity); an order whose key appears in both snapshots
// is invisible to the diff even if it is physically a different stack.
// With no previous detail everything in cur counts as added.
//
// Pure function, O(n) over the total order count via map lookups.
func Orders(prev, cur *model.ItemOrderDetail) model.OrderDiff {
	if cur == nil {
		return model.OrderDiff{}
	}
	if prev == nil {
		return model.OrderDiff{
			Added: model.OrderSet{
				Sell: append([]model.OrderRecord(nil), cur.SellOrders...),
				Buy:  append([]model.OrderRecord(nil), cur.BuyOrders...),
			},
		}
	}

	var d model.OrderDiff
	d.Added.Sell, d.Removed.Sell = diffSide(prev.SellOrders, cur.SellOrders)
	d.Added.Buy, d.Removed.Buy = diffSide(prev.BuyOrders, cur.BuyOrders)
	return d
}

func diffSide(prev, cur []model.OrderRecord) (added, removed []model.OrderRecord) {
	prevKeys := make(map[string]bool, len(prev))
	for _, o := range prev {
		prevKeys[o.CompositeKey()] = true
	}
	curKeys := make(map[string]bool, len(cur))
	for _, o := range cur {
		curKeys[o.CompositeKey()] = true
	}

	for _, o := range cur {
		if !prevKeys[o.CompositeKey()] {
			added = append(added, o)
		}
	}
	for _, o := range prev {
		if !curKeys[o.CompositeKey()] {
			removed = append(removed, o)
		}
	}
	return added, removed
}
