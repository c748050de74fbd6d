package model

import "strconv"

// ItemKind selects which market endpoint variant serves an item.
type ItemKind string

const (
	KindItem  ItemKind = "item"  // standard inventory item
	KindCargo ItemKind = "cargo" // cargo, traded through the cargo endpoint variant
)

// Order sides.
const (
	SideSell = "sell"
	SideBuy  = "buy"
)

// CatalogItem is one tradable entity known to the market. The catalog
// listing only returns items with at least one resting order, so an item
// vanishing from a later fetch means all of its orders cleared.
type CatalogItem struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Kind     ItemKind `json:"kind"`
	Tier     int      `json:"tier"`
	Rarity   string   `json:"rarity"`
	Category string   `json:"category,omitempty"`

	SellOrderCount  int `json:"sell_order_count"`
	BuyOrderCount   int `json:"buy_order_count"`
	TotalOrderCount int `json:"total_order_count"` // always sell + buy
}

// Counts returns the item's order counters as one value.
func (i CatalogItem) Counts() OrderCounts {
	return OrderCounts{
		Sell:  i.SellOrderCount,
		Buy:   i.BuyOrderCount,
		Total: i.TotalOrderCount,
	}
}

// OrderCounts groups the three per-item order counters. Total is derivable
// from Sell+Buy but carried explicitly because downstream consumers read
// all three independently.
type OrderCounts struct {
	Sell  int `json:"sell"`
	Buy   int `json:"buy"`
	Total int `json:"total"`
}

// Sub returns the signed per-counter delta from prev to c.
func (c OrderCounts) Sub(prev OrderCounts) OrderCounts {
	return OrderCounts{
		Sell:  c.Sell - prev.Sell,
		Buy:   c.Buy - prev.Buy,
		Total: c.Total - prev.Total,
	}
}

// OrderRecord is one resting buy or sell order. The market API does not
// expose a stable per-order identifier; CompositeKey stands in for one.
type OrderRecord struct {
	Side      string `json:"side"`
	ClaimName string `json:"claim_name"`
	ClaimID   ID     `json:"claim_id,omitempty"`
	OwnerName string `json:"owner_name"`
	OwnerID   ID     `json:"owner_id,omitempty"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"` // in the market's coin unit
	Region    int    `json:"region"`
}

// CompositeKey derives the diffing identity for an order: the owning claim
// (id when present, name otherwise) plus price plus quantity. Two distinct
// real orders sharing all three collapse into one — an accepted upstream
// limitation, not something to repair locally by inventing ids the API
// does not provide.
func (o OrderRecord) CompositeKey() string {
	owner := string(o.ClaimID)
	if owner == "" {
		owner = o.ClaimName
	}
	return owner + "|" + strconv.FormatInt(o.Price, 10) + "|" + strconv.Itoa(o.Quantity)
}

// OrderStats summarizes one item's order book. Price fields are nil when
// the corresponding side is empty.
type OrderStats struct {
	LowestSell   *int64 `json:"lowest_sell,omitempty"`
	HighestBuy   *int64 `json:"highest_buy,omitempty"`
	TotalSellQty int    `json:"total_sell_qty"`
	TotalBuyQty  int    `json:"total_buy_qty"`
}

// ItemOrderDetail is the full order book for one catalog item at a point
// in time. Owned by the snapshot store, keyed by ItemID, replaced
// wholesale on every refetch.
type ItemOrderDetail struct {
	ItemID     int64         `json:"item_id"`
	Kind       ItemKind      `json:"kind"`
	SellOrders []OrderRecord `json:"sell_orders"`
	BuyOrders  []OrderRecord `json:"buy_orders"`
	Stats      OrderStats    `json:"stats"`
}

// ComputeStats rebuilds Stats from the held orders.
func (d *ItemOrderDetail) ComputeStats() {
	var stats OrderStats
	for _, o := range d.SellOrders {
		stats.TotalSellQty += o.Quantity
		if stats.LowestSell == nil || o.Price < *stats.LowestSell {
			p := o.Price
			stats.LowestSell = &p
		}
	}
	for _, o := range d.BuyOrders {
		stats.TotalBuyQty += o.Quantity
		if stats.HighestBuy == nil || o.Price > *stats.HighestBuy {
			p := o.Price
			stats.HighestBuy = &p
		}
	}
	d.Stats = stats
}
