package api

import "bazaarsync/internal/model"

// CatalogResponse from GET /market/catalog
type CatalogResponse struct {
	Items []APICatalogItem `json:"items"`
}

// APICatalogItem represents one catalog row as served by the market API.
// Order counts are pointers: rows without explicit counts are excluded
// from the catalog rather than defaulted to zero.
type APICatalogItem struct {
	ID       model.ID `json:"id"`
	Name     string   `json:"name"`
	ItemType string   `json:"itemType"` // "item" or "cargo"
	Tier     int      `json:"tier"`
	Rarity   string   `json:"rarity"`
	Category string   `json:"category"`

	SellOrders *int `json:"sellOrders"`
	BuyOrders  *int `json:"buyOrders"`
}

// SummaryRequest for POST /market/summary. Item and cargo ids travel in
// separate fields.
type SummaryRequest struct {
	ItemIDs  []int64 `json:"itemIds"`
	CargoIDs []int64 `json:"cargoIds"`
}

// SummaryResponse from POST /market/summary
type SummaryResponse struct {
	Summaries []APISummary `json:"summaries"`
}

// APISummary is the bulk-summary row for one item.
type APISummary struct {
	ID         model.ID `json:"id"`
	SellOrders int      `json:"sellOrders"`
	BuyOrders  int      `json:"buyOrders"`
	LowestSell *int64   `json:"lowestSell"`
	HighestBuy *int64   `json:"highestBuy"`
	SellQty    int      `json:"sellQty"`
	BuyQty     int      `json:"buyQty"`
}

// Summary holds the bulk-summary counters used for change detection. Bulk
// counts are authoritative for detecting change only; fetched detail is
// authoritative for change content.
type Summary struct {
	SellCount  int
	BuyCount   int
	LowestSell *int64
	HighestBuy *int64
	SellQty    int
	BuyQty     int
}

// Counts returns the summary counters in model form.
func (s Summary) Counts() model.OrderCounts {
	return model.OrderCounts{
		Sell:  s.SellCount,
		Buy:   s.BuyCount,
		Total: s.SellCount + s.BuyCount,
	}
}

// DetailResponse from GET /market/item/{id} or /market/cargo/{id}
type DetailResponse struct {
	SellOrders []APIOrder `json:"sellOrders"`
	BuyOrders  []APIOrder `json:"buyOrders"`
}

// APIOrder is one resting order as served by the detail endpoint.
type APIOrder struct {
	ClaimName string   `json:"claimName"`
	ClaimID   model.ID `json:"claimEntityId"`
	OwnerName string   `json:"ownerName"`
	OwnerID   model.ID `json:"ownerEntityId"`
	Quantity  int      `json:"quantity"`
	Price     int64    `json:"priceThreshold"`
	Region    int      `json:"regionId"`
}

// ItemRef identifies one catalog item for a bulk-summary request.
type ItemRef struct {
	ID   int64
	Kind model.ItemKind
}
