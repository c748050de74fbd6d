package api

import (
	"fmt"
	"strconv"

	"bazaarsync/internal/model"
)

// itemID parses a normalized identifier into the integer item id the rest
// of the pipeline keys on.
func itemID(id model.ID) (int64, error) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric item id %q", id)
	}
	return n, nil
}

func kindFromType(itemType string) model.ItemKind {
	if itemType == "cargo" {
		return model.KindCargo
	}
	return model.KindItem
}

// ToModel converts a catalog row. The total counter is derived here so the
// count invariant holds no matter what the API served.
func (a APICatalogItem) ToModel() (model.CatalogItem, error) {
	id, err := itemID(a.ID)
	if err != nil {
		return model.CatalogItem{}, err
	}

	var sell, buy int
	if a.SellOrders != nil {
		sell = *a.SellOrders
	}
	if a.BuyOrders != nil {
		buy = *a.BuyOrders
	}

	return model.CatalogItem{
		ID:              id,
		Name:            a.Name,
		Kind:            kindFromType(a.ItemType),
		Tier:            a.Tier,
		Rarity:          a.Rarity,
		Category:        a.Category,
		SellOrderCount:  sell,
		BuyOrderCount:   buy,
		TotalOrderCount: sell + buy,
	}, nil
}

func (a APIOrder) toModel(side string) model.OrderRecord {
	return model.OrderRecord{
		Side:      side,
		ClaimName: a.ClaimName,
		ClaimID:   a.ClaimID,
		OwnerName: a.OwnerName,
		OwnerID:   a.OwnerID,
		Quantity:  a.Quantity,
		Price:     a.Price,
		Region:    a.Region,
	}
}

// toDetail converts a detail response, keeping only orders in the
// monitored region.
func (c *Client) toDetail(id int64, kind model.ItemKind, resp DetailResponse) *model.ItemOrderDetail {
	detail := &model.ItemOrderDetail{
		ItemID:     id,
		Kind:       kind,
		SellOrders: make([]model.OrderRecord, 0, len(resp.SellOrders)),
		BuyOrders:  make([]model.OrderRecord, 0, len(resp.BuyOrders)),
	}

	for _, o := range resp.SellOrders {
		if o.Region != c.region {
			continue
		}
		detail.SellOrders = append(detail.SellOrders, o.toModel(model.SideSell))
	}
	for _, o := range resp.BuyOrders {
		if o.Region != c.region {
			continue
		}
		detail.BuyOrders = append(detail.BuyOrders, o.toModel(model.SideBuy))
	}

	detail.ComputeStats()
	return detail
}
