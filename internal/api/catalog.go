package api

import (
	"context"
	"fmt"
	"net/url"

	"bazaarsync/internal/model"
)

// FetchCatalog fetches the full catalog of items that currently have at
// least one resting order. Rows without an explicit order count and rows
// with unparseable ids are dropped. A failure here is fatal to the calling
// cycle: nothing downstream is meaningful without the catalog.
func (c *Client) FetchCatalog(ctx context.Context) ([]model.CatalogItem, error) {
	query := url.Values{}
	query.Set("hasOrders", "true")

	var resp CatalogResponse
	if err := c.get(ctx, "/market/catalog", query, &resp); err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	items := make([]model.CatalogItem, 0, len(resp.Items))
	var skipped int
	for _, row := range resp.Items {
		if row.SellOrders == nil && row.BuyOrders == nil {
			skipped++
			continue
		}
		item, err := row.ToModel()
		if err != nil {
			c.logger.Warn("skipping catalog row", "name", row.Name, "err", err)
			skipped++
			continue
		}
		items = append(items, item)
	}

	if skipped > 0 {
		c.logger.Debug("catalog rows skipped", "skipped", skipped, "kept", len(items))
	}

	return items, nil
}
