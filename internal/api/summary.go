package api

import (
	"context"

	"bazaarsync/internal/model"
)

// FetchBulkSummaries fetches order-count summaries for the given items.
// Requests are chunked to the configured batch cap and issued sequentially
// with a pacer delay between chunks. A chunk that fails is logged and
// skipped; the remaining chunks still contribute, so the result may be a
// partial map.
func (c *Client) FetchBulkSummaries(ctx context.Context, refs []ItemRef) (map[int64]Summary, error) {
	out := make(map[int64]Summary, len(refs))

	for start := 0; start < len(refs); start += c.summaryBatch {
		end := start + c.summaryBatch
		if end > len(refs) {
			end = len(refs)
		}
		chunk := refs[start:end]

		if err := c.pacer.Wait(ctx); err != nil {
			return out, err
		}

		req := SummaryRequest{
			ItemIDs:  make([]int64, 0, len(chunk)),
			CargoIDs: make([]int64, 0),
		}
		for _, ref := range chunk {
			if ref.Kind == model.KindCargo {
				req.CargoIDs = append(req.CargoIDs, ref.ID)
			} else {
				req.ItemIDs = append(req.ItemIDs, ref.ID)
			}
		}

		var resp SummaryResponse
		if err := c.postJSON(ctx, "/market/summary", req, &resp); err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			c.logger.Warn("bulk summary chunk failed",
				"offset", start,
				"size", len(chunk),
				"err", err,
			)
			continue
		}

		for _, row := range resp.Summaries {
			id, err := itemID(row.ID)
			if err != nil {
				c.logger.Warn("skipping summary row", "err", err)
				continue
			}
			out[id] = Summary{
				SellCount:  row.SellOrders,
				BuyCount:   row.BuyOrders,
				LowestSell: row.LowestSell,
				HighestBuy: row.HighestBuy,
				SellQty:    row.SellQty,
				BuyQty:     row.BuyQty,
			}
		}
	}

	return out, nil
}
