package api

import (
	"context"
	"strconv"

	"bazaarsync/internal/model"
)

// FetchItemDetail fetches the full order book for one item, choosing the
// endpoint variant by kind and filtering orders to the monitored region.
//
// 429s are retried with backoff inside doWithRetry. Any failure that
// survives the retries is a soft skip: the item simply is not updated this
// cycle and will be retried on the next one, so the error is logged and a
// nil detail returned. Only context cancellation propagates.
func (c *Client) FetchItemDetail(ctx context.Context, id int64, kind model.ItemKind) (*model.ItemOrderDetail, error) {
	path := "/market/item/" + strconv.FormatInt(id, 10)
	if kind == model.KindCargo {
		path = "/market/cargo/" + strconv.FormatInt(id, 10)
	}

	var resp DetailResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn("item detail fetch failed",
			"item_id", id,
			"kind", kind,
			"err", err,
		)
		return nil, nil
	}

	return c.toDetail(id, kind, resp), nil
}
