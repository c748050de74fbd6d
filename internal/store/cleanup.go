package store

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DeleteChangesBefore removes remote change-log entries recorded before the
// cutoff. Retention cleanup only; the local bounded log is independent.
func (c *Client) DeleteChangesBefore(ctx context.Context, cutoff time.Time) error {
	query := url.Values{}
	query.Set("recorded_at", "lt."+cutoff.UTC().Format(time.RFC3339))

	if err := c.do(ctx, http.MethodDelete, TableChanges, query, nil, false); err != nil {
		return fmt.Errorf("delete old changes: %w", err)
	}

	c.logger.Info("remote change log pruned", "cutoff", cutoff.UTC().Format(time.RFC3339))
	return nil
}

// ResetTables clears every synced table. Used by the reset command; the
// next push re-populates from scratch.
func (c *Client) ResetTables(ctx context.Context) error {
	// PostgREST refuses an unfiltered delete, hence the always-true filters.
	tables := []struct {
		name   string
		filter string
	}{
		{TableItems, "id"},
		{TableOrders, "item_id"},
		{TableChanges, "seq"},
		{TableMeta, "key"},
	}

	for _, tbl := range tables {
		query := url.Values{}
		query.Set(tbl.filter, "not.is.null")
		if err := c.do(ctx, http.MethodDelete, tbl.name, query, nil, false); err != nil {
			return fmt.Errorf("reset %s: %w", tbl.name, err)
		}
	}

	c.logger.Info("remote tables cleared")
	return nil
}
