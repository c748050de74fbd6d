// Package api implements the client for the game's public market API.
//
// Three calls matter: the catalog listing (every item with at least one
// resting order), the bulk summary endpoint (per-item order counts and best
// prices, batched many items per call), and the per-item detail endpoint
// (one item's full order book, with an endpoint variant per item kind).
//
// Rate-limit responses are retried with jittered exponential backoff; batch
// calls are paced through an injected ratelimit.Pacer. The client performs
// network I/O only and never mutates local state.
package api
