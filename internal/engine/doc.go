// Package engine orchestrates one sync cycle: fetch catalog, detect
// changes, fetch full detail for the changed and missing items within the
// configured budget, compute order diffs, update the snapshot, and push
// the delta to the backing store.
//
// Everything inside a cycle is sequential by design: the market API
// penalizes bursts, so the engine trades latency for staying under the
// rate limits. A cycle either completes or aborts before the snapshot is
// touched; there is no partially applied state.
package engine
