// Package model defines the typed domain model shared by every component:
// catalog items, resting orders, per-item order detail, and the tagged
// change-record variants appended to the change log.
//
// The remote market API is loose about identifier types (the same id can
// arrive as a JSON number in one payload and a string in another), so all
// opaque identifiers flow through the normalized ID type with one canonical
// comparison rule.
package model
