package store

import (
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"bazaarsync/internal/model"
)

// ItemHash computes the content hash over a catalog item's mutable fields.
// Equal hash means the stored row is already current and the upload is
// skipped.
func ItemHash(item model.CatalogItem) uint64 {
	d := xxhash.New()
	writeField(d, item.Name)
	writeField(d, string(item.Kind))
	writeField(d, strconv.Itoa(item.Tier))
	writeField(d, item.Rarity)
	writeField(d, item.Category)
	writeField(d, strconv.Itoa(item.SellOrderCount))
	writeField(d, strconv.Itoa(item.BuyOrderCount))
	writeField(d, strconv.Itoa(item.TotalOrderCount))
	return d.Sum64()
}

// DetailHash computes the content hash over an item's order book. Order
// rows hash by sorted composite key so the hash is independent of the
// fetch order the API happened to return.
func DetailHash(detail model.ItemOrderDetail) uint64 {
	d := xxhash.New()
	writeField(d, strconv.FormatInt(detail.ItemID, 10))
	writeField(d, string(detail.Kind))
	writeSide(d, detail.SellOrders)
	writeSide(d, detail.BuyOrders)
	return d.Sum64()
}

func writeSide(d *xxhash.Digest, orders []model.OrderRecord) {
	keys := make([]string, len(orders))
	for i, o := range orders {
		keys[i] = o.CompositeKey()
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeField(d, k)
	}
	writeField(d, "--")
}

func writeField(d *xxhash.Digest, s string) {
	d.WriteString(s)
	d.WriteString("\x1f")
}
