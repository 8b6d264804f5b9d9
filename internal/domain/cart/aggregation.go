package cart

import (
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/catalog"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DisplayPlaces is the number of decimals shown for money amounts
const DisplayPlaces = 2

// SellerGroup bundles the line items listed by one seller
type SellerGroup struct {
	SellerID uuid.UUID
	Seller   *catalog.Seller
	Items    []LineItem
	Total    decimal.Decimal
}

// SellerName returns the seller display name, empty when unknown
func (g SellerGroup) SellerName() string {
	if g.Seller == nil {
		return ""
	}
	return g.Seller.DisplayName()
}

// ChannelGroup bundles the line items reachable through one messaging number
type ChannelGroup struct {
	ChannelID string
	Seller    catalog.Seller
	Items     []LineItem
	Total     decimal.Decimal
}

// ItemCount returns the units in the group
func (g ChannelGroup) ItemCount() int {
	return TotalItemCount(g.Items)
}

// ChannelGrouping is the result of GroupByChannel.
// Unroutable holds items whose seller has no messaging number; they never
// appear in Groups.
type ChannelGrouping struct {
	Groups     []ChannelGroup
	Unroutable []LineItem
}

// Find returns the group for a normalized channel id
func (g ChannelGrouping) Find(channelID string) (ChannelGroup, bool) {
	for _, grp := range g.Groups {
		if grp.ChannelID == channelID {
			return grp, true
		}
	}
	return ChannelGroup{}, false
}

// TotalPrice sums price * quantity exactly; round only when displaying
func TotalPrice(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// TotalItemCount sums quantities
func TotalItemCount(items []LineItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// FormatAmount renders an amount with two decimals
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(DisplayPlaces)
}

// NormalizeChannel reduces a contact number to its digits
func NormalizeChannel(raw string) string {
	return valueobject.DigitsOnly(raw)
}

// GroupBySeller groups items by seller id in order of first appearance
func GroupBySeller(items []LineItem) []SellerGroup {
	index := make(map[uuid.UUID]int)
	groups := make([]SellerGroup, 0)
	for _, it := range items {
		key := it.Product.SellerID
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, SellerGroup{SellerID: key, Seller: it.Product.Seller, Total: decimal.Zero})
		}
		groups[i].Items = append(groups[i].Items, it)
		groups[i].Total = groups[i].Total.Add(it.Subtotal())
	}
	return groups
}

// GroupByChannel groups items by normalized messaging number in order of
// first appearance. Items without a number are returned as Unroutable.
func GroupByChannel(items []LineItem) ChannelGrouping {
	index := make(map[string]int)
	result := ChannelGrouping{Groups: make([]ChannelGroup, 0)}
	for _, it := range items {
		phone := it.Product.ChannelPhone()
		if phone.IsEmpty() {
			result.Unroutable = append(result.Unroutable, it)
			continue
		}
		key := phone.Digits()
		i, ok := index[key]
		if !ok {
			i = len(result.Groups)
			index[key] = i
			result.Groups = append(result.Groups, ChannelGroup{ChannelID: key, Seller: *it.Product.Seller, Total: decimal.Zero})
		}
		result.Groups[i].Items = append(result.Groups[i].Items, it)
		result.Groups[i].Total = result.Groups[i].Total.Add(it.Subtotal())
	}
	return result
}
