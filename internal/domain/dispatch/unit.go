package dispatch

import (
	"fmt"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/cart"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/catalog"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/shared"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnitKind tells whether a unit is a whole channel group or a single item
type UnitKind string

const (
	UnitKindGroup UnitKind = "group"
	UnitKindItem  UnitKind = "item"
)

// State is the lifecycle of a unit: Idle -> Sending -> Settled
type State string

const (
	StateIdle    State = "idle"
	StateSending State = "sending"
	StateSettled State = "settled"
)

// Outcome is what this system knows about a send. The messaging app never
// reports delivery, so there is no "delivered" outcome.
type Outcome string

const (
	// OutcomeAttempted means the link was handed to the client
	OutcomeAttempted Outcome = "ATTEMPTED"
	// OutcomeValidationFailed means the unit was rejected before sending
	OutcomeValidationFailed Outcome = "VALIDATION_FAILED"
	// OutcomeBusy means the same channel already has a send in flight
	OutcomeBusy Outcome = "BUSY"
)

// Error codes of pre-flight validation
const (
	CodeMissingChannel = "MISSING_CHANNEL"
	CodeInvalidChannel = "INVALID_CHANNEL"
)

// Unit is one send: a channel group or one line item sent on its own.
// It is a snapshot; later cart changes do not affect it.
type Unit struct {
	Kind      UnitKind
	ChannelID string
	Seller    catalog.Seller
	Items     []cart.LineItem
	ProductID uuid.UUID
}

// GroupUnit builds a unit for a whole channel group
func GroupUnit(g cart.ChannelGroup) Unit {
	items := make([]cart.LineItem, len(g.Items))
	copy(items, g.Items)
	return Unit{Kind: UnitKindGroup, ChannelID: g.ChannelID, Seller: g.Seller, Items: items}
}

// ItemUnit builds a unit for a single line item
func ItemUnit(item cart.LineItem) Unit {
	u := Unit{
		Kind:      UnitKindItem,
		ChannelID: item.Product.ChannelPhone().Digits(),
		Items:     []cart.LineItem{item},
		ProductID: item.Product.ID,
	}
	if item.Product.Seller != nil {
		u.Seller = *item.Product.Seller
	}
	return u
}

// UnroutableUnit builds a unit for an item whose seller has no number, so it
// can be reported like any other rejected unit
func UnroutableUnit(item cart.LineItem) Unit {
	u := ItemUnit(item)
	u.ChannelID = ""
	return u
}

// Key identifies the unit in status reports
func (u Unit) Key() string {
	if u.Kind == UnitKindItem {
		return "item:" + u.ProductID.String()
	}
	return "channel:" + u.ChannelID
}

// SellerName returns the seller display name or "unknown seller"
func (u Unit) SellerName() string {
	if name := u.Seller.DisplayName(); name != "" {
		return name
	}
	return "unknown seller"
}

// Total returns the unit total
func (u Unit) Total() decimal.Decimal {
	return cart.TotalPrice(u.Items)
}

// Validate checks the channel id is present and long enough
func (u Unit) Validate(minDigits int) error {
	phone := valueobject.NewPhone(u.ChannelID)
	if phone.IsEmpty() {
		return shared.NewDomainError(CodeMissingChannel,
			fmt.Sprintf("Seller %s has no WhatsApp number configured", u.SellerName()))
	}
	if !phone.IsDialable(minDigits) {
		return shared.NewDomainError(CodeInvalidChannel,
			fmt.Sprintf("WhatsApp number of seller %s is invalid: %s", u.SellerName(), phone.Digits()))
	}
	return nil
}

// Result reports the outcome of one unit
type Result struct {
	UnitKey    string   `json:"unit_key"`
	Kind       UnitKind `json:"kind"`
	ChannelID  string   `json:"channel_id,omitempty"`
	SellerName string   `json:"seller_name"`
	Outcome    Outcome  `json:"outcome"`
	Link       string   `json:"link,omitempty"`
	Reason     string   `json:"reason,omitempty"`
}

// IsAttempted reports whether the link was handed out
func (r Result) IsAttempted() bool {
	return r.Outcome == OutcomeAttempted
}
