// Package dispatch composes seller-facing order messages and the deep links
// that hand them to the messaging app, and describes the outcome of a send.
package dispatch

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/cart"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// DefaultStoreName appears in the message header
const DefaultStoreName = "El Patio de Mi Casa"

// Template holds the fixed wording of an order message
type Template struct {
	StoreName      string
	HeaderFormat   string
	ItemsHeading   string
	SingleHeading  string
	CustomerLabel  string
	EmailLabel     string
	TotalFormat    string
	SingleTotal    string
	SellerLabel    string
	SellerFallback string
	LocationLabel  string
	CurrencySymbol string
	ItemLineFormat string
}

// DefaultTemplate returns the wording used by the storefront
func DefaultTemplate(storeName string) Template {
	if strings.TrimSpace(storeName) == "" {
		storeName = DefaultStoreName
	}
	return Template{
		StoreName:      storeName,
		HeaderFormat:   "🛒 *Nuevo Pedido - %s*",
		ItemsHeading:   "📋 *Productos solicitados:*",
		SingleHeading:  "📋 *Producto solicitado:*",
		CustomerLabel:  "👤 *Cliente:*",
		EmailLabel:     "📧 *Email:*",
		TotalFormat:    "💰 *Total del pedido: %s*",
		SingleTotal:    "💰 *Total: %s*",
		SellerLabel:    "🏪 *Vendedor:*",
		SellerFallback: "Vendedor",
		LocationLabel:  "📍 *Ubicación:*",
		CurrencySymbol: "$",
		ItemLineFormat: "• %s x%d - %s",
	}
}

// Customer identifies the buyer in drawer checkouts
type Customer struct {
	Name  string
	Email string
}

// MessageInput is everything a message is built from
type MessageInput struct {
	Seller   catalog.Seller
	Items    []cart.LineItem
	Customer *Customer
	Single   bool
}

// Composer renders order messages. Output depends only on its input.
type Composer struct {
	tmpl Template
}

// NewComposer creates a composer for the given template
func NewComposer(tmpl Template) *Composer {
	return &Composer{tmpl: tmpl}
}

// Compose renders the message; lines are joined with "\n" and there is no
// trailing newline
func (c *Composer) Compose(in MessageInput) string {
	t := c.tmpl
	lines := []string{fmt.Sprintf(t.HeaderFormat, t.StoreName), ""}

	if in.Customer != nil {
		name := strings.TrimSpace(in.Customer.Name)
		if name == "" {
			name = in.Customer.Email
		}
		lines = append(lines, t.CustomerLabel+" "+name)
		if in.Customer.Email != "" {
			lines = append(lines, t.EmailLabel+" "+in.Customer.Email)
		}
		lines = append(lines, "")
	}

	heading := t.ItemsHeading
	totalFormat := t.TotalFormat
	if in.Single {
		heading = t.SingleHeading
		totalFormat = t.SingleTotal
	}
	lines = append(lines, heading)
	for _, it := range in.Items {
		lines = append(lines, fmt.Sprintf(t.ItemLineFormat, it.Product.Name, it.Quantity, c.amount(it.Subtotal())))
	}
	lines = append(lines, "", fmt.Sprintf(totalFormat, c.amount(cart.TotalPrice(in.Items))), "")

	sellerName := strings.TrimSpace(in.Seller.FirstName)
	if sellerName == "" {
		sellerName = t.SellerFallback
	}
	if last := strings.TrimSpace(in.Seller.LastName); last != "" {
		sellerName += " " + last
	}
	lines = append(lines, t.SellerLabel+" "+sellerName)

	if loc := in.Seller.Location(); loc != "" {
		lines = append(lines, t.LocationLabel+" "+loc)
	}
	return strings.Join(lines, "\n")
}

func (c *Composer) amount(d decimal.Decimal) string {
	return c.tmpl.CurrencySymbol + cart.FormatAmount(d)
}

// componentEscaper turns query escaping into the browser's component
// encoding: %20 for spaces, and the marks !'()* left as they are so *bold*
// markers stay readable in the link.
var componentEscaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// BuildLink returns <base>/<channel>?text=<percent-encoded message>
func BuildLink(baseURL, channelID, message string) string {
	text := componentEscaper.Replace(url.QueryEscape(message))
	return strings.TrimRight(baseURL, "/") + "/" + channelID + "?text=" + text
}
