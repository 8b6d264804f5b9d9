package catalog

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/shared"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable item listed by a seller.
// Cart line items hold a copy of it taken at add time.
type Product struct {
	shared.BaseEntity
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Price       decimal.Decimal      `json:"price"`
	Currency    valueobject.Currency `json:"currency"`
	ImageURL    string               `json:"image_url,omitempty"`
	Featured    bool                 `json:"featured"`
	Active      bool                 `json:"active"`
	CategoryID  *uuid.UUID           `json:"category_id,omitempty"`
	SellerID    uuid.UUID            `json:"seller_id"`
	Category    *Category            `json:"category,omitempty"`
	Seller      *Seller              `json:"seller,omitempty"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// ProductDetails carries the seller-editable fields of a product
type ProductDetails struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Currency    valueobject.Currency
	ImageURL    string
	CategoryID  *uuid.UUID
	Featured    bool
}

// NewProduct creates an active product owned by sellerID
func NewProduct(sellerID uuid.UUID, details ProductDetails) (*Product, error) {
	if sellerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SELLER", "Product must belong to a seller")
	}
	p := &Product{
		BaseEntity: shared.NewBaseEntity(),
		SellerID:   sellerID,
		Active:     true,
	}
	if err := p.apply(details); err != nil {
		return nil, err
	}
	p.UpdatedAt = p.CreatedAt
	return p, nil
}

// Update replaces the editable fields
func (p *Product) Update(details ProductDetails) error {
	if err := p.apply(details); err != nil {
		return err
	}
	p.UpdatedAt = time.Now()
	return nil
}

// SetActive publishes or hides the product from the storefront
func (p *Product) SetActive(active bool) {
	p.Active = active
	p.UpdatedAt = time.Now()
}

// SetImage replaces the product picture
func (p *Product) SetImage(url string) {
	p.ImageURL = strings.TrimSpace(url)
	p.UpdatedAt = time.Now()
}

// IsOwnedBy reports whether the product belongs to the given seller
func (p *Product) IsOwnedBy(sellerID uuid.UUID) bool {
	return p.SellerID == sellerID
}

// ChannelPhone returns the seller's messaging number, empty when unknown
func (p *Product) ChannelPhone() valueobject.Phone {
	if p.Seller == nil {
		return valueobject.NewPhone("")
	}
	return p.Seller.Phone()
}

func (p *Product) apply(d ProductDetails) error {
	name := strings.TrimSpace(d.Name)
	if err := validateProductName(name); err != nil {
		return err
	}
	if d.Price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	currency := d.Currency
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	if !currency.IsValid() {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency "+string(currency)+" is not supported")
	}

	p.Name = name
	p.Description = strings.TrimSpace(d.Description)
	p.Price = d.Price
	p.Currency = currency
	p.ImageURL = strings.TrimSpace(d.ImageURL)
	p.CategoryID = d.CategoryID
	p.Featured = d.Featured
	return nil
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
