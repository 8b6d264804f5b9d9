package models

import (
	"time"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/catalog"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/shared"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryModel is the persistence model for Category.
type CategoryModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(100);not null"`
	Description string    `gorm:"type:text"`
	ImageURL    string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		ImageURL:    m.ImageURL,
	}
}

// ProductModel is the persistence model for Product.
type ProductModel struct {
	BaseModel
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Currency    string          `gorm:"type:varchar(3);not null;default:'USD'"`
	ImageURL    string          `gorm:"type:text"`
	Featured    bool            `gorm:"not null;default:false"`
	Active      bool            `gorm:"not null;default:true;index:idx_products_active_created,priority:1"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index"`
	SellerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Category    *CategoryModel  `gorm:"foreignKey:CategoryID"`
	Seller      *UserModel      `gorm:"foreignKey:SellerID"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product.
// Preloaded category and seller are carried over when present.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseEntity:  shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt},
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Currency:    valueobject.Currency(m.Currency),
		ImageURL:    m.ImageURL,
		Featured:    m.Featured,
		Active:      m.Active,
		CategoryID:  m.CategoryID,
		SellerID:    m.SellerID,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Category != nil {
		p.Category = m.Category.ToDomain()
	}
	if m.Seller != nil {
		p.Seller = m.Seller.ToSeller()
	}
	return p
}

// ProductModelFromDomain creates a persistence model from a domain Product.
// Associations are not copied; they are owned by their own tables.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Currency:    p.Currency.String(),
		ImageURL:    p.ImageURL,
		Featured:    p.Featured,
		Active:      p.Active,
		CategoryID:  p.CategoryID,
		SellerID:    p.SellerID,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	m.UpdatedAt = p.UpdatedAt
	return m
}
