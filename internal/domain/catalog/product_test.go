package catalog

import (
	"testing"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/shared"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDetails() ProductDetails {
	return ProductDetails{
		Name:        "  Mermelada de guayaba ",
		Description: "Frasco de 500g",
		Price:       decimal.RequireFromString("3.50"),
	}
}

func TestNewProduct(t *testing.T) {
	sellerID := uuid.New()

	t.Run("creates active product with defaults", func(t *testing.T) {
		p, err := NewProduct(sellerID, validDetails())
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, p.ID)
		assert.Equal(t, "Mermelada de guayaba", p.Name)
		assert.Equal(t, valueobject.USD, p.Currency)
		assert.True(t, p.Active)
		assert.True(t, p.IsOwnedBy(sellerID))
		assert.False(t, p.IsOwnedBy(uuid.New()))
		assert.Equal(t, p.CreatedAt, p.UpdatedAt)
	})

	t.Run("requires a seller", func(t *testing.T) {
		_, err := NewProduct(uuid.Nil, validDetails())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "seller")
	})

	t.Run("rejects blank name", func(t *testing.T) {
		d := validDetails()
		d.Name = "   "
		_, err := NewProduct(sellerID, d)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name cannot be empty")
	})

	t.Run("rejects negative price", func(t *testing.T) {
		d := validDetails()
		d.Price = decimal.NewFromInt(-1)
		_, err := NewProduct(sellerID, d)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_PRICE", domainErr.Code)
	})

	t.Run("rejects unsupported currency", func(t *testing.T) {
		d := validDetails()
		d.Currency = "CNY"
		_, err := NewProduct(sellerID, d)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CURRENCY", domainErr.Code)
	})
}

func TestProduct_Update(t *testing.T) {
	p, err := NewProduct(uuid.New(), validDetails())
	require.NoError(t, err)

	categoryID := uuid.New()
	err = p.Update(ProductDetails{
		Name:       "Miel de abeja",
		Price:      decimal.RequireFromString("6"),
		Currency:   valueobject.CUP,
		CategoryID: &categoryID,
		Featured:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Miel de abeja", p.Name)
	assert.Empty(t, p.Description)
	assert.Equal(t, valueobject.CUP, p.Currency)
	assert.Equal(t, &categoryID, p.CategoryID)
	assert.True(t, p.Featured)
	assert.True(t, p.UpdatedAt.After(p.CreatedAt) || p.UpdatedAt.Equal(p.CreatedAt))

	p.SetActive(false)
	assert.False(t, p.Active)

	p.SetImage(" https://cdn.example.com/products/miel.jpg ")
	assert.Equal(t, "https://cdn.example.com/products/miel.jpg", p.ImageURL)
}

func TestSeller(t *testing.T) {
	s := Seller{FirstName: "Ana", LastName: " Pérez ", Province: "La Habana", Municipality: "Playa", WhatsAppPhone: "+53 5 555 1234"}

	assert.Equal(t, "Ana Pérez", s.DisplayName())
	assert.Equal(t, "La Habana, Playa", s.Location())
	assert.Equal(t, "5355551234", s.Phone().Digits())

	assert.Equal(t, "Playa", Seller{Municipality: "Playa"}.Location())
	assert.Empty(t, Seller{}.Location())
}

func TestProduct_ChannelPhone(t *testing.T) {
	p := Product{}
	assert.True(t, p.ChannelPhone().IsEmpty())

	p.Seller = &Seller{WhatsAppPhone: "(555) 010-9999"}
	assert.Equal(t, "5550109999", p.ChannelPhone().Digits())
}

func TestSearchMatcher(t *testing.T) {
	products := []Product{
		{Name: "Café Serrano", Description: "Molido"},
		{Name: "Queso blanco", Description: "Fresco, de Bayamo"},
		{Name: "Pan", Description: "Artesanal con CAFÉ"},
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "empty query keeps all", query: "  ", want: []string{"Café Serrano", "Queso blanco", "Pan"}},
		{name: "accent-insensitive", query: "cafe", want: []string{"Café Serrano", "Pan"}},
		{name: "case-insensitive description", query: "BAYAMO", want: []string{"Queso blanco"}},
		{name: "no match", query: "vino", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewSearchMatcher(tt.query).Filter(products)
			names := make([]string, 0, len(got))
			for _, p := range got {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}
