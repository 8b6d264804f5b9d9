package catalog

import (
	"strings"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Seller is the public snapshot of the user who lists a product
type Seller struct {
	ID            uuid.UUID `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Province      string    `json:"province,omitempty"`
	Municipality  string    `json:"municipality,omitempty"`
	WhatsAppPhone string    `json:"whatsapp_phone,omitempty"`
}

// DisplayName joins first and last name
func (s Seller) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(s.FirstName) + " " + strings.TrimSpace(s.LastName))
}

// Location renders "province, municipality", omitting blank parts
func (s Seller) Location() string {
	parts := make([]string, 0, 2)
	if p := strings.TrimSpace(s.Province); p != "" {
		parts = append(parts, p)
	}
	if m := strings.TrimSpace(s.Municipality); m != "" {
		parts = append(parts, m)
	}
	return strings.Join(parts, ", ")
}

// Phone returns the seller's messaging number
func (s Seller) Phone() valueobject.Phone {
	return valueobject.NewPhone(s.WhatsAppPhone)
}
