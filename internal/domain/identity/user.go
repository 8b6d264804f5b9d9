package identity

import (
	"context"
	"strings"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/catalog"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/shared"
	"github.com/google/uuid"
)

// User is a storefront account as stored by the hosted auth service's profile table
type User struct {
	shared.BaseEntity
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Address       string `json:"address"`
	Province      string `json:"province"`
	Municipality  string `json:"municipality"`
	WhatsAppPhone string `json:"whatsapp_phone"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	IsSeller      bool   `json:"is_seller"`
}

// Profile field names reported by ProfileStatus
const (
	FieldFirstName     = "first_name"
	FieldLastName      = "last_name"
	FieldAddress       = "address"
	FieldProvince      = "province"
	FieldMunicipality  = "municipality"
	FieldWhatsAppPhone = "whatsapp_phone"
)

// ProfileStatus tells whether a user filled in everything checkout and
// seller listings rely on
type ProfileStatus struct {
	Complete      bool     `json:"complete"`
	MissingFields []string `json:"missing_fields"`
}

// ProfileStatus checks the required profile fields
func (u *User) ProfileStatus() ProfileStatus {
	required := []struct {
		name  string
		value string
	}{
		{FieldFirstName, u.FirstName},
		{FieldLastName, u.LastName},
		{FieldAddress, u.Address},
		{FieldProvince, u.Province},
		{FieldMunicipality, u.Municipality},
		{FieldWhatsAppPhone, u.WhatsAppPhone},
	}

	missing := make([]string, 0)
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return ProfileStatus{Complete: len(missing) == 0, MissingFields: missing}
}

// FullName joins first and last name
func (u *User) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

// AsSeller returns the public seller snapshot of the user
func (u *User) AsSeller() catalog.Seller {
	return catalog.Seller{
		ID:            u.ID,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Province:      u.Province,
		Municipality:  u.Municipality,
		WhatsAppPhone: u.WhatsAppPhone,
	}
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
}
