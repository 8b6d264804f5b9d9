package models

import (
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/catalog"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/identity"
)

// UserModel is the profile row kept next to the hosted auth service's accounts.
type UserModel struct {
	BaseModel
	Email         string `gorm:"type:varchar(255);not null;uniqueIndex"`
	FirstName     string `gorm:"type:varchar(100)"`
	LastName      string `gorm:"type:varchar(100)"`
	Address       string `gorm:"type:text"`
	Province      string `gorm:"type:varchar(100)"`
	Municipality  string `gorm:"type:varchar(100)"`
	WhatsAppPhone string `gorm:"column:whatsapp_phone;type:varchar(30)"`
	AvatarURL     string `gorm:"type:text"`
	IsSeller      bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseEntity:    m.BaseModel.ToDomain(),
		Email:         m.Email,
		FirstName:     m.FirstName,
		LastName:      m.LastName,
		Address:       m.Address,
		Province:      m.Province,
		Municipality:  m.Municipality,
		WhatsAppPhone: m.WhatsAppPhone,
		AvatarURL:     m.AvatarURL,
		IsSeller:      m.IsSeller,
	}
}

// ToSeller converts the row to the public seller snapshot shown on products.
func (m *UserModel) ToSeller() *catalog.Seller {
	return &catalog.Seller{
		ID:            m.ID,
		FirstName:     m.FirstName,
		LastName:      m.LastName,
		Province:      m.Province,
		Municipality:  m.Municipality,
		WhatsAppPhone: m.WhatsAppPhone,
	}
}

// UserModelFromDomain creates a persistence model from a domain User.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Address:       u.Address,
		Province:      u.Province,
		Municipality:  u.Municipality,
		WhatsAppPhone: u.WhatsAppPhone,
		AvatarURL:     u.AvatarURL,
		IsSeller:      u.IsSeller,
	}
	m.FromDomainBaseEntity(u.BaseEntity)
	return m
}
