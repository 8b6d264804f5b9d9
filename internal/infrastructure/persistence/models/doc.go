// Package models contains GORM persistence models for the storefront tables.
// Domain entities carry no ORM tags; repositories convert with ToDomain and
// the *ModelFromDomain constructors.
package models
