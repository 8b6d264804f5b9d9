package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity is the identity and creation time embedded in stored entities
type BaseEntity struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewBaseEntity returns a BaseEntity with a fresh random id
func NewBaseEntity() BaseEntity {
	return BaseEntity{ID: uuid.New(), CreatedAt: time.Now()}
}
