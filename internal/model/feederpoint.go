package model

import (
	"time"

	"github.com/google/uuid"
)

// FeederPoint is a collection location. The schema is owned by the zone
// service; only the fields the registry and checker join against are carried.
type FeederPoint struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	Ward           string    `json:"ward"`
	Area           string    `json:"area"`
	HouseholdCount int       `json:"household_count"`
	CreatedAt      time.Time `json:"created_at"`
}

func (FeederPoint) TableName() string { return "feeder_points" }
