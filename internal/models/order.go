package models

import (
	"time"

	"github.com/google/uuid"
)

// Order is the order service's record. This service only reads it to answer
// "does this order exist and for how much"; it never writes the row.
type Order struct {
	BaseModel
	OrderNumber     string     `gorm:"uniqueIndex" json:"order_number"`
	UserID          *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Status          string     `json:"status"`
	TotalMinorUnits int64      `json:"total_minor_units"`
	Currency        string     `json:"currency"`
	PlacedAt        time.Time  `json:"placed_at"`
}
