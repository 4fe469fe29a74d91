package models

import "time"

// InventoryEntry is one intake record from a supplier: how many boxes of a
// given egg type arrived and their net weight.
type InventoryEntry struct {
	Id         uint      `json:"id" gorm:"primaryKey"`
	SupplierID uint      `json:"supplier_id" gorm:"not null;index"`
	Supplier   Supplier  `json:"supplier" gorm:"foreignKey:SupplierID;references:Id"`
	EggTypeID  uint      `json:"egg_type_id" gorm:"not null;index"`
	EggType    EggType   `json:"egg_type" gorm:"foreignKey:EggTypeID;references:Id"`
	BoxCount   int       `json:"box_count"`
	NetWeight  float64   `json:"net_weight" gorm:"type:numeric(12,2)"`
	EntryDate  time.Time `json:"entry_date" gorm:"index"`
	CreatedAt  time.Time `json:"created_at"`
}
