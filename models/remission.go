package models

import (
	"time"

	"gorm.io/datatypes"
)

// Remission is one delivery of egg boxes to a client, billed by net weight.
type Remission struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	ClientID uint   `json:"client_id" gorm:"not null;index"`
	Client   Client `json:"client" gorm:"foreignKey:ClientID;references:Id"`

	Details []RemissionDetail `json:"details" gorm:"foreignKey:RemissionID;constraint:OnDelete:CASCADE"`

	// Payments covering this remission, possibly shared with others.
	Payments []Payment `json:"payments" gorm:"many2many:remission_payments"`

	// Stored projections of the detail set and payment set. Recomputed
	// inside the same transaction as every mutation that touches them.
	TotalCost float64 `json:"total_cost" gorm:"type:numeric(12,2)"`
	IsPaid    bool    `json:"is_paid"`

	DeliveredAt time.Time `json:"delivered_at" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
}

// RemissionDetail is one line of a remission: boxes of a single egg type
// from a single supplier. Exactly one weight mode is active: by-box (every
// box weighed, tare deducted per box) or estimated (average weight per box,
// no tare).
type RemissionDetail struct {
	ID          uint     `json:"id" gorm:"primaryKey"`
	RemissionID uint     `json:"-" gorm:"index"`
	EggTypeID   uint     `json:"egg_type_id" gorm:"not null;index"`
	EggType     EggType  `json:"-" gorm:"foreignKey:EggTypeID;references:Id;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	SupplierID  uint     `json:"supplier_id" gorm:"not null;index"`
	Supplier    Supplier `json:"-" gorm:"foreignKey:SupplierID;references:Id;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`

	BoxCount              int     `json:"box_count"`
	IsByBox               bool    `json:"is_by_box"`
	EstimatedWeightPerBox float64 `json:"estimated_weight_per_box" gorm:"type:numeric(12,2)"`

	BoxWeights []BoxWeight `json:"box_weights" gorm:"foreignKey:DetailID;constraint:OnDelete:CASCADE"`

	// Derived: WeightTotal - TaraTotal = NetWeight, Subtotal = NetWeight * PricePerKg.
	WeightTotal float64 `json:"weight_total" gorm:"type:numeric(12,2)"`
	TaraTotal   float64 `json:"tara_total" gorm:"type:numeric(12,2)"`
	NetWeight   float64 `json:"net_weight" gorm:"type:numeric(12,2)"`
	PricePerKg  float64 `json:"price_per_kg" gorm:"type:numeric(12,2)"`
	Subtotal    float64 `json:"subtotal" gorm:"type:numeric(12,2)"`
}

// BoxWeight is one physical box's weighing. Net is persisted at write time
// with the tare already deducted; it is never re-deducted on read.
type BoxWeight struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	DetailID uint    `json:"-" gorm:"index"`
	Gross    float64 `json:"gross" gorm:"type:numeric(12,2)"`
	Net      float64 `json:"net" gorm:"type:numeric(12,2)"`
}

// RemissionAudit is an immutable snapshot of a remission taken after every
// reconciling mutation.
type RemissionAudit struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	RemissionID uint           `json:"remission_id" gorm:"index:idx_remission_audits_remission_id_version_no,unique,priority:1"`
	VersionNo   int            `json:"version_no" gorm:"not null;index:idx_remission_audits_remission_id_version_no,unique,priority:2"`
	Snapshot    datatypes.JSON `json:"snapshot" gorm:"type:jsonb"`
	CreatedAt   time.Time      `json:"created_at"`
}
