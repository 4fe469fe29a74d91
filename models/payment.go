package models

import "time"

// Payment method values accepted by the API.
const (
	PaymentMethodCash     = "cash"
	PaymentMethodTransfer = "transfer"
	PaymentMethodCheck    = "check"
	PaymentMethodCard     = "card"
)

// Payment is money received from a client, allocated against one or more
// remissions. Immutable once allocated except for amount/method/reference
// correction.
type Payment struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	ClientID uint   `json:"client_id" gorm:"not null;index"`
	Client   Client `json:"-" gorm:"foreignKey:ClientID;references:Id"`

	Amount    float64 `json:"amount" gorm:"type:numeric(12,2)"`
	Method    string  `json:"method"`
	Reference string  `json:"reference"`

	Remissions []Remission `json:"-" gorm:"many2many:remission_payments"`

	PaidAt    time.Time `json:"paid_at" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}
