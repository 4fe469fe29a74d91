package models

type Client struct {
	Id          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null"`
	ContactName string `json:"contact_name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	City        string `json:"city"`
	// Soft delete: inactive clients keep their remissions and payments.
	Status bool `json:"status" gorm:"default:true"`
}
