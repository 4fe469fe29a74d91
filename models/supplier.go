package models

type Supplier struct {
	Id           uint   `json:"id" gorm:"primaryKey"`
	CompanyName  string `json:"company_name" gorm:"not null;unique"`
	ContactName  string `json:"contact_name"`
	Address      string `json:"address"`
	City         string `json:"city"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phone_number"`
	MobileNumber string `json:"mobile_number"`
}
