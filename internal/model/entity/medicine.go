package entity

import "github.com/shopspring/decimal"

// MedicineCategory 药品类别，编号格式 MC001
type MedicineCategory struct {
	BaseModel
	Name        string `json:"name" gorm:"size:128;not null"`
	Code        string `json:"code" gorm:"size:20;not null;uniqueIndex"`
	Description string `json:"description" gorm:"size:255"`

	Medicines []Medicine `json:"medicines,omitempty" gorm:"foreignKey:CategoryID"`
}

func (MedicineCategory) TableName() string {
	return "medicine_category"
}

// Medicine 药品档案，编号格式 T0001
type Medicine struct {
	BaseModel
	Name         string          `json:"name" gorm:"size:128;not null"`
	Code         string          `json:"code" gorm:"size:20;not null;uniqueIndex"`
	Unit         string          `json:"unit" gorm:"size:20;not null"`
	SellPrice    decimal.Decimal `json:"sell_price" gorm:"type:decimal(10,2);not null;default:0"`
	BuyPrice     decimal.Decimal `json:"buy_price" gorm:"type:decimal(10,2);not null;default:0"`
	Manufacturer string          `json:"manufacturer" gorm:"size:128"`
	Description  string          `json:"description" gorm:"size:255"`
	CategoryID   string          `json:"category_id" gorm:"size:36;index"`

	Category *MedicineCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (Medicine) TableName() string {
	return "medicine"
}
