package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Inventory 按药品+批号维度的库存批次，数量不得为负
type Inventory struct {
	BaseModel
	MedicineID  string          `json:"medicine_id" gorm:"size:36;not null;uniqueIndex:idx_inventory_medicine_batch"`
	Quantity    int             `json:"quantity" gorm:"not null;default:0"`
	ExpiryDate  *time.Time      `json:"expiry_date"`
	BatchNumber string          `json:"batch_number" gorm:"size:255;not null;default:'';uniqueIndex:idx_inventory_medicine_batch"`
	AverageCost decimal.Decimal `json:"average_cost" gorm:"type:decimal(10,2);not null;default:0"`

	Medicine *Medicine `json:"medicine,omitempty" gorm:"foreignKey:MedicineID"`
}

func (Inventory) TableName() string {
	return "inventory"
}
