package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockOutType 出库类型
type StockOutType string

const (
	StockOutPrescription StockOutType = "PRESCRIPTION" // 按处方出库
	StockOutOther        StockOutType = "OTHER"        // 其他出库
)

func (t StockOutType) IsValid() bool {
	switch t {
	case StockOutPrescription, StockOutOther:
		return true
	}
	return false
}

// StockIn 入库单，编号格式 NK0001
type StockIn struct {
	BaseModel
	Code        string          `json:"code" gorm:"size:20;not null;uniqueIndex"`
	StockInDate time.Time       `json:"stock_in_date" gorm:"not null"`
	Supplier    string          `json:"supplier" gorm:"size:128"`
	Note        string          `json:"note" gorm:"size:255"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:decimal(10,2);not null;default:0"`

	Details []StockInDetail `json:"details,omitempty" gorm:"foreignKey:StockInID;constraint:OnDelete:CASCADE"`
}

func (StockIn) TableName() string {
	return "stock_in"
}

// StockInDetail 入库明细
type StockInDetail struct {
	BaseModel
	StockInID   string          `json:"stock_in_id" gorm:"size:36;not null;index"`
	MedicineID  string          `json:"medicine_id" gorm:"size:36;not null;index"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	ExpiryDate  *time.Time      `json:"expiry_date"`
	BatchNumber string          `json:"batch_number" gorm:"size:255;not null;default:''"`

	Medicine *Medicine `json:"medicine,omitempty" gorm:"foreignKey:MedicineID"`
}

func (StockInDetail) TableName() string {
	return "stock_in_detail"
}

// StockOut 出库单，编号格式 XK0001。处方出库时 PrescriptionID 指向对应处方。
type StockOut struct {
	BaseModel
	Code           string          `json:"code" gorm:"size:20;not null;uniqueIndex"`
	StockOutDate   time.Time       `json:"stock_out_date" gorm:"not null"`
	Recipient      string          `json:"recipient" gorm:"size:128"`
	Note           string          `json:"note" gorm:"size:255"`
	TotalAmount    decimal.Decimal `json:"total_amount" gorm:"type:decimal(10,2);not null;default:0"`
	Type           StockOutType    `json:"type" gorm:"size:20;not null;default:OTHER"`
	PrescriptionID *string         `json:"prescription_id" gorm:"size:36;index"`

	Details []StockOutDetail `json:"details,omitempty" gorm:"foreignKey:StockOutID;constraint:OnDelete:CASCADE"`
}

func (StockOut) TableName() string {
	return "stock_out"
}

// StockOutDetail 出库明细
type StockOutDetail struct {
	BaseModel
	StockOutID  string          `json:"stock_out_id" gorm:"size:36;not null;index"`
	MedicineID  string          `json:"medicine_id" gorm:"size:36;not null;index"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	BatchNumber string          `json:"batch_number" gorm:"size:255;not null;default:''"`

	Medicine *Medicine `json:"medicine,omitempty" gorm:"foreignKey:MedicineID"`
}

func (StockOutDetail) TableName() string {
	return "stock_out_detail"
}
