package entity

import "github.com/shopspring/decimal"

// PrescriptionStatus 处方状态，仅 DRAFT 状态允许修改或删除
type PrescriptionStatus string

const (
	PrescriptionDraft     PrescriptionStatus = "DRAFT"
	PrescriptionCompleted PrescriptionStatus = "COMPLETED"
	PrescriptionCancelled PrescriptionStatus = "CANCELLED"
)

func (s PrescriptionStatus) IsValid() bool {
	switch s {
	case PrescriptionDraft, PrescriptionCompleted, PrescriptionCancelled:
		return true
	}
	return false
}

// Prescription 处方单，编号格式 DT000001，与出库单一一对应
type Prescription struct {
	BaseModel
	Code          string             `json:"code" gorm:"size:20;not null;uniqueIndex"`
	Status        PrescriptionStatus `json:"status" gorm:"size:20;not null;default:DRAFT"`
	TotalAmount   decimal.Decimal    `json:"total_amount" gorm:"type:decimal(10,2);not null;default:0"`
	Note          string             `json:"note" gorm:"size:255"`
	AppointmentID string             `json:"appointment_id" gorm:"size:36;not null;index"`
	DoctorID      string             `json:"doctor_id" gorm:"size:36;not null;index"`

	Appointment *Appointment         `json:"appointment,omitempty" gorm:"foreignKey:AppointmentID"`
	Doctor      *User                `json:"doctor,omitempty" gorm:"foreignKey:DoctorID"`
	Details     []PrescriptionDetail `json:"details,omitempty" gorm:"foreignKey:PrescriptionID;constraint:OnDelete:CASCADE"`
	StockOut    *StockOut            `json:"stock_out,omitempty" gorm:"foreignKey:PrescriptionID"`
}

func (Prescription) TableName() string {
	return "prescription"
}

// PrescriptionDetail 处方明细，Price 为开方时药品售价的快照
type PrescriptionDetail struct {
	BaseModel
	PrescriptionID string          `json:"prescription_id" gorm:"size:36;not null;index"`
	MedicineID     string          `json:"medicine_id" gorm:"size:36;not null;index"`
	Price          decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null;default:0"`
	Quantity       int             `json:"quantity" gorm:"not null"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null;default:0"`
	Dosage         string          `json:"dosage" gorm:"size:128"`
	Frequency      string          `json:"frequency" gorm:"size:128"`
	Duration       string          `json:"duration" gorm:"size:128"`
	Instruction    string          `json:"instruction" gorm:"size:255"`
	Note           string          `json:"note" gorm:"size:255"`

	Medicine *Medicine `json:"medicine,omitempty" gorm:"foreignKey:MedicineID"`
}

func (PrescriptionDetail) TableName() string {
	return "prescription_detail"
}
