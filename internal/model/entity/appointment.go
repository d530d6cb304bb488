package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AppointmentStatus 预约状态
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "PENDING"
	AppointmentConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
)

func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentPending, AppointmentConfirmed, AppointmentCompleted, AppointmentCancelled:
		return true
	}
	return false
}

// Appointment 就诊预约
type Appointment struct {
	BaseModel
	Status          AppointmentStatus `json:"status" gorm:"size:20;not null;default:PENDING"`
	AppointmentDate time.Time         `json:"appointment_date" gorm:"not null"`
	Note            string            `json:"note" gorm:"size:255"`
	TotalAmount     decimal.Decimal   `json:"total_amount" gorm:"type:decimal(10,2);not null;default:0"`
	PatientID       string            `json:"patient_id" gorm:"size:36;not null;index"`
	DoctorID        string            `json:"doctor_id" gorm:"size:36;index"`

	Patient *Patient            `json:"patient,omitempty" gorm:"foreignKey:PatientID"`
	Doctor  *User               `json:"doctor,omitempty" gorm:"foreignKey:DoctorID"`
	Details []AppointmentDetail `json:"details,omitempty" gorm:"foreignKey:AppointmentID;constraint:OnDelete:CASCADE"`
}

func (Appointment) TableName() string {
	return "appointment"
}

// AppointmentDetail 预约服务明细，金额 = 单价 × 数量
type AppointmentDetail struct {
	BaseModel
	AppointmentID string          `json:"appointment_id" gorm:"size:36;not null;index"`
	ServiceID     string          `json:"service_id" gorm:"size:36;not null;index"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null;default:0"`
	Quantity      int             `json:"quantity" gorm:"not null;default:1"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null;default:0"`
	Note          string          `json:"note" gorm:"size:255"`

	Service *Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
}

func (AppointmentDetail) TableName() string {
	return "appointment_detail"
}
