package repository

import (
	"time"

	"github.com/candat96/mini-cis/internal/model/entity"
	"gorm.io/gorm"
)

type PrescriptionRepository struct {
	db *gorm.DB
}

func NewPrescriptionRepository(db *gorm.DB) *PrescriptionRepository {
	return &PrescriptionRepository{db: db}
}

// WithTx 返回绑定到事务的仓库，对账流程全程走事务
func (r *PrescriptionRepository) WithTx(tx *gorm.DB) *PrescriptionRepository {
	return &PrescriptionRepository{db: tx}
}

func (r *PrescriptionRepository) Create(p *entity.Prescription) error {
	return r.db.Create(p).Error
}

// GetByID 加载处方及预约（含患者）、医生、明细（含药品）、配对出库单
func (r *PrescriptionRepository) GetByID(id string) (*entity.Prescription, error) {
	var p entity.Prescription
	err := r.db.
		Preload("Appointment").
		Preload("Appointment.Patient").
		Preload("Doctor").
		Preload("Details").
		Preload("Details.Medicine").
		Preload("StockOut").
		Preload("StockOut.Details").
		Where("id = ?", id).First(&p).Error
	return &p, err
}

func (r *PrescriptionRepository) Save(p *entity.Prescription) error {
	return r.db.Save(p).Error
}

// Delete 删除处方并级联删除其明细
func (r *PrescriptionRepository) Delete(id string) error {
	if err := r.db.Where("prescription_id = ?", id).Delete(&entity.PrescriptionDetail{}).Error; err != nil {
		return err
	}
	return r.db.Where("id = ?", id).Delete(&entity.Prescription{}).Error
}

func (r *PrescriptionRepository) CreateDetail(d *entity.PrescriptionDetail) error {
	return r.db.Create(d).Error
}

func (r *PrescriptionRepository) SaveDetail(d *entity.PrescriptionDetail) error {
	return r.db.Save(d).Error
}

func (r *PrescriptionRepository) FindDetails(prescriptionID string) ([]entity.PrescriptionDetail, error) {
	var details []entity.PrescriptionDetail
	err := r.db.Where("prescription_id = ?", prescriptionID).Find(&details).Error
	return details, err
}

func (r *PrescriptionRepository) DeleteDetails(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Where("id IN ?", ids).Delete(&entity.PrescriptionDetail{}).Error
}

type PrescriptionListParams struct {
	AppointmentID string
	DoctorID      string
	Code          string
	Status        entity.PrescriptionStatus
	FromDate      *time.Time
	ToDate        *time.Time
	Page          int
	Size          int
}

func (r *PrescriptionRepository) List(params PrescriptionListParams) ([]entity.Prescription, int64, error) {
	query := r.db.Model(&entity.Prescription{})
	if params.AppointmentID != "" {
		query = query.Where("appointment_id = ?", params.AppointmentID)
	}
	if params.DoctorID != "" {
		query = query.Where("doctor_id = ?", params.DoctorID)
	}
	if params.Code != "" {
		query = query.Where("LOWER(code) LIKE LOWER(?)", "%"+params.Code+"%")
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.FromDate != nil {
		query = query.Where("created_at >= ?", *params.FromDate)
	}
	if params.ToDate != nil {
		query = query.Where("created_at <= ?", *params.ToDate)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var prescriptions []entity.Prescription
	err := query.
		Preload("Appointment").
		Preload("Appointment.Patient").
		Preload("Doctor").
		Preload("Details").
		Preload("Details.Medicine").
		Preload("StockOut").
		Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&prescriptions).Error
	return prescriptions, total, err
}
