package repository

import (
	"time"

	"github.com/candat96/mini-cis/internal/model/entity"
	"gorm.io/gorm"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// WithTx 返回绑定到事务的仓库
func (r *AppointmentRepository) WithTx(tx *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: tx}
}

func (r *AppointmentRepository) Create(a *entity.Appointment) error {
	return r.db.Create(a).Error
}

// GetByID 加载预约及患者、医生、服务明细
func (r *AppointmentRepository) GetByID(id string) (*entity.Appointment, error) {
	var a entity.Appointment
	err := r.db.
		Preload("Patient").
		Preload("Doctor").
		Preload("Details").
		Preload("Details.Service").
		Where("id = ?", id).First(&a).Error
	return &a, err
}

// GetWithPatient 仅加载预约与患者，处方关联校验时使用
func (r *AppointmentRepository) GetWithPatient(id string) (*entity.Appointment, error) {
	var a entity.Appointment
	err := r.db.Preload("Patient").Where("id = ?", id).First(&a).Error
	return &a, err
}

func (r *AppointmentRepository) Save(a *entity.Appointment) error {
	return r.db.Save(a).Error
}

func (r *AppointmentRepository) CreateDetail(d *entity.AppointmentDetail) error {
	return r.db.Create(d).Error
}

func (r *AppointmentRepository) SaveDetail(d *entity.AppointmentDetail) error {
	return r.db.Save(d).Error
}

func (r *AppointmentRepository) FindDetails(appointmentID string) ([]entity.AppointmentDetail, error) {
	var details []entity.AppointmentDetail
	err := r.db.Where("appointment_id = ?", appointmentID).Find(&details).Error
	return details, err
}

func (r *AppointmentRepository) DeleteDetails(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Where("id IN ?", ids).Delete(&entity.AppointmentDetail{}).Error
}

type AppointmentListParams struct {
	PatientID string
	DoctorID  string
	Status    entity.AppointmentStatus
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
	Page      int
	Size      int
}

func (r *AppointmentRepository) List(params AppointmentListParams) ([]entity.Appointment, int64, error) {
	query := r.db.Model(&entity.Appointment{})
	if params.PatientID != "" {
		query = query.Where("patient_id = ?", params.PatientID)
	}
	if params.DoctorID != "" {
		query = query.Where("doctor_id = ?", params.DoctorID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.StartDate != nil {
		query = query.Where("appointment_date >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("appointment_date <= ?", *params.EndDate)
	}
	if params.Search != "" {
		kw := "%" + params.Search + "%"
		query = query.Joins("JOIN patient ON patient.id = appointment.patient_id").
			Where("LOWER(patient.name) LIKE LOWER(?) OR patient.phone LIKE ?", kw, kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var appointments []entity.Appointment
	err := query.
		Preload("Patient").
		Preload("Doctor").
		Preload("Details").
		Preload("Details.Service").
		Order("appointment_date DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&appointments).Error
	return appointments, total, err
}
