package repository

import (
	"github.com/candat96/mini-cis/internal/model/entity"
	"gorm.io/gorm"
)

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

func (r *PatientRepository) WithTx(tx *gorm.DB) *PatientRepository {
	return &PatientRepository{db: tx}
}

func (r *PatientRepository) Create(p *entity.Patient) error {
	return r.db.Create(p).Error
}

func (r *PatientRepository) GetByID(id string) (*entity.Patient, error) {
	var p entity.Patient
	err := r.db.Where("id = ?", id).First(&p).Error
	return &p, err
}

func (r *PatientRepository) Save(p *entity.Patient) error {
	return r.db.Save(p).Error
}

func (r *PatientRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&entity.Patient{}).Error
}

type PatientListParams struct {
	Name  string
	Phone string
	Code  string
	Page  int
	Size  int
}

func (r *PatientRepository) List(params PatientListParams) ([]entity.Patient, int64, error) {
	query := r.db.Model(&entity.Patient{})
	if params.Name != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+params.Name+"%")
	}
	if params.Phone != "" {
		query = query.Where("phone LIKE ?", "%"+params.Phone+"%")
	}
	if params.Code != "" {
		query = query.Where("LOWER(code) LIKE LOWER(?)", "%"+params.Code+"%")
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var patients []entity.Patient
	err := query.Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&patients).Error
	return patients, total, err
}
