package service

import (
	"errors"
	"fmt"

	"github.com/candat96/mini-cis/internal/apperr"
	"github.com/candat96/mini-cis/internal/model/entity"
	"github.com/candat96/mini-cis/internal/repository"
	"gorm.io/gorm"
)

// PatientService 患者档案管理，编号 BN000001 自动生成
type PatientService struct {
	db    *gorm.DB
	repo  *repository.PatientRepository
	codes *CodeSequence
}

func NewPatientService(db *gorm.DB, repo *repository.PatientRepository, codes *CodeSequence) *PatientService {
	return &PatientService{db: db, repo: repo, codes: codes}
}

type CreatePatientRequest struct {
	Name       string        `json:"name" binding:"required"`
	Phone      string        `json:"phone" binding:"required"`
	Gender     entity.Gender `json:"gender"`
	Address    string        `json:"address"`
	Occupation string        `json:"occupation"`
}

type UpdatePatientRequest struct {
	Name       string        `json:"name"`
	Phone      string        `json:"phone"`
	Gender     entity.Gender `json:"gender"`
	Address    *string       `json:"address"`
	Occupation *string       `json:"occupation"`
}

func (s *PatientService) Create(req CreatePatientRequest) (*entity.Patient, error) {
	var patient *entity.Patient
	err := retryOnDuplicate(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			code, err := s.codes.WithTx(tx).Next(&entity.Patient{}, codePrefixPatient, codeWidthPatient)
			if err != nil {
				return err
			}
			patient = &entity.Patient{
				Code:       code,
				Name:       req.Name,
				Phone:      req.Phone,
				Gender:     req.Gender,
				Address:    req.Address,
				Occupation: req.Occupation,
			}
			return s.repo.WithTx(tx).Create(patient)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return patient, nil
}

func (s *PatientService) Update(id string, req UpdatePatientRequest) (*entity.Patient, error) {
	patient, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		patient.Name = req.Name
	}
	if req.Phone != "" {
		patient.Phone = req.Phone
	}
	if req.Gender != "" {
		patient.Gender = req.Gender
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}
	if req.Occupation != nil {
		patient.Occupation = *req.Occupation
	}
	if err := s.repo.Save(patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *PatientService) Get(id string) (*entity.Patient, error) {
	patient, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("patient", id)
		}
		return nil, err
	}
	return patient, nil
}

func (s *PatientService) Remove(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

func (s *PatientService) List(params repository.PatientListParams) ([]entity.Patient, int64, error) {
	return s.repo.List(params)
}
