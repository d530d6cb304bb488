package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/candat96/mini-cis/internal/apperr"
	"github.com/candat96/mini-cis/internal/model/entity"
	"github.com/candat96/mini-cis/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AppointmentService 就诊预约管理，服务明细按当前价格快照计费
type AppointmentService struct {
	db       *gorm.DB
	repo     *repository.AppointmentRepository
	patients *repository.PatientRepository
	services *repository.ServiceRepository
	users    *repository.UserRepository
}

func NewAppointmentService(
	db *gorm.DB,
	repo *repository.AppointmentRepository,
	patients *repository.PatientRepository,
	services *repository.ServiceRepository,
	users *repository.UserRepository,
) *AppointmentService {
	return &AppointmentService{db: db, repo: repo, patients: patients, services: services, users: users}
}

type AppointmentServiceRequest struct {
	ID        string `json:"id"`
	ServiceID string `json:"service_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
	Note      string `json:"note"`
}

type CreateAppointmentRequest struct {
	PatientID       string                      `json:"patient_id" binding:"required"`
	DoctorID        string                      `json:"doctor_id"`
	AppointmentDate time.Time                   `json:"appointment_date" binding:"required"`
	Note            string                      `json:"note"`
	Services        []AppointmentServiceRequest `json:"services" binding:"omitempty,dive"`
}

type UpdateAppointmentRequest struct {
	DoctorID        string                      `json:"doctor_id"`
	Status          entity.AppointmentStatus    `json:"status"`
	AppointmentDate *time.Time                  `json:"appointment_date"`
	Note            *string                     `json:"note"`
	Services        []AppointmentServiceRequest `json:"services"`
}

func (s *AppointmentService) Create(req CreateAppointmentRequest) (*entity.Appointment, error) {
	if _, err := s.patients.GetByID(req.PatientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("patient", req.PatientID)
		}
		return nil, err
	}
	if req.DoctorID != "" {
		if _, err := s.users.GetByID(req.DoctorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("doctor", req.DoctorID)
			}
			return nil, err
		}
	}

	var appointmentID string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		services := s.services.WithTx(tx)

		appointment := &entity.Appointment{
			Status:          entity.AppointmentPending,
			AppointmentDate: req.AppointmentDate,
			Note:            req.Note,
			PatientID:       req.PatientID,
			DoctorID:        req.DoctorID,
		}
		if err := repo.Create(appointment); err != nil {
			return err
		}

		totalAmount := decimal.Zero
		for _, line := range req.Services {
			svc, err := services.GetByID(line.ServiceID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("service", line.ServiceID)
				}
				return fmt.Errorf("load service: %w", err)
			}
			amount := svc.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			totalAmount = totalAmount.Add(amount)
			detail := entity.AppointmentDetail{
				AppointmentID: appointment.ID,
				ServiceID:     svc.ID,
				Price:         svc.Price,
				Quantity:      line.Quantity,
				Amount:        amount,
				Note:          line.Note,
			}
			if err := repo.CreateDetail(&detail); err != nil {
				return err
			}
		}

		appointment.TotalAmount = totalAmount
		if err := repo.Save(appointment); err != nil {
			return err
		}
		appointmentID = appointment.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(appointmentID)
}

// Update 更新预约。提供服务列表时按明细 ID 作差：缺席的删除、
// 在场的按当前价格重算、新行创建；总额按新列表重算。
func (s *AppointmentService) Update(id string, req UpdateAppointmentRequest) (*entity.Appointment, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	if req.Status != "" && !req.Status.IsValid() {
		return nil, apperr.Validation(fmt.Sprintf("invalid appointment status: %s", req.Status))
	}
	if req.DoctorID != "" {
		if _, err := s.users.GetByID(req.DoctorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("doctor", req.DoctorID)
			}
			return nil, err
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		services := s.services.WithTx(tx)

		var appointment entity.Appointment
		if err := tx.Where("id = ?", id).First(&appointment).Error; err != nil {
			return fmt.Errorf("load appointment: %w", err)
		}

		if req.DoctorID != "" {
			appointment.DoctorID = req.DoctorID
		}
		if req.Status != "" {
			appointment.Status = req.Status
		}
		if req.AppointmentDate != nil {
			appointment.AppointmentDate = *req.AppointmentDate
		}
		if req.Note != nil {
			appointment.Note = *req.Note
		}

		if req.Services != nil {
			current, err := repo.FindDetails(id)
			if err != nil {
				return fmt.Errorf("load appointment details: %w", err)
			}
			currentByID := make(map[string]*entity.AppointmentDetail, len(current))
			for i := range current {
				currentByID[current[i].ID] = &current[i]
			}

			keep := make(map[string]bool, len(req.Services))
			for _, line := range req.Services {
				if line.ID != "" {
					keep[line.ID] = true
				}
			}
			var toDelete []string
			for i := range current {
				if !keep[current[i].ID] {
					toDelete = append(toDelete, current[i].ID)
				}
			}
			if err := repo.DeleteDetails(toDelete); err != nil {
				return fmt.Errorf("delete appointment details: %w", err)
			}

			totalAmount := decimal.Zero
			for _, line := range req.Services {
				svc, err := services.GetByID(line.ServiceID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return apperr.NotFound("service", line.ServiceID)
					}
					return fmt.Errorf("load service: %w", err)
				}
				amount := svc.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
				totalAmount = totalAmount.Add(amount)

				if line.ID != "" {
					detail, ok := currentByID[line.ID]
					if !ok {
						continue
					}
					detail.ServiceID = svc.ID
					detail.Price = svc.Price
					detail.Quantity = line.Quantity
					detail.Amount = amount
					detail.Note = line.Note
					if err := repo.SaveDetail(detail); err != nil {
						return err
					}
					continue
				}

				detail := entity.AppointmentDetail{
					AppointmentID: id,
					ServiceID:     svc.ID,
					Price:         svc.Price,
					Quantity:      line.Quantity,
					Amount:        amount,
					Note:          line.Note,
				}
				if err := repo.CreateDetail(&detail); err != nil {
					return err
				}
			}
			appointment.TotalAmount = totalAmount
		}

		return repo.Save(&appointment)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *AppointmentService) Get(id string) (*entity.Appointment, error) {
	appointment, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("appointment", id)
		}
		return nil, err
	}
	return appointment, nil
}

func (s *AppointmentService) List(params repository.AppointmentListParams) ([]entity.Appointment, int64, error) {
	return s.repo.List(params)
}
