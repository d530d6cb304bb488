package service

import (
	"errors"
	"fmt"

	"github.com/candat96/mini-cis/internal/apperr"
	"github.com/candat96/mini-cis/internal/model/entity"
	"github.com/candat96/mini-cis/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MedicineService 药品档案与类别管理。药品编号 T0001、类别编号 MC001，
// 未提供时自动生成。
type MedicineService struct {
	db    *gorm.DB
	repo  *repository.MedicineRepository
	codes *CodeSequence
}

func NewMedicineService(db *gorm.DB, repo *repository.MedicineRepository, codes *CodeSequence) *MedicineService {
	return &MedicineService{db: db, repo: repo, codes: codes}
}

type CreateMedicineRequest struct {
	Name         string          `json:"name" binding:"required"`
	Code         string          `json:"code"`
	Unit         string          `json:"unit" binding:"required"`
	SellPrice    decimal.Decimal `json:"sell_price"`
	BuyPrice     decimal.Decimal `json:"buy_price"`
	Manufacturer string          `json:"manufacturer"`
	Description  string          `json:"description"`
	CategoryID   string          `json:"category_id"`
}

type UpdateMedicineRequest struct {
	Name         string           `json:"name"`
	Unit         string           `json:"unit"`
	SellPrice    *decimal.Decimal `json:"sell_price"`
	BuyPrice     *decimal.Decimal `json:"buy_price"`
	Manufacturer *string          `json:"manufacturer"`
	Description  *string          `json:"description"`
	CategoryID   *string          `json:"category_id"`
}

func (s *MedicineService) Create(req CreateMedicineRequest) (*entity.Medicine, error) {
	if req.CategoryID != "" {
		if _, err := s.repo.GetCategoryByID(req.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("medicine category", req.CategoryID)
			}
			return nil, err
		}
	}
	if req.Code != "" {
		exists, err := s.repo.ExistsByCode(req.Code)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperr.Conflict("medicine", fmt.Sprintf("code %s already exists", req.Code))
		}
	}

	var medicine *entity.Medicine
	err := retryOnDuplicate(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			code := req.Code
			if code == "" {
				var err error
				code, err = s.codes.WithTx(tx).Next(&entity.Medicine{}, codePrefixMedicine, codeWidthMedicine)
				if err != nil {
					return err
				}
			}
			medicine = &entity.Medicine{
				Name:         req.Name,
				Code:         code,
				Unit:         req.Unit,
				SellPrice:    req.SellPrice,
				BuyPrice:     req.BuyPrice,
				Manufacturer: req.Manufacturer,
				Description:  req.Description,
				CategoryID:   req.CategoryID,
			}
			return s.repo.WithTx(tx).Create(medicine)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("create medicine: %w", err)
	}
	return s.Get(medicine.ID)
}

func (s *MedicineService) Update(id string, req UpdateMedicineRequest) (*entity.Medicine, error) {
	medicine, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if req.CategoryID != nil && *req.CategoryID != "" {
		if _, err := s.repo.GetCategoryByID(*req.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("medicine category", *req.CategoryID)
			}
			return nil, err
		}
	}

	if req.Name != "" {
		medicine.Name = req.Name
	}
	if req.Unit != "" {
		medicine.Unit = req.Unit
	}
	if req.SellPrice != nil {
		medicine.SellPrice = *req.SellPrice
	}
	if req.BuyPrice != nil {
		medicine.BuyPrice = *req.BuyPrice
	}
	if req.Manufacturer != nil {
		medicine.Manufacturer = *req.Manufacturer
	}
	if req.Description != nil {
		medicine.Description = *req.Description
	}
	if req.CategoryID != nil {
		medicine.CategoryID = *req.CategoryID
	}
	if err := s.repo.Save(medicine); err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *MedicineService) Get(id string) (*entity.Medicine, error) {
	medicine, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("medicine", id)
		}
		return nil, err
	}
	return medicine, nil
}

func (s *MedicineService) Remove(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

func (s *MedicineService) List(params repository.MedicineListParams) ([]entity.Medicine, int64, error) {
	return s.repo.List(params)
}

type CreateMedicineCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateMedicineCategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (s *MedicineService) CreateCategory(req CreateMedicineCategoryRequest) (*entity.MedicineCategory, error) {
	var category *entity.MedicineCategory
	err := retryOnDuplicate(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			code, err := s.codes.WithTx(tx).Next(&entity.MedicineCategory{}, codePrefixMedicineCategory, codeWidthMedicineCategory)
			if err != nil {
				return err
			}
			category = &entity.MedicineCategory{
				Name:        req.Name,
				Code:        code,
				Description: req.Description,
			}
			return s.repo.WithTx(tx).CreateCategory(category)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("create medicine category: %w", err)
	}
	return category, nil
}

func (s *MedicineService) UpdateCategory(id string, req UpdateMedicineCategoryRequest) (*entity.MedicineCategory, error) {
	category, err := s.GetCategory(id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		category.Name = req.Name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if err := s.repo.SaveCategory(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *MedicineService) GetCategory(id string) (*entity.MedicineCategory, error) {
	category, err := s.repo.GetCategoryByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("medicine category", id)
		}
		return nil, err
	}
	return category, nil
}

func (s *MedicineService) RemoveCategory(id string) error {
	if _, err := s.GetCategory(id); err != nil {
		return err
	}
	return s.repo.DeleteCategory(id)
}

func (s *MedicineService) ListCategories(keyword string) ([]entity.MedicineCategory, error) {
	return s.repo.ListCategories(keyword)
}
