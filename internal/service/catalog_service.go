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

// CatalogService 诊疗服务项目与类别管理。项目编号 DV0001、类别编号 LDV001。
type CatalogService struct {
	db    *gorm.DB
	repo  *repository.ServiceRepository
	codes *CodeSequence
}

func NewCatalogService(db *gorm.DB, repo *repository.ServiceRepository, codes *CodeSequence) *CatalogService {
	return &CatalogService{db: db, repo: repo, codes: codes}
}

type CreateServiceRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  string          `json:"category_id"`
}

type UpdateServiceRequest struct {
	Name        string           `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  *string          `json:"category_id"`
}

func (s *CatalogService) Create(req CreateServiceRequest) (*entity.Service, error) {
	if req.CategoryID != "" {
		if _, err := s.repo.GetCategoryByID(req.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("service category", req.CategoryID)
			}
			return nil, err
		}
	}

	var svc *entity.Service
	err := retryOnDuplicate(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			code, err := s.codes.WithTx(tx).Next(&entity.Service{}, codePrefixService, codeWidthService)
			if err != nil {
				return err
			}
			svc = &entity.Service{
				Name:        req.Name,
				Code:        code,
				Description: req.Description,
				Price:       req.Price,
				CategoryID:  req.CategoryID,
			}
			return s.repo.WithTx(tx).Create(svc)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return s.Get(svc.ID)
}

func (s *CatalogService) Update(id string, req UpdateServiceRequest) (*entity.Service, error) {
	svc, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if req.CategoryID != nil && *req.CategoryID != "" {
		if _, err := s.repo.GetCategoryByID(*req.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("service category", *req.CategoryID)
			}
			return nil, err
		}
	}

	if req.Name != "" {
		svc.Name = req.Name
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.Price != nil {
		svc.Price = *req.Price
	}
	if req.CategoryID != nil {
		svc.CategoryID = *req.CategoryID
	}
	if err := s.repo.Save(svc); err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *CatalogService) Get(id string) (*entity.Service, error) {
	svc, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("service", id)
		}
		return nil, err
	}
	return svc, nil
}

func (s *CatalogService) Remove(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

func (s *CatalogService) List(params repository.ServiceListParams) ([]entity.Service, int64, error) {
	return s.repo.List(params)
}

type CreateServiceCategoryRequest struct {
	Name string `json:"name" binding:"required"`
	Note string `json:"note"`
}

type UpdateServiceCategoryRequest struct {
	Name string  `json:"name"`
	Note *string `json:"note"`
}

func (s *CatalogService) CreateCategory(req CreateServiceCategoryRequest) (*entity.ServiceCategory, error) {
	var category *entity.ServiceCategory
	err := retryOnDuplicate(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			code, err := s.codes.WithTx(tx).Next(&entity.ServiceCategory{}, codePrefixServiceCategory, codeWidthServiceCategory)
			if err != nil {
				return err
			}
			category = &entity.ServiceCategory{
				Name: req.Name,
				Code: code,
				Note: req.Note,
			}
			return s.repo.WithTx(tx).CreateCategory(category)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("create service category: %w", err)
	}
	return category, nil
}

func (s *CatalogService) UpdateCategory(id string, req UpdateServiceCategoryRequest) (*entity.ServiceCategory, error) {
	category, err := s.GetCategory(id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		category.Name = req.Name
	}
	if req.Note != nil {
		category.Note = *req.Note
	}
	if err := s.repo.SaveCategory(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) GetCategory(id string) (*entity.ServiceCategory, error) {
	category, err := s.repo.GetCategoryByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("service category", id)
		}
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) RemoveCategory(id string) error {
	if _, err := s.GetCategory(id); err != nil {
		return err
	}
	return s.repo.DeleteCategory(id)
}

func (s *CatalogService) ListCategories(keyword string) ([]entity.ServiceCategory, error) {
	return s.repo.ListCategories(keyword)
}
