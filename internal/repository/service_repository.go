package repository

import (
	"github.com/candat96/mini-cis/internal/model/entity"
	"gorm.io/gorm"
)

type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) WithTx(tx *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: tx}
}

// --- Service ---

func (r *ServiceRepository) Create(s *entity.Service) error {
	return r.db.Create(s).Error
}

func (r *ServiceRepository) GetByID(id string) (*entity.Service, error) {
	var s entity.Service
	err := r.db.Preload("Category").Where("id = ?", id).First(&s).Error
	return &s, err
}

func (r *ServiceRepository) Save(s *entity.Service) error {
	return r.db.Save(s).Error
}

func (r *ServiceRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&entity.Service{}).Error
}

type ServiceListParams struct {
	Name       string
	Code       string
	CategoryID string
	Page       int
	Size       int
}

func (r *ServiceRepository) List(params ServiceListParams) ([]entity.Service, int64, error) {
	query := r.db.Model(&entity.Service{})
	if params.Name != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+params.Name+"%")
	}
	if params.Code != "" {
		query = query.Where("LOWER(code) LIKE LOWER(?)", "%"+params.Code+"%")
	}
	if params.CategoryID != "" {
		query = query.Where("category_id = ?", params.CategoryID)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var services []entity.Service
	err := query.Preload("Category").Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&services).Error
	return services, total, err
}

// --- ServiceCategory ---

func (r *ServiceRepository) CreateCategory(c *entity.ServiceCategory) error {
	return r.db.Create(c).Error
}

func (r *ServiceRepository) GetCategoryByID(id string) (*entity.ServiceCategory, error) {
	var c entity.ServiceCategory
	err := r.db.Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *ServiceRepository) SaveCategory(c *entity.ServiceCategory) error {
	return r.db.Save(c).Error
}

func (r *ServiceRepository) DeleteCategory(id string) error {
	return r.db.Where("id = ?", id).Delete(&entity.ServiceCategory{}).Error
}

func (r *ServiceRepository) ListCategories(keyword string) ([]entity.ServiceCategory, error) {
	query := r.db.Model(&entity.ServiceCategory{})
	if keyword != "" {
		kw := "%" + keyword + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(code) LIKE LOWER(?)", kw, kw)
	}
	var categories []entity.ServiceCategory
	err := query.Order("code ASC").Find(&categories).Error
	return categories, err
}
