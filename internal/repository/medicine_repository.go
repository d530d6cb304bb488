package repository

import (
	"github.com/candat96/mini-cis/internal/model/entity"
	"gorm.io/gorm"
)

type MedicineRepository struct {
	db *gorm.DB
}

func NewMedicineRepository(db *gorm.DB) *MedicineRepository {
	return &MedicineRepository{db: db}
}

// WithTx 返回绑定到事务的仓库
func (r *MedicineRepository) WithTx(tx *gorm.DB) *MedicineRepository {
	return &MedicineRepository{db: tx}
}

// --- Medicine ---

func (r *MedicineRepository) Create(m *entity.Medicine) error {
	return r.db.Create(m).Error
}

func (r *MedicineRepository) GetByID(id string) (*entity.Medicine, error) {
	var m entity.Medicine
	err := r.db.Preload("Category").Where("id = ?", id).First(&m).Error
	return &m, err
}

func (r *MedicineRepository) ExistsByCode(code string) (bool, error) {
	var count int64
	err := r.db.Model(&entity.Medicine{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *MedicineRepository) Save(m *entity.Medicine) error {
	return r.db.Save(m).Error
}

func (r *MedicineRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&entity.Medicine{}).Error
}

type MedicineListParams struct {
	Name       string
	Code       string
	CategoryID string
	Page       int
	Size       int
}

func (r *MedicineRepository) List(params MedicineListParams) ([]entity.Medicine, int64, error) {
	query := r.db.Model(&entity.Medicine{})
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
	var medicines []entity.Medicine
	err := query.Preload("Category").Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&medicines).Error
	return medicines, total, err
}

// --- MedicineCategory ---

func (r *MedicineRepository) CreateCategory(c *entity.MedicineCategory) error {
	return r.db.Create(c).Error
}

func (r *MedicineRepository) GetCategoryByID(id string) (*entity.MedicineCategory, error) {
	var c entity.MedicineCategory
	err := r.db.Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *MedicineRepository) SaveCategory(c *entity.MedicineCategory) error {
	return r.db.Save(c).Error
}

func (r *MedicineRepository) DeleteCategory(id string) error {
	return r.db.Where("id = ?", id).Delete(&entity.MedicineCategory{}).Error
}

func (r *MedicineRepository) ListCategories(keyword string) ([]entity.MedicineCategory, error) {
	query := r.db.Model(&entity.MedicineCategory{})
	if keyword != "" {
		kw := "%" + keyword + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(code) LIKE LOWER(?)", kw, kw)
	}
	var categories []entity.MedicineCategory
	err := query.Order("code ASC").Find(&categories).Error
	return categories, err
}
