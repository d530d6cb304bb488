package repository

import (
	"time"

	"github.com/candat96/mini-cis/internal/model/entity"
	"gorm.io/gorm"
)

type StockInRepository struct {
	db *gorm.DB
}

func NewStockInRepository(db *gorm.DB) *StockInRepository {
	return &StockInRepository{db: db}
}

// WithTx 返回绑定到事务的仓库
func (r *StockInRepository) WithTx(tx *gorm.DB) *StockInRepository {
	return &StockInRepository{db: tx}
}

func (r *StockInRepository) Create(s *entity.StockIn) error {
	return r.db.Create(s).Error
}

func (r *StockInRepository) GetByID(id string) (*entity.StockIn, error) {
	var s entity.StockIn
	err := r.db.
		Preload("Details").
		Preload("Details.Medicine").
		Where("id = ?", id).First(&s).Error
	return &s, err
}

func (r *StockInRepository) ExistsByCode(code string) (bool, error) {
	var count int64
	err := r.db.Model(&entity.StockIn{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *StockInRepository) Delete(id string) error {
	if err := r.db.Where("stock_in_id = ?", id).Delete(&entity.StockInDetail{}).Error; err != nil {
		return err
	}
	return r.db.Where("id = ?", id).Delete(&entity.StockIn{}).Error
}

type StockInListParams struct {
	Code     string
	Supplier string
	FromDate *time.Time
	ToDate   *time.Time
	Page     int
	Size     int
}

func (r *StockInRepository) List(params StockInListParams) ([]entity.StockIn, int64, error) {
	query := r.db.Model(&entity.StockIn{})
	if params.Code != "" {
		query = query.Where("LOWER(code) LIKE LOWER(?)", "%"+params.Code+"%")
	}
	if params.Supplier != "" {
		query = query.Where("LOWER(supplier) LIKE LOWER(?)", "%"+params.Supplier+"%")
	}
	if params.FromDate != nil {
		query = query.Where("stock_in_date >= ?", *params.FromDate)
	}
	if params.ToDate != nil {
		query = query.Where("stock_in_date <= ?", *params.ToDate)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var stockIns []entity.StockIn
	err := query.
		Preload("Details").
		Preload("Details.Medicine").
		Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&stockIns).Error
	return stockIns, total, err
}
