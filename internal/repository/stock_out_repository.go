package repository

import (
	"errors"
	"time"

	"github.com/candat96/mini-cis/internal/model/entity"
	"gorm.io/gorm"
)

type StockOutRepository struct {
	db *gorm.DB
}

func NewStockOutRepository(db *gorm.DB) *StockOutRepository {
	return &StockOutRepository{db: db}
}

// WithTx 返回绑定到事务的仓库
func (r *StockOutRepository) WithTx(tx *gorm.DB) *StockOutRepository {
	return &StockOutRepository{db: tx}
}

func (r *StockOutRepository) Create(s *entity.StockOut) error {
	return r.db.Create(s).Error
}

func (r *StockOutRepository) GetByID(id string) (*entity.StockOut, error) {
	var s entity.StockOut
	err := r.db.
		Preload("Details").
		Preload("Details.Medicine").
		Where("id = ?", id).First(&s).Error
	return &s, err
}

// GetByPrescriptionID 取处方配对的出库单，不存在时返回 nil
func (r *StockOutRepository) GetByPrescriptionID(prescriptionID string) (*entity.StockOut, error) {
	var s entity.StockOut
	err := r.db.
		Preload("Details").
		Where("prescription_id = ?", prescriptionID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StockOutRepository) ExistsByCode(code string) (bool, error) {
	var count int64
	err := r.db.Model(&entity.StockOut{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *StockOutRepository) Save(s *entity.StockOut) error {
	return r.db.Save(s).Error
}

// Delete 删除出库单并级联删除其明细
func (r *StockOutRepository) Delete(id string) error {
	if err := r.db.Where("stock_out_id = ?", id).Delete(&entity.StockOutDetail{}).Error; err != nil {
		return err
	}
	return r.db.Where("id = ?", id).Delete(&entity.StockOut{}).Error
}

func (r *StockOutRepository) CreateDetail(d *entity.StockOutDetail) error {
	return r.db.Create(d).Error
}

func (r *StockOutRepository) SaveDetail(d *entity.StockOutDetail) error {
	return r.db.Save(d).Error
}

func (r *StockOutRepository) FindDetails(stockOutID string) ([]entity.StockOutDetail, error) {
	var details []entity.StockOutDetail
	err := r.db.Where("stock_out_id = ?", stockOutID).Find(&details).Error
	return details, err
}

func (r *StockOutRepository) DeleteDetails(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Where("id IN ?", ids).Delete(&entity.StockOutDetail{}).Error
}

type StockOutListParams struct {
	Code      string
	Recipient string
	Type      entity.StockOutType
	FromDate  *time.Time
	ToDate    *time.Time
	Page      int
	Size      int
}

func (r *StockOutRepository) List(params StockOutListParams) ([]entity.StockOut, int64, error) {
	query := r.db.Model(&entity.StockOut{})
	if params.Code != "" {
		query = query.Where("LOWER(code) LIKE LOWER(?)", "%"+params.Code+"%")
	}
	if params.Recipient != "" {
		query = query.Where("LOWER(recipient) LIKE LOWER(?)", "%"+params.Recipient+"%")
	}
	if params.Type != "" {
		query = query.Where("type = ?", params.Type)
	}
	if params.FromDate != nil {
		query = query.Where("stock_out_date >= ?", *params.FromDate)
	}
	if params.ToDate != nil {
		query = query.Where("stock_out_date <= ?", *params.ToDate)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var stockOuts []entity.StockOut
	err := query.
		Preload("Details").
		Preload("Details.Medicine").
		Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&stockOuts).Error
	return stockOuts, total, err
}
