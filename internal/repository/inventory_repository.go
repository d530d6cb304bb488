package repository

import (
	"time"

	"github.com/candat96/mini-cis/internal/model/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// WithTx 返回绑定到事务的仓库，出入库与处方对账必须走事务
func (r *InventoryRepository) WithTx(tx *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: tx}
}

// forUpdate 对批次行加行锁，防止并发扣减竞态。
// sqlite（测试库）整库串行写，无需也不支持 FOR UPDATE。
func (r *InventoryRepository) forUpdate(query *gorm.DB) *gorm.DB {
	if r.db.Dialector.Name() == "postgres" {
		return query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return query
}

// GetByMedicineAndBatch 取指定药品+批号的批次行，未指定批号按空串处理
func (r *InventoryRepository) GetByMedicineAndBatch(medicineID, batchNumber string) (*entity.Inventory, error) {
	var inv entity.Inventory
	err := r.forUpdate(r.db).
		Where("medicine_id = ? AND batch_number = ?", medicineID, batchNumber).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListByMedicineFIFO 按先过期先出顺序取药品全部批次，无过期日期的排最后
func (r *InventoryRepository) ListByMedicineFIFO(medicineID string) ([]entity.Inventory, error) {
	var batches []entity.Inventory
	err := r.forUpdate(r.db).
		Where("medicine_id = ?", medicineID).
		Order("expiry_date ASC NULLS LAST").
		Order("created_at ASC").
		Find(&batches).Error
	return batches, err
}

// TotalQuantity 药品跨批次总库存
func (r *InventoryRepository) TotalQuantity(medicineID string) (int, error) {
	var result struct{ Total int }
	err := r.db.Model(&entity.Inventory{}).
		Select("COALESCE(SUM(quantity), 0) AS total").
		Where("medicine_id = ?", medicineID).
		Scan(&result).Error
	return result.Total, err
}

func (r *InventoryRepository) Create(inv *entity.Inventory) error {
	return r.db.Create(inv).Error
}

func (r *InventoryRepository) Save(inv *entity.Inventory) error {
	return r.db.Save(inv).Error
}

type InventoryListParams struct {
	MedicineID   string
	MedicineName string
	MedicineCode string
	ExpiryDays   int
	Page         int
	Size         int
}

// List 分页查询仍有库存的批次，按药品名、过期日期排序
func (r *InventoryRepository) List(params InventoryListParams) ([]entity.Inventory, int64, error) {
	query := r.db.Model(&entity.Inventory{}).
		Joins("JOIN medicine ON medicine.id = inventory.medicine_id").
		Where("inventory.quantity > 0")
	if params.MedicineID != "" {
		query = query.Where("inventory.medicine_id = ?", params.MedicineID)
	}
	if params.MedicineName != "" {
		query = query.Where("LOWER(medicine.name) LIKE LOWER(?)", "%"+params.MedicineName+"%")
	}
	if params.MedicineCode != "" {
		query = query.Where("LOWER(medicine.code) LIKE LOWER(?)", "%"+params.MedicineCode+"%")
	}
	if params.ExpiryDays > 0 {
		futureDate := time.Now().AddDate(0, 0, params.ExpiryDays)
		query = query.Where("inventory.expiry_date IS NOT NULL AND inventory.expiry_date <= ?", futureDate)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var batches []entity.Inventory
	err := query.Preload("Medicine").
		Order("medicine.name ASC").
		Order("inventory.expiry_date ASC NULLS LAST").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&batches).Error
	return batches, total, err
}
