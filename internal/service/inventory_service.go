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

// InventoryService 库存台账：批次维度的入库累加、可用量校验、
// 先过期先出的扣减、以及处方回退时的冲正。
type InventoryService struct {
	repo *repository.InventoryRepository
}

func NewInventoryService(repo *repository.InventoryRepository) *InventoryService {
	return &InventoryService{repo: repo}
}

func (s *InventoryService) List(params repository.InventoryListParams) ([]entity.Inventory, int64, error) {
	return s.repo.List(params)
}

func (s *InventoryService) repoFor(tx *gorm.DB) *repository.InventoryRepository {
	if tx != nil {
		return s.repo.WithTx(tx)
	}
	return s.repo
}

// IncreaseStock 入库：已有批次按加权平均重算成本并累加数量，
// 过期日期取较晚者；新批次按入库单价建档。
func (s *InventoryService) IncreaseStock(tx *gorm.DB, medicineID, batchNumber string, quantity int, unitCost decimal.Decimal, expiryDate *time.Time) error {
	repo := s.repoFor(tx)

	inv, err := repo.GetByMedicineAndBatch(medicineID, batchNumber)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("load inventory batch: %w", err)
		}
		inv = &entity.Inventory{
			MedicineID:  medicineID,
			BatchNumber: batchNumber,
			Quantity:    quantity,
			AverageCost: unitCost,
			ExpiryDate:  expiryDate,
		}
		return repo.Create(inv)
	}

	oldQty := decimal.NewFromInt(int64(inv.Quantity))
	addQty := decimal.NewFromInt(int64(quantity))
	totalValue := inv.AverageCost.Mul(oldQty).Add(unitCost.Mul(addQty))
	newQty := inv.Quantity + quantity

	inv.Quantity = newQty
	inv.AverageCost = totalValue.Div(decimal.NewFromInt(int64(newQty))).Round(2)
	if expiryDate != nil && (inv.ExpiryDate == nil || expiryDate.After(*inv.ExpiryDate)) {
		inv.ExpiryDate = expiryDate
	}
	return repo.Save(inv)
}

// CheckAvailability 校验可用量：指定批号时比对单批次，否则比对跨批次总量。
// 不足时返回 InsufficientStock 并携带当前可用数量。
func (s *InventoryService) CheckAvailability(tx *gorm.DB, medicineID string, quantity int, batchNumber string) error {
	repo := s.repoFor(tx)

	if batchNumber != "" {
		inv, err := repo.GetByMedicineAndBatch(medicineID, batchNumber)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.InsufficientStock(medicineID, quantity, 0)
			}
			return fmt.Errorf("load inventory batch: %w", err)
		}
		if inv.Quantity < quantity {
			return apperr.InsufficientStock(medicineID, quantity, inv.Quantity)
		}
		return nil
	}

	total, err := repo.TotalQuantity(medicineID)
	if err != nil {
		return fmt.Errorf("sum inventory: %w", err)
	}
	if total < quantity {
		return apperr.InsufficientStock(medicineID, quantity, total)
	}
	return nil
}

// DecreaseStock 出库扣减。指定批号时直接从该批次扣（显式选批绕过先过期先出），
// 否则按过期日期升序、建档时间升序逐批扣减。扣减前先做可用量校验，
// 失败不会留下部分扣减。
func (s *InventoryService) DecreaseStock(tx *gorm.DB, medicineID string, quantity int, batchNumber string) error {
	repo := s.repoFor(tx)

	if err := s.CheckAvailability(tx, medicineID, quantity, batchNumber); err != nil {
		return err
	}

	if batchNumber != "" {
		inv, err := repo.GetByMedicineAndBatch(medicineID, batchNumber)
		if err != nil {
			return fmt.Errorf("load inventory batch: %w", err)
		}
		inv.Quantity -= quantity
		return repo.Save(inv)
	}

	batches, err := repo.ListByMedicineFIFO(medicineID)
	if err != nil {
		return fmt.Errorf("list inventory batches: %w", err)
	}

	remaining := quantity
	for i := range batches {
		if remaining <= 0 {
			break
		}
		inv := &batches[i]
		if inv.Quantity <= 0 {
			continue
		}
		deduct := remaining
		if inv.Quantity < deduct {
			deduct = inv.Quantity
		}
		inv.Quantity -= deduct
		remaining -= deduct
		if err := repo.Save(inv); err != nil {
			return fmt.Errorf("save inventory batch: %w", err)
		}
	}

	if remaining > 0 {
		return apperr.InsufficientStock(medicineID, quantity, quantity-remaining)
	}
	return nil
}

// CreditBack 冲正：把数量还给该药品最早过期的批次。按药品聚合冲正，
// 不追溯原始扣减批次，药品维度总量保持精确。
func (s *InventoryService) CreditBack(tx *gorm.DB, medicineID string, quantity int) error {
	repo := s.repoFor(tx)

	batches, err := repo.ListByMedicineFIFO(medicineID)
	if err != nil {
		return fmt.Errorf("list inventory batches: %w", err)
	}
	if len(batches) == 0 {
		inv := &entity.Inventory{
			MedicineID:  medicineID,
			BatchNumber: "",
			Quantity:    quantity,
		}
		return repo.Create(inv)
	}

	inv := &batches[0]
	inv.Quantity += quantity
	return repo.Save(inv)
}
