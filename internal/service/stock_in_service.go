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

type StockInService struct {
	db        *gorm.DB
	repo      *repository.StockInRepository
	medicines *repository.MedicineRepository
	inventory *InventoryService
	codes     *CodeSequence
}

func NewStockInService(db *gorm.DB, repo *repository.StockInRepository, medicines *repository.MedicineRepository, inventory *InventoryService, codes *CodeSequence) *StockInService {
	return &StockInService{db: db, repo: repo, medicines: medicines, inventory: inventory, codes: codes}
}

type StockInDetailRequest struct {
	MedicineID  string          `json:"medicine_id" binding:"required"`
	Quantity    int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
	ExpiryDate  *time.Time      `json:"expiry_date"`
	BatchNumber string          `json:"batch_number"`
}

type CreateStockInRequest struct {
	Code        string                 `json:"code"`
	StockInDate time.Time              `json:"stock_in_date"`
	Supplier    string                 `json:"supplier"`
	Note        string                 `json:"note"`
	Details     []StockInDetailRequest `json:"details" binding:"required,min=1,dive"`
}

// Create 创建入库单：校验药品、汇总金额、落单据与明细，再逐行入库存，
// 全程一个事务。
func (s *StockInService) Create(req CreateStockInRequest) (*entity.StockIn, error) {
	// 未提供编号则自动生成；显式编号需确保未被占用
	if req.Code != "" {
		exists, err := s.repo.ExistsByCode(req.Code)
		if err != nil {
			return nil, fmt.Errorf("check stock-in code: %w", err)
		}
		if exists {
			return nil, apperr.Conflict("stock_in", fmt.Sprintf("stock-in code already exists: %s", req.Code))
		}
	}
	if req.StockInDate.IsZero() {
		req.StockInDate = time.Now()
	}

	var stockInID string
	err := retryOnDuplicate(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			medicines := s.medicines.WithTx(tx)

			code := req.Code
			if code == "" {
				var err error
				code, err = s.codes.WithTx(tx).Next(&entity.StockIn{}, codePrefixStockIn, codeWidthStockIn)
				if err != nil {
					return err
				}
			}

			totalAmount := decimal.Zero
			details := make([]entity.StockInDetail, 0, len(req.Details))
			for _, line := range req.Details {
				if _, err := medicines.GetByID(line.MedicineID); err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return apperr.NotFound("medicine", line.MedicineID)
					}
					return fmt.Errorf("load medicine: %w", err)
				}

				amount := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
				totalAmount = totalAmount.Add(amount)
				details = append(details, entity.StockInDetail{
					MedicineID:  line.MedicineID,
					Quantity:    line.Quantity,
					UnitPrice:   line.UnitPrice,
					Amount:      amount,
					ExpiryDate:  line.ExpiryDate,
					BatchNumber: line.BatchNumber,
				})
			}

			stockIn := &entity.StockIn{
				Code:        code,
				StockInDate: req.StockInDate,
				Supplier:    req.Supplier,
				Note:        req.Note,
				TotalAmount: totalAmount,
				Details:     details,
			}
			if err := repo.Create(stockIn); err != nil {
				return err
			}

			// 逐行累加库存批次
			for _, d := range stockIn.Details {
				if err := s.inventory.IncreaseStock(tx, d.MedicineID, d.BatchNumber, d.Quantity, d.UnitPrice, d.ExpiryDate); err != nil {
					return err
				}
			}

			stockInID = stockIn.ID
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(stockInID)
}

func (s *StockInService) Get(id string) (*entity.StockIn, error) {
	stockIn, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("stock_in", id)
		}
		return nil, err
	}
	return stockIn, nil
}

func (s *StockInService) List(params repository.StockInListParams) ([]entity.StockIn, int64, error) {
	return s.repo.List(params)
}

// Delete 删除入库单及其明细。
// TODO: 已入库数量可能已被消耗，删除时暂不回冲库存，待盘点流程定型后处理。
func (s *StockInService) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}
