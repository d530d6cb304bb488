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

type StockOutService struct {
	db        *gorm.DB
	repo      *repository.StockOutRepository
	medicines *repository.MedicineRepository
	inventory *InventoryService
	codes     *CodeSequence
}

func NewStockOutService(db *gorm.DB, repo *repository.StockOutRepository, medicines *repository.MedicineRepository, inventory *InventoryService, codes *CodeSequence) *StockOutService {
	return &StockOutService{db: db, repo: repo, medicines: medicines, inventory: inventory, codes: codes}
}

type StockOutDetailRequest struct {
	MedicineID  string          `json:"medicine_id" binding:"required"`
	Quantity    int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
	BatchNumber string          `json:"batch_number"`
}

type CreateStockOutRequest struct {
	Code         string                  `json:"code"`
	StockOutDate time.Time               `json:"stock_out_date"`
	Recipient    string                  `json:"recipient"`
	Note         string                  `json:"note"`
	Details      []StockOutDetailRequest `json:"details" binding:"required,min=1,dive"`
}

// Create 创建手工出库单（type=OTHER）：校验药品与可用量、落单据与明细、
// 逐行扣减库存，全程一个事务。处方出库单由处方对账流程生成，不走这里。
func (s *StockOutService) Create(req CreateStockOutRequest) (*entity.StockOut, error) {
	if req.Code != "" {
		exists, err := s.repo.ExistsByCode(req.Code)
		if err != nil {
			return nil, fmt.Errorf("check stock-out code: %w", err)
		}
		if exists {
			return nil, apperr.Conflict("stock_out", fmt.Sprintf("stock-out code already exists: %s", req.Code))
		}
	}
	if req.StockOutDate.IsZero() {
		req.StockOutDate = time.Now()
	}

	var stockOutID string
	err := retryOnDuplicate(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			medicines := s.medicines.WithTx(tx)

			code := req.Code
			if code == "" {
				var err error
				code, err = s.codes.WithTx(tx).Next(&entity.StockOut{}, codePrefixStockOut, codeWidthStockOut)
				if err != nil {
					return err
				}
			}

			totalAmount := decimal.Zero
			details := make([]entity.StockOutDetail, 0, len(req.Details))
			for _, line := range req.Details {
				if _, err := medicines.GetByID(line.MedicineID); err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return apperr.NotFound("medicine", line.MedicineID)
					}
					return fmt.Errorf("load medicine: %w", err)
				}
				if err := s.inventory.CheckAvailability(tx, line.MedicineID, line.Quantity, line.BatchNumber); err != nil {
					return err
				}

				amount := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
				totalAmount = totalAmount.Add(amount)
				details = append(details, entity.StockOutDetail{
					MedicineID:  line.MedicineID,
					Quantity:    line.Quantity,
					UnitPrice:   line.UnitPrice,
					Amount:      amount,
					BatchNumber: line.BatchNumber,
				})
			}

			stockOut := &entity.StockOut{
				Code:         code,
				StockOutDate: req.StockOutDate,
				Recipient:    req.Recipient,
				Note:         req.Note,
				TotalAmount:  totalAmount,
				Type:         entity.StockOutOther,
				Details:      details,
			}
			if err := repo.Create(stockOut); err != nil {
				return err
			}

			for _, d := range stockOut.Details {
				if err := s.inventory.DecreaseStock(tx, d.MedicineID, d.Quantity, d.BatchNumber); err != nil {
					return err
				}
			}

			stockOutID = stockOut.ID
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(stockOutID)
}

func (s *StockOutService) Get(id string) (*entity.StockOut, error) {
	stockOut, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("stock_out", id)
		}
		return nil, err
	}
	return stockOut, nil
}

func (s *StockOutService) List(params repository.StockOutListParams) ([]entity.StockOut, int64, error) {
	return s.repo.List(params)
}

// Delete 删除手工出库单。处方配对的出库单只能随处方一起回退删除。
func (s *StockOutService) Delete(id string) error {
	stockOut, err := s.Get(id)
	if err != nil {
		return err
	}
	if stockOut.Type == entity.StockOutPrescription {
		return apperr.InvalidState("prescription stock-out can only be removed with its prescription")
	}
	return s.repo.Delete(id)
}
