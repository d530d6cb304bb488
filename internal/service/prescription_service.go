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

// PrescriptionService 处方与配对出库单、库存批次三方对账的入口。
// 创建/更新/删除各自跑在一个事务里，任一步失败整体回滚，
// 不会留下处方、出库单、库存互相脱节的中间状态。
type PrescriptionService struct {
	db           *gorm.DB
	repo         *repository.PrescriptionRepository
	stockOuts    *repository.StockOutRepository
	medicines    *repository.MedicineRepository
	appointments *repository.AppointmentRepository
	users        *repository.UserRepository
	inventory    *InventoryService
	codes        *CodeSequence
}

func NewPrescriptionService(
	db *gorm.DB,
	repo *repository.PrescriptionRepository,
	stockOuts *repository.StockOutRepository,
	medicines *repository.MedicineRepository,
	appointments *repository.AppointmentRepository,
	users *repository.UserRepository,
	inventory *InventoryService,
	codes *CodeSequence,
) *PrescriptionService {
	return &PrescriptionService{
		db:           db,
		repo:         repo,
		stockOuts:    stockOuts,
		medicines:    medicines,
		appointments: appointments,
		users:        users,
		inventory:    inventory,
		codes:        codes,
	}
}

type PrescriptionMedicineRequest struct {
	ID          string `json:"id"`
	MedicineID  string `json:"medicine_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,gt=0"`
	Dosage      string `json:"dosage"`
	Frequency   string `json:"frequency"`
	Duration    string `json:"duration"`
	Instruction string `json:"instruction"`
	Note        string `json:"note"`
}

type CreatePrescriptionRequest struct {
	AppointmentID string                        `json:"appointment_id" binding:"required"`
	DoctorID      string                        `json:"doctor_id" binding:"required"`
	Note          string                        `json:"note"`
	Medicines     []PrescriptionMedicineRequest `json:"medicines" binding:"required,min=1,dive"`
}

type UpdatePrescriptionRequest struct {
	DoctorID  string                        `json:"doctor_id"`
	Status    entity.PrescriptionStatus     `json:"status"`
	Note      *string                       `json:"note"`
	Medicines []PrescriptionMedicineRequest `json:"medicines"`
}

// Create 开方：校验预约与医生，生成 DT 编号，按当前售价快照落明细，
// 生成配对出库单并按先过期先出扣减库存。
// validateUniqueMedicines 处方明细与出库单明细按药品对账，
// 同一药品不允许拆成多行，否则两侧数量无法一一对应。
func validateUniqueMedicines(lines []PrescriptionMedicineRequest) error {
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		if seen[line.MedicineID] {
			return apperr.Validation(fmt.Sprintf("duplicate medicine in prescription: %s", line.MedicineID))
		}
		seen[line.MedicineID] = true
	}
	return nil
}

func (s *PrescriptionService) Create(req CreatePrescriptionRequest) (*entity.Prescription, error) {
	if err := validateUniqueMedicines(req.Medicines); err != nil {
		return nil, err
	}
	appointment, err := s.appointments.GetWithPatient(req.AppointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("appointment", req.AppointmentID)
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if _, err := s.users.GetByID(req.DoctorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("doctor", req.DoctorID)
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}

	var prescriptionID string
	err = retryOnDuplicate(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			medicines := s.medicines.WithTx(tx)

			code, err := s.codes.WithTx(tx).Next(&entity.Prescription{}, codePrefixPrescription, codeWidthPrescription)
			if err != nil {
				return err
			}

			prescription := &entity.Prescription{
				Code:          code,
				Status:        entity.PrescriptionDraft,
				Note:          req.Note,
				AppointmentID: req.AppointmentID,
				DoctorID:      req.DoctorID,
			}
			if err := repo.Create(prescription); err != nil {
				return err
			}

			totalAmount := decimal.Zero
			details := make([]entity.PrescriptionDetail, 0, len(req.Medicines))
			for _, line := range req.Medicines {
				medicine, err := medicines.GetByID(line.MedicineID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return apperr.NotFound("medicine", line.MedicineID)
					}
					return fmt.Errorf("load medicine: %w", err)
				}
				if err := s.inventory.CheckAvailability(tx, line.MedicineID, line.Quantity, ""); err != nil {
					return err
				}

				amount := medicine.SellPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
				totalAmount = totalAmount.Add(amount)

				detail := entity.PrescriptionDetail{
					PrescriptionID: prescription.ID,
					MedicineID:     medicine.ID,
					Price:          medicine.SellPrice,
					Quantity:       line.Quantity,
					Amount:         amount,
					Dosage:         line.Dosage,
					Frequency:      line.Frequency,
					Duration:       line.Duration,
					Instruction:    line.Instruction,
					Note:           line.Note,
				}
				if err := repo.CreateDetail(&detail); err != nil {
					return err
				}
				details = append(details, detail)
			}

			prescription.TotalAmount = totalAmount
			if err := repo.Save(prescription); err != nil {
				return err
			}

			if err := s.createStockOutTx(tx, prescription, details, appointment.Patient.Name); err != nil {
				return err
			}

			prescriptionID = prescription.ID
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(prescriptionID)
}

// Update 修改处方，仅 DRAFT 状态允许。提供药品列表时按明细 ID 作差：
// 缺席的明细删除；数量增加只校验增量；全新行校验全量；总额按新列表重算。
// 随后与配对出库单按药品维度对账。
func (s *PrescriptionService) Update(id string, req UpdatePrescriptionRequest) (*entity.Prescription, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if existing.Status != entity.PrescriptionDraft {
		return nil, apperr.InvalidState("only DRAFT prescriptions can be updated")
	}
	if err := validateUniqueMedicines(req.Medicines); err != nil {
		return nil, err
	}
	if req.Status != "" && !req.Status.IsValid() {
		return nil, apperr.Validation(fmt.Sprintf("invalid prescription status: %s", req.Status))
	}
	if req.DoctorID != "" && req.DoctorID != existing.DoctorID {
		if _, err := s.users.GetByID(req.DoctorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("doctor", req.DoctorID)
			}
			return nil, fmt.Errorf("load doctor: %w", err)
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		medicines := s.medicines.WithTx(tx)

		var prescription entity.Prescription
		if err := tx.Where("id = ?", id).First(&prescription).Error; err != nil {
			return fmt.Errorf("load prescription: %w", err)
		}

		if req.DoctorID != "" {
			prescription.DoctorID = req.DoctorID
		}
		if req.Status != "" {
			prescription.Status = req.Status
		}
		if req.Note != nil {
			prescription.Note = *req.Note
		}

		if len(req.Medicines) > 0 {
			current, err := repo.FindDetails(id)
			if err != nil {
				return fmt.Errorf("load prescription details: %w", err)
			}
			currentByID := make(map[string]*entity.PrescriptionDetail, len(current))
			for i := range current {
				currentByID[current[i].ID] = &current[i]
			}

			// 不在新列表里的明细删除
			keep := make(map[string]bool, len(req.Medicines))
			for _, line := range req.Medicines {
				if line.ID != "" {
					keep[line.ID] = true
				}
			}
			var toDelete []string
			for i := range current {
				if !keep[current[i].ID] {
					toDelete = append(toDelete, current[i].ID)
				}
			}
			if err := repo.DeleteDetails(toDelete); err != nil {
				return fmt.Errorf("delete prescription details: %w", err)
			}

			totalAmount := decimal.Zero
			for _, line := range req.Medicines {
				medicine, err := medicines.GetByID(line.MedicineID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return apperr.NotFound("medicine", line.MedicineID)
					}
					return fmt.Errorf("load medicine: %w", err)
				}

				if line.ID != "" {
					detail, ok := currentByID[line.ID]
					if !ok {
						continue
					}
					// 数量增加只需校验增量部分
					if line.Quantity > detail.Quantity {
						if err := s.inventory.CheckAvailability(tx, line.MedicineID, line.Quantity-detail.Quantity, ""); err != nil {
							return err
						}
					}
					amount := medicine.SellPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
					totalAmount = totalAmount.Add(amount)

					detail.MedicineID = medicine.ID
					detail.Price = medicine.SellPrice
					detail.Quantity = line.Quantity
					detail.Amount = amount
					detail.Dosage = line.Dosage
					detail.Frequency = line.Frequency
					detail.Duration = line.Duration
					detail.Instruction = line.Instruction
					detail.Note = line.Note
					if err := repo.SaveDetail(detail); err != nil {
						return err
					}
					continue
				}

				if err := s.inventory.CheckAvailability(tx, line.MedicineID, line.Quantity, ""); err != nil {
					return err
				}
				amount := medicine.SellPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
				totalAmount = totalAmount.Add(amount)
				detail := entity.PrescriptionDetail{
					PrescriptionID: id,
					MedicineID:     medicine.ID,
					Price:          medicine.SellPrice,
					Quantity:       line.Quantity,
					Amount:         amount,
					Dosage:         line.Dosage,
					Frequency:      line.Frequency,
					Duration:       line.Duration,
					Instruction:    line.Instruction,
					Note:           line.Note,
				}
				if err := repo.CreateDetail(&detail); err != nil {
					return err
				}
			}
			prescription.TotalAmount = totalAmount
		}

		if err := repo.Save(&prescription); err != nil {
			return err
		}

		return s.reconcileStockOut(tx, &prescription)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Remove 删除处方，仅 DRAFT 状态允许。先把配对出库单的每行数量冲正回库存，
// 再删出库单和处方（明细级联删除）。
func (s *PrescriptionService) Remove(id string) error {
	existing, err := s.Get(id)
	if err != nil {
		return err
	}
	if existing.Status != entity.PrescriptionDraft {
		return apperr.InvalidState("only DRAFT prescriptions can be removed")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		stockOuts := s.stockOuts.WithTx(tx)

		stockOut, err := stockOuts.GetByPrescriptionID(id)
		if err != nil {
			return fmt.Errorf("load paired stock-out: %w", err)
		}
		if stockOut != nil {
			for _, d := range stockOut.Details {
				if err := s.inventory.CreditBack(tx, d.MedicineID, d.Quantity); err != nil {
					return err
				}
			}
			if err := stockOuts.Delete(stockOut.ID); err != nil {
				return fmt.Errorf("delete paired stock-out: %w", err)
			}
		}

		return s.repo.WithTx(tx).Delete(id)
	})
}

func (s *PrescriptionService) Get(id string) (*entity.Prescription, error) {
	prescription, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("prescription", id)
		}
		return nil, err
	}
	return prescription, nil
}

func (s *PrescriptionService) List(params repository.PrescriptionListParams) ([]entity.Prescription, int64, error) {
	return s.repo.List(params)
}

// createStockOutTx 为处方生成配对出库单：XK 编号、收货人为患者姓名、
// 备注引用处方编号，每行处方明细对应一行出库明细并扣减库存。
func (s *PrescriptionService) createStockOutTx(tx *gorm.DB, prescription *entity.Prescription, details []entity.PrescriptionDetail, patientName string) error {
	stockOuts := s.stockOuts.WithTx(tx)

	code, err := s.codes.WithTx(tx).Next(&entity.StockOut{}, codePrefixStockOut, codeWidthStockOut)
	if err != nil {
		return err
	}

	stockOut := &entity.StockOut{
		Code:           code,
		StockOutDate:   time.Now(),
		Recipient:      patientName,
		Note:           fmt.Sprintf("Dispense for prescription %s", prescription.Code),
		TotalAmount:    prescription.TotalAmount,
		Type:           entity.StockOutPrescription,
		PrescriptionID: &prescription.ID,
	}
	if err := stockOuts.Create(stockOut); err != nil {
		return err
	}

	for _, d := range details {
		detail := entity.StockOutDetail{
			StockOutID: stockOut.ID,
			MedicineID: d.MedicineID,
			Quantity:   d.Quantity,
			UnitPrice:  d.Price,
			Amount:     d.Amount,
		}
		if err := stockOuts.CreateDetail(&detail); err != nil {
			return err
		}
		if err := s.inventory.DecreaseStock(tx, d.MedicineID, d.Quantity, ""); err != nil {
			return err
		}
	}
	return nil
}

// reconcileStockOut 处方更新后与配对出库单对账。出库明细按药品维度与
// 处方明细对齐：多出的药品冲正并删行，数量变化按差额增减库存，新增药品
// 建行并全量扣减。
func (s *PrescriptionService) reconcileStockOut(tx *gorm.DB, prescription *entity.Prescription) error {
	repo := s.repo.WithTx(tx)
	stockOuts := s.stockOuts.WithTx(tx)

	stockOut, err := stockOuts.GetByPrescriptionID(prescription.ID)
	if err != nil {
		return fmt.Errorf("load paired stock-out: %w", err)
	}
	if stockOut == nil {
		// 尚无配对出库单（历史数据），补建
		appointment, err := s.appointments.WithTx(tx).GetWithPatient(prescription.AppointmentID)
		if err != nil {
			return fmt.Errorf("load appointment: %w", err)
		}
		details, err := repo.FindDetails(prescription.ID)
		if err != nil {
			return fmt.Errorf("load prescription details: %w", err)
		}
		return s.createStockOutTx(tx, prescription, details, appointment.Patient.Name)
	}

	stockOut.TotalAmount = prescription.TotalAmount
	if err := stockOuts.Save(stockOut); err != nil {
		return err
	}

	prescriptionDetails, err := repo.FindDetails(prescription.ID)
	if err != nil {
		return fmt.Errorf("load prescription details: %w", err)
	}
	stockOutDetails, err := stockOuts.FindDetails(stockOut.ID)
	if err != nil {
		return fmt.Errorf("load stock-out details: %w", err)
	}

	// 处方中已不存在的药品：冲正库存并删除出库明细
	inPrescription := make(map[string]bool, len(prescriptionDetails))
	for _, d := range prescriptionDetails {
		inPrescription[d.MedicineID] = true
	}
	var toDelete []string
	for i := range stockOutDetails {
		if !inPrescription[stockOutDetails[i].MedicineID] {
			if err := s.inventory.CreditBack(tx, stockOutDetails[i].MedicineID, stockOutDetails[i].Quantity); err != nil {
				return err
			}
			toDelete = append(toDelete, stockOutDetails[i].ID)
		}
	}
	if err := stockOuts.DeleteDetails(toDelete); err != nil {
		return fmt.Errorf("delete stock-out details: %w", err)
	}

	byMedicine := make(map[string]*entity.StockOutDetail, len(stockOutDetails))
	for i := range stockOutDetails {
		byMedicine[stockOutDetails[i].MedicineID] = &stockOutDetails[i]
	}

	for _, pd := range prescriptionDetails {
		detail, ok := byMedicine[pd.MedicineID]
		if !ok {
			// 新增药品：建出库明细并全量扣减
			newDetail := entity.StockOutDetail{
				StockOutID: stockOut.ID,
				MedicineID: pd.MedicineID,
				Quantity:   pd.Quantity,
				UnitPrice:  pd.Price,
				Amount:     pd.Amount,
			}
			if err := stockOuts.CreateDetail(&newDetail); err != nil {
				return err
			}
			if err := s.inventory.DecreaseStock(tx, pd.MedicineID, pd.Quantity, ""); err != nil {
				return err
			}
			continue
		}

		if detail.Quantity != pd.Quantity {
			diff := pd.Quantity - detail.Quantity
			if diff > 0 {
				if err := s.inventory.DecreaseStock(tx, pd.MedicineID, diff, ""); err != nil {
					return err
				}
			} else {
				if err := s.inventory.CreditBack(tx, pd.MedicineID, -diff); err != nil {
					return err
				}
			}
		}

		detail.Quantity = pd.Quantity
		detail.UnitPrice = pd.Price
		detail.Amount = pd.Amount
		if err := stockOuts.SaveDetail(detail); err != nil {
			return err
		}
	}
	return nil
}
