package service

import (
	"github.com/candat96/mini-cis/internal/config"
	"github.com/candat96/mini-cis/internal/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services 服务集合
type Services struct {
	Auth         *AuthService
	Patient      *PatientService
	Catalog      *CatalogService
	Medicine     *MedicineService
	Appointment  *AppointmentService
	Inventory    *InventoryService
	StockIn      *StockInService
	StockOut     *StockOutService
	Prescription *PrescriptionService
	Report       *ReportService
}

// NewServices 创建服务集合
func NewServices(db *gorm.DB, repos *repository.Repositories, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	codes := NewCodeSequence(repos.Code)
	inventory := NewInventoryService(repos.Inventory)

	return &Services{
		Auth:         NewAuthService(repos.User, cfg.JWT),
		Patient:      NewPatientService(db, repos.Patient, codes),
		Catalog:      NewCatalogService(db, repos.Service, codes),
		Medicine:     NewMedicineService(db, repos.Medicine, codes),
		Appointment:  NewAppointmentService(db, repos.Appointment, repos.Patient, repos.Service, repos.User),
		Inventory:    inventory,
		StockIn:      NewStockInService(db, repos.StockIn, repos.Medicine, inventory, codes),
		StockOut:     NewStockOutService(db, repos.StockOut, repos.Medicine, inventory, codes),
		Prescription: NewPrescriptionService(db, repos.Prescription, repos.StockOut, repos.Medicine, repos.Appointment, repos.User, inventory, codes),
		Report:       NewReportService(db, rdb, logger),
	}
}
