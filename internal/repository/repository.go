package repository

import "gorm.io/gorm"

// Repositories 诊所仓库集合
type Repositories struct {
	User         *UserRepository
	Patient      *PatientRepository
	Service      *ServiceRepository
	Medicine     *MedicineRepository
	Appointment  *AppointmentRepository
	Inventory    *InventoryRepository
	StockIn      *StockInRepository
	StockOut     *StockOutRepository
	Prescription *PrescriptionRepository
	Code         *CodeRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Patient:      NewPatientRepository(db),
		Service:      NewServiceRepository(db),
		Medicine:     NewMedicineRepository(db),
		Appointment:  NewAppointmentRepository(db),
		Inventory:    NewInventoryRepository(db),
		StockIn:      NewStockInRepository(db),
		StockOut:     NewStockOutRepository(db),
		Prescription: NewPrescriptionRepository(db),
		Code:         NewCodeRepository(db),
	}
}
