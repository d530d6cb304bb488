package service

import (
	"testing"
	"time"

	"github.com/candat96/mini-cis/internal/config"
	"github.com/candat96/mini-cis/internal/model/entity"
	"github.com/candat96/mini-cis/internal/repository"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, entity.AutoMigrate(db))
	return db
}

func newTestServices(t *testing.T, db *gorm.DB) *Services {
	t.Helper()

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:            "test-secret",
			AccessTokenExpire: time.Hour,
			Issuer:            "mini-cis-test",
		},
	}
	repos := repository.NewRepositories(db)
	return NewServices(db, repos, nil, cfg, zap.NewNop())
}

func createTestDoctor(t *testing.T, svcs *Services, username string) *entity.User {
	t.Helper()

	user, err := svcs.Auth.Register(RegisterRequest{
		Username: username,
		Password: "secret-pass",
		Name:     "Dr. " + username,
		Role:     entity.RoleDoctor,
	})
	require.NoError(t, err)
	return user
}

func createTestPatient(t *testing.T, svcs *Services, name string) *entity.Patient {
	t.Helper()

	patient, err := svcs.Patient.Create(CreatePatientRequest{
		Name:  name,
		Phone: "0900000000",
	})
	require.NoError(t, err)
	return patient
}

func createTestMedicine(t *testing.T, svcs *Services, name string, sellPrice float64) *entity.Medicine {
	t.Helper()

	medicine, err := svcs.Medicine.Create(CreateMedicineRequest{
		Name:      name,
		Unit:      "box",
		SellPrice: decimal.NewFromFloat(sellPrice),
		BuyPrice:  decimal.NewFromFloat(sellPrice / 2),
	})
	require.NoError(t, err)
	return medicine
}

func createTestAppointment(t *testing.T, svcs *Services, patientID, doctorID string) *entity.Appointment {
	t.Helper()

	appointment, err := svcs.Appointment.Create(CreateAppointmentRequest{
		PatientID:       patientID,
		DoctorID:        doctorID,
		AppointmentDate: time.Now(),
	})
	require.NoError(t, err)
	return appointment
}

// stockInMedicine 入库一批指定数量的药品
func stockInMedicine(t *testing.T, svcs *Services, medicineID, batch string, qty int, unitCost float64, expiry *time.Time) {
	t.Helper()

	_, err := svcs.StockIn.Create(CreateStockInRequest{
		Details: []StockInDetailRequest{{
			MedicineID:  medicineID,
			Quantity:    qty,
			UnitPrice:   decimal.NewFromFloat(unitCost),
			ExpiryDate:  expiry,
			BatchNumber: batch,
		}},
	})
	require.NoError(t, err)
}

// totalStock 药品跨批次库存总量
func totalStock(t *testing.T, db *gorm.DB, medicineID string) int {
	t.Helper()

	var total int
	err := db.Model(&entity.Inventory{}).
		Where("medicine_id = ?", medicineID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	require.NoError(t, err)
	return total
}

func daysFromNow(d int) *time.Time {
	t := time.Now().AddDate(0, 0, d)
	return &t
}
