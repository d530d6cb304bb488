package service

import (
	"testing"

	"github.com/candat96/mini-cis/internal/apperr"
	"github.com/candat96/mini-cis/internal/model/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockOutDepletesEarliestExpiryFirst(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)
	medicine := createTestMedicine(t, svcs, "Amoxicillin", 10)

	// LOT-B 先过期，应先被扣
	stockInMedicine(t, svcs, medicine.ID, "LOT-A", 50, 5, daysFromNow(365))
	stockInMedicine(t, svcs, medicine.ID, "LOT-B", 30, 5, daysFromNow(30))

	_, err := svcs.StockOut.Create(CreateStockOutRequest{
		Recipient: "Ward 3",
		Details: []StockOutDetailRequest{{
			MedicineID: medicine.ID,
			Quantity:   40,
			UnitPrice:  decimal.NewFromInt(10),
		}},
	})
	require.NoError(t, err)

	var lotA, lotB entity.Inventory
	require.NoError(t, db.Where("medicine_id = ? AND batch_number = ?", medicine.ID, "LOT-A").First(&lotA).Error)
	require.NoError(t, db.Where("medicine_id = ? AND batch_number = ?", medicine.ID, "LOT-B").First(&lotB).Error)
	assert.Equal(t, 0, lotB.Quantity)
	assert.Equal(t, 40, lotA.Quantity)
}

func TestStockOutExplicitBatchBypassesExpiryOrder(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)
	medicine := createTestMedicine(t, svcs, "Ibuprofen", 10)

	stockInMedicine(t, svcs, medicine.ID, "LOT-A", 50, 5, daysFromNow(365))
	stockInMedicine(t, svcs, medicine.ID, "LOT-B", 30, 5, daysFromNow(30))

	_, err := svcs.StockOut.Create(CreateStockOutRequest{
		Details: []StockOutDetailRequest{{
			MedicineID:  medicine.ID,
			Quantity:    20,
			UnitPrice:   decimal.NewFromInt(10),
			BatchNumber: "LOT-A",
		}},
	})
	require.NoError(t, err)

	var lotA, lotB entity.Inventory
	require.NoError(t, db.Where("medicine_id = ? AND batch_number = ?", medicine.ID, "LOT-A").First(&lotA).Error)
	require.NoError(t, db.Where("medicine_id = ? AND batch_number = ?", medicine.ID, "LOT-B").First(&lotB).Error)
	assert.Equal(t, 30, lotA.Quantity)
	assert.Equal(t, 30, lotB.Quantity)
}

func TestStockOutInsufficientStockFailsWhole(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)
	medicine := createTestMedicine(t, svcs, "Aspirin", 10)
	other := createTestMedicine(t, svcs, "Cetirizine", 10)

	stockInMedicine(t, svcs, medicine.ID, "", 10, 5, nil)
	stockInMedicine(t, svcs, other.ID, "", 10, 5, nil)

	_, err := svcs.StockOut.Create(CreateStockOutRequest{
		Details: []StockOutDetailRequest{
			{MedicineID: medicine.ID, Quantity: 5, UnitPrice: decimal.NewFromInt(10)},
			{MedicineID: other.ID, Quantity: 11, UnitPrice: decimal.NewFromInt(10)},
		},
	})
	require.Error(t, err)

	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindInsufficientStock, appErr.Kind)
	assert.Equal(t, 10, appErr.Available)

	// 第一行也不应被扣
	assert.Equal(t, 10, totalStock(t, db, medicine.ID))
	assert.Equal(t, 10, totalStock(t, db, other.ID))
}

func TestStockOutDeleteRefusesPrescriptionType(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)

	doctor := createTestDoctor(t, svcs, "house")
	patient := createTestPatient(t, svcs, "Bob")
	appointment := createTestAppointment(t, svcs, patient.ID, doctor.ID)
	medicine := createTestMedicine(t, svcs, "Amoxicillin", 10)
	stockInMedicine(t, svcs, medicine.ID, "", 50, 5, nil)

	prescription, err := svcs.Prescription.Create(CreatePrescriptionRequest{
		AppointmentID: appointment.ID,
		DoctorID:      doctor.ID,
		Medicines: []PrescriptionMedicineRequest{
			{MedicineID: medicine.ID, Quantity: 5},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, prescription.StockOut)

	err = svcs.StockOut.Delete(prescription.StockOut.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}
