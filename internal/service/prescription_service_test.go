package service

import (
	"testing"

	"github.com/candat96/mini-cis/internal/apperr"
	"github.com/candat96/mini-cis/internal/model/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type prescriptionFixture struct {
	svcs        *Services
	doctor      *entity.User
	patient     *entity.Patient
	appointment *entity.Appointment
	amox        *entity.Medicine
	ibu         *entity.Medicine
}

func setupPrescriptionFixture(t *testing.T, svcs *Services) *prescriptionFixture {
	t.Helper()

	doctor := createTestDoctor(t, svcs, "wilson")
	patient := createTestPatient(t, svcs, "Carol")
	appointment := createTestAppointment(t, svcs, patient.ID, doctor.ID)
	amox := createTestMedicine(t, svcs, "Amoxicillin", 10)
	ibu := createTestMedicine(t, svcs, "Ibuprofen", 4)

	stockInMedicine(t, svcs, amox.ID, "", 100, 5, daysFromNow(180))
	stockInMedicine(t, svcs, ibu.ID, "", 100, 2, daysFromNow(180))

	return &prescriptionFixture{
		svcs:        svcs,
		doctor:      doctor,
		patient:     patient,
		appointment: appointment,
		amox:        amox,
		ibu:         ibu,
	}
}

func TestPrescriptionCreateGeneratesPairedStockOut(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)
	fx := setupPrescriptionFixture(t, svcs)

	prescription, err := svcs.Prescription.Create(CreatePrescriptionRequest{
		AppointmentID: fx.appointment.ID,
		DoctorID:      fx.doctor.ID,
		Medicines: []PrescriptionMedicineRequest{
			{MedicineID: fx.amox.ID, Quantity: 3, Dosage: "500mg", Frequency: "3x/day"},
			{MedicineID: fx.ibu.ID, Quantity: 5},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "DT000001", prescription.Code)
	assert.Equal(t, entity.PrescriptionDraft, prescription.Status)
	// 3*10 + 5*4 = 50
	assert.True(t, prescription.TotalAmount.Equal(decimal.NewFromInt(50)), "got %s", prescription.TotalAmount)
	require.Len(t, prescription.Details, 2)

	// 配对出库单
	stockOut := prescription.StockOut
	require.NotNil(t, stockOut)
	assert.Equal(t, entity.StockOutPrescription, stockOut.Type)
	assert.Equal(t, fx.patient.Name, stockOut.Recipient)
	require.NotNil(t, stockOut.PrescriptionID)
	assert.Equal(t, prescription.ID, *stockOut.PrescriptionID)
	assert.True(t, stockOut.TotalAmount.Equal(prescription.TotalAmount))
	require.Len(t, stockOut.Details, 2)

	// 库存同步扣减
	assert.Equal(t, 97, totalStock(t, db, fx.amox.ID))
	assert.Equal(t, 95, totalStock(t, db, fx.ibu.ID))
}

func TestPrescriptionCreateInsufficientStockLeavesNothing(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)
	fx := setupPrescriptionFixture(t, svcs)

	_, err := svcs.Prescription.Create(CreatePrescriptionRequest{
		AppointmentID: fx.appointment.ID,
		DoctorID:      fx.doctor.ID,
		Medicines: []PrescriptionMedicineRequest{
			{MedicineID: fx.amox.ID, Quantity: 10},
			{MedicineID: fx.ibu.ID, Quantity: 101},
		},
	})
	require.Error(t, err)

	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindInsufficientStock, appErr.Kind)
	assert.Equal(t, 100, appErr.Available)

	// 整体回滚：无处方、无出库单、库存原样
	var prescriptionCount, stockOutCount int64
	require.NoError(t, db.Model(&entity.Prescription{}).Count(&prescriptionCount).Error)
	require.NoError(t, db.Model(&entity.StockOut{}).Count(&stockOutCount).Error)
	assert.Equal(t, int64(0), prescriptionCount)
	assert.Equal(t, int64(0), stockOutCount)
	assert.Equal(t, 100, totalStock(t, db, fx.amox.ID))
	assert.Equal(t, 100, totalStock(t, db, fx.ibu.ID))
}

func TestPrescriptionCreateUnknownAppointment(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)
	fx := setupPrescriptionFixture(t, svcs)

	_, err := svcs.Prescription.Create(CreatePrescriptionRequest{
		AppointmentID: "missing",
		DoctorID:      fx.doctor.ID,
		Medicines: []PrescriptionMedicineRequest{
			{MedicineID: fx.amox.ID, Quantity: 1},
		},
	})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestPrescriptionUpdateQuantityChangeAdjustsStockByDelta(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)
	fx := setupPrescriptionFixture(t, svcs)

	prescription, err := svcs.Prescription.Create(CreatePrescriptionRequest{
		AppointmentID: fx.appointment.ID,
		DoctorID:      fx.doctor.ID,
		Medicines: []PrescriptionMedicineRequest{
			{MedicineID: fx.amox.ID, Quantity: 5},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 95, totalStock(t, db, fx.amox.ID))
	detailID := prescription.Details[0].ID

	// 5 -> 8：只扣增量 3
	updated, err := svcs.Prescription.Update(prescription.ID, UpdatePrescriptionRequest{
		Medicines: []PrescriptionMedicineRequest{
			{ID: detailID, MedicineID: fx.amox.ID, Quantity: 8},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 92, totalStock(t, db, fx.amox.ID))
	assert.True(t, updated.TotalAmount.Equal(decimal.NewFromInt(80)))
	require.NotNil(t, updated.StockOut)
	assert.True(t, updated.StockOut.TotalAmount.Equal(decimal.NewFromInt(80)))
	require.Len(t, updated.StockOut.Details, 1)
	assert.Equal(t, 8, updated.StockOut.Details[0].Quantity)

	// 8 -> 2：冲正 6
	updated, err = svcs.Prescription.Update(prescription.ID, UpdatePrescriptionRequest{
		Medicines: []PrescriptionMedicineRequest{
			{ID: detailID, MedicineID: fx.amox.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 98, totalStock(t, db, fx.amox.ID))
	assert.Equal(t, 2, updated.StockOut.Details[0].Quantity)
}

func TestPrescriptionUpdateAddAndRemoveLines(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)
	fx := setupPrescriptionFixture(t, svcs)

	prescription, err := svcs.Prescription.Create(CreatePrescriptionRequest{
		AppointmentID: fx.appointment.ID,
		DoctorID:      fx.doctor.ID,
		Medicines: []PrescriptionMedicineRequest{
			{MedicineID: fx.amox.ID, Quantity: 4},
		},
	})
	require.NoError(t, err)

	// 移除 amox，新增 ibu：amox 全额冲正，ibu 全额扣减
	updated, err := svcs.Prescription.Update(prescription.ID, UpdatePrescriptionRequest{
		Medicines: []PrescriptionMedicineRequest{
			{MedicineID: fx.ibu.ID, Quantity: 6},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 100, totalStock(t, db, fx.amox.ID))
	assert.Equal(t, 94, totalStock(t, db, fx.ibu.ID))
	assert.True(t, updated.TotalAmount.Equal(decimal.NewFromInt(24)))

	require.NotNil(t, updated.StockOut)
	require.Len(t, updated.StockOut.Details, 1)
	assert.Equal(t, fx.ibu.ID, updated.StockOut.Details[0].MedicineID)
	assert.Equal(t, 6, updated.StockOut.Details[0].Quantity)
}

func TestPrescriptionUpdateBeyondStockRollsBack(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)
	fx := setupPrescriptionFixture(t, svcs)

	prescription, err := svcs.Prescription.Create(CreatePrescriptionRequest{
		AppointmentID: fx.appointment.ID,
		DoctorID:      fx.doctor.ID,
		Medicines: []PrescriptionMedicineRequest{
			{MedicineID: fx.amox.ID, Quantity: 5},
		},
	})
	require.NoError(t, err)
	detailID := prescription.Details[0].ID

	// 剩 95，增量 101-5=96 超出
	_, err = svcs.Prescription.Update(prescription.ID, UpdatePrescriptionRequest{
		Medicines: []PrescriptionMedicineRequest{
			{ID: detailID, MedicineID: fx.amox.ID, Quantity: 101},
		},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInsufficientStock))

	// 回滚后数量与总额不变
	reloaded, err := svcs.Prescription.Get(prescription.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Details, 1)
	assert.Equal(t, 5, reloaded.Details[0].Quantity)
	assert.True(t, reloaded.TotalAmount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 95, totalStock(t, db, fx.amox.ID))
	require.NotNil(t, reloaded.StockOut)
	assert.Equal(t, 5, reloaded.StockOut.Details[0].Quantity)
}

func TestPrescriptionRemoveRestoresStock(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)
	fx := setupPrescriptionFixture(t, svcs)

	prescription, err := svcs.Prescription.Create(CreatePrescriptionRequest{
		AppointmentID: fx.appointment.ID,
		DoctorID:      fx.doctor.ID,
		Medicines: []PrescriptionMedicineRequest{
			{MedicineID: fx.amox.ID, Quantity: 5},
			{MedicineID: fx.ibu.ID, Quantity: 7},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 95, totalStock(t, db, fx.amox.ID))
	require.Equal(t, 93, totalStock(t, db, fx.ibu.ID))
	stockOutID := prescription.StockOut.ID

	require.NoError(t, svcs.Prescription.Remove(prescription.ID))

	// 处方、出库单、明细全部删除，库存复原
	_, err = svcs.Prescription.Get(prescription.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	var stockOutCount, detailCount int64
	require.NoError(t, db.Model(&entity.StockOut{}).Where("id = ?", stockOutID).Count(&stockOutCount).Error)
	require.NoError(t, db.Model(&entity.StockOutDetail{}).Where("stock_out_id = ?", stockOutID).Count(&detailCount).Error)
	assert.Equal(t, int64(0), stockOutCount)
	assert.Equal(t, int64(0), detailCount)

	assert.Equal(t, 100, totalStock(t, db, fx.amox.ID))
	assert.Equal(t, 100, totalStock(t, db, fx.ibu.ID))
}

func TestPrescriptionCreateAfterRemoveAdvancesCode(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)
	fx := setupPrescriptionFixture(t, svcs)

	first, err := svcs.Prescription.Create(CreatePrescriptionRequest{
		AppointmentID: fx.appointment.ID,
		DoctorID:      fx.doctor.ID,
		Medicines: []PrescriptionMedicineRequest{
			{MedicineID: fx.amox.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "DT000001", first.Code)
	firstStockOutCode := first.StockOut.Code

	require.NoError(t, svcs.Prescription.Remove(first.ID))

	// 删除最新单据后再开新单：编号不回收，继续递增
	second, err := svcs.Prescription.Create(CreatePrescriptionRequest{
		AppointmentID: fx.appointment.ID,
		DoctorID:      fx.doctor.ID,
		Medicines: []PrescriptionMedicineRequest{
			{MedicineID: fx.amox.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "DT000002", second.Code)
	assert.NotEqual(t, firstStockOutCode, second.StockOut.Code)
	assert.Equal(t, 98, totalStock(t, db, fx.amox.ID))
}

func TestPrescriptionRejectsDuplicateMedicineLines(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)
	fx := setupPrescriptionFixture(t, svcs)

	// 同一药品拆多行会让处方与出库单的按药品对账失真
	_, err := svcs.Prescription.Create(CreatePrescriptionRequest{
		AppointmentID: fx.appointment.ID,
		DoctorID:      fx.doctor.ID,
		Medicines: []PrescriptionMedicineRequest{
			{MedicineID: fx.amox.ID, Quantity: 3},
			{MedicineID: fx.amox.ID, Quantity: 2},
		},
	})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Equal(t, 100, totalStock(t, db, fx.amox.ID))

	prescription, err := svcs.Prescription.Create(CreatePrescriptionRequest{
		AppointmentID: fx.appointment.ID,
		DoctorID:      fx.doctor.ID,
		Medicines: []PrescriptionMedicineRequest{
			{MedicineID: fx.amox.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)

	_, err = svcs.Prescription.Update(prescription.ID, UpdatePrescriptionRequest{
		Medicines: []PrescriptionMedicineRequest{
			{ID: prescription.Details[0].ID, MedicineID: fx.amox.ID, Quantity: 3},
			{MedicineID: fx.amox.ID, Quantity: 1},
		},
	})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Equal(t, 97, totalStock(t, db, fx.amox.ID))
}

func TestPrescriptionOnlyDraftCanChange(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)
	fx := setupPrescriptionFixture(t, svcs)

	prescription, err := svcs.Prescription.Create(CreatePrescriptionRequest{
		AppointmentID: fx.appointment.ID,
		DoctorID:      fx.doctor.ID,
		Medicines: []PrescriptionMedicineRequest{
			{MedicineID: fx.amox.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)

	_, err = svcs.Prescription.Update(prescription.ID, UpdatePrescriptionRequest{
		Status: entity.PrescriptionCompleted,
	})
	require.NoError(t, err)

	_, err = svcs.Prescription.Update(prescription.ID, UpdatePrescriptionRequest{
		Medicines: []PrescriptionMedicineRequest{
			{MedicineID: fx.ibu.ID, Quantity: 1},
		},
	})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))

	err = svcs.Prescription.Remove(prescription.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))

	// 已完成的处方不受影响
	reloaded, err := svcs.Prescription.Get(prescription.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PrescriptionCompleted, reloaded.Status)
	assert.Equal(t, 98, totalStock(t, db, fx.amox.ID))
}

func TestPrescriptionPriceSnapshotSurvivesPriceChange(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)
	fx := setupPrescriptionFixture(t, svcs)

	prescription, err := svcs.Prescription.Create(CreatePrescriptionRequest{
		AppointmentID: fx.appointment.ID,
		DoctorID:      fx.doctor.ID,
		Medicines: []PrescriptionMedicineRequest{
			{MedicineID: fx.amox.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)

	newPrice := decimal.NewFromInt(99)
	_, err = svcs.Medicine.Update(fx.amox.ID, UpdateMedicineRequest{SellPrice: &newPrice})
	require.NoError(t, err)

	reloaded, err := svcs.Prescription.Get(prescription.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Details[0].Price.Equal(decimal.NewFromInt(10)))
	assert.True(t, reloaded.TotalAmount.Equal(decimal.NewFromInt(20)))
}
