package service

import (
	"context"
	"testing"
	"time"

	"github.com/candat96/mini-cis/internal/model/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevenueReportAggregatesServicesAndMedicines(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)
	fx := setupPrescriptionFixture(t, svcs)

	checkup, err := svcs.Catalog.Create(CreateServiceRequest{
		Name:  "Checkup",
		Price: decimal.NewFromInt(30),
	})
	require.NoError(t, err)

	// 已完成预约计入服务收入
	appointment, err := svcs.Appointment.Create(CreateAppointmentRequest{
		PatientID:       fx.patient.ID,
		DoctorID:        fx.doctor.ID,
		AppointmentDate: time.Now(),
		Services: []AppointmentServiceRequest{
			{ServiceID: checkup.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)
	_, err = svcs.Appointment.Update(appointment.ID, UpdateAppointmentRequest{
		Status: entity.AppointmentCompleted,
	})
	require.NoError(t, err)

	// 处方计入药品收入：3*10 = 30
	_, err = svcs.Prescription.Create(CreatePrescriptionRequest{
		AppointmentID: fx.appointment.ID,
		DoctorID:      fx.doctor.ID,
		Medicines: []PrescriptionMedicineRequest{
			{MedicineID: fx.amox.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)

	from := time.Now().AddDate(0, 0, -1)
	to := time.Now().AddDate(0, 0, 1)

	report, err := svcs.Report.Revenue(context.Background(), from, to)
	require.NoError(t, err)
	assert.True(t, report.ServiceRevenue.Equal(decimal.NewFromInt(60)), "service got %s", report.ServiceRevenue)
	assert.True(t, report.MedicineRevenue.Equal(decimal.NewFromInt(30)), "medicine got %s", report.MedicineRevenue)
	assert.True(t, report.TotalRevenue.Equal(decimal.NewFromInt(90)))
	assert.Equal(t, int64(1), report.AppointmentCount)
	assert.Equal(t, int64(1), report.PrescriptionCount)
	require.NotEmpty(t, report.Daily)

	byDoctor, err := svcs.Report.RevenueByDoctor(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, byDoctor, 1)
	assert.Equal(t, fx.doctor.ID, byDoctor[0].DoctorID)
	assert.True(t, byDoctor[0].TotalRevenue.Equal(decimal.NewFromInt(90)))
}

func TestRevenueReportExcludesCancelledPrescriptions(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)
	fx := setupPrescriptionFixture(t, svcs)

	prescription, err := svcs.Prescription.Create(CreatePrescriptionRequest{
		AppointmentID: fx.appointment.ID,
		DoctorID:      fx.doctor.ID,
		Medicines: []PrescriptionMedicineRequest{
			{MedicineID: fx.amox.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)
	_, err = svcs.Prescription.Update(prescription.ID, UpdatePrescriptionRequest{
		Status: entity.PrescriptionCancelled,
	})
	require.NoError(t, err)

	from := time.Now().AddDate(0, 0, -1)
	to := time.Now().AddDate(0, 0, 1)

	report, err := svcs.Report.Revenue(context.Background(), from, to)
	require.NoError(t, err)
	assert.True(t, report.MedicineRevenue.IsZero(), "got %s", report.MedicineRevenue)
	assert.Equal(t, int64(0), report.PrescriptionCount)
}

func TestExportRevenueXLSX(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)
	fx := setupPrescriptionFixture(t, svcs)

	_, err := svcs.Prescription.Create(CreatePrescriptionRequest{
		AppointmentID: fx.appointment.ID,
		DoctorID:      fx.doctor.ID,
		Medicines: []PrescriptionMedicineRequest{
			{MedicineID: fx.ibu.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)

	from := time.Now().AddDate(0, 0, -1)
	to := time.Now().AddDate(0, 0, 1)

	data, err := svcs.Report.ExportRevenueXLSX(context.Background(), from, to)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// XLSX 是 zip 容器，以 PK 开头
	assert.Equal(t, []byte{'P', 'K'}, data[:2])
}
