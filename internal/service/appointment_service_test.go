package service

import (
	"testing"
	"time"

	"github.com/candat96/mini-cis/internal/apperr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentCreateWithServices(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)

	doctor := createTestDoctor(t, svcs, "house")
	patient := createTestPatient(t, svcs, "Dave")
	checkup, err := svcs.Catalog.Create(CreateServiceRequest{Name: "Checkup", Price: decimal.NewFromInt(25)})
	require.NoError(t, err)
	xray, err := svcs.Catalog.Create(CreateServiceRequest{Name: "X-Ray", Price: decimal.NewFromInt(40)})
	require.NoError(t, err)

	appointment, err := svcs.Appointment.Create(CreateAppointmentRequest{
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		AppointmentDate: time.Now(),
		Services: []AppointmentServiceRequest{
			{ServiceID: checkup.ID, Quantity: 1},
			{ServiceID: xray.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)
	// 25 + 2*40 = 105
	assert.True(t, appointment.TotalAmount.Equal(decimal.NewFromInt(105)))
	assert.Len(t, appointment.Details, 2)
}

func TestAppointmentUpdateReplacesServices(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)

	doctor := createTestDoctor(t, svcs, "house")
	patient := createTestPatient(t, svcs, "Eve")
	checkup, err := svcs.Catalog.Create(CreateServiceRequest{Name: "Checkup", Price: decimal.NewFromInt(25)})
	require.NoError(t, err)
	ultrasound, err := svcs.Catalog.Create(CreateServiceRequest{Name: "Ultrasound", Price: decimal.NewFromInt(60)})
	require.NoError(t, err)

	appointment, err := svcs.Appointment.Create(CreateAppointmentRequest{
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		AppointmentDate: time.Now(),
		Services: []AppointmentServiceRequest{
			{ServiceID: checkup.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	updated, err := svcs.Appointment.Update(appointment.ID, UpdateAppointmentRequest{
		Services: []AppointmentServiceRequest{
			{ServiceID: ultrasound.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	require.Len(t, updated.Details, 1)
	assert.Equal(t, ultrasound.ID, updated.Details[0].ServiceID)
	assert.True(t, updated.TotalAmount.Equal(decimal.NewFromInt(60)))
}

func TestAppointmentUnknownPatient(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)

	_, err := svcs.Appointment.Create(CreateAppointmentRequest{
		PatientID:       "missing",
		AppointmentDate: time.Now(),
	})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
