package handler_test

import (
	"net/http"
	"testing"

	"github.com/candat96/mini-cis/internal/handler"
	"github.com/candat96/mini-cis/internal/middleware"
	"github.com/candat96/mini-cis/internal/model/entity"
	"github.com/candat96/mini-cis/internal/repository"
	"github.com/candat96/mini-cis/internal/service"
	"github.com/candat96/mini-cis/internal/testutil"
	"go.uber.org/zap"
)

func newRouter(env *testutil.TestEnv) *handler.Handlers {
	repos := repository.NewRepositories(env.DB)
	svcs := service.NewServices(env.DB, repos, nil, testutil.TestConfig(), zap.NewNop())
	h := handler.NewHandlers(svcs)

	authorized := env.Router.Group("/api/v1", middleware.JWTAuth(testutil.JWTSecret))
	authorized.POST("/prescriptions", h.Prescription.Create)
	authorized.GET("/prescriptions/:id", h.Prescription.Get)
	authorized.DELETE("/prescriptions/:id", h.Prescription.Delete)

	reports := authorized.Group("/reports", middleware.RequireRole(entity.RoleAdmin))
	reports.GET("/revenue", h.Report.Revenue)

	return h
}

func TestPrescriptionEndpointRequiresAuth(t *testing.T) {
	env := testutil.NewTestEnv(t)
	newRouter(env)

	rec := env.Request(http.MethodPost, "/api/v1/prescriptions", "", map[string]interface{}{})
	testutil.RequireStatus(t, rec, http.StatusUnauthorized)
}

func TestPrescriptionCreateOverHTTP(t *testing.T) {
	env := testutil.NewTestEnv(t)
	newRouter(env)

	doctor := env.CreateUser("house", entity.RoleDoctor)
	patient := env.CreatePatient("BN000001", "Carol")
	appointment := env.CreateAppointment(patient.ID, doctor.ID)
	medicine := env.CreateMedicine("T0001", "Amoxicillin", 10)
	env.AddStock(medicine.ID, "LOT-A", 50)

	token := testutil.SignToken(t, doctor.ID, doctor.Username, doctor.Role)
	rec := env.Request(http.MethodPost, "/api/v1/prescriptions", token, map[string]interface{}{
		"appointment_id": appointment.ID,
		"doctor_id":      doctor.ID,
		"medicines": []map[string]interface{}{
			{"medicine_id": medicine.ID, "quantity": 5},
		},
	})
	testutil.RequireStatus(t, rec, http.StatusCreated)

	var created entity.Prescription
	testutil.DecodeData(t, rec, &created)
	if created.Code != "DT000001" {
		t.Fatalf("expected code DT000001, got %s", created.Code)
	}
	if created.StockOut == nil || created.StockOut.Type != entity.StockOutPrescription {
		t.Fatalf("expected paired prescription stock-out, got %+v", created.StockOut)
	}

	var inv entity.Inventory
	if err := env.DB.Where("medicine_id = ?", medicine.ID).First(&inv).Error; err != nil {
		t.Fatalf("load inventory: %v", err)
	}
	if inv.Quantity != 45 {
		t.Fatalf("expected 45 left in stock, got %d", inv.Quantity)
	}
}

func TestPrescriptionInsufficientStockOverHTTP(t *testing.T) {
	env := testutil.NewTestEnv(t)
	newRouter(env)

	doctor := env.CreateUser("house", entity.RoleDoctor)
	patient := env.CreatePatient("BN000001", "Carol")
	appointment := env.CreateAppointment(patient.ID, doctor.ID)
	medicine := env.CreateMedicine("T0001", "Amoxicillin", 10)
	env.AddStock(medicine.ID, "LOT-A", 3)

	token := testutil.SignToken(t, doctor.ID, doctor.Username, doctor.Role)
	rec := env.Request(http.MethodPost, "/api/v1/prescriptions", token, map[string]interface{}{
		"appointment_id": appointment.ID,
		"doctor_id":      doctor.ID,
		"medicines": []map[string]interface{}{
			{"medicine_id": medicine.ID, "quantity": 10},
		},
	})
	testutil.RequireStatus(t, rec, http.StatusBadRequest)
}

func TestReportEndpointRequiresAdmin(t *testing.T) {
	env := testutil.NewTestEnv(t)
	newRouter(env)

	receptionist := env.CreateUser("frontdesk", entity.RoleReceptionist)
	token := testutil.SignToken(t, receptionist.ID, receptionist.Username, receptionist.Role)

	rec := env.Request(http.MethodGet, "/api/v1/reports/revenue", token, nil)
	testutil.RequireStatus(t, rec, http.StatusForbidden)

	admin := env.CreateUser("boss", entity.RoleAdmin)
	adminToken := testutil.SignToken(t, admin.ID, admin.Username, admin.Role)

	rec = env.Request(http.MethodGet, "/api/v1/reports/revenue", adminToken, nil)
	testutil.RequireStatus(t, rec, http.StatusOK)
}
