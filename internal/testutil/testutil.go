package testutil

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/candat96/mini-cis/internal/config"
	"github.com/candat96/mini-cis/internal/middleware"
	"github.com/candat96/mini-cis/internal/model/entity"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const JWTSecret = "mini-cis-test-secret"

// TestEnv holds test environment resources
type TestEnv struct {
	DB     *gorm.DB
	Router *gin.Engine
	T      *testing.T
}

// NewTestEnv creates an in-memory database and a bare router with the
// standard middleware chain installed.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := entity.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	return &TestEnv{DB: db, Router: router, T: t}
}

// TestConfig returns a config suitable for wiring services in tests.
func TestConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:            JWTSecret,
			AccessTokenExpire: time.Hour,
			Issuer:            "mini-cis-test",
		},
	}
}

// SignToken issues a JWT for the given user, signed with the test secret.
func SignToken(t *testing.T, userID, username string, role entity.UserRole) string {
	t.Helper()

	claims := middleware.JWTClaims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(JWTSecret))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return token
}

// Request performs an HTTP request against the router and returns the recorder.
func (e *TestEnv) Request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.T.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			e.T.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.Router.ServeHTTP(rec, req)
	return rec
}

// DecodeData unmarshals the "data" field of the standard response envelope.
func DecodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	var envelope struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response envelope: %v (body: %s)", err, rec.Body.String())
	}
	if envelope.Code != 0 {
		t.Fatalf("unexpected response code %d: %s", envelope.Code, envelope.Message)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			t.Fatalf("decode response data: %v", err)
		}
	}
}

// RequireStatus fails the test when the recorded status differs.
func RequireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected HTTP %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

// Fixtures below create minimal rows directly, bypassing the service layer.

func (e *TestEnv) CreateUser(username string, role entity.UserRole) *entity.User {
	e.T.Helper()

	user := &entity.User{
		Username: username,
		Password: "$2a$10$abcdefghijklmnopqrstuv",
		Name:     username,
		Role:     role,
	}
	if err := e.DB.Create(user).Error; err != nil {
		e.T.Fatalf("create test user: %v", err)
	}
	return user
}

func (e *TestEnv) CreatePatient(code, name string) *entity.Patient {
	e.T.Helper()

	patient := &entity.Patient{Code: code, Name: name, Phone: "0900000000"}
	if err := e.DB.Create(patient).Error; err != nil {
		e.T.Fatalf("create test patient: %v", err)
	}
	return patient
}

func (e *TestEnv) CreateMedicine(code, name string, sellPrice float64) *entity.Medicine {
	e.T.Helper()

	medicine := &entity.Medicine{
		Code:      code,
		Name:      name,
		Unit:      "box",
		SellPrice: decimal.NewFromFloat(sellPrice),
	}
	if err := e.DB.Create(medicine).Error; err != nil {
		e.T.Fatalf("create test medicine: %v", err)
	}
	return medicine
}

func (e *TestEnv) AddStock(medicineID, batch string, qty int) {
	e.T.Helper()

	inv := &entity.Inventory{MedicineID: medicineID, BatchNumber: batch, Quantity: qty}
	if err := e.DB.Create(inv).Error; err != nil {
		e.T.Fatalf("create test inventory: %v", err)
	}
}

func (e *TestEnv) CreateAppointment(patientID, doctorID string) *entity.Appointment {
	e.T.Helper()

	appointment := &entity.Appointment{
		Status:          entity.AppointmentPending,
		AppointmentDate: time.Now(),
		PatientID:       patientID,
		DoctorID:        doctorID,
	}
	if err := e.DB.Create(appointment).Error; err != nil {
		e.T.Fatalf("create test appointment: %v", err)
	}
	return appointment
}
