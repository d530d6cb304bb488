package handler

import (
	"time"

	"github.com/candat96/mini-cis/internal/model/entity"
	"github.com/candat96/mini-cis/internal/repository"
	"github.com/candat96/mini-cis/internal/service"
	"github.com/gin-gonic/gin"
)

// AppointmentHandler 预约处理器
type AppointmentHandler struct {
	svc *service.AppointmentService
}

func NewAppointmentHandler(svc *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

// parseDateQuery 解析 YYYY-MM-DD 查询参数
func parseDateQuery(c *gin.Context, key string) *time.Time {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &t
}

// List 预约列表
func (h *AppointmentHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.AppointmentListParams{
		PatientID: c.Query("patient_id"),
		DoctorID:  c.Query("doctor_id"),
		Status:    entity.AppointmentStatus(c.Query("status")),
		StartDate: parseDateQuery(c, "start_date"),
		EndDate:   parseDateQuery(c, "end_date"),
		Search:    c.Query("search"),
		Page:      page,
		Size:      pageSize,
	}

	appointments, total, err := h.svc.List(params)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, Paged(appointments, page, pageSize, total))
}

// Create 创建预约
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req service.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	appointment, err := h.svc.Create(req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, appointment)
}

// Get 预约详情
func (h *AppointmentHandler) Get(c *gin.Context) {
	appointment, err := h.svc.Get(c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, appointment)
}

// Update 更新预约
func (h *AppointmentHandler) Update(c *gin.Context) {
	var req service.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	appointment, err := h.svc.Update(c.Param("id"), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, appointment)
}
