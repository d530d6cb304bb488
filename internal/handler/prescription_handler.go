package handler

import (
	"github.com/candat96/mini-cis/internal/model/entity"
	"github.com/candat96/mini-cis/internal/repository"
	"github.com/candat96/mini-cis/internal/service"
	"github.com/gin-gonic/gin"
)

// PrescriptionHandler 处方处理器
type PrescriptionHandler struct {
	svc *service.PrescriptionService
}

func NewPrescriptionHandler(svc *service.PrescriptionService) *PrescriptionHandler {
	return &PrescriptionHandler{svc: svc}
}

// List 处方列表
func (h *PrescriptionHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.PrescriptionListParams{
		AppointmentID: c.Query("appointment_id"),
		DoctorID:      c.Query("doctor_id"),
		Code:          c.Query("code"),
		Status:        entity.PrescriptionStatus(c.Query("status")),
		FromDate:      parseDateQuery(c, "from_date"),
		ToDate:        parseDateQuery(c, "to_date"),
		Page:          page,
		Size:          pageSize,
	}

	prescriptions, total, err := h.svc.List(params)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, Paged(prescriptions, page, pageSize, total))
}

// Create 开方，同时生成出库单并扣减库存
func (h *PrescriptionHandler) Create(c *gin.Context) {
	var req service.CreatePrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	prescription, err := h.svc.Create(req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, prescription)
}

// Get 处方详情
func (h *PrescriptionHandler) Get(c *gin.Context) {
	prescription, err := h.svc.Get(c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, prescription)
}

// Update 修改处方并与出库单、库存对账
func (h *PrescriptionHandler) Update(c *gin.Context) {
	var req service.UpdatePrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	prescription, err := h.svc.Update(c.Param("id"), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, prescription)
}

// Delete 删除处方，库存随出库单冲正
func (h *PrescriptionHandler) Delete(c *gin.Context) {
	if err := h.svc.Remove(c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}
