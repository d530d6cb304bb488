package handler

import (
	"github.com/candat96/mini-cis/internal/repository"
	"github.com/candat96/mini-cis/internal/service"
	"github.com/gin-gonic/gin"
)

// PatientHandler 患者处理器
type PatientHandler struct {
	svc *service.PatientService
}

func NewPatientHandler(svc *service.PatientService) *PatientHandler {
	return &PatientHandler{svc: svc}
}

// List 患者列表
func (h *PatientHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.PatientListParams{
		Name:  c.Query("name"),
		Phone: c.Query("phone"),
		Code:  c.Query("code"),
		Page:  page,
		Size:  pageSize,
	}

	patients, total, err := h.svc.List(params)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, Paged(patients, page, pageSize, total))
}

// Create 建档
func (h *PatientHandler) Create(c *gin.Context) {
	var req service.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	patient, err := h.svc.Create(req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, patient)
}

// Get 患者详情
func (h *PatientHandler) Get(c *gin.Context) {
	patient, err := h.svc.Get(c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, patient)
}

// Update 更新档案
func (h *PatientHandler) Update(c *gin.Context) {
	var req service.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	patient, err := h.svc.Update(c.Param("id"), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, patient)
}

// Delete 删除档案
func (h *PatientHandler) Delete(c *gin.Context) {
	if err := h.svc.Remove(c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}
