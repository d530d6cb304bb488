package handler

import (
	"github.com/candat96/mini-cis/internal/repository"
	"github.com/candat96/mini-cis/internal/service"
	"github.com/gin-gonic/gin"
)

// MedicineHandler 药品处理器
type MedicineHandler struct {
	svc *service.MedicineService
}

func NewMedicineHandler(svc *service.MedicineService) *MedicineHandler {
	return &MedicineHandler{svc: svc}
}

// List 药品列表
func (h *MedicineHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.MedicineListParams{
		Name:       c.Query("name"),
		Code:       c.Query("code"),
		CategoryID: c.Query("category_id"),
		Page:       page,
		Size:       pageSize,
	}

	medicines, total, err := h.svc.List(params)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, Paged(medicines, page, pageSize, total))
}

// Create 新增药品
func (h *MedicineHandler) Create(c *gin.Context) {
	var req service.CreateMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	medicine, err := h.svc.Create(req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, medicine)
}

// Get 药品详情
func (h *MedicineHandler) Get(c *gin.Context) {
	medicine, err := h.svc.Get(c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, medicine)
}

// Update 更新药品
func (h *MedicineHandler) Update(c *gin.Context) {
	var req service.UpdateMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	medicine, err := h.svc.Update(c.Param("id"), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, medicine)
}

// Delete 删除药品
func (h *MedicineHandler) Delete(c *gin.Context) {
	if err := h.svc.Remove(c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// ListCategories 药品类别列表
func (h *MedicineHandler) ListCategories(c *gin.Context) {
	categories, err := h.svc.ListCategories(c.Query("keyword"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, categories)
}

// CreateCategory 新增药品类别
func (h *MedicineHandler) CreateCategory(c *gin.Context) {
	var req service.CreateMedicineCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	category, err := h.svc.CreateCategory(req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, category)
}

// GetCategory 药品类别详情
func (h *MedicineHandler) GetCategory(c *gin.Context) {
	category, err := h.svc.GetCategory(c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, category)
}

// UpdateCategory 更新药品类别
func (h *MedicineHandler) UpdateCategory(c *gin.Context) {
	var req service.UpdateMedicineCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	category, err := h.svc.UpdateCategory(c.Param("id"), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, category)
}

// DeleteCategory 删除药品类别
func (h *MedicineHandler) DeleteCategory(c *gin.Context) {
	if err := h.svc.RemoveCategory(c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}
