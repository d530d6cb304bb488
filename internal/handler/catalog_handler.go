package handler

import (
	"github.com/candat96/mini-cis/internal/repository"
	"github.com/candat96/mini-cis/internal/service"
	"github.com/gin-gonic/gin"
)

// CatalogHandler 诊疗服务项目处理器
type CatalogHandler struct {
	svc *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// List 服务项目列表
func (h *CatalogHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.ServiceListParams{
		Name:       c.Query("name"),
		Code:       c.Query("code"),
		CategoryID: c.Query("category_id"),
		Page:       page,
		Size:       pageSize,
	}

	services, total, err := h.svc.List(params)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, Paged(services, page, pageSize, total))
}

// Create 新增服务项目
func (h *CatalogHandler) Create(c *gin.Context) {
	var req service.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	svc, err := h.svc.Create(req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, svc)
}

// Get 服务项目详情
func (h *CatalogHandler) Get(c *gin.Context) {
	svc, err := h.svc.Get(c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, svc)
}

// Update 更新服务项目
func (h *CatalogHandler) Update(c *gin.Context) {
	var req service.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	svc, err := h.svc.Update(c.Param("id"), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, svc)
}

// Delete 删除服务项目
func (h *CatalogHandler) Delete(c *gin.Context) {
	if err := h.svc.Remove(c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// ListCategories 服务类别列表
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.svc.ListCategories(c.Query("keyword"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, categories)
}

// CreateCategory 新增服务类别
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req service.CreateServiceCategoryRequest
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

// GetCategory 服务类别详情
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	category, err := h.svc.GetCategory(c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, category)
}

// UpdateCategory 更新服务类别
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	var req service.UpdateServiceCategoryRequest
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

// DeleteCategory 删除服务类别
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	if err := h.svc.RemoveCategory(c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}
