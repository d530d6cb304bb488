package handler

import (
	"github.com/candat96/mini-cis/internal/model/entity"
	"github.com/candat96/mini-cis/internal/repository"
	"github.com/candat96/mini-cis/internal/service"
	"github.com/gin-gonic/gin"
)

// StockInHandler 入库单处理器
type StockInHandler struct {
	svc *service.StockInService
}

func NewStockInHandler(svc *service.StockInService) *StockInHandler {
	return &StockInHandler{svc: svc}
}

// List 入库单列表
func (h *StockInHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.StockInListParams{
		Code:     c.Query("code"),
		Supplier: c.Query("supplier"),
		FromDate: parseDateQuery(c, "from_date"),
		ToDate:   parseDateQuery(c, "to_date"),
		Page:     page,
		Size:     pageSize,
	}

	docs, total, err := h.svc.List(params)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, Paged(docs, page, pageSize, total))
}

// Create 入库并增加批次库存
func (h *StockInHandler) Create(c *gin.Context) {
	var req service.CreateStockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	doc, err := h.svc.Create(req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, doc)
}

// Get 入库单详情
func (h *StockInHandler) Get(c *gin.Context) {
	doc, err := h.svc.Get(c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, doc)
}

// Delete 删除入库单
func (h *StockInHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// StockOutHandler 出库单处理器
type StockOutHandler struct {
	svc *service.StockOutService
}

func NewStockOutHandler(svc *service.StockOutService) *StockOutHandler {
	return &StockOutHandler{svc: svc}
}

// List 出库单列表
func (h *StockOutHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.StockOutListParams{
		Code:      c.Query("code"),
		Recipient: c.Query("recipient"),
		Type:      entity.StockOutType(c.Query("type")),
		FromDate:  parseDateQuery(c, "from_date"),
		ToDate:    parseDateQuery(c, "to_date"),
		Page:      page,
		Size:      pageSize,
	}

	docs, total, err := h.svc.List(params)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, Paged(docs, page, pageSize, total))
}

// Create 手工出库（仅 OTHER 类型）
func (h *StockOutHandler) Create(c *gin.Context) {
	var req service.CreateStockOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	doc, err := h.svc.Create(req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, doc)
}

// Get 出库单详情
func (h *StockOutHandler) Get(c *gin.Context) {
	doc, err := h.svc.Get(c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, doc)
}

// Delete 删除出库单。处方出库单只能随处方一起删除。
func (h *StockOutHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}
