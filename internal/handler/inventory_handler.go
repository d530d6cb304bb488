package handler

import (
	"strconv"

	"github.com/candat96/mini-cis/internal/repository"
	"github.com/candat96/mini-cis/internal/service"
	"github.com/gin-gonic/gin"
)

// InventoryHandler 库存处理器
type InventoryHandler struct {
	svc *service.InventoryService
}

func NewInventoryHandler(svc *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// List 批次库存列表。expiry_days 过滤 N 天内过期的批次。
func (h *InventoryHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	expiryDays := 0
	if raw := c.Query("expiry_days"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			expiryDays = v
		}
	}

	params := repository.InventoryListParams{
		MedicineID:   c.Query("medicine_id"),
		MedicineName: c.Query("medicine_name"),
		MedicineCode: c.Query("medicine_code"),
		ExpiryDays:   expiryDays,
		Page:         page,
		Size:         pageSize,
	}

	batches, total, err := h.svc.List(params)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, Paged(batches, page, pageSize, total))
}
