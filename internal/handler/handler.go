package handler

import (
	"errors"
	"strconv"

	"github.com/candat96/mini-cis/internal/apperr"
	"github.com/candat96/mini-cis/internal/service"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handlers 处理器集合
type Handlers struct {
	Auth         *AuthHandler
	Patient      *PatientHandler
	Catalog      *CatalogHandler
	Medicine     *MedicineHandler
	Appointment  *AppointmentHandler
	Inventory    *InventoryHandler
	StockIn      *StockInHandler
	StockOut     *StockOutHandler
	Prescription *PrescriptionHandler
	Report       *ReportHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:         NewAuthHandler(svc.Auth),
		Patient:      NewPatientHandler(svc.Patient),
		Catalog:      NewCatalogHandler(svc.Catalog),
		Medicine:     NewMedicineHandler(svc.Medicine),
		Appointment:  NewAppointmentHandler(svc.Appointment),
		Inventory:    NewInventoryHandler(svc.Inventory),
		StockIn:      NewStockInHandler(svc.StockIn),
		StockOut:     NewStockOutHandler(svc.StockOut),
		Prescription: NewPrescriptionHandler(svc.Prescription),
		Report:       NewReportHandler(svc.Report),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse 列表响应结构
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// Paged 组装列表响应
func Paged(items interface{}, page, pageSize int, total int64) ListResponse {
	totalPages := total / int64(pageSize)
	if total%int64(pageSize) > 0 {
		totalPages++
	}
	return ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Fail 按业务错误类型映射响应
func Fail(c *gin.Context, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case apperr.KindNotFound:
			Error(c, 40400, appErr.Error())
		case apperr.KindConflict:
			Error(c, 40900, appErr.Error())
		case apperr.KindInsufficientStock:
			Error(c, 40001, appErr.Error())
		case apperr.KindInvalidState:
			Error(c, 40002, appErr.Error())
		case apperr.KindValidation:
			Error(c, 40000, appErr.Error())
		case apperr.KindUnauthorized:
			Error(c, 40100, appErr.Error())
		case apperr.KindInvalidCodeFormat:
			Error(c, 50001, appErr.Error())
		default:
			Error(c, 50000, appErr.Error())
		}
		return
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		Error(c, 40900, "duplicate record")
		return
	}
	Error(c, 50000, err.Error())
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetPagination 从请求获取分页参数
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}
