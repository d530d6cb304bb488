package handler

import (
	"fmt"
	"time"

	"github.com/candat96/mini-cis/internal/service"
	"github.com/gin-gonic/gin"
)

// ReportHandler 报表处理器
type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// reportRange 解析报表时间区间，缺省为最近 30 天。to 为闭区间日期，
// 内部转成次日零点的开区间上界。
func reportRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date: %s", raw)
		}
		from = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date: %s", raw)
		}
		to = t.AddDate(0, 0, 1)
	}
	return from, to, nil
}

// Revenue 区间营收汇总
func (h *ReportHandler) Revenue(c *gin.Context) {
	from, to, err := reportRange(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	report, err := h.svc.Revenue(c.Request.Context(), from, to)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, report)
}

// RevenueByDoctor 按医生汇总营收
func (h *ReportHandler) RevenueByDoctor(c *gin.Context) {
	from, to, err := reportRange(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	rows, err := h.svc.RevenueByDoctor(c.Request.Context(), from, to)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, rows)
}

// ExportRevenue 导出营收报表 Excel
func (h *ReportHandler) ExportRevenue(c *gin.Context) {
	from, to, err := reportRange(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	data, err := h.svc.ExportRevenueXLSX(c.Request.Context(), from, to)
	if err != nil {
		Fail(c, err)
		return
	}

	filename := fmt.Sprintf("revenue-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
