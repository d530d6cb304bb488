package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const reportCacheTTL = 5 * time.Minute

// ReportService 营收报表。服务收入取已完成预约金额，药品收入取处方金额。
// 结果按时间区间缓存到 Redis，未配置 Redis 时直接查库。
type ReportService struct {
	db     *gorm.DB
	rdb    *redis.Client
	logger *zap.Logger
}

func NewReportService(db *gorm.DB, rdb *redis.Client, logger *zap.Logger) *ReportService {
	return &ReportService{db: db, rdb: rdb, logger: logger}
}

type RevenueReport struct {
	From              time.Time       `json:"from"`
	To                time.Time       `json:"to"`
	ServiceRevenue    decimal.Decimal `json:"service_revenue"`
	MedicineRevenue   decimal.Decimal `json:"medicine_revenue"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AppointmentCount  int64           `json:"appointment_count"`
	PrescriptionCount int64           `json:"prescription_count"`
	Daily             []DailyRevenue  `json:"daily"`
}

type DailyRevenue struct {
	Date            string          `json:"date"`
	ServiceRevenue  decimal.Decimal `json:"service_revenue"`
	MedicineRevenue decimal.Decimal `json:"medicine_revenue"`
}

type DoctorRevenue struct {
	DoctorID        string          `json:"doctor_id"`
	DoctorName      string          `json:"doctor_name"`
	ServiceRevenue  decimal.Decimal `json:"service_revenue"`
	MedicineRevenue decimal.Decimal `json:"medicine_revenue"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
}

// Revenue 区间营收汇总，含按天明细
func (s *ReportService) Revenue(ctx context.Context, from, to time.Time) (*RevenueReport, error) {
	cacheKey := fmt.Sprintf("report:revenue:%s:%s", from.Format("20060102"), to.Format("20060102"))
	if cached := s.fromCache(ctx, cacheKey); cached != nil {
		var report RevenueReport
		if err := json.Unmarshal(cached, &report); err == nil {
			return &report, nil
		}
	}

	report := &RevenueReport{From: from, To: to}

	type dailyRow struct {
		Day    string
		Amount decimal.Decimal
		Count  int64
	}

	var serviceRows []dailyRow
	err := s.db.Table("appointment").
		Select("DATE(appointment_date) AS day, COALESCE(SUM(total_amount), 0) AS amount, COUNT(*) AS count").
		Where("status = ?", "COMPLETED").
		Where("appointment_date >= ? AND appointment_date < ?", from, to).
		Where("deleted_at IS NULL").
		Group("DATE(appointment_date)").
		Order("day ASC").
		Scan(&serviceRows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate service revenue: %w", err)
	}

	var medicineRows []dailyRow
	err = s.db.Table("prescription").
		Select("DATE(created_at) AS day, COALESCE(SUM(total_amount), 0) AS amount, COUNT(*) AS count").
		Where("created_at >= ? AND created_at < ?", from, to).
		Where("status <> ?", "CANCELLED").
		Where("deleted_at IS NULL").
		Group("DATE(created_at)").
		Order("day ASC").
		Scan(&medicineRows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate medicine revenue: %w", err)
	}

	byDay := make(map[string]*DailyRevenue)
	for _, row := range serviceRows {
		byDay[row.Day] = &DailyRevenue{Date: row.Day, ServiceRevenue: row.Amount, MedicineRevenue: decimal.Zero}
		report.ServiceRevenue = report.ServiceRevenue.Add(row.Amount)
		report.AppointmentCount += row.Count
	}
	for _, row := range medicineRows {
		d, ok := byDay[row.Day]
		if !ok {
			d = &DailyRevenue{Date: row.Day, ServiceRevenue: decimal.Zero}
			byDay[row.Day] = d
		}
		d.MedicineRevenue = row.Amount
		report.MedicineRevenue = report.MedicineRevenue.Add(row.Amount)
		report.PrescriptionCount += row.Count
	}
	report.TotalRevenue = report.ServiceRevenue.Add(report.MedicineRevenue)

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		report.Daily = append(report.Daily, *byDay[day])
	}

	s.toCache(ctx, cacheKey, report)
	return report, nil
}

// RevenueByDoctor 按医生汇总区间营收
func (s *ReportService) RevenueByDoctor(ctx context.Context, from, to time.Time) ([]DoctorRevenue, error) {
	cacheKey := fmt.Sprintf("report:doctor-revenue:%s:%s", from.Format("20060102"), to.Format("20060102"))
	if cached := s.fromCache(ctx, cacheKey); cached != nil {
		var rows []DoctorRevenue
		if err := json.Unmarshal(cached, &rows); err == nil {
			return rows, nil
		}
	}

	type aggRow struct {
		DoctorID   string
		DoctorName string
		Amount     decimal.Decimal
	}

	var serviceRows []aggRow
	err := s.db.Table("appointment").
		Select("appointment.doctor_id AS doctor_id, users.name AS doctor_name, COALESCE(SUM(appointment.total_amount), 0) AS amount").
		Joins("JOIN users ON users.id = appointment.doctor_id").
		Where("appointment.status = ?", "COMPLETED").
		Where("appointment.appointment_date >= ? AND appointment.appointment_date < ?", from, to).
		Where("appointment.deleted_at IS NULL").
		Group("appointment.doctor_id, users.name").
		Scan(&serviceRows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate doctor service revenue: %w", err)
	}

	var medicineRows []aggRow
	err = s.db.Table("prescription").
		Select("prescription.doctor_id AS doctor_id, users.name AS doctor_name, COALESCE(SUM(prescription.total_amount), 0) AS amount").
		Joins("JOIN users ON users.id = prescription.doctor_id").
		Where("prescription.created_at >= ? AND prescription.created_at < ?", from, to).
		Where("prescription.status <> ?", "CANCELLED").
		Where("prescription.deleted_at IS NULL").
		Group("prescription.doctor_id, users.name").
		Scan(&medicineRows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate doctor medicine revenue: %w", err)
	}

	byDoctor := make(map[string]*DoctorRevenue)
	for _, row := range serviceRows {
		byDoctor[row.DoctorID] = &DoctorRevenue{
			DoctorID:        row.DoctorID,
			DoctorName:      row.DoctorName,
			ServiceRevenue:  row.Amount,
			MedicineRevenue: decimal.Zero,
		}
	}
	for _, row := range medicineRows {
		d, ok := byDoctor[row.DoctorID]
		if !ok {
			d = &DoctorRevenue{DoctorID: row.DoctorID, DoctorName: row.DoctorName, ServiceRevenue: decimal.Zero}
			byDoctor[row.DoctorID] = d
		}
		d.MedicineRevenue = row.Amount
	}

	ids := make([]string, 0, len(byDoctor))
	for id := range byDoctor {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([]DoctorRevenue, 0, len(byDoctor))
	for _, id := range ids {
		d := byDoctor[id]
		d.TotalRevenue = d.ServiceRevenue.Add(d.MedicineRevenue)
		rows = append(rows, *d)
	}

	s.toCache(ctx, cacheKey, rows)
	return rows, nil
}

// ExportRevenueXLSX 导出区间营收明细为 Excel
func (s *ReportService) ExportRevenueXLSX(ctx context.Context, from, to time.Time) ([]byte, error) {
	report, err := s.Revenue(ctx, from, to)
	if err != nil {
		return nil, err
	}
	doctors, err := s.RevenueByDoctor(ctx, from, to)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Revenue"
	f.SetSheetName("Sheet1", sheet)
	f.SetSheetRow(sheet, "A1", &[]interface{}{"Date", "Service Revenue", "Medicine Revenue"})
	for i, day := range report.Daily {
		cell := fmt.Sprintf("A%d", i+2)
		f.SetSheetRow(sheet, cell, &[]interface{}{
			day.Date,
			day.ServiceRevenue.InexactFloat64(),
			day.MedicineRevenue.InexactFloat64(),
		})
	}
	totalRow := len(report.Daily) + 2
	f.SetSheetRow(sheet, fmt.Sprintf("A%d", totalRow), &[]interface{}{
		"Total",
		report.ServiceRevenue.InexactFloat64(),
		report.MedicineRevenue.InexactFloat64(),
	})

	const doctorSheet = "By Doctor"
	if _, err := f.NewSheet(doctorSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetSheetRow(doctorSheet, "A1", &[]interface{}{"Doctor", "Service Revenue", "Medicine Revenue", "Total"})
	for i, d := range doctors {
		cell := fmt.Sprintf("A%d", i+2)
		f.SetSheetRow(doctorSheet, cell, &[]interface{}{
			d.DoctorName,
			d.ServiceRevenue.InexactFloat64(),
			d.MedicineRevenue.InexactFloat64(),
			d.TotalRevenue.InexactFloat64(),
		})
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *ReportService) fromCache(ctx context.Context, key string) []byte {
	if s.rdb == nil {
		return nil
	}
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	return data
}

func (s *ReportService) toCache(ctx context.Context, key string, v interface{}) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, data, reportCacheTTL).Err(); err != nil {
		s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}
