package entity

import "gorm.io/gorm"

// AutoMigrate 自动迁移所有诊所业务表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// 基础数据
		&User{},
		&Patient{},
		&ServiceCategory{},
		&Service{},
		&MedicineCategory{},
		&Medicine{},

		// 接诊
		&Appointment{},
		&AppointmentDetail{},

		// 库存
		&Inventory{},
		&StockIn{},
		&StockInDetail{},
		&StockOut{},
		&StockOutDetail{},

		// 处方
		&Prescription{},
		&PrescriptionDetail{},
	)
}
