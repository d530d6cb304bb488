package entity

import "github.com/shopspring/decimal"

// ServiceCategory 服务类别，编号格式 LDV001
type ServiceCategory struct {
	BaseModel
	Name string `json:"name" gorm:"size:128;not null"`
	Code string `json:"code" gorm:"size:20;not null;uniqueIndex"`
	Note string `json:"note" gorm:"size:255"`

	Services []Service `json:"services,omitempty" gorm:"foreignKey:CategoryID"`
}

func (ServiceCategory) TableName() string {
	return "service_category"
}

// Service 诊疗服务项目，编号格式 DV0001
type Service struct {
	BaseModel
	Name        string          `json:"name" gorm:"size:128;not null"`
	Code        string          `json:"code" gorm:"size:20;not null;uniqueIndex"`
	Description string          `json:"description" gorm:"size:255"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null;default:0"`
	CategoryID  string          `json:"category_id" gorm:"size:36;index"`

	Category *ServiceCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (Service) TableName() string {
	return "service"
}
