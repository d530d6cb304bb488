package entity

// Gender 性别
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// Patient 患者档案，编号格式 BN000001
type Patient struct {
	BaseModel
	Code       string `json:"code" gorm:"size:20;not null;uniqueIndex"`
	Name       string `json:"name" gorm:"size:128;not null"`
	Phone      string `json:"phone" gorm:"size:20;not null;index"`
	Gender     Gender `json:"gender" gorm:"size:10"`
	Address    string `json:"address" gorm:"size:255"`
	Occupation string `json:"occupation" gorm:"size:128"`
}

func (Patient) TableName() string {
	return "patient"
}
