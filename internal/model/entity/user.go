package entity

// UserRole 用户角色
type UserRole string

const (
	RoleAdmin        UserRole = "ADMIN"
	RoleDoctor       UserRole = "DOCTOR"
	RoleReceptionist UserRole = "RECEPTIONIST"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleReceptionist:
		return true
	}
	return false
}

// User 系统用户（医生、前台、管理员）
type User struct {
	BaseModel
	Username string   `json:"username" gorm:"size:64;not null;uniqueIndex"`
	Password string   `json:"-" gorm:"size:128;not null"`
	Email    *string  `json:"email" gorm:"size:128;uniqueIndex"`
	Phone    *string  `json:"phone" gorm:"size:20;uniqueIndex"`
	Name     string   `json:"name" gorm:"size:128"`
	Role     UserRole `json:"role" gorm:"size:20;not null;default:RECEPTIONIST"`
}

func (User) TableName() string {
	return "users"
}
