package repository

import (
	"github.com/candat96/mini-cis/internal/model/entity"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *entity.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id string) (*entity.User, error) {
	var u entity.User
	err := r.db.Where("id = ?", id).First(&u).Error
	return &u, err
}

func (r *UserRepository) GetByUsername(username string) (*entity.User, error) {
	var u entity.User
	err := r.db.Where("username = ?", username).First(&u).Error
	return &u, err
}

func (r *UserRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.db.Model(&entity.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&entity.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) ExistsByPhone(phone string) (bool, error) {
	var count int64
	err := r.db.Model(&entity.User{}).Where("phone = ?", phone).Count(&count).Error
	return count > 0, err
}

// ListByRoles 按角色列出用户（如报表取全部医生）
func (r *UserRepository) ListByRoles(roles ...entity.UserRole) ([]entity.User, error) {
	var users []entity.User
	err := r.db.Where("role IN ?", roles).Order("username ASC").Find(&users).Error
	return users, err
}
