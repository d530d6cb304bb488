package repository

import "gorm.io/gorm"

// CodeRepository 查询各单据当前最大的业务编号
type CodeRepository struct {
	db *gorm.DB
}

func NewCodeRepository(db *gorm.DB) *CodeRepository {
	return &CodeRepository{db: db}
}

// WithTx 返回绑定到事务的仓库
func (r *CodeRepository) WithTx(tx *gorm.DB) *CodeRepository {
	return &CodeRepository{db: tx}
}

// MaxCode 返回指定实体中匹配前缀的最大编号，编号定宽补零，
// 字符串序即数值序。没有匹配记录时返回空串。
// 软删除的记录仍参与取最大值，保证编号单调递增、不复用已删单据的编号。
func (r *CodeRepository) MaxCode(model interface{}, prefix string) (string, error) {
	var codes []string
	err := r.db.Unscoped().Model(model).
		Where("code LIKE ?", prefix+"%").
		Order("code DESC").
		Limit(1).
		Pluck("code", &codes).Error
	if err != nil {
		return "", err
	}
	if len(codes) == 0 {
		return "", nil
	}
	return codes[0], nil
}
