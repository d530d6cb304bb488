package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/candat96/mini-cis/internal/apperr"
	"github.com/candat96/mini-cis/internal/repository"
	"gorm.io/gorm"
)

// 各单据编号前缀与定宽位数
const (
	codePrefixMedicine         = "T"
	codeWidthMedicine          = 4
	codePrefixMedicineCategory = "MC"
	codeWidthMedicineCategory  = 3
	codePrefixService          = "DV"
	codeWidthService           = 4
	codePrefixServiceCategory  = "LDV"
	codeWidthServiceCategory   = 3
	codePrefixPatient          = "BN"
	codeWidthPatient           = 6
	codePrefixStockIn          = "NK"
	codeWidthStockIn           = 4
	codePrefixStockOut         = "XK"
	codeWidthStockOut          = 4
	codePrefixPrescription     = "DT"
	codeWidthPrescription      = 6
)

// CodeSequence 生成顺序业务编号。编号定宽补零，字符串最大值即数值最大值，
// 取最大后加一。读写之间的竞态由唯一索引兜底，调用方冲突时重试。
type CodeSequence struct {
	repo *repository.CodeRepository
}

func NewCodeSequence(repo *repository.CodeRepository) *CodeSequence {
	return &CodeSequence{repo: repo}
}

// WithTx 返回绑定到事务的序列
func (s *CodeSequence) WithTx(tx *gorm.DB) *CodeSequence {
	return &CodeSequence{repo: s.repo.WithTx(tx)}
}

// Next 生成下一个编号，如 DT000001。遇到无法解析的存量编号直接报错，
// 不做静默回退。
func (s *CodeSequence) Next(model interface{}, prefix string, width int) (string, error) {
	last, err := s.repo.MaxCode(model, prefix)
	if err != nil {
		return "", fmt.Errorf("query max code for prefix %s: %w", prefix, err)
	}

	next := 1
	if last != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(last, prefix))
		if err != nil {
			return "", apperr.InvalidCodeFormat(last)
		}
		next = n + 1
	}

	return fmt.Sprintf("%s%0*d", prefix, width, next), nil
}

// retryOnDuplicate 编号生成读写之间存在竞态，唯一索引冲突时整体重试一次
func retryOnDuplicate(fn func() error) error {
	err := fn()
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = fn()
	}
	return err
}
