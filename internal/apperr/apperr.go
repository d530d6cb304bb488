package apperr

import (
	"errors"
	"fmt"
)

// Kind 业务错误类别，handler 层据此映射 HTTP 状态码
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindConflict
	KindInsufficientStock
	KindInvalidState
	KindInvalidCodeFormat
	KindUnauthorized
	KindValidation
)

// Error 带上下文的业务错误
type Error struct {
	Kind      Kind
	Entity    string
	ID        string
	Available int // InsufficientStock 时为当前可用数量
	Message   string
}

func (e *Error) Error() string {
	return e.Message
}

func NotFound(entity, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Entity:  entity,
		ID:      id,
		Message: fmt.Sprintf("%s not found: %s", entity, id),
	}
}

func Conflict(entity, msg string) *Error {
	return &Error{Kind: KindConflict, Entity: entity, Message: msg}
}

func InsufficientStock(medicineID string, requested, available int) *Error {
	return &Error{
		Kind:      KindInsufficientStock,
		Entity:    "medicine",
		ID:        medicineID,
		Available: available,
		Message:   fmt.Sprintf("insufficient stock for medicine %s: requested %d, available %d", medicineID, requested, available),
	}
}

func InvalidState(msg string) *Error {
	return &Error{Kind: KindInvalidState, Message: msg}
}

func InvalidCodeFormat(code string) *Error {
	return &Error{
		Kind:    KindInvalidCodeFormat,
		Message: fmt.Sprintf("invalid code format: %q", code),
	}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// IsKind 判断 err 是否为指定类别的业务错误
func IsKind(err error, k Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == k
}

// As 提取业务错误，便于 handler 读取上下文字段
func As(err error) (*Error, bool) {
	var ae *Error
	ok := errors.As(err, &ae)
	return ae, ok
}
