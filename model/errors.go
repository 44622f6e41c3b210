package model

import (
	"errors"
	"fmt"
)

// 错误分类，调用方使用 errors.Is 判断
var (
	ErrValidation = errors.New("validation error")
	ErrAuth       = errors.New("authentication error")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// AppError 携带错误分类和可以直接返回给客户端的消息
type AppError struct {
	Kind    error
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Kind
}

// NewError 创建一个指定分类的 AppError
func NewError(kind error, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Message 返回错误中可以展示给用户的消息，没有则返回 fallback
func Message(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
