package ims

import (
	"fmt"
)

// ErrorCode типизированный код сервисной ошибки IMS слоя.
type ErrorCode int

const (
	// Ошибки инициации и сигнализации
	ErrorSessionInitiationFailed ErrorCode = iota + 100
	ErrorSessionInitiationDeclined
	ErrorSessionInitiationCancelled

	// Ошибки передачи данных
	ErrorMediaTransferFailed
	ErrorMediaUploadFailed
	ErrorMediaDownloadFailed

	// Прочие ошибки
	ErrorUnexpectedException
	ErrorNotAllowed
)

// String возвращает строковое представление кода ошибки
func (c ErrorCode) String() string {
	switch c {
	case ErrorSessionInitiationFailed:
		return "SessionInitiationFailed"
	case ErrorSessionInitiationDeclined:
		return "SessionInitiationDeclined"
	case ErrorSessionInitiationCancelled:
		return "SessionInitiationCancelled"
	case ErrorMediaTransferFailed:
		return "MediaTransferFailed"
	case ErrorMediaUploadFailed:
		return "MediaUploadFailed"
	case ErrorMediaDownloadFailed:
		return "MediaDownloadFailed"
	case ErrorUnexpectedException:
		return "UnexpectedException"
	case ErrorNotAllowed:
		return "NotAllowed"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// ServiceError сервисная ошибка IMS слоя. Несет типизированный код,
// читаемое сообщение и опционально обернутую причину.
type ServiceError struct {
	Code    ErrorCode
	Message string
	Wrapped error
}

// NewServiceError создает сервисную ошибку с кодом и сообщением.
func NewServiceError(code ErrorCode, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message}
}

// WrapServiceError создает сервисную ошибку, оборачивающую причину.
func WrapServiceError(code ErrorCode, message string, cause error) *ServiceError {
	return &ServiceError{Code: code, Message: message, Wrapped: cause}
}

// Error реализует интерфейс error.
func (e *ServiceError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[ims:%d] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[ims:%d] %s", e.Code, e.Message)
}

// Unwrap возвращает обернутую ошибку, поддерживая errors.Unwrap.
func (e *ServiceError) Unwrap() error {
	return e.Wrapped
}

// Is поддерживает errors.Is, сравнивая ошибки по коду.
func (e *ServiceError) Is(target error) bool {
	if t, ok := target.(*ServiceError); ok {
		return e.Code == t.Code
	}
	return false
}

// PayloadError ошибка формирования или разбора полезной нагрузки сигнализации.
type PayloadError struct {
	Message string
	Wrapped error
}

func (e *PayloadError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("payload error: %s: %v", e.Message, e.Wrapped)
	}
	return fmt.Sprintf("payload error: %s", e.Message)
}

func (e *PayloadError) Unwrap() error { return e.Wrapped }

// NewPayloadError создает ошибку полезной нагрузки.
func NewPayloadError(message string, cause error) *PayloadError {
	return &PayloadError{Message: message, Wrapped: cause}
}

// NetworkError сетевая ошибка при выполнении сигнальной операции.
type NetworkError struct {
	Message string
	Wrapped error
}

func (e *NetworkError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("network error: %s: %v", e.Message, e.Wrapped)
	}
	return fmt.Sprintf("network error: %s", e.Message)
}

func (e *NetworkError) Unwrap() error { return e.Wrapped }

// NewNetworkError создает сетевую ошибку.
func NewNetworkError(message string, cause error) *NetworkError {
	return &NetworkError{Message: message, Wrapped: cause}
}
