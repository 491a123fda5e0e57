package filetransfer

import (
	"fmt"

	"github.com/Jayranbutong/rcsjta/pkg/ims"
)

// FileSharingErrorCode типизированный код ошибки файловой сессии.
type FileSharingErrorCode int

const (
	// Ошибки инициации сессии
	ErrorSessionInitiationFailed FileSharingErrorCode = iota + 1000
	ErrorSessionInitiationDeclined

	// Ошибки передачи
	ErrorMediaTransferFailed
	ErrorMediaUploadFailed
	ErrorMediaDownloadFailed
	ErrorMediaSavingFailed
	ErrorMediaSizeTooBig
	ErrorNotAllowedToSend

	// Прочие
	ErrorUnexpected
)

// String возвращает строковое представление кода ошибки
func (c FileSharingErrorCode) String() string {
	switch c {
	case ErrorSessionInitiationFailed:
		return "SessionInitiationFailed"
	case ErrorSessionInitiationDeclined:
		return "SessionInitiationDeclined"
	case ErrorMediaTransferFailed:
		return "MediaTransferFailed"
	case ErrorMediaUploadFailed:
		return "MediaUploadFailed"
	case ErrorMediaDownloadFailed:
		return "MediaDownloadFailed"
	case ErrorMediaSavingFailed:
		return "MediaSavingFailed"
	case ErrorMediaSizeTooBig:
		return "MediaSizeTooBig"
	case ErrorNotAllowedToSend:
		return "NotAllowedToSend"
	case ErrorUnexpected:
		return "Unexpected"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// FileSharingError ошибка файловой сессии, доставляемая наблюдателям через
// onTransferError. Оборачивает сервисную ошибку IMS слоя, сохраняя ее код
// и сообщение.
type FileSharingError struct {
	Code    FileSharingErrorCode
	Message string
	Wrapped error
}

// NewFileSharingError создает ошибку файловой сессии.
func NewFileSharingError(code FileSharingErrorCode, message string) *FileSharingError {
	return &FileSharingError{Code: code, Message: message}
}

// FromServiceError переводит сервисную ошибку IMS слоя в ошибку файловой сессии.
func FromServiceError(err *ims.ServiceError) *FileSharingError {
	code := ErrorUnexpected
	switch err.Code {
	case ims.ErrorSessionInitiationFailed:
		code = ErrorSessionInitiationFailed
	case ims.ErrorSessionInitiationDeclined:
		code = ErrorSessionInitiationDeclined
	case ims.ErrorMediaTransferFailed:
		code = ErrorMediaTransferFailed
	case ims.ErrorMediaUploadFailed:
		code = ErrorMediaUploadFailed
	case ims.ErrorMediaDownloadFailed:
		code = ErrorMediaDownloadFailed
	case ims.ErrorNotAllowed:
		code = ErrorNotAllowedToSend
	}
	return &FileSharingError{Code: code, Message: err.Message, Wrapped: err}
}

// Error реализует интерфейс error.
func (e *FileSharingError) Error() string {
	return fmt.Sprintf("[ft:%d] %s", e.Code, e.Message)
}

// Unwrap возвращает обернутую ошибку, поддерживая errors.Unwrap.
func (e *FileSharingError) Unwrap() error {
	return e.Wrapped
}

// Is поддерживает errors.Is, сравнивая ошибки по коду.
func (e *FileSharingError) Is(target error) bool {
	if t, ok := target.(*FileSharingError); ok {
		return e.Code == t.Code
	}
	return false
}
