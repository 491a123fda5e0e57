package filetransfer

import (
	"context"

	"github.com/Jayranbutong/rcsjta/pkg/contact"
	"github.com/Jayranbutong/rcsjta/pkg/ims"
)

// HTTPTransferEventListener поверхность событий HTTP движка передачи.
// Движок (внешний компонент, выполняющий upload/download) сообщает ядру о
// жизненном цикле передачи через эти колбэки. HttpFileTransferSession
// реализует интерфейс и транслирует события наблюдателям сессии.
type HTTPTransferEventListener interface {
	// OnHTTPTransferStarted вызывается при старте HTTP передачи.
	OnHTTPTransferStarted()

	// OnHTTPTransferProgress вызывается при продвижении передачи.
	OnHTTPTransferProgress(currentSize, totalSize uint64)

	// OnHTTPTransferPausedByUser вызывается при паузе по запросу пользователя.
	OnHTTPTransferPausedByUser()

	// OnHTTPTransferPausedBySystem вызывается при паузе по инициативе системы.
	OnHTTPTransferPausedBySystem()

	// OnHTTPTransferResumed вызывается при возобновлении передачи.
	OnHTTPTransferResumed()

	// OnHTTPTransferNotAllowedToSend вызывается, когда отправка запрещена.
	OnHTTPTransferNotAllowedToSend()
}

// TransferEngine управляющая поверхность HTTP движка передачи. Ядро не
// выполняет передачу само: физическая пауза и возобновление делегируются
// движку по идентификатору передачи.
type TransferEngine interface {
	// PauseTransfer приостанавливает передачу.
	PauseTransfer(transferID string) error
	// ResumeTransfer возобновляет передачу.
	ResumeTransfer(transferID string) error
	// CancelTransfer прекращает передачу при закрытии сессии.
	CancelTransfer(transferID string) error
}

// TransferControl контракт паузы и возобновления, реализуемый конкретным
// направлением передачи (исходящая либо входящая сессия). Базовая машина
// состояний хранит ссылку на эту способность, не зная конкретного типа.
type TransferControl interface {
	// Pause физически приостанавливает передачу на движке.
	Pause()
	// Resume физически возобновляет передачу на движке.
	Resume()
}

// CapabilityService коллаборатор, обновляющий известные capabilities
// удаленного контакта. Запрос выполняется по принципу fire-and-forget:
// его ошибка логируется и не влияет на жизненный цикл сессии.
type CapabilityService interface {
	RequestContactCapabilities(ctx context.Context, contact contact.ContactId) error
}

// SessionRemover учет удаления сессии из реестра активных. Реализуется
// реестром; сессия обязана вызвать удаление ровно один раз на каждом
// терминальном пути.
type SessionRemover interface {
	RemoveSession(session *HttpFileTransferSession)
}

// предохранитель соответствия интерфейсам
var (
	_ HTTPTransferEventListener = (*HttpFileTransferSession)(nil)
	_ ims.SessionListener       = (FileSharingSessionListener)(nil)
)
