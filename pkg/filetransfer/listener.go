package filetransfer

import (
	"log/slog"
	"sync"

	"github.com/Jayranbutong/rcsjta/pkg/contact"
	"github.com/Jayranbutong/rcsjta/pkg/content"
	"github.com/Jayranbutong/rcsjta/pkg/ims"
	"github.com/Jayranbutong/rcsjta/pkg/settings"
)

// FileSharingSessionListener наблюдатель файловой сессии. Расширяет базовый
// наблюдатель IMS сессии колбэками файловой передачи.
//
// Колбэки вызываются синхронно в контексте источника события (рабочий поток
// HTTP движка либо диспетчер SIP сигнализации), поэтому реализации не должны
// блокироваться. Порядок доставки соответствует порядку регистрации
// слушателей и порядку наблюдения событий.
type FileSharingSessionListener interface {
	ims.SessionListener

	// OnTransferProgress вызывается при продвижении передачи.
	OnTransferProgress(contact contact.ContactId, currentSize, totalSize uint64)

	// OnTransferNotAllowedToSend вызывается, когда отправка запрещена политикой.
	OnTransferNotAllowedToSend(contact contact.ContactId)

	// OnFileTransferPausedByUser вызывается при паузе по запросу пользователя.
	OnFileTransferPausedByUser(contact contact.ContactId)

	// OnFileTransferPausedBySystem вызывается при паузе по инициативе системы.
	OnFileTransferPausedBySystem(contact contact.ContactId)

	// OnFileTransferResumed вызывается при возобновлении передачи.
	OnFileTransferResumed(contact contact.ContactId)

	// OnFileTransfered вызывается однократно при успешном завершении передачи.
	// Передается контент, контакт, сроки валидности файла и иконки на
	// контент-сервере и протокол передачи.
	OnFileTransfered(content content.MmContent, contact contact.ContactId,
		fileExpiration, iconExpiration int64, protocol settings.FileTransferProtocol)

	// OnTransferError вызывается однократно при терминальной ошибке передачи.
	OnTransferError(err *FileSharingError, contact contact.ContactId)
}

// listenerSet потокобезопасный набор слушателей с семантикой snapshot при
// итерации: слушатель, снявший свою регистрацию из колбэка, не ломает обход.
// Доставка идет в порядке регистрации.
type listenerSet struct {
	mu        sync.RWMutex
	listeners []FileSharingSessionListener
	logger    *slog.Logger
}

func newListenerSet(logger *slog.Logger) *listenerSet {
	return &listenerSet{logger: logger}
}

// Add регистрирует слушателя. Повторная регистрация того же слушателя игнорируется.
func (ls *listenerSet) Add(l FileSharingSessionListener) {
	if l == nil {
		return
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	for _, existing := range ls.listeners {
		if existing == l {
			return
		}
	}
	ls.listeners = append(ls.listeners, l)
}

// Remove снимает регистрацию слушателя.
func (ls *listenerSet) Remove(l FileSharingSessionListener) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	for i, existing := range ls.listeners {
		if existing == l {
			ls.listeners = append(ls.listeners[:i], ls.listeners[i+1:]...)
			return
		}
	}
}

// snapshot возвращает копию списка слушателей для итерации.
func (ls *listenerSet) snapshot() []FileSharingSessionListener {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	out := make([]FileSharingSessionListener, len(ls.listeners))
	copy(out, ls.listeners)
	return out
}

// Notify доставляет событие каждому зарегистрированному слушателю ровно один
// раз. Паника в одном слушателе не мешает доставке остальным.
func (ls *listenerSet) Notify(fn func(FileSharingSessionListener)) {
	for _, l := range ls.snapshot() {
		ls.invoke(l, fn)
	}
}

func (ls *listenerSet) invoke(l FileSharingSessionListener, fn func(FileSharingSessionListener)) {
	defer func() {
		if r := recover(); r != nil {
			ls.logger.Error("паника в слушателе файловой сессии", "panic", r)
		}
	}()
	fn(l)
}
