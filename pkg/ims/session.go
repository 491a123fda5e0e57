// Package ims содержит базовую инфраструктуру IMS сессий: флаг прерывания,
// таймеры, учет слушателей и завершение сессии. Конкретные типы сессий
// (файловые, чатовые) встраивают Session и специализируют его поведение.
package ims

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Jayranbutong/rcsjta/pkg/contact"
)

// TerminationReason причина завершения сессии.
type TerminationReason int

const (
	TerminationBySystem TerminationReason = iota
	TerminationByUser
	TerminationByRemote
	TerminationByTimeout
	TerminationByInactivity
	TerminationByConnectionLost
)

func (r TerminationReason) String() string {
	switch r {
	case TerminationBySystem:
		return "TERMINATION_BY_SYSTEM"
	case TerminationByUser:
		return "TERMINATION_BY_USER"
	case TerminationByRemote:
		return "TERMINATION_BY_REMOTE"
	case TerminationByTimeout:
		return "TERMINATION_BY_TIMEOUT"
	case TerminationByInactivity:
		return "TERMINATION_BY_INACTIVITY"
	case TerminationByConnectionLost:
		return "TERMINATION_BY_CONNECTION_LOST"
	default:
		return "TERMINATION_UNKNOWN"
	}
}

// SessionListener базовый наблюдатель IMS сессии. Расширяется наблюдателями
// конкретных типов сессий. Колбэки вызываются синхронно в контексте источника
// события, поэтому реализации не должны блокироваться.
type SessionListener interface {
	// OnSessionStarted вызывается при установлении сессии.
	OnSessionStarted(contact contact.ContactId)
	// OnSessionAborted вызывается при завершении сессии с указанием причины.
	OnSessionAborted(contact contact.ContactId, reason TerminationReason)
}

// CloseHook выполняет специфичную для типа сессии работу по закрытию.
// Может вернуть *PayloadError или *NetworkError.
type CloseHook func(reason TerminationReason) error

// Session базовая IMS сессия. Все мутации состояния сериализуются
// внутренним мьютексом; конкретные типы сессий не обращаются к полям напрямую.
type Session struct {
	mu sync.Mutex

	sessionID string
	remote    contact.ContactId
	timestamp time.Time

	interrupted bool
	closed      bool

	closeHook CloseHook

	inactivityTimer *time.Timer

	logger *slog.Logger
}

// NewSession создает базовую сессию.
func NewSession(sessionID string, remote contact.ContactId, timestamp time.Time, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		sessionID: sessionID,
		remote:    remote,
		timestamp: timestamp,
		logger:    logger.With("session_id", sessionID),
	}
}

// SessionID возвращает идентификатор сессии.
func (s *Session) SessionID() string {
	return s.sessionID
}

// RemoteContact возвращает идентификатор удаленного контакта.
func (s *Session) RemoteContact() contact.ContactId {
	return s.remote
}

// Timestamp возвращает локальное время создания сессии.
func (s *Session) Timestamp() time.Time {
	return s.timestamp
}

// Logger возвращает логгер сессии с привязанным session_id.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// SetCloseHook устанавливает обработчик закрытия сессии. Вызывается
// конкретным типом сессии при конструировании.
func (s *Session) SetCloseHook(hook CloseHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeHook = hook
}

// InterruptSession помечает сессию прерванной. Повторные вызовы не имеют эффекта.
func (s *Session) InterruptSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.interrupted {
		return
	}
	s.interrupted = true
	s.stopInactivityTimerLocked()
	s.logger.Debug("сессия прервана")
}

// IsSessionInterrupted сообщает, была ли сессия прервана.
func (s *Session) IsSessionInterrupted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interrupted
}

// CloseSession выполняет общее закрытие сессии: останавливает таймеры и
// вызывает обработчик закрытия. Повторное закрытие не имеет эффекта.
func (s *Session) CloseSession(reason TerminationReason) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.stopInactivityTimerLocked()
	hook := s.closeHook
	s.mu.Unlock()

	s.logger.Info("закрытие сессии", "reason", reason.String())
	if hook != nil {
		return hook(reason)
	}
	return nil
}

// StartInactivityTimer запускает таймер неактивности. По срабатыванию
// вызывается onExpired в отдельной горутине.
func (s *Session) StartInactivityTimer(timeout time.Duration, onExpired func()) {
	if timeout <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.interrupted || s.closed {
		return
	}
	s.stopInactivityTimerLocked()
	s.inactivityTimer = time.AfterFunc(timeout, onExpired)
}

// RestartInactivityTimer перезапускает таймер неактивности, если он был запущен.
func (s *Session) RestartInactivityTimer(timeout time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inactivityTimer == nil || s.interrupted || s.closed {
		return
	}
	s.inactivityTimer.Reset(timeout)
}

// StopInactivityTimer останавливает таймер неактивности.
func (s *Session) StopInactivityTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopInactivityTimerLocked()
}

func (s *Session) stopInactivityTimerLocked() {
	if s.inactivityTimer != nil {
		s.inactivityTimer.Stop()
		s.inactivityTimer = nil
	}
}
