// Package ftservice предоставляет клиентский API файловых передач: запуск
// исходящей передачи, прием входящего приглашения, доступ к активным
// сессиям и управление политикой автоприема.
package ftservice

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Jayranbutong/rcsjta/pkg/contact"
	"github.com/Jayranbutong/rcsjta/pkg/content"
	"github.com/Jayranbutong/rcsjta/pkg/filetransfer"
	"github.com/Jayranbutong/rcsjta/pkg/ims"
	"github.com/Jayranbutong/rcsjta/pkg/settings"
)

// Service клиентский сервис файловых передач. Владеет реестром активных
// сессий и набором сервисных слушателей, добавляемых к каждой новой сессии.
type Service struct {
	cfg      *settings.RcsSettings
	registry *filetransfer.Registry
	engine   filetransfer.TransferEngine
	caps     filetransfer.CapabilityService
	logger   *slog.Logger

	listenersMu sync.RWMutex
	listeners   []filetransfer.FileSharingSessionListener

	readMu sync.Mutex
	read   map[string]struct{}
}

// NewService создает сервис файловых передач.
func NewService(cfg *settings.RcsSettings, engine filetransfer.TransferEngine,
	caps filetransfer.CapabilityService, logger *slog.Logger) *Service {

	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:      cfg,
		registry: filetransfer.NewRegistry(),
		engine:   engine,
		caps:     caps,
		logger:   logger.With("component", "ftservice"),
		read:     make(map[string]struct{}),
	}
}

// Registry возвращает реестр активных сессий.
func (s *Service) Registry() *filetransfer.Registry {
	return s.registry
}

// AddListener регистрирует сервисного слушателя. Он будет добавлен ко всем
// новым сессиям; существующие сессии не затрагиваются.
func (s *Service) AddListener(l filetransfer.FileSharingSessionListener) {
	if l == nil {
		return
	}
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, l)
}

// RemoveListener снимает регистрацию сервисного слушателя.
func (s *Service) RemoveListener(l filetransfer.FileSharingSessionListener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	for i, existing := range s.listeners {
		if existing == l {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

func (s *Service) serviceListeners() []filetransfer.FileSharingSessionListener {
	s.listenersMu.RLock()
	defer s.listenersMu.RUnlock()
	out := make([]filetransfer.FileSharingSessionListener, len(s.listeners))
	copy(out, s.listeners)
	return out
}

// TransferRequest параметры передачи файла.
type TransferRequest struct {
	Contact        contact.ContactId
	Content        content.MmContent
	FileIcon       content.MmContent
	ContributionID string
	// FileExpiration и IconExpiration - сроки валидности контента на
	// контент-сервере (epoch millis), сообщаемые сервером при анонсе.
	FileExpiration int64
	IconExpiration int64
}

// TransferFile запускает исходящую передачу файла контакту. Проверяет лимиты
// из настроек, создает исходящую сессию, регистрирует ее в реестре и
// возвращает дескриптор передачи.
func (s *Service) TransferFile(req TransferRequest) (*FileTransfer, error) {
	if req.Contact.IsZero() {
		return nil, errors.New("не указан контакт")
	}
	if req.Content.IsZero() {
		return nil, errors.New("не указан контент")
	}
	if req.Content.Size() > s.cfg.MaxFileTransferSize {
		return nil, errors.Errorf("размер файла %d превышает предел %d",
			req.Content.Size(), s.cfg.MaxFileTransferSize)
	}
	if s.registry.Count() >= s.cfg.MaxFileTransferSessions {
		return nil, errors.Errorf("достигнут предел одновременных передач: %d",
			s.cfg.MaxFileTransferSessions)
	}

	cfg := s.sessionConfig(req)
	session := filetransfer.NewOriginatingHttpFileTransferSession(cfg, s.engine)
	s.attach(session.HttpFileTransferSession)

	s.logger.Info("исходящая передача создана",
		"transfer_id", cfg.TransferID,
		"contact", req.Contact.String(),
		"size", req.Content.Size())
	return newFileTransfer(session.HttpFileTransferSession), nil
}

// ReceiveFileTransferInvitation принимает входящее приглашение на передачу
// файла и создает входящую сессию. Решение об автоприеме остается за
// вызывающей стороной; сервис лишь хранит политику (см. SetAutoAccept).
func (s *Service) ReceiveFileTransferInvitation(req TransferRequest) (*FileTransfer, error) {
	if req.Contact.IsZero() {
		return nil, errors.New("не указан контакт")
	}
	if req.Content.Size() > s.cfg.MaxFileTransferSize {
		return nil, errors.Errorf("размер файла %d превышает предел %d",
			req.Content.Size(), s.cfg.MaxFileTransferSize)
	}

	cfg := s.sessionConfig(req)
	session := filetransfer.NewTerminatingHttpFileTransferSession(cfg, s.engine)
	s.attach(session.HttpFileTransferSession)

	s.logger.Info("входящая передача создана",
		"transfer_id", cfg.TransferID,
		"contact", req.Contact.String())
	return newFileTransfer(session.HttpFileTransferSession), nil
}

// sessionConfig собирает конфигурацию сессии из запроса и настроек
func (s *Service) sessionConfig(req TransferRequest) filetransfer.HttpSessionConfig {
	return filetransfer.HttpSessionConfig{
		TransferID:        uuid.NewString(),
		ContributionID:    req.ContributionID,
		Contact:           req.Contact,
		Content:           req.Content,
		FileIcon:          req.FileIcon,
		Timestamp:         time.Now(),
		FileExpiration:    req.FileExpiration,
		IconExpiration:    req.IconExpiration,
		Remover:           s.registry,
		Capabilities:      s.caps,
		CapabilityTimeout: s.cfg.CapabilityRefreshTimeout.Duration,
		Logger:            s.logger,
	}
}

// attach регистрирует сессию в реестре и добавляет сервисных слушателей
func (s *Service) attach(session *filetransfer.HttpFileTransferSession) {
	for _, l := range s.serviceListeners() {
		session.AddListener(l)
	}
	s.registry.AddSession(session)
}

// FileTransfers возвращает дескрипторы всех активных передач.
func (s *Service) FileTransfers() []*FileTransfer {
	sessions := s.registry.Sessions()
	out := make([]*FileTransfer, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, newFileTransfer(session))
	}
	return out
}

// FileTransfer возвращает дескриптор передачи по идентификатору.
func (s *Service) FileTransfer(transferID string) (*FileTransfer, bool) {
	session, ok := s.registry.Session(transferID)
	if !ok {
		return nil, false
	}
	return newFileTransfer(session), true
}

// MarkFileTransferAsRead помечает передачу прочитанной.
func (s *Service) MarkFileTransferAsRead(transferID string) {
	s.readMu.Lock()
	defer s.readMu.Unlock()
	s.read[transferID] = struct{}{}
}

// IsFileTransferRead сообщает, была ли передача помечена прочитанной.
func (s *Service) IsFileTransferRead(transferID string) bool {
	s.readMu.Lock()
	defer s.readMu.Unlock()
	_, ok := s.read[transferID]
	return ok
}

// SetAutoAccept изменяет политику автоприема в домашней сети.
func (s *Service) SetAutoAccept(enable bool) {
	s.cfg.SetFileTransferAutoAccept(enable)
}

// SetAutoAcceptInRoaming изменяет политику автоприема в роуминге.
func (s *Service) SetAutoAcceptInRoaming(enable bool) {
	s.cfg.SetFileTransferAutoAcceptInRoaming(enable)
}

// AbortAll завершает все активные передачи с указанной причиной.
// Используется при остановке сервиса.
func (s *Service) AbortAll(reason ims.TerminationReason) {
	for _, session := range s.registry.Sessions() {
		if err := session.AbortSession(reason); err != nil {
			s.logger.Warn("ошибка завершения сессии",
				"transfer_id", session.TransferID(), "error", err)
		}
	}
}
