package filetransfer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/emiago/sipgo/sip"
	"github.com/looplab/fsm"

	"github.com/Jayranbutong/rcsjta/pkg/contact"
	"github.com/Jayranbutong/rcsjta/pkg/content"
	"github.com/Jayranbutong/rcsjta/pkg/ims"
	"github.com/Jayranbutong/rcsjta/pkg/settings"
)

// State состояние жизненного цикла HTTP файловой сессии.
type State int

const (
	// StatePending сессия создана, финальный ответ сигнализации еще не получен.
	StatePending State = iota
	// StateEstablished сессия установлена: HTTP передача стартовала.
	StateEstablished
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateEstablished:
		return "ESTABLISHED"
	default:
		return "UNKNOWN"
	}
}

const (
	statePending     = "pending"
	stateEstablished = "established"
	eventStart       = "start"
)

// HttpSessionConfig параметры создания HTTP файловой сессии.
type HttpSessionConfig struct {
	TransferID     string
	ContributionID string
	Contact        contact.ContactId
	Content        content.MmContent
	FileIcon       content.MmContent
	Timestamp      time.Time

	// FileExpiration и IconExpiration - моменты (epoch millis), после которых
	// файл и иконка недоступны на контент-сервере.
	FileExpiration int64
	IconExpiration int64

	Remover      SessionRemover
	Capabilities CapabilityService
	// CapabilityTimeout таймаут fire-and-forget запроса обновления capabilities.
	CapabilityTimeout time.Duration

	Logger *slog.Logger
}

// HttpFileTransferSession файловая сессия, передаваемая через HTTP
// content-сервер и сопровождаемая SIP сигнализацией. Владеет машиной
// состояний PENDING -> ESTABLISHED, транслирует события HTTP движка
// наблюдателям и синхронизирует SIP завершение (BYE) с HTTP передачей.
//
// Все мутации жизненного цикла сериализуются мьютексом сессии. Фан-аут
// наблюдателям выполняется под этим мьютексом до того, как удаление сессии
// становится наблюдаемым; наблюдатели не должны повторно входить в
// мутирующие операции сессии.
type HttpFileTransferSession struct {
	*FileSharingSession

	mu           sync.Mutex
	stateMachine *fsm.FSM

	fileExpiration int64
	iconExpiration int64

	// terminated выставляется первым терминальным событием: ошибка,
	// завершение передачи либо abort. Последующие события не имеют эффекта.
	terminated bool

	control   TransferControl
	controlMu sync.Mutex

	remover      SessionRemover
	removeOnce   sync.Once
	capabilities CapabilityService
	capTimeout   time.Duration
}

// NewHttpFileTransferSession создает HTTP файловую сессию в состоянии PENDING.
func NewHttpFileTransferSession(cfg HttpSessionConfig) *HttpFileTransferSession {
	s := &HttpFileTransferSession{
		FileSharingSession: NewFileSharingSession(cfg.TransferID, cfg.ContributionID,
			cfg.Contact, cfg.Content, cfg.FileIcon, cfg.Timestamp, cfg.Logger),
		fileExpiration: cfg.FileExpiration,
		iconExpiration: cfg.IconExpiration,
		remover:        cfg.Remover,
		capabilities:   cfg.Capabilities,
		capTimeout:     cfg.CapabilityTimeout,
	}
	s.initStateMachine()
	coreMetrics.SessionCreated()
	return s
}

// initStateMachine инициализирует машину состояний сессии
func (s *HttpFileTransferSession) initStateMachine() {
	s.stateMachine = fsm.NewFSM(
		statePending,
		fsm.Events{
			// Единственный переход: установление сессии по старту HTTP передачи
			{Name: eventStart, Src: []string{statePending}, Dst: stateEstablished},
		},
		fsm.Callbacks{
			"after_event": func(_ context.Context, e *fsm.Event) {
				coreMetrics.StateTransition(e.Src, e.Dst)
				s.Logger().Debug("переход состояния сессии", "from", e.Src, "to", e.Dst)
			},
		},
	)
}

// SessionState возвращает текущее состояние жизненного цикла.
func (s *HttpFileTransferSession) SessionState() State {
	if s.stateMachine.Current() == stateEstablished {
		return StateEstablished
	}
	return StatePending
}

// FileExpiration возвращает момент (epoch millis), после которого файл
// недоступен для скачивания с контент-сервера. Значение фиксируется при
// создании сессии.
func (s *HttpFileTransferSession) FileExpiration() int64 {
	return s.fileExpiration
}

// IconExpiration возвращает момент (epoch millis), после которого иконка
// файла недоступна на контент-сервере.
func (s *HttpFileTransferSession) IconExpiration() int64 {
	return s.iconExpiration
}

// IsHTTPTransfer сообщает, что передача идет через HTTP content-сервер.
func (s *HttpFileTransferSession) IsHTTPTransfer() bool {
	return true
}

// CreateInvite формирует INVITE запрос сессии. HTTP сессия не строит SIP
// INVITE: анонс передачи идет через чат. Конкретные типы сессий, строящие
// сигнальные запросы, обязаны возвращать *ims.PayloadError при ошибке
// формирования.
func (s *HttpFileTransferSession) CreateInvite() (*sip.Request, error) {
	return nil, nil
}

// SetTransferControl устанавливает реализацию паузы и возобновления,
// зависящую от направления передачи.
func (s *HttpFileTransferSession) SetTransferControl(control TransferControl) {
	s.controlMu.Lock()
	defer s.controlMu.Unlock()
	s.control = control
}

func (s *HttpFileTransferSession) transferControl() TransferControl {
	s.controlMu.Lock()
	defer s.controlMu.Unlock()
	return s.control
}

// Pause приостанавливает передачу по запросу пользователя. Физическая
// реализация делегируется направлению передачи.
func (s *HttpFileTransferSession) Pause() {
	if c := s.transferControl(); c != nil {
		c.Pause()
	}
}

// Resume возобновляет приостановленную передачу.
func (s *HttpFileTransferSession) Resume() {
	if c := s.transferControl(); c != nil {
		c.Resume()
	}
}

// OnHTTPTransferStarted обрабатывает старт HTTP передачи: единственный
// переход PENDING -> ESTABLISHED. Повторный старт не ошибка и не порождает
// повторного OnSessionStarted.
func (s *HttpFileTransferSession) OnHTTPTransferStarted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminated {
		return
	}
	if s.stateMachine.Current() != statePending {
		return
	}
	if err := s.stateMachine.Event(context.Background(), eventStart); err != nil {
		s.Logger().Warn("переход start отклонен машиной состояний", "error", err)
		return
	}
	remote := s.RemoteContact()
	s.listeners.Notify(func(l FileSharingSessionListener) {
		l.OnSessionStarted(remote)
	})
}

// OnHTTPTransferProgress транслирует продвижение передачи наблюдателям.
// Состояние сессии не меняется.
func (s *HttpFileTransferSession) OnHTTPTransferProgress(currentSize, totalSize uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminated || s.IsSessionInterrupted() {
		return
	}
	coreMetrics.TransferProgress()
	remote := s.RemoteContact()
	s.listeners.Notify(func(l FileSharingSessionListener) {
		l.OnTransferProgress(remote, currentSize, totalSize)
	})
}

// OnHTTPTransferPausedByUser транслирует паузу по запросу пользователя.
func (s *HttpFileTransferSession) OnHTTPTransferPausedByUser() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminated {
		return
	}
	remote := s.RemoteContact()
	s.listeners.Notify(func(l FileSharingSessionListener) {
		l.OnFileTransferPausedByUser(remote)
	})
}

// OnHTTPTransferPausedBySystem транслирует паузу по инициативе системы.
func (s *HttpFileTransferSession) OnHTTPTransferPausedBySystem() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminated {
		return
	}
	remote := s.RemoteContact()
	s.listeners.Notify(func(l FileSharingSessionListener) {
		l.OnFileTransferPausedBySystem(remote)
	})
}

// OnHTTPTransferResumed транслирует возобновление передачи.
func (s *HttpFileTransferSession) OnHTTPTransferResumed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminated {
		return
	}
	remote := s.RemoteContact()
	s.listeners.Notify(func(l FileSharingSessionListener) {
		l.OnFileTransferResumed(remote)
	})
}

// OnHTTPTransferNotAllowedToSend транслирует запрет отправки.
func (s *HttpFileTransferSession) OnHTTPTransferNotAllowedToSend() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminated {
		return
	}
	remote := s.RemoteContact()
	s.listeners.Notify(func(l FileSharingSessionListener) {
		l.OnTransferNotAllowedToSend(remote)
	})
}

// HandleFileTransferred обрабатывает успешное завершение HTTP передачи:
// контент помечается доставленным, наблюдатели получают OnFileTransfered,
// после фан-аута сессия удаляется из реестра активных. Для HTTP передачи
// завершение означает, что файл принят контент-сервером, а не удаленной
// стороной.
func (s *HttpFileTransferSession) HandleFileTransferred() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminated {
		return
	}
	s.terminated = true
	s.FileTransferred()
	coreMetrics.SessionTerminated("transferred")

	remote := s.RemoteContact()
	fileContent := s.Content()
	fileExpiration := s.fileExpiration
	iconExpiration := s.iconExpiration
	s.listeners.Notify(func(l FileSharingSessionListener) {
		l.OnFileTransfered(fileContent, remote, fileExpiration, iconExpiration, settings.ProtocolHTTP)
	})
	s.removeFromRegistry()
}

// HandleError обрабатывает терминальную ошибку передачи. Если сессия уже
// прервана, возврат без побочных эффектов: это защищает от дублирования
// терминальных уведомлений при гонке транспортной ошибки и явного abort.
func (s *HttpFileTransferSession) HandleError(err *ims.ServiceError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.IsSessionInterrupted() || s.terminated {
		return
	}
	s.terminated = true
	s.Logger().Info("ошибка передачи",
		"error_code", err.Code.String(), "reason", err.Message)
	coreMetrics.SessionTerminated("error")
	coreMetrics.TransferError(err.Code.String())

	remote := s.RemoteContact()
	fsErr := FromServiceError(err)
	s.listeners.Notify(func(l FileSharingSessionListener) {
		l.OnTransferError(fsErr, remote)
	})
	s.removeFromRegistry()
}

// ReceiveBye обрабатывает входящий SIP BYE, адресованный этой сессии:
// выполняет общее завершение, уведомляет наблюдателей об удаленном abort и
// запрашивает обновление capabilities удаленного контакта. Запрос
// capabilities выполняется fire-and-forget после фан-аута и не может
// заблокировать или отменить удаление сессии.
func (s *HttpFileTransferSession) ReceiveBye(req *sip.Request, tx sip.ServerTransaction) error {
	// Общая обработка BYE: подтверждаем завершение удаленной стороне
	if tx != nil && req != nil {
		res := sip.NewResponseFromRequest(req, sip.StatusOK, "OK", nil)
		if err := tx.Respond(res); err != nil {
			s.Logger().Warn("ошибка ответа на BYE", "error", err)
		}
	}

	s.mu.Lock()
	if s.terminated {
		s.mu.Unlock()
		return nil
	}
	s.terminated = true
	s.InterruptSession()
	closeErr := s.CloseSession(ims.TerminationByRemote)
	coreMetrics.SessionTerminated("aborted_by_remote")

	remote := s.RemoteContact()
	s.listeners.Notify(func(l FileSharingSessionListener) {
		l.OnSessionAborted(remote, ims.TerminationByRemote)
	})
	s.removeFromRegistry()
	s.mu.Unlock()

	go s.refreshRemoteCapabilities(remote)
	return closeErr
}

// AbortSession завершает сессию локально с указанной причиной: передача
// прерывается, наблюдатели получают OnSessionAborted, сессия удаляется из
// реестра. Терминальный путь, взаимоисключающий с ошибкой и завершением
// передачи: выигрывает первый.
func (s *HttpFileTransferSession) AbortSession(reason ims.TerminationReason) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminated {
		return nil
	}
	s.terminated = true
	s.InterruptSession()
	closeErr := s.CloseSession(reason)
	coreMetrics.SessionTerminated("aborted")

	remote := s.RemoteContact()
	s.listeners.Notify(func(l FileSharingSessionListener) {
		l.OnSessionAborted(remote, reason)
	})
	s.removeFromRegistry()
	return closeErr
}

// CloseHTTPSession составная операция закрытия: прерывание сессии, общее
// закрытие с указанной причиной и удаление из реестра. Удаление выполняется
// безусловно: ошибка закрытия не оставляет сессию в реестре.
func (s *HttpFileTransferSession) CloseHTTPSession(reason ims.TerminationReason) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terminated = true
	s.InterruptSession()
	closeErr := s.CloseSession(reason)
	s.removeFromRegistry()
	return closeErr
}

// removeFromRegistry удаляет сессию из реестра активных ровно один раз.
// Вызывается на каждом терминальном пути после фан-аута.
func (s *HttpFileTransferSession) removeFromRegistry() {
	s.removeOnce.Do(func() {
		s.StopInactivityTimer()
		if s.remover != nil {
			s.remover.RemoveSession(s)
		}
		coreMetrics.SessionRemoved()
	})
}

// refreshRemoteCapabilities запрашивает обновление capabilities удаленного
// контакта после завершения сессии удаленной стороной. Завершенная сессия -
// сигнал возможного устаревания известных capabilities. Ошибка запроса
// логируется и не влияет на teardown.
func (s *HttpFileTransferSession) refreshRemoteCapabilities(remote contact.ContactId) {
	if s.capabilities == nil {
		return
	}
	timeout := s.capTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	coreMetrics.CapabilityRefreshRequested()
	if err := s.capabilities.RequestContactCapabilities(ctx, remote); err != nil {
		s.Logger().Warn("ошибка обновления capabilities контакта",
			"contact", remote.String(), "error", err)
	}
}
