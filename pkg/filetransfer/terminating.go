package filetransfer

import (
	"github.com/Jayranbutong/rcsjta/pkg/ims"
)

// TerminatingHttpFileTransferSession входящая файловая сессия: локальная
// сторона скачивает файл с контент-сервера после принятия приглашения.
type TerminatingHttpFileTransferSession struct {
	*HttpFileTransferSession

	engine TransferEngine
}

// NewTerminatingHttpFileTransferSession создает входящую HTTP файловую сессию.
func NewTerminatingHttpFileTransferSession(cfg HttpSessionConfig, engine TransferEngine) *TerminatingHttpFileTransferSession {
	s := &TerminatingHttpFileTransferSession{
		HttpFileTransferSession: NewHttpFileTransferSession(cfg),
		engine:                  engine,
	}
	s.SetTransferControl(s)
	s.SetCloseHook(s.closeTransfer)
	return s
}

// Pause приостанавливает скачивание на движке.
func (s *TerminatingHttpFileTransferSession) Pause() {
	if err := s.engine.PauseTransfer(s.TransferID()); err != nil {
		s.Logger().Warn("ошибка паузы скачивания", "error", err)
	}
}

// Resume возобновляет скачивание на движке.
func (s *TerminatingHttpFileTransferSession) Resume() {
	if err := s.engine.ResumeTransfer(s.TransferID()); err != nil {
		s.Logger().Warn("ошибка возобновления скачивания", "error", err)
	}
}

// closeTransfer прекращает скачивание при закрытии сессии.
func (s *TerminatingHttpFileTransferSession) closeTransfer(reason ims.TerminationReason) error {
	if err := s.engine.CancelTransfer(s.TransferID()); err != nil {
		return ims.NewNetworkError("прекращение скачивания", err)
	}
	return nil
}

var _ TransferControl = (*TerminatingHttpFileTransferSession)(nil)
