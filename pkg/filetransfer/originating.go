package filetransfer

import (
	"github.com/Jayranbutong/rcsjta/pkg/ims"
)

// OriginatingHttpFileTransferSession исходящая файловая сессия: локальная
// сторона выгружает файл на контент-сервер. Реализует контракт паузы и
// возобновления поверх HTTP движка.
type OriginatingHttpFileTransferSession struct {
	*HttpFileTransferSession

	engine TransferEngine
}

// NewOriginatingHttpFileTransferSession создает исходящую HTTP файловую сессию.
func NewOriginatingHttpFileTransferSession(cfg HttpSessionConfig, engine TransferEngine) *OriginatingHttpFileTransferSession {
	s := &OriginatingHttpFileTransferSession{
		HttpFileTransferSession: NewHttpFileTransferSession(cfg),
		engine:                  engine,
	}
	s.SetTransferControl(s)
	s.SetCloseHook(s.closeTransfer)
	return s
}

// Pause приостанавливает выгрузку на движке.
func (s *OriginatingHttpFileTransferSession) Pause() {
	if err := s.engine.PauseTransfer(s.TransferID()); err != nil {
		s.Logger().Warn("ошибка паузы выгрузки", "error", err)
	}
}

// Resume возобновляет выгрузку на движке.
func (s *OriginatingHttpFileTransferSession) Resume() {
	if err := s.engine.ResumeTransfer(s.TransferID()); err != nil {
		s.Logger().Warn("ошибка возобновления выгрузки", "error", err)
	}
}

// closeTransfer прекращает выгрузку при закрытии сессии.
func (s *OriginatingHttpFileTransferSession) closeTransfer(reason ims.TerminationReason) error {
	if err := s.engine.CancelTransfer(s.TransferID()); err != nil {
		return ims.NewNetworkError("прекращение выгрузки", err)
	}
	return nil
}

var _ TransferControl = (*OriginatingHttpFileTransferSession)(nil)
