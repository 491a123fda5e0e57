// Package filetransfer реализует ядро файловой сессии RCS: машину состояний
// HTTP передачи, трансляцию событий движка наблюдателям и синхронизацию с
// завершением сессии на SIP плоскости.
package filetransfer

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Jayranbutong/rcsjta/pkg/contact"
	"github.com/Jayranbutong/rcsjta/pkg/content"
	"github.com/Jayranbutong/rcsjta/pkg/ims"
)

// FileSharingSession общая часть файловой сессии, не зависящая от протокола
// передачи: передаваемый контент, иконка, идентификатор передачи, привязка к
// чату и набор наблюдателей. Специализируется HTTP сессией.
type FileSharingSession struct {
	*ims.Session

	transferID     string
	contributionID string
	fileContent    content.MmContent
	fileIcon       content.MmContent

	transferredMu   sync.Mutex
	fileTransferred bool

	listeners *listenerSet
}

// NewFileSharingSession создает общую часть файловой сессии.
func NewFileSharingSession(transferID, contributionID string, remote contact.ContactId,
	fileContent, fileIcon content.MmContent, timestamp time.Time, logger *slog.Logger) *FileSharingSession {

	base := ims.NewSession(transferID, remote, timestamp, logger)
	return &FileSharingSession{
		Session:        base,
		transferID:     transferID,
		contributionID: contributionID,
		fileContent:    fileContent,
		fileIcon:       fileIcon,
		listeners:      newListenerSet(base.Logger()),
	}
}

// TransferID возвращает уникальный идентификатор передачи.
func (s *FileSharingSession) TransferID() string {
	return s.transferID
}

// ContributionID возвращает идентификатор чата, к которому привязана передача.
func (s *FileSharingSession) ContributionID() string {
	return s.contributionID
}

// Content возвращает описатель передаваемого файла.
func (s *FileSharingSession) Content() content.MmContent {
	return s.fileContent
}

// FileIcon возвращает описатель иконки файла. Может быть пустым.
func (s *FileSharingSession) FileIcon() content.MmContent {
	return s.fileIcon
}

// AddListener регистрирует наблюдателя сессии.
func (s *FileSharingSession) AddListener(l FileSharingSessionListener) {
	s.listeners.Add(l)
}

// RemoveListener снимает регистрацию наблюдателя.
func (s *FileSharingSession) RemoveListener(l FileSharingSessionListener) {
	s.listeners.Remove(l)
}

// FileTransferred помечает контент доставленным.
func (s *FileSharingSession) FileTransferred() {
	s.transferredMu.Lock()
	defer s.transferredMu.Unlock()
	s.fileTransferred = true
}

// IsFileTransferred сообщает, был ли контент доставлен.
func (s *FileSharingSession) IsFileTransferred() bool {
	s.transferredMu.Lock()
	defer s.transferredMu.Unlock()
	return s.fileTransferred
}
