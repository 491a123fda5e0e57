package ftservice

import (
	"github.com/Jayranbutong/rcsjta/pkg/contact"
	"github.com/Jayranbutong/rcsjta/pkg/content"
	"github.com/Jayranbutong/rcsjta/pkg/filetransfer"
	"github.com/Jayranbutong/rcsjta/pkg/ims"
)

// FileTransfer клиентский дескриптор одной файловой передачи. Тонкая обертка
// над сессией, открывающая клиенту операции управления и чтения состояния.
type FileTransfer struct {
	session *filetransfer.HttpFileTransferSession
}

func newFileTransfer(session *filetransfer.HttpFileTransferSession) *FileTransfer {
	return &FileTransfer{session: session}
}

// TransferID возвращает идентификатор передачи.
func (t *FileTransfer) TransferID() string {
	return t.session.TransferID()
}

// RemoteContact возвращает удаленный контакт передачи.
func (t *FileTransfer) RemoteContact() contact.ContactId {
	return t.session.RemoteContact()
}

// Content возвращает описатель передаваемого файла.
func (t *FileTransfer) Content() content.MmContent {
	return t.session.Content()
}

// State возвращает состояние жизненного цикла сессии.
func (t *FileTransfer) State() filetransfer.State {
	return t.session.SessionState()
}

// FileExpiration возвращает срок валидности файла на контент-сервере.
func (t *FileTransfer) FileExpiration() int64 {
	return t.session.FileExpiration()
}

// IconExpiration возвращает срок валидности иконки на контент-сервере.
func (t *FileTransfer) IconExpiration() int64 {
	return t.session.IconExpiration()
}

// AddListener регистрирует наблюдателя этой передачи.
func (t *FileTransfer) AddListener(l filetransfer.FileSharingSessionListener) {
	t.session.AddListener(l)
}

// RemoveListener снимает регистрацию наблюдателя.
func (t *FileTransfer) RemoveListener(l filetransfer.FileSharingSessionListener) {
	t.session.RemoveListener(l)
}

// Pause приостанавливает передачу по запросу пользователя.
func (t *FileTransfer) Pause() {
	t.session.Pause()
}

// Resume возобновляет приостановленную передачу.
func (t *FileTransfer) Resume() {
	t.session.Resume()
}

// Abort завершает передачу по инициативе пользователя.
func (t *FileTransfer) Abort() error {
	return t.session.AbortSession(ims.TerminationByUser)
}

// Session возвращает сессию передачи для внутреннего использования стеком.
func (t *FileTransfer) Session() *filetransfer.HttpFileTransferSession {
	return t.session
}
