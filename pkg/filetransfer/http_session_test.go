package filetransfer

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jayranbutong/rcsjta/pkg/contact"
	"github.com/Jayranbutong/rcsjta/pkg/content"
	"github.com/Jayranbutong/rcsjta/pkg/ims"
	"github.com/Jayranbutong/rcsjta/pkg/settings"
)

// recordingListener записывает полученные колбэки для проверки порядка и
// кратности доставки
type recordingListener struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingListener) record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingListener) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recordingListener) OnSessionStarted(c contact.ContactId) {
	r.record("started:" + c.String())
}

func (r *recordingListener) OnSessionAborted(c contact.ContactId, reason ims.TerminationReason) {
	r.record("aborted:" + reason.String())
}

func (r *recordingListener) OnTransferProgress(c contact.ContactId, cur, total uint64) {
	r.record(fmt.Sprintf("progress:%d/%d", cur, total))
}

func (r *recordingListener) OnTransferNotAllowedToSend(c contact.ContactId) {
	r.record("notallowed")
}

func (r *recordingListener) OnFileTransferPausedByUser(c contact.ContactId) {
	r.record("paused_by_user")
}

func (r *recordingListener) OnFileTransferPausedBySystem(c contact.ContactId) {
	r.record("paused_by_system")
}

func (r *recordingListener) OnFileTransferResumed(c contact.ContactId) {
	r.record("resumed")
}

func (r *recordingListener) OnFileTransfered(ct content.MmContent, c contact.ContactId,
	fileExp, iconExp int64, protocol settings.FileTransferProtocol) {
	r.record(fmt.Sprintf("transferred:%s:%d:%d:%s", ct.Name(), fileExp, iconExp, protocol))
}

func (r *recordingListener) OnTransferError(err *FileSharingError, c contact.ContactId) {
	r.record("error:" + err.Code.String())
}

// fakeEngine фиктивный HTTP движок передачи
type fakeEngine struct {
	mu        sync.Mutex
	paused    []string
	resumed   []string
	cancelled []string
	cancelErr error
}

func (e *fakeEngine) PauseTransfer(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = append(e.paused, id)
	return nil
}

func (e *fakeEngine) ResumeTransfer(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resumed = append(e.resumed, id)
	return nil
}

func (e *fakeEngine) CancelTransfer(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelled = append(e.cancelled, id)
	return e.cancelErr
}

// fakeCapabilities фиксирует fire-and-forget запросы обновления capabilities
type fakeCapabilities struct {
	requests chan contact.ContactId
}

func newFakeCapabilities() *fakeCapabilities {
	return &fakeCapabilities{requests: make(chan contact.ContactId, 8)}
}

func (f *fakeCapabilities) RequestContactCapabilities(_ context.Context, c contact.ContactId) error {
	f.requests <- c
	return nil
}

func testSessionConfig(t *testing.T, registry *Registry, caps CapabilityService) HttpSessionConfig {
	t.Helper()
	fileContent, err := content.NewMmContent("https://content.example.org/f/abc", 1024, "image/jpeg", "photo.jpg")
	require.NoError(t, err)
	return HttpSessionConfig{
		TransferID:     "ft-" + t.Name(),
		ContributionID: "chat-" + t.Name(),
		Contact:        contact.MustContactId("+79001234567"),
		Content:        fileContent,
		Timestamp:      time.Now(),
		FileExpiration: 1000,
		IconExpiration: 2000,
		Remover:        registry,
		Capabilities:   caps,
	}
}

func newTestSession(t *testing.T) (*HttpFileTransferSession, *Registry) {
	t.Helper()
	registry := NewRegistry()
	s := NewHttpFileTransferSession(testSessionConfig(t, registry, nil))
	registry.AddSession(s)
	return s, registry
}

// TestTransferProgressFanout проверяет, что каждый progress колбэк
// доставляется каждому зарегистрированному слушателю ровно один раз в
// порядке поступления
func TestTransferProgressFanout(t *testing.T) {
	s, _ := newTestSession(t)
	first := &recordingListener{}
	second := &recordingListener{}
	s.AddListener(first)
	s.AddListener(second)

	s.OnHTTPTransferProgress(10, 100)
	s.OnHTTPTransferProgress(50, 100)
	s.OnHTTPTransferProgress(90, 100)

	expected := []string{"progress:10/100", "progress:50/100", "progress:90/100"}
	assert.Equal(t, expected, first.Events(), "первый слушатель должен получить все события по порядку")
	assert.Equal(t, expected, second.Events(), "второй слушатель должен получить все события по порядку")
}

// TestSessionStartedTransition проверяет переход PENDING -> ESTABLISHED по
// первому событию started и отсутствие повторного перехода
func TestSessionStartedTransition(t *testing.T) {
	s, _ := newTestSession(t)
	listener := &recordingListener{}
	s.AddListener(listener)

	require.Equal(t, StatePending, s.SessionState(), "исходное состояние должно быть PENDING")

	s.OnHTTPTransferStarted()
	assert.Equal(t, StateEstablished, s.SessionState())

	// Повторный started не ошибка и не порождает второго OnSessionStarted
	s.OnHTTPTransferStarted()
	assert.Equal(t, StateEstablished, s.SessionState())
	assert.Len(t, listener.Events(), 1, "OnSessionStarted должен быть доставлен ровно один раз")
}

// TestNoEventsAfterTerminal проверяет, что после терминального события
// никакие последующие события не порождают колбэков
func TestNoEventsAfterTerminal(t *testing.T) {
	s, registry := newTestSession(t)
	listener := &recordingListener{}
	s.AddListener(listener)

	s.HandleError(ims.NewServiceError(ims.ErrorMediaTransferFailed, "обрыв соединения"))
	_, ok := registry.Session(s.TransferID())
	require.False(t, ok, "сессия должна быть удалена из реестра")

	// Последующие события любого вида - no-op
	s.OnHTTPTransferProgress(50, 100)
	s.OnHTTPTransferStarted()
	s.OnHTTPTransferPausedByUser()
	s.OnHTTPTransferResumed()
	s.HandleFileTransferred()

	assert.Equal(t, []string{"error:MediaTransferFailed"}, listener.Events(),
		"после терминальной ошибки колбэки не доставляются")
}

// TestHandleErrorIdempotent проверяет, что повторный handleError (гонка
// транспортной ошибки и abort) дает ровно одну доставку OnTransferError
func TestHandleErrorIdempotent(t *testing.T) {
	s, _ := newTestSession(t)
	listener := &recordingListener{}
	s.AddListener(listener)

	err := ims.NewServiceError(ims.ErrorMediaUploadFailed, "сбой выгрузки")
	s.HandleError(err)
	s.HandleError(err)

	assert.Equal(t, []string{"error:MediaUploadFailed"}, listener.Events())
}

// TestHandleErrorAfterInterrupt проверяет, что прерванная сессия не
// доставляет ошибку передачи
func TestHandleErrorAfterInterrupt(t *testing.T) {
	s, _ := newTestSession(t)
	listener := &recordingListener{}
	s.AddListener(listener)

	s.InterruptSession()
	s.HandleError(ims.NewServiceError(ims.ErrorMediaTransferFailed, "обрыв"))

	assert.Empty(t, listener.Events(), "прерванная сессия не уведомляет об ошибке")
}

// TestExpirationAccessors проверяет неизменность сроков валидности контента
// на протяжении жизни сессии, включая состояние после завершения передачи
func TestExpirationAccessors(t *testing.T) {
	s, _ := newTestSession(t)

	assert.EqualValues(t, 1000, s.FileExpiration())
	assert.EqualValues(t, 2000, s.IconExpiration())

	s.OnHTTPTransferStarted()
	s.HandleFileTransferred()

	assert.EqualValues(t, 1000, s.FileExpiration(), "срок файла неизменен после transferred")
	assert.EqualValues(t, 2000, s.IconExpiration(), "срок иконки неизменен после transferred")
}

// TestEndToEndTransferred сквозной сценарий успешной передачи:
// PENDING -> started -> progress -> transferred -> удаление из реестра
func TestEndToEndTransferred(t *testing.T) {
	s, registry := newTestSession(t)
	listener := &recordingListener{}
	s.AddListener(listener)

	require.Equal(t, StatePending, s.SessionState())

	s.OnHTTPTransferStarted()
	require.Equal(t, StateEstablished, s.SessionState())

	s.OnHTTPTransferProgress(10, 100)
	s.HandleFileTransferred()

	assert.True(t, s.IsFileTransferred(), "контент должен быть помечен доставленным")
	_, ok := registry.Session(s.TransferID())
	assert.False(t, ok, "сессия должна быть удалена после transferred")

	// Последующий progress - no-op
	s.OnHTTPTransferProgress(100, 100)

	assert.Equal(t, []string{
		"started:+79001234567",
		"progress:10/100",
		"transferred:photo.jpg:1000:2000:HTTP",
	}, listener.Events())
}

// TestReceiveByeScenario сквозной сценарий удаленного завершения: BYE на SIP
// плоскости дает ровно один OnSessionAborted(TERMINATION_BY_REMOTE) и ровно
// один запрос обновления capabilities
func TestReceiveByeScenario(t *testing.T) {
	registry := NewRegistry()
	caps := newFakeCapabilities()
	s := NewHttpFileTransferSession(testSessionConfig(t, registry, caps))
	registry.AddSession(s)
	listener := &recordingListener{}
	s.AddListener(listener)

	require.NoError(t, s.ReceiveBye(nil, nil))

	_, ok := registry.Session(s.TransferID())
	assert.False(t, ok, "сессия должна быть удалена после BYE")
	assert.Equal(t, []string{"aborted:TERMINATION_BY_REMOTE"}, listener.Events())

	select {
	case c := <-caps.requests:
		assert.Equal(t, "+79001234567", c.String())
	case <-time.After(2 * time.Second):
		t.Fatal("запрос обновления capabilities не был отправлен")
	}

	// Повторный BYE не порождает второго уведомления и второго запроса
	require.NoError(t, s.ReceiveBye(nil, nil))
	assert.Equal(t, []string{"aborted:TERMINATION_BY_REMOTE"}, listener.Events())
	select {
	case <-caps.requests:
		t.Fatal("повторный BYE не должен порождать второй запрос capabilities")
	case <-time.After(100 * time.Millisecond):
	}
}

// TestTerminalEventsMutuallyExclusive проверяет, что из гонки терминальных
// исходов выигрывает ровно один
func TestTerminalEventsMutuallyExclusive(t *testing.T) {
	s, _ := newTestSession(t)
	listener := &recordingListener{}
	s.AddListener(listener)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		s.HandleFileTransferred()
	}()
	go func() {
		defer wg.Done()
		s.HandleError(ims.NewServiceError(ims.ErrorMediaTransferFailed, "обрыв"))
	}()
	go func() {
		defer wg.Done()
		_ = s.ReceiveBye(nil, nil)
	}()
	wg.Wait()

	assert.Len(t, listener.Events(), 1, "должен быть доставлен ровно один терминальный колбэк")
}

// TestPauseResumeFanout проверяет трансляцию пауз и возобновления
func TestPauseResumeFanout(t *testing.T) {
	s, _ := newTestSession(t)
	listener := &recordingListener{}
	s.AddListener(listener)

	s.OnHTTPTransferStarted()
	s.OnHTTPTransferPausedByUser()
	s.OnHTTPTransferResumed()
	s.OnHTTPTransferPausedBySystem()
	s.OnHTTPTransferResumed()
	s.OnHTTPTransferNotAllowedToSend()

	assert.Equal(t, []string{
		"started:+79001234567",
		"paused_by_user",
		"resumed",
		"paused_by_system",
		"resumed",
		"notallowed",
	}, listener.Events())
}

// TestCloseSessionFailureStillRemoves проверяет, что ошибка закрытия движка
// не оставляет сессию в реестре: удаление безусловно
func TestCloseSessionFailureStillRemoves(t *testing.T) {
	registry := NewRegistry()
	engine := &fakeEngine{cancelErr: fmt.Errorf("движок недоступен")}
	s := NewOriginatingHttpFileTransferSession(testSessionConfig(t, registry, nil), engine)
	registry.AddSession(s.HttpFileTransferSession)

	err := s.CloseHTTPSession(ims.TerminationBySystem)
	require.Error(t, err, "ошибка закрытия должна быть возвращена вызывающему")

	var netErr *ims.NetworkError
	require.ErrorAs(t, err, &netErr, "ошибка закрытия классифицируется как сетевая")

	_, ok := registry.Session(s.TransferID())
	assert.False(t, ok, "сессия удалена несмотря на ошибку закрытия")
}

// TestTransferControlDelegation проверяет делегирование паузы и
// возобновления движку по направлению передачи
func TestTransferControlDelegation(t *testing.T) {
	registry := NewRegistry()
	engine := &fakeEngine{}

	orig := NewOriginatingHttpFileTransferSession(testSessionConfig(t, registry, nil), engine)
	orig.Pause()
	orig.Resume()
	assert.Equal(t, []string{orig.TransferID()}, engine.paused)
	assert.Equal(t, []string{orig.TransferID()}, engine.resumed)

	term := NewTerminatingHttpFileTransferSession(HttpSessionConfig{
		TransferID: "ft-term",
		Contact:    contact.MustContactId("+79001234567"),
		Timestamp:  time.Now(),
		Remover:    registry,
	}, engine)
	term.Pause()
	assert.Contains(t, engine.paused, "ft-term")
}

// TestAbortSession проверяет локальный abort: прерывание, уведомление и
// удаление из реестра
func TestAbortSession(t *testing.T) {
	registry := NewRegistry()
	engine := &fakeEngine{}
	s := NewOriginatingHttpFileTransferSession(testSessionConfig(t, registry, nil), engine)
	registry.AddSession(s.HttpFileTransferSession)
	listener := &recordingListener{}
	s.AddListener(listener)

	require.NoError(t, s.AbortSession(ims.TerminationByUser))

	assert.True(t, s.IsSessionInterrupted())
	assert.Equal(t, []string{"aborted:TERMINATION_BY_USER"}, listener.Events())
	assert.Contains(t, engine.cancelled, s.TransferID(), "передача должна быть прекращена на движке")
	_, ok := registry.Session(s.TransferID())
	assert.False(t, ok)

	// Повторный abort - no-op
	require.NoError(t, s.AbortSession(ims.TerminationByUser))
	assert.Len(t, listener.Events(), 1)
}
