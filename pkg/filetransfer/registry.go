package filetransfer

import (
	"sync"
)

// Registry реестр активных файловых сессий. Индексирует сессии по
// идентификатору передачи и по идентификатору чата. Реализует SessionRemover:
// терминальные пути сессии удаляют ее из реестра ровно один раз.
type Registry struct {
	sessions      sync.Map // transferID -> *HttpFileTransferSession
	contributions sync.Map // contributionID -> transferID
	mu            sync.Mutex
	active        int
}

// NewRegistry создает пустой реестр сессий.
func NewRegistry() *Registry {
	return &Registry{}
}

// AddSession регистрирует сессию в реестре активных.
func (r *Registry) AddSession(s *HttpFileTransferSession) {
	if s == nil {
		return
	}
	if _, loaded := r.sessions.LoadOrStore(s.TransferID(), s); loaded {
		return
	}
	if cid := s.ContributionID(); cid != "" {
		r.contributions.Store(cid, s.TransferID())
	}
	r.mu.Lock()
	r.active++
	r.mu.Unlock()
}

// RemoveSession удаляет сессию из реестра. Повторное удаление не имеет эффекта.
func (r *Registry) RemoveSession(s *HttpFileTransferSession) {
	if s == nil {
		return
	}
	if _, loaded := r.sessions.LoadAndDelete(s.TransferID()); !loaded {
		return
	}
	if cid := s.ContributionID(); cid != "" {
		r.contributions.Delete(cid)
	}
	r.mu.Lock()
	r.active--
	r.mu.Unlock()
}

// Session возвращает сессию по идентификатору передачи.
func (r *Registry) Session(transferID string) (*HttpFileTransferSession, bool) {
	if v, ok := r.sessions.Load(transferID); ok {
		return v.(*HttpFileTransferSession), true
	}
	return nil, false
}

// SessionByContribution возвращает сессию по идентификатору чата.
func (r *Registry) SessionByContribution(contributionID string) (*HttpFileTransferSession, bool) {
	v, ok := r.contributions.Load(contributionID)
	if !ok {
		return nil, false
	}
	return r.Session(v.(string))
}

// Sessions возвращает snapshot всех активных сессий.
func (r *Registry) Sessions() []*HttpFileTransferSession {
	var out []*HttpFileTransferSession
	r.sessions.Range(func(_, v any) bool {
		out = append(out, v.(*HttpFileTransferSession))
		return true
	})
	return out
}

// Count возвращает число активных сессий.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// предохранитель соответствия интерфейсу
var _ SessionRemover = (*Registry)(nil)
