// Package settings содержит конфигурацию RCS стека для файловых сессий.
package settings

import (
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Duration обертка time.Duration для разбора значений вида "5s" из TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText реализует encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrapf(err, "разбор длительности %q", string(text))
	}
	d.Duration = parsed
	return nil
}

// FileTransferProtocol определяет протокол передачи файла.
type FileTransferProtocol string

const (
	// ProtocolHTTP - передача через HTTP content server
	ProtocolHTTP FileTransferProtocol = "HTTP"
	// ProtocolMSRP - передача по MSRP в рамках SIP сессии
	ProtocolMSRP FileTransferProtocol = "MSRP"
)

// SipConfig параметры SIP плоскости для capability запросов.
type SipConfig struct {
	UserAgent string `toml:"user_agent"`
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	Transport string `toml:"transport"`
}

// RcsSettings хранит настройки файловых сессий. Значения загружаются из
// TOML файла один раз при старте; флаги auto-accept могут изменяться
// клиентским API в рантайме, поэтому доступ защищен мьютексом.
type RcsSettings struct {
	mu sync.RWMutex

	// MaxFileTransferSize максимальный размер передаваемого файла в байтах.
	MaxFileTransferSize int64 `toml:"max_file_transfer_size"`
	// WarnFileTransferSize размер, начиная с которого клиенту выдается предупреждение.
	WarnFileTransferSize int64 `toml:"warn_file_transfer_size"`
	// MaxFileTransferSessions максимум одновременных файловых сессий.
	MaxFileTransferSessions int `toml:"max_file_transfer_sessions"`
	// FileTransferAutoAccept автоприем входящих передач в домашней сети.
	FileTransferAutoAccept bool `toml:"file_transfer_auto_accept"`
	// FileTransferAutoAcceptInRoaming автоприем в роуминге.
	FileTransferAutoAcceptInRoaming bool `toml:"file_transfer_auto_accept_in_roaming"`
	// CapabilityRefreshTimeout таймаут OPTIONS запроса обновления capabilities.
	CapabilityRefreshTimeout Duration `toml:"capability_refresh_timeout"`
	// SessionInactivityTimeout таймаут неактивности сессии.
	SessionInactivityTimeout Duration `toml:"session_inactivity_timeout"`

	Sip SipConfig `toml:"sip"`
}

// Default возвращает настройки по умолчанию.
func Default() *RcsSettings {
	return &RcsSettings{
		MaxFileTransferSize:      100 * 1024 * 1024,
		WarnFileTransferSize:     10 * 1024 * 1024,
		MaxFileTransferSessions:  10,
		CapabilityRefreshTimeout: Duration{5 * time.Second},
		SessionInactivityTimeout: Duration{5 * time.Minute},
		Sip: SipConfig{
			UserAgent: "RcsStack/1.0",
			Host:      "127.0.0.1",
			Port:      5060,
			Transport: "udp",
		},
	}
}

// Load читает настройки из TOML файла поверх значений по умолчанию.
func Load(path string) (*RcsSettings, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, errors.Wrapf(err, "ошибка загрузки настроек из %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет согласованность настроек.
func (s *RcsSettings) Validate() error {
	if s.MaxFileTransferSize <= 0 {
		return errors.New("max_file_transfer_size должен быть положительным")
	}
	if s.WarnFileTransferSize > s.MaxFileTransferSize {
		return errors.New("warn_file_transfer_size превышает max_file_transfer_size")
	}
	if s.MaxFileTransferSessions <= 0 {
		return errors.New("max_file_transfer_sessions должен быть положительным")
	}
	if s.Sip.Port <= 0 || s.Sip.Port > 65535 {
		return errors.Errorf("недопустимый SIP порт: %d", s.Sip.Port)
	}
	return nil
}

// IsFileTransferAutoAccepted возвращает флаг автоприема для домашней сети.
func (s *RcsSettings) IsFileTransferAutoAccepted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.FileTransferAutoAccept
}

// IsFileTransferAutoAcceptedInRoaming возвращает флаг автоприема в роуминге.
func (s *RcsSettings) IsFileTransferAutoAcceptedInRoaming() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.FileTransferAutoAcceptInRoaming
}

// SetFileTransferAutoAccept изменяет политику автоприема в домашней сети.
func (s *RcsSettings) SetFileTransferAutoAccept(enable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FileTransferAutoAccept = enable
}

// SetFileTransferAutoAcceptInRoaming изменяет политику автоприема в роуминге.
func (s *RcsSettings) SetFileTransferAutoAcceptInRoaming(enable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FileTransferAutoAcceptInRoaming = enable
}
