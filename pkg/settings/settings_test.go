package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultSettings проверяет согласованность настроек по умолчанию
func TestDefaultSettings(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Positive(t, cfg.MaxFileTransferSize)
	assert.Positive(t, cfg.MaxFileTransferSessions)
	assert.False(t, cfg.IsFileTransferAutoAccepted())
	assert.False(t, cfg.IsFileTransferAutoAcceptedInRoaming())
}

// TestLoadFromToml проверяет загрузку настроек из TOML файла поверх
// значений по умолчанию
func TestLoadFromToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rcs.toml")
	data := `
max_file_transfer_size = 52428800
file_transfer_auto_accept = true
capability_refresh_timeout = "10s"

[sip]
user_agent = "TestStack/2.0"
host = "10.0.0.1"
port = 5070
transport = "tcp"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.EqualValues(t, 52428800, cfg.MaxFileTransferSize)
	assert.True(t, cfg.IsFileTransferAutoAccepted())
	assert.Equal(t, 10*time.Second, cfg.CapabilityRefreshTimeout.Duration)
	assert.Equal(t, "TestStack/2.0", cfg.Sip.UserAgent)
	assert.Equal(t, 5070, cfg.Sip.Port)
	// Незатронутые поля сохраняют значения по умолчанию
	assert.Equal(t, Default().MaxFileTransferSessions, cfg.MaxFileTransferSessions)
}

// TestLoadMissingFile проверяет ошибку при отсутствии файла настроек
func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "нет_такого.toml"))
	assert.Error(t, err)
}

// TestValidate проверяет отклонение несогласованных настроек
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RcsSettings)
	}{
		{
			name:   "нулевой предел размера",
			mutate: func(c *RcsSettings) { c.MaxFileTransferSize = 0 },
		},
		{
			name: "предупреждение больше предела",
			mutate: func(c *RcsSettings) {
				c.WarnFileTransferSize = c.MaxFileTransferSize + 1
			},
		},
		{
			name:   "нулевой предел сессий",
			mutate: func(c *RcsSettings) { c.MaxFileTransferSessions = 0 },
		},
		{
			name:   "недопустимый SIP порт",
			mutate: func(c *RcsSettings) { c.Sip.Port = 70000 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

// TestAutoAcceptFlags проверяет изменение политики автоприема в рантайме
func TestAutoAcceptFlags(t *testing.T) {
	cfg := Default()

	cfg.SetFileTransferAutoAccept(true)
	assert.True(t, cfg.IsFileTransferAutoAccepted())

	cfg.SetFileTransferAutoAcceptInRoaming(true)
	assert.True(t, cfg.IsFileTransferAutoAcceptedInRoaming())

	cfg.SetFileTransferAutoAccept(false)
	assert.False(t, cfg.IsFileTransferAutoAccepted())
}
