package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
log-level: debug
socket-port: "8181"
redis:
  enabled: true
  host: redis
game:
  icons: [a.png, b.png, c.png]
  mismatch-settle: 1s
`)

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", conf.LogLevel)
	assert.Equal(t, "8181", conf.SocketPort)
	assert.Equal(t, "9090", conf.HTTPPort)

	assert.True(t, conf.Redis.Enabled)
	assert.Equal(t, "redis:6379", conf.Redis.GetRedisAddr())
	assert.Equal(t, "memoicons:events", conf.Redis.ChannelPrefix)
	assert.Equal(t, 256, conf.Redis.Buffer)

	assert.Equal(t, []string{"a.png", "b.png", "c.png"}, conf.Game.Icons)
	assert.Equal(t, 300*time.Millisecond, conf.Game.RevealSettle)
	assert.Equal(t, time.Second, conf.Game.MismatchSettle)
	assert.Equal(t, 800*time.Millisecond, conf.Game.VictorySettle)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "log-level: info\n")

	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("REDIS_PORT", "6380")

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", conf.LogLevel)
	assert.Equal(t, "localhost:6380", conf.Redis.GetRedisAddr())
	assert.Len(t, conf.Game.Icons, 4)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))

	require.Error(t, err)
}

func TestMustLoad_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "absent.yml"))
	})
}
