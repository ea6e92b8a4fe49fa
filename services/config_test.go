package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	config := LoadConfig()
	require.NotNil(t, config)

	assert.Equal(t, "8080", config.Server.Port)
	assert.Equal(t, "gemini-2.5-flash", config.AI.Model)
	assert.Equal(t, 60*time.Second, config.AI.Timeout())
	assert.Equal(t, int64(5*1024*1024), config.Upload.MaxFileSize)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("AI_TIMEOUT_SECONDS", "30")

	config := LoadConfig()
	assert.Equal(t, "9090", config.Server.Port)
	assert.Equal(t, 30*time.Second, config.AI.Timeout())
}
