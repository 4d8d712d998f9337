package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.Timeout)
	assert.Equal(t, 64*1024, cfg.StderrBufferSize)
	assert.Equal(t, 200*time.Millisecond, cfg.LoggerFlushInterval)
	assert.Equal(t, 100, cfg.LoggerQueueSize)
	assert.Equal(t, 5*time.Second, cfg.LoggerCloseTimeout)
}

func TestTimeoutUnderThresholdIsSeconds(t *testing.T) {
	t.Setenv("CODEX_TIMEOUT", "30")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestTimeoutOverThresholdIsMilliseconds(t *testing.T) {
	t.Setenv("CODEX_TIMEOUT", "15000")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 15000*time.Millisecond, cfg.Timeout)
}

func TestInvalidIntRejected(t *testing.T) {
	t.Setenv("CODEAGENT_MAX_PARALLEL_WORKERS", "not-a-number")
	_, err := FromEnv()
	assert.Error(t, err)
}

func TestBooleanFlagsParsed(t *testing.T) {
	t.Setenv("CODEAGENT_QUIET", "true")
	t.Setenv("CODEAGENT_DEBUG", "1")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.Quiet)
	assert.True(t, cfg.Debug)
}

func TestNegativeStderrBufferSizeFailsValidation(t *testing.T) {
	t.Setenv("CODEAGENT_STDERR_BUFFER_SIZE", "-1")
	_, err := FromEnv()
	assert.Error(t, err)
}

func TestMaxSpawnPerSecParsed(t *testing.T) {
	t.Setenv("CODEAGENT_MAX_SPAWN_PER_SEC", "2.5")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.MaxSpawnPerSec)
}

func TestNegativeMaxSpawnPerSecFailsValidation(t *testing.T) {
	t.Setenv("CODEAGENT_MAX_SPAWN_PER_SEC", "-1")
	_, err := FromEnv()
	assert.Error(t, err)
}

func TestValidateResumeParsed(t *testing.T) {
	t.Setenv("CODEAGENT_VALIDATE_RESUME", "true")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.ValidateResume)
}
