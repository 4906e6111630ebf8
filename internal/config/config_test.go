package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	c, err := NewConfig(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	require.NoError(t, err)

	assert.Equal(t, "screenshots", c.OutputDir)
	assert.Equal(t, DefaultUserAgent, c.Browser.UserAgent)
	assert.Equal(t, 1920, c.Browser.WindowWidth)
	assert.Equal(t, 1080, c.Browser.WindowHeight)
	assert.False(t, c.Browser.ShowWindow)
	assert.Equal(t, 120*time.Second, c.Capture.PageTimeout)
	assert.Equal(t, 60*time.Second, c.Capture.DiscoveryTimeout)
	assert.Equal(t, 3*time.Second, c.Capture.SettleDelay)
	assert.Equal(t, 400, c.Capture.ScrollStep)
	assert.Equal(t, 15000, c.Capture.ScrollMax)
	assert.Equal(t, 250*time.Millisecond, c.Capture.ScrollPause)
	assert.Equal(t, 2*time.Second, c.Capture.StepDelay)
	assert.Equal(t, 2*time.Second, c.Capture.TargetDelay)
	assert.Equal(t, 10, c.Log.MaxSizeMB)
	assert.Equal(t, 3, c.Log.MaxBackups)
}

func TestNewConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `output_dir: /tmp/shots
browser:
  window_width: 1280
capture:
  page_timeout: 90s
  scroll_step: 0
  settle_delay: 0s
  step_delay: 0s
  target_delay: 0s
log:
  max_backups: 0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	c, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/shots", c.OutputDir)
	assert.Equal(t, 1280, c.Browser.WindowWidth)
	assert.Equal(t, 1080, c.Browser.WindowHeight)
	assert.Equal(t, 90*time.Second, c.Capture.PageTimeout)
	assert.Equal(t, 60*time.Second, c.Capture.DiscoveryTimeout)

	// zero values from the file are kept, omitted ones use the defaults
	assert.Equal(t, 0, c.Capture.ScrollStep)
	assert.Equal(t, time.Duration(0), c.Capture.SettleDelay)
	assert.Equal(t, time.Duration(0), c.Capture.StepDelay)
	assert.Equal(t, time.Duration(0), c.Capture.TargetDelay)
	assert.Equal(t, 0, c.Log.MaxBackups)
	assert.Equal(t, 15000, c.Capture.ScrollMax)
	assert.Equal(t, 250*time.Millisecond, c.Capture.ScrollPause)
	assert.Equal(t, 10, c.Log.MaxSizeMB)
}

func TestNewConfigEnvOverride(t *testing.T) {
	t.Setenv("STORESNAP_OUTPUT_DIR", "from-env")
	t.Setenv("STORESNAP_TARGET_DELAY", "500ms")

	c, err := NewConfig("")
	require.NoError(t, err)

	assert.Equal(t, "from-env", c.OutputDir)
	assert.Equal(t, 500*time.Millisecond, c.Capture.TargetDelay)
	assert.Equal(t, 2*time.Second, c.Capture.StepDelay)
}

func TestNewConfigEnvZero(t *testing.T) {
	t.Setenv("STORESNAP_SCROLL_STEP", "0")

	c, err := NewConfig("")
	require.NoError(t, err)

	assert.Equal(t, 0, c.Capture.ScrollStep)
	assert.Equal(t, 3*time.Second, c.Capture.SettleDelay)
}

func TestValidate(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	c.Browser.WindowWidth = 10
	assert.Error(t, c.Validate())

	c, _ = Default()
	c.Capture.PageTimeout = 0
	assert.Error(t, c.Validate())

	c, _ = Default()
	c.OutputDir = ""
	assert.Error(t, c.Validate())
}

func TestWrite(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.Write(&buf))

	out := buf.String()
	for _, want := range []string{"output_dir: screenshots", "page_timeout: 2m0s", "scroll_step: 400", "window_width: 1920"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected written config to contain %q, got:\n%s", want, out)
		}
	}
}
