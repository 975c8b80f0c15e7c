package model

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRequest_Validate(t *testing.T) {
	valid := Request{
		Topic:        "remote work trends",
		ContentTypes: []ContentType{ContentTypeArticle},
		Priority:     PriorityNormal,
	}
	assert.NoError(t, valid.Validate())

	noTopic := valid
	noTopic.Topic = ""
	assert.Error(t, noTopic.Validate())

	noTypes := valid
	noTypes.ContentTypes = nil
	assert.Error(t, noTypes.Validate())

	badType := valid
	badType.ContentTypes = []ContentType{"podcast"}
	assert.Error(t, badType.Validate())
}

func TestParseContentType(t *testing.T) {
	ct, err := ParseContentType("blog_post")
	require.NoError(t, err)
	assert.Equal(t, ContentTypeBlogPost, ct)

	_, err = ParseContentType("podcast")
	assert.Error(t, err)
}

func TestParseToneType(t *testing.T) {
	tone, err := ParseToneType("technical")
	require.NoError(t, err)
	assert.Equal(t, ToneTechnical, tone)

	_, err = ParseToneType("sassy")
	assert.Error(t, err)
}

func TestRequest_ContextString(t *testing.T) {
	r := Request{Context: map[string]any{"target_audience": "founders", "count": 3}}

	v, ok := r.ContextString("target_audience")
	assert.True(t, ok)
	assert.Equal(t, "founders", v)

	_, ok = r.ContextString("missing")
	assert.False(t, ok)

	_, ok = r.ContextString("count")
	assert.False(t, ok, "non-string values are not coerced")
}

func TestValidateRunTransition(t *testing.T) {
	assert.NoError(t, ValidateRunTransition(StatusPlanned, StatusRunning))
	assert.NoError(t, ValidateRunTransition(StatusPlanned, StatusCancelled))
	assert.NoError(t, ValidateRunTransition(StatusRunning, StatusCompleted))
	assert.NoError(t, ValidateRunTransition(StatusRunning, StatusFailed))
	assert.NoError(t, ValidateRunTransition(StatusRunning, StatusCancelled))

	assert.Error(t, ValidateRunTransition(StatusPlanned, StatusCompleted))
	assert.Error(t, ValidateRunTransition(StatusCompleted, StatusRunning))
	assert.Error(t, ValidateRunTransition(StatusFailed, StatusRunning))
	assert.Error(t, ValidateRunTransition("bogus", StatusRunning))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(StatusCompleted))
	assert.True(t, IsTerminal(StatusFailed))
	assert.True(t, IsTerminal(StatusCancelled))
	assert.False(t, IsTerminal(StatusPlanned))
	assert.False(t, IsTerminal(StatusRunning))
}

func TestNewRunID(t *testing.T) {
	id, err := NewRunID()
	require.NoError(t, err)
	assert.True(t, ValidateRunID(id), "generated ID %q should validate", id)

	ts, err := RunIDTimestamp(id)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, 5*time.Second)
}

func TestValidateRunID(t *testing.T) {
	assert.True(t, ValidateRunID("run_1700000000_deadbeef"))
	assert.False(t, ValidateRunID("run_17000_deadbeef"))
	assert.False(t, ValidateRunID("task_1700000000_deadbeef"))
	assert.False(t, ValidateRunID("run_1700000000_DEADBEEF"))
}

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.False(t, cfg.Pipeline.StrictGates)
	assert.Equal(t, "markdown", cfg.Pipeline.DefaultFormat)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inkwell.yaml")
	override := map[string]any{
		"pipeline": map[string]any{"strict_gates": true},
		"logging":  map[string]any{"level": "debug"},
	}
	data, err := yaml.Marshal(override)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Pipeline.StrictGates)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched sections keep defaults.
	assert.Equal(t, 3600, cfg.JobStore.TTLSec)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inkwell.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline: [not a map"), 0644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}
