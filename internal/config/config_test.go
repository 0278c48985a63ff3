package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/inkwell/internal/config/loader"
)

type memFS map[string]string

func (m memFS) ReadFile(path string) ([]byte, error) {
	s, ok := m[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return []byte(s), nil
}

type envMap map[string]any

func (e envMap) Load() (map[string]any, error) { return e, nil }

func TestDefaults(t *testing.T) {
	c := New(WithEnv(nil))
	require.NoError(t, c.Load())
	assert.Equal(t, Defaults(), c.Settings())
	assert.NoError(t, Defaults().Validate())
	assert.Equal(t, "Write something...", c.Editor().Placeholder)
	assert.Equal(t, 30*time.Second, c.Upload().Timeout.Std())
}

func TestLayers(t *testing.T) {
	fsys := memFS{
		"base.toml": `
[editor]
placeholder = "Start typing"
charLimit = 500
scripts = ["rules.lua"]

[upload]
backend = "local"
timeout = "10s"
`,
		"override.yaml": `
editor:
  charLimit: 280
store:
  path: docs.db
  cacheTTL: 1m
`,
	}
	env := envMap{"log": map[string]any{"level": "debug"}, "store": map[string]any{"cacheTtl": "2m"}}
	c := New(WithFiles("base.toml", "missing.toml", "override.yaml"), WithFileSystem(fsys), WithEnv(env))
	require.NoError(t, c.Load())

	s := c.Settings()
	assert.Equal(t, "Start typing", s.Editor.Placeholder)
	assert.Equal(t, 280, s.Editor.CharLimit)
	assert.Equal(t, []string{"rules.lua"}, s.Editor.Scripts)
	assert.True(t, s.Editor.DragHandles, "defaults survive")
	assert.Equal(t, BackendLocal, s.Upload.Backend)
	assert.Equal(t, 10*time.Second, s.Upload.Timeout.Std())
	assert.Equal(t, "docs.db", s.Store.Path)
	assert.Equal(t, 2*time.Minute, s.Store.CacheTTL.Std(), "environment wins")
	assert.Equal(t, "debug", s.Log.Level)
}

func TestEnvironment(t *testing.T) {
	t.Setenv("INKWELL_EDITOR_CHAR_LIMIT", "42")
	t.Setenv("INKWELL_MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("INKWELL_UPLOAD_BACKEND", "minio")
	c := New()
	require.NoError(t, c.Load())
	assert.Equal(t, 42, c.Editor().CharLimit)
	assert.Equal(t, "localhost:9000", c.Upload().Minio.Endpoint)
	assert.Equal(t, BackendMinio, c.Upload().Backend)
}

func TestEnvironmentStringsKeepTheirText(t *testing.T) {
	t.Setenv("INKWELL_MINIO_SECRET_ACCESS_KEY", "12345678")
	t.Setenv("INKWELL_MINIO_ACCESS_KEY_ID", "007")
	t.Setenv("INKWELL_EDITOR_PLACEHOLDER", "No")
	t.Setenv("INKWELL_LOG_LEVEL", "info")
	c := New()
	require.NoError(t, c.Load())
	assert.Equal(t, "12345678", c.Upload().Minio.SecretAccessKey)
	assert.Equal(t, "007", c.Upload().Minio.AccessKeyID)
	assert.Equal(t, "No", c.Editor().Placeholder)

	t.Setenv("INKWELL_EDITOR_PLACEHOLDER", "on")
	require.NoError(t, c.Load())
	assert.Equal(t, "on", c.Editor().Placeholder)
}

func TestEnvironmentTypedValues(t *testing.T) {
	t.Setenv("INKWELL_EDITOR_DRAG_HANDLES", "off")
	t.Setenv("INKWELL_EDITOR_IMAGE_INPUT", "yes")
	t.Setenv("INKWELL_MINIO_USE_SSL", "true")
	t.Setenv("INKWELL_MINIO_TRIES", "5")
	t.Setenv("INKWELL_UPLOAD_TIMEOUT", "45s")
	t.Setenv("INKWELL_EDITOR_SCRIPTS", `["a.lua"]`)
	c := New()
	require.NoError(t, c.Load())
	s := c.Settings()
	assert.False(t, s.Editor.DragHandles)
	assert.True(t, s.Editor.ImageInput)
	assert.True(t, s.Upload.Minio.UseSSL)
	assert.Equal(t, 5, s.Upload.Minio.Tries)
	assert.Equal(t, 45*time.Second, s.Upload.Timeout.Std())
	assert.Equal(t, []string{"a.lua"}, s.Editor.Scripts)

	t.Setenv("INKWELL_MINIO_TRIES", "several")
	assert.ErrorIs(t, c.Load(), ErrValidationFailed)
	t.Setenv("INKWELL_MINIO_TRIES", "5")
	t.Setenv("INKWELL_UPLOAD_TIMEOUT", "soon")
	assert.ErrorIs(t, c.Load(), ErrValidationFailed)
}

func TestDurationFromNumber(t *testing.T) {
	fsys := memFS{"a.toml": "[store]\ncacheTTL = 1000\n"}
	c := New(WithFiles("a.toml"), WithFileSystem(fsys), WithEnv(nil))
	require.NoError(t, c.Load())
	assert.Equal(t, time.Microsecond, c.Store().CacheTTL.Std())
}

func TestLoadErrorsKeepSettings(t *testing.T) {
	fsys := memFS{"a.toml": "[editor]\ncharLimit = 10\n"}
	c := New(WithFiles("a.toml"), WithFileSystem(fsys), WithEnv(nil))
	require.NoError(t, c.Load())

	fsys["a.toml"] = "[editor\n"
	err := c.Load()
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "a.toml", pe.Path)

	fsys["a.toml"] = "[editor]\ncharLimit = -1\n[upload]\nbackend = \"ftp\"\n"
	err = c.Load()
	assert.ErrorIs(t, err, ErrValidationFailed)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Problems, 2)

	fsys["a.toml"] = "[editor]\ncharLimit = \"many\"\n"
	assert.ErrorIs(t, c.Load(), ErrValidationFailed)

	assert.Equal(t, 10, c.Editor().CharLimit)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
	}{
		{"log level", func(s *Settings) { s.Log.Level = "loud" }},
		{"log format", func(s *Settings) { s.Log.Format = "xml" }},
		{"timeout", func(s *Settings) { s.Upload.Timeout = 0 }},
		{"minio endpoint", func(s *Settings) { s.Upload.Backend = BackendMinio }},
		{"local dir", func(s *Settings) { s.Upload.Backend, s.Upload.Dir = BackendLocal, "" }},
		{"tries", func(s *Settings) { s.Upload.Minio.Tries = 0 }},
		{"cache ttl", func(s *Settings) { s.Store.CacheTTL = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.modify(&s)
			assert.ErrorIs(t, s.Validate(), ErrValidationFailed)
		})
	}
}

func TestSettingsAreCopies(t *testing.T) {
	c := New(WithEnv(envMap{"editor": map[string]any{"scripts": []any{"a.lua"}}}))
	require.NoError(t, c.Load())
	s := c.Settings()
	s.Editor.Scripts[0] = "changed"
	assert.Equal(t, []string{"a.lua"}, c.Editor().Scripts)
}

func TestReloadNotifies(t *testing.T) {
	fsys := memFS{"a.yaml": "editor:\n  placeholder: one\n"}
	c := New(WithFiles("a.yaml"), WithFileSystem(fsys), WithEnv(nil))
	var seen []string
	c.OnChange(func(s Settings) { seen = append(seen, s.Editor.Placeholder) })

	require.NoError(t, c.Reload())
	fsys["a.yaml"] = "editor:\n  placeholder: two\n"
	require.NoError(t, c.Reload())
	fsys["a.yaml"] = "editor: [\n"
	require.Error(t, c.Reload())
	assert.Equal(t, []string{"one", "two"}, seen)
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inkwell.toml")
	require.NoError(t, os.WriteFile(path, []byte("[editor]\nplaceholder = \"one\"\n"), 0o644))

	c := New(WithFiles(path), WithEnv(nil), WithDebounce(20*time.Millisecond))
	require.NoError(t, c.Load())
	changed := make(chan Settings, 4)
	c.OnChange(func(s Settings) { changed <- s })
	require.NoError(t, c.Watch())
	t.Cleanup(func() { c.Close() })

	require.NoError(t, os.WriteFile(path, []byte("[editor]\nplaceholder = \"two\"\n"), 0o644))
	select {
	case s := <-changed:
		assert.Equal(t, "two", s.Editor.Placeholder)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload")
	}
	assert.Equal(t, "two", c.Editor().Placeholder)

	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Watch(), ErrClosed)
}

func TestDuration(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`"1m30s"`)))
	assert.Equal(t, 90*time.Second, d.Std())
	require.NoError(t, d.UnmarshalJSON([]byte(`1000`)))
	assert.Equal(t, time.Microsecond, d.Std())
	assert.Error(t, d.UnmarshalJSON([]byte(`"soon"`)))
	assert.Error(t, d.UnmarshalJSON([]byte(`true`)))

	out, err := Duration(time.Second).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1s"`, string(out))
}

var _ loader.Loader = envMap(nil)
