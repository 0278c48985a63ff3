package config

import (
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/dshills/inkwell/internal/config/loader"
	"github.com/dshills/inkwell/internal/config/watcher"
	"github.com/dshills/inkwell/internal/logging"
)

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "INKWELL_"

// envMapping covers nested keys the generic SECTION_NAME rule cannot reach.
var envMapping = map[string]string{
	"INKWELL_MINIO_ENDPOINT":          "upload.minio.endpoint",
	"INKWELL_MINIO_ACCESS_KEY_ID":     "upload.minio.accessKeyID",
	"INKWELL_MINIO_SECRET_ACCESS_KEY": "upload.minio.secretAccessKey",
	"INKWELL_MINIO_USE_SSL":           "upload.minio.useSSL",
	"INKWELL_MINIO_BUCKET":            "upload.minio.bucket",
	"INKWELL_MINIO_PREFIX":            "upload.minio.prefix",
	"INKWELL_MINIO_PUBLIC_URL":        "upload.minio.publicURL",
	"INKWELL_MINIO_TRIES":             "upload.minio.tries",
	"INKWELL_UPLOAD_BASE_URL":         "upload.baseURL",
}

// Config holds the current settings and reloads them on demand.
type Config struct {
	mu        sync.RWMutex
	settings  Settings
	files     []string
	fs        loader.FileSystem
	env       loader.Loader
	debounce  time.Duration
	observers []func(Settings)
	watcher   *watcher.Watcher
	closed    bool
	log       *logging.Logger
}

// Option configures a Config.
type Option func(*Config)

// WithFiles adds configuration files, later files overriding earlier ones.
// Missing files are skipped.
func WithFiles(paths ...string) Option {
	return func(c *Config) {
		c.files = append(c.files, paths...)
	}
}

// WithFileSystem reads files through fsys.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(c *Config) {
		c.fs = fsys
	}
}

// WithEnv replaces the environment source. Pass nil to ignore the
// environment.
func WithEnv(l loader.Loader) Option {
	return func(c *Config) {
		c.env = l
	}
}

// WithDebounce sets the live reload quiet period.
func WithDebounce(d time.Duration) Option {
	return func(c *Config) {
		c.debounce = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Config) {
		c.log = l
	}
}

// New returns a Config holding the defaults. Call Load to read the files
// and environment.
func New(opts ...Option) *Config {
	c := &Config{
		settings: Defaults(),
		fs:       loader.DefaultFS(),
		env:      loader.NewEnvLoader(EnvPrefix, envMapping),
		debounce: watcher.DefaultDebounce,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logging.OrNop(c.log).WithComponent("config")
	return c
}

// Load reads every source and replaces the settings. On error the
// settings are unchanged.
func (c *Config) Load() error {
	s, err := c.read()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.settings = s
	c.mu.Unlock()
	return nil
}

// Reload is Load followed by notifying the observers.
func (c *Config) Reload() error {
	if err := c.Load(); err != nil {
		return err
	}
	s := c.Settings()
	c.mu.RLock()
	observers := slices.Clone(c.observers)
	c.mu.RUnlock()
	for _, fn := range observers {
		fn(s)
	}
	return nil
}

func (c *Config) read() (Settings, error) {
	merged := map[string]any{}
	for _, path := range c.files {
		data, err := loader.NewFileLoaderWithFS(c.fs, path).Load()
		if err != nil {
			return Settings{}, err
		}
		if data != nil {
			c.log.Debug("loaded %s", path)
		}
		merged = loader.DeepMerge(merged, foldKeys(data))
	}
	if c.env != nil {
		data, err := c.env.Load()
		if err != nil {
			return Settings{}, fmt.Errorf("environment: %w", err)
		}
		merged = loader.DeepMerge(merged, foldKeys(data))
	}
	return decode(merged)
}

// foldKeys lower-cases map keys so sources spelling a key differently
// still override each other.
func foldKeys(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			v = foldKeys(sub)
		}
		out[strings.ToLower(k)] = v
	}
	return out
}

// decode lays merged values over the defaults. Keys match fields without
// regard to case, and strings convert to the field's type, so environment
// values decode the same way file values do.
func decode(values map[string]any) (Settings, error) {
	s := Defaults()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &s,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(durationHook, boolHook),
	})
	if err != nil {
		return Settings{}, err
	}
	if err := dec.Decode(values); err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

var durationType = reflect.TypeOf(Duration(0))

// durationHook parses "30s" style strings. Numbers fall through and are
// taken as nanoseconds.
func durationHook(_, to reflect.Type, data any) (any, error) {
	v, ok := data.(string)
	if !ok || to != durationType {
		return data, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return nil, err
	}
	return Duration(d), nil
}

// boolHook accepts yes/no and on/off on top of strconv.ParseBool.
func boolHook(_, to reflect.Type, data any) (any, error) {
	v, ok := data.(string)
	if !ok || to.Kind() != reflect.Bool {
		return data, nil
	}
	switch strings.ToLower(v) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return data, nil
}

// Settings returns a copy of the current settings.
func (c *Config) Settings() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.settings
	s.Editor.Scripts = slices.Clone(s.Editor.Scripts)
	return s
}

// Log returns the logging settings.
func (c *Config) Log() LogConfig { return c.Settings().Log }

// Editor returns the editor settings.
func (c *Config) Editor() EditorConfig { return c.Settings().Editor }

// Upload returns the upload settings.
func (c *Config) Upload() UploadConfig { return c.Settings().Upload }

// Store returns the persistence settings.
func (c *Config) Store() StoreConfig { return c.Settings().Store }

// Files returns the configured files.
func (c *Config) Files() []string { return slices.Clone(c.files) }

// OnChange registers fn to run after each successful reload.
func (c *Config) OnChange(fn func(Settings)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Watch reloads the settings whenever a configuration file changes.
func (c *Config) Watch() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.watcher != nil {
		return nil
	}
	w, err := watcher.New(watcher.WithDebounce(c.debounce), watcher.WithLogger(c.log))
	if err != nil {
		return fmt.Errorf("watching config: %w", err)
	}
	for _, path := range c.files {
		if err := w.Watch(path); err != nil {
			w.Close()
			return fmt.Errorf("watching %s: %w", path, err)
		}
	}
	w.OnChange(func(ev watcher.Event) {
		if err := c.Reload(); err != nil {
			c.log.WithError(err).Warn("keeping previous settings after %s of %s", ev.Op, ev.Path)
			return
		}
		c.log.Info("reloaded after %s of %s", ev.Op, ev.Path)
	})
	c.watcher = w
	return nil
}

// Close stops watching.
func (c *Config) Close() error {
	c.mu.Lock()
	w := c.watcher
	c.watcher, c.closed = nil, true
	c.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.Close()
}

// Validate reports every out-of-range setting.
func (s Settings) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}
	switch strings.ToLower(s.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		add("log.level %q is not debug, info, warn or error", s.Log.Level)
	}
	if f := logging.Format(s.Log.Format); f != logging.FormatText && f != logging.FormatJSON {
		add("log.format %q is not text or json", s.Log.Format)
	}
	if s.Editor.CharLimit < 0 {
		add("editor.charLimit must not be negative")
	}
	if s.Editor.ScriptTimeout < 0 {
		add("editor.scriptTimeout must not be negative")
	}
	if s.Upload.Timeout <= 0 {
		add("upload.timeout must be positive")
	}
	switch s.Upload.Backend {
	case BackendNone:
	case BackendLocal:
		if s.Upload.Dir == "" {
			add("upload.dir is required for the local backend")
		}
	case BackendMinio:
		if s.Upload.Minio.Endpoint == "" {
			add("upload.minio.endpoint is required for the minio backend")
		}
		if s.Upload.Minio.Bucket == "" {
			add("upload.minio.bucket is required for the minio backend")
		}
	default:
		add("upload.backend %q is not none, local or minio", s.Upload.Backend)
	}
	if s.Upload.Minio.Tries < 1 {
		add("upload.minio.tries must be at least 1")
	}
	if s.Store.CacheTTL < 0 {
		add("store.cacheTTL must not be negative")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// NewLogger builds a logger writing to out.
func (l LogConfig) NewLogger(out io.Writer) *logging.Logger {
	return logging.New(logging.Config{
		Level:  logging.ParseLogLevel(l.Level),
		Format: logging.Format(l.Format),
		Output: out,
		Prefix: "inkwell",
	})
}
