package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Settings is the complete, typed configuration.
type Settings struct {
	Log    LogConfig    `json:"log"`
	Editor EditorConfig `json:"editor"`
	Upload UploadConfig `json:"upload"`
	Store  StoreConfig  `json:"store"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// EditorConfig configures the editor plugins.
type EditorConfig struct {
	// Placeholder is shown while the document is empty.
	Placeholder string `json:"placeholder"`

	// CharLimit caps the document length. Zero means no limit.
	CharLimit int `json:"charLimit"`

	// ImageInput converts typed image URLs into images.
	ImageInput bool `json:"imageInput"`

	DragHandles  bool `json:"dragHandles"`
	InputRules   bool `json:"inputRules"`
	TrailingNode bool `json:"trailingNode"`

	// Scripts are Lua files defining extra input rules.
	Scripts       []string `json:"scripts"`
	ScriptTimeout Duration `json:"scriptTimeout"`
}

// UploadConfig selects where pasted and dropped images are stored.
type UploadConfig struct {
	// Backend is "none", "local" or "minio".
	Backend string   `json:"backend"`
	Timeout Duration `json:"timeout"`

	// Dir and BaseURL configure the local backend.
	Dir     string `json:"dir"`
	BaseURL string `json:"baseURL"`

	Minio MinioConfig `json:"minio"`
}

// MinioConfig configures the S3-compatible backend.
type MinioConfig struct {
	Endpoint        string `json:"endpoint"`
	AccessKeyID     string `json:"accessKeyID"`
	SecretAccessKey string `json:"secretAccessKey"`
	UseSSL          bool   `json:"useSSL"`
	Bucket          string `json:"bucket"`
	Prefix          string `json:"prefix"`
	PublicURL       string `json:"publicURL"`
	Tries           int    `json:"tries"`
}

// StoreConfig configures document persistence.
type StoreConfig struct {
	// Path is the SQLite database file. Empty keeps documents in memory.
	Path string `json:"path"`

	CacheTTL Duration `json:"cacheTTL"`
}

// Upload backends.
const (
	BackendNone  = "none"
	BackendLocal = "local"
	BackendMinio = "minio"
)

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Log: LogConfig{Level: "info", Format: "text"},
		Editor: EditorConfig{
			Placeholder:   "Write something...",
			DragHandles:   true,
			ImageInput:    true,
			InputRules:    true,
			TrailingNode:  true,
			ScriptTimeout: Duration(time.Second),
		},
		Upload: UploadConfig{
			Backend: BackendNone,
			Timeout: Duration(30 * time.Second),
			Dir:     "uploads",
			BaseURL: "/uploads",
			Minio:   MinioConfig{Bucket: "inkwell", Tries: 1},
		},
		Store: StoreConfig{CacheTTL: Duration(10 * time.Minute)},
	}
}

// Duration is a time.Duration written as "30s" in files. Plain numbers
// are nanoseconds.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case float64:
		*d = Duration(v)
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
	default:
		return fmt.Errorf("duration must be a string or number, got %T", v)
	}
	return nil
}
