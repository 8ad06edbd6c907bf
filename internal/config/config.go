package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Defaults used for any setting absent from the file.
const (
	DefaultLogLevel            = "info"
	DefaultMaxUndoEntries      = 100
	DefaultChangeLogSize       = 1000
	DefaultPrompt              = "tree> "
	DefaultHistoryDisplayLimit = 10
	DefaultScriptTimeoutMS     = 5000
)

// Log configures host logging.
type Log struct {
	// Level is the log level name: trace, debug, info, warn, or error.
	Level string `toml:"level"`
}

// Engine bounds the engine's bookkeeping.
type Engine struct {
	// MaxUndoEntries caps the undo stack depth.
	MaxUndoEntries int `toml:"max_undo_entries"`
	// ChangeLogSize caps the change tracker's ring buffer.
	ChangeLogSize int `toml:"change_log_size"`
}

// REPL configures the interactive prompt.
type REPL struct {
	// Prompt is printed before each input line.
	Prompt string `toml:"prompt"`
	// HistoryDisplayLimit caps how many entries the history listing shows.
	HistoryDisplayLimit int `toml:"history_display_limit"`
}

// Script bounds Lua execution.
type Script struct {
	// TimeoutMS aborts a script run after this many milliseconds.
	TimeoutMS int `toml:"timeout_ms"`
}

// Config is the root of the treestorm configuration file.
type Config struct {
	Log    Log    `toml:"log"`
	Engine Engine `toml:"engine"`
	REPL   REPL   `toml:"repl"`
	Script Script `toml:"script"`
}

// Default returns a configuration with every setting at its default.
func Default() *Config {
	return &Config{
		Log: Log{Level: DefaultLogLevel},
		Engine: Engine{
			MaxUndoEntries: DefaultMaxUndoEntries,
			ChangeLogSize:  DefaultChangeLogSize,
		},
		REPL: REPL{
			Prompt:              DefaultPrompt,
			HistoryDisplayLimit: DefaultHistoryDisplayLimit,
		},
		Script: Script{TimeoutMS: DefaultScriptTimeoutMS},
	}
}

// knownLevels are the accepted [log] level names.
var knownLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks every setting against its allowed values.
func (c *Config) Validate() error {
	if !knownLevels[c.Log.Level] {
		return invalidValue("log.level", c.Log.Level, "want trace, debug, info, warn, or error")
	}
	if c.Engine.MaxUndoEntries < 1 {
		return invalidValue("engine.max_undo_entries", c.Engine.MaxUndoEntries, "want >= 1")
	}
	if c.Engine.ChangeLogSize < 1 {
		return invalidValue("engine.change_log_size", c.Engine.ChangeLogSize, "want >= 1")
	}
	if c.REPL.HistoryDisplayLimit < 1 {
		return invalidValue("repl.history_display_limit", c.REPL.HistoryDisplayLimit, "want >= 1")
	}
	if c.Script.TimeoutMS < 1 {
		return invalidValue("script.timeout_ms", c.Script.TimeoutMS, "want >= 1")
	}
	return nil
}

// ScriptTimeout returns the script timeout as a duration.
func (c *Config) ScriptTimeout() time.Duration {
	return time.Duration(c.Script.TimeoutMS) * time.Millisecond
}

// FileSystem abstracts file reads so tests can inject in-memory files.
type FileSystem interface {
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// DefaultFS returns the OS file system.
func DefaultFS() FileSystem {
	return OSFS{}
}

// Loader reads and validates configuration files.
type Loader struct {
	fs FileSystem
}

// NewLoader creates a loader over the OS file system.
func NewLoader() *Loader {
	return &Loader{fs: DefaultFS()}
}

// NewLoaderWithFS creates a loader with a custom file system.
func NewLoaderWithFS(fsys FileSystem) *Loader {
	return &Loader{fs: fsys}
}

// Load reads the TOML file at path. A missing file yields (nil, nil) so
// callers can fall back to Default(). Settings absent from the file keep
// their default values; present settings are validated.
func (l *Loader) Load(path string) (*Config, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}
