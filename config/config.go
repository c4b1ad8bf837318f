// Package config loads navi.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/ziracms/editor-sub001/lang"
)

const DefaultFile = "navi.toml"

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Log       Log       `toml:"log"`
	Limits    Limits    `toml:"limits"`
	Languages Languages `toml:"languages"`
	Exclude   []string  `toml:"exclude"`
	Workers   Workers   `toml:"workers"`
}

type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

type Limits struct {
	// MaxFileSize is the largest file, in bytes, that is parsed.
	MaxFileSize int64 `toml:"max_file_size"`
}

// Languages lists the file extensions of each language, dot included.
type Languages struct {
	PHP []string `toml:"php"`
	JS  []string `toml:"js"`
	CSS []string `toml:"css"`
}

type Workers struct {
	// Parse bounds concurrent file parsing; 0 means GOMAXPROCS.
	Parse int `toml:"parse"`
}

func Default() *Config {
	return &Config{
		Limits: Limits{MaxFileSize: 2 << 20},
		Languages: Languages{
			PHP: []string{".php", ".phtml", ".inc"},
			JS:  []string{".js", ".mjs", ".cjs"},
			CSS: []string{".css", ".scss", ".less"},
		},
		Exclude: []string{"**/vendor/**", "**/node_modules/**"},
	}
}

// Load reads path over the defaults. An empty path, or the default file
// name when it does not exist, yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && filepath.Base(path) == DefaultFile {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Limits.MaxFileSize <= 0 {
		return fmt.Errorf("%w: limits.max_file_size must be positive", ErrInvalid)
	}
	if c.Workers.Parse < 0 {
		return fmt.Errorf("%w: workers.parse must not be negative", ErrInvalid)
	}
	for _, pattern := range c.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("%w: bad exclude pattern %q", ErrInvalid, pattern)
		}
	}
	seen := make(map[string]lang.Language)
	for language, exts := range c.extensions() {
		for _, ext := range exts {
			if !strings.HasPrefix(ext, ".") {
				return fmt.Errorf("%w: extension %q must start with a dot", ErrInvalid, ext)
			}
			ext = strings.ToLower(ext)
			if other, ok := seen[ext]; ok && other != language {
				return fmt.Errorf("%w: extension %q claimed by %s and %s", ErrInvalid, ext, other, language)
			}
			seen[ext] = language
		}
	}
	return nil
}

func (c *Config) extensions() map[lang.Language][]string {
	return map[lang.Language][]string{
		lang.PHP: c.Languages.PHP,
		lang.JS:  c.Languages.JS,
		lang.CSS: c.Languages.CSS,
	}
}

// LanguageOf picks the language for path by extension.
func (c *Config) LanguageOf(path string) (lang.Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "", false
	}
	for language, exts := range c.extensions() {
		for _, e := range exts {
			if strings.ToLower(e) == ext {
				return language, true
			}
		}
	}
	return "", false
}

// Excluded reports whether the slash-separated path matches an exclude
// pattern.
func (c *Config) Excluded(path string) bool {
	path = filepath.ToSlash(path)
	for _, pattern := range c.Exclude {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}
