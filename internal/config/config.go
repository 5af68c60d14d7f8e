// Package config loads CLI settings from parsetrace.toml or parsetrace.yaml
// and resolves them into typed values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"parsetrace/internal/demo"
	"parsetrace/internal/render"
	"parsetrace/internal/trace"
)

// ErrUnknownKeys reports keys in a config file that map to no setting.
var ErrUnknownKeys = errors.New("unknown config keys")

// Config is the file form of the settings. All values are strings or
// numbers so files stay readable; Resolve turns them into typed settings.
type Config struct {
	Grammar  string      `toml:"grammar" yaml:"grammar"`
	Strategy string      `toml:"strategy" yaml:"strategy"`
	Width    string      `toml:"width" yaml:"width"`
	Context  int         `toml:"context" yaml:"context"`
	Color    string      `toml:"color" yaml:"color"`
	Jobs     int         `toml:"jobs" yaml:"jobs"`
	Trace    TraceConfig `toml:"trace" yaml:"trace"`
	Input    InputConfig `toml:"input" yaml:"input"`
}

type TraceConfig struct {
	Level    string `toml:"level" yaml:"level"`
	Mode     string `toml:"mode" yaml:"mode"`     // stream, ring or both
	Format   string `toml:"format" yaml:"format"` // text, ndjson or msgpack
	Output   string `toml:"output" yaml:"output"`
	RingSize int    `toml:"ring_size" yaml:"ring_size"`
}

type InputConfig struct {
	NFC     bool   `toml:"nfc" yaml:"nfc"`
	BaseDir string `toml:"base_dir" yaml:"base_dir"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Grammar:  demo.DefaultGrammar,
		Strategy: "full",
		Width:    "medium",
		Context:  2,
		Color:    "auto",
		Trace: TraceConfig{
			Level:  "off",
			Mode:   "stream",
			Format: "text",
		},
	}
}

// Load reads path over the defaults. The format follows the extension:
// .toml, .yaml or .yml. Unknown keys are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = decodeTOML(data, &cfg)
	case ".yaml", ".yml":
		err = decodeYAML(data, &cfg)
	default:
		return Config{}, fmt.Errorf("%s: unsupported config format %q", path, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func decodeTOML(data []byte, cfg *Config) error {
	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return fmt.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%w: %s", ErrUnknownKeys, strings.Join(keys, ", "))
	}
	return nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "not found in type") {
			return fmt.Errorf("%w: %v", ErrUnknownKeys, err)
		}
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// ColorMode selects when output is colored.
type ColorMode uint8

const (
	ColorAuto ColorMode = iota
	ColorOn
	ColorOff
)

func (m ColorMode) String() string {
	switch m {
	case ColorOn:
		return "on"
	case ColorOff:
		return "off"
	default:
		return "auto"
	}
}

// ParseColorMode accepts auto, on/always/true and off/never/false.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ColorAuto, nil
	case "on", "always", "true":
		return ColorOn, nil
	case "off", "never", "false":
		return ColorOff, nil
	default:
		return ColorAuto, fmt.Errorf("unknown color mode %q (want auto, on or off)", s)
	}
}

// Settings are the resolved, typed values of a Config.
type Settings struct {
	Grammar  demo.Grammar
	Strategy trace.Strategy
	Width    render.Width
	Context  int
	Color    ColorMode
	Jobs     int

	Level    trace.Level
	Mode     trace.StorageMode
	Format   trace.Format
	Msgpack  bool // write the event log as msgpack instead of a text stream
	TraceOut string
	RingSize int
	NFC      bool
	BaseDir  string
}

// Resolve validates every field and returns the typed settings. All
// problems are reported together.
func (c Config) Resolve() (Settings, error) {
	var (
		s    Settings
		errs []error
		err  error
	)
	if s.Grammar, err = demo.Lookup(c.Grammar); err != nil {
		errs = append(errs, err)
	}
	if s.Strategy, err = trace.ParseStrategy(c.Strategy); err != nil {
		errs = append(errs, err)
	}
	if s.Width, err = render.ParseWidth(c.Width); err != nil {
		errs = append(errs, err)
	}
	if s.Color, err = ParseColorMode(c.Color); err != nil {
		errs = append(errs, err)
	}
	if s.Level, err = trace.ParseLevel(c.Trace.Level); err != nil {
		errs = append(errs, err)
	}
	if s.Mode, err = trace.ParseMode(c.Trace.Mode); err != nil {
		errs = append(errs, err)
	}
	if strings.EqualFold(strings.TrimSpace(c.Trace.Format), "msgpack") {
		s.Msgpack = true
		s.Format = trace.FormatText
	} else if s.Format, err = trace.ParseFormat(c.Trace.Format); err != nil {
		errs = append(errs, err)
	}
	if c.Context < 0 {
		errs = append(errs, fmt.Errorf("context must not be negative, got %d", c.Context))
	}
	if c.Jobs < 0 {
		errs = append(errs, fmt.Errorf("jobs must not be negative, got %d", c.Jobs))
	}
	if c.Trace.RingSize < 0 {
		errs = append(errs, fmt.Errorf("trace.ring_size must not be negative, got %d", c.Trace.RingSize))
	}
	if len(errs) > 0 {
		return Settings{}, errors.Join(errs...)
	}

	s.Context = c.Context
	s.Jobs = c.Jobs
	if s.Jobs == 0 {
		s.Jobs = runtime.GOMAXPROCS(0)
	}
	s.TraceOut = c.Trace.Output
	s.RingSize = c.Trace.RingSize
	s.NFC = c.Input.NFC
	s.BaseDir = c.Input.BaseDir
	return s, nil
}

// Validate reports whether c resolves.
func (c Config) Validate() error {
	_, err := c.Resolve()
	return err
}
