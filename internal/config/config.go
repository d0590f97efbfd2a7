package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	charmLog "github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"
)

// Grid defaults mirror the widget's initial 5x5 table.
const (
	DefaultWidth     = 5
	DefaultHeight    = 5
	DefaultMaxWidth  = 26
	DefaultMaxHeight = 99
)

// Config is the root TOML document.
type Config struct {
	Grid    GridConfig    `toml:"grid"`
	Logging LoggingConfig `toml:"logging"`
	Server  ServerConfig  `toml:"server"`
	UI      UIConfig      `toml:"ui"`
	Keys    KeyConfig     `toml:"keys"`
}

// GridConfig holds initial and maximum grid dimensions.
type GridConfig struct {
	Width     int `toml:"width"`
	Height    int `toml:"height"`
	MaxWidth  int `toml:"max_width"`
	MaxHeight int `toml:"max_height"`
}

// LoggingConfig holds runtime logger options.
type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

// DevFileConfig controls the dev-mode log file sink.
type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// ServerConfig holds the serve command listener settings.
type ServerConfig struct {
	HTTPBind    string `toml:"http_bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

// UIConfig holds terminal rendering options.
type UIConfig struct {
	CellWidth  int  `toml:"cell_width"`
	ShowLabels bool `toml:"show_labels"`
}

// KeyConfig overrides action key bindings. Comma-separated values bind several keys.
type KeyConfig struct {
	Merge     string `toml:"merge"`
	Separate  string `toml:"separate"`
	CopyRange string `toml:"copy_range"`
	Clear     string `toml:"clear"`
	Help      string `toml:"help"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Grid: GridConfig{
			Width:     DefaultWidth,
			Height:    DefaultHeight,
			MaxWidth:  DefaultMaxWidth,
			MaxHeight: DefaultMaxHeight,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".mergegrid/log",
			},
		},
		Server: ServerConfig{
			HTTPBind:    "127.0.0.1:5437",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
		UI: UIConfig{
			CellWidth:  9,
			ShowLabels: true,
		},
		Keys: KeyConfig{
			Merge:     "m",
			Separate:  "s",
			CopyRange: "y",
			Clear:     "esc",
			Help:      "?",
		},
	}
}

// Load reads path over defaults. A missing or empty file yields the defaults unchanged.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Grid.MaxWidth < 1 {
		return fmt.Errorf("grid.max_width must be >= 1, got %d", c.Grid.MaxWidth)
	}
	if c.Grid.MaxHeight < 1 {
		return fmt.Errorf("grid.max_height must be >= 1, got %d", c.Grid.MaxHeight)
	}
	if c.Grid.Width < 0 || c.Grid.Width > c.Grid.MaxWidth {
		return fmt.Errorf("grid.width must be within 0..%d, got %d", c.Grid.MaxWidth, c.Grid.Width)
	}
	if c.Grid.Height < 0 || c.Grid.Height > c.Grid.MaxHeight {
		return fmt.Errorf("grid.height must be within 0..%d, got %d", c.Grid.MaxHeight, c.Grid.Height)
	}

	if _, err := charmLog.ParseLevel(strings.TrimSpace(c.Logging.Level)); err != nil {
		return fmt.Errorf("invalid logging.level %q: %w", c.Logging.Level, err)
	}

	if strings.TrimSpace(c.Server.HTTPBind) == "" {
		return errors.New("server.http_bind is required")
	}
	for name, endpoint := range map[string]string{
		"server.api_endpoint": c.Server.APIEndpoint,
		"server.mcp_endpoint": c.Server.MCPEndpoint,
	} {
		if !strings.HasPrefix(strings.TrimSpace(endpoint), "/") {
			return fmt.Errorf("%s must start with '/', got %q", name, endpoint)
		}
	}

	if c.UI.CellWidth < 3 {
		return fmt.Errorf("ui.cell_width must be >= 3, got %d", c.UI.CellWidth)
	}

	return nil
}

// ParseDimension parses one user-supplied grid dimension.
//
// Missing or malformed input falls back to fallback; values above max are capped.
func ParseDimension(raw string, fallback, max int) int {
	value := fallback
	if trimmed := strings.TrimSpace(raw); trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed >= 0 {
			value = parsed
		}
	}
	if max > 0 && value > max {
		value = max
	}
	return value
}

// EnsureConfigDir creates the parent directory for path.
func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
