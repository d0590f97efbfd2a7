package tui

import "github.com/hylla/mergegrid/internal/app"

// KeyConfig holds user key overrides; blank fields keep the defaults.
type KeyConfig struct {
	Merge     string
	Separate  string
	CopyRange string
	Clear     string
	Help      string
}

// UIConfig holds grid rendering options.
type UIConfig struct {
	CellWidth  int
	ShowLabels bool
}

// Option configures a Model.
type Option func(*Model)

// DefaultUIConfig returns the built-in rendering options.
func DefaultUIConfig() UIConfig {
	return UIConfig{
		CellWidth:  9,
		ShowLabels: true,
	}
}

// WithKeyConfig applies key overrides.
func WithKeyConfig(cfg KeyConfig) Option {
	return func(m *Model) {
		m.keys.applyConfig(cfg)
	}
}

// WithUIConfig applies rendering options.
func WithUIConfig(cfg UIConfig) Option {
	return func(m *Model) {
		if cfg.CellWidth >= 3 {
			m.gridOpts.CellWidth = cfg.CellWidth
		}
		m.gridOpts.ShowLabels = cfg.ShowLabels
	}
}

// WithClipboard replaces the clipboard writer used by the copy-range action.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

// WithLogger routes model events to logger.
func WithLogger(logger app.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}
