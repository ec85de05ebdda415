package config

import (
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"github.com/filkovsp/WEB-Drawing-App/internal/engine"
	"github.com/filkovsp/WEB-Drawing-App/internal/shape"
)

type Config struct {
	Port           int     `envconfig:"PORT" default:"8080" toml:"port"`
	CanvasWidth    int     `envconfig:"CANVAS_WIDTH" default:"1280" toml:"canvas_width"`
	CanvasHeight   int     `envconfig:"CANVAS_HEIGHT" default:"720" toml:"canvas_height"`
	ZoomStep       float64 `envconfig:"ZOOM_STEP" default:"0.2" toml:"zoom_step"`
	GridStep       float64 `envconfig:"GRID_STEP" default:"50" toml:"grid_step"`
	ShowGrid       bool    `envconfig:"SHOW_GRID" default:"true" toml:"show_grid"`
	StrokeColor    string  `envconfig:"STROKE_COLOR" default:"#000000" toml:"stroke_color"`
	StrokeWidth    float64 `envconfig:"STROKE_WIDTH" default:"1" toml:"stroke_width"`
	FillColor      string  `envconfig:"FILL_COLOR" default:"" toml:"fill_color"`
	TraceColor     string  `envconfig:"TRACE_COLOR" default:"#960000" toml:"trace_color"`
	LogLevel       string  `envconfig:"LOG_LEVEL" default:"info" toml:"log_level"`
	AllowedOrigins string  `envconfig:"ALLOWED_ORIGINS" default:"localhost:5173,localhost:3000" toml:"allowed_origins"`
	LogFile        string  `envconfig:"LOG_FILE" toml:"log_file"`

	// ConfigFile names an optional TOML file. Keys set there apply unless
	// the matching environment variable is also set.
	ConfigFile string `envconfig:"CONFIG_FILE" toml:"-"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.ConfigFile != "" {
		if err := cfg.mergeFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeFile copies every key defined in the TOML file at path into c,
// skipping fields whose environment variable is set.
func (c *Config) mergeFile(path string) error {
	var file Config
	md, err := toml.DecodeFile(path, &file)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config file %s: unknown keys %v", path, undecoded)
	}

	dst := reflect.ValueOf(c).Elem()
	src := reflect.ValueOf(&file).Elem()
	t := dst.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key := f.Tag.Get("toml")
		if key == "" || key == "-" || !md.IsDefined(key) {
			continue
		}
		if _, set := os.LookupEnv(f.Tag.Get("envconfig")); set {
			continue
		}
		dst.Field(i).Set(src.Field(i))
	}
	return nil
}

func (c *Config) Validate() error {
	if c.CanvasWidth <= 0 || c.CanvasHeight <= 0 {
		return fmt.Errorf("canvas size must be positive, got %dx%d", c.CanvasWidth, c.CanvasHeight)
	}
	if c.ZoomStep <= 0 || c.ZoomStep >= 1 {
		return fmt.Errorf("zoom step must be in (0, 1), got %g", c.ZoomStep)
	}
	if c.ShowGrid && c.GridStep <= 0 {
		return fmt.Errorf("grid step must be positive, got %g", c.GridStep)
	}
	if c.StrokeWidth <= 0 {
		return fmt.Errorf("stroke width must be positive, got %g", c.StrokeWidth)
	}
	if _, err := c.Style(); err != nil {
		return err
	}
	if _, err := shape.ParseColor(c.TraceColor); err != nil {
		return fmt.Errorf("TRACE_COLOR: %w", err)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LOG_LEVEL (debug, info, warn, error).
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c *Config) Style() (shape.Style, error) {
	stroke, err := shape.ParseColor(c.StrokeColor)
	if err != nil {
		return shape.Style{}, fmt.Errorf("STROKE_COLOR: %w", err)
	}
	fill, err := shape.ParseColor(c.FillColor)
	if err != nil {
		return shape.Style{}, fmt.Errorf("FILL_COLOR: %w", err)
	}
	return shape.Style{Color: stroke, Fill: fill, Width: c.StrokeWidth}, nil
}

// EngineOptions turns the drawing settings into engine options. Callers add
// their own logger and surface factory.
func (c *Config) EngineOptions() []engine.Option {
	opts := []engine.Option{engine.WithZoomStep(c.ZoomStep)}
	if style, err := c.Style(); err == nil {
		opts = append(opts, engine.WithStyle(style))
	}
	if trace, err := shape.ParseColor(c.TraceColor); err == nil && trace.A > 0 {
		opts = append(opts, engine.WithTraceColor(trace))
	}
	if c.ShowGrid {
		opts = append(opts, engine.WithGrid(c.GridStep))
	}
	return opts
}
