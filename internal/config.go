package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Converter engines.
const (
	EnginePandoc   = "pandoc"
	EngineGoldmark = "goldmark"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Site      SiteConfig        `yaml:"site"`
	Converter ConverterConfig   `yaml:"converter"`
	Build     BuildConfig       `yaml:"build"`
	Serve     ServeConfig       `yaml:"serve"`
	Journal   JournalConfig     `yaml:"journal"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	if err := c.Converter.Validate(); err != nil {
		return err
	}
	if err := c.Build.Validate(); err != nil {
		return err
	}
	return c.Serve.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the HTTP listen address on all interfaces.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// URL returns the local URL printed when serving.
func (c *HTTPConfig) URL() string {
	return fmt.Sprintf("http://localhost:%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SiteConfig locates the site inputs and output, relative to the working
// directory.
type SiteConfig struct {
	Source string `yaml:"source"`
	Output string `yaml:"output"`
	Header string `yaml:"header"`
	Footer string `yaml:"footer"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Source, validation.Required),
		validation.Field(&c.Output, validation.Required),
		validation.Field(&c.Header, validation.Required),
		validation.Field(&c.Footer, validation.Required),
	); err != nil {
		return err
	}
	if c.Source == c.Output {
		return fmt.Errorf("site: source and output must differ (both %q)", c.Source)
	}
	return nil
}

// ConverterConfig selects the Markdown engine.
//
// Engine controls how Markdown is rendered:
//   - "pandoc" (default): run Command as a subprocess with --from/--to.
//   - "goldmark": render in-process; Command, From and To are ignored.
type ConverterConfig struct {
	Engine  string `yaml:"engine"`
	Command string `yaml:"command"`
	From    string `yaml:"from"`
	To      string `yaml:"to"`
}

// Validate validates the converter configuration.
func (c *ConverterConfig) Validate() error {
	if c.Engine == "" {
		c.Engine = EnginePandoc
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Engine, validation.Required, validation.In(EnginePandoc, EngineGoldmark)),
	); err != nil {
		return err
	}
	if c.Engine == EnginePandoc {
		return validation.ValidateStruct(c,
			validation.Field(&c.Command, validation.Required),
			validation.Field(&c.From, validation.Required),
			validation.Field(&c.To, validation.Required),
		)
	}
	return nil
}

// BuildConfig tunes the build pipeline.
type BuildConfig struct {
	// Workers is the number of files processed at once; 1 keeps the
	// strictly sequential order.
	Workers int `yaml:"workers"`
}

// Validate validates the build configuration.
func (c *BuildConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Workers, validation.Required, validation.Min(1), validation.Max(256)),
	)
}

// ServeConfig holds options for the serve command.
type ServeConfig struct {
	Watch    bool          `yaml:"watch"`
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the serve configuration.
func (c *ServeConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// JournalConfig holds the optional build journal location. An empty Path
// disables the journal.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether builds are journaled.
func (c *JournalConfig) Enabled() bool {
	return c.Path != ""
}

// NewDefaultConfig returns a new Config with the conventional project layout.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Site: SiteConfig{
			Source: "src",
			Output: "docs",
			Header: "header.html",
			Footer: "footer.html",
		},
		Converter: ConverterConfig{
			Engine:  EnginePandoc,
			Command: "pandoc",
			From:    "markdown",
			To:      "html",
		},
		Build: BuildConfig{
			Workers: 1,
		},
		Serve: ServeConfig{
			Debounce: 200 * time.Millisecond,
		},
	}
}
