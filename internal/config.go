package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"photoname/internal/source"
)

type ExifToolConfig struct {
	Path    string `mapstructure:"path"`
	Enabled bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
	File   string `mapstructure:"file"`
}

type ReviewConfig struct {
	Addr    string `mapstructure:"addr" validate:"required,hostname_port"`
	DataDir string `mapstructure:"data_dir"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr" validate:"omitempty,hostname_port"`
}

type Config struct {
	Library     string         `mapstructure:"library"`
	Destination string         `mapstructure:"destination"`
	TagsFile    string         `mapstructure:"tags_file" validate:"required"`
	StoreFile   string         `mapstructure:"store_file" validate:"required"`
	MaxErrors   int            `mapstructure:"max_errors" validate:"gte=0"`
	ImageExt    []string       `mapstructure:"image_extensions" validate:"dive,startswith=."`
	VideoExt    []string       `mapstructure:"video_extensions" validate:"dive,startswith=."`
	ExifTool    ExifToolConfig `mapstructure:"exiftool"`
	Log         LogConfig      `mapstructure:"log"`
	Review      ReviewConfig   `mapstructure:"review"`
	Metrics     MetricsConfig  `mapstructure:"metrics"`

	// Quirks replaces the built-in camera naming table when set.
	Quirks []source.Rule `mapstructure:"quirks" validate:"dive"`
}

// ConfigDir is where photoname keeps its config, tag file and record store.
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to find user config dir: %w", err)
	}
	return filepath.Join(dir, "photoname"), nil
}

// LoadConfig reads photoname.toml from the config dir, or path when it is
// not empty. A missing file leaves the defaults in place.
func LoadConfig(path string) (*Config, error) {
	configDir, err := ConfigDir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("photoname")
		v.AddConfigPath(configDir)
	}

	v.SetEnvPrefix("photoname")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	for i, e := range cfg.ImageExt {
		cfg.ImageExt[i] = strings.ToLower(e)
	}
	for i, e := range cfg.VideoExt {
		cfg.VideoExt[i] = strings.ToLower(e)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("library", "")
	v.SetDefault("destination", "")
	v.SetDefault("tags_file", filepath.Join(configDir, "tags.json"))
	v.SetDefault("store_file", filepath.Join(configDir, "library.json"))
	v.SetDefault("max_errors", 0)
	v.SetDefault("image_extensions", []string{".jpeg", ".jpg", ".png", ".heic"})
	v.SetDefault("video_extensions", []string{".mov", ".mp4"})
	v.SetDefault("exiftool.path", "exiftool")
	v.SetDefault("exiftool.enabled", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("review.addr", "127.0.0.1:8090")
	v.SetDefault("review.data_dir", filepath.Join(configDir, "review"))
	v.SetDefault("metrics.addr", "")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags of cfg and its quirk rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Classifier returns the source classifier configured by the quirk table.
func (c *Config) Classifier() *source.Classifier {
	if len(c.Quirks) == 0 {
		return source.Default
	}
	return &source.Classifier{Quirks: c.Quirks}
}

// IsMediaFile reports whether path has one of the configured extensions.
func (c *Config) IsMediaFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range c.ImageExt {
		if ext == e {
			return true
		}
	}
	for _, e := range c.VideoExt {
		if ext == e {
			return true
		}
	}
	return false
}
