// Package config loads the conductor configuration from a TOML or YAML file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/tansive/conductor/internal/common/apperrors"
)

// DefaultConfigFile is the name of the config file in the user config
// directory.
const DefaultConfigFile = "config.toml"

var ErrConfig = apperrors.New("invalid configuration").SetExitCode(apperrors.ExitCodeInput)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// StoreConfig selects where the catalog record is persisted.
type StoreConfig struct {
	Backend  string `toml:"backend" yaml:"backend" validate:"oneof=file postgres sqlite"`
	DSN      string `toml:"dsn" yaml:"dsn" validate:"required_unless=Backend file"`
	Compress bool   `toml:"compress" yaml:"compress"`
}

// StorageConfig configures the local table storage.
type StorageConfig struct {
	Root string `toml:"root" yaml:"root"` // defaults to <data_path>/tables
}

type Config struct {
	DataPath        string        `toml:"data_path" yaml:"data_path" validate:"required"`
	Store           StoreConfig   `toml:"store" yaml:"store"`
	Storage         StorageConfig `toml:"storage" yaml:"storage"`
	LogLevel        string        `toml:"log_level" yaml:"log_level" validate:"logLevel"`
	MetricsTextfile string        `toml:"metrics_textfile" yaml:"metrics_textfile"`
}

func Default() *Config {
	return &Config{
		DataPath: ".conductor",
		Store:    StoreConfig{Backend: BackendFile},
		LogLevel: "info",
	}
}

// StorageRoot is the directory holding physical tables.
func (c *Config) StorageRoot() string {
	if c.Storage.Root != "" {
		return c.Storage.Root
	}
	return filepath.Join(c.DataPath, "tables")
}

// GetDefaultConfigPath returns the config file path under the OS specific
// config directory (e.g. ~/.config/conductor on Linux).
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", ErrConfig.MsgErr("failed to get user config directory", err)
	}
	return filepath.Join(configDir, "conductor", DefaultConfigFile), nil
}

// Load reads the config in file. With no file the default path is tried and
// the defaults are used when it does not exist. Values missing from the file
// keep their defaults.
func Load(file string) (*Config, error) {
	explicit := file != ""
	if !explicit {
		var err error
		file, err = GetDefaultConfigPath()
		if err != nil {
			return Default(), nil
		}
	}

	content, err := os.ReadFile(file)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, ErrConfig.MsgErr("unable to read config file "+file, err)
	}
	return Parse(file, content)
}

// Parse decodes content as TOML or YAML, chosen by the extension of name,
// and validates the result.
func Parse(name string, content []byte) (*Config, error) {
	cfg := Default()
	switch strings.ToLower(filepath.Ext(name)) {
	case ".toml", "":
		if _, err := toml.Decode(string(content), cfg); err != nil {
			return nil, ErrConfig.MsgErr("unable to parse config file "+name, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, ErrConfig.MsgErr("unable to parse config file "+name, err)
		}
	default:
		return nil, ErrConfig.Msgf("unsupported config file type %s", filepath.Ext(name))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := V().Struct(c); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) {
			msgs := make([]string, 0, len(ves))
			for _, fe := range ves {
				msgs = append(msgs, fe.Namespace()+" failed on "+fe.Tag())
			}
			return ErrConfig.Msg(strings.Join(msgs, "; "))
		}
		return ErrConfig.Err(err)
	}
	return nil
}

var v *validator.Validate

// V returns the validator with the config specific rules registered.
func V() *validator.Validate {
	return v
}

func logLevelValidator(fl validator.FieldLevel) bool {
	level := fl.Field().String()
	if level == "" {
		return true
	}
	_, err := zerolog.ParseLevel(strings.ToLower(level))
	return err == nil
}

func init() {
	v = validator.New()
	v.RegisterValidation("logLevel", logLevelValidator)
}
