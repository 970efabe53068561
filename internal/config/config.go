// Package config loads notevault.yaml from the application root.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/illarion/notevault/internal/crypto"
	"github.com/illarion/notevault/internal/storage"
)

// FileName is the config file looked up in the application root.
const FileName = "notevault.yaml"

// Default directory names relative to the application root.
const (
	DefaultWorkDir        = "mutable"
	DefaultCredentialsDir = "Immutable"
	DefaultFont           = "standard"
)

// Fonts lists the banner fonts accepted in ui.font.
var Fonts = []any{"standard", "small", "big", "slant", "banner", "doom", "alligator2", "shadow"}

// Config represents the application configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	KDF     KDFConfig     `yaml:"kdf"`
	UI      UIConfig      `yaml:"ui"`
	Log     LogConfig     `yaml:"log"`

	root string
}

// StorageConfig names the working and credentials directories.
type StorageConfig struct {
	WorkDir     string `yaml:"workdir"`
	Credentials string `yaml:"credentials"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.WorkDir, validation.Required, validation.By(localPath)),
		validation.Field(&c.Credentials, validation.Required, validation.By(localPath)),
	); err != nil {
		return err
	}
	if filepath.Clean(c.WorkDir) == filepath.Clean(c.Credentials) {
		return fmt.Errorf("storage: workdir and credentials must differ")
	}
	return nil
}

func localPath(value any) error {
	s, _ := value.(string)
	if s != "" && !filepath.IsLocal(s) {
		return errors.New("must be a relative path inside the root")
	}
	return nil
}

// KDFConfig selects the key derivation used on first run.
type KDFConfig struct {
	Scheme     string `yaml:"scheme"`
	Iterations int    `yaml:"iterations"`
}

// Validate validates the KDF configuration.
func (c *KDFConfig) Validate() error {
	if c.Scheme == "" {
		c.Scheme = crypto.SchemeLegacy
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Scheme, validation.In(crypto.SchemeLegacy, crypto.SchemePBKDF2)),
		validation.Field(&c.Iterations, validation.When(c.Scheme == crypto.SchemePBKDF2,
			validation.Required, validation.Min(1000))),
	)
}

// UIConfig holds shell presentation settings.
type UIConfig struct {
	Banner bool   `yaml:"banner"`
	Font   string `yaml:"font"`
}

// Validate validates the UI configuration.
func (c *UIConfig) Validate() error {
	if c.Font == "" {
		c.Font = DefaultFont
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Font, validation.In(Fonts...)),
	)
}

// LogConfig sets default verbosity; command-line flags can raise it.
type LogConfig struct {
	Verbose bool `yaml:"verbose"`
	Debug   bool `yaml:"debug"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.KDF.Validate(); err != nil {
		return err
	}
	return c.UI.Validate()
}

// NewDefaultConfig returns a Config with default values rooted at root.
func NewDefaultConfig(root string) *Config {
	return &Config{
		Storage: StorageConfig{
			WorkDir:     DefaultWorkDir,
			Credentials: DefaultCredentialsDir,
		},
		KDF: KDFConfig{
			Scheme:     crypto.SchemeLegacy,
			Iterations: crypto.DefaultIters,
		},
		UI: UIConfig{
			Banner: true,
			Font:   DefaultFont,
		},
		root: root,
	}
}

// Load reads notevault.yaml from root over the defaults. A missing file
// yields the defaults.
func Load(root string) (*Config, error) {
	cfg := NewDefaultConfig(root)

	filename := filepath.Join(root, FileName)
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Root returns the application root.
func (c *Config) Root() string {
	return c.root
}

// WorkDir returns the path of the working directory.
func (c *Config) WorkDir() string {
	return filepath.Join(c.root, c.Storage.WorkDir)
}

// CredentialsDir returns the path of the credentials directory.
func (c *Config) CredentialsDir() string {
	return filepath.Join(c.root, c.Storage.Credentials)
}

// StatePath returns the path of the state database.
func (c *Config) StatePath() string {
	return filepath.Join(c.CredentialsDir(), storage.FileName)
}
