package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/toyz/bindgen/internal/generator"
	"github.com/toyz/bindgen/internal/models"
	"github.com/toyz/bindgen/internal/utils"
)

// ConfigFileName is the project configuration file looked up from the target directory
const ConfigFileName = "bindgen.yaml"

// Config holds the configuration for the CLI generator
type Config struct {
	// Directories is the list of directories to scan for annotated Go files
	Directories []string `yaml:"directories,omitempty"`

	// Namespace is the host namespace generated bridge declarations resolve
	Namespace string `yaml:"namespace,omitempty"`

	// CmdPrefix is prepended to every command identifier unless a directive overrides it
	CmdPrefix string `yaml:"cmd_prefix,omitempty"`

	// OnDecodeError is "panic" or "return"
	OnDecodeError string `yaml:"on_decode_error,omitempty"`

	// HostPackages lists the packages whose parameters skeletons drop
	HostPackages []string `yaml:"host_packages,omitempty"`

	// Suffix is appended to a source file's base name to form its output path
	Suffix string `yaml:"suffix,omitempty"`

	// Verbose enables detailed logging and error reporting
	Verbose bool `yaml:"-"`

	// DryRun reports what would be written without touching the file system
	DryRun bool `yaml:"-"`
}

// DefaultConfig returns the configuration used without a project file
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a bindgen.yaml file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses bindgen.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// FindConfig searches for bindgen.yaml starting from dir and walking up to
// parent directories. It returns "" without error when there is none.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range []string{ConfigFileName, "bindgen.yml"} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Validate checks the configuration for semantic errors
func (c *Config) Validate() error {
	if err := utils.NewValidatorChain(utils.NotEmpty("namespace")).Validate(c.Namespace); err != nil {
		return err
	}
	policies := utils.IsOneOf("on_decode_error", string(models.DecodePanic), string(models.DecodeReturn))
	if err := policies(c.OnDecodeError); err != nil {
		return err
	}
	hosts := utils.ValidateEach("host_packages", utils.IsValidGoIdentifier("host_packages"))
	if err := hosts(c.HostPackages); err != nil {
		return err
	}
	suffix := utils.NewValidatorChain(utils.NotEmpty("suffix"), utils.HasSuffix("suffix", ".go"))
	if err := suffix.Validate(c.Suffix); err != nil {
		return err
	}
	if c.Suffix == ".go" {
		return utils.ValidationError{Field: "suffix", Value: c.Suffix, Message: "must not be the bare .go extension"}
	}
	return nil
}

func (c *Config) setDefaults() {
	defaults := models.DefaultGenerationConfig()
	if c.Namespace == "" {
		c.Namespace = defaults.Namespace
	}
	if c.OnDecodeError == "" {
		c.OnDecodeError = string(defaults.OnDecodeError)
	}
	if len(c.HostPackages) == 0 {
		c.HostPackages = defaults.HostPackages
	}
	if c.Suffix == "" {
		c.Suffix = generator.DefaultSuffix
	}
	if len(c.Directories) == 0 {
		c.Directories = []string{"."}
	}
}

// GenerationConfig returns the options every trigger starts from
func (c *Config) GenerationConfig() models.GenerationConfig {
	return models.GenerationConfig{
		CmdPrefix:     c.CmdPrefix,
		Namespace:     c.Namespace,
		OnDecodeError: models.DecodePolicy(c.OnDecodeError),
		HostPackages:  append([]string(nil), c.HostPackages...),
	}
}
