// Package config loads the ADRI configuration document and resolves
// standard, assessment and audit paths from it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"adri/domain/core"
)

// Environment variables recognized by the loader
const (
	EnvInlineConfig = "ADRI_CONFIG"      // inline YAML, highest precedence
	EnvConfigPath   = "ADRI_CONFIG_PATH" // explicit file path
	EnvConfigFile   = "ADRI_CONFIG_FILE" // legacy alias of ADRI_CONFIG_PATH
	EnvEnvironment  = "ADRI_ENV"         // development|staging|production
)

// configFileName is discovered by walking up from the working directory
const configFileName = "ADRI/config.yaml"

// Config represents the complete ADRI configuration
type Config struct {
	Project    ProjectConfig    `yaml:"project"`
	Paths      PathConfig       `yaml:"paths"`
	Protection ProtectionConfig `yaml:"protection"`
	Assessment AssessmentConfig `yaml:"assessment"`
	Generation GenerationConfig `yaml:"generation"`

	// Source records where this document came from, for diagnostics
	Source string `yaml:"-"`
}

// ProjectConfig names the project
type ProjectConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment,omitempty"`
}

// PathConfig holds the directory layout
type PathConfig struct {
	Standards    string `yaml:"standards"`
	Assessments  string `yaml:"assessments"`
	TrainingData string `yaml:"training_data"`
	AuditLogs    string `yaml:"audit_logs"`
}

// ProtectionConfig holds guard-time defaults
type ProtectionConfig struct {
	DefaultMinScore    float64 `yaml:"default_min_score"`
	DefaultFailureMode string  `yaml:"default_failure_mode"`
	CacheDurationHours float64 `yaml:"cache_duration_hours"`
	AutoGenerate       bool    `yaml:"auto_generate_standards"`
	Verbose            bool    `yaml:"verbose_protection"`
}

// AssessmentConfig tunes assessment behavior
type AssessmentConfig struct {
	MaxRows        int `yaml:"max_rows,omitempty"`
	SampleFailures int `yaml:"sample_failures,omitempty"`
}

// GenerationConfig tunes standard generation
type GenerationConfig struct {
	OverallMinimum float64 `yaml:"default_overall_minimum,omitempty"`
	SampleLimit    int     `yaml:"sample_limit,omitempty"` // head-sample cap for auto-generation
	RangeStrategy  string  `yaml:"range_strategy,omitempty"`
	EnumStrategy   string  `yaml:"enum_strategy,omitempty"`
}

// Default returns the configuration used when no document is found
func Default() *Config {
	return &Config{
		Project: ProjectConfig{Name: "adri", Version: "0.1.0"},
		Paths: PathConfig{
			Standards:    "ADRI/contracts/standards",
			Assessments:  "ADRI/assessments",
			TrainingData: "ADRI/training_data",
			AuditLogs:    "ADRI/audit_logs",
		},
		Protection: ProtectionConfig{
			DefaultMinScore:    75,
			DefaultFailureMode: "raise",
			CacheDurationHours: 1,
			AutoGenerate:       true,
		},
		Generation: GenerationConfig{OverallMinimum: 75, SampleLimit: 1000},
		Source:     "defaults",
	}
}

var (
	mu     sync.Mutex
	cached *Config
)

// Load returns the process-wide configuration, resolving it once and
// caching the result. Precedence: inline env YAML, env path, explicit
// path, upward discovery of ADRI/config.yaml, then ErrConfigNotFound.
func Load(explicitPath string) (*Config, error) {
	mu.Lock()
	defer mu.Unlock()
	if cached != nil {
		return cached, nil
	}
	cfg, err := load(explicitPath)
	if err != nil {
		return nil, err
	}
	cached = cfg
	return cfg, nil
}

// LoadOrDefault behaves like Load but recovers a missing document with
// defaults; parse failures still propagate.
func LoadOrDefault(explicitPath string) (*Config, error) {
	cfg, err := Load(explicitPath)
	if err != nil {
		if errors.Is(err, core.ErrConfigNotFound) {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Reset clears the cached configuration. Intended for tests.
func Reset() {
	mu.Lock()
	cached = nil
	mu.Unlock()
}

func load(explicitPath string) (*Config, error) {
	if inline := os.Getenv(EnvInlineConfig); inline != "" {
		cfg, err := parse([]byte(inline))
		if err != nil {
			return nil, err
		}
		cfg.Source = "env:" + EnvInlineConfig
		return cfg, nil
	}

	for _, env := range []string{EnvConfigPath, EnvConfigFile} {
		if p := os.Getenv(env); p != "" {
			return loadFile(p, "env:"+env)
		}
	}

	if explicitPath != "" {
		return loadFile(explicitPath, "path")
	}

	if found := discover(); found != "" {
		return loadFile(found, "discovered")
	}

	return nil, fmt.Errorf("%w: no %s found from working directory up to home", core.ErrConfigNotFound, configFileName)
}

func loadFile(path, source string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", core.ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", core.ErrConfigInvalid, path, err)
	}
	cfg, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Source = source + ":" + path
	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrConfigInvalid, err)
	}
	if err := cfg.validatePaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validatePaths checks the required path keys; missing sections yield a
// structured rejection.
func (c *Config) validatePaths() error {
	required := map[string]string{
		"paths.standards":     c.Paths.Standards,
		"paths.assessments":   c.Paths.Assessments,
		"paths.training_data": c.Paths.TrainingData,
		"paths.audit_logs":    c.Paths.AuditLogs,
	}
	for key, value := range required {
		if value == "" {
			return fmt.Errorf("%w: missing required path %s", core.ErrConfigInvalid, key)
		}
	}
	return nil
}

// discover walks up from the working directory to the user's home looking
// for ADRI/config.yaml
func discover() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	home, _ := os.UserHomeDir()
	for {
		candidate := filepath.Join(dir, configFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		if dir == home {
			return ""
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// CreateDirectoryStructure materializes all declared directories
func (c *Config) CreateDirectoryStructure() error {
	for _, dir := range []string{c.Paths.Standards, c.Paths.Assessments, c.Paths.TrainingData, c.Paths.AuditLogs} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// StandardPath returns the centralized path for a named standard
func (c *Config) StandardPath(name string) string {
	return filepath.Join(c.Paths.Standards, name+".yaml")
}
