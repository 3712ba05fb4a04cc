package conf

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DEFAULT_LANG          = "en"
	DEFAULT_ITERATIONS    = 10
	DEFAULT_LEARNING_RATE = 1.0
	DEFAULT_SEED          = 1
)

// ConfigurationError reports a bad flag, environment or config file value.
// It is raised before any training work starts.
type ConfigurationError struct {
	Field string
	Msg   string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "configuration error: " + e.Msg
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Msg)
}

// Config holds the training run settings. Values are layered: defaults, then
// an optional YAML file, then DEPTRAIN_* environment variables, then flags.
type Config struct {
	Lang         string  `yaml:"lang" envconfig:"DEPTRAIN_LANG"`
	Model        string  `yaml:"model" envconfig:"DEPTRAIN_MODEL"`
	Output       string  `yaml:"output" envconfig:"DEPTRAIN_OUTPUT"`
	Iterations   int     `yaml:"iterations" envconfig:"DEPTRAIN_ITERATIONS"`
	LearningRate float64 `yaml:"learning_rate" envconfig:"DEPTRAIN_LEARNING_RATE"`
	Decay        float64 `yaml:"decay" envconfig:"DEPTRAIN_DECAY"`
	Seed         int64   `yaml:"seed" envconfig:"DEPTRAIN_SEED"`
	Average      bool    `yaml:"average" envconfig:"DEPTRAIN_AVERAGE"`
	InitScale    float64 `yaml:"init_scale" envconfig:"DEPTRAIN_INIT_SCALE"`
	Features     string  `yaml:"features" envconfig:"DEPTRAIN_FEATURES"`
	Labels       string  `yaml:"labels" envconfig:"DEPTRAIN_LABELS"`
	TrainConll   string  `yaml:"train_conll" envconfig:"DEPTRAIN_TRAIN_CONLL"`
	RedisAddr    string  `yaml:"redis_addr" envconfig:"DEPTRAIN_REDIS_ADDR"`
	RedisKey     string  `yaml:"redis_key" envconfig:"DEPTRAIN_REDIS_KEY"`
}

func Default() *Config {
	return &Config{
		Lang:         DEFAULT_LANG,
		Iterations:   DEFAULT_ITERATIONS,
		LearningRate: DEFAULT_LEARNING_RATE,
		Seed:         DEFAULT_SEED,
		Average:      true,
	}
}

// Read overlays the YAML document in reader onto the defaults.
func Read(reader io.Reader) (*Config, error) {
	c := Default()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return c, nil
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, &ConfigurationError{Msg: err.Error()}
	}
	return c, nil
}

func ReadFile(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, &ConfigurationError{Field: "config", Msg: err.Error()}
	}
	defer file.Close()
	return Read(file)
}

// FromEnv overlays DEPTRAIN_* environment variables. Unset variables leave
// the current values untouched.
func (c *Config) FromEnv() error {
	if err := envconfig.Process("", c); err != nil {
		return &ConfigurationError{Msg: err.Error()}
	}
	return nil
}

// Validate checks the values that must hold before training begins.
func (c *Config) Validate() error {
	if c.Iterations <= 0 {
		return &ConfigurationError{Field: "iterations", Msg: fmt.Sprintf("must be positive, got %d", c.Iterations)}
	}
	if c.LearningRate <= 0 {
		return &ConfigurationError{Field: "learning_rate", Msg: fmt.Sprintf("must be positive, got %v", c.LearningRate)}
	}
	if c.Decay < 0 {
		return &ConfigurationError{Field: "decay", Msg: fmt.Sprintf("must not be negative, got %v", c.Decay)}
	}
	if c.InitScale < 0 {
		return &ConfigurationError{Field: "init_scale", Msg: fmt.Sprintf("must not be negative, got %v", c.InitScale)}
	}
	if c.Lang == "" {
		return &ConfigurationError{Field: "lang", Msg: "must not be empty"}
	}
	if c.RedisKey != "" && c.RedisAddr == "" {
		return &ConfigurationError{Field: "redis_key", Msg: "set without redis_addr"}
	}
	return nil
}

// Lines is a line oriented configuration file, such as a labels file; empty
// lines and lines starting with '#' are skipped.
type Lines struct {
	Values []string
}

func ReadLines(reader io.Reader) (*Lines, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(data), "\n")
	retval := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) > 0 && line[0] != '#' {
			retval = append(retval, line)
		}
	}
	return &Lines{retval}, nil
}

func ReadLinesFile(filename string) (*Lines, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadLines(file)
}
