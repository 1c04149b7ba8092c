// Package config holds the knobs of the tagging network,
// its trainer and its inference driver.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/INotWant/QA/reader"
	"github.com/unixpickle/essentials"
	"gopkg.in/yaml.v3"
)

// Config is the full configuration surface.
type Config struct {
	DictPath    string `yaml:"dict_path"`
	WordVecPath string `yaml:"word_vec_path"`

	VocabSize   int    `yaml:"vocab_size"`
	WordVecDim  int    `yaml:"word_vec_dim"`
	ComVecDim   int    `yaml:"com_vec_dim"`
	LabelSchema string `yaml:"label_schema"`
	LabelNum    int    `yaml:"label_num"`

	DefaultInitStd float64 `yaml:"default_init_std"`
	DefaultL2Rate  float64 `yaml:"default_l2_rate"`
	DropRate       float64 `yaml:"drop_rate"`

	BatchSize    int     `yaml:"batch_size"`
	LearningRate float64 `yaml:"learning_rate"`
	Optimizer    string  `yaml:"optimizer"`
	Passes       int     `yaml:"passes"`
	LogPeriod    int     `yaml:"log_period"`
	Seed         int64   `yaml:"seed"`

	// Workers is the number of samples processed
	// concurrently; it replaces a device selection.
	Workers int    `yaml:"workers"`
	SaveDir string `yaml:"save_dir"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		WordVecDim:     256,
		ComVecDim:      2,
		LabelSchema:    "BIO",
		DefaultInitStd: 1 / math.Sqrt(256),
		DefaultL2Rate:  8e-4,
		DropRate:       0.5,
		BatchSize:      20,
		LearningRate:   1e-3,
		Optimizer:      "adam",
		Passes:         25,
		LogPeriod:      100,
		Seed:           1,
		Workers:        1,
		SaveDir:        "models",
	}
}

// Read decodes a YAML configuration on top of the
// defaults and validates the result.
func Read(r io.Reader) (*Config, error) {
	c := Default()
	if err := yaml.NewDecoder(r).Decode(c); err != nil && err != io.EOF {
		return nil, essentials.AddCtx("read config", err)
	}
	if err := c.Fill(); err != nil {
		return nil, essentials.AddCtx("read config", err)
	}
	return c, nil
}

// ReadFile is like Read, but for a path.
func ReadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, essentials.AddCtx("read config", err)
	}
	defer f.Close()
	return Read(f)
}

// Schema parses the label schema.
func (c *Config) Schema() (reader.Schema, error) {
	return reader.ParseSchema(c.LabelSchema)
}

// Fill derives LabelNum from the schema when it is unset
// and then validates the config.
func (c *Config) Fill() error {
	schema, err := c.Schema()
	if err != nil {
		return err
	}
	if c.LabelNum == 0 {
		c.LabelNum = schema.NumLabels()
	}
	return c.Validate()
}

// Validate checks the values the network depends on.
func (c *Config) Validate() error {
	schema, err := c.Schema()
	if err != nil {
		return err
	}
	if c.LabelNum <= 0 {
		return fmt.Errorf("label_num must be positive, got %d", c.LabelNum)
	}
	if c.LabelNum != schema.NumLabels() {
		return fmt.Errorf("label_num %d does not match schema %s", c.LabelNum, schema)
	}
	if c.ComVecDim <= 0 {
		return fmt.Errorf("com_vec_dim must be positive, got %d", c.ComVecDim)
	}
	if c.WordVecDim <= 0 {
		return fmt.Errorf("word_vec_dim must be positive, got %d", c.WordVecDim)
	}
	if c.VocabSize < 0 {
		return fmt.Errorf("vocab_size must not be negative, got %d", c.VocabSize)
	}
	if c.DropRate < 0 || c.DropRate >= 1 {
		return fmt.Errorf("drop_rate out of range: %f", c.DropRate)
	}
	if c.BatchSize <= 0 {
		return errors.New("batch_size must be positive")
	}
	if c.Workers <= 0 {
		return errors.New("workers must be positive")
	}
	switch c.Optimizer {
	case "adam", "sgd":
	default:
		return fmt.Errorf("unknown optimizer: %s", c.Optimizer)
	}
	return nil
}
