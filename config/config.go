// Package config loads the engine configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultLogLevel                 = "info"
	DefaultQueueDepth               = 256
	DefaultFlowTableSize            = 65536
	DefaultPatternSearch            = "portable"
	DefaultInspectionRecursionLimit = 3000
	DefaultControlNetwork           = "tcp"
	DefaultControlAddress           = "127.0.0.1:37291"
	DefaultShutdownTimeout          = 5 * time.Second
)

// Main is the top level configuration.
type Main struct {
	LogLevel string `yaml:"logLevel"`
	// LogFormat is "console" or "json".
	LogFormat string `yaml:"logFormat"`

	// Workers is the size of the evaluation pool. Zero means one per CPU.
	Workers    int `yaml:"workers"`
	QueueDepth int `yaml:"queueDepth"`

	SignatureFiles []string `yaml:"signatureFiles"`
	FlowTableSize  int      `yaml:"flowTableSize"`

	// PatternSearch names the spm backend used for content keywords.
	PatternSearch            string `yaml:"patternSearch"`
	InspectionRecursionLimit int    `yaml:"inspectionRecursionLimit"`

	// AlertLog is a directory alerts are appended to as JSON lines. Empty logs alerts through the process logger.
	AlertLog string `yaml:"alertLog"`

	Metrics Metrics `yaml:"metrics"`
	Control Control `yaml:"control"`

	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`

	baseDir string
}

// Metrics configures the prometheus endpoint.
type Metrics struct {
	// Listen is the address of the /metrics endpoint. Empty disables it.
	Listen string `yaml:"listen"`
}

// Control configures the grpc control server.
type Control struct {
	// Network is "tcp" or "unix".
	Network string `yaml:"network"`
	Address string `yaml:"address"`
}

// Default returns a configuration with every default applied and no signature files.
func Default() *Main {
	c := &Main{}
	c.applyDefaults()
	return c
}

// Load reads and parses a configuration file. Relative signature paths are resolved against the file's directory.
func Load(path string) (*Main, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	c.baseDir = filepath.Dir(absPath)

	return c, nil
}

// Parse parses configuration text.
func Parse(data []byte) (*Main, error) {
	c := &Main{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()
	return c, nil
}

func (c *Main) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = "console"
	}
	if c.QueueDepth == 0 {
		c.QueueDepth = DefaultQueueDepth
	}
	if c.FlowTableSize == 0 {
		c.FlowTableSize = DefaultFlowTableSize
	}
	if c.PatternSearch == "" {
		c.PatternSearch = DefaultPatternSearch
	}
	if c.InspectionRecursionLimit == 0 {
		c.InspectionRecursionLimit = DefaultInspectionRecursionLimit
	}
	if c.Control.Network == "" {
		c.Control.Network = DefaultControlNetwork
	}
	if c.Control.Address == "" {
		c.Control.Address = DefaultControlAddress
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
}

// SignaturePaths returns the signature files with relative paths resolved.
func (c *Main) SignaturePaths() []string {
	paths := make([]string, 0, len(c.SignatureFiles))
	for _, p := range c.SignatureFiles {
		paths = append(paths, c.resolvePath(p))
	}
	return paths
}

func (c *Main) resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	base := c.baseDir
	if base == "" {
		base = "."
	}
	return filepath.Join(base, p)
}
