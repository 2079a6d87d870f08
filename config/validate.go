package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"nidscore/spm"

	"github.com/rs/zerolog"
)

// ValidationError lists every problem found in a configuration.
type ValidationError struct {
	Problems []string
}

// Add records a problem.
func (v *ValidationError) Add(format string, args ...any) {
	v.Problems = append(v.Problems, fmt.Sprintf(format, args...))
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("%d validation error(s): %s", len(v.Problems), strings.Join(v.Problems, "; "))
}

// Validate checks the configuration. The returned error is a *ValidationError.
func (c *Main) Validate() error {
	v := &ValidationError{}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		v.Add("logLevel %q invalid", c.LogLevel)
	}

	if c.LogFormat != "console" && c.LogFormat != "json" {
		v.Add("logFormat must be console or json")
	}

	if c.Workers < 0 {
		v.Add("workers must not be negative")
	}

	if c.QueueDepth < 1 {
		v.Add("queueDepth must be positive")
	}

	if len(c.SignatureFiles) == 0 {
		v.Add("signatureFiles must list at least one file")
	}
	for i, p := range c.SignaturePaths() {
		if err := requireFile(p); err != nil {
			v.Add("signatureFiles[%d] invalid: %v", i, err)
		}
	}

	if c.FlowTableSize < 1 {
		v.Add("flowTableSize must be positive")
	}

	if !knownBackend(c.PatternSearch) {
		v.Add("patternSearch %q is not one of %s", c.PatternSearch, strings.Join(spm.Names(), ", "))
	}

	if c.InspectionRecursionLimit < 1 {
		v.Add("inspectionRecursionLimit must be positive")
	}

	if c.Metrics.Listen != "" {
		if err := validateListen(c.Metrics.Listen); err != nil {
			v.Add("metrics.listen invalid: %v", err)
		}
	}

	switch c.Control.Network {
	case "tcp":
		if err := validateListen(c.Control.Address); err != nil {
			v.Add("control.address invalid: %v", err)
		}
	case "unix":
		if strings.TrimSpace(c.Control.Address) == "" {
			v.Add("control.address is required")
		}
	default:
		v.Add("control.network must be tcp or unix")
	}

	if c.ShutdownTimeout < 0 {
		v.Add("shutdownTimeout must not be negative")
	}

	if len(v.Problems) > 0 {
		return v
	}
	return nil
}

func knownBackend(name string) bool {
	for _, n := range spm.Names() {
		if n == name {
			return true
		}
	}
	return false
}

func validateListen(addr string) error {
	if strings.TrimSpace(addr) == "" {
		return errors.New("address is required")
	}
	if _, err := net.ResolveTCPAddr("tcp", addr); err != nil {
		return err
	}
	return nil
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return errors.New("is a directory")
	}
	return nil
}
