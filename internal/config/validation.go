package config

import (
	"fmt"
)

// Validate checks config values for correctness.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	var errs []string

	if c.Build.TimeoutSeconds < 1 {
		errs = append(errs, "build.timeout_seconds must be >= 1")
	}
	if c.Build.GracefulShutdownMs < 1 {
		errs = append(errs, "build.graceful_shutdown_ms must be >= 1")
	}
	if c.Build.MaxOutputSize < 1 {
		errs = append(errs, "build.max_output_size must be >= 1")
	}
	if c.Build.OutputTailLines < 0 {
		errs = append(errs, "build.output_tail_lines must be >= 0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}

// validateDeployment checks the raw options mapping before it is decoded.
// Only presence and basic shape are checked here; the product value itself
// is judged later by the product selector.
func validateDeployment(path string, raw map[string]any) error {
	var problems []string

	if v, ok := raw[keyRegionName]; !ok {
		problems = append(problems, keyRegionName+" is required")
	} else if s, isString := v.(string); !isString || s == "" {
		problems = append(problems, keyRegionName+" must be a non-empty string")
	}

	if v, ok := raw[keyRegionLocation]; !ok {
		problems = append(problems, keyRegionLocation+" is required")
	} else if _, isString := v.(string); !isString {
		problems = append(problems, keyRegionLocation+" must be a string")
	}

	if v, ok := raw[keyIs64Bit]; !ok {
		problems = append(problems, keyIs64Bit+" is required")
	} else if _, isBool := v.(bool); !isBool {
		problems = append(problems, keyIs64Bit+" must be a boolean")
	}

	if v, ok := raw[keyProduct]; !ok {
		problems = append(problems, keyProduct+" is required")
	} else if _, isString := v.(string); !isString {
		problems = append(problems, keyProduct+" must be a string")
	}

	if v, ok := raw[keyAntHome]; ok && v != nil {
		if _, isString := v.(string); !isString {
			problems = append(problems, keyAntHome+" must be a string")
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Path: path, Problems: problems}
	}
	return nil
}
