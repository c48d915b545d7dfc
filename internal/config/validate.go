package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrNoEntrySymbols indicates no entry symbol was configured
	ErrNoEntrySymbols = errors.New("no entry symbols")

	// ErrEmptyOutputDir indicates a missing output directory
	ErrEmptyOutputDir = errors.New("empty output directory")

	// ErrEmptySourceRoot indicates a missing source root
	ErrEmptySourceRoot = errors.New("empty source root")

	// ErrOutputIsSourceRoot indicates output would overwrite the sources
	ErrOutputIsSourceRoot = errors.New("output directory is the source root")

	// ErrInvalidDebounce indicates a negative watch debounce
	ErrInvalidDebounce = errors.New("invalid watch debounce")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validatePaths(cfg); err != nil {
		errs = append(errs, err)
	}

	if err := validateExtract(&cfg.Extract); err != nil {
		errs = append(errs, err)
	}

	if cfg.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("%w: debounce cannot be negative, got %s", ErrInvalidDebounce, cfg.Watch.Debounce))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validatePaths(cfg *Config) error {
	if strings.TrimSpace(cfg.Paths.SourceRoot) == "" {
		return fmt.Errorf("%w: source_root is required", ErrEmptySourceRoot)
	}

	if cfg.Extract.OutputDir == "" {
		return nil
	}
	if filepath.Clean(cfg.Extract.OutputDir) == filepath.Clean(cfg.Paths.SourceRoot) {
		return fmt.Errorf("%w: %s", ErrOutputIsSourceRoot, cfg.Extract.OutputDir)
	}
	return nil
}

func validateExtract(cfg *ExtractConfig) error {
	var errs []error

	names := 0
	for _, name := range cfg.EntrySymbols {
		if strings.TrimSpace(name) != "" {
			names++
		}
	}
	if names == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one entry symbol required", ErrNoEntrySymbols))
	}

	if strings.TrimSpace(cfg.OutputDir) == "" {
		errs = append(errs, fmt.Errorf("%w: output_dir is required", ErrEmptyOutputDir))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
