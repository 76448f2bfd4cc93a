// Package config translates CLI and environment values into the typed
// configurations the engine packages expect.
package config

import (
	"strings"

	"dolce-almacen/internal/importer"
	"dolce-almacen/internal/models"
	"dolce-almacen/internal/reporter"
	apperrors "dolce-almacen/pkg/errors"
	"dolce-almacen/pkg/logger"
)

// ImportOptions carries the raw CLI values for an import run.
type ImportOptions struct {
	SourceDir          string
	Sources            []string
	FuzzyThreshold     int
	AliasThreshold     int
	CreateAliases      bool
	CreateMissingItems bool
	DryRun             bool
	MaxPending         int
}

// BuildImportRequest converts CLI options into a validated import request.
func BuildImportRequest(opts ImportOptions) (importer.Request, error) {
	sources, err := ParseSources(opts.Sources)
	if err != nil {
		return importer.Request{}, err
	}

	req := importer.DefaultRequest(opts.SourceDir)
	if len(sources) > 0 {
		req.Sources = sources
	}
	req.FuzzyThreshold = opts.FuzzyThreshold
	req.AliasThreshold = opts.AliasThreshold
	req.CreateAliases = opts.CreateAliases
	req.CreateMissingItems = opts.CreateMissingItems
	req.DryRun = opts.DryRun
	if opts.MaxPending > 0 {
		req.MaxPending = opts.MaxPending
	}

	if err := req.Validate(); err != nil {
		return importer.Request{}, err
	}
	return req, nil
}

// ParseSources converts CLI source names into their typed form. An empty
// slice means all four documents.
func ParseSources(names []string) ([]models.Source, error) {
	if len(names) == 0 {
		return nil, nil
	}

	sources := make([]models.Source, 0, len(names))
	for _, name := range names {
		source := models.Source(strings.ToLower(strings.TrimSpace(name)))
		if !source.IsValid() {
			return nil, apperrors.ConfigError(apperrors.CodeInvalidConfig, "sources", name, nil).
				WithSuggestion("valid sources: stock, inbound, outbound, shrinkage")
		}
		sources = append(sources, source)
	}
	return sources, nil
}

// ParseOutputFormat validates a report format name.
func ParseOutputFormat(format string) (reporter.OutputFormat, error) {
	f := reporter.OutputFormat(strings.ToLower(strings.TrimSpace(format)))
	if !f.IsValid() {
		return "", apperrors.ConfigError(apperrors.CodeInvalidConfig, "output-format", format, nil).
			WithSuggestion("valid formats: console, json, csv")
	}
	return f, nil
}

// BuildLoggerConfig creates the logger configuration for the CLI.
func BuildLoggerConfig(verbose bool, format string) *logger.Config {
	cfg := logger.DefaultConfig()
	if verbose {
		cfg.Level = logger.DebugLevel
	}
	if strings.EqualFold(format, string(logger.JSONFormat)) {
		cfg.Format = logger.JSONFormat
	}
	return cfg
}
