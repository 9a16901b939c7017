package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ariel-frischer/relver/internal/semver"
)

// ValidationError represents a configuration validation error with context
type ValidationError struct {
	FilePath string
	Line     int
	Column   int
	Message  string
	Field    string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line, e.Column, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: field '%s': %s", e.FilePath, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// ValidateYAMLSyntax reads filePath and checks it with ValidateYAMLSyntaxFromBytes.
// A missing file is valid.
func ValidateYAMLSyntax(filePath string) error {
	data, err := os.ReadFile(filePath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case errors.Is(err, fs.ErrPermission):
		return &ValidationError{FilePath: filePath, Message: "permission denied"}
	case err != nil:
		return &ValidationError{FilePath: filePath, Message: err.Error()}
	}
	return ValidateYAMLSyntaxFromBytes(data, filePath)
}

// ValidateYAMLSyntaxFromBytes parses data as YAML. Blank input is valid.
// Parse failures carry the line and column yaml.v3 reports.
func ValidateYAMLSyntaxFromBytes(data []byte, filePath string) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		line, column, msg := yamlPosition(err.Error())
		return &ValidationError{FilePath: filePath, Line: line, Column: column, Message: msg}
	}
	return nil
}

// ValidateConfigValues validates configuration values against expected types and constraints.
// Returns nil if valid, or a ValidationError with field information if invalid.
func ValidateConfigValues(cfg *Configuration, filePath string) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			for _, fieldErr := range validationErrors {
				return &ValidationError{
					FilePath: filePath,
					Field:    fieldPath(fieldErr.Namespace()),
					Message:  formatValidationError(fieldErr),
				}
			}
		}
		return &ValidationError{
			FilePath: filePath,
			Message:  err.Error(),
		}
	}

	if _, err := cfg.InitialVersionValue(); err != nil {
		return &ValidationError{
			FilePath: filePath,
			Field:    "initial_version",
			Message:  "must be a semantic version (e.g. 0.1.0)",
		}
	}

	if _, err := cfg.ConventionConfig(); err != nil {
		return &ValidationError{
			FilePath: filePath,
			Field:    "sections",
			Message:  err.Error(),
		}
	}

	for i, p := range cfg.Monorepo.Packages {
		if p.Version == "" {
			continue
		}
		if _, err := semver.Parse(p.Version); err != nil {
			return &ValidationError{
				FilePath: filePath,
				Field:    fmt.Sprintf("monorepo.packages[%d].version", i),
				Message:  "must be a semantic version",
			}
		}
	}

	return nil
}

// yamlPosition splits a yaml.v3 message such as
// "yaml: line 5: column 3: mapping values are not allowed" into its position
// and the bare message. Column defaults to 1 when only a line is given.
func yamlPosition(errMsg string) (line, column int, msg string) {
	msg = strings.TrimPrefix(errMsg, "yaml: ")
	if m := yamlLineRe.FindStringSubmatch(msg); m != nil {
		line, _ = strconv.Atoi(m[1])
		column = 1
		if m[2] != "" {
			column, _ = strconv.Atoi(m[2])
		}
		msg = msg[len(m[0]):]
	}
	return line, column, msg
}

var yamlLineRe = regexp.MustCompile(`^line (\d+): (?:column (\d+): )?`)

var tagMessages = map[string]string{
	"required": "is required",
	"min":      "must be at least %s",
	"max":      "must be at most %s",
}

// formatValidationError renders a validator failure as a short phrase.
func formatValidationError(fieldErr validator.FieldError) string {
	if fieldErr.Tag() == "oneof" {
		return "must be one of: " + strings.ReplaceAll(fieldErr.Param(), " ", ", ")
	}
	if format, ok := tagMessages[fieldErr.Tag()]; ok {
		if strings.Contains(format, "%s") {
			return fmt.Sprintf(format, fieldErr.Param())
		}
		return format
	}
	return "failed validation: " + fieldErr.Tag()
}

// fieldPath turns a validator namespace ("Configuration.Release.Provider")
// into a config key ("release.provider").
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = toSnakeCase(p)
	}
	return strings.Join(parts, ".")
}

// toSnakeCase converts a CamelCase field name to snake_case.
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}
