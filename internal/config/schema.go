package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ConfigValueType defines the expected type for a configuration value.
type ConfigValueType int

const (
	TypeBool ConfigValueType = iota
	TypeInt
	TypeString
	TypeEnum
	TypeList
)

// String returns the string representation of ConfigValueType.
func (t ConfigValueType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeString:
		return "string"
	case TypeEnum:
		return "enum"
	case TypeList:
		return "list"
	default:
		return "unknown"
	}
}

// ConfigKeySchema defines a known configuration key with its expected type and validation rules.
type ConfigKeySchema struct {
	Path          string          // Dotted key path (e.g., "release.provider")
	Type          ConfigValueType // Expected value type for validation
	AllowedValues []string        // Valid values for enum types (empty for non-enums)
	Description   string          // Human-readable description for help text
}

// KnownKeys is the registry of scalar and list configuration keys that can
// be set from the command line. Map-valued keys (sections, monorepo.scopes,
// monorepo.packages) are file-only.
var KnownKeys = map[string]ConfigKeySchema{
	"convention":            {Type: TypeEnum, AllowedValues: []string{"conventional", "emoji"}, Description: "Commit message convention"},
	"keywords.major":        {Type: TypeList, Description: "Substrings that force a major bump"},
	"keywords.minor":        {Type: TypeList, Description: "Commit types that bump minor"},
	"keywords.patch":        {Type: TypeList, Description: "Commit types that bump patch"},
	"exclude.types":         {Type: TypeList, Description: "Commit types left out of the changelog"},
	"exclude.scopes":        {Type: TypeList, Description: "Commit scopes left out of the changelog"},
	"tag_prefix":            {Type: TypeString, Description: "Prefix of repo-wide release tags"},
	"initial_version":       {Type: TypeString, Description: "Version of the first release"},
	"prerelease":            {Type: TypeString, Description: "Prerelease suffix for tags and headings"},
	"min_bump":              {Type: TypeEnum, AllowedValues: []string{"none", "patch", "minor", "major"}, Description: "Lowest repo-wide bump for a release"},
	"changelog.file":        {Type: TypeString, Description: "Repo-wide changelog path"},
	"changelog.per_package": {Type: TypeBool, Description: "Write a changelog per released package"},
	"changelog.project":     {Type: TypeString, Description: "Project name in new changelog headers"},
	"monorepo.enabled":      {Type: TypeBool, Description: "Release packages individually"},
	"monorepo.mode":         {Type: TypeEnum, AllowedValues: []string{"scope", "path", "both"}, Description: "How commits are routed to packages"},
	"monorepo.unified":      {Type: TypeBool, Description: "Apply one bump to every package"},
	"monorepo.workspaces":   {Type: TypeList, Description: "Package manifest globs"},
	"release.provider":      {Type: TypeEnum, AllowedValues: []string{"none", "github", "gitea"}, Description: "Hosting service for releases"},
	"release.url":           {Type: TypeString, Description: "Gitea URL or GitHub API URL"},
	"release.repository":    {Type: TypeString, Description: "owner/repo on the hosting service"},
	"release.token":         {Type: TypeString, Description: "API token for the hosting service"},
	"release.draft":         {Type: TypeBool, Description: "Create releases as drafts"},
	"release.retries":       {Type: TypeInt, Description: "Attempts per publish request"},
	"release.concurrency":   {Type: TypeInt, Description: "Parallel publish requests"},
	"git.remote":            {Type: TypeString, Description: "Remote to push to"},
	"git.commit":            {Type: TypeBool, Description: "Commit release files before tagging"},
	"git.push":              {Type: TypeBool, Description: "Push the release commit and tags"},
	"log.level":             {Type: TypeEnum, AllowedValues: []string{"debug", "info", "warn", "error"}, Description: "Log level"},
	"log.file":              {Type: TypeString, Description: "Rotating log file path"},
	"log.max_size":          {Type: TypeInt, Description: "Log file size in MB before rotation"},
	"log.max_backups":       {Type: TypeInt, Description: "Rotated log files to keep"},
	"log.max_age":           {Type: TypeInt, Description: "Days to keep rotated log files"},
	"log.compress":          {Type: TypeBool, Description: "Gzip rotated log files"},
}

func init() {
	for path, schema := range KnownKeys {
		schema.Path = path
		KnownKeys[path] = schema
	}
}

// SortedKeys returns the known key paths in alphabetical order.
func SortedKeys() []string {
	keys := make([]string, 0, len(KnownKeys))
	for k := range KnownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ErrUnknownKey is returned when trying to access an unknown configuration key.
type ErrUnknownKey struct {
	Key string
}

func (e ErrUnknownKey) Error() string {
	return "unknown configuration key: " + e.Key
}

// GetKeySchema returns the schema for a known configuration key.
// Returns ErrUnknownKey if the key is not in the registry.
func GetKeySchema(path string) (ConfigKeySchema, error) {
	schema, ok := KnownKeys[path]
	if !ok {
		return ConfigKeySchema{}, ErrUnknownKey{Key: path}
	}
	return schema, nil
}

// ParseAssignment splits a "key=value" override and validates the value
// against the key's schema.
func ParseAssignment(s string) (string, any, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return "", nil, fmt.Errorf("invalid override %q (expected key=value)", s)
	}
	key = strings.TrimSpace(key)
	parsed, err := ValidateValue(key, strings.TrimSpace(value))
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", key, err)
	}
	return key, parsed, nil
}

// ValidateValue validates a value against the schema for a given key and
// returns it converted to the key's type.
func ValidateValue(key, value string) (any, error) {
	schema, err := GetKeySchema(key)
	if err != nil {
		return nil, err
	}

	switch schema.Type {
	case TypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean: %q (expected true or false)", value)
		}
		return b, nil
	case TypeInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid integer: %q", value)
		}
		return n, nil
	case TypeEnum:
		for _, allowed := range schema.AllowedValues {
			if value == allowed {
				return value, nil
			}
		}
		return nil, fmt.Errorf("invalid value: %q (valid options: %s)", value, strings.Join(schema.AllowedValues, ", "))
	case TypeList:
		if value == "" {
			return []string{}, nil
		}
		items := strings.Split(value, ",")
		for i := range items {
			items[i] = strings.TrimSpace(items[i])
		}
		return items, nil
	default:
		return value, nil
	}
}
