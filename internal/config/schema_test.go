package config

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValue(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		key     string
		value   string
		want    any
		wantErr string
	}{
		"bool":        {key: "git.push", value: "true", want: true},
		"bad bool":    {key: "git.push", value: "yes please", wantErr: "invalid boolean"},
		"int":         {key: "release.retries", value: "5", want: 5},
		"bad int":     {key: "release.retries", value: "five", wantErr: "invalid integer"},
		"enum":        {key: "convention", value: "emoji", want: "emoji"},
		"bad enum":    {key: "monorepo.mode", value: "glob", wantErr: "valid options: scope, path, both"},
		"string":      {key: "tag_prefix", value: "v", want: "v"},
		"list":        {key: "keywords.minor", value: "feat, feature", want: []string{"feat", "feature"}},
		"empty list":  {key: "exclude.scopes", value: "", want: []string{}},
		"unknown key": {key: "sections", value: "x", wantErr: "unknown configuration key: sections"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := ValidateValue(tt.key, tt.value)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAssignment(t *testing.T) {
	t.Parallel()

	key, value, err := ParseAssignment("release.draft = true")
	require.NoError(t, err)
	assert.Equal(t, "release.draft", key)
	assert.Equal(t, true, value)

	_, _, err = ParseAssignment("release.draft")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected key=value")
}

func TestKnownKeys(t *testing.T) {
	t.Parallel()

	keys := SortedKeys()
	assert.True(t, sort.StringsAreSorted(keys))
	assert.Len(t, keys, len(KnownKeys))

	for _, k := range keys {
		schema, err := GetKeySchema(k)
		require.NoError(t, err)
		assert.Equal(t, k, schema.Path)
		assert.NotEmpty(t, schema.Description, k)
		if schema.Type == TypeEnum {
			assert.NotEmpty(t, schema.AllowedValues, k)
		}
	}
}

func TestKnownKeysMatchDefaults(t *testing.T) {
	t.Parallel()

	for section, value := range GetDefaults() {
		nested, ok := value.(map[string]interface{})
		if !ok {
			_, err := GetKeySchema(section)
			assert.NoError(t, err, section)
			continue
		}
		for key := range nested {
			_, err := GetKeySchema(section + "." + key)
			assert.NoError(t, err, section+"."+key)
		}
	}
}
