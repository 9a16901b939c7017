package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/relver/internal/cli/shared"
	cfgpkg "github.com/ariel-frischer/relver/internal/config"
	clierrors "github.com/ariel-frischer/relver/internal/errors"
)

// newTestCommand builds an isolated command carrying the root's global flags.
func newTestCommand(run func(*cobra.Command, []string) error, args ...string) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{Use: "test", RunE: run, SilenceUsage: true, SilenceErrors: true}
	cmd.Flags().String(shared.FlagConfig, "", "")
	cmd.Flags().String(shared.FlagRepo, "", "")
	cmd.Flags().Bool(shared.FlagPlain, true, "")
	cmd.Flags().StringArray(shared.FlagSet, nil, "")
	cmd.Flags().Bool("json", false, "")
	cmd.Flags().Bool("force", false, "")
	cmd.Flags().Bool("user", false, "")

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	return cmd, &buf
}

func TestRunConfigShow(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, cfgpkg.ProjectConfigFile), []byte("convention: emoji\n"), 0o644))

	tests := map[string]struct {
		args     []string
		contains []string
		excludes []string
	}{
		"yaml with sources": {
			args:     []string{"--repo", dir},
			contains: []string{"# Configuration Sources", "project", "(loaded)", "convention: emoji"},
		},
		"json": {
			args:     []string{"--repo", dir, "--json"},
			contains: []string{`"convention":"emoji"`},
			excludes: []string{"Configuration Sources"},
		},
		"override": {
			args:     []string{"--repo", dir, "--set", "tag_prefix=rel-"},
			contains: []string{"tag_prefix: rel-"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cmd, buf := newTestCommand(runConfigShow, tt.args...)
			require.NoError(t, cmd.Execute())
			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, buf.String(), unwanted)
			}
		})
	}
}

func TestRunConfigShow_InvalidConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, cfgpkg.ProjectConfigFile), []byte("convention: nope\n"), 0o644))

	cmd, _ := newTestCommand(runConfigShow, "--repo", dir)
	err := cmd.Execute()
	require.Error(t, err)
	cliErr := clierrors.AsCLIError(err)
	require.NotNil(t, cliErr)
	assert.Equal(t, clierrors.Configuration, cliErr.Category)
}

func TestRunConfigInit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, cfgpkg.ProjectConfigFile)

	cmd, buf := newTestCommand(runConfigInit, "--repo", dir)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Created "+target)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, cfgpkg.GetDefaultConfigTemplate(), string(data))

	// The template must load cleanly.
	_, err = cfgpkg.LoadWithOptions(cfgpkg.LoadOptions{ProjectDir: dir, SkipUserConfig: true})
	require.NoError(t, err)

	cmd, _ = newTestCommand(runConfigInit, "--repo", dir)
	err = cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, os.WriteFile(target, []byte("# old\n"), 0o644))
	cmd, _ = newTestCommand(runConfigInit, "--repo", dir, "--force")
	require.NoError(t, cmd.Execute())
	data, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, cfgpkg.GetDefaultConfigTemplate(), string(data))
}

func TestRunConfigInit_PathArgument(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "new", "project")
	cmd, _ := newTestCommand(runConfigInit, dir)
	require.NoError(t, cmd.Execute())
	assert.FileExists(t, filepath.Join(dir, cfgpkg.ProjectConfigFile))
}

func TestPrintKeys(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, printKeys(&buf))

	out := buf.String()
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "release.provider")
	assert.Contains(t, out, "none|github|gitea")
	assert.Contains(t, out, "changelog.per_package")
}

func TestRegister(t *testing.T) {
	// Cannot run in parallel - Register attaches the shared command tree.
	root := &cobra.Command{Use: "relver"}
	root.AddGroup(&cobra.Group{ID: shared.GroupConfiguration, Title: "Configuration"})
	require.NotPanics(t, func() { Register(root) })

	names := make(map[string]bool)
	for _, c := range configCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["keys"])
	assert.True(t, names["show"])
	assert.True(t, names["init"])
	assert.Equal(t, shared.GroupConfiguration, configCmd.GroupID)
}

func TestResolvePath(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := map[string]struct {
		input string
		want  string
	}{
		"empty":     {input: "", want: cwd},
		"dot":       {input: ".", want: cwd},
		"tilde":     {input: "~", want: home},
		"tilde sub": {input: "~/projects/app", want: filepath.Join(home, "projects", "app")},
		"absolute":  {input: "/tmp/x", want: "/tmp/x"},
		"relative":  {input: "sub/dir", want: filepath.Join(cwd, "sub", "dir")},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := ResolvePath(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnsureDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDirectory(dir))
	assert.DirExists(t, dir)
	require.NoError(t, EnsureDirectory(dir))

	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	assert.Error(t, EnsureDirectory(file))
}
