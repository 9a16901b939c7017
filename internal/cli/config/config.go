package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relver/internal/cli/shared"
	cfgpkg "github.com/ariel-frischer/relver/internal/config"
	clierrors "github.com/ariel-frischer/relver/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and create relver configuration",
	Long: `Inspect and create relver configuration.

Configuration is loaded with the following priority (highest to lowest):
  1. --set key=value flags
  2. Environment variables (RELVER_*, __ between nested keys)
  3. Project config (.relver.yml, or --config)
  4. User config (~/.config/relver/config.yml)
  5. Built-in defaults`,
	Example: `  # Show the effective configuration
  relver config show

  # List every key that --set accepts
  relver config keys

  # Create .relver.yml with documented defaults
  relver config init`,
}

var keysCmd = &cobra.Command{
	Use:         "keys",
	Short:       "List configuration keys",
	Long:        "List the configuration keys that can be set with --set or RELVER_* variables.",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{shared.AnnotationSkipConfig: "true"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return printKeys(cmd.OutOrStdout())
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  "Show the configuration after every source has been merged. The release token is redacted.",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a config file with documented defaults",
	Long: `Create .relver.yml with every option documented.

Without a path the file is created in the repository selected by --repo.
With --user the user-level config file is created instead.
An existing file is left unchanged unless --force is given.`,
	Example: `  relver config init
  relver config init ~/projects/app
  relver config init --user`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{shared.AnnotationSkipConfig: "true"},
	RunE:        runConfigInit,
}

// Register adds the config command tree to root.
func Register(root *cobra.Command) {
	configCmd.GroupID = shared.GroupConfiguration
	root.AddCommand(configCmd)
}

func init() {
	showCmd.Flags().Bool("json", false, "Output in JSON format")
	initCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")
	initCmd.Flags().Bool("user", false, "Create the user-level config file")

	configCmd.AddCommand(keysCmd, showCmd, initCmd)
}

func printKeys(out io.Writer) error {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Key", "Type", "Description"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, key := range cfgpkg.SortedKeys() {
		schema, err := cfgpkg.GetKeySchema(key)
		if err != nil {
			return err
		}
		typ := schema.Type.String()
		if len(schema.AllowedValues) > 0 {
			typ = strings.Join(schema.AllowedValues, "|")
		}
		table.Append([]string{key, typ, schema.Description})
	}
	table.Render()
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	format := "yaml"
	if asJSON {
		format = "json"
	}

	dir, err := shared.RepoDir(cmd)
	if err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString(shared.FlagConfig)
	overrides, _ := cmd.Flags().GetStringArray(shared.FlagSet)
	opts := cfgpkg.LoadOptions{ProjectConfigPath: path, ProjectDir: dir, Overrides: overrides}

	data, err := cfgpkg.Render(opts, format)
	if err != nil {
		return clierrors.Wrap(err, clierrors.Configuration)
	}

	out := cmd.OutOrStdout()
	if !asJSON {
		printSources(out, cfgpkg.Sources(opts), shared.Plain(cmd))
	}
	fmt.Fprintln(out, strings.TrimRight(string(data), "\n"))
	return nil
}

func printSources(out io.Writer, sources []cfgpkg.Source, plain bool) {
	dim := color.New(color.Faint).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	if plain {
		dim, green = fmt.Sprint, fmt.Sprint
	}

	fmt.Fprintln(out, "# Configuration Sources")
	for _, s := range sources {
		state := dim("(not found)")
		if s.Present {
			state = green("(loaded)")
		}
		if s.Name == "env" {
			state = green("(set)")
		}
		fmt.Fprintf(out, "#   %-8s %s %s\n", s.Name, s.Path, state)
	}
	fmt.Fprintln(out)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	user, _ := cmd.Flags().GetBool("user")

	var dir string
	var err error
	if len(args) == 1 {
		dir, err = ResolvePath(args[0])
	} else {
		dir, err = shared.RepoDir(cmd)
	}
	if err != nil {
		return err
	}

	target, err := initTarget(dir, user)
	if err != nil {
		return err
	}
	if _, err := os.Stat(target); err == nil && !force {
		return clierrors.ConfigExists(target)
	}
	if err := EnsureDirectory(filepath.Dir(target)); err != nil {
		return err
	}
	if err := os.WriteFile(target, []byte(cfgpkg.GetDefaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", target)
	return nil
}
