package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/xcbundle/internal/config"
	"github.com/mrz1836/xcbundle/internal/logging"
	"github.com/mrz1836/xcbundle/internal/tui"
)

// configShowFlags holds flags for the config show command.
type configShowFlags struct {
	packagePath string
}

// configSources lists the config files that were considered.
type configSources struct {
	Global  string `json:"global" yaml:"global"`
	Project string `json:"project" yaml:"project"`
}

// shownConfig is the JSON form of config show.
type shownConfig struct {
	Sources configSources  `json:"sources"`
	Config  *config.Config `json:"config"`
}

func newConfigCmd(gf *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect xcbundle configuration",
	}
	cmd.AddCommand(newConfigShowCmd(gf))
	return cmd
}

func newConfigShowCmd(gf *GlobalFlags) *cobra.Command {
	f := &configShowFlags{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Display the effective configuration after layering, lowest precedence first:
  - built-in defaults
  - global:  $XDG_CONFIG_HOME/xcbundle/config.yaml
  - project: <package>/.xcbundle.yaml
  - environment: XCBUNDLE_* variables (e.g. XCBUNDLE_OUTPUT_ZIP=true)

Build settings that look like secrets are masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, gf, f)
		},
	}
	cmd.Flags().StringVarP(&f.packagePath, "package-path", "p", "", "Swift package directory (default \".\")")
	return cmd
}

func runConfigShow(cmd *cobra.Command, gf *GlobalFlags, f *configShowFlags) error {
	cfg, err := config.Load(cmd.Context(), f.packagePath)
	if err != nil {
		return err
	}
	cfg.Build.Settings = logging.SafeArgv(cfg.Build.Settings)

	sources := configSources{
		Global:  config.GlobalConfigPath(),
		Project: config.ProjectConfigPath(cfg.Package.Path),
	}

	if gf.Output == OutputJSON {
		return tui.NewJSONOutput(cmd.OutOrStdout()).JSON(shownConfig{Sources: sources, Config: cfg})
	}
	return writeConfigYAML(cmd.OutOrStdout(), sources, cfg)
}

func writeConfigYAML(w io.Writer, sources configSources, cfg *config.Config) error {
	if _, err := fmt.Fprintf(w, "# global:  %s\n# project: %s\n", sources.Global, sources.Project); err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}
