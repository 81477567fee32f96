package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mrz1836/xcbundle/internal/config"
	"github.com/mrz1836/xcbundle/internal/errors"
	"github.com/mrz1836/xcbundle/internal/tui"
)

func newDoctorCmd(gf *GlobalFlags, env environment) *cobra.Command {
	var packagePath string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the build toolchain is installed",
		Long: `Locate every configured toolchain executable (xcrun, xcodebuild, dwarfdump,
ditto, swift) and report its path and version. Exits non-zero when any tool
is missing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, gf, env, packagePath)
		},
	}
	cmd.Flags().StringVarP(&packagePath, "package-path", "p", "", "Swift package directory whose config to use (default \".\")")
	return cmd
}

func runDoctor(cmd *cobra.Command, gf *GlobalFlags, env environment, packagePath string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx, packagePath)
	if err != nil {
		return err
	}

	runner := env.newRunner(cfg.Toolchain.Xcrun, cmd.ErrOrStderr())
	result, err := env.newDetector(runner, cfg.Toolchain).Detect(ctx)
	if err != nil {
		return err
	}

	out := tui.NewOutput(cmd.OutOrStdout(), gf.Output)
	if gf.Output == OutputJSON {
		if err := out.JSON(result); err != nil {
			return err
		}
	} else {
		title := cases.Title(language.English)
		rows := make([][]string, 0, len(result.Tools))
		for _, t := range result.Tools {
			rows = append(rows, []string{t.Name, title.String(t.Status.String()), t.Version, t.Path})
		}
		out.Table([]string{"TOOL", "STATUS", "VERSION", "PATH"}, rows)
	}

	if missing := result.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", errors.ErrToolMissing, missing[0].Command)
	}
	if gf.Output != OutputJSON {
		out.Success("toolchain ready")
	}
	return nil
}
