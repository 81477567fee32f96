package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/xcbundle/internal/config"
	"github.com/mrz1836/xcbundle/internal/manifest"
	"github.com/mrz1836/xcbundle/internal/tui"
)

// productListing is the JSON form of the products command.
type productListing struct {
	Package   string   `json:"package"`
	Products  []string `json:"products"`
	Targets   []string `json:"targets"`
	Platforms []string `json:"platforms"`
}

func newProductsCmd(gf *GlobalFlags, env environment) *cobra.Command {
	f := &packageFlags{}

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products and targets that can be built",
		Long: `List the library products of the root package and the additional targets
(from the package and its dependencies) that xcbundle build accepts by name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProducts(cmd, gf, f, env)
		},
	}
	f.add(cmd)
	return cmd
}

func runProducts(cmd *cobra.Command, gf *GlobalFlags, f *packageFlags, env environment) error {
	ctx := cmd.Context()

	overrides := &config.Config{Package: config.PackageConfig{BuildPath: f.buildPath}}
	cfg, err := config.LoadWithOverrides(ctx, f.packagePath, overrides)
	if err != nil {
		return err
	}

	runner := env.newRunner(cfg.Toolchain.Xcrun, cmd.ErrOrStderr())
	pkg, err := manifest.NewLoader(runner, cfg.Toolchain).Load(ctx, cfg.PackageRoot(), cfg.BuildPath())
	if err != nil {
		return err
	}

	listing := productListing{
		Package:   pkg.Name(),
		Products:  nonNil(pkg.LibraryProducts()),
		Targets:   nonNil(pkg.AdditionalTargets()),
		Platforms: nonNil(pkg.Manifest.DeclaredPlatforms()),
	}

	out := tui.NewOutput(cmd.OutOrStdout(), gf.Output)
	if gf.Output == OutputJSON {
		return out.JSON(listing)
	}

	rows := make([][]string, 0, len(listing.Products)+len(listing.Targets))
	for _, p := range listing.Products {
		rows = append(rows, []string{"product", p})
	}
	for _, t := range listing.Targets {
		rows = append(rows, []string{"target", t})
	}
	out.Info("Package " + listing.Package)
	out.Table([]string{"KIND", "NAME"}, rows)
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
