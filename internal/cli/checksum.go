package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/xcbundle/internal/packaging"
	"github.com/mrz1836/xcbundle/internal/tui"
)

type checksumFlags struct {
	write bool
}

// checksumResult is the JSON form of the checksum command.
type checksumResult struct {
	Zip          string `json:"zip"`
	ChecksumPath string `json:"checksum_path"`
	Checksum     string `json:"checksum"`
	Verified     bool   `json:"verified"`
}

func newChecksumCmd(gf *GlobalFlags) *cobra.Command {
	f := &checksumFlags{}

	cmd := &cobra.Command{
		Use:   "checksum <zip>",
		Short: "Verify or write the sha256 checksum of a zipped bundle",
		Long: `Recompute the sha256 of a zipped bundle and compare it with the .sha256
file next to it. With --write, compute the checksum and (re)write the file.

Examples:
  xcbundle checksum Networking-1.2.0.zip
  xcbundle checksum --write Networking-1.2.0.zip`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChecksum(cmd, gf, f, args[0])
		},
	}
	cmd.Flags().BoolVar(&f.write, "write", false, "write the checksum file instead of verifying it")
	return cmd
}

func runChecksum(cmd *cobra.Command, gf *GlobalFlags, f *checksumFlags, zip string) error {
	out := tui.NewOutput(cmd.OutOrStdout(), gf.Output)
	result := checksumResult{Zip: zip, ChecksumPath: packaging.ChecksumPath(zip)}

	if f.write {
		path, sum, err := packaging.Checksum(zip)
		if err != nil {
			return err
		}
		result.ChecksumPath = path
		result.Checksum = sum
	} else {
		sum, err := packaging.Verify(zip)
		if err != nil {
			return err
		}
		result.Checksum = sum
		result.Verified = true
	}

	logger(cmd).Debug().
		Str("zip", zip).
		Str("checksum", result.Checksum).
		Bool("verified", result.Verified).
		Msg("checksum complete")

	if gf.Output == OutputJSON {
		return out.JSON(result)
	}
	if result.Verified {
		out.Success(zip + ": checksum OK")
	} else {
		out.Success("wrote " + result.ChecksumPath)
	}
	out.Info("sha256 " + result.Checksum)
	return nil
}
