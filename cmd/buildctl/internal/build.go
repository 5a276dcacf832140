package internal

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ffts/buildctl/internal/driver"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Configure and build the project",
	Long: `Build configures the project if needed and compiles it. With --clean the
build and install directories are removed first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, func(ctx context.Context, d *driver.Driver) error {
			if flagClean {
				if err := d.Clean(); err != nil {
					return err
				}
			}
			if err := d.Configure(ctx); err != nil {
				return err
			}
			return d.Build(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
