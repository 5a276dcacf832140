package internal

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ffts/buildctl/internal/driver"
)

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Run the full pipeline",
	Long: `All runs configure, build, test and install in order, stopping at the
first failure. With --clean the build artifacts are removed first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, func(ctx context.Context, d *driver.Driver) error {
			return d.All(ctx, flagClean)
		})
	},
}

func init() {
	rootCmd.AddCommand(allCmd)
}
