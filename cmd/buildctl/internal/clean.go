package internal

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ffts/buildctl/internal/driver"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove build artifacts",
	Long: `Clean removes the build and install directories. Both removals are
attempted even if one fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, func(ctx context.Context, d *driver.Driver) error {
			return d.Clean()
		})
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
