package internal

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ffts/buildctl/internal/driver"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run the project test suite",
	Long:  `Test runs the configured test runner against the build directory.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, func(ctx context.Context, d *driver.Driver) error {
			return d.Test(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(testCmd)
}
