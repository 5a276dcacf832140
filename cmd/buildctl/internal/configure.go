package internal

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ffts/buildctl/internal/driver"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Configure the build",
	Long:  `Configure generates the native build system files into the build directory.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, func(ctx context.Context, d *driver.Driver) error {
			return d.Configure(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(configureCmd)
}
