package internal

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ffts/buildctl/internal/driver"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the built project",
	Long:  `Install copies the built artifacts into the install directory.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, func(ctx context.Context, d *driver.Driver) error {
			return d.Install(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
