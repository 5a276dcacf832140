package internal

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
)

var (
	flagPreset      string
	flagInteractive bool
	flagShowConfig  bool
	flagClean       bool
	flagVerbose     bool
	flagUse         []string
)

var rootCmd = &cobra.Command{
	Use:   "buildctl [action]",
	Short: "buildctl is the unified build interface for the FFTS library",
	Long: `buildctl discovers the host toolchain, applies named configuration
presets and drives the native build system through its configure, build,
test, install and clean phases.

Examples:
  buildctl configure               # Configure with the current settings
  buildctl build                   # Configure and build the project
  buildctl --preset release all    # Full pipeline with the release preset
  buildctl --interactive           # Interactive configuration wizard
  buildctl --show-config           # Show the resolved configuration`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagPreset, "preset", "", "apply a named preset (debug|release|minimal|android|ios)")
	pf.BoolVarP(&flagInteractive, "interactive", "i", false, "run the interactive configuration wizard")
	pf.BoolVar(&flagShowConfig, "show-config", false, "show the resolved configuration and exit")
	pf.BoolVar(&flagClean, "clean", false, "clean before configuring (build and all actions)")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "echo every spawned command")
	pf.StringArrayVar(&flagUse, "use", nil, "dependency install root to add to the build environment (repeatable)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal(err)
	}
}

// runRoot handles a bare invocation: the informational flags print and exit
// successfully, anything else is a usage error.
func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if done, err := informational(cmd, cfg); done {
		return err
	}
	cmd.Help()
	return errors.New("no action specified")
}
