package internal

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ffts/buildctl/internal/config"
	"github.com/ffts/buildctl/internal/driver"
	"github.com/ffts/buildctl/internal/toolchain"
	"github.com/ffts/buildctl/internal/ui"
	"github.com/ffts/buildctl/internal/wizard"
)

// resolveConfig loads the persisted snapshot (falling back to platform
// defaults with a warning when it is corrupt) and overlays the --preset
// selection.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(config.SnapshotFile)
	if err != nil {
		ui.Warnf(cmd.ErrOrStderr(), "could not load %s, using defaults: %v", config.SnapshotFile, err)
	}

	if flagPreset != "" {
		cfg, err = config.ApplyPreset(cfg, flagPreset)
		if err != nil {
			return cfg, err
		}
		ui.Successf(cmd.OutOrStdout(), "Applied preset: %s", flagPreset)
	}
	return cfg, nil
}

// informational handles --show-config and --interactive, which short-circuit
// any action and exit successfully.
func informational(cmd *cobra.Command, cfg config.Config) (bool, error) {
	out := cmd.OutOrStdout()

	if flagShowConfig {
		printConfig(out, cfg)
		return true, nil
	}

	if flagInteractive {
		next, save, err := wizard.New(cmd.InOrStdin(), out).Run(cfg)
		if err != nil {
			return true, err
		}
		if save {
			if err := config.Save(config.SnapshotFile, next); err != nil {
				ui.Warnf(cmd.ErrOrStderr(), "could not save configuration: %v", err)
			} else {
				ui.Successf(out, "Configuration saved to %s", config.SnapshotFile)
			}
		}
		printConfig(out, next)
		return true, nil
	}

	return false, nil
}

// runAction is the shared wrapper of every build action: resolve the
// configuration, honor informational flags, verify the toolchain, then run.
func runAction(cmd *cobra.Command, action func(ctx context.Context, d *driver.Driver) error) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if done, err := informational(cmd, cfg); done {
		return err
	}

	ctx := cmd.Context()
	if err := toolchain.New(cmd.OutOrStdout()).Check(ctx); err != nil {
		return err
	}

	d, err := driver.New(cfg, driver.Options{
		Verbose: flagVerbose,
		Out:     cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}
	d.Use(flagUse...)

	if err := action(ctx, d); err != nil {
		return err
	}
	ui.Successf(cmd.OutOrStdout(), "Action '%s' completed successfully", cmd.Name())
	return nil
}

func printConfig(w io.Writer, cfg config.Config) {
	ui.Headerf(w, "Current Build Configuration:")
	fmt.Fprintf(w, "  Build system: %s\n", cfg.BuildSystem)
	fmt.Fprintf(w, "  Build type: %s\n", cfg.BuildType)
	fmt.Fprintf(w, "  Build directory: %s\n", cfg.BuildDir)
	fmt.Fprintf(w, "  Install directory: %s\n", cfg.InstallDir)
	fmt.Fprintf(w, "  Parallel jobs: %d\n", cfg.ParallelJobs)
	fmt.Fprintf(w, "  Tests: %s\n", enabled(cfg.Tests))
	fmt.Fprintf(w, "  Static library: %s\n", enabled(cfg.Static))
	fmt.Fprintf(w, "  Shared library: %s\n", enabled(cfg.Shared))
	fmt.Fprintf(w, "  NEON: %s\n", enabled(cfg.NEON))
	fmt.Fprintf(w, "  VFP: %s\n", enabled(cfg.VFP))
	fmt.Fprintf(w, "  SSE: %s\n", enabled(cfg.SSE))
	fmt.Fprintf(w, "  Dynamic code: %s\n", enabled(!cfg.DisableDynamicCode))
	fmt.Fprintf(w, "  PIC: %s\n", enabled(cfg.PIC))
	if cfg.Generator != "" {
		fmt.Fprintf(w, "  Generator: %s\n", cfg.Generator)
	}
	if cfg.ToolchainFile != "" {
		fmt.Fprintf(w, "  Toolchain file: %s\n", cfg.ToolchainFile)
	}
}

func enabled(on bool) string {
	if on {
		return "Enabled"
	}
	return "Disabled"
}
