// Package cmd holds irdcheck's cobra command tree: a single root command
// with three mutually exclusive action flags, following
// drondeseries-altmount's package-level rootCmd-plus-init() layout, folded
// down to one command since all three actions share the same
// ird_file/game_dir positional contract (spec.md §6).
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/s0up4200/irdcheck/internal/hashjoin"
	"github.com/s0up4200/irdcheck/internal/ird"
	"github.com/s0up4200/irdcheck/internal/settings"
	"github.com/s0up4200/irdcheck/internal/tree"
	"github.com/s0up4200/irdcheck/internal/udf"
)

var (
	flagPrint   bool
	flagMD5Sums bool
	flagCheck   bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:           "irdcheck <file.ird> [game_dir]",
	Short:         "Read IRD files and test game directories for conformance",
	Args:          cobra.RangeArgs(1, 2),
	RunE:          runRoot,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.Flags().BoolVarP(&flagPrint, "print", "p", false, "print IRD content in detailed human-readable form (default if only the IRD is given)")
	rootCmd.Flags().BoolVarP(&flagMD5Sums, "md5sums", "m", false, "print IRD content in a format compatible with md5sum")
	rootCmd.Flags().BoolVarP(&flagCheck, "check", "c", false, "verify game_dir against the IRD (default if game_dir is given)")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "print progress diagnostics")
	rootCmd.MarkFlagsMutuallyExclusive("print", "md5sums", "check")
}

// Execute runs the command tree and returns the process exit code, per
// spec.md §6: 0 on success/valid, 2 on usage error, 1 on invalid data or a
// parse failure.
func Execute() int {
	ranRunE = false
	if err := rootCmd.Execute(); err != nil {
		if !ranRunE {
			// cobra never reached runRoot: a flag-parse or argument-count
			// failure, which is a usage error regardless of message.
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintln(os.Stderr, rootCmd.UsageString())
			return 2
		}
		if _, ok := err.(usageError); ok {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return lastExitCode
}

// usageError marks an error as a CLI usage mistake (flag/argument misuse)
// raised from inside runRoot itself (e.g. `check` without game_dir), distinct
// from a decode/verification failure, so Execute can map it to exit code 2.
type usageError struct{ error }

func newUsageError(msg string) error {
	return usageError{fmt.Errorf("%s", msg)}
}

// ranRunE records whether cobra got as far as invoking runRoot, so Execute
// can tell a cobra-level usage failure (bad flags/arg count) apart from a
// failure raised by runRoot itself.
var ranRunE bool

// lastExitCode carries the exit code decided inside runRoot (e.g. an
// invalid verification result) back out to Execute, since cobra's RunE
// only reports success/failure, not a tri-state exit code.
var lastExitCode int

func resolveAction(irdPath, gameDir string) settings.Settings {
	s := settings.Default(irdPath, gameDir)
	switch {
	case flagPrint:
		s.Action = settings.ActionPrint
	case flagMD5Sums:
		s.Action = settings.ActionMD5Sums
	case flagCheck:
		s.Action = settings.ActionCheck
	}
	s.Verbose = flagVerbose
	return s
}

func runRoot(cmd *cobra.Command, args []string) error {
	ranRunE = true

	irdPath := args[0]
	gameDir := ""
	if len(args) > 1 {
		gameDir = args[1]
	}

	cfg := resolveAction(irdPath, gameDir)
	if cfg.Action == settings.ActionCheck && cfg.GameDir == "" {
		return newUsageError("game_dir is required for checking")
	}

	f, err := os.Open(cfg.IrdPath)
	if err != nil {
		lastExitCode = 1
		return err
	}
	defer f.Close()

	container, err := ird.Decode(f)
	if err != nil {
		lastExitCode = 1
		return err
	}

	switch cfg.Action {
	case settings.ActionPrint:
		return runPrint(cfg, container)
	case settings.ActionMD5Sums:
		return runMD5Sums(cfg, container)
	case settings.ActionCheck:
		return runCheck(cfg, container)
	}
	return nil
}

// buildExpectedTree decodes container's embedded UDF header blob, walks its
// directory tree, and joins it against the IRD's per-sector MD5 table:
// components D/E followed by F, shared by every action.
func buildExpectedTree(cfg settings.Settings, container *ird.Container) (*tree.FileNode, error) {
	if cfg.Verbose {
		udf.Warnf = func(format string, args ...any) { fmt.Fprintf(os.Stderr, format+"\n", args...) }
		hashjoin.Warnf = udf.Warnf
		defer func() { udf.Warnf = nil; hashjoin.Warnf = nil }()
	}

	vol, err := udf.Decode(container.HeaderBytes)
	if err != nil {
		return nil, fmt.Errorf("decoding UDF header: %w", err)
	}
	root, err := vol.BuildTree()
	if err != nil {
		return nil, fmt.Errorf("walking UDF directory tree: %w", err)
	}
	hashjoin.Join(root, container)
	return root, nil
}
