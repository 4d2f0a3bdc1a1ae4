package cmd

import (
	"fmt"
	"os"

	"github.com/s0up4200/irdcheck/internal/fs"
	"github.com/s0up4200/irdcheck/internal/ird"
	"github.com/s0up4200/irdcheck/internal/report"
	"github.com/s0up4200/irdcheck/internal/settings"
	"github.com/s0up4200/irdcheck/internal/verify"
)

// runCheck implements the -c/--check action: verify cfg.GameDir against
// the IRD's expected tree, mirroring irdcheck.py's
// `print_header(); GameDir(game_dir).check(ird)` sequence.
func runCheck(cfg settings.Settings, container *ird.Container) error {
	root, err := buildExpectedTree(cfg, container)
	if err != nil {
		lastExitCode = 1
		return err
	}
	report.PrintHeader(os.Stdout, container.GameID, container.GameName)

	// Per-entry mismatch diagnostics are always printed during a check,
	// matching irdcheck.py's unconditional prints in GameDir.check; -v only
	// gates the UDF-decode/hash-join progress diagnostics in
	// buildExpectedTree.
	verify.Warnf = func(format string, args ...any) { fmt.Println(fmt.Sprintf(format, args...)) }
	defer func() { verify.Warnf = nil }()

	counters, err := verify.Run(fs.NewDiskFileSystem(), cfg.GameDir, root)
	if err != nil {
		lastExitCode = 1
		return err
	}

	valid := report.PrintCheckSummary(os.Stdout, counters)
	if valid {
		lastExitCode = 0
	} else {
		lastExitCode = 1
	}
	return nil
}
