package cmd

import (
	"os"

	"github.com/s0up4200/irdcheck/internal/ird"
	"github.com/s0up4200/irdcheck/internal/report"
	"github.com/s0up4200/irdcheck/internal/settings"
)

// runPrint implements the -p/--print action: a header line plus the
// pretty file table, mirroring irdcheck.py's `print_header(); print_files()`
// sequence.
func runPrint(cfg settings.Settings, container *ird.Container) error {
	root, err := buildExpectedTree(cfg, container)
	if err != nil {
		lastExitCode = 1
		return err
	}
	report.PrintHeader(os.Stdout, container.GameID, container.GameName)
	report.PrintFiles(os.Stdout, root)
	lastExitCode = 0
	return nil
}
