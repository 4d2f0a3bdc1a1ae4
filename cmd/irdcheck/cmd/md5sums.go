package cmd

import (
	"os"

	"github.com/s0up4200/irdcheck/internal/ird"
	"github.com/s0up4200/irdcheck/internal/report"
	"github.com/s0up4200/irdcheck/internal/settings"
)

// runMD5Sums implements the -m/--md5sums action: an md5sum-compatible
// listing, mirroring irdcheck.py's `print_md5sum`.
func runMD5Sums(cfg settings.Settings, container *ird.Container) error {
	root, err := buildExpectedTree(cfg, container)
	if err != nil {
		lastExitCode = 1
		return err
	}
	report.PrintMD5Sums(os.Stdout, root)
	lastExitCode = 0
	return nil
}
