// Package report renders the three views irdcheck's CLI actions produce:
// the pretty file table (-p), the md5sum-compatible listing (-m), and the
// check-summary counters block (-c). Column widths are static, following
// the teacher's report.go convention of fmt.Fprintf-with-fixed-width rather
// than the original Python's dynamic column sizing.
package report

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/s0up4200/irdcheck/internal/tree"
	"github.com/s0up4200/irdcheck/internal/util"
	"github.com/s0up4200/irdcheck/internal/verify"
)

// PrintHeader writes the `<game_id> - <game_name>` identity line, mirroring
// irdcheck.py's IrdFile.print_header.
func PrintHeader(w io.Writer, gameID, gameName string) {
	fmt.Fprintf(w, "%s - %s\n", gameID, gameName)
}

// PrintFiles renders root as a name | size | sector | md5 table, depth
// first, directories included. Mirrors irdcheck.py's IrdFile.print_files.
func PrintFiles(w io.Writer, root *tree.FileNode) {
	fmt.Fprintf(w, "%-64s%-16s%-12s%s\n", "Name", "Size", "Sector", "MD5")
	fmt.Fprintf(w, "%-64s%-16s%-12s%s\n", "----", "----", "------", "---")
	printFilesRec(w, root, "")
}

func printFilesRec(w io.Writer, dir *tree.FileNode, prefix string) {
	for _, child := range dir.Children {
		name := prefix + child.Name
		if child.IsDir() {
			fmt.Fprintf(w, "%-64s%-16s%-12s%s\n", name+"/", "", "", "")
			printFilesRec(w, child, name+"/")
			continue
		}
		md5 := ""
		if child.MD5 != nil {
			md5 = hex.EncodeToString(child.MD5[:])
		}
		fmt.Fprintf(w, "%-64s%-16s%-12d%s\n", name, util.FormatNumber(int64(child.Size)), child.Sector, md5)
	}
}

// PrintMD5Sums renders every leaf in root as an `<hex>  <path>` line,
// md5sum-compatible, mirroring irdcheck.py's IrdFile.print_md5sum. Paths are
// threaded through nested directories the same way printFilesRec threads
// prefix for PrintFiles, so a nested file prints its full relative path
// (e.g. "PS3_GAME/USRDIR/EBOOT.BIN") rather than just its base name.
func PrintMD5Sums(w io.Writer, root *tree.FileNode) {
	printMD5SumsRec(w, root, "")
}

func printMD5SumsRec(w io.Writer, dir *tree.FileNode, prefix string) {
	for _, child := range dir.Children {
		name := prefix + child.Name
		if child.IsDir() {
			printMD5SumsRec(w, child, name+"/")
			continue
		}
		md5 := ""
		if child.MD5 != nil {
			md5 = hex.EncodeToString(child.MD5[:])
		}
		fmt.Fprintf(w, "%s  %s\n", md5, name)
	}
}

// PrintCheckSummary writes the counters block and the trailing
// GAME DATA VALID/INVALID verdict line, mirroring irdcheck.py's
// GameDir.check trailing prints. It returns whether the verdict was valid.
func PrintCheckSummary(w io.Writer, c verify.Counters) bool {
	fmt.Fprintf(w, "Dirs on disk:             %s\n", util.FormatNumber(int64(c.DirsOnDisk)))
	fmt.Fprintf(w, "Dirs in ird:              %s\n", util.FormatNumber(int64(c.DirsInIrd)))
	fmt.Fprintf(w, "Dirs ok:                  %s\n", util.FormatNumber(int64(c.DirsOK)))
	fmt.Fprintf(w, "Disk dirs not in IRD:     %s\n", util.FormatNumber(int64(c.DirsDiskOnly)))
	fmt.Fprintf(w, "IRD dirs not on disk:     %s\n", util.FormatNumber(int64(c.DirsIrdOnly)))
	fmt.Fprintf(w, "File/Dir type mismatch:   %s\n", util.FormatNumber(int64(c.DirFileMismatch)))

	fmt.Fprintf(w, "Files on disk:            %s\n", util.FormatNumber(int64(c.FilesOnDisk)))
	fmt.Fprintf(w, "Files in ird:             %s\n", util.FormatNumber(int64(c.FilesInIrd)))
	fmt.Fprintf(w, "Files ok:                 %s\n", util.FormatNumber(int64(c.FilesOK)))
	fmt.Fprintf(w, "Disk files not in IRD:    %s\n", util.FormatNumber(int64(c.FilesDiskOnly)))
	fmt.Fprintf(w, "IRD files not on disk:    %s\n", util.FormatNumber(int64(c.FilesIrdOnly)))
	fmt.Fprintf(w, "Files with size mismatch: %s\n", util.FormatNumber(int64(c.FilesSizeMismatch)))
	fmt.Fprintf(w, "Files with hash mismatch: %s\n", util.FormatNumber(int64(c.FilesHashMismatch)))

	valid := c.Valid()
	if valid {
		fmt.Fprintln(w, "GAME DATA VALID")
	} else {
		fmt.Fprintln(w, "GAME DATA INVALID")
	}
	return valid
}
