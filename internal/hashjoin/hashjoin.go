// Package hashjoin joins the expected file tree the UDF walker builds
// against an IRD's per-sector MD5 table, component F of the verifier.
package hashjoin

import (
	"github.com/s0up4200/irdcheck/internal/ird"
	"github.com/s0up4200/irdcheck/internal/tree"
)

// Warnf receives a diagnostic line for every leaf whose sector has no
// matching IRD file-hash record. The zero value discards warnings.
var Warnf func(format string, args ...any)

func warnf(format string, args ...any) {
	if Warnf != nil {
		Warnf(format, args...)
	}
}

// Join assigns an MD5 to every leaf (file) node in root whose sector
// appears in c's file-hash table. A leaf with no matching record is left
// with a nil MD5 and produces one warning, per spec.md §4.F.
func Join(root *tree.FileNode, c *ird.Container) {
	for _, leaf := range root.Leaves() {
		md5, ok := c.Lookup(leaf.Sector)
		if !ok {
			warnf("IrD damaged: sector %d absent from UDF", leaf.Sector)
			continue
		}
		sum := md5
		leaf.MD5 = &sum
	}
}
