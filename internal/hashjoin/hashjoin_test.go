package hashjoin

import (
	"crypto/md5"
	"fmt"
	"testing"

	"github.com/s0up4200/irdcheck/internal/ird"
	"github.com/s0up4200/irdcheck/internal/tree"
)

func TestJoinAssignsMatchingSectors(t *testing.T) {
	sum := md5.Sum([]byte("a"))
	root := &tree.FileNode{
		Children: []*tree.FileNode{
			{Name: "a.bin", Sector: 10},
			{Name: "b.bin", Sector: 20},
		},
	}
	c := &ird.Container{FileHashes: []ird.FileHash{{Sector: 10, MD5: sum}}}

	var warnings []string
	Warnf = func(format string, args ...any) { warnings = append(warnings, fmt.Sprintf(format, args...)) }
	defer func() { Warnf = nil }()

	Join(root, c)

	a := root.Children[0]
	if a.MD5 == nil || *a.MD5 != sum {
		t.Fatalf("a.bin MD5 = %v, want %x", a.MD5, sum)
	}
	b := root.Children[1]
	if b.MD5 != nil {
		t.Fatalf("b.bin MD5 = %v, want nil", b.MD5)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", warnings)
	}
}
