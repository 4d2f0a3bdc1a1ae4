package report

import (
	"bytes"
	"crypto/md5"
	"strings"
	"testing"

	"github.com/s0up4200/irdcheck/internal/tree"
	"github.com/s0up4200/irdcheck/internal/verify"
)

func TestPrintHeader(t *testing.T) {
	var buf bytes.Buffer
	PrintHeader(&buf, "BLES00001", "Some Game")
	if got, want := buf.String(), "BLES00001 - Some Game\n"; got != want {
		t.Fatalf("PrintHeader = %q, want %q", got, want)
	}
}

func TestPrintFiles(t *testing.T) {
	sum := md5.Sum([]byte("x"))
	root := &tree.FileNode{Children: []*tree.FileNode{
		{Name: "EBOOT.BIN", Sector: 1000, Size: 16, MD5: &sum},
		{Name: "SUB", Children: []*tree.FileNode{
			{Name: "NESTED.BIN", Sector: 2000, Size: 4},
		}},
	}}

	var buf bytes.Buffer
	PrintFiles(&buf, root)
	out := buf.String()

	if !strings.Contains(out, "EBOOT.BIN") || !strings.Contains(out, "1000") {
		t.Fatalf("PrintFiles missing EBOOT.BIN row: %s", out)
	}
	if !strings.Contains(out, "SUB/") || !strings.Contains(out, "NESTED.BIN") {
		t.Fatalf("PrintFiles missing nested SUB/NESTED.BIN: %s", out)
	}
}

func TestPrintMD5Sums(t *testing.T) {
	sum := md5.Sum([]byte("x"))
	root := &tree.FileNode{Children: []*tree.FileNode{
		{Name: "EBOOT.BIN", Sector: 1000, Size: 16, MD5: &sum},
	}}

	var buf bytes.Buffer
	PrintMD5Sums(&buf, root)

	wantPrefix := ""
	for _, b := range sum {
		wantPrefix += hexByte(b)
	}
	if !strings.HasPrefix(buf.String(), wantPrefix+"  EBOOT.BIN") {
		t.Fatalf("PrintMD5Sums = %q, want prefix %q", buf.String(), wantPrefix+"  EBOOT.BIN")
	}
}

func hexByte(b byte) string {
	const hexDigits = "0123456789abcdef"
	return string([]byte{hexDigits[b>>4], hexDigits[b&0xf]})
}

func TestPrintCheckSummaryValid(t *testing.T) {
	c := verify.Counters{FilesOnDisk: 1, FilesInIrd: 1, FilesOK: 1}
	var buf bytes.Buffer
	if valid := PrintCheckSummary(&buf, c); !valid {
		t.Fatal("PrintCheckSummary returned false, want true")
	}
	if !strings.Contains(buf.String(), "GAME DATA VALID") {
		t.Fatalf("missing verdict line: %s", buf.String())
	}
}

func TestPrintCheckSummaryInvalid(t *testing.T) {
	c := verify.Counters{FilesOnDisk: 2, FilesInIrd: 1, FilesOK: 1, FilesDiskOnly: 1}
	var buf bytes.Buffer
	if valid := PrintCheckSummary(&buf, c); valid {
		t.Fatal("PrintCheckSummary returned true, want false")
	}
	if !strings.Contains(buf.String(), "GAME DATA INVALID") {
		t.Fatalf("missing verdict line: %s", buf.String())
	}
}
