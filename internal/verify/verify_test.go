package verify

import (
	"bytes"
	"crypto/md5"
	"io"
	"testing"
	"time"

	"github.com/s0up4200/irdcheck/internal/fs"
	"github.com/s0up4200/irdcheck/internal/tree"
)

// memFile and memDir implement fs.FileInfo/fs.DirectoryInfo over an
// in-memory layout, so these tests never touch a real filesystem.

type memFile struct {
	name string
	data []byte
}

func (f *memFile) Name() string       { return f.name }
func (f *memFile) FullName() string   { return f.name }
func (f *memFile) Length() int64      { return int64(len(f.data)) }
func (f *memFile) ModTime() time.Time { return time.Time{} }
func (f *memFile) OpenRead() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

type memDir struct {
	name  string
	files []*memFile
	dirs  []*memDir
}

func (d *memDir) Name() string     { return d.name }
func (d *memDir) FullName() string { return d.name }
func (d *memDir) GetFiles() ([]fs.FileInfo, error) {
	out := make([]fs.FileInfo, len(d.files))
	for i, f := range d.files {
		out[i] = f
	}
	return out, nil
}
func (d *memDir) GetDirectories() ([]fs.DirectoryInfo, error) {
	out := make([]fs.DirectoryInfo, len(d.dirs))
	for i, sub := range d.dirs {
		out[i] = sub
	}
	return out, nil
}

type memFS struct {
	root *memDir
}

func (m *memFS) GetDirectoryInfo(path string) (fs.DirectoryInfo, error) {
	return m.root, nil
}

func ebootNode(size uint64, sum [16]byte) *tree.FileNode {
	s := sum
	return &tree.FileNode{Name: "EBOOT.BIN", Sector: 1000, Size: size, MD5: &s}
}

func baseEbootData() []byte {
	data := make([]byte, 16)
	for i := range data {
		data[i] = byte(i)
	}
	return data
}

func TestRunRoundTripIdentity(t *testing.T) {
	data := baseEbootData()
	sum := md5.Sum(data)
	expected := &tree.FileNode{Children: []*tree.FileNode{ebootNode(16, sum)}}
	root := &memDir{files: []*memFile{{name: "EBOOT.BIN", data: data}}}

	c, err := Run(&memFS{root: root}, "/game", expected)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.FilesOK != 1 || !c.Valid() {
		t.Fatalf("counters = %+v, want FilesOK=1 Valid=true", c)
	}
}

func TestRunSizeMismatch(t *testing.T) {
	data := append(baseEbootData(), 0xFF)
	sum := md5.Sum(baseEbootData())
	expected := &tree.FileNode{Children: []*tree.FileNode{ebootNode(16, sum)}}
	root := &memDir{files: []*memFile{{name: "EBOOT.BIN", data: data}}}

	c, err := Run(&memFS{root: root}, "/game", expected)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.FilesSizeMismatch != 1 || c.Valid() {
		t.Fatalf("counters = %+v, want FilesSizeMismatch=1 Valid=false", c)
	}
}

func TestRunHashMismatch(t *testing.T) {
	data := baseEbootData()
	flipped := append([]byte{}, data...)
	flipped[len(flipped)-1] ^= 0xFF
	sum := md5.Sum(data)
	expected := &tree.FileNode{Children: []*tree.FileNode{ebootNode(16, sum)}}
	root := &memDir{files: []*memFile{{name: "EBOOT.BIN", data: flipped}}}

	c, err := Run(&memFS{root: root}, "/game", expected)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.FilesHashMismatch != 1 || c.Valid() {
		t.Fatalf("counters = %+v, want FilesHashMismatch=1 Valid=false", c)
	}
}

func TestRunDiskOnlyFile(t *testing.T) {
	data := baseEbootData()
	sum := md5.Sum(data)
	expected := &tree.FileNode{Children: []*tree.FileNode{ebootNode(16, sum)}}
	root := &memDir{files: []*memFile{
		{name: "EBOOT.BIN", data: data},
		{name: "README.TXT", data: []byte("hi")},
	}}

	c, err := Run(&memFS{root: root}, "/game", expected)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.FilesDiskOnly != 1 || c.Valid() {
		t.Fatalf("counters = %+v, want FilesDiskOnly=1 Valid=false", c)
	}
}

func TestRunIrdOnlyFile(t *testing.T) {
	sum := md5.Sum(baseEbootData())
	expected := &tree.FileNode{Children: []*tree.FileNode{ebootNode(16, sum)}}
	root := &memDir{}

	c, err := Run(&memFS{root: root}, "/game", expected)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.FilesIrdOnly != 1 || c.Valid() {
		t.Fatalf("counters = %+v, want FilesIrdOnly=1 Valid=false", c)
	}
}

func TestRunIrdOnlyDirectory(t *testing.T) {
	sum := md5.Sum(baseEbootData())
	nested := ebootNode(16, sum)
	nested.Name = "A.BIN"
	expected := &tree.FileNode{Children: []*tree.FileNode{
		{Name: "DATA", Children: []*tree.FileNode{nested}},
	}}
	// disk root has no DATA/ directory at all.
	root := &memDir{}

	c, err := Run(&memFS{root: root}, "/game", expected)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.DirsIrdOnly != 1 {
		t.Fatalf("counters = %+v, want DirsIrdOnly=1", c)
	}
	if c.FilesInIrd != 1 || c.FilesIrdOnly != 1 || c.Valid() {
		t.Fatalf("counters = %+v, want FilesInIrd=1 FilesIrdOnly=1 Valid=false", c)
	}
}

func TestRunTypeMismatch(t *testing.T) {
	sum := md5.Sum(baseEbootData())
	expected := &tree.FileNode{Children: []*tree.FileNode{ebootNode(16, sum)}}
	root := &memDir{dirs: []*memDir{{name: "EBOOT.BIN"}}}

	c, err := Run(&memFS{root: root}, "/game", expected)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.DirFileMismatch != 1 || c.Valid() {
		t.Fatalf("counters = %+v, want DirFileMismatch=1 Valid=false", c)
	}
}
